package store

import (
	"context"
	"time"

	"user-management/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	usr.Email = domain.NormalizeEmail(usr.Email)
	if err := u.db.WithContext(ctx).Create(usr).Error; err != nil {
		return translate("create user", err)
	}
	return nil
}

// FindByID returns nil when the user does not exist.
func (u *UserStore) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user domain.User
	err := u.db.WithContext(ctx).Take(&user, "id = ?", id).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

// FindByEmail returns nil when no user has the address.
func (u *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := u.db.WithContext(ctx).Take(&user, "email = ?", domain.NormalizeEmail(email)).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find user by email", err)
	}
	return &user, nil
}

func (u *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return u.exists(ctx, "email = ?", domain.NormalizeEmail(email))
}

func (u *UserStore) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	return u.exists(ctx, "identification = ?", identification)
}

// EmailTakenByOther reports whether email belongs to a user other than id.
func (u *UserStore) EmailTakenByOther(ctx context.Context, email string, id domain.UserID) (bool, error) {
	return u.exists(ctx, "email = ? AND id <> ?", domain.NormalizeEmail(email), id)
}

func (u *UserStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var n int64
	if err := u.db.WithContext(ctx).Model(&domain.User{}).Where(query, args...).Count(&n).Error; err != nil {
		return false, translate("user exists", err)
	}
	return n > 0, nil
}

// Update applies column updates and returns the fresh row, or nil when the
// user no longer exists.
func (u *UserStore) Update(ctx context.Context, id domain.UserID, fields map[string]any) (*domain.User, error) {
	if email, ok := fields["email"].(string); ok {
		fields["email"] = domain.NormalizeEmail(email)
	}
	tx := u.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return nil, translate("update user", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return u.FindByID(ctx, id)
}

func (u *UserStore) UpdateLastLogin(ctx context.Context, id domain.UserID, at time.Time) error {
	err := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_login_at": at.UTC(), "updated_at": at.UTC()}).Error
	return translate("update last login", err)
}

// SetStatus changes the account status and reports whether the user exists.
func (u *UserStore) SetStatus(ctx context.Context, id domain.UserID, status domain.AccountStatus, at time.Time) (bool, error) {
	tx := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"account_status": status, "updated_at": at.UTC()})
	if tx.Error != nil {
		return false, translate("set account status", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// SetType changes the user's role and reports whether the user exists.
func (u *UserStore) SetType(ctx context.Context, id domain.UserID, typ domain.UserType, at time.Time) (bool, error) {
	tx := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"type_user": typ, "updated_at": at.UTC()})
	if tx.Error != nil {
		return false, translate("set user type", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}
