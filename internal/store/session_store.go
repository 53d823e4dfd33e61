package store

import (
	"context"
	"time"

	"user-management/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStore persists user sessions. Every validity check takes the
// caller's clock so that SQL and domain.UserSession.IsValidAt agree.
type SessionStore struct{ db *gorm.DB }

func (s *Store) Sessions() *SessionStore { return &SessionStore{s.DB} }

func (ss *SessionStore) Save(ctx context.Context, s *domain.UserSession) (*domain.UserSession, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if err := ss.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, translate("save session", err)
	}
	return s, nil
}

// FindActiveByDigest returns the newest session for digest that is active and
// unexpired at now, or nil when there is none.
func (ss *SessionStore) FindActiveByDigest(ctx context.Context, digest string, now time.Time) (*domain.UserSession, error) {
	var s domain.UserSession
	err := ss.db.WithContext(ctx).
		Where("token_digest = ? AND is_active = ? AND expires_at > ?", digest, true, now.UTC()).
		Order("created_at DESC").
		Take(&s).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find active session", err)
	}
	return &s, nil
}

// FindByUserAndDigest returns the newest session for the pair regardless of state.
func (ss *SessionStore) FindByUserAndDigest(ctx context.Context, userID domain.UserID, digest string) (*domain.UserSession, error) {
	var s domain.UserSession
	err := ss.db.WithContext(ctx).
		Where("user_id = ? AND token_digest = ?", userID, digest).
		Order("created_at DESC").
		Take(&s).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find session", err)
	}
	return &s, nil
}

// Update writes the mutable fields (is_active, expires_at). It returns nil when
// the row no longer exists.
func (ss *SessionStore) Update(ctx context.Context, s *domain.UserSession) (*domain.UserSession, error) {
	tx := ss.db.WithContext(ctx).
		Model(&domain.UserSession{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"is_active":  s.IsActive,
			"expires_at": s.ExpiresAt.UTC(),
		})
	if tx.Error != nil {
		return nil, translate("update session", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return s, nil
}

// InvalidateAllForUser deactivates every active session of the user and
// returns how many were deactivated.
func (ss *SessionStore) InvalidateAllForUser(ctx context.Context, userID domain.UserID) (int64, error) {
	tx := ss.db.WithContext(ctx).
		Model(&domain.UserSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	if tx.Error != nil {
		return 0, translate("invalidate sessions", tx.Error)
	}
	return tx.RowsAffected, nil
}

// SweepExpired deletes sessions that are expired at now or inactive.
func (ss *SessionStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := ss.db.WithContext(ctx).
		Where("expires_at <= ? OR is_active = ?", now.UTC(), false).
		Delete(&domain.UserSession{})
	if tx.Error != nil {
		return 0, translate("sweep sessions", tx.Error)
	}
	return tx.RowsAffected, nil
}

func (ss *SessionStore) ListActiveByUser(ctx context.Context, userID domain.UserID, now time.Time) ([]domain.UserSession, error) {
	var out []domain.UserSession
	err := ss.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, now.UTC()).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list sessions", err)
	}
	return out, nil
}

func (ss *SessionStore) CountActiveByUser(ctx context.Context, userID domain.UserID, now time.Time) (int64, error) {
	var n int64
	err := ss.db.WithContext(ctx).
		Model(&domain.UserSession{}).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, now.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, translate("count sessions", err)
	}
	return n, nil
}
