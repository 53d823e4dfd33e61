package impl

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"user-management/internal/domain"
	"user-management/internal/dto"
	"user-management/internal/events"
	"user-management/internal/observability/middleware"
	"user-management/internal/service"
	"user-management/internal/store"

	"github.com/google/uuid"
)

type profileStore interface {
	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	EmailTakenByOther(ctx context.Context, email string, id domain.UserID) (bool, error)
	Update(ctx context.Context, id domain.UserID, fields map[string]any) (*domain.User, error)
}

type ProfileServiceImpl struct {
	Users           profileStore
	Audit           auditSink
	PasswordService service.PasswordService
	Now             func() time.Time
}

func NewProfileServiceImpl(st *store.Store, passwordService service.PasswordService) *ProfileServiceImpl {
	return &ProfileServiceImpl{
		Users:           st.Users(),
		Audit:           st.AuditLogs(),
		PasswordService: passwordService,
		Now:             time.Now,
	}
}

func (p *ProfileServiceImpl) activeUser(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrMissingUserID
	}
	u, err := p.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	if !u.IsActive() {
		return nil, domain.ErrAccountSuspended
	}
	return u, nil
}

func (p *ProfileServiceImpl) GetProfile(ctx context.Context, userID domain.UserID) (*dto.ProfileResponse, error) {
	u, err := p.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{User: u.Public()}, nil
}

// UpdateProfile applies a partial update. An empty phone or address clears
// the column; a new password is re-hashed before it is stored.
func (p *ProfileServiceImpl) UpdateProfile(ctx context.Context, userID domain.UserID, r dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	res, err := p.updateProfile(ctx, userID, r)
	if err != nil {
		if !domain.IsRecognized(err) {
			err = domain.InternalError(domain.CodeUpdateError, err)
		}
		slog.Warn("profile update failed", append(middleware.LogAttrs(ctx), "user_id", userID, "error", err)...)
		return nil, err
	}
	return res, nil
}

func (p *ProfileServiceImpl) updateProfile(ctx context.Context, userID domain.UserID, r dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrMissingUserID
	}
	if r.Empty() {
		return nil, domain.ErrNoUpdates
	}
	if err := r.Validate(); err != nil {
		if details := dto.FieldErrors(err); details != nil {
			return nil, domain.ErrInvalidInput.WithMessage("invalid profile data").WithDetails(details)
		}
		return nil, err
	}
	if _, err := p.activeUser(ctx, userID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Email != nil {
		taken, err := p.Users.EmailTakenByOther(ctx, *r.Email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrEmailExists
		}
		fields["email"] = domain.NormalizeEmail(*r.Email)
	}
	if r.Phone != nil {
		fields["phone"] = nilIfEmpty(*r.Phone)
	}
	if r.Address != nil {
		fields["address"] = nilIfEmpty(*r.Address)
	}
	if r.Password != nil {
		hash, err := p.PasswordService.Hash(*r.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		if k != "password_hash" {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	now := p.Now().UTC()
	fields["updated_at"] = now
	u, err := p.Users.Update(ctx, userID, fields)
	if err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			return nil, domain.ErrEmailExists.Wrap(err)
		}
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}

	auditRecorder{sink: p.Audit, now: p.Now}.record(ctx, userID, events.ProfileUpdated{
		UserID:          userID.String(),
		Fields:          names,
		PasswordChanged: r.Password != nil,
		At:              now,
	}, "", "")
	slog.Info("profile updated", append(middleware.LogAttrs(ctx), "user_id", userID, "fields", names)...)
	return &dto.ProfileResponse{User: u.Public()}, nil
}

func (p *ProfileServiceImpl) Dashboard(ctx context.Context, userID domain.UserID) (*dto.DashboardResponse, error) {
	u, err := p.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		User: u.Public(),
		DashboardInfo: dto.DashboardInfo{
			LastLogin:     u.LastLoginAt,
			AccountStatus: u.AccountStatus,
			MemberSince:   u.CreatedAt,
		},
	}, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
