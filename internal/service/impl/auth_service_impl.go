package impl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"user-management/internal/domain"
	"user-management/internal/dto"
	"user-management/internal/events"
	"user-management/internal/netutil"
	"user-management/internal/observability/metrics"
	"user-management/internal/observability/middleware"
	"user-management/internal/service"
	"user-management/internal/store"

	"github.com/google/uuid"
)

type AuthServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	TService        service.TokenService
	SessionTTL      time.Duration
	Now             func() time.Time
}

func NewAuthServiceImpl(store *store.Store, passwordService service.PasswordService, tokenService service.TokenService, sessionTTL time.Duration) *AuthServiceImpl {
	if sessionTTL <= 0 {
		sessionTTL = DefaultTokenTTL
	}
	return &AuthServiceImpl{
		Store:           gormStoreAdapter{store: store},
		PasswordService: passwordService,
		TService:        tokenService,
		SessionTTL:      sessionTTL,
		Now:             time.Now,
	}
}

type dataStore interface {
	Users() userStore
	Sessions() sessionStore
	AuditLogs() auditSink
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
}

type storeTx interface {
	Users() userStore
	Sessions() sessionStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByIdentification(ctx context.Context, identification string) (bool, error)
	UpdateLastLogin(ctx context.Context, id domain.UserID, at time.Time) error
	SetStatus(ctx context.Context, id domain.UserID, status domain.AccountStatus, at time.Time) (bool, error)
}

type sessionStore interface {
	Save(ctx context.Context, s *domain.UserSession) (*domain.UserSession, error)
	FindActiveByDigest(ctx context.Context, digest string, now time.Time) (*domain.UserSession, error)
	FindByUserAndDigest(ctx context.Context, userID domain.UserID, digest string) (*domain.UserSession, error)
	Update(ctx context.Context, s *domain.UserSession) (*domain.UserSession, error)
	InvalidateAllForUser(ctx context.Context, userID domain.UserID) (int64, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	ListActiveByUser(ctx context.Context, userID domain.UserID, now time.Time) ([]domain.UserSession, error)
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) Users() userStore { return g.store.Users() }

func (g gormStoreAdapter) Sessions() sessionStore { return g.store.Sessions() }

func (g gormStoreAdapter) AuditLogs() auditSink { return g.store.AuditLogs() }

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Users() userStore { return g.tx.Users() }

func (g gormTxAdapter) Sessions() sessionStore { return g.tx.Sessions() }

func (a *AuthServiceImpl) now() time.Time { return a.Now().UTC() }

func (a *AuthServiceImpl) audit() auditRecorder {
	return auditRecorder{sink: a.Store.AuditLogs(), now: a.Now}
}

func (a *AuthServiceImpl) gate() *AuthGateImpl {
	return &AuthGateImpl{Tokens: a.TService, Sessions: a.Store.Sessions(), Now: a.Now}
}

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error) {
	result := "failure"
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	res, err := a.register(ctx, r)
	if err != nil {
		if !domain.IsRecognized(err) {
			err = domain.InternalError(domain.CodeRegistrationError, err)
		}
		slog.Warn("registration failed", append(middleware.LogAttrs(ctx), "email", r.Email, "error", err)...)
		return nil, err
	}
	result = "success"
	return res, nil
}

func (a *AuthServiceImpl) register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error) {
	// 1) shape validation
	if err := r.Validate(); err != nil {
		details := dto.FieldErrors(err)
		if details == nil {
			return nil, err
		}
		return nil, domain.InputError(domain.CodeRegistrationValidation, "invalid registration data").WithDetails(details)
	}
	typeUser := domain.UserType(r.TypeUser)
	if typeUser == "" {
		typeUser = domain.UserTypeStudent
	}
	if typeUser == domain.UserTypeAdmin {
		return nil, domain.InputError(domain.CodeRegistrationValidation, "invalid registration data").
			WithDetails(map[string]string{"type_user": "admin accounts cannot be self-registered"})
	}

	// 2) uniqueness
	users := a.Store.Users()
	taken, err := users.ExistsByEmail(ctx, r.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailAlreadyExists
	}
	taken, err = users.ExistsByIdentification(ctx, r.Identification)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrIdentificationAlreadyExists
	}

	// 3) hash + persist
	hash, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		return nil, err
	}
	now := a.now()
	u := &domain.User{
		ID:             uuid.New(),
		Identification: r.Identification,
		Email:          domain.NormalizeEmail(r.Email),
		PasswordHash:   hash,
		Name:           r.Name,
		Phone:          r.Phone,
		Address:        r.Address,
		TypeUser:       typeUser,
		AccountStatus:  domain.AccountActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := users.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrEmailAlreadyExists.WithMessage("email or identification already registered").Wrap(err)
		}
		return nil, err
	}

	a.audit().record(ctx, u.ID, events.UserRegistered{UserID: u.ID.String(), Email: u.Email, TypeUser: string(u.TypeUser), At: now}, "", "")
	slog.Info("user registered", append(middleware.LogAttrs(ctx), "user_id", u.ID)...)
	return &dto.RegisterResponse{User: u.Public()}, nil
}

// Login verifies credentials and opens a new session. Every successful login
// creates an independent session; existing ones stay valid.
func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error) {
	result := "failure"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	res, err := a.login(ctx, r, ip, ua)
	if err != nil {
		if !domain.IsRecognized(err) {
			err = domain.InternalError(domain.CodeLoginError, err)
		}
		slog.Warn("login failed", append(middleware.LogAttrs(ctx), "error", err)...)
		return nil, err
	}
	result = "success"
	return res, nil
}

func (a *AuthServiceImpl) login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error) {
	if r.Email == "" || r.Password == "" {
		return nil, domain.ErrMissingCredentials
	}

	// 1) load user; an unknown email and a wrong password are indistinguishable
	user, err := a.Store.Users().FindByEmail(ctx, r.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, domain.ErrAccountSuspended
	}

	// 2) verify password
	ok, err := a.PasswordService.Verify(r.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, domain.ErrInvalidCredentials
	}

	// 3) mint token
	token, err := a.TService.Issue(&domain.Claims{
		UserID:   user.ID,
		Email:    user.Email,
		TypeUser: user.TypeUser,
	}, a.SessionTTL)
	if err != nil {
		return nil, err
	}
	digest, err := a.TService.Digest(token)
	if err != nil {
		return nil, err
	}

	// 4) persist session (digest only)
	now := a.now()
	sess := domain.NewSession(user.ID, digest, now, a.SessionTTL)
	sess.IP = normalizeIP(ip)
	sess.UserAgent = netutil.TruncateUserAgent(ua)
	if _, err := a.Store.Sessions().Save(ctx, sess); err != nil {
		return nil, err
	}

	// 5) best-effort last login
	if err := a.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		metrics.BestEffortFailuresTotal.WithLabelValues("last_login").Inc()
		slog.Warn("last login update failed", append(middleware.LogAttrs(ctx), "user_id", user.ID, "error", err)...)
	} else {
		user.LastLoginAt = &now
	}

	a.audit().record(ctx, user.ID, events.SessionOpened{SessionID: sess.ID.String(), UserID: user.ID.String(), ExpiresAt: sess.ExpiresAt, At: now}, ip, ua)
	slog.Info("session opened", append(middleware.LogAttrs(ctx), "session_id", sess.ID, "user_id", user.ID)...)

	return &dto.LoginResponse{
		User:      user.Public(),
		Token:     token,
		SessionID: sess.ID.String(),
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Logout invalidates the session the token belongs to. The token's JWT
// signature is not checked here; the gate has done that for HTTP callers.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string, userID domain.UserID) (*dto.LogoutResponse, error) {
	result := "failure"
	defer func() {
		metrics.AuthLogoutsTotal.WithLabelValues(result).Inc()
	}()

	res, err := a.logout(ctx, token, userID)
	if err != nil {
		if !domain.IsRecognized(err) {
			err = domain.InternalError(domain.CodeLogoutError, err)
		}
		slog.Warn("logout failed", append(middleware.LogAttrs(ctx), "user_id", userID, "error", err)...)
		return nil, err
	}
	result = "success"
	return res, nil
}

func (a *AuthServiceImpl) logout(ctx context.Context, token string, userID domain.UserID) (*dto.LogoutResponse, error) {
	if token == "" || userID == uuid.Nil {
		return nil, domain.ErrMissingParameters
	}
	digest, err := a.TService.Digest(token)
	if err != nil {
		return nil, err
	}

	sessions := a.Store.Sessions()
	sess, err := sessions.FindByUserAndDigest(ctx, userID, digest)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}
	now := a.now()
	if !sess.IsValidAt(now) {
		return nil, domain.ErrSessionExpired
	}

	sess.Invalidate()
	updated, err := sessions.Update(ctx, sess)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// swept between lookup and update
		return nil, domain.ErrSessionNotFound
	}

	a.audit().record(ctx, userID, events.SessionClosed{SessionID: sess.ID.String(), UserID: userID.String(), At: now}, "", "")
	slog.Info("session closed", append(middleware.LogAttrs(ctx), "session_id", sess.ID, "user_id", userID)...)
	return &dto.LogoutResponse{SessionID: sess.ID.String()}, nil
}

func (a *AuthServiceImpl) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	return a.gate().Check(ctx, token)
}

// LogoutEverywhere deactivates every active session of the user.
func (a *AuthServiceImpl) LogoutEverywhere(ctx context.Context, userID domain.UserID) (int64, error) {
	if userID == uuid.Nil {
		return 0, domain.ErrMissingUserID
	}
	n, err := a.Store.Sessions().InvalidateAllForUser(ctx, userID)
	if err != nil {
		return 0, domain.InternalError(domain.CodeLogoutError, err)
	}
	metrics.SessionsRevokedTotal.Add(float64(n))
	a.audit().record(ctx, userID, events.SessionsRevoked{UserID: userID.String(), Count: n, At: a.now()}, "", "")
	slog.Info("sessions revoked", append(middleware.LogAttrs(ctx), "user_id", userID, "count", n)...)
	return n, nil
}

func (a *AuthServiceImpl) ActiveSessions(ctx context.Context, userID domain.UserID, current domain.SessionID) (*dto.SessionsResponse, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrMissingUserID
	}
	list, err := a.Store.Sessions().ListActiveByUser(ctx, userID, a.now())
	if err != nil {
		return nil, err
	}
	out := &dto.SessionsResponse{Sessions: make([]dto.SessionView, 0, len(list))}
	for _, s := range list {
		out.Sessions = append(out.Sessions, dto.SessionView{
			SessionID: s.ID.String(),
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
			IP:        s.IP,
			UserAgent: s.UserAgent,
			Current:   s.ID == current,
		})
	}
	return out, nil
}

// SetAccountStatus changes the account status; suspension also revokes every
// active session in the same transaction.
func (a *AuthServiceImpl) SetAccountStatus(ctx context.Context, userID domain.UserID, status domain.AccountStatus) error {
	if userID == uuid.Nil {
		return domain.ErrMissingUserID
	}
	if status != domain.AccountActive && status != domain.AccountSuspended {
		return domain.ErrInvalidInput.WithMessage("unknown account status " + string(status))
	}
	now := a.now()
	var revoked int64
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		found, err := tx.Users().SetStatus(ctx, userID, status, now)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrUserNotFound
		}
		if status == domain.AccountSuspended {
			revoked, err = tx.Sessions().InvalidateAllForUser(ctx, userID)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.Add(float64(revoked))
	a.audit().record(ctx, userID, events.AccountStatusChanged{UserID: userID.String(), Status: string(status), At: now}, "", "")
	slog.Info("account status changed", append(middleware.LogAttrs(ctx), "user_id", userID, "status", status, "sessions_revoked", revoked)...)
	return nil
}

// SweepExpired deletes expired and inactive sessions.
func (a *AuthServiceImpl) SweepExpired(ctx context.Context) (int64, error) {
	now := a.now()
	n, err := a.Store.Sessions().SweepExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	metrics.SessionsSweptTotal.Add(float64(n))
	if n > 0 {
		a.audit().record(ctx, uuid.Nil, events.SessionsSwept{Count: n, At: now}, "", "")
	}
	return n, nil
}
