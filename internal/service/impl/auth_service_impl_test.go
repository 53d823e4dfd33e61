package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"user-management/internal/domain"
	"user-management/internal/dto"

	"github.com/google/uuid"
)

type stubPasswordService struct {
	hashErr     error
	hashCalls   []string
	verifyCalls int
}

func (s *stubPasswordService) Hash(password string) (string, error) {
	s.hashCalls = append(s.hashCalls, password)
	if s.hashErr != nil {
		return "", s.hashErr
	}
	return "hashed:" + password, nil
}

func (s *stubPasswordService) Verify(password, digest string) (bool, error) {
	s.verifyCalls++
	if password == "" || digest == "" {
		return false, ErrEmptyPassword
	}
	return digest == "hashed:"+password, nil
}

type authFixture struct {
	svc    *AuthServiceImpl
	store  *memoryStore
	pw     *stubPasswordService
	tokens *TokenServiceImpl
	clock  *fakeClock
	user   *domain.User
}

const testPassword = "correct-horse"

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	st := newMemoryStore()
	pw := &stubPasswordService{}
	ts := newTestTokenService(t, clock)

	user := &domain.User{
		ID:             uuid.New(),
		Identification: "1020",
		Email:          "ana@example.com",
		PasswordHash:   "hashed:" + testPassword,
		Name:           "Ana",
		TypeUser:       domain.UserTypeStudent,
		AccountStatus:  domain.AccountActive,
		CreatedAt:      clock.t.Add(-24 * time.Hour),
		UpdatedAt:      clock.t.Add(-24 * time.Hour),
	}
	st.addUser(user)

	svc := &AuthServiceImpl{
		Store:           st,
		PasswordService: pw,
		TService:        ts,
		SessionTTL:      24 * time.Hour,
		Now:             clock.Now,
	}
	return &authFixture{svc: svc, store: st, pw: pw, tokens: ts, clock: clock, user: user}
}

func (f *authFixture) login(t *testing.T) *dto.LoginResponse {
	t.Helper()
	res, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: f.user.Email, Password: testPassword}, "198.51.100.7:4000", "test-agent")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return res
}

func TestLoginCreatesSessionForToken(t *testing.T) {
	f := newAuthFixture(t)
	res := f.login(t)

	if res.Token == "" || res.User.ID != f.user.ID {
		t.Fatalf("unexpected response %+v", res)
	}
	if want := f.clock.t.Add(24 * time.Hour); !res.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, res.ExpiresAt)
	}

	sess := f.store.sessionByID(uuid.MustParse(res.SessionID))
	if sess == nil {
		t.Fatalf("expected a stored session")
	}
	digest, _ := f.tokens.Digest(res.Token)
	if sess.TokenDigest != digest {
		t.Fatalf("stored digest does not match token digest")
	}
	if sess.TokenDigest == res.Token {
		t.Fatalf("raw token must never be stored")
	}
	if !sess.IsActive || sess.IP != "198.51.100.7" || sess.UserAgent != "test-agent" {
		t.Fatalf("unexpected session %+v", sess)
	}

	id, err := f.svc.Authenticate(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID != f.user.ID || id.SessionID != sess.ID || id.TypeUser != domain.UserTypeStudent {
		t.Fatalf("unexpected identity %+v", id)
	}

	if got := f.store.user(f.user.ID).LastLoginAt; got == nil || !got.Equal(f.clock.t) {
		t.Fatalf("expected last login %v, got %v", f.clock.t, got)
	}
	if actions := f.store.auditActions(); len(actions) != 1 || actions[0] != "session.opened" {
		t.Fatalf("expected session.opened audit entry, got %v", actions)
	}
}

func TestLoginFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, dto.LoginRequest{Email: f.user.Email}, "", "")
	if !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("expected MISSING_CREDENTIALS, got %v", err)
	}
	if len(f.pw.hashCalls) != 0 || f.pw.verifyCalls != 0 {
		t.Fatalf("expected no hashing for missing credentials")
	}

	_, errUnknown := f.svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"}, "", "")
	_, errWrong := f.svc.Login(ctx, dto.LoginRequest{Email: f.user.Email, Password: "wrong-password"}, "", "")
	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) || !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("expected INVALID_CREDENTIALS for both, got %v / %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("unknown email and wrong password must be indistinguishable: %q vs %q", errUnknown, errWrong)
	}

	if len(f.store.sessions) != 0 {
		t.Fatalf("failed logins must not create sessions")
	}
}

func TestLoginSuspendedAccount(t *testing.T) {
	f := newAuthFixture(t)
	suspended := *f.user
	suspended.AccountStatus = domain.AccountSuspended
	f.store.addUser(&suspended)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: f.user.Email, Password: testPassword}, "", "")
	if !errors.Is(err, domain.ErrAccountSuspended) {
		t.Fatalf("expected ACCOUNT_SUSPENDED, got %v", err)
	}
}

func TestLoginLastLoginFailureIsBestEffort(t *testing.T) {
	f := newAuthFixture(t)
	f.store.failLastLogin = errors.New("replica lag")

	res := f.login(t)
	if res.Token == "" {
		t.Fatalf("expected token despite last-login failure")
	}
	if f.store.lastLoginCalls != 1 {
		t.Fatalf("expected one last-login attempt, got %d", f.store.lastLoginCalls)
	}
	if _, err := f.svc.Authenticate(context.Background(), res.Token); err != nil {
		t.Fatalf("session must be usable: %v", err)
	}
}

func TestLoginStoreFailureIsWrapped(t *testing.T) {
	f := newAuthFixture(t)
	cause := errors.New("connection refused")
	f.store.failSave = domain.StoreError("save session", cause)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: f.user.Email, Password: testPassword}, "", "")
	de, ok := domain.AsError(err)
	if !ok || de.Code != domain.CodeLoginError {
		t.Fatalf("expected LOGIN_ERROR, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first := f.login(t)
	f.clock.Advance(time.Second)
	second := f.login(t)
	if first.Token == second.Token || first.SessionID == second.SessionID {
		t.Fatalf("expected independent sessions")
	}

	if _, err := f.svc.Logout(ctx, first.Token, f.user.ID); err != nil {
		t.Fatalf("logout first: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, first.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected first session to be rejected, got %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, second.Token); err != nil {
		t.Fatalf("expected second session to stay valid: %v", err)
	}
}

func TestLogoutTwiceReportsExpired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.login(t)

	out, err := f.svc.Logout(ctx, res.Token, f.user.ID)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if out.SessionID != res.SessionID {
		t.Fatalf("expected session %s, got %s", res.SessionID, out.SessionID)
	}
	if sess := f.store.sessionByID(uuid.MustParse(res.SessionID)); sess.IsActive {
		t.Fatalf("expected session to be inactive")
	}

	if _, err := f.svc.Logout(ctx, res.Token, f.user.ID); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected SESSION_EXPIRED on second logout, got %v", err)
	}
}

func TestLogoutErrors(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.login(t)

	if _, err := f.svc.Logout(ctx, "", f.user.ID); !errors.Is(err, domain.ErrMissingParameters) {
		t.Fatalf("expected MISSING_PARAMETERS for empty token, got %v", err)
	}
	if _, err := f.svc.Logout(ctx, res.Token, uuid.Nil); !errors.Is(err, domain.ErrMissingParameters) {
		t.Fatalf("expected MISSING_PARAMETERS for empty user, got %v", err)
	}
	if _, err := f.svc.Logout(ctx, "never-issued", f.user.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected SESSION_NOT_FOUND, got %v", err)
	}
	if _, err := f.svc.Logout(ctx, res.Token, uuid.New()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected SESSION_NOT_FOUND for another user, got %v", err)
	}

	f.clock.Advance(25 * time.Hour)
	if _, err := f.svc.Logout(ctx, res.Token, f.user.ID); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected SESSION_EXPIRED after expiry, got %v", err)
	}
}

func TestLogoutStoreFailureIsWrapped(t *testing.T) {
	f := newAuthFixture(t)
	res := f.login(t)
	cause := errors.New("deadlock detected")
	f.store.failUpdate = domain.StoreError("update session", cause)

	_, err := f.svc.Logout(context.Background(), res.Token, f.user.ID)
	de, ok := domain.AsError(err)
	if !ok || de.Code != domain.CodeLogoutError {
		t.Fatalf("expected LOGOUT_ERROR, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved")
	}
}

func TestAuthenticateAfterTokenExpiry(t *testing.T) {
	f := newAuthFixture(t)
	res := f.login(t)

	f.clock.Advance(24 * time.Hour)
	_, err := f.svc.Authenticate(context.Background(), res.Token)
	if !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected UNAUTHENTICATED/EXPIRED, got %v", err)
	}
}

func TestAuthenticateRejectsExpiredSessionWithLiveToken(t *testing.T) {
	f := newAuthFixture(t)
	res := f.login(t)

	f.store.mutateSession(uuid.MustParse(res.SessionID), func(s *domain.UserSession) {
		s.ExpiresAt = f.clock.t.Add(-time.Second)
	})
	if _, err := f.svc.Authenticate(context.Background(), res.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected SESSION_INVALID, got %v", err)
	}
}

func TestLogoutEverywhere(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	a := f.login(t)
	b := f.login(t)

	list, err := f.svc.ActiveSessions(ctx, f.user.ID, uuid.MustParse(a.SessionID))
	if err != nil || len(list.Sessions) != 2 {
		t.Fatalf("expected two active sessions, got %+v, %v", list, err)
	}
	current := 0
	for _, s := range list.Sessions {
		if s.Current {
			current++
		}
	}
	if current != 1 {
		t.Fatalf("expected exactly one current session, got %d", current)
	}

	n, err := f.svc.LogoutEverywhere(ctx, f.user.ID)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 revoked, got %d, %v", n, err)
	}
	for _, tok := range []string{a.Token, b.Token} {
		if _, err := f.svc.Authenticate(ctx, tok); !errors.Is(err, domain.ErrSessionInvalid) {
			t.Fatalf("expected revoked session to fail, got %v", err)
		}
	}
	if _, err := f.svc.LogoutEverywhere(ctx, uuid.Nil); !errors.Is(err, domain.ErrMissingUserID) {
		t.Fatalf("expected MISSING_USER_ID, got %v", err)
	}
}

func TestSetAccountStatusSuspendsAndRevokes(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.login(t)

	if err := f.svc.SetAccountStatus(ctx, f.user.ID, domain.AccountSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, res.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected suspension to revoke sessions, got %v", err)
	}
	if _, err := f.svc.Login(ctx, dto.LoginRequest{Email: f.user.Email, Password: testPassword}, "", ""); !errors.Is(err, domain.ErrAccountSuspended) {
		t.Fatalf("expected ACCOUNT_SUSPENDED, got %v", err)
	}

	if err := f.svc.SetAccountStatus(ctx, f.user.ID, domain.AccountActive); err != nil {
		t.Fatalf("activate: %v", err)
	}
	f.login(t)

	if err := f.svc.SetAccountStatus(ctx, uuid.New(), domain.AccountSuspended); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected USER_NOT_FOUND, got %v", err)
	}
	if err := f.svc.SetAccountStatus(ctx, f.user.ID, "banned"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestSetAccountStatusRollsBackOnFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.store.failInvalidate = errors.New("lock timeout")

	err := f.svc.SetAccountStatus(context.Background(), f.user.ID, domain.AccountSuspended)
	if err == nil {
		t.Fatalf("expected failure")
	}
	if got := f.store.user(f.user.ID); !got.IsActive() {
		t.Fatalf("expected status change to be rolled back")
	}
}

func TestSweepExpired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	stale := f.login(t)
	f.clock.Advance(23 * time.Hour)
	fresh := f.login(t)
	f.clock.Advance(2 * time.Hour)

	n, err := f.svc.SweepExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 swept, got %d, %v", n, err)
	}
	if f.store.sessionByID(uuid.MustParse(stale.SessionID)) != nil {
		t.Fatalf("expected stale session deleted")
	}
	if _, err := f.svc.Authenticate(ctx, fresh.Token); err != nil {
		t.Fatalf("expected fresh session to survive sweep: %v", err)
	}
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, dto.RegisterRequest{
		Identification: "3040",
		Name:           "Bo",
		Email:          "Bo@Example.com",
		Password:       "longenough",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Email != "bo@example.com" || res.User.TypeUser != domain.UserTypeStudent || res.User.AccountStatus != domain.AccountActive {
		t.Fatalf("unexpected user %+v", res.User)
	}
	stored := f.store.user(res.User.ID)
	if stored == nil || stored.PasswordHash != "hashed:longenough" {
		t.Fatalf("expected hashed password to be stored, got %+v", stored)
	}

	if _, err := f.svc.Login(ctx, dto.LoginRequest{Email: "bo@example.com", Password: "longenough"}, "", ""); err != nil {
		t.Fatalf("expected new account to log in: %v", err)
	}
}

func TestRegisterFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterRequest{Email: "bad", Password: "short"})
	de, ok := domain.AsError(err)
	if !ok || de.Code != domain.CodeRegistrationValidation {
		t.Fatalf("expected REGISTRATION_VALIDATION_FAILED, got %v", err)
	}
	for _, field := range []string{"identification", "name", "email", "password"} {
		if _, found := de.Details[field]; !found {
			t.Fatalf("expected detail for %q, got %v", field, de.Details)
		}
	}

	_, err = f.svc.Register(ctx, dto.RegisterRequest{Identification: "9", Name: "X", Email: f.user.Email, Password: "longenough"})
	if !errors.Is(err, domain.ErrEmailAlreadyExists) {
		t.Fatalf("expected EMAIL_ALREADY_EXISTS, got %v", err)
	}

	_, err = f.svc.Register(ctx, dto.RegisterRequest{Identification: f.user.Identification, Name: "X", Email: "x@example.com", Password: "longenough"})
	if !errors.Is(err, domain.ErrIdentificationAlreadyExists) {
		t.Fatalf("expected IDENTIFICATION_ALREADY_EXISTS, got %v", err)
	}

	_, err = f.svc.Register(ctx, dto.RegisterRequest{Identification: "77", Name: "X", Email: "root@example.com", Password: "longenough", TypeUser: "admin"})
	de, ok = domain.AsError(err)
	if !ok || de.Code != domain.CodeRegistrationValidation || de.Details["type_user"] == "" {
		t.Fatalf("expected admin self-registration to be rejected, got %v", err)
	}
}
