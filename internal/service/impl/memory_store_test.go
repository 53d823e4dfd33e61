package impl

import (
	"context"
	"sort"
	"sync"
	"time"

	"user-management/internal/domain"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*domain.User
	sessions []*domain.UserSession
	audit    []*domain.AuditLog

	failFindUser   error
	failSave       error
	failUpdate     error
	failLastLogin  error
	failInvalidate error
	failAudit      error

	lastLoginCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *memoryStore) Users() userStore { return memUsers{m} }
func (m *memoryStore) Sessions() sessionStore { return memSessions{m} }
func (m *memoryStore) AuditLogs() auditSink { return memAudit{m} }

// WithTx snapshots state and restores it when fn fails.
func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	m.mu.Lock()
	usersSnap := make(map[uuid.UUID]domain.User, len(m.users))
	for id, u := range m.users {
		usersSnap[id] = *u
	}
	sessSnap := make([]domain.UserSession, len(m.sessions))
	for i, s := range m.sessions {
		sessSnap[i] = *s
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.users = make(map[uuid.UUID]*domain.User, len(usersSnap))
		for id, u := range usersSnap {
			u := u
			m.users[id] = &u
		}
		m.sessions = m.sessions[:0]
		for i := range sessSnap {
			s := sessSnap[i]
			m.sessions = append(m.sessions, &s)
		}
		return err
	}
	return nil
}

func (m *memoryStore) addUser(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

func (m *memoryStore) user(id uuid.UUID) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func (m *memoryStore) sessionByID(id uuid.UUID) *domain.UserSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == id {
			cp := *s
			return &cp
		}
	}
	return nil
}

func (m *memoryStore) mutateSession(id uuid.UUID, fn func(*domain.UserSession)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == id {
			fn(s)
		}
	}
}

func (m *memoryStore) auditActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.audit))
	for _, e := range m.audit {
		out = append(out, e.Action)
	}
	return out
}

type memUsers struct{ m *memoryStore }

func (u memUsers) Create(ctx context.Context, usr *domain.User) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	for _, existing := range u.m.users {
		if existing.Email == usr.Email || existing.Identification == usr.Identification {
			return domain.ErrConflict
		}
	}
	cp := *usr
	u.m.users[usr.ID] = &cp
	return nil
}

func (u memUsers) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	if u.m.failFindUser != nil {
		return nil, u.m.failFindUser
	}
	return u.m.user(id), nil
}

func (u memUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u.m.failFindUser != nil {
		return nil, u.m.failFindUser
	}
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	for _, usr := range u.m.users {
		if usr.Email == domain.NormalizeEmail(email) {
			cp := *usr
			return &cp, nil
		}
	}
	return nil, nil
}

func (u memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	usr, err := u.FindByEmail(ctx, email)
	return usr != nil, err
}

func (u memUsers) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	for _, usr := range u.m.users {
		if usr.Identification == identification {
			return true, nil
		}
	}
	return false, nil
}

func (u memUsers) EmailTakenByOther(ctx context.Context, email string, id domain.UserID) (bool, error) {
	usr, err := u.FindByEmail(ctx, email)
	return usr != nil && usr.ID != id, err
}

func (u memUsers) Update(ctx context.Context, id domain.UserID, fields map[string]any) (*domain.User, error) {
	u.m.mu.Lock()
	usr, ok := u.m.users[id]
	if !ok {
		u.m.mu.Unlock()
		return nil, nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			usr.Name = v.(string)
		case "email":
			usr.Email = domain.NormalizeEmail(v.(string))
		case "phone":
			usr.Phone = v.(*string)
		case "address":
			usr.Address = v.(*string)
		case "password_hash":
			usr.PasswordHash = v.(string)
		case "updated_at":
			usr.UpdatedAt = v.(time.Time)
		}
	}
	u.m.mu.Unlock()
	return u.m.user(id), nil
}

func (u memUsers) UpdateLastLogin(ctx context.Context, id domain.UserID, at time.Time) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	u.m.lastLoginCalls++
	if u.m.failLastLogin != nil {
		return u.m.failLastLogin
	}
	if usr, ok := u.m.users[id]; ok {
		usr.LastLoginAt = &at
	}
	return nil
}

func (u memUsers) SetStatus(ctx context.Context, id domain.UserID, status domain.AccountStatus, at time.Time) (bool, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	usr, ok := u.m.users[id]
	if !ok {
		return false, nil
	}
	usr.AccountStatus = status
	usr.UpdatedAt = at
	return true, nil
}

type memSessions struct{ m *memoryStore }

func (s memSessions) Save(ctx context.Context, sess *domain.UserSession) (*domain.UserSession, error) {
	if s.m.failSave != nil {
		return nil, s.m.failSave
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *sess
	s.m.sessions = append(s.m.sessions, &cp)
	return sess, nil
}

func (s memSessions) newest(match func(*domain.UserSession) bool) *domain.UserSession {
	var found []*domain.UserSession
	for _, sess := range s.m.sessions {
		if match(sess) {
			found = append(found, sess)
		}
	}
	if len(found) == 0 {
		return nil
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	cp := *found[0]
	return &cp
}

func (s memSessions) FindActiveByDigest(ctx context.Context, digest string, now time.Time) (*domain.UserSession, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.newest(func(sess *domain.UserSession) bool {
		return sess.TokenDigest == digest && sess.IsValidAt(now)
	}), nil
}

func (s memSessions) FindByUserAndDigest(ctx context.Context, userID domain.UserID, digest string) (*domain.UserSession, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.newest(func(sess *domain.UserSession) bool {
		return sess.UserID == userID && sess.TokenDigest == digest
	}), nil
}

func (s memSessions) Update(ctx context.Context, sess *domain.UserSession) (*domain.UserSession, error) {
	if s.m.failUpdate != nil {
		return nil, s.m.failUpdate
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.sessions {
		if existing.ID == sess.ID {
			existing.IsActive = sess.IsActive
			existing.ExpiresAt = sess.ExpiresAt
			return sess, nil
		}
	}
	return nil, nil
}

func (s memSessions) InvalidateAllForUser(ctx context.Context, userID domain.UserID) (int64, error) {
	if s.m.failInvalidate != nil {
		return 0, s.m.failInvalidate
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for _, sess := range s.m.sessions {
		if sess.UserID == userID && sess.IsActive {
			sess.IsActive = false
			n++
		}
	}
	return n, nil
}

func (s memSessions) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	kept := s.m.sessions[:0]
	var n int64
	for _, sess := range s.m.sessions {
		if !sess.IsValidAt(now) {
			n++
			continue
		}
		kept = append(kept, sess)
	}
	s.m.sessions = kept
	return n, nil
}

func (s memSessions) ListActiveByUser(ctx context.Context, userID domain.UserID, now time.Time) ([]domain.UserSession, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []domain.UserSession
	for _, sess := range s.m.sessions {
		if sess.UserID == userID && sess.IsValidAt(now) {
			out = append(out, *sess)
		}
	}
	return out, nil
}

type memAudit struct{ m *memoryStore }

func (a memAudit) Append(ctx context.Context, entry *domain.AuditLog) error {
	if a.m.failAudit != nil {
		return a.m.failAudit
	}
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	cp := *entry
	a.m.audit = append(a.m.audit, &cp)
	return nil
}
