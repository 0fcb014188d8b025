package accounts_test

import (
	"context"
	"sync"
	"testing"

	"github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-key-0123456789"

// fakeStore is an in-memory Store that records call counts so tests can
// assert on side effects.
type fakeStore struct {
	mu                 sync.Mutex
	users              map[string]*accounts.User
	sessions           map[string]*accounts.Session
	createSessionCalls int
	updateSessionCalls int
}

var _ accounts.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[string]*accounts.User{},
		sessions: map[string]*accounts.Session{},
	}
}

func (s *fakeStore) addUser(user *accounts.User) *accounts.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID.String()] = user
	return user
}

func (s *fakeStore) sessionByID(id string) *accounts.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *fakeStore) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *fakeStore) FindUserByID(_ context.Context, id string) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *fakeStore) FindUserByUsername(_ context.Context, username string) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindUserByEmail(_ context.Context, email string) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) SetUserDeactivated(_ context.Context, id string, deactivated bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return goerrors.New("user not found", goerrors.CategoryNotFound)
	}
	user.Deactivated = deactivated
	return nil
}

func (s *fakeStore) CreateSession(_ context.Context, userID, token string, conn accounts.ConnectionInfo, extra map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createSessionCalls++

	uid, err := uuid.Parse(userID)
	if err != nil {
		return "", goerrors.New("invalid user id", goerrors.CategoryBadInput)
	}

	session := &accounts.Session{
		ID:        uuid.New(),
		UserID:    uid,
		Token:     token,
		Valid:     true,
		IP:        conn.IP,
		UserAgent: conn.UserAgent,
		ExtraData: extra,
	}
	s.sessions[session.ID.String()] = session
	return session.ID.String(), nil
}

func (s *fakeStore) FindSessionByToken(_ context.Context, token string) (*accounts.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ses := range s.sessions {
		if ses.Token == token {
			return ses, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) UpdateSession(_ context.Context, sessionID string, conn accounts.ConnectionInfo, newToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateSessionCalls++

	session, ok := s.sessions[sessionID]
	if !ok {
		return goerrors.New("session not found", goerrors.CategoryNotFound)
	}
	session.IP = conn.IP
	session.UserAgent = conn.UserAgent
	if newToken != "" {
		session.Token = newToken
	}
	return nil
}

func (s *fakeStore) InvalidateSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return goerrors.New("session not found", goerrors.CategoryNotFound)
	}
	session.Valid = false
	return nil
}

func (s *fakeStore) InvalidateAllSessions(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.UserID.String() == userID {
			session.Valid = false
		}
	}
	return nil
}

// testService is a scriptable AuthenticationService.
type testService struct {
	name         string
	authenticate func(ctx context.Context, params map[string]any) (*accounts.User, error)
	store        accounts.Store
}

var _ accounts.AuthenticationService = (*testService)(nil)

func (s *testService) Name() string { return s.name }

func (s *testService) SetStore(store accounts.Store) { s.store = store }

func (s *testService) Authenticate(ctx context.Context, params map[string]any) (*accounts.User, error) {
	return s.authenticate(ctx, params)
}

func newTestUser(username string) *accounts.User {
	return &accounts.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Services: map[string]any{"password": map[string]any{"bcrypt": "hash"}},
	}
}

func newTestConfig() accounts.Config {
	cfg := accounts.DefaultConfig()
	cfg.TokenSecret = testSecret
	return cfg
}

func newTestAccounts(t *testing.T, mutate func(*accounts.Config), services ...accounts.AuthenticationService) (*accounts.Accounts, *fakeStore) {
	t.Helper()

	store := newFakeStore()
	cfg := newTestConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	server, err := accounts.New(store, cfg, services...)
	require.NoError(t, err)

	return server, store
}

func textCode(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}
