package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// SessionStore owns the authenticated identity, the credential token and
// the session lifecycle. The {token, currentUser, isLogin} subset is written
// through SessionStorage so it survives process restarts; loading and error
// never persist. On logout it invalidates the task store explicitly.
type SessionStore struct {
	log     *slog.Logger
	api     UsersAPI
	carrier TokenCarrier
	storage SessionStorage
	tasks   TaskInvalidator

	mu          sync.Mutex
	currentUser *User
	token       string
	isLogin     bool
	loading     bool
	errMsg      string
}

func NewSessionStore(api UsersAPI, carrier TokenCarrier, storage SessionStorage, tasks TaskInvalidator, log *slog.Logger) *SessionStore {
	return &SessionStore{
		log:     log,
		api:     api,
		carrier: carrier,
		storage: storage,
		tasks:   tasks,
	}
}

// ---- observable state

func (s *SessionStore) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil {
		return User{}, false
	}
	return *s.currentUser, true
}

func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *SessionStore) IsLogin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLogin
}

func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SessionStore) ErrMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ---- operations

// Login authenticates, stores the token durably and fills the session.
// The server's message is returned for user feedback.
func (s *SessionStore) Login(ctx context.Context, c Credentials) (string, error) {
	if err := c.Validate(); err != nil {
		s.fail(err, "login failed")
		return "", err
	}

	s.begin()

	result, message, err := s.api.Login(ctx, c)
	if err != nil {
		s.failLoggedOut(err, "login failed")
		return "", err
	}

	s.mu.Lock()
	user := result.User
	s.currentUser = &user
	s.token = result.Token
	s.isLogin = true
	s.loading = false
	s.mu.Unlock()

	s.carrier.SetToken(result.Token)
	s.persist()
	s.log.Info("logged in", "user_id", user.UserID)
	return message, nil
}

// Register creates the account without authenticating it.
func (s *SessionStore) Register(ctx context.Context, r Registration) (string, error) {
	if err := r.Validate(); err != nil {
		s.fail(err, "registration failed")
		return "", err
	}

	s.begin()

	message, err := s.api.Register(ctx, r)
	if err != nil {
		s.fail(err, "registration failed")
		return "", err
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	return message, nil
}

// FetchMe re-derives the current user from the stored token. An
// unauthorized response forces a logout before the error is re-raised;
// this is the session's only automatic invalidation path.
func (s *SessionStore) FetchMe(ctx context.Context) (User, error) {
	s.begin()

	user, err := s.api.GetMe(ctx)
	if err != nil {
		s.fail(err, "failed to fetch user")
		if errors.Is(err, ErrAuth) {
			s.Logout()
		}
		return User{}, err
	}

	s.mu.Lock()
	s.currentUser = &user
	s.isLogin = true
	s.loading = false
	s.mu.Unlock()

	s.persist()
	return user, nil
}

// FetchUserByID looks up another user without touching the session.
func (s *SessionStore) FetchUserByID(ctx context.Context, id string) (User, error) {
	s.begin()

	user, err := s.api.GetUser(ctx, id)
	if err != nil {
		s.fail(err, "failed to fetch user")
		return User{}, err
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	return user, nil
}

// UpdateUserProfile patches a user; when it is the current user the
// response is merged into the session identity in place.
func (s *SessionStore) UpdateUserProfile(ctx context.Context, id string, p UserPatch) (User, error) {
	s.begin()

	resp, err := s.api.UpdateUser(ctx, id, p)
	if err != nil {
		s.fail(err, "failed to update user")
		return User{}, err
	}

	s.mu.Lock()
	var merged User
	if s.currentUser != nil && s.currentUser.UserID == id {
		merged = resp.apply(*s.currentUser)
		s.currentUser = &merged
	} else {
		merged = resp.apply(User{UserID: id})
	}
	s.loading = false
	s.mu.Unlock()

	s.persist()
	return merged, nil
}

// Logout clears the durable token, wipes the task cache and resets every
// session field. Safe to call on an already logged-out session.
func (s *SessionStore) Logout() {
	if err := s.storage.Clear(); err != nil {
		s.log.Error("clear session storage", "error", err)
	}
	s.carrier.ClearToken()
	s.tasks.ClearStore()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = nil
	s.token = ""
	s.isLogin = false
	s.loading = false
	s.errMsg = ""
}

func (s *SessionStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// CheckAuth is the bootstrap step: when a persisted token exists the
// session is optimistically marked logged-in, then verified against the
// server. Any verification failure logs the session out.
func (s *SessionStore) CheckAuth(ctx context.Context) error {
	state, ok, err := s.storage.Load()
	if err != nil {
		s.log.Error("load session storage", "error", err)
		return err
	}
	if !ok || state.Token == "" {
		return nil
	}

	s.mu.Lock()
	s.token = state.Token
	s.currentUser = state.CurrentUser
	s.isLogin = true
	s.mu.Unlock()

	s.carrier.SetToken(state.Token)

	if _, err := s.FetchMe(ctx); err != nil {
		s.Logout()
		return err
	}
	return nil
}

// ---- flag transitions and persistence

func (s *SessionStore) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.errMsg = ""
}

func (s *SessionStore) fail(err error, fallback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = messageOr(err, fallback)
}

func (s *SessionStore) failLoggedOut(err error, fallback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.isLogin = false
	s.errMsg = messageOr(err, fallback)
}

func (s *SessionStore) persist() {
	s.mu.Lock()
	state := SessionState{
		Token:       s.token,
		CurrentUser: s.currentUser,
		IsLogin:     s.isLogin,
	}
	s.mu.Unlock()

	if err := s.storage.Save(state); err != nil {
		s.log.Error("persist session", "error", err)
	}
}
