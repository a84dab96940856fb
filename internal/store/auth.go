package store

import (
	"context"
	"sync"

	"plume/internal/gateway"
	"plume/internal/models"
)

// AuthState is a snapshot of the auth slice.
type AuthState struct {
	User      *models.User
	IsLoading bool
	Error     string
}

// AuthSlice tracks the signed-in user. The gateway's auth subscription
// pushes out-of-band transitions through SetUser; a push racing an
// in-flight Login resolves last-writer-wins on User.
type AuthSlice struct {
	gw *gateway.Client

	mu    sync.Mutex
	gen   uint64
	state AuthState
}

func newAuthSlice(gw *gateway.Client) *AuthSlice {
	return &AuthSlice{gw: gw}
}

// State returns a copy of the slice state.
func (s *AuthSlice) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *AuthSlice) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state.IsLoading = true
	s.state.Error = ""
	return s.gen
}

// Register creates an account. Under the confirmation policy the
// fulfilled user is nil: no session exists until the code is
// confirmed. Both outcomes are valid.
func (s *AuthSlice) Register(ctx context.Context, email, password string) (*models.User, error) {
	gen := s.begin()
	user, err := s.gw.Register(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return user, err // stale, a newer op owns the slice
	}
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = errMsg(err)
		return nil, err
	}
	s.state.User = user
	return user, nil
}

// Confirm completes the email-confirmation flow and signs in.
func (s *AuthSlice) Confirm(ctx context.Context, email, code string) (*models.User, error) {
	gen := s.begin()
	user, err := s.gw.ConfirmRegistration(ctx, email, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return user, err
	}
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = errMsg(err)
		return nil, err
	}
	s.state.User = user
	return user, nil
}

// Login always yields a non-nil user on success.
func (s *AuthSlice) Login(ctx context.Context, email, password string) (*models.User, error) {
	gen := s.begin()
	user, err := s.gw.Login(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return user, err
	}
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = errMsg(err)
		return nil, err
	}
	s.state.User = user
	return user, nil
}

// Logout clears the user unconditionally; a transport error is still
// recorded but the session is treated as gone.
func (s *AuthSlice) Logout(ctx context.Context) error {
	gen := s.begin()
	err := s.gw.Logout(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return err
	}
	s.state.IsLoading = false
	s.state.User = nil
	if err != nil {
		s.state.Error = errMsg(err)
	}
	return err
}

// CheckAuth runs once when the session store is created. Fail-closed:
// anything but a definite session leaves User nil.
func (s *AuthSlice) CheckAuth(ctx context.Context) {
	gen := s.begin()
	user := s.gw.CurrentUser()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.state.IsLoading = false
	s.state.User = user
}

// SetUser applies a subscription push (token expiry, sign-in or
// sign-out elsewhere). Synchronous; last writer wins.
func (s *AuthSlice) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = user
}

// ClearError drops a rendered error.
func (s *AuthSlice) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}
