// ABOUTME: Session store holding the logged-in identity and bearer token
// ABOUTME: Persists to durable storage and notifies subscribers on change

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/storage"
)

var (
	// ErrSessionExpired is returned when a refresh is rejected with 401.
	// The session has already been cleared when it is returned.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrNotLoggedIn is returned by operations that need a token
	ErrNotLoggedIn = errors.New("not logged in")
)

// ProfileFetcher reads the current profile for a bearer token
type ProfileFetcher interface {
	GetProfile(ctx context.Context, token string) (*client.User, error)
}

// State is a point-in-time copy of the session
type State struct {
	User    *client.User
	Token   string
	Loading bool
	Err     string
}

// LoggedIn reports whether a credential is present
func (s State) LoggedIn() bool {
	return s.Token != ""
}

// Store owns the current session. All mutation goes through its methods.
type Store struct {
	mu      sync.Mutex
	state   State
	storage storage.Store
	api     ProfileFetcher

	subs    map[int]func(State)
	nextSub int
}

// New creates a store and hydrates it from durable storage
func New(st storage.Store, api ProfileFetcher) *Store {
	s := &Store{
		storage: st,
		api:     api,
		subs:    make(map[int]func(State)),
	}
	s.Hydrate()
	return s
}

// Hydrate seeds the in-memory session from durable storage.
// Unreadable entries are dropped rather than failing startup.
func (s *Store) Hydrate() {
	token, _, err := s.storage.Get(storage.KeyAccessToken)
	if err != nil {
		slog.Warn("Failed to read persisted token", "error", err)
		return
	}

	var user *client.User
	if raw, ok, err := s.storage.Get(storage.KeyUser); err == nil && ok && raw != "" {
		var u client.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			slog.Warn("Discarding unreadable persisted profile", "error", err)
		} else {
			user = &u
		}
	}

	// A profile without a token is stale by definition
	if token == "" {
		user = nil
	}

	s.mu.Lock()
	s.state = State{User: user, Token: token}
	s.mu.Unlock()

	slog.Debug("Session hydrated", "logged_in", token != "")
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Token returns the current bearer credential, or ""
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// User returns a copy of the current profile, or nil
func (s *Store) User() *client.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User.Clone()
}

// LoggedIn reports whether a credential is present
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

// Login replaces the session wholesale and persists it. No network call.
func (s *Store) Login(user *client.User, token string) error {
	s.mu.Lock()
	s.state = State{User: user.Clone(), Token: token}
	snap := s.copyLocked()
	s.mu.Unlock()

	err := s.persist(user, token)
	s.notify(snap)

	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout clears the session and removes it from storage. Safe to repeat.
func (s *Store) Logout() error {
	s.mu.Lock()
	wasLoggedIn := s.state.Token != "" || s.state.User != nil
	s.state = State{}
	snap := s.copyLocked()
	s.mu.Unlock()

	err := s.storage.Remove(storage.KeyAccessToken, storage.KeyUser)
	if wasLoggedIn {
		s.notify(snap)
	}

	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// UpdateUser replaces the profile in place, keeping the token
func (s *Store) UpdateUser(user *client.User) error {
	s.mu.Lock()
	if s.state.Token == "" {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	changed := identity(s.state.User) != identity(user)
	s.state.User = user.Clone()
	s.state.Err = ""
	snap := s.copyLocked()
	s.mu.Unlock()

	err := s.persistUser(user)
	if changed {
		s.notify(snap)
	}
	return err
}

// RefreshProfile re-reads the profile for the current token.
// A 401 forces a logout and returns ErrSessionExpired; any other failure
// keeps the session and records the message in State.Err.
// Callers should not re-enter while State.Loading is true.
func (s *Store) RefreshProfile(ctx context.Context) error {
	s.mu.Lock()
	token := s.state.Token
	if token == "" {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	s.state.Loading = true
	s.state.Err = ""
	s.mu.Unlock()

	user, err := s.api.GetProfile(ctx, token)

	s.mu.Lock()
	s.state.Loading = false
	if s.state.Token != token {
		// A login or logout happened meanwhile; it wins
		s.mu.Unlock()
		slog.Debug("Discarding stale profile refresh")
		return nil
	}

	if errors.Is(err, client.ErrUnauthorized) {
		s.mu.Unlock()
		return s.Expire(err)
	}

	if err != nil {
		s.state.Err = err.Error()
		s.mu.Unlock()
		slog.Warn("Profile refresh failed", "error", err)
		return err
	}

	changed := identity(s.state.User) != identity(user)
	s.state.User = user.Clone()
	snap := s.copyLocked()
	s.mu.Unlock()

	if err := s.persistUser(user); err != nil {
		slog.Warn("Failed to persist refreshed profile", "error", err)
	}
	if changed {
		s.notify(snap)
	}
	return nil
}

// Expire forces a logout when err is a 401 and returns ErrSessionExpired.
// Any other error is returned unchanged.
func (s *Store) Expire(err error) error {
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	slog.Info("Session rejected by backend, logging out")
	if logoutErr := s.Logout(); logoutErr != nil {
		slog.Error("Failed to clear expired session", "error", logoutErr)
	}
	return ErrSessionExpired
}

// Subscribe registers fn to receive the new state after every identity
// change. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// notify calls subscribers outside the lock
func (s *Store) notify(snap State) {
	s.mu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) copyLocked() State {
	st := s.state
	st.User = s.state.User.Clone()
	return st
}

func (s *Store) persist(user *client.User, token string) error {
	if err := s.storage.Set(storage.KeyAccessToken, token); err != nil {
		return err
	}
	return s.persistUser(user)
}

func (s *Store) persistUser(user *client.User) error {
	if user == nil {
		return s.storage.Remove(storage.KeyUser)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.storage.Set(storage.KeyUser, string(data))
}

// identity is the backend-owned unique key of a profile
func identity(u *client.User) string {
	if u == nil {
		return ""
	}
	return u.Email
}
