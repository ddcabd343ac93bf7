// Package session holds the authoritative in-memory record of the current
// authentication session and mirrors its durable subset to a Store on every
// mutation. All writers must go through the State methods so the clearing
// and install operations stay atomic.
package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/users"
)

// Session is a point-in-time copy of the authentication state.
// Presence of AccessToken is the sole definition of "authenticated".
type Session struct {
	User         *users.User
	AccessToken  string
	RefreshToken string
	IsLoading    bool // true strictly during an in-flight login/register/refresh
	LastError    string
}

// Authenticated reports whether the snapshot holds an access token.
func (s Session) Authenticated() bool { return s.AccessToken != "" }

// State owns the current Session. Mutations are applied under lock and
// persisted before the mutating call returns, so any operation dispatched
// afterwards observes a consistent state.
type State struct {
	mu  sync.RWMutex
	cur Session

	store     Store
	namespace string
	log       zerolog.Logger
}

// StateOption configures a State.
type StateOption func(*State)

// WithNamespace overrides the durable-store key.
func WithNamespace(namespace string) StateOption {
	return func(s *State) {
		s.namespace = namespace
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) StateOption {
	return func(s *State) {
		s.log = log
	}
}

// NewState creates session state backed by the given store, rehydrating
// {user, accessToken, refreshToken} if a record was persisted earlier.
// IsLoading and LastError always start zero.
func NewState(ctx context.Context, store Store, options ...StateOption) (*State, error) {
	if store == nil {
		return nil, errors.New("[session.NewState] store is required")
	}

	s := &State{
		store:     store,
		namespace: DefaultNamespace,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	record, err := store.Load(ctx, s.namespace)
	if err != nil {
		return nil, errors.Wrap(err, "[session.NewState] load persisted session")
	}
	if record != nil {
		// Never rehydrate a token without its owning profile.
		if record.AccessToken != "" && record.User == nil {
			s.log.Warn().Msg("discarding persisted session with token but no user")
		} else {
			s.cur.User = record.User
			s.cur.AccessToken = record.AccessToken
			s.cur.RefreshToken = record.RefreshToken
		}
	}
	return s, nil
}

// Begin marks an auth operation as in flight and clears the last error.
func (s *State) Begin(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur.IsLoading = true
	s.cur.LastError = ""
	s.persistLocked(ctx)
}

// Finish clears the loading flag and last error without touching
// credentials. Used after operations that succeed without authenticating,
// such as registration.
func (s *State) Finish(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur.IsLoading = false
	s.cur.LastError = ""
	s.persistLocked(ctx)
}

// CompleteAuth installs the profile and both tokens atomically and clears
// the loading/error flags. Calling it without a user or access token is a
// programming error and panics; it must never install a partial session.
func (s *State) CompleteAuth(ctx context.Context, user *users.User, accessToken, refreshToken string) {
	if user == nil {
		panic("session: CompleteAuth called without a user")
	}
	if accessToken == "" {
		panic("session: CompleteAuth called without an access token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Session{
		User:         user.Clone(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	s.persistLocked(ctx)
}

// Fail records the failure message and drops any partial credentials.
// A failed login must never leave stale tokens behind.
func (s *State) Fail(ctx context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Session{LastError: message}
	s.persistLocked(ctx)
}

// UpdateTokens replaces the access token and, when non-empty, the refresh
// token. Used only by the refresh path; the profile and the loading/error
// flags are left untouched.
func (s *State) UpdateTokens(ctx context.Context, accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur.AccessToken = accessToken
	if refreshToken != "" {
		s.cur.RefreshToken = refreshToken
	}
	s.persistLocked(ctx)
}

// SetUser replaces the stored profile, leaving tokens and flags untouched.
// Used when the profile is re-fetched for an already authenticated session.
func (s *State) SetUser(ctx context.Context, user *users.User) {
	if user == nil {
		panic("session: SetUser called without a user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur.User = user.Clone()
	s.persistLocked(ctx)
}

// Clear resets to the empty session and deletes the persisted record.
// Clearing an already empty session is a no-op with the same outcome.
func (s *State) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Session{}
	if err := s.store.Delete(ctx, s.namespace); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete persisted session")
	}
}

// IsAuthenticated reports whether an access token is currently held.
func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.AccessToken != ""
}

// Snapshot returns a copy of the current session for read-only observers.
func (s *State) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.cur
	snap.User = s.cur.User.Clone()
	return snap
}

// User returns a copy of the current profile, or nil when signed out.
func (s *State) User() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.User.Clone()
}

// AccessToken returns the access token currently held, if any.
func (s *State) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.AccessToken
}

// RefreshToken returns the refresh token currently held, if any.
func (s *State) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.RefreshToken
}

// IsLoading reports whether a login/register/refresh operation is in flight.
func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.IsLoading
}

// LastError returns the message from the most recent failed auth operation.
func (s *State) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.LastError
}

// persistLocked writes the durable subset under the held lock so the write
// completes before the mutating call resolves. The in-memory state stays
// authoritative when the store write fails.
func (s *State) persistLocked(ctx context.Context) {
	record := &Record{
		User:         s.cur.User,
		AccessToken:  s.cur.AccessToken,
		RefreshToken: s.cur.RefreshToken,
	}
	if err := s.store.Save(ctx, s.namespace, record); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist session")
	}
}
