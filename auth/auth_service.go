// Package auth implements the gateway for the operations that create, fail,
// or end a session: login, register, logout, and token refresh. Operations
// report failures through returned errors carrying a closed apierror.Kind;
// they never panic across the public boundary and always leave the session
// state consistent.
package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/api"
	"github.com/jrsteele09/go-auth-client/apierror"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/users"
)

// Credentials identifies an existing account.
type Credentials = api.Credentials

// Registration holds the new-account fields.
type Registration = api.Registration

// Service performs the network side of the session lifecycle, mutating the
// session state as it goes.
type Service struct {
	api   *api.Client
	state *session.State
	log   zerolog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates the auth gateway over an endpoint client and the
// session state it mutates.
func NewService(apiClient *api.Client, state *session.State, options ...ServiceOption) (*Service, error) {
	if apiClient == nil {
		return nil, errors.New("[auth.NewService] api client is required")
	}
	if state == nil {
		return nil, errors.New("[auth.NewService] session state is required")
	}

	s := &Service{
		api:   apiClient,
		state: state,
		log:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login exchanges credentials for a token pair, then fetches the owning
// profile with the new access token. Both steps must succeed: a profile
// failure after a successful exchange discards the tokens and fails the
// whole operation, so the session never holds a token without its user.
func (s *Service) Login(ctx context.Context, creds Credentials) (*users.User, error) {
	s.state.Begin(ctx)

	pair, err := s.api.IssueToken(ctx, creds)
	if err != nil {
		s.state.Fail(ctx, err.Error())
		return nil, err
	}

	user, err := s.api.FetchProfile(ctx, pair.AccessToken)
	if err != nil {
		s.state.Fail(ctx, err.Error())
		return nil, err
	}

	s.state.CompleteAuth(ctx, user, pair.AccessToken, pair.RefreshToken)
	s.log.Info().Str("username", user.Username).Msg("login succeeded")
	return user, nil
}

// Register submits new-account fields. Registration never authenticates:
// on success the loading/error flags are cleared and tokens are untouched.
// Rejections carry per-field messages flattened into the session error.
func (s *Service) Register(ctx context.Context, fields Registration) (*users.User, error) {
	s.state.Begin(ctx)

	created, err := s.api.Register(ctx, fields)
	if err != nil {
		s.state.Fail(ctx, err.Error())
		return nil, err
	}

	s.state.Finish(ctx)
	s.log.Info().Str("username", created.Username).Msg("registration succeeded")
	return created, nil
}

// Logout clears the session unconditionally. The remote refresh-token
// revocation is best effort: a failure there is logged and ignored, and is
// skipped entirely when no refresh token is held.
func (s *Service) Logout(ctx context.Context) {
	if refreshToken := s.state.RefreshToken(); refreshToken != "" {
		if err := s.api.Revoke(ctx, refreshToken); err != nil {
			s.log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
		}
	}
	s.state.Clear(ctx)
}

// RefreshSession exchanges the current refresh token for a new access
// token, keeping the old refresh token when the server does not rotate it.
// Refresh is terminal: any failure clears the session, there is no retry.
func (s *Service) RefreshSession(ctx context.Context) (string, error) {
	refreshToken := s.state.RefreshToken()
	if refreshToken == "" {
		return "", apierror.New(apierror.KindRefresh, "no refresh token held")
	}

	pair, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		s.state.Clear(ctx)
		s.log.Warn().Err(err).Msg("session refresh failed, session cleared")
		return "", err
	}

	s.state.UpdateTokens(ctx, pair.AccessToken, pair.RefreshToken)
	return pair.AccessToken, nil
}
