package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-client/api"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/jrsteele09/go-auth-client/users"
)

// FetchProfile re-loads the current user's profile through the request
// pipeline, so an expired access token is refreshed transparently. The
// stored profile is updated on success. A terminally unauthorized outcome
// means the session is no longer usable and it is cleared.
func (s *Service) FetchProfile(ctx context.Context, pipeline *transport.Client) (*users.User, error) {
	if pipeline == nil {
		return nil, errors.New("[auth.FetchProfile] pipeline is required")
	}

	var user users.User
	if err := pipeline.GetJSON(ctx, api.ProfilePath, &user); err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			s.state.Clear(ctx)
			s.log.Warn().Msg("profile fetch unauthorized, session cleared")
		}
		return nil, err
	}

	s.state.SetUser(ctx, &user)
	return &user, nil
}
