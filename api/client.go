// Package api provides the low-level bindings for the remote auth
// endpoints. It performs no token management of its own: the auth gateway
// and request pipeline decide which credential accompanies each call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/apierror"
	"github.com/jrsteele09/go-auth-client/users"
)

const defaultTimeout = 10 * time.Second

// Client issues requests against the auth endpoints of a single base URL.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates an endpoint client for the given base URL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: defaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// IssueToken exchanges credentials for an access/refresh token pair.
func (c *Client) IssueToken(ctx context.Context, creds Credentials) (*TokenPair, error) {
	status, body, err := c.roundTrip(ctx, http.MethodPost, TokenPath, creds, "")
	if err != nil {
		return nil, networkError(err)
	}
	if status != http.StatusOK {
		return nil, decodeError(apierror.KindCredential, status, body, msgLoginFailed)
	}

	var pair TokenPair
	if err := json.Unmarshal(body, &pair); err != nil || pair.AccessToken == "" {
		return nil, apierror.New(apierror.KindUnexpected, "malformed token response")
	}
	return &pair, nil
}

// FetchProfile retrieves the profile owning the given access token.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*users.User, error) {
	status, body, err := c.roundTrip(ctx, http.MethodGet, ProfilePath, nil, accessToken)
	if err != nil {
		return nil, networkError(err)
	}
	if status != http.StatusOK {
		return nil, decodeError(apierror.KindUnexpected, status, body, "failed to fetch user profile")
	}

	var user users.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, apierror.Wrap(apierror.KindUnexpected, err, "malformed profile response")
	}
	return &user, nil
}

// Register submits new-account fields and returns the created record.
// Rejections carry per-field messages.
func (c *Client) Register(ctx context.Context, fields Registration) (*users.User, error) {
	status, body, err := c.roundTrip(ctx, http.MethodPost, RegisterPath, fields, "")
	if err != nil {
		return nil, networkError(err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, decodeError(apierror.KindValidation, status, body, msgRegisterFailed)
	}

	var user users.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, apierror.Wrap(apierror.KindUnexpected, err, "malformed registration response")
	}
	return &user, nil
}

// Refresh exchanges a refresh token for a new access token, and possibly a
// rotated refresh token. RefreshToken is empty in the result when the
// server chose not to rotate.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	status, body, err := c.roundTrip(ctx, http.MethodPost, RefreshPath, refreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return nil, networkError(err)
	}
	if status != http.StatusOK {
		return nil, decodeError(apierror.KindRefresh, status, body, "refresh token rejected")
	}

	var refreshed refreshResponse
	if err := json.Unmarshal(body, &refreshed); err != nil || refreshed.AccessToken == "" {
		return nil, apierror.New(apierror.KindUnexpected, "malformed refresh response")
	}
	return &TokenPair{AccessToken: refreshed.AccessToken, RefreshToken: refreshed.RefreshToken}, nil
}

// Revoke asks the server to invalidate a refresh token. Best effort: the
// caller logs and ignores failures.
func (c *Client) Revoke(ctx context.Context, refreshToken string) error {
	status, body, err := c.roundTrip(ctx, http.MethodPost, LogoutPath, refreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return networkError(err)
	}
	if status < 200 || status > 299 {
		return decodeError(apierror.KindUnexpected, status, body, "logout rejected")
	}
	return nil
}

// roundTrip sends one request and returns the raw status and body. A nil
// error means a response arrived; classifying the status is the caller's
// job. Transport failures and timeouts come back as errors.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload any, bearer string) (int, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, errors.Wrap(err, "marshal request body")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("path", path).Msg("request failed")
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "read response body")
	}
	return resp.StatusCode, body, nil
}
