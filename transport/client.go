// Package transport implements the request pipeline for arbitrary API
// calls: every outgoing request is stamped with the access token currently
// held by the session, and an unauthorized response triggers one shared
// token refresh followed by a single replay.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-auth-client/apierror"
	"github.com/jrsteele09/go-auth-client/token"
)

// ErrUnauthorized marks a terminally unauthorized request: either no
// refresh token was available, or the replay after a refresh was rejected
// again. It is wrapped inside the surfaced apierror.
var ErrUnauthorized = errors.New("request unauthorized")

// refreshKey collapses all concurrent refresh attempts onto one call.
const refreshKey = "refresh"

// TokenSource exposes the tokens currently held by the session state.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
}

// Refresher mints a new access token from the current refresh token,
// clearing the session when the exchange fails terminally.
type Refresher interface {
	RefreshSession(ctx context.Context) (string, error)
}

// Client dispatches authorized API requests.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	refresher Refresher
	timeout   time.Duration
	leeway    time.Duration
	group     singleflight.Group
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithTimeout sets the per-request timeout. A timed-out request is a
// network failure, never a trigger for the refresh path.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithProactiveRefresh refreshes before dispatch when the held access token
// expires within leeway. Zero (the default) disables the check; the 401
// path below still covers expiry either way.
func WithProactiveRefresh(leeway time.Duration) Option {
	return func(c *Client) {
		c.leeway = leeway
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a request pipeline over the given token source and refresher.
func New(baseURL string, tokens TokenSource, refresher Refresher, options ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{},
		tokens:    tokens,
		refresher: refresher,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// GetJSON issues an authorized GET and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues an authorized POST with a JSON body and decodes the
// response into out. out may be nil when the response body is irrelevant.
func (c *Client) PostJSON(ctx context.Context, path string, payload, out any) error {
	return c.Do(ctx, http.MethodPost, path, payload, out)
}

// Do sends one authorized request. The access token is captured once at
// dispatch; an unauthorized response triggers at most one refresh and one
// replay with the token that refresh produced.
func (c *Client) Do(ctx context.Context, method, path string, payload, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return apierror.Wrap(apierror.KindUnexpected, err, "marshal request body")
		}
		body = data
	}

	requestID := uuid.NewString()
	accessToken := c.tokens.AccessToken()

	if c.leeway > 0 && accessToken != "" && token.ExpiresWithin(accessToken, c.leeway) {
		if refreshed, err := c.sharedRefresh(ctx); err == nil {
			accessToken = refreshed
		}
		// A failed proactive refresh falls through to a normal dispatch:
		// the server, not the claim peek, decides whether the token works.
	}

	status, respBody, err := c.send(ctx, method, path, body, accessToken, requestID)
	if err != nil {
		return classifyTransportError(err)
	}
	if status != http.StatusUnauthorized {
		return decodeResponse(status, respBody, out)
	}

	// Unauthorized. Nothing to refresh with: propagate immediately.
	if c.tokens.RefreshToken() == "" {
		return apierror.Wrap(apierror.KindUnexpected, ErrUnauthorized, "request unauthorized and no refresh token held")
	}

	newToken, err := c.sharedRefresh(ctx)
	if err != nil {
		// The session is already cleared by the refresher when the
		// exchange failed terminally. Propagate the original failure.
		c.log.Warn().Str("request_id", requestID).Err(err).Msg("token refresh failed")
		return apierror.Wrap(apierror.KindRefresh, ErrUnauthorized, "request unauthorized and token refresh failed")
	}

	c.log.Debug().Str("request_id", requestID).Msg("token refreshed, replaying request")
	status, respBody, err = c.send(ctx, method, path, body, newToken, requestID)
	if err != nil {
		return classifyTransportError(err)
	}
	if status == http.StatusUnauthorized {
		// Second unauthorized outcome: never retry again.
		return apierror.Wrap(apierror.KindUnexpected, ErrUnauthorized, "request unauthorized after token refresh")
	}
	return decodeResponse(status, respBody, out)
}

// sharedRefresh funnels concurrent refresh attempts into a single call.
// Every waiter observes the same outcome and token.
func (c *Client) sharedRefresh(ctx context.Context) (string, error) {
	result, err, _ := c.group.Do(refreshKey, func() (any, error) {
		return c.refresher.RefreshSession(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, accessToken, requestID string) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func decodeResponse(status int, body []byte, out any) error {
	if status < 200 || status > 299 {
		return apierror.New(apierror.KindUnexpected, statusMessage(status, body))
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apierror.Wrap(apierror.KindUnexpected, err, "malformed response body")
	}
	return nil
}

func statusMessage(status int, body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return http.StatusText(status)
}

// classifyTransportError maps no-response failures. Timeouts are network
// errors by contract: without a status there is nothing for the refresh
// path to act on.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apierror.Wrap(apierror.KindNetwork, err, "request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return apierror.Wrap(apierror.KindNetwork, err, "request canceled")
	}
	return apierror.Wrap(apierror.KindNetwork, err, "no response from server")
}
