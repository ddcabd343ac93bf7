package api

// Remote endpoint paths, relative to the configured base URL.
const (
	TokenPath    = "/auth/token/"
	ProfilePath  = "/auth/user/"
	RegisterPath = "/auth/register/"
	RefreshPath  = "/auth/token/refresh/"
	LogoutPath   = "/auth/logout/"
)

// Credentials is the token-issue request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the new-account request body.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is the token-issue response.
//
// AccessToken is short-lived and attached as "Authorization: Bearer <token>"
// to every authorized request. RefreshToken is longer-lived and exchanged
// only for new access tokens.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// refreshRequest is the token-refresh and logout request body.
type refreshRequest struct {
	RefreshToken string `json:"refresh"`
}

// refreshResponse is the token-refresh response. The server may omit the
// refresh token, in which case the client keeps its current one.
type refreshResponse struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh,omitempty"`
}
