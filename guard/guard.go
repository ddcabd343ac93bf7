// Package guard gates navigation to protected views on session state. It
// only reads the session: unauthenticated visitors are redirected to the
// login entry point, and the originally requested destination is remembered
// for the post-login return.
package guard

import "sync"

// Authenticator is the read-only session surface the guard consults.
type Authenticator interface {
	IsAuthenticated() bool
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allow      bool
	RedirectTo string // login entry point when Allow is false
}

// Guard checks protected navigation targets against the session.
type Guard struct {
	mu        sync.Mutex
	auth      Authenticator
	loginPath string
	returnTo  string
}

// New creates a guard redirecting unauthenticated visitors to loginPath.
func New(auth Authenticator, loginPath string) *Guard {
	return &Guard{auth: auth, loginPath: loginPath}
}

// Check decides whether the target may be rendered. When the session is
// unauthenticated the target is remembered and a redirect to the login
// entry point is returned instead.
func (g *Guard) Check(target string) Decision {
	if g.auth.IsAuthenticated() {
		return Decision{Allow: true}
	}

	g.mu.Lock()
	g.returnTo = target
	g.mu.Unlock()
	return Decision{RedirectTo: g.loginPath}
}

// ConsumeReturnTo yields the destination remembered by the last denied
// check and forgets it. ok is false when nothing was remembered.
func (g *Guard) ConsumeReturnTo() (target string, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.returnTo == "" {
		return "", false
	}
	target, g.returnTo = g.returnTo, ""
	return target, true
}
