// Package token peeks at access-token claims without verifying them.
// Verification belongs to the server; the client only reads the expiry so
// the pipeline can refresh ahead of a guaranteed rejection.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ExpiresWithin reports whether the token's exp claim falls inside the next
// leeway window. Opaque or claim-less tokens report false: their validity
// can only be learned from the server.
func ExpiresWithin(raw string, leeway time.Duration) bool {
	expiry := expirationTime(raw)
	if expiry == nil {
		return false
	}
	return expiry.Sub(NowTimeFunc()) <= leeway
}

func expirationTime(raw string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return nil
	}
	return &expiry.Time
}
