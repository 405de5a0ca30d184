// internal/app/system/auth/token.go
package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a backend-issued JWT without verifying
// its signature; the portal does not hold the signing key and only uses the
// value to stop restoring sessions whose token has certainly expired.
// Opaque (non-JWT) tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
