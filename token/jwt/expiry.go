package jwt

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ExpiresAt reads the exp claim of an access token without verifying its
// signature. The client cannot verify the token (it has no key) and only uses
// the value to decide when to refresh. Opaque tokens report false.
func ExpiresAt(rawToken string) (time.Time, bool) {
	if strings.Count(rawToken, ".") != 2 {
		return time.Time{}, false
	}

	claims := jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Subject returns the sub claim, or "" for opaque tokens.
func Subject(rawToken string) string {
	claims := jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, &claims); err != nil {
		return ""
	}
	return claims.Subject
}

// ExpiresWithin reports whether the token is a JWT that expires before now+skew.
func ExpiresWithin(rawToken string, now time.Time, skew time.Duration) bool {
	exp, ok := ExpiresAt(rawToken)
	if !ok {
		return false
	}
	return !now.Add(skew).Before(exp)
}
