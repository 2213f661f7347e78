package remotesvc

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenExpired reports whether the bearer token is expired at now. The signature is not
// checked; a token that cannot be parsed counts as expired.
func TokenExpired(token string, now time.Time) bool {
	claims := new(jwt.StandardClaims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return true
	}
	return claims.ExpiresAt != 0 && now.Unix() >= claims.ExpiresAt
}
