package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what a JWT session token says about its holder. It is decoded
// without verifying the signature and is only fit for display.
type Identity struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// DescribeToken decodes the claims of a JWT token. Tokens that are not JWTs
// yield an error; callers should treat that as "nothing to show".
func DescribeToken(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("decode token: %w", err)
	}

	var id Identity
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		id.Subject = sub
	} else {
		// express backends commonly sign {id, role}
		for _, key := range []string{"id", "_id", "userId"} {
			if v, ok := claims[key].(string); ok && v != "" {
				id.Subject = v
				break
			}
		}
	}
	if role, ok := claims["role"].(string); ok {
		id.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}
