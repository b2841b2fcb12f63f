package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier validates HS256 access tokens issued by the auth
// endpoints.  The subject claim carries the user id and is_admin carries
// the admin flag.
type JWTVerifier struct {
	Secret string
}

func (v *JWTVerifier) Verify(_ context.Context, credential string) (Identity, error) {
	tok, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; the algorithm in
		// the token header is attacker-controlled.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return []byte(v.Secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, ErrUnauthorized
	}
	isAdmin, _ := claims["is_admin"].(bool)
	return Identity{UserID: sub, IsAdmin: isAdmin}, nil
}
