// Package utils provides token signing and password hashing helpers.
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

// Claims is the payload of an access token. Subject and ID both carry the
// user id.
type Claims struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// AccessToken is a signed JWT with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs an HS256 token for u valid for ttl.
func NewAccessToken(secret string, u model.User, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, errors.Wrap(err, "sign token")
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry and returns the claims.
// Only HMAC-signed tokens are accepted.
func ParseAccessToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
