package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// HSVerifier проверяет access-токены HS256; токены выпускает другой сервис.
type HSVerifier struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

func NewHSVerifier(secret, issuer, audience string) *HSVerifier {
	return &HSVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

type accessClaims struct {
	jwt.RegisteredClaims
}

// ParseAccess returns the principal id carried in the "sub" claim.
func (v *HSVerifier) ParseAccess(ctx context.Context, raw string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(raw, &accessClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	},
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	uid, err := uuid.Parse(claims.Subject)
	if err != nil || uid == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	return uid, nil
}
