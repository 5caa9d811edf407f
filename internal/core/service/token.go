package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// DefaultTokenTTL is the validity window of a session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenIssuer signs and verifies HS256 session tokens bound to a user ID.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the validity window applied to issued tokens.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue returns a signed token for userID valid for the issuer's TTL.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks token against the issuer's secret at the current time.
func (t *TokenIssuer) Verify(token string) (string, error) {
	return VerifyToken(token, t.secret, t.now())
}

// VerifyToken validates token against secret as of now and returns the
// user ID it carries. It fails with domain.ErrTokenExpired once the expiry
// has passed and domain.ErrTokenInvalid for any other defect.
func VerifyToken(token string, secret []byte, now time.Time) (string, error) {
	if token == "" {
		return "", domain.ErrTokenInvalid
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}

	if claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.Subject, nil
}
