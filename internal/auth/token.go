// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// Claims is the JWT payload carried by an access token
type Claims struct {
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenManager creates a token manager
func NewTokenManager(secret string, ttl time.Duration, issuer string) *TokenManager {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue creates a signed token for the user
func (m *TokenManager) Issue(user *entity.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses the token and returns the caller it identifies
func (m *TokenManager) Verify(tokenString string) (entity.Caller, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return entity.Caller{}, fmt.Errorf("%w: %w", entity.ErrUnauthenticated, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return entity.Caller{}, fmt.Errorf("%w: bad subject %q", entity.ErrUnauthenticated, claims.Subject)
	}
	if !claims.Role.IsValid() {
		return entity.Caller{}, fmt.Errorf("%w: bad role %q", entity.ErrUnauthenticated, claims.Role)
	}

	return entity.Caller{UserID: id, Role: claims.Role}, nil
}
