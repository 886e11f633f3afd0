package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour, "claims")

	token, expires, err := m.Issue(&entity.User{ID: 42, Role: entity.RoleCoordinator})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	caller, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, entity.Caller{UserID: 42, Role: entity.RoleCoordinator}, caller)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour, "claims")
	token, _, err := m.Issue(&entity.User{ID: 1, Role: entity.RoleHR})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenManager("other", time.Hour, "claims").Verify(token)
		assert.ErrorIs(t, err, entity.ErrUnauthenticated)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewTokenManager("s3cret", time.Hour, "elsewhere").Verify(token)
		assert.ErrorIs(t, err, entity.ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenManager("s3cret", time.Hour, "claims")
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Verify(token)
		assert.ErrorIs(t, err, entity.ErrUnauthenticated)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not-a-token")
		assert.ErrorIs(t, err, entity.ErrUnauthenticated)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			Role: entity.RoleHR,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				Issuer:    "claims",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Verify(s)
		assert.ErrorIs(t, err, entity.ErrUnauthenticated)
	})

	t.Run("unknown role", func(t *testing.T) {
		forged, _, err := m.Issue(&entity.User{ID: 3, Role: entity.Role("Dean")})
		require.NoError(t, err)
		_, err = m.Verify(forged)
		assert.ErrorIs(t, err, entity.ErrUnauthenticated)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1", hash)

	assert.NoError(t, CheckPassword(hash, "Secret1"))
	assert.ErrorIs(t, CheckPassword(hash, "secret1"), entity.ErrUnauthenticated)
	assert.ErrorIs(t, CheckPassword("not-a-hash", "Secret1"), entity.ErrUnauthenticated)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Secret1", true},
		{"aB3def", true},
		{"aB3de", false},
		{"secret1", false},
		{"SECRET1", false},
		{"Secrets", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
}
