package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
)

func mintToken(t *testing.T, key string, userID, role string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	const key = "test-signing-key"
	v := NewVerifier(key)
	sponsorID := id.NewUserID()

	t.Run("accepts a valid sponsor assertion", func(t *testing.T) {
		claims, err := v.ValidateToken(mintToken(t, key, sponsorID.String(), "sponsor", time.Hour))
		require.NoError(t, err)
		assert.Equal(t, sponsorID, claims.UserID)
		assert.Equal(t, id.RoleSponsor, claims.Role)
	})

	t.Run("rejects an expired assertion", func(t *testing.T) {
		_, err := v.ValidateToken(mintToken(t, key, sponsorID.String(), "sponsor", -time.Minute))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		_, err := v.ValidateToken(mintToken(t, "other-key", sponsorID.String(), "admin", time.Hour))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects an unknown role claim", func(t *testing.T) {
		_, err := v.ValidateToken(mintToken(t, key, sponsorID.String(), "superuser", time.Hour))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := v.ValidateToken("not-a-token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
