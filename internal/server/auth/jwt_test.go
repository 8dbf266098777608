package auth

import (
	"testing"
	"time"

	"github.com/avoropay/finsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-secret")

func TestGenerateAndVerify(t *testing.T) {
	token, err := GenerateToken("u1", testKey, 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := GetUserIDFromToken(token, testKey)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestVerify_Expired(t *testing.T) {
	token, err := GenerateToken("u1", testKey, -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, testKey)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_WrongKey(t *testing.T) {
	token, err := GenerateToken("u1", testKey, 30*time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("other-secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := GetUserIDFromToken("not.a.jwt", testKey)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_EmptySubject(t *testing.T) {
	token, err := GenerateToken("", testKey, time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, testKey)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
