package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("unit-test-key")

func TestGenerateAndValidateRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-42", "alice", testKey)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, testKey)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := GenerateJWT("user-42", "alice", testKey)
	require.NoError(t, err)

	_, err = ValidateJWT(token, []byte("a different key"))
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token", testKey)
	assert.Error(t, err)
}

func TestValidateRejectsMissingUserId(t *testing.T) {
	token, err := GenerateJWT("", "nameless", testKey)
	require.NoError(t, err)

	_, err = ValidateJWT(token, testKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user id")
}
