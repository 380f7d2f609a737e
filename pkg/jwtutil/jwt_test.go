package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokenWithOrg(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})

	orgID := uint(42)
	token, err := util.GenerateTokenWithOrg("ana@example.com", 7, &orgID, "Acme Estates", "owner")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, uint(7), claims.UserID)
	require.NotNil(t, claims.OrgID)
	assert.Equal(t, uint(42), *claims.OrgID)
	assert.Equal(t, "Acme Estates", claims.OrgName)
	assert.Equal(t, "owner", claims.Role)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	issuer := NewJWTUtil(&JWTConfig{SigningKey: "key-a", ExpirationHours: 1})
	verifier := NewJWTUtil(&JWTConfig{SigningKey: "key-b", ExpirationHours: 1})

	token, err := issuer.GenerateToken("ana@example.com", 7)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})

	_, err := util.ValidateToken("not-a-token")
	assert.Error(t, err)
}
