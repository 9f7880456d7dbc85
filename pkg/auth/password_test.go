package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	password := "Sup3rSecret!"

	hash, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hash)

	assert.NoError(t, ComparePassword(hash, password))
	assert.Error(t, ComparePassword(hash, "Sup3rSecret?"))
}

func TestHashPassword_SaltUniqueness(t *testing.T) {
	password := "Sup3rSecret!"

	hash1, err := HashPassword(password)
	require.NoError(t, err)
	hash2, err := HashPassword(password)
	require.NoError(t, err)

	// Each call salts independently, so the stored values differ but both verify.
	assert.NotEqual(t, hash1, hash2)
	assert.NoError(t, ComparePassword(hash1, password))
	assert.NoError(t, ComparePassword(hash2, password))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Passw0rd!x", false},
		{"minimum length boundary", "Abcdefg1", false},
		{"too short", "Ab1x", true},
		{"no uppercase", "passw0rd!x", true},
		{"no lowercase", "PASSW0RD!X", true},
		{"no digit", "Password!x", true},
		{"too common", "Passw0rd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword_ReportsAllProblems(t *testing.T) {
	err := ValidatePassword("abc")
	require.Error(t, err)

	var ve *PasswordValidationError
	require.ErrorAs(t, err, &ve)
	// Short, no uppercase, no digit.
	assert.Len(t, ve.Errors, 3)
}

func TestGenerateActionToken(t *testing.T) {
	token1, err := GenerateActionToken()
	require.NoError(t, err)
	token2, err := GenerateActionToken()
	require.NoError(t, err)

	assert.Len(t, token1, ActionTokenBytes*2)
	assert.NotEqual(t, token1, token2)

	_, err = hex.DecodeString(token1)
	assert.NoError(t, err, "token must be valid hex")
}
