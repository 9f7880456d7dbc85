package auth

import (
	"testing"
	"time"

	"github.com/calebmorse/taskdeck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-32-characters-long!!"

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	tm := NewTokenManager(testSecret, 7*24*time.Hour)

	tokenString, err := tm.Generate("acct_123", models.RoleManager)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := tm.Validate(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "acct_123", claims.AccountID)
	assert.Equal(t, models.RoleManager, claims.Role)
	assert.NotEmpty(t, claims.ID, "token must carry a jti")
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenManager_Validate_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, -time.Minute)

	tokenString, err := tm.Generate("acct_123", models.RoleUser)
	require.NoError(t, err)

	_, err = tm.Validate(tokenString)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestTokenManager_Validate_WrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	other := NewTokenManager("another-secret-32-characters!!!!", time.Hour)

	tokenString, err := tm.Generate("acct_123", models.RoleUser)
	require.NoError(t, err)

	_, err = other.Validate(tokenString)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestTokenManager_Validate_Malformed(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.Validate(tokenString)
		assert.ErrorIs(t, err, models.ErrTokenInvalid, "token %q", tokenString)
	}
}

func TestTokenManager_Validate_MissingSubject(t *testing.T) {
	// A structurally valid token without an account id must fail closed.
	tm := NewTokenManager(testSecret, time.Hour)

	tokenString, err := tm.Generate("", models.RoleUser)
	require.NoError(t, err)

	_, err = tm.Validate(tokenString)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestTimingDelay_WaitFrom(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 30})

	start := time.Now()
	td.WaitFrom(start, false)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	// Success path returns immediately unless configured otherwise.
	start = time.Now()
	td.WaitFrom(start, true)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}
