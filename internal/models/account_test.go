package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccount_IsLocked(t *testing.T) {
	now := time.Now()
	future := now.Add(30 * time.Minute)
	past := now.Add(-30 * time.Minute)

	tests := []struct {
		name      string
		lockUntil *time.Time
		want      bool
	}{
		{"no lock", nil, false},
		{"lock in the future", &future, true},
		{"expired lock equals no lock", &past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{LockUntil: tt.lockUntil}
			assert.Equal(t, tt.want, a.IsLocked(now))
		})
	}
}

func TestAccount_LockExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&Account{}).LockExpired(now))
	assert.True(t, (&Account{LockUntil: &past}).LockExpired(now))
	assert.False(t, (&Account{LockUntil: &future}).LockExpired(now))
}

func TestAccount_PendingTokens(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	a := &Account{
		EmailVerificationToken:   "deadbeef",
		EmailVerificationExpires: &future,
		PasswordResetToken:       "cafebabe",
		PasswordResetExpires:     &past,
	}

	assert.True(t, a.HasPendingVerification(now))
	// A value match with an expired timestamp is not a pending token.
	assert.False(t, a.HasPendingReset(now))

	// Cleared token is not pending regardless of expiry.
	a.EmailVerificationToken = ""
	assert.False(t, a.HasPendingVerification(now))
}

func TestValidRoleAndStatus(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleManager))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("superuser"))

	assert.True(t, ValidStatus(StatusActive))
	assert.True(t, ValidStatus(StatusInactive))
	assert.True(t, ValidStatus(StatusSuspended))
	assert.False(t, ValidStatus("deleted"))
}
