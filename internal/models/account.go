package models

import (
	"time"
)

// Account roles, coarse-grained authorization tags.
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Account statuses. Only active accounts may authenticate.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// Account is the credential record. The password hash and pending action
// tokens are held here but are never serialized to an external representation;
// the API layer converts accounts to AccountResponse DTOs instead.
type Account struct {
	ID           string
	Email        string // unique, stored lowercase
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	Status       string

	// Lockout state. LoginAttempts counts consecutive failures; LockUntil is
	// set when the attempt threshold is reached and is honored only while it
	// lies in the future.
	LoginAttempts int
	LockUntil     *time.Time

	// Email verification state.
	IsEmailVerified          bool
	EmailVerificationToken   string
	EmailVerificationExpires *time.Time

	// Password reset state.
	PasswordResetToken   string
	PasswordResetExpires *time.Time

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether the lockout policy blocks authentication at the
// given instant. An expired lock is equivalent to no lock.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockUntil != nil && now.Before(*a.LockUntil)
}

// LockExpired reports whether a previously set lock has elapsed.
func (a *Account) LockExpired(now time.Time) bool {
	return a.LockUntil != nil && !now.Before(*a.LockUntil)
}

// HasPendingVerification reports whether an unexpired email verification
// token is outstanding.
func (a *Account) HasPendingVerification(now time.Time) bool {
	return a.EmailVerificationToken != "" &&
		a.EmailVerificationExpires != nil &&
		now.Before(*a.EmailVerificationExpires)
}

// HasPendingReset reports whether an unexpired password reset token is
// outstanding.
func (a *Account) HasPendingReset(now time.Time) bool {
	return a.PasswordResetToken != "" &&
		a.PasswordResetExpires != nil &&
		now.Before(*a.PasswordResetExpires)
}

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// ValidStatus reports whether the given status is one of the known statuses.
func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}
