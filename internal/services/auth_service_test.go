package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebmorse/taskdeck/internal/auth"
	"github.com/calebmorse/taskdeck/internal/models"
	pkgauth "github.com/calebmorse/taskdeck/pkg/auth"
	pkglogger "github.com/calebmorse/taskdeck/pkg/logger"
)

const testPassword = "SecurePassword123"

func newTestAuthService(repo *MockAccountRepository, email EmailSender) *AuthService {
	logger := slog.Default()
	return NewAuthService(
		repo,
		auth.NewTokenManager("test-secret-at-least-32-characters-long", 7*24*time.Hour),
		email,
		auth.NewTimingDelay(auth.TimingConfig{}),
		AuthConfig{
			LockoutThreshold: 5,
			LockoutDuration:  2 * time.Hour,
			VerificationTTL:  24 * time.Hour,
			ResetTTL:         time.Hour,
		},
		logger,
		pkglogger.NewAuditLogger(logger),
	)
}

func newTestAccount(t *testing.T, password string) *models.Account {
	t.Helper()
	hash, err := pkgauth.HashPassword(password)
	require.NoError(t, err)
	return &models.Account{
		ID:           "acct_123",
		Email:        "user@example.com",
		PasswordHash: hash,
		FirstName:    "Jane",
		LastName:     "Doe",
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	var sentToken string
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, account *models.Account) (*models.Account, error) {
			account.ID = "acct_123"
			account.CreatedAt = time.Now()
			account.UpdatedAt = time.Now()
			return account, nil
		},
	}
	email := &MockEmailSender{
		SendVerificationEmailFunc: func(ctx context.Context, email, token string, expiresAt time.Time) error {
			sentToken = token
			return nil
		},
	}

	svc := newTestAuthService(repo, email)
	resp, err := svc.Register(context.Background(), "User@Example.com", testPassword, "Jane", "Doe")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "user@example.com", resp.Account.Email)
	assert.Equal(t, models.RoleUser, resp.Account.Role)
	assert.NotEmpty(t, resp.Token)
	assert.Len(t, resp.VerificationToken, 64)
	assert.Equal(t, resp.VerificationToken, sentToken)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return &models.Account{ID: "acct_existing", Email: email}, nil
		},
	}

	svc := newTestAuthService(repo, nil)
	resp, err := svc.Register(context.Background(), "user@example.com", testPassword, "Jane", "Doe")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc := newTestAuthService(&MockAccountRepository{}, nil)
	resp, err := svc.Register(context.Background(), "user@example.com", "short", "Jane", "Doe")

	assert.Nil(t, resp)
	var validationErr *pkgauth.PasswordValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestAuthService_Register_EmailSendFailureDoesNotFailRegistration(t *testing.T) {
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, account *models.Account) (*models.Account, error) {
			account.ID = "acct_123"
			return account, nil
		},
	}
	email := &MockEmailSender{
		SendVerificationEmailFunc: func(ctx context.Context, email, token string, expiresAt time.Time) error {
			return errors.New("ses unavailable")
		},
	}

	svc := newTestAuthService(repo, email)
	resp, err := svc.Register(context.Background(), "user@example.com", testPassword, "Jane", "Doe")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.VerificationToken)
}

func TestAuthService_Login_Success(t *testing.T) {
	account := newTestAccount(t, testPassword)
	account.LoginAttempts = 3

	var successRecorded bool
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return account, nil
		},
		RecordLoginSuccessFunc: func(ctx context.Context, id string, at time.Time) error {
			successRecorded = true
			assert.Equal(t, account.ID, id)
			return nil
		},
	}

	svc := newTestAuthService(repo, nil)
	resp, err := svc.Login(context.Background(), "user@example.com", testPassword, "203.0.113.7")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, successRecorded, "success must reset the attempt counter")
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, resp.Account.LastLogin)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newTestAuthService(repo, nil)
	resp, err := svc.Login(context.Background(), "nobody@example.com", testPassword, "")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthService_Login_WrongPasswordIncrementsCounter(t *testing.T) {
	account := newTestAccount(t, testPassword)
	account.LoginAttempts = 2

	var recordedAttempts int
	var recordedLock *time.Time
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return account, nil
		},
		RecordLoginFailureFunc: func(ctx context.Context, id string, attempts int, lockUntil *time.Time) error {
			recordedAttempts = attempts
			recordedLock = lockUntil
			return nil
		},
	}

	svc := newTestAuthService(repo, nil)
	_, err := svc.Login(context.Background(), "user@example.com", "WrongPassword1", "")

	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, 3, recordedAttempts)
	assert.Nil(t, recordedLock, "below the threshold no lock is set")
}

func TestAuthService_Login_FifthFailureLocksAccount(t *testing.T) {
	account := newTestAccount(t, testPassword)
	account.LoginAttempts = 4

	var recordedAttempts int
	var recordedLock *time.Time
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return account, nil
		},
		RecordLoginFailureFunc: func(ctx context.Context, id string, attempts int, lockUntil *time.Time) error {
			recordedAttempts = attempts
			recordedLock = lockUntil
			return nil
		},
	}

	svc := newTestAuthService(repo, nil)
	_, err := svc.Login(context.Background(), "user@example.com", "WrongPassword1", "")

	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, 5, recordedAttempts)
	require.NotNil(t, recordedLock)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), *recordedLock, time.Minute)
}

func TestAuthService_Login_LockedRejectsCorrectPassword(t *testing.T) {
	account := newTestAccount(t, testPassword)
	account.LoginAttempts = 5
	lockUntil := time.Now().Add(time.Hour)
	account.LockUntil = &lockUntil

	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return account, nil
		},
		RecordLoginFailureFunc: func(ctx context.Context, id string, attempts int, lockUntil *time.Time) error {
			t.Fatal("a locked account must not record further failures")
			return nil
		},
	}

	svc := newTestAuthService(repo, nil)
	resp, err := svc.Login(context.Background(), "user@example.com", testPassword, "")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrAccountLocked)
}

func TestAuthService_Login_ExpiredLockAllowsSuccess(t *testing.T) {
	account := newTestAccount(t, testPassword)
	account.LoginAttempts = 5
	lockUntil := time.Now().Add(-time.Minute)
	account.LockUntil = &lockUntil

	var successRecorded bool
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return account, nil
		},
		RecordLoginSuccessFunc: func(ctx context.Context, id string, at time.Time) error {
			successRecorded = true
			return nil
		},
	}

	svc := newTestAuthService(repo, nil)
	resp, err := svc.Login(context.Background(), "user@example.com", testPassword, "")

	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.True(t, successRecorded)
}

func TestAuthService_Login_ExpiredLockFailureRestartsCounter(t *testing.T) {
	account := newTestAccount(t, testPassword)
	account.LoginAttempts = 5
	lockUntil := time.Now().Add(-time.Minute)
	account.LockUntil = &lockUntil

	var recordedAttempts int
	var recordedLock *time.Time
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return account, nil
		},
		RecordLoginFailureFunc: func(ctx context.Context, id string, attempts int, lockUntil *time.Time) error {
			recordedAttempts = attempts
			recordedLock = lockUntil
			return nil
		},
	}

	svc := newTestAuthService(repo, nil)
	_, err := svc.Login(context.Background(), "user@example.com", "WrongPassword1", "")

	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, 1, recordedAttempts, "the attempt after an expired lock starts a new series")
	assert.Nil(t, recordedLock)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	account := newTestAccount(t, testPassword)
	account.Status = models.StatusSuspended

	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return account, nil
		},
	}

	svc := newTestAuthService(repo, nil)
	resp, err := svc.Login(context.Background(), "user@example.com", testPassword, "")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrAccountNotActive)
}

func TestAuthService_VerifyEmail_Success(t *testing.T) {
	account := newTestAccount(t, testPassword)
	account.IsEmailVerified = true

	repo := &MockAccountRepository{
		ConsumeVerificationTokenFunc: func(ctx context.Context, token string) (*models.Account, error) {
			assert.Equal(t, "sometoken", token)
			return account, nil
		},
	}

	svc := newTestAuthService(repo, nil)
	resp, err := svc.VerifyEmail(context.Background(), "sometoken")

	require.NoError(t, err)
	assert.True(t, resp.IsEmailVerified)
}

func TestAuthService_VerifyEmail_InvalidOrExpiredToken(t *testing.T) {
	repo := &MockAccountRepository{
		ConsumeVerificationTokenFunc: func(ctx context.Context, token string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newTestAuthService(repo, nil)
	_, err := svc.VerifyEmail(context.Background(), "expired")

	assert.ErrorIs(t, err, models.ErrActionTokenInvalid)
}

func TestAuthService_VerifyEmail_EmptyToken(t *testing.T) {
	svc := newTestAuthService(&MockAccountRepository{}, nil)
	_, err := svc.VerifyEmail(context.Background(), "")

	assert.ErrorIs(t, err, models.ErrActionTokenInvalid)
}

func TestAuthService_ResendVerification_PendingTokenResent(t *testing.T) {
	account := newTestAccount(t, testPassword)
	expires := time.Now().Add(12 * time.Hour)
	account.EmailVerificationToken = "pending-verification-token"
	account.EmailVerificationExpires = &expires

	var sentToken string
	repo := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return account, nil
		},
		SetVerificationTokenFunc: func(ctx context.Context, id, token string, expires time.Time) error {
			t.Fatal("an unexpired pending token must not be replaced")
			return nil
		},
	}
	email := &MockEmailSender{
		SendVerificationEmailFunc: func(ctx context.Context, email, token string, expiresAt time.Time) error {
			sentToken = token
			return nil
		},
	}

	svc := newTestAuthService(repo, email)
	token, err := svc.ResendVerification(context.Background(), account.ID)

	require.NoError(t, err)
	assert.Equal(t, "pending-verification-token", token)
	assert.Equal(t, "pending-verification-token", sentToken)
}

func TestAuthService_ResendVerification_ExpiredTokenReplaced(t *testing.T) {
	account := newTestAccount(t, testPassword)
	expired := time.Now().Add(-time.Hour)
	account.EmailVerificationToken = "stale-token"
	account.EmailVerificationExpires = &expired

	var storedToken string
	var sentToken string
	repo := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return account, nil
		},
		SetVerificationTokenFunc: func(ctx context.Context, id, token string, expires time.Time) error {
			storedToken = token
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), expires, time.Minute)
			return nil
		},
	}
	email := &MockEmailSender{
		SendVerificationEmailFunc: func(ctx context.Context, email, token string, expiresAt time.Time) error {
			sentToken = token
			return nil
		},
	}

	svc := newTestAuthService(repo, email)
	token, err := svc.ResendVerification(context.Background(), account.ID)

	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.NotEqual(t, "stale-token", token)
	assert.Equal(t, storedToken, token)
	assert.Equal(t, sentToken, token)
}

func TestAuthService_ResendVerification_AlreadyVerified(t *testing.T) {
	account := newTestAccount(t, testPassword)
	account.IsEmailVerified = true

	repo := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return account, nil
		},
	}

	svc := newTestAuthService(repo, nil)
	_, err := svc.ResendVerification(context.Background(), account.ID)

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAuthService_ForgotPassword_KnownEmailStoresToken(t *testing.T) {
	account := newTestAccount(t, testPassword)

	var storedToken string
	var sentToken string
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return account, nil
		},
		SetResetTokenFunc: func(ctx context.Context, id, token string, expires time.Time) error {
			storedToken = token
			assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)
			return nil
		},
	}
	email := &MockEmailSender{
		SendPasswordResetEmailFunc: func(ctx context.Context, email, token string, expiresAt time.Time) error {
			sentToken = token
			return nil
		},
	}

	svc := newTestAuthService(repo, email)
	err := svc.ForgotPassword(context.Background(), "user@example.com")

	require.NoError(t, err)
	assert.Len(t, storedToken, 64)
	assert.Equal(t, storedToken, sentToken)
}

func TestAuthService_ForgotPassword_UnknownEmailLooksTheSame(t *testing.T) {
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
		SetResetTokenFunc: func(ctx context.Context, id, token string, expires time.Time) error {
			t.Fatal("no token may be stored for an unknown email")
			return nil
		},
	}

	svc := newTestAuthService(repo, nil)
	err := svc.ForgotPassword(context.Background(), "nobody@example.com")

	assert.NoError(t, err, "unknown emails must not produce an error")
}

func TestAuthService_ForgotPassword_PendingTokenResent(t *testing.T) {
	account := newTestAccount(t, testPassword)
	expires := time.Now().Add(30 * time.Minute)
	account.PasswordResetToken = "pending-reset-token"
	account.PasswordResetExpires = &expires

	var sentToken string
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return account, nil
		},
		SetResetTokenFunc: func(ctx context.Context, id, token string, expires time.Time) error {
			t.Fatal("an unexpired pending token must not be replaced")
			return nil
		},
	}
	email := &MockEmailSender{
		SendPasswordResetEmailFunc: func(ctx context.Context, email, token string, expiresAt time.Time) error {
			sentToken = token
			return nil
		},
	}

	svc := newTestAuthService(repo, email)
	err := svc.ForgotPassword(context.Background(), "user@example.com")

	require.NoError(t, err)
	assert.Equal(t, "pending-reset-token", sentToken)
}

func TestAuthService_ResetPassword_Success(t *testing.T) {
	account := newTestAccount(t, testPassword)

	var newHash string
	repo := &MockAccountRepository{
		ConsumeResetTokenFunc: func(ctx context.Context, token, passwordHash string) (*models.Account, error) {
			assert.Equal(t, "resettoken", token)
			newHash = passwordHash
			return account, nil
		},
	}

	svc := newTestAuthService(repo, nil)
	err := svc.ResetPassword(context.Background(), "resettoken", "BrandNewPassword1")

	require.NoError(t, err)
	assert.NoError(t, pkgauth.ComparePassword(newHash, "BrandNewPassword1"))
}

func TestAuthService_ResetPassword_ConsumedTokenNotReusable(t *testing.T) {
	repo := &MockAccountRepository{
		ConsumeResetTokenFunc: func(ctx context.Context, token, passwordHash string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newTestAuthService(repo, nil)
	err := svc.ResetPassword(context.Background(), "already-used", "BrandNewPassword1")

	assert.ErrorIs(t, err, models.ErrActionTokenInvalid)
}

func TestAuthService_ResetPassword_WeakPasswordRejectedBeforeConsume(t *testing.T) {
	repo := &MockAccountRepository{
		ConsumeResetTokenFunc: func(ctx context.Context, token, passwordHash string) (*models.Account, error) {
			t.Fatal("a weak password must not consume the token")
			return nil, nil
		},
	}

	svc := newTestAuthService(repo, nil)
	err := svc.ResetPassword(context.Background(), "resettoken", "weak")

	var validationErr *pkgauth.PasswordValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestAuthService_ChangePassword_Success(t *testing.T) {
	account := newTestAccount(t, testPassword)

	var newHash string
	repo := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return account, nil
		},
		UpdatePasswordHashFunc: func(ctx context.Context, id, passwordHash string) error {
			newHash = passwordHash
			return nil
		},
	}

	svc := newTestAuthService(repo, nil)
	err := svc.ChangePassword(context.Background(), account.ID, testPassword, "BrandNewPassword1")

	require.NoError(t, err)
	assert.NoError(t, pkgauth.ComparePassword(newHash, "BrandNewPassword1"))
}

func TestAuthService_ChangePassword_WrongCurrentPassword(t *testing.T) {
	account := newTestAccount(t, testPassword)

	repo := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return account, nil
		},
		UpdatePasswordHashFunc: func(ctx context.Context, id, passwordHash string) error {
			t.Fatal("the hash must not change when the current password is wrong")
			return nil
		},
	}

	svc := newTestAuthService(repo, nil)
	err := svc.ChangePassword(context.Background(), account.ID, "NotTheCurrentOne1", "BrandNewPassword1")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}
