package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calebmorse/taskdeck/internal/auth"
	"github.com/calebmorse/taskdeck/internal/models"
	pkgauth "github.com/calebmorse/taskdeck/pkg/auth"
	pkglogger "github.com/calebmorse/taskdeck/pkg/logger"
)

// AccountRepository defines the credential-store operations the auth flows need.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context, limit, offset int) ([]*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, id string, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, id string) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	RecordLoginFailure(ctx context.Context, id string, attempts int, lockUntil *time.Time) error
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error
	SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error
	ConsumeVerificationToken(ctx context.Context, token string) (*models.Account, error)
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, token, passwordHash string) (*models.Account, error)
}

// EmailSender delivers out-of-band tokens over the email side channel.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email, token string, expiresAt time.Time) error
	SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error
}

// AuthConfig carries the tunables of the account-security core.
type AuthConfig struct {
	LockoutThreshold int
	LockoutDuration  time.Duration
	VerificationTTL  time.Duration
	ResetTTL         time.Duration
}

// AuthService implements registration, login with lockout, and the
// email-verification and password-reset token flows.
type AuthService struct {
	repo        AccountRepository
	tm          *auth.TokenManager
	email       EmailSender
	timing      *auth.TimingDelay
	cfg         AuthConfig
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	repo AccountRepository,
	tm *auth.TokenManager,
	email EmailSender,
	timing *auth.TimingDelay,
	cfg AuthConfig,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		email:       email,
		timing:      timing,
		cfg:         cfg,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// AccountResponse is the external representation of an account. The password
// hash and pending action tokens never appear here.
type AccountResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Role            string     `json:"role"`
	Status          string     `json:"status"`
	IsEmailVerified bool       `json:"is_email_verified"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AuthResponse is the payload returned by register and login.
type AuthResponse struct {
	Account *AccountResponse `json:"user"`
	Token   string           `json:"token"`

	// VerificationToken is echoed on registration so deployments without a
	// mail pipeline can complete verification; empty otherwise.
	VerificationToken string `json:"verificationToken,omitempty"`
}

// Register creates a new account with an unverified email and a pending
// verification token, and issues a bearer token.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if email == "" {
		return nil, fmt.Errorf("%w: email is required", models.ErrBadRequest)
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	// Existence check first for a clean conflict signal; the unique index
	// backstops the race with a concurrent registration.
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("registration failed: email already registered")
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check for existing account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	verificationToken, err := pkgauth.GenerateActionToken()
	if err != nil {
		s.logger.Error("failed to generate verification token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	verificationExpires := time.Now().Add(s.cfg.VerificationTTL)

	account := &models.Account{
		Email:                    email,
		PasswordHash:             passwordHash,
		FirstName:                firstName,
		LastName:                 lastName,
		Role:                     models.RoleUser,
		Status:                   models.StatusActive,
		EmailVerificationToken:   verificationToken,
		EmailVerificationExpires: &verificationExpires,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if s.email != nil {
		if err := s.email.SendVerificationEmail(ctx, email, verificationToken, verificationExpires); err != nil {
			// The token is still returned in the response; registration
			// succeeds even when mail delivery does not.
			s.logger.Error("failed to send verification email",
				slog.String("account_id", created.ID), slog.Any("error", err))
		}
	}

	token, err := s.tm.Generate(created.ID, created.Role)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("account_id", created.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("account registered", slog.String("account_id", created.ID))
	s.auditLogger.LogAccountAction("account_registered", created.ID, "")

	return &AuthResponse{
		Account:           accountToResponse(created),
		Token:             token,
		VerificationToken: verificationToken,
	}, nil
}

// Login authenticates a credential pair and applies the lockout policy. The
// lock itself is authoritative: while locked, the password is not even
// checked.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress string) (*AuthResponse, error) {
	start := time.Now()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.timing.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Same signal as a wrong password; no account enumeration.
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     ipAddress,
				FailureReason: "invalid_credentials",
			})
			s.timing.WaitFrom(start, false)
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get account by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := time.Now()

	if account.IsLocked(now) {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AccountID:     account.ID,
			IPAddress:     ipAddress,
			FailureReason: "account_locked",
		})
		s.timing.WaitFrom(start, false)
		return nil, models.ErrAccountLocked
	}

	// An elapsed lock is equivalent to no lock; the counter restarts and the
	// current attempt counts as the first of a new series.
	attempts := account.LoginAttempts
	if account.LockExpired(now) {
		attempts = 0
	}

	if account.Status != models.StatusActive {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AccountID:     account.ID,
			IPAddress:     ipAddress,
			FailureReason: "account_not_active",
		})
		s.timing.WaitFrom(start, false)
		return nil, models.ErrAccountNotActive
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, password); err != nil {
		attempts++
		var lockUntil *time.Time
		if attempts >= s.cfg.LockoutThreshold {
			until := now.Add(s.cfg.LockoutDuration)
			lockUntil = &until
		}

		if err := s.repo.RecordLoginFailure(ctx, account.ID, attempts, lockUntil); err != nil {
			s.logger.Error("failed to record login failure",
				slog.String("account_id", account.ID), slog.Any("error", err))
		}

		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AccountID:     account.ID,
			IPAddress:     ipAddress,
			FailureReason: "invalid_credentials",
		})
		s.timing.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	if err := s.repo.RecordLoginSuccess(ctx, account.ID, now); err != nil {
		s.logger.Error("failed to record login success",
			slog.String("account_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	account.LoginAttempts = 0
	account.LockUntil = nil
	account.LastLogin = &now

	token, err := s.tm.Generate(account.ID, account.Role)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("account_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("login succeeded", slog.String("account_id", account.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		AccountID: account.ID,
		IPAddress: ipAddress,
		Success:   true,
	})
	s.timing.WaitFrom(start, true)

	return &AuthResponse{
		Account: accountToResponse(account),
		Token:   token,
	}, nil
}

// VerifyEmail consumes a verification token. The repository applies the
// effect and clears the token in one conditional update, so a consumed or
// expired token is simply not found.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*AccountResponse, error) {
	if token == "" {
		return nil, models.ErrActionTokenInvalid
	}

	account, err := s.repo.ConsumeVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "email_verification_failed",
				FailureReason: "invalid_or_expired_token",
			})
			return nil, models.ErrActionTokenInvalid
		}
		s.logger.Error("failed to consume verification token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("email verified", slog.String("account_id", account.ID))
	s.auditLogger.LogAccountAction("email_verified", account.ID, "")

	return accountToResponse(account), nil
}

// ResendVerification re-delivers the verification email for the
// authenticated account. An unexpired pending token is sent again rather
// than replaced, so a link from a moment ago keeps working; only an absent
// or expired token triggers a fresh one.
func (s *AuthService) ResendVerification(ctx context.Context, accountID string) (string, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrNotFound
		}
		s.logger.Error("failed to load account", slog.String("account_id", accountID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if account.IsEmailVerified {
		return "", fmt.Errorf("%w: email is already verified", models.ErrBadRequest)
	}

	now := time.Now()
	token := account.EmailVerificationToken
	expires := account.EmailVerificationExpires
	if !account.HasPendingVerification(now) {
		fresh, err := pkgauth.GenerateActionToken()
		if err != nil {
			s.logger.Error("failed to generate verification token", slog.Any("error", err))
			return "", models.ErrInternalServer
		}
		freshExpires := now.Add(s.cfg.VerificationTTL)
		if err := s.repo.SetVerificationToken(ctx, account.ID, fresh, freshExpires); err != nil {
			s.logger.Error("failed to store verification token",
				slog.String("account_id", account.ID), slog.Any("error", err))
			return "", models.ErrInternalServer
		}
		token = fresh
		expires = &freshExpires
	}

	if s.email != nil {
		if err := s.email.SendVerificationEmail(ctx, account.Email, token, *expires); err != nil {
			s.logger.Error("failed to send verification email",
				slog.String("account_id", account.ID), slog.Any("error", err))
		}
	}

	s.logger.Info("verification email resent", slog.String("account_id", account.ID))
	s.auditLogger.LogAccountAction("verification_resent", account.ID, "")

	return token, nil
}

// ForgotPassword issues a reset token when the email maps to an account. The
// response is identical either way, and the timing delay keeps the two paths
// indistinguishable by elapsed time.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	start := time.Now()
	defer s.timing.WaitFrom(start, false)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to look up account for password reset", slog.Any("error", err))
		}
		// Unknown email: same outward behavior as success.
		return nil
	}

	// Repeated requests within the window re-send the pending token instead
	// of invalidating it; the link already in the inbox stays usable.
	now := time.Now()
	token := account.PasswordResetToken
	expires := account.PasswordResetExpires
	if !account.HasPendingReset(now) {
		fresh, err := pkgauth.GenerateActionToken()
		if err != nil {
			s.logger.Error("failed to generate reset token", slog.Any("error", err))
			return nil
		}
		freshExpires := now.Add(s.cfg.ResetTTL)
		if err := s.repo.SetResetToken(ctx, account.ID, fresh, freshExpires); err != nil {
			s.logger.Error("failed to store reset token",
				slog.String("account_id", account.ID), slog.Any("error", err))
			return nil
		}
		token = fresh
		expires = &freshExpires
	}

	if s.email != nil {
		if err := s.email.SendPasswordResetEmail(ctx, email, token, *expires); err != nil {
			s.logger.Error("failed to send password reset email",
				slog.String("account_id", account.ID), slog.Any("error", err))
		}
	}

	s.auditLogger.LogAccountAction("password_reset_requested", account.ID, "")
	return nil
}

// ResetPassword consumes a reset token and replaces the stored hash. The
// effect and the token clear happen in one conditional update.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return models.ErrActionTokenInvalid
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	account, err := s.repo.ConsumeResetToken(ctx, token, passwordHash)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "password_reset_failed",
				FailureReason: "invalid_or_expired_token",
			})
			return models.ErrActionTokenInvalid
		}
		s.logger.Error("failed to consume reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset", slog.String("account_id", account.ID))
	s.auditLogger.LogAccountAction("password_reset", account.ID, "")
	return nil
}

// ChangePassword replaces the password for an authenticated account after
// re-verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrTokenInvalid
		}
		s.logger.Error("failed to get account", slog.String("account_id", accountID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, currentPassword); err != nil {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "password_change_failed",
			AccountID:     accountID,
			FailureReason: "current_password_incorrect",
		})
		return fmt.Errorf("%w: current password is incorrect", models.ErrBadRequest)
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePasswordHash(ctx, accountID, passwordHash); err != nil {
		s.logger.Error("failed to update password hash",
			slog.String("account_id", accountID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password changed", slog.String("account_id", accountID))
	s.auditLogger.LogAccountAction("password_changed", accountID, accountID)
	return nil
}

// Me resolves the current account for the /auth/me endpoint.
func (s *AuthService) Me(ctx context.Context, accountID string) (*AccountResponse, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, models.ErrInternalServer
	}
	return accountToResponse(account), nil
}

func accountToResponse(account *models.Account) *AccountResponse {
	return &AccountResponse{
		ID:              account.ID,
		Email:           account.Email,
		FirstName:       account.FirstName,
		LastName:        account.LastName,
		Role:            account.Role,
		Status:          account.Status,
		IsEmailVerified: account.IsEmailVerified,
		LastLogin:       account.LastLogin,
		CreatedAt:       account.CreatedAt,
		UpdatedAt:       account.UpdatedAt,
	}
}
