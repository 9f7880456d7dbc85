package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/calebmorse/taskdeck/internal/models"
	pkgauth "github.com/calebmorse/taskdeck/pkg/auth"
	pkglogger "github.com/calebmorse/taskdeck/pkg/logger"
)

// AccountService covers admin account management and profile updates.
type AccountService struct {
	repo        AccountRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAccountService(repo AccountRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AccountService {
	return &AccountService{repo: repo, logger: logger, auditLogger: auditLogger}
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (*AccountResponse, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get account", slog.String("account_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return accountToResponse(account), nil
}

func (s *AccountService) ListAccounts(ctx context.Context, limit, offset int) ([]*AccountResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	accounts, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list accounts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]*AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, accountToResponse(account))
	}
	return responses, nil
}

// CreateAccount provisions an account on behalf of an admin. The email is
// treated as already verified; no verification token is issued.
func (s *AccountService) CreateAccount(ctx context.Context, actorID, email, password, firstName, lastName, role string) (*AccountResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", models.ErrBadRequest)
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role %q", models.ErrBadRequest, role)
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	account := &models.Account{
		Email:           email,
		PasswordHash:    passwordHash,
		FirstName:       strings.TrimSpace(firstName),
		LastName:        strings.TrimSpace(lastName),
		Role:            role,
		Status:          models.StatusActive,
		IsEmailVerified: true,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("account_created", created.ID, actorID)
	return accountToResponse(created), nil
}

// AccountUpdate carries the mutable account fields. Nil pointers leave the
// current value in place.
type AccountUpdate struct {
	FirstName *string
	LastName  *string
	Role      *string
	Status    *string
}

func (s *AccountService) UpdateAccount(ctx context.Context, actorID, id string, update AccountUpdate) (*AccountResponse, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get account", slog.String("account_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if update.FirstName != nil {
		account.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		account.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Role != nil {
		if !models.ValidRole(*update.Role) {
			return nil, fmt.Errorf("%w: invalid role %q", models.ErrBadRequest, *update.Role)
		}
		account.Role = *update.Role
	}
	if update.Status != nil {
		if !models.ValidStatus(*update.Status) {
			return nil, fmt.Errorf("%w: invalid status %q", models.ErrBadRequest, *update.Status)
		}
		account.Status = *update.Status
	}

	updated, err := s.repo.Update(ctx, id, account)
	if err != nil {
		s.logger.Error("failed to update account", slog.String("account_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("account_updated", id, actorID)
	return accountToResponse(updated), nil
}

// UpdateProfile lets an account change its own name fields. Role and status
// are admin-only and never pass through here.
func (s *AccountService) UpdateProfile(ctx context.Context, id, firstName, lastName string) (*AccountResponse, error) {
	update := AccountUpdate{}
	if firstName != "" {
		update.FirstName = &firstName
	}
	if lastName != "" {
		update.LastName = &lastName
	}
	return s.UpdateAccount(ctx, id, id, update)
}

// DeleteAccount removes an account. Admin accounts cannot be deleted through
// this path; demote first.
func (s *AccountService) DeleteAccount(ctx context.Context, actorID, id string) error {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get account", slog.String("account_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if account.Role == models.RoleAdmin {
		return fmt.Errorf("%w: admin accounts cannot be deleted", models.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete account", slog.String("account_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("account_deleted", id, actorID)
	return nil
}

// EnsureAdmin creates the bootstrap admin account if no account with the
// given email exists yet. Called once at startup.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("checking for admin account: %w", err)
	}

	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	account := &models.Account{
		Email:           email,
		PasswordHash:    passwordHash,
		FirstName:       "System",
		LastName:        "Admin",
		Role:            models.RoleAdmin,
		Status:          models.StatusActive,
		IsEmailVerified: true,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	s.logger.Info("bootstrap admin account created", slog.String("account_id", created.ID))
	return nil
}
