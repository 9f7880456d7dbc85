package handlers

import (
	"context"

	"github.com/calebmorse/taskdeck/internal/models"
	"github.com/calebmorse/taskdeck/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc           func(ctx context.Context, email, password, firstName, lastName string) (*services.AuthResponse, error)
	LoginFunc              func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error)
	VerifyEmailFunc        func(ctx context.Context, token string) (*services.AccountResponse, error)
	ForgotPasswordFunc     func(ctx context.Context, email string) error
	ResetPasswordFunc      func(ctx context.Context, token, newPassword string) error
	ChangePasswordFunc     func(ctx context.Context, accountID, currentPassword, newPassword string) error
	ResendVerificationFunc func(ctx context.Context, accountID string) (string, error)
	MeFunc                 func(ctx context.Context, accountID string) (*services.AccountResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*services.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, firstName, lastName)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, ipAddress)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, token string) (*services.AccountResponse, error) {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, token)
	}
	return nil, models.ErrActionTokenInvalid
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return models.ErrActionTokenInvalid
}

func (m *MockAuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, accountID, currentPassword, newPassword)
	}
	return nil
}

func (m *MockAuthService) ResendVerification(ctx context.Context, accountID string) (string, error) {
	if m.ResendVerificationFunc != nil {
		return m.ResendVerificationFunc(ctx, accountID)
	}
	return "", models.ErrNotFound
}

func (m *MockAuthService) Me(ctx context.Context, accountID string) (*services.AccountResponse, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, accountID)
	}
	return nil, models.ErrNotFound
}

// MockAccountService implements AccountServiceInterface for testing
type MockAccountService struct {
	GetAccountFunc    func(ctx context.Context, id string) (*services.AccountResponse, error)
	ListAccountsFunc  func(ctx context.Context, limit, offset int) ([]*services.AccountResponse, error)
	CreateAccountFunc func(ctx context.Context, actorID, email, password, firstName, lastName, role string) (*services.AccountResponse, error)
	UpdateAccountFunc func(ctx context.Context, actorID, id string, update services.AccountUpdate) (*services.AccountResponse, error)
	UpdateProfileFunc func(ctx context.Context, id, firstName, lastName string) (*services.AccountResponse, error)
	DeleteAccountFunc func(ctx context.Context, actorID, id string) error
}

func (m *MockAccountService) GetAccount(ctx context.Context, id string) (*services.AccountResponse, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountService) ListAccounts(ctx context.Context, limit, offset int) ([]*services.AccountResponse, error) {
	if m.ListAccountsFunc != nil {
		return m.ListAccountsFunc(ctx, limit, offset)
	}
	return []*services.AccountResponse{}, nil
}

func (m *MockAccountService) CreateAccount(ctx context.Context, actorID, email, password, firstName, lastName, role string) (*services.AccountResponse, error) {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, actorID, email, password, firstName, lastName, role)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, actorID, id string, update services.AccountUpdate) (*services.AccountResponse, error) {
	if m.UpdateAccountFunc != nil {
		return m.UpdateAccountFunc(ctx, actorID, id, update)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, id, firstName, lastName string) (*services.AccountResponse, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, firstName, lastName)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, actorID, id string) error {
	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, actorID, id)
	}
	return nil
}
