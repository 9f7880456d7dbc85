package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebmorse/taskdeck/internal/models"
	pkglogger "github.com/calebmorse/taskdeck/pkg/logger"
)

func newTestAccountService(repo *MockAccountRepository) *AccountService {
	logger := slog.Default()
	return NewAccountService(repo, logger, pkglogger.NewAuditLogger(logger))
}

func TestAccountService_CreateAccount_PreVerified(t *testing.T) {
	repo := &MockAccountRepository{
		CreateFunc: func(ctx context.Context, account *models.Account) (*models.Account, error) {
			account.ID = "acct_new"
			return account, nil
		},
	}

	svc := newTestAccountService(repo)
	resp, err := svc.CreateAccount(context.Background(), "acct_admin", "new@example.com", testPassword, "New", "Hire", models.RoleManager)

	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, resp.Role)
	assert.True(t, resp.IsEmailVerified)
}

func TestAccountService_CreateAccount_InvalidRole(t *testing.T) {
	svc := newTestAccountService(&MockAccountRepository{})
	_, err := svc.CreateAccount(context.Background(), "acct_admin", "new@example.com", testPassword, "New", "Hire", "superuser")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAccountService_UpdateAccount_RoleAndStatus(t *testing.T) {
	account := &models.Account{ID: "acct_1", Email: "user@example.com", Role: models.RoleUser, Status: models.StatusActive}

	repo := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return account, nil
		},
		UpdateFunc: func(ctx context.Context, id string, a *models.Account) (*models.Account, error) {
			return a, nil
		},
	}

	role := models.RoleManager
	status := models.StatusSuspended
	svc := newTestAccountService(repo)
	resp, err := svc.UpdateAccount(context.Background(), "acct_admin", "acct_1", AccountUpdate{Role: &role, Status: &status})

	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, resp.Role)
	assert.Equal(t, models.StatusSuspended, resp.Status)
}

func TestAccountService_UpdateAccount_InvalidStatus(t *testing.T) {
	repo := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return &models.Account{ID: id, Status: models.StatusActive}, nil
		},
	}

	status := "banned"
	svc := newTestAccountService(repo)
	_, err := svc.UpdateAccount(context.Background(), "acct_admin", "acct_1", AccountUpdate{Status: &status})

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAccountService_DeleteAccount_RefusesAdmin(t *testing.T) {
	repo := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return &models.Account{ID: id, Role: models.RoleAdmin}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			t.Fatal("admin accounts must not be deleted")
			return nil
		},
	}

	svc := newTestAccountService(repo)
	err := svc.DeleteAccount(context.Background(), "acct_admin", "acct_other_admin")

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestAccountService_DeleteAccount_Success(t *testing.T) {
	var deleted string
	repo := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return &models.Account{ID: id, Role: models.RoleUser}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	svc := newTestAccountService(repo)
	err := svc.DeleteAccount(context.Background(), "acct_admin", "acct_1")

	require.NoError(t, err)
	assert.Equal(t, "acct_1", deleted)
}

func TestAccountService_EnsureAdmin_SkipsExisting(t *testing.T) {
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return &models.Account{ID: "acct_admin", Email: email}, nil
		},
		CreateFunc: func(ctx context.Context, account *models.Account) (*models.Account, error) {
			t.Fatal("admin must not be recreated")
			return nil, nil
		},
	}

	svc := newTestAccountService(repo)
	assert.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", testPassword))
}

func TestAccountService_EnsureAdmin_CreatesWhenMissing(t *testing.T) {
	var created *models.Account
	repo := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, account *models.Account) (*models.Account, error) {
			account.ID = "acct_admin"
			created = account
			return account, nil
		},
	}

	svc := newTestAccountService(repo)
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", testPassword))
	require.NotNil(t, created)
	assert.Equal(t, models.RoleAdmin, created.Role)
	assert.True(t, created.IsEmailVerified)
}
