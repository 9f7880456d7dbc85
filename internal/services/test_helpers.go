package services

import (
	"context"
	"time"

	"github.com/calebmorse/taskdeck/internal/models"
	"github.com/calebmorse/taskdeck/internal/repositories"
)

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	GetByIDFunc                  func(ctx context.Context, id string) (*models.Account, error)
	GetByEmailFunc               func(ctx context.Context, email string) (*models.Account, error)
	ListFunc                     func(ctx context.Context, limit, offset int) ([]*models.Account, error)
	CreateFunc                   func(ctx context.Context, account *models.Account) (*models.Account, error)
	UpdateFunc                   func(ctx context.Context, id string, account *models.Account) (*models.Account, error)
	DeleteFunc                   func(ctx context.Context, id string) error
	UpdatePasswordHashFunc       func(ctx context.Context, id, passwordHash string) error
	RecordLoginFailureFunc       func(ctx context.Context, id string, attempts int, lockUntil *time.Time) error
	RecordLoginSuccessFunc       func(ctx context.Context, id string, at time.Time) error
	SetVerificationTokenFunc     func(ctx context.Context, id, token string, expires time.Time) error
	ConsumeVerificationTokenFunc func(ctx context.Context, token string) (*models.Account, error)
	SetResetTokenFunc            func(ctx context.Context, id, token string, expires time.Time) error
	ConsumeResetTokenFunc        func(ctx context.Context, token, passwordHash string) (*models.Account, error)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.Account{}, nil
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) Update(ctx context.Context, id string, account *models.Account) (*models.Account, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, account)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockAccountRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockAccountRepository) RecordLoginFailure(ctx context.Context, id string, attempts int, lockUntil *time.Time) error {
	if m.RecordLoginFailureFunc != nil {
		return m.RecordLoginFailureFunc(ctx, id, attempts, lockUntil)
	}
	return nil
}

func (m *MockAccountRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	if m.RecordLoginSuccessFunc != nil {
		return m.RecordLoginSuccessFunc(ctx, id, at)
	}
	return nil
}

func (m *MockAccountRepository) SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	if m.SetVerificationTokenFunc != nil {
		return m.SetVerificationTokenFunc(ctx, id, token, expires)
	}
	return nil
}

func (m *MockAccountRepository) ConsumeVerificationToken(ctx context.Context, token string) (*models.Account, error) {
	if m.ConsumeVerificationTokenFunc != nil {
		return m.ConsumeVerificationTokenFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, id, token, expires)
	}
	return nil
}

func (m *MockAccountRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string) (*models.Account, error) {
	if m.ConsumeResetTokenFunc != nil {
		return m.ConsumeResetTokenFunc(ctx, token, passwordHash)
	}
	return nil, models.ErrNotFound
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SendVerificationEmailFunc  func(ctx context.Context, email, token string, expiresAt time.Time) error
	SendPasswordResetEmailFunc func(ctx context.Context, email, token string, expiresAt time.Time) error
}

func (m *MockEmailSender) SendVerificationEmail(ctx context.Context, email, token string, expiresAt time.Time) error {
	if m.SendVerificationEmailFunc != nil {
		return m.SendVerificationEmailFunc(ctx, email, token, expiresAt)
	}
	return nil
}

func (m *MockEmailSender) SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, token, expiresAt)
	}
	return nil
}

// MockOrgRepository implements OrgRepository for testing
type MockOrgRepository struct {
	CreateDepartmentFunc func(ctx context.Context, d *models.Department) (*models.Department, error)
	GetDepartmentFunc    func(ctx context.Context, id string) (*models.Department, error)
	ListDepartmentsFunc  func(ctx context.Context, limit, offset int) ([]*models.Department, error)
	UpdateDepartmentFunc func(ctx context.Context, id string, d *models.Department) (*models.Department, error)
	DeleteDepartmentFunc func(ctx context.Context, id string) error
	CreateTeamFunc       func(ctx context.Context, t *models.Team) (*models.Team, error)
	GetTeamFunc          func(ctx context.Context, id string) (*models.Team, error)
	ListTeamsFunc        func(ctx context.Context, departmentID string, limit, offset int) ([]*models.Team, error)
	UpdateTeamFunc       func(ctx context.Context, id string, t *models.Team) (*models.Team, error)
	DeleteTeamFunc       func(ctx context.Context, id string) error
}

func (m *MockOrgRepository) CreateDepartment(ctx context.Context, d *models.Department) (*models.Department, error) {
	if m.CreateDepartmentFunc != nil {
		return m.CreateDepartmentFunc(ctx, d)
	}
	return d, nil
}

func (m *MockOrgRepository) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	if m.GetDepartmentFunc != nil {
		return m.GetDepartmentFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockOrgRepository) ListDepartments(ctx context.Context, limit, offset int) ([]*models.Department, error) {
	if m.ListDepartmentsFunc != nil {
		return m.ListDepartmentsFunc(ctx, limit, offset)
	}
	return []*models.Department{}, nil
}

func (m *MockOrgRepository) UpdateDepartment(ctx context.Context, id string, d *models.Department) (*models.Department, error) {
	if m.UpdateDepartmentFunc != nil {
		return m.UpdateDepartmentFunc(ctx, id, d)
	}
	return d, nil
}

func (m *MockOrgRepository) DeleteDepartment(ctx context.Context, id string) error {
	if m.DeleteDepartmentFunc != nil {
		return m.DeleteDepartmentFunc(ctx, id)
	}
	return nil
}

func (m *MockOrgRepository) CreateTeam(ctx context.Context, t *models.Team) (*models.Team, error) {
	if m.CreateTeamFunc != nil {
		return m.CreateTeamFunc(ctx, t)
	}
	return t, nil
}

func (m *MockOrgRepository) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	if m.GetTeamFunc != nil {
		return m.GetTeamFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockOrgRepository) ListTeams(ctx context.Context, departmentID string, limit, offset int) ([]*models.Team, error) {
	if m.ListTeamsFunc != nil {
		return m.ListTeamsFunc(ctx, departmentID, limit, offset)
	}
	return []*models.Team{}, nil
}

func (m *MockOrgRepository) UpdateTeam(ctx context.Context, id string, t *models.Team) (*models.Team, error) {
	if m.UpdateTeamFunc != nil {
		return m.UpdateTeamFunc(ctx, id, t)
	}
	return t, nil
}

func (m *MockOrgRepository) DeleteTeam(ctx context.Context, id string) error {
	if m.DeleteTeamFunc != nil {
		return m.DeleteTeamFunc(ctx, id)
	}
	return nil
}

// MockProjectRepository implements ProjectRepository for testing
type MockProjectRepository struct {
	CreateFunc  func(ctx context.Context, p *models.Project) (*models.Project, error)
	GetByIDFunc func(ctx context.Context, id string) (*models.Project, error)
	ListFunc    func(ctx context.Context, teamID, status string, limit, offset int) ([]*models.Project, error)
	UpdateFunc  func(ctx context.Context, id string, p *models.Project) (*models.Project, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockProjectRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return p, nil
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProjectRepository) List(ctx context.Context, teamID, status string, limit, offset int) ([]*models.Project, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, teamID, status, limit, offset)
	}
	return []*models.Project{}, nil
}

func (m *MockProjectRepository) Update(ctx context.Context, id string, p *models.Project) (*models.Project, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, p)
	}
	return p, nil
}

func (m *MockProjectRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockTaskRepository implements TaskRepository for testing
type MockTaskRepository struct {
	CreateFunc        func(ctx context.Context, t *models.Task) (*models.Task, error)
	GetByIDFunc       func(ctx context.Context, id string) (*models.Task, error)
	ListFunc          func(ctx context.Context, filter repositories.TaskFilter, limit, offset int) ([]*models.Task, error)
	UpdateFunc        func(ctx context.Context, id string, t *models.Task) (*models.Task, error)
	DeleteFunc        func(ctx context.Context, id string) error
	CountByStatusFunc func(ctx context.Context, assigneeID string) ([]*models.TaskStatusCount, error)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	return t, nil
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockTaskRepository) List(ctx context.Context, filter repositories.TaskFilter, limit, offset int) ([]*models.Task, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, limit, offset)
	}
	return []*models.Task{}, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, id string, t *models.Task) (*models.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, t)
	}
	return t, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTaskRepository) CountByStatus(ctx context.Context, assigneeID string) ([]*models.TaskStatusCount, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, assigneeID)
	}
	return []*models.TaskStatusCount{}, nil
}
