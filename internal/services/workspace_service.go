package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calebmorse/taskdeck/internal/models"
	"github.com/calebmorse/taskdeck/internal/repositories"
)

// OrgRepository covers department and team storage.
type OrgRepository interface {
	CreateDepartment(ctx context.Context, d *models.Department) (*models.Department, error)
	GetDepartment(ctx context.Context, id string) (*models.Department, error)
	ListDepartments(ctx context.Context, limit, offset int) ([]*models.Department, error)
	UpdateDepartment(ctx context.Context, id string, d *models.Department) (*models.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
	CreateTeam(ctx context.Context, t *models.Team) (*models.Team, error)
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context, departmentID string, limit, offset int) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, id string, t *models.Team) (*models.Team, error)
	DeleteTeam(ctx context.Context, id string) error
}

// ProjectRepository covers project storage.
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, teamID, status string, limit, offset int) ([]*models.Project, error)
	Update(ctx context.Context, id string, p *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

// TaskRepository covers task storage and reporting counts.
type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, filter repositories.TaskFilter, limit, offset int) ([]*models.Task, error)
	Update(ctx context.Context, id string, t *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, assigneeID string) ([]*models.TaskStatusCount, error)
}

// WorkspaceService implements the department, team, project and task
// operations behind the authenticated API surface.
type WorkspaceService struct {
	org      OrgRepository
	projects ProjectRepository
	tasks    TaskRepository
	logger   *slog.Logger
}

func NewWorkspaceService(org OrgRepository, projects ProjectRepository, tasks TaskRepository, logger *slog.Logger) *WorkspaceService {
	return &WorkspaceService{org: org, projects: projects, tasks: tasks, logger: logger}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *WorkspaceService) CreateDepartment(ctx context.Context, name, description string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrBadRequest)
	}

	created, err := s.org.CreateDepartment(ctx, &models.Department{
		Name:        name,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create department", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return created, nil
}

func (s *WorkspaceService) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	return s.org.GetDepartment(ctx, id)
}

func (s *WorkspaceService) ListDepartments(ctx context.Context, limit, offset int) ([]*models.Department, error) {
	limit, offset = clampPage(limit, offset)
	return s.org.ListDepartments(ctx, limit, offset)
}

func (s *WorkspaceService) UpdateDepartment(ctx context.Context, id, name, description string) (*models.Department, error) {
	dept, err := s.org.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		dept.Name = name
	}
	if description != "" {
		dept.Description = strings.TrimSpace(description)
	}
	return s.org.UpdateDepartment(ctx, id, dept)
}

func (s *WorkspaceService) DeleteDepartment(ctx context.Context, id string) error {
	return s.org.DeleteDepartment(ctx, id)
}

func (s *WorkspaceService) CreateTeam(ctx context.Context, departmentID, name, description string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrBadRequest)
	}

	// The department must exist; a dangling team is never created.
	if _, err := s.org.GetDepartment(ctx, departmentID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: department not found", models.ErrBadRequest)
		}
		return nil, err
	}

	created, err := s.org.CreateTeam(ctx, &models.Team{
		DepartmentID: departmentID,
		Name:         name,
		Description:  strings.TrimSpace(description),
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create team", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return created, nil
}

func (s *WorkspaceService) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	return s.org.GetTeam(ctx, id)
}

func (s *WorkspaceService) ListTeams(ctx context.Context, departmentID string, limit, offset int) ([]*models.Team, error) {
	limit, offset = clampPage(limit, offset)
	return s.org.ListTeams(ctx, departmentID, limit, offset)
}

func (s *WorkspaceService) UpdateTeam(ctx context.Context, id, name, description string) (*models.Team, error) {
	team, err := s.org.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		team.Name = name
	}
	if description != "" {
		team.Description = strings.TrimSpace(description)
	}
	return s.org.UpdateTeam(ctx, id, team)
}

func (s *WorkspaceService) DeleteTeam(ctx context.Context, id string) error {
	return s.org.DeleteTeam(ctx, id)
}

// ProjectInput carries the writable project fields.
type ProjectInput struct {
	TeamID      string
	Name        string
	Description string
	Status      string
	DueDate     *time.Time
}

func (s *WorkspaceService) CreateProject(ctx context.Context, managerID string, in ProjectInput) (*models.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrBadRequest)
	}
	if in.Status == "" {
		in.Status = models.ProjectPlanning
	}
	if !validProjectStatus(in.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", models.ErrBadRequest, in.Status)
	}

	if _, err := s.org.GetTeam(ctx, in.TeamID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: team not found", models.ErrBadRequest)
		}
		return nil, err
	}

	created, err := s.projects.Create(ctx, &models.Project{
		TeamID:      in.TeamID,
		ManagerID:   managerID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		DueDate:     in.DueDate,
	})
	if err != nil {
		s.logger.Error("failed to create project", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return created, nil
}

func (s *WorkspaceService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *WorkspaceService) ListProjects(ctx context.Context, teamID, status string, limit, offset int) ([]*models.Project, error) {
	if status != "" && !validProjectStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", models.ErrBadRequest, status)
	}
	limit, offset = clampPage(limit, offset)
	return s.projects.List(ctx, teamID, status, limit, offset)
}

func (s *WorkspaceService) UpdateProject(ctx context.Context, id string, in ProjectInput) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		project.Name = name
	}
	if in.Description != "" {
		project.Description = strings.TrimSpace(in.Description)
	}
	if in.Status != "" {
		if !validProjectStatus(in.Status) {
			return nil, fmt.Errorf("%w: invalid status %q", models.ErrBadRequest, in.Status)
		}
		project.Status = in.Status
	}
	if in.DueDate != nil {
		project.DueDate = in.DueDate
	}

	return s.projects.Update(ctx, id, project)
}

func (s *WorkspaceService) DeleteProject(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}

// TaskInput carries the writable task fields.
type TaskInput struct {
	ProjectID   string
	AssigneeID  *string
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

func (s *WorkspaceService) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrBadRequest)
	}
	if in.Status == "" {
		in.Status = models.TaskTodo
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !validTaskStatus(in.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", models.ErrBadRequest, in.Status)
	}
	if !validTaskPriority(in.Priority) {
		return nil, fmt.Errorf("%w: invalid priority %q", models.ErrBadRequest, in.Priority)
	}

	if _, err := s.projects.GetByID(ctx, in.ProjectID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: project not found", models.ErrBadRequest)
		}
		return nil, err
	}

	created, err := s.tasks.Create(ctx, &models.Task{
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	})
	if err != nil {
		s.logger.Error("failed to create task", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return created, nil
}

func (s *WorkspaceService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *WorkspaceService) ListTasks(ctx context.Context, filter repositories.TaskFilter, limit, offset int) ([]*models.Task, error) {
	if filter.Status != "" && !validTaskStatus(filter.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", models.ErrBadRequest, filter.Status)
	}
	if filter.Priority != "" && !validTaskPriority(filter.Priority) {
		return nil, fmt.Errorf("%w: invalid priority %q", models.ErrBadRequest, filter.Priority)
	}
	limit, offset = clampPage(limit, offset)
	return s.tasks.List(ctx, filter, limit, offset)
}

func (s *WorkspaceService) UpdateTask(ctx context.Context, id string, in TaskInput) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		task.Title = title
	}
	if in.Description != "" {
		task.Description = strings.TrimSpace(in.Description)
	}
	if in.Status != "" {
		if !validTaskStatus(in.Status) {
			return nil, fmt.Errorf("%w: invalid status %q", models.ErrBadRequest, in.Status)
		}
		task.Status = in.Status
	}
	if in.Priority != "" {
		if !validTaskPriority(in.Priority) {
			return nil, fmt.Errorf("%w: invalid priority %q", models.ErrBadRequest, in.Priority)
		}
		task.Priority = in.Priority
	}
	if in.AssigneeID != nil {
		if *in.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			task.AssigneeID = in.AssigneeID
		}
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	return s.tasks.Update(ctx, id, task)
}

func (s *WorkspaceService) DeleteTask(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

// TaskOverview is the reporting summary for one account or the whole
// workspace: task counts grouped by status.
type TaskOverview struct {
	AssigneeID string                    `json:"assignee_id,omitempty"`
	Total      int64                     `json:"total"`
	ByStatus   []*models.TaskStatusCount `json:"by_status"`
}

// TaskOverviewReport returns the task distribution by status, optionally
// scoped to one assignee.
func (s *WorkspaceService) TaskOverviewReport(ctx context.Context, assigneeID string) (*TaskOverview, error) {
	counts, err := s.tasks.CountByStatus(ctx, assigneeID)
	if err != nil {
		s.logger.Error("failed to compute task overview", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	overview := &TaskOverview{
		AssigneeID: assigneeID,
		ByStatus:   counts,
	}
	for _, c := range counts {
		overview.Total += c.Count
	}
	return overview, nil
}

func validProjectStatus(status string) bool {
	switch status {
	case models.ProjectPlanning, models.ProjectActive, models.ProjectOnHold, models.ProjectCompleted:
		return true
	}
	return false
}

func validTaskStatus(status string) bool {
	switch status {
	case models.TaskTodo, models.TaskInProgress, models.TaskDone:
		return true
	}
	return false
}

func validTaskPriority(priority string) bool {
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	}
	return false
}
