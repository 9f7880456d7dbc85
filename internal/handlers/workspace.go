package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calebmorse/taskdeck/internal/models"
	"github.com/calebmorse/taskdeck/internal/repositories"
	"github.com/calebmorse/taskdeck/internal/services"
	pkghttp "github.com/calebmorse/taskdeck/pkg/http"
)

// WorkspaceServiceInterface defines the interface for department, team,
// project and task operations.
type WorkspaceServiceInterface interface {
	CreateDepartment(ctx context.Context, name, description string) (*models.Department, error)
	GetDepartment(ctx context.Context, id string) (*models.Department, error)
	ListDepartments(ctx context.Context, limit, offset int) ([]*models.Department, error)
	UpdateDepartment(ctx context.Context, id, name, description string) (*models.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
	CreateTeam(ctx context.Context, departmentID, name, description string) (*models.Team, error)
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context, departmentID string, limit, offset int) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, id, name, description string) (*models.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	CreateProject(ctx context.Context, managerID string, in services.ProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, teamID, status string, limit, offset int) ([]*models.Project, error)
	UpdateProject(ctx context.Context, id string, in services.ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	CreateTask(ctx context.Context, in services.TaskInput) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter repositories.TaskFilter, limit, offset int) ([]*models.Task, error)
	UpdateTask(ctx context.Context, id string, in services.TaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	TaskOverviewReport(ctx context.Context, assigneeID string) (*services.TaskOverview, error)
}

// WorkspaceHandler handles department and team HTTP requests
type WorkspaceHandler struct {
	service WorkspaceServiceInterface
}

// NewWorkspaceHandler creates a new WorkspaceHandler
func NewWorkspaceHandler(service WorkspaceServiceInterface) *WorkspaceHandler {
	return &WorkspaceHandler{service: service}
}

type DepartmentRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type TeamRequest struct {
	DepartmentID string `json:"department_id" validate:"required"`
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Description  string `json:"description" validate:"omitempty,max=2000"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name" validate:"omitempty,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// writeWorkspaceError maps service errors onto the response envelope.
func writeWorkspaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "A resource with that name already exists")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// CreateDepartment handles POST /departments
func (h *WorkspaceHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req DepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	dept, err := h.service.CreateDepartment(r.Context(), req.Name, req.Description)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, dept)
}

// ListDepartments handles GET /departments
func (h *WorkspaceHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	depts, err := h.service.ListDepartments(r.Context(), limit, offset)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"departments": depts})
}

// GetDepartment handles GET /departments/{id}
func (h *WorkspaceHandler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	dept, err := h.service.GetDepartment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, dept)
}

// UpdateDepartment handles PUT /departments/{id}
func (h *WorkspaceHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var req UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	dept, err := h.service.UpdateDepartment(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, dept)
}

// DeleteDepartment handles DELETE /departments/{id}
func (h *WorkspaceHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDepartment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateTeam handles POST /teams
func (h *WorkspaceHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req TeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	team, err := h.service.CreateTeam(r.Context(), req.DepartmentID, req.Name, req.Description)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, team)
}

// ListTeams handles GET /teams with an optional department_id filter
func (h *WorkspaceHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	teams, err := h.service.ListTeams(r.Context(), r.URL.Query().Get("department_id"), limit, offset)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

// GetTeam handles GET /teams/{id}
func (h *WorkspaceHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.service.GetTeam(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, team)
}

// UpdateTeam handles PUT /teams/{id}
func (h *WorkspaceHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	team, err := h.service.UpdateTeam(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, team)
}

// DeleteTeam handles DELETE /teams/{id}
func (h *WorkspaceHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTeam(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseDueDate parses an optional RFC 3339 due date.
func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
