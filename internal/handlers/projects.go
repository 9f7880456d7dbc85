package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calebmorse/taskdeck/internal/auth"
	"github.com/calebmorse/taskdeck/internal/services"
	pkghttp "github.com/calebmorse/taskdeck/pkg/http"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	service WorkspaceServiceInterface
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(service WorkspaceServiceInterface) *ProjectHandler {
	return &ProjectHandler{service: service}
}

type ProjectRequest struct {
	TeamID      string `json:"team_id" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Status      string `json:"status" validate:"omitempty,oneof=planning active on_hold completed"`
	DueDate     string `json:"due_date" validate:"omitempty"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name" validate:"omitempty,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Status      string `json:"status" validate:"omitempty,oneof=planning active on_hold completed"`
	DueDate     string `json:"due_date" validate:"omitempty"`
}

// Create handles POST /projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromRequest(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		pkghttp.WriteBadRequest(w, "due_date must be RFC 3339")
		return
	}

	project, err := h.service.CreateProject(r.Context(), identity.AccountID, services.ProjectInput{
		TeamID:      req.TeamID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     dueDate,
	})
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, project)
}

// List handles GET /projects with optional team_id and status filters
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	projects, err := h.service.ListProjects(r.Context(),
		r.URL.Query().Get("team_id"),
		r.URL.Query().Get("status"),
		limit, offset)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// Get handles GET /projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, project)
}

// Update handles PUT /projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		pkghttp.WriteBadRequest(w, "due_date must be RFC 3339")
		return
	}

	project, err := h.service.UpdateProject(r.Context(), chi.URLParam(r, "id"), services.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     dueDate,
	})
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
