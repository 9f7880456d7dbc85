package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calebmorse/taskdeck/internal/auth"
	"github.com/calebmorse/taskdeck/internal/repositories"
	"github.com/calebmorse/taskdeck/internal/services"
	pkghttp "github.com/calebmorse/taskdeck/pkg/http"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	service WorkspaceServiceInterface
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(service WorkspaceServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

type TaskRequest struct {
	ProjectID   string  `json:"project_id" validate:"required"`
	AssigneeID  *string `json:"assignee_id"`
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string  `json:"due_date" validate:"omitempty"`
}

type UpdateTaskRequest struct {
	AssigneeID  *string `json:"assignee_id"`
	Title       string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string  `json:"due_date" validate:"omitempty"`
}

// Create handles POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
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

	task, err := h.service.CreateTask(r.Context(), services.TaskInput{
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     dueDate,
	})
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, task)
}

// List handles GET /tasks with optional project_id, assignee_id, status and
// priority filters. The mine=true shortcut scopes to the caller.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	filter := repositories.TaskFilter{
		ProjectID:  r.URL.Query().Get("project_id"),
		AssigneeID: r.URL.Query().Get("assignee_id"),
		Status:     r.URL.Query().Get("status"),
		Priority:   r.URL.Query().Get("priority"),
	}
	if r.URL.Query().Get("mine") == "true" {
		if identity := auth.IdentityFromRequest(r); identity != nil {
			filter.AssigneeID = identity.AccountID
		}
	}

	tasks, err := h.service.ListTasks(r.Context(), filter, limit, offset)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// Get handles GET /tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, task)
}

// Update handles PUT /tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
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

	task, err := h.service.UpdateTask(r.Context(), chi.URLParam(r, "id"), services.TaskInput{
		AssigneeID:  req.AssigneeID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     dueDate,
	})
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
