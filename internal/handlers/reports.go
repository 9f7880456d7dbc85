package handlers

import (
	"net/http"

	"github.com/calebmorse/taskdeck/internal/auth"
	"github.com/calebmorse/taskdeck/internal/models"
	pkghttp "github.com/calebmorse/taskdeck/pkg/http"
)

// ReportHandler handles reporting HTTP requests
type ReportHandler struct {
	service WorkspaceServiceInterface
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service WorkspaceServiceInterface) *ReportHandler {
	return &ReportHandler{service: service}
}

// TaskOverview handles GET /reports/tasks. Regular users see their own
// distribution; managers and admins may pass assignee_id or omit it for the
// whole workspace.
func (h *ReportHandler) TaskOverview(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromRequest(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	assigneeID := r.URL.Query().Get("assignee_id")
	if identity.Role == models.RoleUser {
		assigneeID = identity.AccountID
	}

	overview, err := h.service.TaskOverviewReport(r.Context(), assigneeID)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, overview)
}
