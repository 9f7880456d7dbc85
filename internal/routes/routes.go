package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/calebmorse/taskdeck/internal/auth"
	"github.com/calebmorse/taskdeck/internal/handlers"
	"github.com/calebmorse/taskdeck/internal/middleware"
	"github.com/calebmorse/taskdeck/internal/models"
)

// Handlers bundles the route targets.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Accounts  *handlers.AccountHandler
	Workspace *handlers.WorkspaceHandler
	Projects  *handlers.ProjectHandler
	Tasks     *handlers.TaskHandler
	Reports   *handlers.ReportHandler
}

// RegisterRoutes registers all application routes.
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokenManager *auth.TokenManager,
	accounts auth.AccountResolver,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes, rate limited per client IP
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/verify-email", h.Auth.VerifyEmail)
		r.Post("/auth/forgot-password", h.Auth.ForgotPassword)
		r.Post("/auth/reset-password", h.Auth.ResetPassword)
	})

	// Protected routes, token required with a live account status check
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager, accounts))

		r.Get("/auth/me", h.Auth.Me)
		r.Put("/auth/change-password", h.Auth.ChangePassword)
		r.Post("/auth/resend-verification", h.Auth.ResendVerification)
		r.Put("/users/profile", h.Accounts.UpdateProfile)

		r.Get("/departments", h.Workspace.ListDepartments)
		r.Get("/departments/{id}", h.Workspace.GetDepartment)
		r.Get("/teams", h.Workspace.ListTeams)
		r.Get("/teams/{id}", h.Workspace.GetTeam)

		r.Get("/projects", h.Projects.List)
		r.Get("/projects/{id}", h.Projects.Get)

		r.Get("/tasks", h.Tasks.List)
		r.Get("/tasks/{id}", h.Tasks.Get)
		r.Post("/tasks", h.Tasks.Create)
		r.Put("/tasks/{id}", h.Tasks.Update)

		r.Get("/reports/tasks", h.Reports.TaskOverview)

		// Manager and admin routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleManager, models.RoleAdmin))
			r.Post("/projects", h.Projects.Create)
			r.Put("/projects/{id}", h.Projects.Update)
			r.Delete("/projects/{id}", h.Projects.Delete)
			r.Delete("/tasks/{id}", h.Tasks.Delete)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Get("/users", h.Accounts.List)
			r.Post("/users", h.Accounts.Create)
			r.Get("/users/{id}", h.Accounts.Get)
			r.Put("/users/{id}", h.Accounts.Update)
			r.Delete("/users/{id}", h.Accounts.Delete)

			r.Post("/departments", h.Workspace.CreateDepartment)
			r.Put("/departments/{id}", h.Workspace.UpdateDepartment)
			r.Delete("/departments/{id}", h.Workspace.DeleteDepartment)
			r.Post("/teams", h.Workspace.CreateTeam)
			r.Put("/teams/{id}", h.Workspace.UpdateTeam)
			r.Delete("/teams/{id}", h.Workspace.DeleteTeam)
		})
	})
}
