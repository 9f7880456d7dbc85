package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/calebmorse/taskdeck/internal/auth"
	"github.com/calebmorse/taskdeck/internal/database"
	"github.com/calebmorse/taskdeck/internal/handlers"
	"github.com/calebmorse/taskdeck/internal/repositories"
	"github.com/calebmorse/taskdeck/internal/routes"
	"github.com/calebmorse/taskdeck/internal/services"
	pkghttp "github.com/calebmorse/taskdeck/pkg/http"
	pkglogger "github.com/calebmorse/taskdeck/pkg/logger"
)

// SentEmail is a captured outbound email.
type SentEmail struct {
	To      string
	Token   string
	Subject string
}

// MockEmailService captures sent emails for test assertions.
type MockEmailService struct {
	mu         sync.Mutex
	SentEmails []SentEmail
}

func (m *MockEmailService) SendVerificationEmail(ctx context.Context, email, token string, expiresAt time.Time) error {
	m.record(SentEmail{To: email, Token: token, Subject: "verify"})
	return nil
}

func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error {
	m.record(SentEmail{To: email, Token: token, Subject: "reset"})
	return nil
}

func (m *MockEmailService) record(email SentEmail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, email)
}

// LastEmail returns the most recent captured email, or nil.
func (m *MockEmailService) LastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with a real database and mocked email.
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	Email  *MockEmailService

	AccountRepo *repositories.AccountRepository
}

// NewTestServer wires the full HTTP stack against the given database.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	accountRepo := repositories.NewAccountRepository(db)
	orgRepo := repositories.NewOrgRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	tokenManager := auth.NewTokenManager("test-secret-32-characters-long-for-testing", 7*24*time.Hour)
	auditLogger := pkglogger.NewAuditLogger(logger)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{})
	mockEmail := &MockEmailService{}

	authService := services.NewAuthService(
		accountRepo,
		tokenManager,
		mockEmail,
		timingDelay,
		services.AuthConfig{
			LockoutThreshold: 5,
			LockoutDuration:  2 * time.Hour,
			VerificationTTL:  24 * time.Hour,
			ResetTTL:         time.Hour,
		},
		logger,
		auditLogger,
	)
	accountService := services.NewAccountService(accountRepo, logger, auditLogger)
	workspaceService := services.NewWorkspaceService(orgRepo, projectRepo, taskRepo, logger)

	ipConfig := &pkghttp.IPConfig{}
	routeHandlers := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, ipConfig),
		Accounts:  handlers.NewAccountHandler(accountService),
		Workspace: handlers.NewWorkspaceHandler(workspaceService),
		Projects:  handlers.NewProjectHandler(workspaceService),
		Tasks:     handlers.NewTaskHandler(workspaceService),
		Reports:   handlers.NewReportHandler(workspaceService),
	}

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Route("/api/v1", func(r chi.Router) {
		routes.RegisterRoutes(r, routeHandlers, tokenManager, accountRepo)
	})

	return &TestServer{
		Server:      httptest.NewServer(router),
		DB:          db,
		Email:       mockEmail,
		AccountRepo: accountRepo,
	}
}

// Close shuts the test server down.
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// PostJSON sends a JSON POST and returns the response with its decoded body.
func (ts *TestServer) PostJSON(path string, body any, token string) (*http.Response, map[string]any, error) {
	return ts.doJSON("POST", path, body, token)
}

// GetJSON sends a GET and returns the response with its decoded body.
func (ts *TestServer) GetJSON(path, token string) (*http.Response, map[string]any, error) {
	return ts.doJSON("GET", path, nil, token)
}

func (ts *TestServer) doJSON(method, path string, body any, token string) (*http.Response, map[string]any, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return resp, nil, fmt.Errorf("decoding response body %q: %w", raw, err)
		}
	}
	return resp, decoded, nil
}
