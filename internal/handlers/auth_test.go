package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebmorse/taskdeck/internal/auth"
	"github.com/calebmorse/taskdeck/internal/models"
	"github.com/calebmorse/taskdeck/internal/services"
	pkghttp "github.com/calebmorse/taskdeck/pkg/http"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func withIdentity(r *http.Request, identity *auth.Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.IdentityContextKey, identity))
}

func TestAuthHandler_Register_Created(t *testing.T) {
	service := &MockAuthService{
		RegisterFunc: func(ctx context.Context, email, password, firstName, lastName string) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				Account:           &services.AccountResponse{ID: "acct_1", Email: email},
				Token:             "signed.jwt.token",
				VerificationToken: "deadbeef",
			}, nil
		},
	}
	handler := NewAuthHandler(service, &pkghttp.IPConfig{})

	w := postJSON(t, handler.Register, "/api/v1/auth/register", RegisterRequest{
		Email:     "user@example.com",
		Password:  "SecurePassword123",
		FirstName: "Jane",
		LastName:  "Doe",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp services.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "signed.jwt.token", resp.Token)
	assert.Equal(t, "deadbeef", resp.VerificationToken)
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	service := &MockAuthService{
		RegisterFunc: func(ctx context.Context, email, password, firstName, lastName string) (*services.AuthResponse, error) {
			return nil, models.ErrConflict
		},
	}
	handler := NewAuthHandler(service, &pkghttp.IPConfig{})

	w := postJSON(t, handler.Register, "/api/v1/auth/register", RegisterRequest{
		Email:     "taken@example.com",
		Password:  "SecurePassword123",
		FirstName: "Jane",
		LastName:  "Doe",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &pkghttp.IPConfig{})

	w := postJSON(t, handler.Register, "/api/v1/auth/register", map[string]string{
		"email": "user@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_OK(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				Account: &services.AccountResponse{ID: "acct_1", Email: email},
				Token:   "signed.jwt.token",
			}, nil
		},
	}
	handler := NewAuthHandler(service, &pkghttp.IPConfig{})

	w := postJSON(t, handler.Login, "/api/v1/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePassword123",
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			return nil, models.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(service, &pkghttp.IPConfig{})

	w := postJSON(t, handler.Login, "/api/v1/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "WrongPassword1",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_Locked(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			return nil, models.ErrAccountLocked
		},
	}
	handler := NewAuthHandler(service, &pkghttp.IPConfig{})

	w := postJSON(t, handler.Login, "/api/v1/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePassword123",
	})

	assert.Equal(t, http.StatusLocked, w.Code)

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "account_locked", resp.Error)
}

func TestAuthHandler_Login_NotActive(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			return nil, models.ErrAccountNotActive
		},
	}
	handler := NewAuthHandler(service, &pkghttp.IPConfig{})

	w := postJSON(t, handler.Login, "/api/v1/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePassword123",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_VerifyEmail_InvalidToken(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &pkghttp.IPConfig{})

	w := postJSON(t, handler.VerifyEmail, "/api/v1/auth/verify-email", VerifyEmailRequest{Token: "bogus"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_ForgotPassword_AlwaysOK(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &pkghttp.IPConfig{})

	for _, email := range []string{"known@example.com", "unknown@example.com"} {
		w := postJSON(t, handler.ForgotPassword, "/api/v1/auth/forgot-password", ForgotPasswordRequest{Email: email})
		assert.Equal(t, http.StatusOK, w.Code, "forgot-password must answer 200 for %s", email)
	}
}

func TestAuthHandler_ChangePassword_RequiresIdentity(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &pkghttp.IPConfig{})

	payload, _ := json.Marshal(ChangePasswordRequest{CurrentPassword: "a", NewPassword: "b"})
	req := httptest.NewRequest("PUT", "/api/v1/auth/change-password", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler.ChangePassword(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePassword_WrongCurrentPassword(t *testing.T) {
	service := &MockAuthService{
		ChangePasswordFunc: func(ctx context.Context, accountID, currentPassword, newPassword string) error {
			return models.ErrBadRequest
		},
	}
	handler := NewAuthHandler(service, &pkghttp.IPConfig{})

	payload, _ := json.Marshal(ChangePasswordRequest{CurrentPassword: "WrongOne1", NewPassword: "BrandNewPassword1"})
	req := httptest.NewRequest("PUT", "/api/v1/auth/change-password", bytes.NewReader(payload))
	req = withIdentity(req, &auth.Identity{AccountID: "acct_1", Role: models.RoleUser})
	w := httptest.NewRecorder()
	handler.ChangePassword(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_ResendVerification_RequiresIdentity(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &pkghttp.IPConfig{})

	req := httptest.NewRequest("POST", "/api/v1/auth/resend-verification", nil)
	w := httptest.NewRecorder()
	handler.ResendVerification(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ResendVerification_ReturnsToken(t *testing.T) {
	service := &MockAuthService{
		ResendVerificationFunc: func(ctx context.Context, accountID string) (string, error) {
			return "cafef00d", nil
		},
	}
	handler := NewAuthHandler(service, &pkghttp.IPConfig{})

	req := httptest.NewRequest("POST", "/api/v1/auth/resend-verification", nil)
	req = withIdentity(req, &auth.Identity{AccountID: "acct_1", Role: models.RoleUser})
	w := httptest.NewRecorder()
	handler.ResendVerification(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cafef00d", resp["verificationToken"])
}

func TestAuthHandler_ResendVerification_AlreadyVerified(t *testing.T) {
	service := &MockAuthService{
		ResendVerificationFunc: func(ctx context.Context, accountID string) (string, error) {
			return "", models.ErrBadRequest
		},
	}
	handler := NewAuthHandler(service, &pkghttp.IPConfig{})

	req := httptest.NewRequest("POST", "/api/v1/auth/resend-verification", nil)
	req = withIdentity(req, &auth.Identity{AccountID: "acct_1", Role: models.RoleUser})
	w := httptest.NewRecorder()
	handler.ResendVerification(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	service := &MockAuthService{
		MeFunc: func(ctx context.Context, accountID string) (*services.AccountResponse, error) {
			return &services.AccountResponse{ID: accountID, Email: "user@example.com"}, nil
		},
	}
	handler := NewAuthHandler(service, &pkghttp.IPConfig{})

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req = withIdentity(req, &auth.Identity{AccountID: "acct_1", Role: models.RoleUser})
	w := httptest.NewRecorder()
	handler.Me(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp services.AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acct_1", resp.ID)
}
