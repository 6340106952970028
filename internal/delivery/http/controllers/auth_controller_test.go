package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

type mockAuthService struct {
	user  *domain.User
	token string
	err   error
}

func (m *mockAuthService) SignUp(ctx context.Context, name, email, password string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	return m.token, m.user, nil
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return m.err
}

func (m *mockAuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return m.err
}

func (m *mockAuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func TestAuthController_SignUp(t *testing.T) {
	t.Run("missing fields rejected before the service", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{"name":"A"}`))
		w := httptest.NewRecorder()
		ctrl.SignUp(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &mockAuthService{})

		body := `{"name":"A","email":"a@b.edu","password":"secret1","role":"Admin"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
		w := httptest.NewRecorder()
		ctrl.SignUp(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("duplicate email returns conflict", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &mockAuthService{err: domain.ErrDuplicateEmail})

		body := `{"name":"A","email":"a@b.edu","password":"secret1"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
		w := httptest.NewRecorder()
		ctrl.SignUp(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
		}
	})

	t.Run("success returns 201 without credential material", func(t *testing.T) {
		user := &domain.User{ID: "u1", Name: "A", Email: "a@b.edu", Role: domain.RoleStudent,
			PasswordHash: "hash", Salt: "salt"}
		ctrl := NewAuthController(testLogger(), &mockAuthService{user: user})

		body := `{"name":"A","email":"a@b.edu","password":"secret1"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
		w := httptest.NewRecorder()
		ctrl.SignUp(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
		}
		var resp struct {
			Data map[string]any `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if resp.Data["role"] != "Student" {
			t.Errorf("expected Student role, got %v", resp.Data["role"])
		}
		for _, secret := range []string{"password_hash", "salt", "PasswordHash", "Salt"} {
			if _, ok := resp.Data[secret]; ok {
				t.Errorf("response must not expose %q", secret)
			}
		}
	})
}

func TestAuthController_SignIn(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &mockAuthService{err: domain.ErrInvalidCredentials})

		body := `{"email":"a@b.edu","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(body))
		w := httptest.NewRecorder()
		ctrl.SignIn(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})

	t.Run("success returns token and user", func(t *testing.T) {
		user := &domain.User{ID: "u1", Email: "a@b.edu", Role: domain.RoleStudent}
		ctrl := NewAuthController(testLogger(), &mockAuthService{user: user, token: "jwt-token"})

		body := `{"email":"a@b.edu","password":"secret1"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(body))
		w := httptest.NewRecorder()
		ctrl.SignIn(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var resp struct {
			Data  map[string]any    `json:"data"`
			Error *helpers.APIError `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if resp.Data["token"] != "jwt-token" {
			t.Errorf("expected token in response, got %v", resp.Data)
		}
	})
}

func TestAuthController_ResetPassword_InvalidCode(t *testing.T) {
	ctrl := NewAuthController(testLogger(), &mockAuthService{err: domain.ErrInvalidResetCode})

	body := `{"email":"a@b.edu","code":"000000","new_password":"secret2"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/reset-password", strings.NewReader(body))
	w := httptest.NewRecorder()
	ctrl.ResetPassword(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}
