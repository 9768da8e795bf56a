package handler

import (
	"context"
	"testing"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuth struct{ mock.Mock }

func (m *MockAuth) Login(ctx context.Context, email, password string) (*service.LoginResponse, error) {
	args := m.Called(email, password)
	if r, ok := args.Get(0).(*service.LoginResponse); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuth) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	return m.Called(email, oldPassword, newPassword).Error(0)
}

func (m *MockAuth) ValidateToken(ctx context.Context, tokenString string) (*service.TokenValidationResponse, error) {
	args := m.Called(tokenString)
	if r, ok := args.Get(0).(*service.TokenValidationResponse); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuth) Refresh(ctx context.Context, tokenString string) (*service.LoginResponse, error) {
	args := m.Called(tokenString)
	if r, ok := args.Get(0).(*service.LoginResponse); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuth) Heartbeat(ctx context.Context, userID model.ID) error {
	return m.Called(userID).Error(0)
}

func newAuthApp() (*fiber.App, *MockAuth) {
	svc := new(MockAuth)
	h := NewAuthHandler(svc)
	app := fiber.New()
	app.Post("/auth/login", h.Login)
	app.Post("/auth/reset-password", h.ResetPassword)
	app.Post("/auth/refresh", h.Refresh)
	app.Post("/auth/heartbeat", withUser, h.Heartbeat)
	return app, svc
}

func TestLoginValidatesBody(t *testing.T) {
	app, svc := newAuthApp()

	status, body := do(t, app, "POST", "/auth/login", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, 400, status)
	assert.Equal(t, "Validation failed", body["error"])
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestLoginStatuses(t *testing.T) {
	app, svc := newAuthApp()
	svc.On("Login", "alice@example.com", "secret").Return(&service.LoginResponse{Token: "tok"}, nil)
	svc.On("Login", "alice@example.com", "wrong").Return(nil, service.ErrInvalidCredentials)
	svc.On("Login", "bob@example.com", "secret").Return(nil, service.ErrUserInactive)

	status, body := do(t, app, "POST", "/auth/login", map[string]string{"email": "alice@example.com", "password": "secret"})
	assert.Equal(t, 200, status)
	assert.Equal(t, "tok", body["token"])

	status, _ = do(t, app, "POST", "/auth/login", map[string]string{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, 401, status)

	status, _ = do(t, app, "POST", "/auth/login", map[string]string{"email": "bob@example.com", "password": "secret"})
	assert.Equal(t, 403, status)
}

func TestResetPasswordRejectsSamePassword(t *testing.T) {
	app, svc := newAuthApp()

	status, _ := do(t, app, "POST", "/auth/reset-password", map[string]string{
		"email": "alice@example.com", "old_password": "secret1", "new_password": "secret1",
	})
	assert.Equal(t, 400, status)
	svc.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshNeedsBearer(t *testing.T) {
	app, _ := newAuthApp()
	status, _ := do(t, app, "POST", "/auth/refresh", nil)
	assert.Equal(t, 401, status)
}

func TestHeartbeatUsesCaller(t *testing.T) {
	app, svc := newAuthApp()
	svc.On("Heartbeat", model.ID("u1")).Return(nil)

	status, body := do(t, app, "POST", "/auth/heartbeat", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "online", body["status"])
	svc.AssertExpectations(t)
}
