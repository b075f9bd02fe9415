package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"powerrush_backend/internal/service"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAuth struct {
	password string
}

func (s *stubAuth) Init(context.Context) error { return nil }

func (s *stubAuth) Login(_ context.Context, password string) (string, error) {
	if password != s.password {
		return "", service.ErrInvalidPassword
	}
	return "token", nil
}

func (s *stubAuth) ChangePassword(_ context.Context, current, next, confirm string) error {
	switch {
	case current != s.password:
		return service.ErrInvalidPassword
	case len(next) < 4:
		return service.ErrPasswordTooShort
	case next != confirm:
		return service.ErrPasswordMismatch
	case next == "boom":
		return errors.New("db down")
	}
	s.password = next
	return nil
}

func newHandler() *Handler {
	return NewHandler(HandlerDeps{Serv: &stubAuth{password: "admin123"}, Logger: zap.NewNop()})
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "ok", body: `{"password":"admin123"}`, status: http.StatusOK},
		{name: "wrong password", body: `{"password":"nope"}`, status: http.StatusUnauthorized},
		{name: "bad json", body: `{`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newHandler().Login(rec, httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"access_token":"token"}`, rec.Body.String())
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "ok", body: `{"current_password":"admin123","new_password":"secret","confirm_password":"secret"}`, status: http.StatusNoContent},
		{name: "wrong current", body: `{"current_password":"x","new_password":"secret","confirm_password":"secret"}`, status: http.StatusUnauthorized},
		{name: "too short", body: `{"current_password":"admin123","new_password":"abc","confirm_password":"abc"}`, status: http.StatusBadRequest},
		{name: "mismatch", body: `{"current_password":"admin123","new_password":"secret","confirm_password":"secreT"}`, status: http.StatusBadRequest},
		{name: "internal", body: `{"current_password":"admin123","new_password":"boom","confirm_password":"boom"}`, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newHandler().ChangePassword(rec, httptest.NewRequest(http.MethodPost, "/admin/password", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
