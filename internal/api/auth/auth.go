package auth

import (
	"errors"
	"net/http"

	dto "powerrush_backend/internal/api/dto/auth"
	"powerrush_backend/internal/service"
	"powerrush_backend/pkg/req"
	"powerrush_backend/pkg/resp"

	"go.uber.org/zap"
)

type HandlerDeps struct {
	Serv   service.AuthService
	Logger *zap.Logger
}

type Handler struct {
	serv   service.AuthService
	logger *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv, logger: deps.Logger}
}

// Login проверяет пароль администратора и возвращает access_token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.LoginRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	accessToken, err := h.serv.Login(r.Context(), requestBody.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			h.logger.Warn("admin login rejected", zap.String("remote_addr", r.RemoteAddr))
			resp.WriteError(w, http.StatusUnauthorized, "login failed")
			return
		}
		h.logger.Error("admin login failed", zap.Error(err))
		resp.WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, dto.LoginResponse{AccessToken: accessToken})
}

// ChangePassword меняет пароль после проверки текущего
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.ChangePasswordRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err = h.serv.ChangePassword(r.Context(), requestBody.CurrentPassword, requestBody.NewPassword, requestBody.ConfirmPassword)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrInvalidPassword):
		resp.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrPasswordTooShort), errors.Is(err, service.ErrPasswordMismatch):
		resp.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("change password failed", zap.Error(err))
		resp.WriteError(w, http.StatusInternalServerError, "change password failed")
	}
}
