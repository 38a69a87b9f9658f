package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/routefleet/routerman/internal/api/service"
	"github.com/routefleet/routerman/pkg/httpx"
	"github.com/routefleet/routerman/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates a user account and returns a signed token.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	grant, err := h.AuthService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusConflict, "username_taken")
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		default:
			slogx.FromContext(r.Context()).Error("register failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, grant)
}

// HandleLogin verifies credentials and returns a fresh signed token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	grant, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		slogx.FromContext(r.Context()).Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, grant)
}

type deviceRegisterRequest struct {
	DeviceID string `json:"deviceId"`
}

// HandleRegisterDevice hands a short-lived bootstrap token to a device that
// has no serial yet.
func (h *AuthHandler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	grant, err := h.AuthService.RegisterDevice(r.Context(), req.DeviceID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		slogx.FromContext(r.Context()).Error("device register failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, grant)
}
