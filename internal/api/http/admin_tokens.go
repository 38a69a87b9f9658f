package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/routefleet/routerman/internal/api/service"
	"github.com/routefleet/routerman/pkg/httpx"
	"github.com/routefleet/routerman/pkg/slogx"
)

type AdminTokenHandler struct {
	TokenAdminService *service.TokenAdminService
}

type providerTokenRequest struct {
	ProviderID int64 `json:"providerId"`
	Days       int   `json:"days"`
}

// HandleProviderToken issues a revocable long-lived token for a provider
// integration.
func (h *AdminTokenHandler) HandleProviderToken(w http.ResponseWriter, r *http.Request) {
	var req providerTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	grant, err := h.TokenAdminService.IssueProviderToken(r.Context(), req.ProviderID, req.Days)
	if err != nil {
		if errors.Is(err, service.ErrUnknownProvider) {
			httpx.WriteError(w, http.StatusNotFound, "unknown_provider")
			return
		}
		slogx.FromContext(r.Context()).Error("provider token issue failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, grant)
}

type deviceTokenRequest struct {
	Serial string `json:"serial"`
	Days   int    `json:"days"`
}

// HandleDeviceToken issues a revocable long-lived token bound to a device
// serial.
func (h *AdminTokenHandler) HandleDeviceToken(w http.ResponseWriter, r *http.Request) {
	var req deviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	grant, err := h.TokenAdminService.IssueDeviceToken(r.Context(), req.Serial, req.Days)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		slogx.FromContext(r.Context()).Error("device token issue failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, grant)
}
