package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/service"
	"github.com/routefleet/routerman/pkg/httpx"
	"github.com/routefleet/routerman/pkg/slogx"
)

type UpdateHandler struct {
	UpdateService *service.UpdateService
}

type updateCheckRequest struct {
	ProviderID      int64  `json:"providerId"`
	ModelIdentifier string `json:"modelIdentifier"`
	FirmwareVersion string `json:"firmwareVersion"`
	Serial          string `json:"serial"`
}

type updateCheckResponse struct {
	UpdateAvailable bool   `json:"updateAvailable"`
	Name            string `json:"name,omitempty"`
	Payload         string `json:"payload,omitempty"`
}

// HandleCheck answers whether an update order applies to the reporting
// device. 200 with updateAvailable=false means "up to date", never 404.
func (h *UpdateHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req updateCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	pkg, err := h.UpdateService.Check(r.Context(),
		req.ProviderID, req.ModelIdentifier, req.FirmwareVersion, req.Serial)
	if err != nil {
		slogx.FromContext(r.Context()).Error("update check failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if pkg == nil {
		httpx.WriteJSON(w, http.StatusOK, updateCheckResponse{})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, updateCheckResponse{
		UpdateAvailable: true,
		Name:            pkg.Name,
		Payload:         pkg.Payload,
	})
}

type createUpdateRequest struct {
	Name            string `json:"name"`
	ProviderID      int64  `json:"providerId"`
	ModelIdentifier string `json:"modelIdentifier"`
	FirmwareVersion string `json:"firmwareVersion"`
	Serial          string `json:"serial"`
	Payload         string `json:"payload"`
}

func (h *UpdateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	id, err := h.UpdateService.Create(r.Context(), domain.UpdatePackage{
		Name:            req.Name,
		ProviderID:      req.ProviderID,
		ModelIdentifier: req.ModelIdentifier,
		FirmwareVersion: req.FirmwareVersion,
		Serial:          req.Serial,
		Payload:         req.Payload,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		slogx.FromContext(r.Context()).Error("update create failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}
