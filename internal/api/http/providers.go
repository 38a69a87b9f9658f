package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/service"
	"github.com/routefleet/routerman/pkg/httpx"
	"github.com/routefleet/routerman/pkg/slogx"
)

type ProviderHandler struct {
	ProviderService *service.ProviderService
}

func (h *ProviderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	providers, err := h.ProviderService.ListProviders(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("provider list failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, providers)
}

func (h *ProviderHandler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	models, err := h.ProviderService.ListModels(r.Context(), providerID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("model list failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models)
}

type createProviderRequest struct {
	Name string `json:"name"`
}

func (h *ProviderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	id, err := h.ProviderService.CreateProvider(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		slogx.FromContext(r.Context()).Error("provider create failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

type createModelRequest struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

func (h *ProviderHandler) HandleCreateModel(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	var req createModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	id, err := h.ProviderService.CreateModel(r.Context(), domain.RouterModel{
		Name:       req.Name,
		Identifier: req.Identifier,
		ProviderID: providerID,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		slogx.FromContext(r.Context()).Error("model create failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}
