package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/routefleet/routerman/internal/api/service"
	"github.com/routefleet/routerman/pkg/httpx"
	"github.com/routefleet/routerman/pkg/slogx"
)

type CredentialHandler struct {
	CredentialService *service.CredentialService
}

// HandleLookup returns decrypted factory credentials for a provider's router
// model: GET /api/v1/credentials?providerId=&modelIdentifier=.
func (h *CredentialHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(r.URL.Query().Get("providerId"), 10, 64)
	modelIdentifier := r.URL.Query().Get("modelIdentifier")
	if err != nil || modelIdentifier == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	items, err := h.CredentialService.Lookup(r.Context(), providerID, modelIdentifier)
	if err != nil {
		if errors.Is(err, service.ErrUnknownModel) {
			httpx.WriteError(w, http.StatusNotFound, "unknown_model")
			return
		}
		slogx.FromContext(r.Context()).Error("credential lookup failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, items)
}

type adminCredentialResponse struct {
	ID            int64  `json:"id"`
	RouterModelID int64  `json:"routerModelId"`
	Username      string `json:"username"`
	SortOrder     int    `json:"sortOrder"`
}

// HandleAdminList returns credential rows for a model without passwords:
// GET /api/v1/admin/credentials?routerModelId=.
func (h *CredentialHandler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	modelID, err := strconv.ParseInt(r.URL.Query().Get("routerModelId"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	creds, err := h.CredentialService.ListForModel(r.Context(), modelID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("credential list failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	out := make([]adminCredentialResponse, 0, len(creds))
	for _, c := range creds {
		out = append(out, adminCredentialResponse{
			ID:            c.ID,
			RouterModelID: c.RouterModelID,
			Username:      c.Username,
			SortOrder:     c.SortOrder,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type createCredentialRequest struct {
	RouterModelID int64  `json:"routerModelId"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	SortOrder     int    `json:"sortOrder"`
}

func (h *CredentialHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	id, err := h.CredentialService.Create(r.Context(),
		req.RouterModelID, req.Username, req.Password, req.SortOrder)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		slogx.FromContext(r.Context()).Error("credential create failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *CredentialHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := h.CredentialService.Delete(r.Context(), id); err != nil {
		slogx.FromContext(r.Context()).Error("credential delete failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
