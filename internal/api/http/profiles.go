package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/service"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/pkg/httpx"
	"github.com/routefleet/routerman/pkg/slogx"
)

type RouterProfileHandler struct {
	ProfileService *service.RouterProfileService
}

type profileRequest struct {
	ID       int64  `json:"id"`
	IP       string `json:"ip"`
	Username string `json:"username"`
	Password string `json:"password"`
	Serial   string `json:"serial"`
	Model    string `json:"model"`
}

// profileResponse never carries the password hash.
type profileResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	IP        string    `json:"ip"`
	Username  string    `json:"username"`
	Serial    string    `json:"serial"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

func toProfileResponse(p domain.RouterProfile) profileResponse {
	return profileResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		IP:        p.IP,
		Username:  p.Username,
		Serial:    p.Serial,
		Model:     p.Model,
		CreatedAt: p.CreatedAt,
	}
}

// currentUserID pulls the user id from the request identity. Profiles are
// strictly user-owned, so device and provider tokens don't qualify.
func currentUserID(r *http.Request) (int64, bool) {
	id := IdentityFrom(r.Context())
	if id == nil || id.Claims.UserID <= 0 {
		return 0, false
	}
	return id.Claims.UserID, true
}

// HandleList returns the caller's profiles: GET /api/v1/routerprofiles.
func (h *RouterProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		httpx.Unauthorized(w, "user token required")
		return
	}

	profiles, err := h.ProfileService.List(r.Context(), userID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("profile list failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns one of the caller's profiles:
// GET /api/v1/routerprofiles/{id}.
func (h *RouterProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		httpx.Unauthorized(w, "user token required")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	p, err := h.ProfileService.Get(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found")
			return
		}
		slogx.FromContext(r.Context()).Error("profile get failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProfileResponse(p))
}

// HandleCreate saves a new profile for the caller:
// POST /api/v1/routerprofiles.
func (h *RouterProfileHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		httpx.Unauthorized(w, "user token required")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	p, err := h.ProfileService.Create(r.Context(), userID, service.ProfileInput{
		IP:       req.IP,
		Username: req.Username,
		Password: req.Password,
		Serial:   req.Serial,
		Model:    req.Model,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		case errors.Is(err, service.ErrDuplicateSerial):
			httpx.WriteError(w, http.StatusConflict, "duplicate_serial")
		default:
			slogx.FromContext(r.Context()).Error("profile create failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toProfileResponse(p))
}

// HandleUpdate replaces one of the caller's profiles:
// PUT /api/v1/routerprofiles/{id}. An empty password keeps the stored one.
func (h *RouterProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		httpx.Unauthorized(w, "user token required")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.ID != 0 && req.ID != id {
		httpx.WriteError(w, http.StatusBadRequest, "id_mismatch")
		return
	}

	err = h.ProfileService.Update(r.Context(), id, userID, service.ProfileInput{
		IP:       req.IP,
		Username: req.Username,
		Password: req.Password,
		Serial:   req.Serial,
		Model:    req.Model,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		case errors.Is(err, service.ErrDuplicateSerial):
			httpx.WriteError(w, http.StatusConflict, "duplicate_serial")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found")
		default:
			slogx.FromContext(r.Context()).Error("profile update failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes one of the caller's profiles:
// DELETE /api/v1/routerprofiles/{id}.
func (h *RouterProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		httpx.Unauthorized(w, "user token required")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := h.ProfileService.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found")
			return
		}
		slogx.FromContext(r.Context()).Error("profile delete failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAdminList returns every profile in the system:
// GET /api/v1/admin/routerprofiles.
func (h *RouterProfileHandler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.ProfileService.AdminList(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("admin profile list failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleAdminDelete removes any profile regardless of owner:
// DELETE /api/v1/admin/routerprofiles/{id}.
func (h *RouterProfileHandler) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := h.ProfileService.AdminDelete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found")
			return
		}
		slogx.FromContext(r.Context()).Error("admin profile delete failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
