package http

import (
	"errors"
	"net/http"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/pkg/httpx"
	"github.com/routefleet/routerman/pkg/slogx"
)

type PublicHandler struct {
	Tokens store.Tokens
}

// HandleGenericToken returns the shared app bootstrap credential. The
// endpoint is anonymous: the token is the key the provisioning app uses to
// reach everything else.
func (h *PublicHandler) HandleGenericToken(w http.ResponseWriter, r *http.Request) {
	grant, err := h.Tokens.GetDeviceToken(r.Context(), domain.GenericSerial)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_seeded")
			return
		}
		slogx.FromContext(r.Context()).Error("generic token lookup failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, grant)
}
