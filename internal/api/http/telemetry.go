package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/routefleet/routerman/internal/api/service"
	"github.com/routefleet/routerman/pkg/httpx"
	"github.com/routefleet/routerman/pkg/slogx"
)

type TelemetryHandler struct {
	TelemetryService *service.TelemetryService
}

// HandleReport ingests one device status report. Reports for unknown models
// are accepted and dropped, so a fleet running ahead of the catalogue keeps
// reporting without erroring.
func (h *TelemetryHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	var report service.TelemetryReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := h.TelemetryService.Report(r.Context(), report); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		slogx.FromContext(r.Context()).Error("telemetry report failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
