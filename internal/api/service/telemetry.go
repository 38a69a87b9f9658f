package service

import (
	"context"
	"errors"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/pkg/idx"
	"github.com/routefleet/routerman/pkg/slogx"
)

// TelemetryReport is one status payload from a device in the field.
type TelemetryReport struct {
	Serial           string  `json:"serial"`
	ProviderID       int64   `json:"providerId"`
	ModelIdentifier  string  `json:"modelIdentifier"`
	FirmwareVersion  string  `json:"firmwareVersion"`
	Uptime           int64   `json:"uptime"`
	CPUUsage         float64 `json:"cpuUsage"`
	MemoryUsage      float64 `json:"memoryUsage"`
	ConnectedClients int     `json:"connectedClients"`
}

// TelemetryService ingests device reports. Devices are created lazily on
// first report; there is no separate enrollment step for known hardware.
type TelemetryService struct {
	Store store.Store
}

// Report records one telemetry payload. A report referencing a model we
// don't know is dropped without error; everything else is persisted.
func (s *TelemetryService) Report(ctx context.Context, r TelemetryReport) error {
	if r.Serial == "" {
		return ErrInvalidInput
	}

	model, err := s.Store.Providers().GetModel(ctx, r.ProviderID, r.ModelIdentifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Debug("telemetry for unknown model dropped",
				"providerId", r.ProviderID, "model", r.ModelIdentifier)
			return nil
		}
		return err
	}

	now := time.Now().UTC()

	device, err := s.Store.Devices().GetDeviceBySerial(ctx, r.Serial)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		device = domain.Device{
			ID:            idx.New().String(),
			Serial:        r.Serial,
			RouterModelID: model.ID,
		}
	}

	device.FirmwareVersion = r.FirmwareVersion
	device.LastSeen = now
	if err := s.Store.Devices().UpsertDevice(ctx, device); err != nil {
		return err
	}

	return s.Store.Devices().AppendTelemetry(ctx, domain.TelemetryLog{
		DeviceID:         device.ID,
		ReportedAt:       now,
		Uptime:           r.Uptime,
		CPUUsage:         r.CPUUsage,
		MemoryUsage:      r.MemoryUsage,
		ConnectedClients: r.ConnectedClients,
	})
}
