package service

import (
	"context"
	"errors"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
)

// UpdateService answers "is there an update order for this device".
type UpdateService struct {
	Store store.Store
}

// Check returns the applicable update order, or nil when the device is up to
// date. A serial-pinned order always wins over a model-wide one. An order
// with FirmwareVersion set only applies to devices reporting an older
// version.
func (s *UpdateService) Check(ctx context.Context, providerID int64, modelIdentifier, firmwareVersion, serial string) (*domain.UpdatePackage, error) {
	if serial != "" {
		pkg, err := s.Store.Updates().GetBySerial(ctx, serial)
		switch {
		case err == nil:
			if applies(pkg, firmwareVersion) {
				return &pkg, nil
			}
			return nil, nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	pkg, err := s.Store.Updates().GetByModel(ctx, providerID, modelIdentifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !applies(pkg, firmwareVersion) {
		return nil, nil
	}
	return &pkg, nil
}

// Create stores a new update order.
func (s *UpdateService) Create(ctx context.Context, u domain.UpdatePackage) (int64, error) {
	if u.Name == "" || u.Payload == "" {
		return 0, ErrInvalidInput
	}
	return s.Store.Updates().CreateUpdate(ctx, u)
}

// applies filters an order by firmware target. Firmware strings are treated
// as opaque: a device already on exactly the target version is skipped, any
// other version gets the order.
func applies(pkg domain.UpdatePackage, reported string) bool {
	if pkg.FirmwareVersion == "" || reported == "" {
		return true
	}
	return reported != pkg.FirmwareVersion
}
