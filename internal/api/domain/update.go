package domain

import "time"

// UpdatePackage is an update order targeting either a single device (serial
// set) or a whole provider+model combination. Payload is the opaque action
// document handed back to devices verbatim.
type UpdatePackage struct {
	ID              int64
	Name            string
	ProviderID      int64
	ModelIdentifier string
	FirmwareVersion string // optional: only applies below this version
	Serial          string // optional: pin to one device, wins over model-wide
	Payload         string
	CreatedAt       time.Time
}
