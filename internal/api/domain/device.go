package domain

import "time"

// Device is a router known to the fleet, created lazily on first telemetry
// report.
type Device struct {
	ID              string // ULID
	Serial          string
	FirmwareVersion string
	RouterModelID   int64
	LastSeen        time.Time
}

// TelemetryLog is a single status report from a device.
type TelemetryLog struct {
	ID               int64
	DeviceID         string
	ReportedAt       time.Time
	Uptime           int64
	CPUUsage         float64
	MemoryUsage      float64
	ConnectedClients int
}
