package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
)

type devicesRepo struct {
	db *sql.DB
}

func (r *devicesRepo) GetDeviceBySerial(ctx context.Context, serial string) (domain.Device, error) {
	var (
		d        domain.Device
		lastSeen int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, serial, firmware_version, router_model_id, last_seen
		FROM devices WHERE serial = ?`, serial).
		Scan(&d.ID, &d.Serial, &d.FirmwareVersion, &d.RouterModelID, &lastSeen)
	if err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	d.LastSeen = time.Unix(lastSeen, 0).UTC()
	return d, nil
}

func (r *devicesRepo) UpsertDevice(ctx context.Context, d domain.Device) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (id, serial, firmware_version, router_model_id, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (serial) DO UPDATE SET
			firmware_version = excluded.firmware_version,
			last_seen = excluded.last_seen`,
		d.ID, d.Serial, d.FirmwareVersion, d.RouterModelID, d.LastSeen.UTC().Unix())
	return err
}

func (r *devicesRepo) AppendTelemetry(ctx context.Context, log domain.TelemetryLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO telemetry_logs
			(device_id, reported_at, uptime, cpu_usage, memory_usage, connected_clients)
		VALUES (?, ?, ?, ?, ?, ?)`,
		log.DeviceID, log.ReportedAt.UTC().Unix(), log.Uptime,
		log.CPUUsage, log.MemoryUsage, log.ConnectedClients)
	return err
}

func (r *devicesRepo) DeleteTelemetryBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM telemetry_logs WHERE reported_at < ?`,
		cutoff.UTC().Unix())
	return err
}
