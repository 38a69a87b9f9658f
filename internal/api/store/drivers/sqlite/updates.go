package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
)

type updatesRepo struct {
	db *sql.DB
}

const updateColumns = `id, name, provider_id, model_identifier, firmware_version, serial, payload, created_at`

func (r *updatesRepo) GetBySerial(ctx context.Context, serial string) (domain.UpdatePackage, error) {
	return r.scanUpdate(r.db.QueryRowContext(ctx, `
		SELECT `+updateColumns+` FROM update_packages
		WHERE serial = ?
		ORDER BY id DESC LIMIT 1`, serial))
}

func (r *updatesRepo) GetByModel(
	ctx context.Context,
	providerID int64,
	modelIdentifier string,
) (domain.UpdatePackage, error) {
	return r.scanUpdate(r.db.QueryRowContext(ctx, `
		SELECT `+updateColumns+` FROM update_packages
		WHERE provider_id = ? AND model_identifier = ? AND serial = ''
		ORDER BY id DESC LIMIT 1`, providerID, modelIdentifier))
}

func (r *updatesRepo) CreateUpdate(ctx context.Context, u domain.UpdatePackage) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO update_packages
			(name, provider_id, model_identifier, firmware_version, serial, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.ProviderID, u.ModelIdentifier, u.FirmwareVersion, u.Serial,
		u.Payload, time.Now().UTC().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *updatesRepo) scanUpdate(row *sql.Row) (domain.UpdatePackage, error) {
	var (
		u         domain.UpdatePackage
		createdAt int64
	)
	err := row.Scan(&u.ID, &u.Name, &u.ProviderID, &u.ModelIdentifier,
		&u.FirmwareVersion, &u.Serial, &u.Payload, &createdAt)
	if err != nil {
		return domain.UpdatePackage{}, mapNotFound(err)
	}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return u, nil
}
