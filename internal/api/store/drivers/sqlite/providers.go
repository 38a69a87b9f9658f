package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
)

type providersRepo struct {
	db *sql.DB
}

func (r *providersRepo) GetProviderByID(ctx context.Context, id int64) (domain.Provider, error) {
	var (
		p         domain.Provider
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM providers WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &createdAt)
	if err != nil {
		return domain.Provider{}, mapNotFound(err)
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return p, nil
}

func (r *providersRepo) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM providers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Provider
	for rows.Next() {
		var (
			p         domain.Provider
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *providersRepo) CreateProvider(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO providers (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrAlreadyExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *providersRepo) GetModel(
	ctx context.Context,
	providerID int64,
	identifier string,
) (domain.RouterModel, error) {
	var m domain.RouterModel
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, identifier, provider_id FROM router_models
		WHERE provider_id = ? AND identifier = ?`,
		providerID, identifier).
		Scan(&m.ID, &m.Name, &m.Identifier, &m.ProviderID)
	if err != nil {
		return domain.RouterModel{}, mapNotFound(err)
	}
	return m, nil
}

func (r *providersRepo) ListModels(ctx context.Context, providerID int64) ([]domain.RouterModel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, identifier, provider_id FROM router_models
		WHERE provider_id = ? ORDER BY id`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RouterModel
	for rows.Next() {
		var m domain.RouterModel
		if err := rows.Scan(&m.ID, &m.Name, &m.Identifier, &m.ProviderID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *providersRepo) CreateModel(ctx context.Context, m domain.RouterModel) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO router_models (name, identifier, provider_id)
		VALUES (?, ?, ?)`,
		m.Name, m.Identifier, m.ProviderID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrAlreadyExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *providersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM providers`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
