package sqlite

import (
	"context"
	"database/sql"

	"github.com/routefleet/routerman/internal/api/domain"
)

type credentialsRepo struct {
	db *sql.DB
}

func (r *credentialsRepo) ListByModel(
	ctx context.Context,
	routerModelID int64,
) ([]domain.RouterCredential, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, router_model_id, username, password_encrypted, sort_order
		FROM router_credentials
		WHERE router_model_id = ?
		ORDER BY sort_order, id`, routerModelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RouterCredential
	for rows.Next() {
		var c domain.RouterCredential
		if err := rows.Scan(&c.ID, &c.RouterModelID, &c.Username, &c.PasswordEncrypted, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *credentialsRepo) CreateCredential(
	ctx context.Context,
	c domain.RouterCredential,
) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO router_credentials (router_model_id, username, password_encrypted, sort_order)
		VALUES (?, ?, ?, ?)`,
		c.RouterModelID, c.Username, c.PasswordEncrypted, c.SortOrder)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *credentialsRepo) DeleteCredential(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM router_credentials WHERE id = ?`, id)
	return err
}
