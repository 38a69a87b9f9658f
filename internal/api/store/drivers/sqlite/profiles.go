package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
)

type profilesRepo struct {
	db *sql.DB
}

const profileColumns = `id, user_id, ip, username, password_hash, serial, model, created_at`

func (r *profilesRepo) ListByUser(ctx context.Context, userID int64) ([]domain.RouterProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+` FROM router_profiles
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (r *profilesRepo) GetProfile(ctx context.Context, id, userID int64) (domain.RouterProfile, error) {
	return scanProfile(r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM router_profiles
		WHERE id = ? AND user_id = ?`, id, userID))
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.RouterProfile) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO router_profiles
			(user_id, ip, username, password_hash, serial, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.IP, p.Username, p.PasswordHash, p.Serial, p.Model,
		time.Now().UTC().Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrAlreadyExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *profilesRepo) UpdateProfile(ctx context.Context, p domain.RouterProfile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE router_profiles
		SET ip = ?, username = ?, password_hash = ?, serial = ?, model = ?
		WHERE id = ? AND user_id = ?`,
		p.IP, p.Username, p.PasswordHash, p.Serial, p.Model, p.ID, p.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return requireRowAffected(res)
}

func (r *profilesRepo) DeleteProfile(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM router_profiles WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *profilesRepo) ListAll(ctx context.Context) ([]domain.RouterProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+` FROM router_profiles
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (r *profilesRepo) DeleteAny(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM router_profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func scanProfile(row *sql.Row) (domain.RouterProfile, error) {
	var (
		p         domain.RouterProfile
		createdAt int64
	)
	err := row.Scan(&p.ID, &p.UserID, &p.IP, &p.Username, &p.PasswordHash,
		&p.Serial, &p.Model, &createdAt)
	if err != nil {
		return domain.RouterProfile{}, mapNotFound(err)
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return p, nil
}

func scanProfiles(rows *sql.Rows) ([]domain.RouterProfile, error) {
	var out []domain.RouterProfile
	for rows.Next() {
		var (
			p         domain.RouterProfile
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.IP, &p.Username, &p.PasswordHash,
			&p.Serial, &p.Model, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// requireRowAffected turns a zero-row write into ErrNotFound so callers can
// distinguish "no such row" from success.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
