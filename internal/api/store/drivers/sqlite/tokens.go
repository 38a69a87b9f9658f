package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
)

type tokensRepo struct {
	db *sql.DB
}

// Upserts target the partial unique index for the row's kind, so a conflict
// on the identity column replaces the existing row. created_at is refreshed
// on every replace.

func (r *tokensRepo) UpsertDeviceToken(
	ctx context.Context,
	serial, token string,
	expiresAt *time.Time,
) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_tokens (kind, serial, token, expires_at, created_at)
		VALUES ('device', ?, ?, ?, ?)
		ON CONFLICT (serial) WHERE kind = 'device' DO UPDATE SET
			token = excluded.token,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		serial, token, unixOrNil(expiresAt), time.Now().UTC().Unix())
	return err
}

func (r *tokensRepo) UpsertProviderToken(
	ctx context.Context,
	providerID int64,
	token string,
	expiresAt *time.Time,
) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_tokens (kind, provider_id, token, expires_at, created_at)
		VALUES ('provider', ?, ?, ?, ?)
		ON CONFLICT (provider_id) WHERE kind = 'provider' DO UPDATE SET
			token = excluded.token,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		providerID, token, unixOrNil(expiresAt), time.Now().UTC().Unix())
	return err
}

func (r *tokensRepo) UpsertUserToken(
	ctx context.Context,
	userID int64,
	token string,
	expiresAt *time.Time,
) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_tokens (kind, user_id, token, expires_at, created_at)
		VALUES ('user', ?, ?, ?, ?)
		ON CONFLICT (user_id) WHERE kind = 'user' DO UPDATE SET
			token = excluded.token,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		userID, token, unixOrNil(expiresAt), time.Now().UTC().Unix())
	return err
}

func (r *tokensRepo) GetDeviceToken(
	ctx context.Context,
	serial string,
) (domain.TokenGrant, error) {
	var (
		token     string
		expiresAt sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT token, expires_at FROM api_tokens
		WHERE kind = 'device' AND serial = ?
		ORDER BY id DESC LIMIT 1`,
		serial).Scan(&token, &expiresAt)
	if err != nil {
		return domain.TokenGrant{}, mapNotFound(err)
	}
	return domain.TokenGrant{Token: token, ExpiresAt: timeOrNil(expiresAt)}, nil
}

func (r *tokensRepo) GetByToken(ctx context.Context, token string) (domain.TokenRecord, error) {
	var (
		rec        domain.TokenRecord
		kind       string
		serial     sql.NullString
		providerID sql.NullInt64
		userID     sql.NullInt64
		expiresAt  sql.NullInt64
		createdAt  int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, kind, serial, provider_id, user_id, token, expires_at, created_at
		FROM api_tokens
		WHERE token = ?
		ORDER BY id DESC LIMIT 1`,
		token).Scan(&rec.ID, &kind, &serial, &providerID, &userID, &rec.Token, &expiresAt, &createdAt)
	if err != nil {
		return domain.TokenRecord{}, mapNotFound(err)
	}

	rec.Kind = domain.Kind(kind)
	rec.Serial = serial.String
	rec.ProviderID = providerID.Int64
	rec.UserID = userID.Int64
	rec.ExpiresAt = timeOrNil(expiresAt)
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return rec, nil
}

func (r *tokensRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM api_tokens
		WHERE expires_at IS NOT NULL AND expires_at < ?`,
		time.Now().UTC().Unix())
	return err
}

// unixOrNil maps an optional expiry to a nullable column value.
func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Unix()
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
