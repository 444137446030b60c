package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nzeleniuk/contactbook/internal/model"
)

// TokenRepo persists refresh-token records.  Only the SHA-256 hash of a
// token ever reaches this layer; rows are written once, revoked at most
// once and never deleted, so the table doubles as a session audit trail.
type TokenRepo struct {
	db *sql.DB
}

// NewTokenRepo constructs a TokenRepo with the provided DB handle.
func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Create inserts a refresh-token row and populates the record's ID.
func (r *TokenRepo) Create(ctx context.Context, t *model.RefreshToken) error {
	const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at, ip_address, user_agent)
	           VALUES (?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		t.UserID, t.TokenHash, t.ExpiresAt, nullable(t.IPAddress), nullable(t.UserAgent))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByHash returns the row matching a token hash regardless of its
// state, so callers can tell "no such token" apart from "token exists
// but is expired or revoked".  Returns ErrNotFound when no row matches.
func (r *TokenRepo) GetByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	const q = `SELECT id, user_id, token_hash, created_at, expires_at, revoked_at,
	                  COALESCE(ip_address,''), COALESCE(user_agent,'')
	           FROM refresh_tokens WHERE token_hash = ? LIMIT 1`
	var (
		t         model.RefreshToken
		revokedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt, &revokedAt,
		&t.IPAddress, &t.UserAgent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if revokedAt.Valid {
		rv := revokedAt.Time
		t.RevokedAt = &rv
	}
	return &t, nil
}

// MarkRevoked sets revoked_at on a row, conditional on it not already
// being revoked.  The condition is what makes rotation race-safe: when
// two callers present the same secret concurrently, only the first
// UPDATE matches the row and reports revoked=true; the loser sees false
// and must treat the token as already spent.
func (r *TokenRepo) MarkRevoked(ctx context.Context, id uint64, now time.Time) (bool, error) {
	const q = "UPDATE refresh_tokens SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL"
	res, err := r.db.ExecContext(ctx, q, now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RevokeAllForUser revokes every active token owned by a user.  Used by
// the logout-everywhere endpoint; revoking zero rows is not an error.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64, now time.Time) error {
	const q = "UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL"
	_, err := r.db.ExecContext(ctx, q, now, userID)
	return err
}

// nullable maps the empty string to SQL NULL so optional audit columns
// stay NULL instead of storing empty strings.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
