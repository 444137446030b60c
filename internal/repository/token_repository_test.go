package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzeleniuk/contactbook/internal/model"
)

func TestTokenRepoCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	exp := time.Now().UTC().Add(7 * 24 * time.Hour)
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(7), "hash123", exp,
			sql.NullString{String: "127.0.0.1", Valid: true},
			sql.NullString{String: "test-agent", Valid: true}).
		WillReturnResult(sqlmock.NewResult(42, 1))

	rec := &model.RefreshToken{
		UserID:    7,
		TokenHash: "hash123",
		ExpiresAt: exp,
		IPAddress: "127.0.0.1",
		UserAgent: "test-agent",
	}
	require.NoError(t, repo.Create(context.Background(), rec))
	assert.Equal(t, uint64(42), rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoCreateEmptyMetadataIsNull(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	exp := time.Now().UTC()
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(7), "hash123", exp,
			sql.NullString{}, sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := &model.RefreshToken{UserID: 7, TokenHash: "hash123", ExpiresAt: exp}
	require.NoError(t, repo.Create(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoGetByHash(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	created := time.Now().UTC().Add(-time.Hour)
	exp := time.Now().UTC().Add(time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "token_hash", "created_at", "expires_at", "revoked_at", "ip_address", "user_agent",
	}).AddRow(42, 7, "hash123", created, exp, nil, "127.0.0.1", "test-agent")

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash = ").
		WithArgs("hash123").
		WillReturnRows(rows)

	rec, err := repo.GetByHash(context.Background(), "hash123")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), rec.ID)
	assert.Equal(t, uint64(7), rec.UserID)
	assert.Nil(t, rec.RevokedAt)
	assert.True(t, rec.Active(time.Now().UTC()))
}

func TestTokenRepoGetByHashRevoked(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "token_hash", "created_at", "expires_at", "revoked_at", "ip_address", "user_agent",
	}).AddRow(42, 7, "hash123", now.Add(-time.Hour), now.Add(time.Hour), now.Add(-time.Minute), "", "")

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash = ").
		WithArgs("hash123").
		WillReturnRows(rows)

	rec, err := repo.GetByHash(context.Background(), "hash123")
	require.NoError(t, err)
	require.NotNil(t, rec.RevokedAt)
	assert.False(t, rec.Active(now), "revoked row is never active")
}

func TestTokenRepoGetByHashNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash = ").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByHash(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenRepoMarkRevoked(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at = .+ AND revoked_at IS NULL").
		WithArgs(now, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	revoked, err := repo.MarkRevoked(context.Background(), 42, now)
	require.NoError(t, err)
	assert.True(t, revoked, "first revoke flips the row")
}

func TestTokenRepoMarkRevokedLosesRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	// Zero rows affected: someone else already revoked the row.  The
	// caller must treat the token as spent, not as freshly revoked.
	now := time.Now().UTC()
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at = .+ AND revoked_at IS NULL").
		WithArgs(now, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	revoked, err := repo.MarkRevoked(context.Background(), 42, now)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenRepoRevokeAllForUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at = .+ WHERE user_id = .+ AND revoked_at IS NULL").
		WithArgs(now, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, repo.RevokeAllForUser(context.Background(), 7, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}
