package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzeleniuk/contactbook/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func userRows(u *model.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "avatar", "confirmed", "role", "created_at", "updated_at",
	}).AddRow(u.ID, u.Username, u.Email, u.PasswordHash, u.Avatar, u.Confirmed, string(u.Role), u.CreatedAt, u.UpdatedAt)
}

func TestUserRepoCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO users (username, email, password_hash, confirmed, role) VALUES (?,?,?,?,?)")).
		WithArgs("alice", "alice@x.com", "hash", false, "USER").
		WillReturnResult(sqlmock.NewResult(7, 1))

	u := &model.User{Username: "alice", Email: "alice@x.com", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, uint64(7), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice'"})

	err := repo.Create(context.Background(), &model.User{Username: "alice", Role: model.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepoGetByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	want := &model.User{
		ID: 7, Username: "alice", Email: "alice@x.com", PasswordHash: "hash",
		Confirmed: true, Role: model.RoleUser,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	mock.ExpectQuery("SELECT .+ FROM users WHERE username = ").
		WithArgs("alice").
		WillReturnRows(userRows(want))

	got, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Role, got.Role)
}

func TestUserRepoGetByUsernameNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE username = ").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepoGetByEmailNormalizes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	want := &model.User{ID: 7, Username: "alice", Email: "alice@x.com", Role: model.RoleUser}
	mock.ExpectQuery("SELECT .+ FROM users WHERE email = ").
		WithArgs("alice@x.com").
		WillReturnRows(userRows(want))

	_, err := repo.GetByEmail(context.Background(), "  Alice@X.com ")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoConfirmEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET confirmed = TRUE WHERE email = ?")).
		WithArgs("alice@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.ConfirmEmail(context.Background(), "alice@x.com"))
}

func TestUserRepoConfirmEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET confirmed = TRUE WHERE email = ?")).
		WithArgs("missing@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.ConfirmEmail(context.Background(), "missing@x.com"), ErrNotFound)
}

func TestUserRepoUpdatePassword(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = ? WHERE id = ?")).
		WithArgs("newhash", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdatePassword(context.Background(), 7, "newhash"))
}
