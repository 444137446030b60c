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

func contactRows(cs ...*model.Contact) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "name", "surname", "email", "phone", "date_of_birth", "created_at", "updated_at",
	})
	for _, c := range cs {
		rows.AddRow(c.ID, c.UserID, c.Name, c.Surname, c.Email, c.Phone, c.DateOfBirth, c.CreatedAt, c.UpdatedAt)
	}
	return rows
}

func testContact(id, userID uint64) *model.Contact {
	return &model.Contact{
		ID: id, UserID: userID,
		Name: "Bob", Surname: "Smith",
		Email: "bob@x.com", Phone: "+123456789",
		DateOfBirth: time.Date(1990, 5, 14, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
}

func TestContactRepoCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContactRepo(db)

	c := testContact(0, 7)
	mock.ExpectExec("INSERT INTO contacts").
		WithArgs(c.UserID, c.Name, c.Surname, c.Email, c.Phone, c.DateOfBirth).
		WillReturnResult(sqlmock.NewResult(3, 1))

	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, uint64(3), c.ID)
}

func TestContactRepoGetByIDScopedToOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContactRepo(db)

	want := testContact(3, 7)
	mock.ExpectQuery("SELECT .+ FROM contacts WHERE id = .+ AND user_id = ").
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(contactRows(want))

	got, err := repo.GetByID(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)

	// Someone else's contact looks exactly like a missing one.
	mock.ExpectQuery("SELECT .+ FROM contacts WHERE id = .+ AND user_id = ").
		WithArgs(uint64(3), uint64(8)).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), 3, 8)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactRepoListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContactRepo(db)

	mock.ExpectQuery("SELECT .+ FROM contacts WHERE user_id = .+ ORDER BY id LIMIT .+ OFFSET ").
		WithArgs(uint64(7), 50, 0).
		WillReturnRows(contactRows(testContact(1, 7), testContact(2, 7)))

	out, err := repo.ListByUser(context.Background(), 7, 50, 0)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestContactRepoUpdateNotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContactRepo(db)

	c := testContact(3, 8)
	mock.ExpectExec("UPDATE contacts SET").
		WithArgs(c.Name, c.Surname, c.Email, c.Phone, c.DateOfBirth, c.ID, c.UserID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Update(context.Background(), c), ErrNotFound)
}

func TestContactRepoDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContactRepo(db)

	mock.ExpectExec("DELETE FROM contacts WHERE id = .+ AND user_id = ").
		WithArgs(uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), 3, 7))

	mock.ExpectExec("DELETE FROM contacts WHERE id = .+ AND user_id = ").
		WithArgs(uint64(9), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 9, 7), ErrNotFound)
}
