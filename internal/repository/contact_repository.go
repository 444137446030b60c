// This file defines repository methods for the contact book, the CRUD
// domain sitting next to the auth core.  Every query is scoped by the
// owning user id so one user can never read or mutate another user's
// contacts, regardless of what the handler passes in.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nzeleniuk/contactbook/internal/model"
)

// ContactRepo encapsulates all database queries related to contacts.
type ContactRepo struct {
	db *sql.DB
}

// NewContactRepo constructs a ContactRepo with the provided DB handle.
func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

const contactColumns = "id, user_id, name, surname, email, phone, date_of_birth, created_at, updated_at"

// Create inserts a new contact owned by c.UserID.  On success the
// contact's ID field is populated with the auto-generated value.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	const q = `INSERT INTO contacts (user_id, name, surname, email, phone, date_of_birth)
	           VALUES (?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		c.UserID, c.Name, c.Surname, c.Email, c.Phone, c.DateOfBirth)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a contact by id, but only when it belongs to the given
// user.  A contact owned by someone else is reported as ErrNotFound, the
// same as a contact that does not exist.
func (r *ContactRepo) GetByID(ctx context.Context, id, userID uint64) (*model.Contact, error) {
	const q = "SELECT " + contactColumns + " FROM contacts WHERE id = ? AND user_id = ? LIMIT 1"
	var c model.Contact
	err := r.db.QueryRowContext(ctx, q, id, userID).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Surname, &c.Email, &c.Phone,
		&c.DateOfBirth, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByUser returns a page of the user's contacts ordered by id.
func (r *ContactRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.Contact, error) {
	const q = "SELECT " + contactColumns + " FROM contacts WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Contact
	for rows.Next() {
		c := new(model.Contact)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Surname, &c.Email,
			&c.Phone, &c.DateOfBirth, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable fields of a contact owned by c.UserID.
// Returns ErrNotFound when no owned row matches.
func (r *ContactRepo) Update(ctx context.Context, c *model.Contact) error {
	const q = `UPDATE contacts SET name = ?, surname = ?, email = ?, phone = ?, date_of_birth = ?
	           WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		c.Name, c.Surname, c.Email, c.Phone, c.DateOfBirth, c.ID, c.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a contact owned by userID.  Returns ErrNotFound when no
// owned row matches.  Unlike refresh tokens, contacts are physically
// deleted; there is no audit requirement here.
func (r *ContactRepo) Delete(ctx context.Context, id, userID uint64) error {
	const q = "DELETE FROM contacts WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
