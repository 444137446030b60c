package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/nzeleniuk/contactbook/internal/model"
)

// mysqlDupEntry is the MySQL error number for a unique key violation.
const mysqlDupEntry = 1062

// UserRepo encapsulates all database queries against the `users` table.
// It depends on a sql.DB connection configured elsewhere, which allows
// dependency injection of the database in tests and at startup.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the provided DB handle.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = "id, username, email, password_hash, COALESCE(avatar,''), confirmed, role, created_at, updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Avatar, &u.Confirmed, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row.  The caller supplies the bcrypt hash;
// this layer never sees a plaintext password.  On success the user's ID
// field is populated with the auto-generated value.  A unique constraint
// violation on username or email is reported as ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = "INSERT INTO users (username, email, password_hash, confirmed, role) VALUES (?,?,?,?,?)"
	res, err := r.db.ExecContext(ctx, q,
		u.Username, u.Email, u.PasswordHash, u.Confirmed, string(u.Role))
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByUsername fetches a user by username.  Returns ErrNotFound when no
// row matches.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = "SELECT " + userColumns + " FROM users WHERE username = ? LIMIT 1"
	return scanUser(r.db.QueryRowContext(ctx, q, username))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = "SELECT " + userColumns + " FROM users WHERE email = ? LIMIT 1"
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = "SELECT " + userColumns + " FROM users WHERE id = ? LIMIT 1"
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// ConfirmEmail flips the confirmed flag for the given email.  The flag
// only ever goes from false to true; confirming twice is harmless.
func (r *UserRepo) ConfirmEmail(ctx context.Context, email string) error {
	const q = "UPDATE users SET confirmed = TRUE WHERE email = ?"
	res, err := r.db.ExecContext(ctx, q, email)
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

// UpdateAvatarURL stores a new avatar reference for the user identified
// by email.  The image itself lives in external object storage; only the
// URL is persisted here.
func (r *UserRepo) UpdateAvatarURL(ctx context.Context, email, url string) error {
	const q = "UPDATE users SET avatar = ? WHERE email = ?"
	res, err := r.db.ExecContext(ctx, q, url, email)
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

// UpdatePassword replaces the stored bcrypt hash for a user.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, passwordHash string) error {
	const q = "UPDATE users SET password_hash = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, passwordHash, userID)
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
