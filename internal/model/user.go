package model

import "time"

// UserRole is a closed enumeration of the roles a user can hold.  Roles
// are stored as strings in the `users.role` column and embedded in the
// role claim of access tokens.  Authorization decisions are made by
// comparing against these two values only; unknown roles are denied.
type UserRole string

const (
    RoleUser  UserRole = "USER"  // default role assigned at registration
    RoleAdmin UserRole = "ADMIN" // elevated role for administrative operations
)

// Valid reports whether the role is one of the known enumeration values.
func (r UserRole) Valid() bool {
    return r == RoleUser || r == RoleAdmin
}

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are primarily used
// internally by the repository layer; handlers define separate response
// types so that PasswordHash is never serialized.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password; never leaves the auth core.
//  Avatar       – optional URL of the user's avatar image.
//  Confirmed    – whether the email address has been verified.
//  Role         – role name (USER or ADMIN).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Avatar       string    // users.avatar (nullable, empty when unset)
    Confirmed    bool      // users.confirmed
    Role         UserRole  // users.role
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry and
// revocation.  The plain token is not stored; only its SHA-256 hash.
// Rows are never deleted; a revoked row stays behind as an audit trail
// of the session it once represented.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value (unique).
//  CreatedAt – timestamp of creation.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (nil while still active).
//  IPAddress – client address recorded at issue time, for auditing.
//  UserAgent – client user agent recorded at issue time, for auditing.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    CreatedAt time.Time  // refresh_tokens.created_at
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    IPAddress string     // refresh_tokens.ip_address (nullable)
    UserAgent string     // refresh_tokens.user_agent (nullable)
}

// Active reports whether the token can still be exchanged at the given
// instant: not revoked and not past its expiry.  Expiry is derived from
// the clock at read time; nothing is written back when a token ages out.
func (t *RefreshToken) Active(now time.Time) bool {
    return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
