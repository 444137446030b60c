// Package repository contains data access logic separated from HTTP
// handlers and from the auth core.  This file defines sentinel error
// values reused across repositories so that higher layers can translate
// storage outcomes into their own taxonomy without string matching.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.  Callers that
// need to distinguish "absent" from infrastructure failure compare with
// errors.Is against this value rather than sql.ErrNoRows.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint,
// such as registering a username or email that already exists.  Handlers
// translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate record")
