package services

import (
	"errors"
)

// ErrPermissionDenied is returned when a content edit is attempted by
// a user who is neither the owner nor a moderator/admin.
var ErrPermissionDenied = errors.New("permission denied")

// ErrNotFound is returned by operations that report absence as an
// error rather than a nil/false result.
var ErrNotFound = errors.New("post not found")
