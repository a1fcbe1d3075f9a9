package repository

import "errors"

var (
	// ErrNotFound is returned when an id or lookup does not resolve to an
	// existing document. Malformed object ids resolve to ErrNotFound too.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned by Create methods when a unique index rejects
	// the document (email, (bootcamp,user) review pair, upgrade request per
	// user, locked bootcamp owner).
	ErrDuplicate = errors.New("duplicate key")
)
