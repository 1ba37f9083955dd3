package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and the controllers translate them into domain errors:
// - ErrNotFound: no record with that id
// - ErrConflict: a record with that id already exists
// - ErrInvalidState: a conditional write found the record in another state
// - ErrUnavailable: backing store or lock service unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
