package repository

import "errors"

// Storage-level outcomes the usecases translate into caller-facing
// errors. Postgres implementations map driver errors onto these.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrInsufficientFunds = errors.New("insufficient balance")
	// ErrStaleStatus means a guarded status update matched zero rows: the
	// entity left the expected state between read and write.
	ErrStaleStatus = errors.New("entity status changed concurrently")
)
