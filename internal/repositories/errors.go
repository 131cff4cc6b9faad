package repositories

import "errors"

// Sentinel errors shared by all repository implementations so that the
// service layer can branch without knowing the backing store.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)
