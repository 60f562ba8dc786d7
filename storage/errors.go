package storage

import "errors"

// Storage error constants. Not-found conditions reuse the core sentinels so
// the API layer classifies engine and storage failures uniformly.
var (
	// ErrDuplicateVessel is returned when creating a vessel whose ID exists
	ErrDuplicateVessel = errors.New("vessel already exists")

	// ErrDuplicateLoadcase is returned when creating a loadcase whose ID exists
	ErrDuplicateLoadcase = errors.New("loadcase already exists")

	// ErrDatabaseClosed is returned when using a closed backend
	ErrDatabaseClosed = errors.New("database is closed")
)
