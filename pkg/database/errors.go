package database

import "errors"

// Database errors
var (
	ErrInvalidDatabasePath = errors.New("invalid database path")
	ErrDatabaseNotOpen     = errors.New("database not open")
	ErrInvalidOutcome      = errors.New("invalid dispatch outcome")
)
