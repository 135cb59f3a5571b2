package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Store errors
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")
	// ErrStoreUnavailable marks faults that affect a whole file rather than a
	// single line: lost connections, admin shutdown, exhausted resources.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnknownParent    = errors.New("PARENT_ID references an unknown event")

	// Ingestion errors
	ErrQueueClosed    = errors.New("ingestion queue closed")
	ErrTerminalStatus = errors.New("job already in a terminal status")
)
