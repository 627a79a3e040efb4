package services

import "errors"

// Sentinel errors returned by the directory, registry and ledger. The command
// router maps these to user-facing rejection kinds; anything else is treated
// as an internal storage error and never shown verbatim to end users.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrTableNotFound     = errors.New("table not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrTableClosed       = errors.New("table is closed")
	ErrTableFull         = errors.New("table is full")
	ErrCapacityConflict  = errors.New("max players below current occupancy")
	ErrNotRegistered     = errors.New("not registered for this table")
	ErrAlreadyRegistered = errors.New("already registered for this table")
)
