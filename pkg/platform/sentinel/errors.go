package sentinel

import "errors"

// Sentinel errors for storage facts. Stores and the unit of work return these
// (optionally wrapped) so callers can translate them into domain or HTTP
// responses without inspecting driver-specific error types.
//
// - ErrNotFound: entity does not exist (or is soft-deleted)
// - ErrDuplicateKey: a uniqueness constraint rejected the write
// - ErrConcurrencyConflict: stale concurrency token on update
// - ErrForeignKey: referential integrity rejected the write
// - ErrTransactionActive / ErrNoTransaction: transaction state preconditions
// - ErrClosed: the owning unit of work has been disposed
var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrForeignKey          = errors.New("foreign key violation")
	ErrTransactionActive   = errors.New("transaction already active")
	ErrNoTransaction       = errors.New("no active transaction")
	ErrClosed              = errors.New("unit of work closed")
	ErrUnavailable         = errors.New("unavailable")
)
