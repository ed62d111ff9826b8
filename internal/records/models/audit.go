package models

import "time"

// Audit carries the bookkeeping columns shared by every persisted entity:
// creation/update stamps, soft-delete markers, and the optimistic concurrency
// token. It is embedded by value; entities expose it through Auditable so the
// store layer can stamp and check it without knowing the concrete type.
type Audit struct {
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
	DeletedAt *time.Time
	DeletedBy string
	// Version is the concurrency token. Updates are guarded by it and bump it
	// by one; a mismatch surfaces as sentinel.ErrConcurrencyConflict.
	Version int64
}

// Auditable is implemented by every entity via the embedded Audit struct.
type Auditable interface {
	AuditData() *Audit
}

// AuditData returns the embedded audit block for store-layer stamping.
func (a *Audit) AuditData() *Audit { return a }

// Deleted reports whether the entity has been soft-deleted.
func (a *Audit) Deleted() bool { return a.DeletedAt != nil }

// StampCreated initializes the audit block for a new entity.
func (a *Audit) StampCreated(now time.Time, actor string) {
	a.CreatedAt = now
	a.CreatedBy = actor
	a.UpdatedAt = now
	a.UpdatedBy = actor
	if a.Version == 0 {
		a.Version = 1
	}
}

// StampUpdated records an update; the version bump itself happens in SQL so
// concurrent writers race on the stored value, not the in-memory copy.
func (a *Audit) StampUpdated(now time.Time, actor string) {
	a.UpdatedAt = now
	a.UpdatedBy = actor
}

// StampDeleted marks the entity soft-deleted.
func (a *Audit) StampDeleted(now time.Time, actor string) {
	a.DeletedAt = &now
	a.DeletedBy = actor
}
