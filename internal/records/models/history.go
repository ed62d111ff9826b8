package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryKind classifies a lifecycle event on an application.
type HistoryKind string

const (
	HistoryReceived  HistoryKind = "received"
	HistoryConfirmed HistoryKind = "confirmed"
	HistoryOffered   HistoryKind = "offered"
	HistoryAssigned  HistoryKind = "assigned"
	HistoryDeclined  HistoryKind = "declined"
	HistoryDeleted   HistoryKind = "deleted"
	HistoryNote      HistoryKind = "note"
)

// HistoryEntry is one timestamped event in an Application's lifecycle
// (legacy: Verlauf). It belongs to exactly one application and is
// cascade-deleted with it.
type HistoryEntry struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID

	Kind HistoryKind
	Date time.Time

	// Plot location fields, filled when the event concerns a concrete parcel
	// (legacy: Gemarkung, Flur, Parzelle, Groesse).
	CadastralDistrict string
	Section           string
	Parcel            string
	Size              string

	CaseWorker string
	Note       string
	Comment    string

	Audit
}
