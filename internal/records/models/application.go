package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Application is a garden-plot request record (legacy: Antrag). It owns its
// PersonalInfo/ContactInfo value objects and its HistoryEntry collection; the
// history rows live and die with the application row.
type Application struct {
	ID uuid.UUID

	// FileReference is the rendered case number, e.g. "NORD-1-2024".
	// Globally unique across all applications, soft-deactivated ones included.
	FileReference string

	// The two waiting lists the association runs (legacy columns 32 and 33).
	// Stored as free text; see ApplicationRepository.GetNextWaitingListNumber
	// for the tolerant numeric interpretation.
	WaitingList32 string
	WaitingList33 string

	Applicant PersonalInfo
	// SecondApplicant is the optional co-applicant; nil maps to NULL columns.
	SecondApplicant  *PersonalInfo
	LetterSalutation string

	Contact ContactInfo

	Wish  string
	Notes string

	ApplicationDate  time.Time
	ConfirmationDate *time.Time
	CurrentOfferDate *time.Time
	DeletionDate     *time.Time

	// Active is the soft-deactivation flag. Applications are never physically
	// deleted through the normal lifecycle; Deactivate clears this instead.
	Active bool

	History []HistoryEntry

	Audit
}

// FullName renders the applicant pair for display. Computed, never stored.
func (a *Application) FullName() string {
	name := a.Applicant.DisplayName()
	if a.SecondApplicant != nil {
		if second := a.SecondApplicant.DisplayName(); second != "" {
			name = name + " und " + second
		}
	}
	return strings.TrimSpace(name)
}

// Deactivate soft-deactivates the application.
func (a *Application) Deactivate(now time.Time, actor string) {
	a.Active = false
	a.DeletionDate = &now
	a.StampUpdated(now, actor)
}

// AddHistory appends a lifecycle event to the aggregate.
func (a *Application) AddHistory(entry HistoryEntry) {
	entry.ApplicationID = a.ID
	a.History = append(a.History, entry)
}
