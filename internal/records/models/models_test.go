package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		p    PersonalInfo
		want string
	}{
		{"full", PersonalInfo{Title: "Dr.", FirstName: "Anna", LastName: "Schmidt"}, "Dr. Anna Schmidt"},
		{"no title", PersonalInfo{FirstName: "Anna", LastName: "Schmidt"}, "Anna Schmidt"},
		{"last name only", PersonalInfo{LastName: "Schmidt"}, "Schmidt"},
		{"empty", PersonalInfo{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.DisplayName())
		})
	}
}

func TestApplicationFullName(t *testing.T) {
	a := &Application{
		Applicant: PersonalInfo{FirstName: "Anna", LastName: "Schmidt"},
	}
	assert.Equal(t, "Anna Schmidt", a.FullName())

	a.SecondApplicant = &PersonalInfo{FirstName: "Bernd", LastName: "Schmidt"}
	assert.Equal(t, "Anna Schmidt und Bernd Schmidt", a.FullName())

	a.SecondApplicant = &PersonalInfo{}
	assert.Equal(t, "Anna Schmidt", a.FullName())
}

func TestApplicationDeactivate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &Application{Active: true}
	a.Deactivate(now, "clerk")

	assert.False(t, a.Active)
	if assert.NotNil(t, a.DeletionDate) {
		assert.Equal(t, now, *a.DeletionDate)
	}
	assert.Equal(t, "clerk", a.UpdatedBy)
	assert.Equal(t, now, a.UpdatedAt)
	// Deactivation is not a soft delete; the row stays visible.
	assert.False(t, a.Deleted())
}

func TestAddHistorySetsApplicationID(t *testing.T) {
	a := &Application{ID: uuid.New()}
	a.AddHistory(HistoryEntry{Kind: HistoryOffered})

	if assert.Len(t, a.History, 1) {
		assert.Equal(t, a.ID, a.History[0].ApplicationID)
	}
}

func TestFileReferenceString(t *testing.T) {
	f := FileReference{DistrictCode: "NORD", Number: 7, Year: 2024}
	assert.Equal(t, "NORD-7-2024", f.String())
}

func TestAuditStamps(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var a Audit

	a.StampCreated(now, "api")
	assert.Equal(t, int64(1), a.Version)
	assert.Equal(t, "api", a.CreatedBy)
	assert.Equal(t, "api", a.UpdatedBy)

	later := now.Add(time.Hour)
	a.StampUpdated(later, "clerk")
	assert.Equal(t, later, a.UpdatedAt)
	assert.Equal(t, "clerk", a.UpdatedBy)
	// The version bump happens in SQL, not here.
	assert.Equal(t, int64(1), a.Version)

	a.StampDeleted(later, "clerk")
	assert.True(t, a.Deleted())
	assert.Equal(t, "clerk", a.DeletedBy)
}
