package models

import (
	"fmt"

	"github.com/google/uuid"
)

// FileReference is one issued case number (legacy: Aktenzeichen). The triple
// (district, number, year) is unique; the rendered string becomes an
// Application's file reference.
type FileReference struct {
	ID           uuid.UUID
	DistrictCode string
	Number       int
	Year         int

	Audit
}

// String renders the case number, e.g. "NORD-1-2024". Computed, never stored.
func (f FileReference) String() string {
	return fmt.Sprintf("%s-%d-%d", f.DistrictCode, f.Number, f.Year)
}
