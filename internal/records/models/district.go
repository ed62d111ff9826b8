package models

import "github.com/google/uuid"

// District is an administrative subdivision of the association (legacy:
// Bezirk). It owns its cadastral districts; they are cascade-deleted with it.
type District struct {
	ID   uuid.UUID
	Code string
	Name string

	CadastralDistricts []CadastralDistrict

	Audit
}

// CadastralDistrict is a cadastral/survey subdivision within a District
// (legacy: Katasterbezirk).
type CadastralDistrict struct {
	ID         uuid.UUID
	DistrictID uuid.UUID
	Code       string
	Name       string

	Audit
}
