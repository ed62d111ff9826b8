package models

import "github.com/google/uuid"

// Personnel is a case worker account migrated from the legacy system
// (legacy: Personen). The persistence core stores these as reference data;
// authentication and authorization live outside this repository.
type Personnel struct {
	ID uuid.UUID

	Salutation string
	FirstName  string
	LastName   string

	EmployeeNumber string
	Department     string
	Room           string
	Phone          string
	Fax            string
	Email          string

	SignatureCode string
	SignatureText string
	JobTitle      string

	IsAdmin                bool
	CanAdministrate        bool
	CanManageServiceGroups bool
	CanManagePrioritiesSLA bool
	CanManageCustomers     bool

	Active bool

	Audit
}
