package models

import "strings"

// PersonalInfo identifies one applicant. It is a value object owned by the
// surrounding Application: no identity, no lifecycle of its own, flattened to
// columns by the mapping layer.
type PersonalInfo struct {
	Salutation string
	Title      string
	FirstName  string
	LastName   string
	// Birthday is kept as the free-form string the legacy system stored;
	// decades of hand-entered data make a typed date unsafe here.
	Birthday string
}

// DisplayName renders "Title FirstName LastName" without empty segments.
// Computed on read, never stored.
func (p PersonalInfo) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.FirstName, p.LastName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Address is a value object nested inside ContactInfo. When present, street,
// postal code and city are all expected to be filled.
type Address struct {
	Street     string
	PostalCode string
	City       string
}

// ContactInfo groups the address and reachability fields of an Application.
type ContactInfo struct {
	Address
	Phone         string
	MobilePhone   string
	MobilePhone2  string
	BusinessPhone string
	Email         string
}
