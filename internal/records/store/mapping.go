package store

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"kgv/internal/records/models"
)

// mapping is the declarative rule set translating one entity type into its
// flat relational row and back. Embedded value objects are flattened here
// (the co-applicant's PersonalInfo columns carry a _2 suffix); computed
// properties never appear in a column list.
type mapping[T models.Auditable] struct {
	table    string
	dataCols []string
	dataVals func(T) []any
	scan     func(scanner) (T, error)
	id       func(T) uuid.UUID
	setID    func(T, uuid.UUID)
}

// auditCols trail every table, in this order.
var auditCols = []string{
	"created_at", "created_by",
	"updated_at", "updated_by",
	"deleted_at", "deleted_by",
	"version",
}

func auditVals(a *models.Audit) []any {
	return []any{
		a.CreatedAt, a.CreatedBy,
		a.UpdatedAt, a.UpdatedBy,
		a.DeletedAt, nullString(a.DeletedBy),
		a.Version,
	}
}

// auditTargets returns scan destinations plus a commit func resolving the
// nullable intermediates into the audit block.
func auditTargets(a *models.Audit) ([]any, func()) {
	var deletedAt sql.NullTime
	var deletedBy sql.NullString
	targets := []any{
		&a.CreatedAt, &a.CreatedBy,
		&a.UpdatedAt, &a.UpdatedBy,
		&deletedAt, &deletedBy,
		&a.Version,
	}
	return targets, func() {
		a.DeletedAt = timePtr(deletedAt)
		a.DeletedBy = deletedBy.String
	}
}

func (m *mapping[T]) selectColumns() string {
	cols := make([]string, 0, 1+len(m.dataCols)+len(auditCols))
	cols = append(cols, "id")
	cols = append(cols, m.dataCols...)
	cols = append(cols, auditCols...)
	return strings.Join(cols, ", ")
}

func (m *mapping[T]) insertColumns() []string {
	return append([]string{"id"}, append(append([]string{}, m.dataCols...), auditCols...)...)
}

func (m *mapping[T]) insertVals(e T) []any {
	vals := make([]any, 0, 1+len(m.dataCols)+len(auditCols))
	vals = append(vals, m.id(e))
	vals = append(vals, m.dataVals(e)...)
	vals = append(vals, auditVals(e.AuditData())...)
	return vals
}

// --- applications -----------------------------------------------------------

var applicationMapping = mapping[*models.Application]{
	table: "applications",
	dataCols: []string{
		"file_reference",
		"waiting_list_number_32", "waiting_list_number_33",
		"salutation", "title", "first_name", "last_name", "birthday",
		"salutation_2", "title_2", "first_name_2", "last_name_2", "birthday_2",
		"letter_salutation",
		"street", "postal_code", "city",
		"phone", "mobile_phone", "mobile_phone_2", "business_phone", "email",
		"application_date", "confirmation_date", "current_offer_date", "deletion_date",
		"wish", "notes", "active",
	},
	dataVals: applicationVals,
	scan:     scanApplication,
	id:       func(a *models.Application) uuid.UUID { return a.ID },
	setID:    func(a *models.Application, id uuid.UUID) { a.ID = id },
}

func applicationVals(a *models.Application) []any {
	second := a.SecondApplicant
	if second == nil {
		second = &models.PersonalInfo{}
	}
	return []any{
		a.FileReference,
		nullString(a.WaitingList32), nullString(a.WaitingList33),
		a.Applicant.Salutation, nullString(a.Applicant.Title),
		a.Applicant.FirstName, a.Applicant.LastName,
		nullString(a.Applicant.Birthday),
		nullString(second.Salutation), nullString(second.Title),
		nullString(second.FirstName), nullString(second.LastName),
		nullString(second.Birthday),
		nullString(a.LetterSalutation),
		nullString(a.Contact.Street), nullString(a.Contact.PostalCode), nullString(a.Contact.City),
		nullString(a.Contact.Phone), nullString(a.Contact.MobilePhone),
		nullString(a.Contact.MobilePhone2), nullString(a.Contact.BusinessPhone),
		nullString(a.Contact.Email),
		a.ApplicationDate, a.ConfirmationDate, a.CurrentOfferDate, a.DeletionDate,
		nullString(a.Wish), nullString(a.Notes), a.Active,
	}
}

func scanApplication(s scanner) (*models.Application, error) {
	var (
		a models.Application

		wl32, wl33                        sql.NullString
		title, birthday                   sql.NullString
		sal2, title2, first2, last2, bd2  sql.NullString
		letterSalutation                  sql.NullString
		street, postalCode, city          sql.NullString
		phone, mobile, mobile2, business  sql.NullString
		email                             sql.NullString
		confirmation, currentOffer, dtDel sql.NullTime
		wish, notes                       sql.NullString
	)
	auditDst, commitAudit := auditTargets(&a.Audit)

	targets := []any{
		&a.ID,
		&a.FileReference,
		&wl32, &wl33,
		&a.Applicant.Salutation, &title, &a.Applicant.FirstName, &a.Applicant.LastName, &birthday,
		&sal2, &title2, &first2, &last2, &bd2,
		&letterSalutation,
		&street, &postalCode, &city,
		&phone, &mobile, &mobile2, &business, &email,
		&a.ApplicationDate, &confirmation, &currentOffer, &dtDel,
		&wish, &notes, &a.Active,
	}
	targets = append(targets, auditDst...)

	if err := s.Scan(targets...); err != nil {
		return nil, err
	}
	commitAudit()

	a.WaitingList32 = wl32.String
	a.WaitingList33 = wl33.String
	a.Applicant.Title = title.String
	a.Applicant.Birthday = birthday.String
	if last2.Valid {
		a.SecondApplicant = &models.PersonalInfo{
			Salutation: sal2.String,
			Title:      title2.String,
			FirstName:  first2.String,
			LastName:   last2.String,
			Birthday:   bd2.String,
		}
	}
	a.LetterSalutation = letterSalutation.String
	a.Contact = models.ContactInfo{
		Address: models.Address{
			Street:     street.String,
			PostalCode: postalCode.String,
			City:       city.String,
		},
		Phone:         phone.String,
		MobilePhone:   mobile.String,
		MobilePhone2:  mobile2.String,
		BusinessPhone: business.String,
		Email:         email.String,
	}
	a.ConfirmationDate = timePtr(confirmation)
	a.CurrentOfferDate = timePtr(currentOffer)
	a.DeletionDate = timePtr(dtDel)
	a.Wish = wish.String
	a.Notes = notes.String
	return &a, nil
}

// --- application_history ----------------------------------------------------

var historyMapping = mapping[*models.HistoryEntry]{
	table: "application_history",
	dataCols: []string{
		"application_id", "kind", "entry_date",
		"cadastral_district", "section", "parcel", "size_info",
		"case_worker", "note", "comment",
	},
	dataVals: func(h *models.HistoryEntry) []any {
		return []any{
			h.ApplicationID, string(h.Kind), h.Date,
			nullString(h.CadastralDistrict), nullString(h.Section),
			nullString(h.Parcel), nullString(h.Size),
			nullString(h.CaseWorker), nullString(h.Note), nullString(h.Comment),
		}
	},
	scan:  scanHistoryEntry,
	id:    func(h *models.HistoryEntry) uuid.UUID { return h.ID },
	setID: func(h *models.HistoryEntry, id uuid.UUID) { h.ID = id },
}

func scanHistoryEntry(s scanner) (*models.HistoryEntry, error) {
	var (
		h                                models.HistoryEntry
		kind                             string
		gemarkung, section, parcel, size sql.NullString
		caseWorker, note, comment        sql.NullString
	)
	auditDst, commitAudit := auditTargets(&h.Audit)
	targets := []any{
		&h.ID,
		&h.ApplicationID, &kind, &h.Date,
		&gemarkung, &section, &parcel, &size,
		&caseWorker, &note, &comment,
	}
	targets = append(targets, auditDst...)
	if err := s.Scan(targets...); err != nil {
		return nil, err
	}
	commitAudit()
	h.Kind = models.HistoryKind(kind)
	h.CadastralDistrict = gemarkung.String
	h.Section = section.String
	h.Parcel = parcel.String
	h.Size = size.String
	h.CaseWorker = caseWorker.String
	h.Note = note.String
	h.Comment = comment.String
	return &h, nil
}

// --- districts / cadastral_districts ---------------------------------------

var districtMapping = mapping[*models.District]{
	table:    "districts",
	dataCols: []string{"code", "name"},
	dataVals: func(d *models.District) []any {
		return []any{d.Code, d.Name}
	},
	scan: func(s scanner) (*models.District, error) {
		var d models.District
		auditDst, commitAudit := auditTargets(&d.Audit)
		targets := append([]any{&d.ID, &d.Code, &d.Name}, auditDst...)
		if err := s.Scan(targets...); err != nil {
			return nil, err
		}
		commitAudit()
		return &d, nil
	},
	id:    func(d *models.District) uuid.UUID { return d.ID },
	setID: func(d *models.District, id uuid.UUID) { d.ID = id },
}

var cadastralMapping = mapping[*models.CadastralDistrict]{
	table:    "cadastral_districts",
	dataCols: []string{"district_id", "code", "name"},
	dataVals: func(c *models.CadastralDistrict) []any {
		return []any{c.DistrictID, c.Code, nullString(c.Name)}
	},
	scan: func(s scanner) (*models.CadastralDistrict, error) {
		var c models.CadastralDistrict
		var name sql.NullString
		auditDst, commitAudit := auditTargets(&c.Audit)
		targets := append([]any{&c.ID, &c.DistrictID, &c.Code, &name}, auditDst...)
		if err := s.Scan(targets...); err != nil {
			return nil, err
		}
		commitAudit()
		c.Name = name.String
		return &c, nil
	},
	id:    func(c *models.CadastralDistrict) uuid.UUID { return c.ID },
	setID: func(c *models.CadastralDistrict, id uuid.UUID) { c.ID = id },
}

// --- file_references --------------------------------------------------------

var fileReferenceMapping = mapping[*models.FileReference]{
	table:    "file_references",
	dataCols: []string{"district_code", "number", "year"},
	dataVals: func(f *models.FileReference) []any {
		return []any{f.DistrictCode, f.Number, f.Year}
	},
	scan: func(s scanner) (*models.FileReference, error) {
		var f models.FileReference
		auditDst, commitAudit := auditTargets(&f.Audit)
		targets := append([]any{&f.ID, &f.DistrictCode, &f.Number, &f.Year}, auditDst...)
		if err := s.Scan(targets...); err != nil {
			return nil, err
		}
		commitAudit()
		return &f, nil
	},
	id:    func(f *models.FileReference) uuid.UUID { return f.ID },
	setID: func(f *models.FileReference, id uuid.UUID) { f.ID = id },
}

// --- personnel --------------------------------------------------------------

var personnelMapping = mapping[*models.Personnel]{
	table: "personnel",
	dataCols: []string{
		"salutation", "first_name", "last_name",
		"employee_number", "department", "room", "phone", "fax", "email",
		"signature_code", "signature_text", "job_title",
		"is_admin", "can_administrate", "can_manage_service_groups",
		"can_manage_priorities_sla", "can_manage_customers",
		"active",
	},
	dataVals: func(p *models.Personnel) []any {
		return []any{
			nullString(p.Salutation), p.FirstName, p.LastName,
			nullString(p.EmployeeNumber), nullString(p.Department), nullString(p.Room),
			nullString(p.Phone), nullString(p.Fax), nullString(p.Email),
			nullString(p.SignatureCode), nullString(p.SignatureText), nullString(p.JobTitle),
			p.IsAdmin, p.CanAdministrate, p.CanManageServiceGroups,
			p.CanManagePrioritiesSLA, p.CanManageCustomers,
			p.Active,
		}
	},
	scan:  scanPersonnel,
	id:    func(p *models.Personnel) uuid.UUID { return p.ID },
	setID: func(p *models.Personnel, id uuid.UUID) { p.ID = id },
}

func scanPersonnel(s scanner) (*models.Personnel, error) {
	var (
		p models.Personnel

		salutation, employeeNumber, department, room sql.NullString
		phone, fax, email                            sql.NullString
		signatureCode, signatureText, jobTitle       sql.NullString
	)
	auditDst, commitAudit := auditTargets(&p.Audit)
	targets := []any{
		&p.ID,
		&salutation, &p.FirstName, &p.LastName,
		&employeeNumber, &department, &room, &phone, &fax, &email,
		&signatureCode, &signatureText, &jobTitle,
		&p.IsAdmin, &p.CanAdministrate, &p.CanManageServiceGroups,
		&p.CanManagePrioritiesSLA, &p.CanManageCustomers,
		&p.Active,
	}
	targets = append(targets, auditDst...)
	if err := s.Scan(targets...); err != nil {
		return nil, err
	}
	commitAudit()
	p.Salutation = salutation.String
	p.EmployeeNumber = employeeNumber.String
	p.Department = department.String
	p.Room = room.String
	p.Phone = phone.String
	p.Fax = fax.String
	p.Email = email.String
	p.SignatureCode = signatureCode.String
	p.SignatureText = signatureText.String
	p.JobTitle = jobTitle.String
	return &p, nil
}
