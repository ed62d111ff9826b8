package migration

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"kgv/internal/records/models"
)

// Transforms from the raw legacy rows to the typed target entities. Legacy
// surrogate GUIDs are carried over as the new primary keys so foreign keys
// between the staged tables survive without lookup passes.

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
var postalCodePattern = regexp.MustCompile(`^[0-9]{5}$`)
var phoneStrip = regexp.MustCompile(`[^+0-9\-\s()/]`)

// legacy datetime and date layouts, tried in order.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04:05",
	"2006-01-02",
	"02.01.2006",
}

func transformDistrict(r rawDistrict) (*models.District, error) {
	id, err := parseLegacyID(r.ID)
	if err != nil {
		return nil, fmt.Errorf("district %q: %w", r.Name.String, err)
	}
	name := strings.TrimSpace(r.Name.String)
	if name == "" {
		return nil, fmt.Errorf("district %s: missing name", id)
	}
	return &models.District{ID: id, Code: name, Name: name}, nil
}

func transformCadastralDistrict(r rawCadastralDistrict) (*models.CadastralDistrict, error) {
	id, err := parseLegacyID(r.ID)
	if err != nil {
		return nil, fmt.Errorf("cadastral district %q: %w", r.Code.String, err)
	}
	districtID, err := parseLegacyID(r.DistrictID)
	if err != nil {
		return nil, fmt.Errorf("cadastral district %s: district ref: %w", id, err)
	}
	code := strings.TrimSpace(r.Code.String)
	if code == "" {
		return nil, fmt.Errorf("cadastral district %s: missing code", id)
	}
	return &models.CadastralDistrict{
		ID:         id,
		DistrictID: districtID,
		Code:       code,
		Name:       strings.TrimSpace(r.Name.String),
	}, nil
}

func transformFileReference(r rawFileReference) (*models.FileReference, error) {
	id, err := parseLegacyID(r.ID)
	if err != nil {
		return nil, fmt.Errorf("file reference %q-%q: %w", r.District.String, r.Number.String, err)
	}
	district := strings.TrimSpace(r.District.String)
	if district == "" {
		return nil, fmt.Errorf("file reference %s: missing district", id)
	}
	number, err := strconv.Atoi(strings.TrimSpace(r.Number.String))
	if err != nil {
		return nil, fmt.Errorf("file reference %s: bad number %q", id, r.Number.String)
	}
	year, err := strconv.Atoi(strings.TrimSpace(r.Year.String))
	if err != nil {
		return nil, fmt.Errorf("file reference %s: bad year %q", id, r.Year.String)
	}
	return &models.FileReference{ID: id, DistrictCode: district, Number: number, Year: year}, nil
}

func transformPersonnel(r rawPersonnel) (*models.Personnel, error) {
	id, err := parseLegacyID(r.ID)
	if err != nil {
		return nil, fmt.Errorf("personnel %q: %w", r.LastName.String, err)
	}
	return &models.Personnel{
		ID:             id,
		Salutation:     strings.TrimSpace(r.Salutation.String),
		FirstName:      fallback(strings.TrimSpace(r.FirstName.String), "Unknown"),
		LastName:       fallback(strings.TrimSpace(r.LastName.String), "Unknown"),
		EmployeeNumber: strings.TrimSpace(r.Number.String),
		Department:     strings.TrimSpace(r.Department.String),
		Room:           strings.TrimSpace(r.Room.String),
		Phone:          normalizePhone(r.Phone.String),
		Fax:            normalizePhone(r.Fax.String),
		Email:          normalizeEmail(r.Email.String),
		SignatureCode:  strings.TrimSpace(r.SignatureCode.String),
		SignatureText:  strings.TrimSpace(r.SignatureText.String),
		JobTitle:       strings.TrimSpace(r.JobTitle.String),

		IsAdmin:                legacyBool(r.IsAdmin.String),
		CanAdministrate:        legacyBool(r.CanAdmin.String),
		CanManageServiceGroups: legacyBool(r.CanGroups.String),
		CanManagePrioritiesSLA: legacyBool(r.CanPriorities.String),
		CanManageCustomers:     legacyBool(r.CanCustomers.String),

		Active: legacyBool(r.Active.String),
	}, nil
}

func transformApplication(r rawApplication, fallbackDate time.Time) (*models.Application, error) {
	id, err := parseLegacyID(r.ID)
	if err != nil {
		return nil, fmt.Errorf("application %q: %w", r.FileReference.String, err)
	}
	fileRef := strings.TrimSpace(r.FileReference.String)
	if fileRef == "" {
		return nil, fmt.Errorf("application %s: missing file reference", id)
	}
	lastName := strings.TrimSpace(r.LastName.String)
	if lastName == "" {
		return nil, fmt.Errorf("application %s (%s): missing last name", id, fileRef)
	}

	a := &models.Application{
		ID:            id,
		FileReference: fileRef,
		WaitingList32: strings.TrimSpace(r.WaitingList32.String),
		WaitingList33: strings.TrimSpace(r.WaitingList33.String),
		Applicant: models.PersonalInfo{
			Salutation: strings.TrimSpace(r.Salutation.String),
			Title:      strings.TrimSpace(r.Title.String),
			FirstName:  strings.TrimSpace(r.FirstName.String),
			LastName:   lastName,
			Birthday:   strings.TrimSpace(r.Birthday.String),
		},
		LetterSalutation: strings.TrimSpace(r.LetterSalutation.String),
		Contact: models.ContactInfo{
			Address: models.Address{
				Street:     strings.TrimSpace(r.Street.String),
				PostalCode: normalizePostalCode(r.PostalCode.String),
				City:       strings.TrimSpace(r.City.String),
			},
			Phone:         normalizePhone(r.Phone.String),
			MobilePhone:   normalizePhone(r.MobilePhone.String),
			MobilePhone2:  normalizePhone(r.MobilePhone2.String),
			BusinessPhone: normalizePhone(r.BusinessPhone.String),
			Email:         normalizeEmail(r.Email.String),
		},
		Wish:   strings.TrimSpace(r.Wish.String),
		Notes:  strings.TrimSpace(r.Notes.String),
		Active: legacyBool(r.Active.String),
	}

	if second := strings.TrimSpace(r.LastName2.String); second != "" {
		a.SecondApplicant = &models.PersonalInfo{
			Salutation: strings.TrimSpace(r.Salutation2.String),
			Title:      strings.TrimSpace(r.Title2.String),
			FirstName:  strings.TrimSpace(r.FirstName2.String),
			LastName:   second,
			Birthday:   strings.TrimSpace(r.Birthday2.String),
		}
	}

	if t := parseLegacyTime(r.ApplicationDate); t != nil {
		a.ApplicationDate = *t
	} else {
		a.ApplicationDate = fallbackDate
	}
	a.ConfirmationDate = parseLegacyTime(r.ConfirmationDate)
	a.CurrentOfferDate = parseLegacyTime(r.CurrentOffer)
	a.DeletionDate = parseLegacyTime(r.DeletionDate)
	return a, nil
}

func transformHistoryEntry(r rawHistoryEntry, fallbackDate time.Time) (*models.HistoryEntry, error) {
	id, err := parseLegacyID(r.ID)
	if err != nil {
		return nil, fmt.Errorf("history entry: %w", err)
	}
	applicationID, err := parseLegacyID(r.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("history entry %s: application ref: %w", id, err)
	}

	h := &models.HistoryEntry{
		ID:                id,
		ApplicationID:     applicationID,
		Kind:              models.HistoryKind(strings.TrimSpace(strings.ToLower(r.Kind.String))),
		CadastralDistrict: strings.TrimSpace(r.Gemarkung.String),
		Section:           strings.TrimSpace(r.Flur.String),
		Parcel:            strings.TrimSpace(r.Parcel.String),
		Size:              strings.TrimSpace(r.Size.String),
		CaseWorker:        strings.TrimSpace(r.CaseWorker.String),
		Note:              strings.TrimSpace(r.Note.String),
		Comment:           strings.TrimSpace(r.Comment.String),
	}
	if h.Kind == "" {
		h.Kind = models.HistoryNote
	}
	if t := parseLegacyTime(r.Date); t != nil {
		h.Date = *t
	} else {
		h.Date = fallbackDate
	}
	return h, nil
}

// parseLegacyID lowercases and parses a legacy GUID; the GUID becomes the
// target surrogate key.
func parseLegacyID(ns sql.NullString) (uuid.UUID, error) {
	s := strings.ToLower(strings.TrimSpace(ns.String))
	if s == "" {
		return uuid.Nil, fmt.Errorf("missing legacy id")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad legacy id %q: %w", s, err)
	}
	return id, nil
}

// legacyBool normalizes the legacy single-character flags: 'J' (ja), 'Y',
// '1' and the spelled-out forms count as true.
func legacyBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1", "J", "Y", "TRUE", "YES", "JA":
		return true
	default:
		return false
	}
}

func parseLegacyTime(ns sql.NullString) *time.Time {
	s := strings.TrimSpace(ns.String)
	if s == "" {
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func normalizeEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !emailPattern.MatchString(s) {
		return ""
	}
	return s
}

func normalizePostalCode(s string) string {
	s = strings.TrimSpace(s)
	if !postalCodePattern.MatchString(s) {
		return ""
	}
	return s
}

func normalizePhone(s string) string {
	s = strings.TrimSpace(phoneStrip.ReplaceAllString(s, ""))
	if len(s) < 3 || len(s) > 50 {
		return ""
	}
	return s
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
