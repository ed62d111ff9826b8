package handler

import (
	"time"

	"github.com/google/uuid"

	"kgv/internal/records/models"
)

type applicationListItem struct {
	ID              uuid.UUID `json:"id"`
	FileReference   string    `json:"file_reference"`
	Name            string    `json:"name"`
	WaitingList32   string    `json:"waiting_list_32,omitempty"`
	WaitingList33   string    `json:"waiting_list_33,omitempty"`
	City            string    `json:"city,omitempty"`
	ApplicationDate time.Time `json:"application_date"`
	Active          bool      `json:"active"`
}

type personResponse struct {
	Salutation string `json:"salutation,omitempty"`
	Title      string `json:"title,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name"`
	Birthday   string `json:"birthday,omitempty"`
}

type historyResponse struct {
	Kind              string    `json:"kind"`
	Date              time.Time `json:"date"`
	CadastralDistrict string    `json:"cadastral_district,omitempty"`
	Section           string    `json:"section,omitempty"`
	Parcel            string    `json:"parcel,omitempty"`
	Size              string    `json:"size,omitempty"`
	CaseWorker        string    `json:"case_worker,omitempty"`
	Note              string    `json:"note,omitempty"`
	Comment           string    `json:"comment,omitempty"`
}

type applicationDetail struct {
	ID               uuid.UUID         `json:"id"`
	FileReference    string            `json:"file_reference"`
	WaitingList32    string            `json:"waiting_list_32,omitempty"`
	WaitingList33    string            `json:"waiting_list_33,omitempty"`
	Applicant        personResponse    `json:"applicant"`
	SecondApplicant  *personResponse   `json:"second_applicant,omitempty"`
	LetterSalutation string            `json:"letter_salutation,omitempty"`
	Street           string            `json:"street,omitempty"`
	PostalCode       string            `json:"postal_code,omitempty"`
	City             string            `json:"city,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	MobilePhone      string            `json:"mobile_phone,omitempty"`
	Email            string            `json:"email,omitempty"`
	Wish             string            `json:"wish,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	ApplicationDate  time.Time         `json:"application_date"`
	ConfirmationDate *time.Time        `json:"confirmation_date,omitempty"`
	CurrentOfferDate *time.Time        `json:"current_offer_date,omitempty"`
	Active           bool              `json:"active"`
	Version          int64             `json:"version"`
	History          []historyResponse `json:"history"`
}

type cadastralResponse struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

type districtResponse struct {
	Code               string              `json:"code"`
	Name               string              `json:"name"`
	CadastralDistricts []cadastralResponse `json:"cadastral_districts"`
}

func toApplicationList(apps []*models.Application) []applicationListItem {
	out := make([]applicationListItem, 0, len(apps))
	for _, a := range apps {
		out = append(out, applicationListItem{
			ID:              a.ID,
			FileReference:   a.FileReference,
			Name:            a.FullName(),
			WaitingList32:   a.WaitingList32,
			WaitingList33:   a.WaitingList33,
			City:            a.Contact.City,
			ApplicationDate: a.ApplicationDate,
			Active:          a.Active,
		})
	}
	return out
}

func toApplicationDetail(a *models.Application) applicationDetail {
	d := applicationDetail{
		ID:               a.ID,
		FileReference:    a.FileReference,
		WaitingList32:    a.WaitingList32,
		WaitingList33:    a.WaitingList33,
		Applicant:        toPerson(a.Applicant),
		LetterSalutation: a.LetterSalutation,
		Street:           a.Contact.Street,
		PostalCode:       a.Contact.PostalCode,
		City:             a.Contact.City,
		Phone:            a.Contact.Phone,
		MobilePhone:      a.Contact.MobilePhone,
		Email:            a.Contact.Email,
		Wish:             a.Wish,
		Notes:            a.Notes,
		ApplicationDate:  a.ApplicationDate,
		ConfirmationDate: a.ConfirmationDate,
		CurrentOfferDate: a.CurrentOfferDate,
		Active:           a.Active,
		Version:          a.Audit.Version,
		History:          make([]historyResponse, 0, len(a.History)),
	}
	if a.SecondApplicant != nil {
		p := toPerson(*a.SecondApplicant)
		d.SecondApplicant = &p
	}
	for _, h := range a.History {
		d.History = append(d.History, historyResponse{
			Kind:              string(h.Kind),
			Date:              h.Date,
			CadastralDistrict: h.CadastralDistrict,
			Section:           h.Section,
			Parcel:            h.Parcel,
			Size:              h.Size,
			CaseWorker:        h.CaseWorker,
			Note:              h.Note,
			Comment:           h.Comment,
		})
	}
	return d
}

func toPerson(p models.PersonalInfo) personResponse {
	return personResponse{
		Salutation: p.Salutation,
		Title:      p.Title,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Birthday:   p.Birthday,
	}
}

func toDistrictResponse(d *models.District) districtResponse {
	out := districtResponse{
		Code:               d.Code,
		Name:               d.Name,
		CadastralDistricts: make([]cadastralResponse, 0, len(d.CadastralDistricts)),
	}
	for _, c := range d.CadastralDistricts {
		out.CadastralDistricts = append(out.CadastralDistricts, cadastralResponse{Code: c.Code, Name: c.Name})
	}
	return out
}
