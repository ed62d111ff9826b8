// Package migration implements the one-time ETL from the legacy KGV system
// into the new schema. The extract side lands the raw SQL Server rows in the
// migration_staging schema; this package reads them, applies the transforms,
// and loads the target tables through the unit of work in one transaction.
package migration

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // legacy staging-source driver
)

// OpenSource connects to the database holding the staging schema.
func OpenSource(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open legacy source: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping legacy source: %w", err)
	}
	return db, nil
}

// Source reads the staged legacy rows. It is read-only; the staging schema is
// assumed stable for the duration of the migration.
type Source struct {
	db *sql.DB
}

func NewSource(db *sql.DB) *Source {
	return &Source{db: db}
}

// Raw rows mirror the legacy columns one to one; everything is nullable text
// because the 2004-era source enforced very little.

type rawDistrict struct {
	ID   sql.NullString
	Name sql.NullString
}

type rawCadastralDistrict struct {
	ID         sql.NullString
	DistrictID sql.NullString
	Code       sql.NullString
	Name       sql.NullString
}

type rawFileReference struct {
	ID       sql.NullString
	District sql.NullString
	Number   sql.NullString
	Year     sql.NullString
}

type rawPersonnel struct {
	ID            sql.NullString
	Salutation    sql.NullString
	FirstName     sql.NullString
	LastName      sql.NullString
	Number        sql.NullString
	Department    sql.NullString
	Room          sql.NullString
	Phone         sql.NullString
	Fax           sql.NullString
	Email         sql.NullString
	SignatureCode sql.NullString
	SignatureText sql.NullString
	JobTitle      sql.NullString
	IsAdmin       sql.NullString
	CanAdmin      sql.NullString
	CanGroups     sql.NullString
	CanPriorities sql.NullString
	CanCustomers  sql.NullString
	Active        sql.NullString
}

type rawApplication struct {
	ID               sql.NullString
	FileReference    sql.NullString
	WaitingList32    sql.NullString
	WaitingList33    sql.NullString
	Salutation       sql.NullString
	Title            sql.NullString
	FirstName        sql.NullString
	LastName         sql.NullString
	Birthday         sql.NullString
	Salutation2      sql.NullString
	Title2           sql.NullString
	FirstName2       sql.NullString
	LastName2        sql.NullString
	Birthday2        sql.NullString
	LetterSalutation sql.NullString
	Street           sql.NullString
	PostalCode       sql.NullString
	City             sql.NullString
	Phone            sql.NullString
	MobilePhone      sql.NullString
	MobilePhone2     sql.NullString
	BusinessPhone    sql.NullString
	Email            sql.NullString
	ApplicationDate  sql.NullString
	ConfirmationDate sql.NullString
	CurrentOffer     sql.NullString
	DeletionDate     sql.NullString
	Wish             sql.NullString
	Notes            sql.NullString
	Active           sql.NullString
}

type rawHistoryEntry struct {
	ID            sql.NullString
	ApplicationID sql.NullString
	Kind          sql.NullString
	Date          sql.NullString
	Gemarkung     sql.NullString
	Flur          sql.NullString
	Parcel        sql.NullString
	Size          sql.NullString
	CaseWorker    sql.NullString
	Note          sql.NullString
	Comment       sql.NullString
}

func (s *Source) Districts(ctx context.Context) ([]rawDistrict, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bez_id, bez_name
		FROM migration_staging.raw_bezirk
		ORDER BY migration_timestamp`)
	if err != nil {
		return nil, fmt.Errorf("read raw_bezirk: %w", err)
	}
	defer rows.Close()

	var out []rawDistrict
	for rows.Next() {
		var r rawDistrict
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan raw_bezirk: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Source) CadastralDistricts(ctx context.Context) ([]rawCadastralDistrict, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kat_id, kat_bez_id, kat_katasterbezirk, kat_katasterbezirkname
		FROM migration_staging.raw_katasterbezirk
		ORDER BY migration_timestamp`)
	if err != nil {
		return nil, fmt.Errorf("read raw_katasterbezirk: %w", err)
	}
	defer rows.Close()

	var out []rawCadastralDistrict
	for rows.Next() {
		var r rawCadastralDistrict
		if err := rows.Scan(&r.ID, &r.DistrictID, &r.Code, &r.Name); err != nil {
			return nil, fmt.Errorf("scan raw_katasterbezirk: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Source) FileReferences(ctx context.Context) ([]rawFileReference, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT az_id, az_bezirk, az_nummer, az_jahr
		FROM migration_staging.raw_aktenzeichen
		ORDER BY migration_timestamp`)
	if err != nil {
		return nil, fmt.Errorf("read raw_aktenzeichen: %w", err)
	}
	defer rows.Close()

	var out []rawFileReference
	for rows.Next() {
		var r rawFileReference
		if err := rows.Scan(&r.ID, &r.District, &r.Number, &r.Year); err != nil {
			return nil, fmt.Errorf("scan raw_aktenzeichen: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Source) Personnel(ctx context.Context) ([]rawPersonnel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pers_id, pers_anrede, pers_vorname, pers_nachname, pers_nummer,
		       pers_organisationseinheit, pers_zimmer, pers_telefon, pers_fax,
		       pers_email, pers_diktatzeichen, pers_unterschrift,
		       pers_dienstbezeichnung, pers_istadmin, pers_darfadministration,
		       pers_darfleistungsgruppen, pers_darfprioundsla, pers_darfkunden,
		       pers_aktiv
		FROM migration_staging.raw_personen
		ORDER BY migration_timestamp`)
	if err != nil {
		return nil, fmt.Errorf("read raw_personen: %w", err)
	}
	defer rows.Close()

	var out []rawPersonnel
	for rows.Next() {
		var r rawPersonnel
		if err := rows.Scan(&r.ID, &r.Salutation, &r.FirstName, &r.LastName, &r.Number,
			&r.Department, &r.Room, &r.Phone, &r.Fax,
			&r.Email, &r.SignatureCode, &r.SignatureText,
			&r.JobTitle, &r.IsAdmin, &r.CanAdmin,
			&r.CanGroups, &r.CanPriorities, &r.CanCustomers,
			&r.Active); err != nil {
			return nil, fmt.Errorf("scan raw_personen: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Source) Applications(ctx context.Context) ([]rawApplication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT an_id, an_aktenzeichen, an_wartelistennr32, an_wartelistennr33,
		       an_anrede, an_titel, an_vorname, an_nachname, an_geburtstag,
		       an_anrede2, an_titel2, an_vorname2, an_nachname2, an_geburtstag2,
		       an_briefanrede, an_strasse, an_plz, an_ort,
		       an_telefon, an_mobiltelefon, an_mobiltelefon2, an_geschtelefon,
		       an_email, an_bewerbungsdatum, an_bestaetigungsdatum,
		       an_aktuellesangebot, an_loeschdatum, an_wunsch, an_vermerk, an_aktiv
		FROM migration_staging.raw_antrag
		ORDER BY migration_timestamp`)
	if err != nil {
		return nil, fmt.Errorf("read raw_antrag: %w", err)
	}
	defer rows.Close()

	var out []rawApplication
	for rows.Next() {
		var r rawApplication
		if err := rows.Scan(&r.ID, &r.FileReference, &r.WaitingList32, &r.WaitingList33,
			&r.Salutation, &r.Title, &r.FirstName, &r.LastName, &r.Birthday,
			&r.Salutation2, &r.Title2, &r.FirstName2, &r.LastName2, &r.Birthday2,
			&r.LetterSalutation, &r.Street, &r.PostalCode, &r.City,
			&r.Phone, &r.MobilePhone, &r.MobilePhone2, &r.BusinessPhone,
			&r.Email, &r.ApplicationDate, &r.ConfirmationDate,
			&r.CurrentOffer, &r.DeletionDate, &r.Wish, &r.Notes, &r.Active); err != nil {
			return nil, fmt.Errorf("scan raw_antrag: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Source) HistoryEntries(ctx context.Context) ([]rawHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT verl_id, verl_an_id, verl_art, verl_datum, verl_gemarkung,
		       verl_flur, verl_parzelle, verl_groesse, verl_sachbearbeiter,
		       verl_hinweis, verl_kommentar
		FROM migration_staging.raw_verlauf
		ORDER BY migration_timestamp`)
	if err != nil {
		return nil, fmt.Errorf("read raw_verlauf: %w", err)
	}
	defer rows.Close()

	var out []rawHistoryEntry
	for rows.Next() {
		var r rawHistoryEntry
		if err := rows.Scan(&r.ID, &r.ApplicationID, &r.Kind, &r.Date, &r.Gemarkung,
			&r.Flur, &r.Parcel, &r.Size, &r.CaseWorker,
			&r.Note, &r.Comment); err != nil {
			return nil, fmt.Errorf("scan raw_verlauf: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
