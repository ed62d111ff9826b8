//go:build integration

package migration_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"kgv/internal/migration"
	"kgv/internal/platform/logger"
	"kgv/internal/records/store"
	"kgv/pkg/testutil/containers"
)

type MigrationSuite struct {
	suite.Suite
	pc  *containers.PostgresContainer
	ctx context.Context

	districtID    string
	cadastralID   string
	applicationID string
	historyID     string
}

func TestMigrationSuite(t *testing.T) {
	suite.Run(t, new(MigrationSuite))
}

func (s *MigrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pc = containers.NewPostgresContainer(s.T())
}

func (s *MigrationSuite) SetupTest() {
	// The cut-over targets an empty schema: clear the seed rows too.
	s.Require().NoError(s.pc.TruncateTables(s.ctx,
		"districts", "file_references", "personnel", "applications"))
	for _, table := range []string{
		"raw_bezirk", "raw_katasterbezirk", "raw_aktenzeichen",
		"raw_personen", "raw_antrag", "raw_verlauf",
	} {
		_, err := s.pc.DB.ExecContext(s.ctx, "TRUNCATE TABLE migration_staging."+table)
		s.Require().NoError(err)
	}

	s.districtID = uuid.NewString()
	s.cadastralID = uuid.NewString()
	s.applicationID = uuid.NewString()
	s.historyID = uuid.NewString()
}

func (s *MigrationSuite) exec(query string, args ...any) {
	_, err := s.pc.DB.ExecContext(s.ctx, query, args...)
	s.Require().NoError(err)
}

func (s *MigrationSuite) seedStaging() {
	s.exec(`INSERT INTO migration_staging.raw_bezirk (bez_id, bez_name) VALUES ($1, $2)`,
		s.districtID, "ALTNORD")
	s.exec(`INSERT INTO migration_staging.raw_katasterbezirk
		(kat_id, kat_bez_id, kat_katasterbezirk, kat_katasterbezirkname)
		VALUES ($1, $2, $3, $4)`,
		s.cadastralID, s.districtID, "N-01", "Niehl")
	s.exec(`INSERT INTO migration_staging.raw_aktenzeichen (az_id, az_bezirk, az_nummer, az_jahr)
		VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), "ALTNORD", "1", "2004")
	s.exec(`INSERT INTO migration_staging.raw_personen
		(pers_id, pers_vorname, pers_nachname, pers_email, pers_istadmin, pers_aktiv)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), "Petra", "Müller", "P.Mueller@Example.org", "J", "J")
	s.exec(`INSERT INTO migration_staging.raw_antrag
		(an_id, an_aktenzeichen, an_wartelistennr32, an_anrede, an_vorname, an_nachname,
		 an_nachname2, an_vorname2, an_strasse, an_plz, an_ort, an_email,
		 an_bewerbungsdatum, an_aktiv)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.applicationID, "ALTNORD-1-2004", "5", "Frau", "Anna", "Schmidt",
		"Schmidt", "Bernd", "Gartenweg 1", "50667", "Köln", "Anna@Example.org",
		"2004-05-12", "J")
	s.exec(`INSERT INTO migration_staging.raw_verlauf
		(verl_id, verl_an_id, verl_art, verl_datum, verl_parzelle)
		VALUES ($1, $2, $3, $4, $5)`,
		s.historyID, s.applicationID, "received", "12.05.2004", "112")
}

func (s *MigrationSuite) newRunner(checkpoint *migration.Checkpoint) *migration.Runner {
	log := logger.New()
	return migration.NewRunner(
		store.NewUnitOfWork(s.pc.DB, log, "migration"),
		migration.NewSource(s.pc.DB),
		log,
		migration.NewMetrics(prometheus.NewRegistry()),
		checkpoint,
		2,
	)
}

func (s *MigrationSuite) TestRunMigratesEverything() {
	s.seedStaging()

	summary, err := s.newRunner(nil).Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, summary.Counts["districts"])
	s.Equal(1, summary.Counts["cadastral_districts"])
	s.Equal(1, summary.Counts["file_references"])
	s.Equal(1, summary.Counts["personnel"])
	s.Equal(1, summary.Counts["applications"])
	s.Equal(1, summary.Counts["application_history"])

	uow := store.NewUnitOfWork(s.pc.DB, logger.New(), "test")
	defer uow.Close()

	a, err := uow.Applications().GetByFileReference(s.ctx, "ALTNORD-1-2004")
	s.Require().NoError(err)
	s.Equal(s.applicationID, a.ID.String())
	s.Equal("Schmidt", a.Applicant.LastName)
	s.Require().NotNil(a.SecondApplicant)
	s.Equal("Bernd", a.SecondApplicant.FirstName)
	s.Equal("anna@example.org", a.Contact.Email)
	s.Equal("5", a.WaitingList32)
	s.True(a.Active)
	s.Equal("migration", a.CreatedBy)
	s.Require().Len(a.History, 1)
	s.Equal("112", a.History[0].Parcel)

	d, err := uow.Districts().GetByCode(s.ctx, "ALTNORD")
	s.Require().NoError(err)
	s.Equal(s.districtID, d.ID.String())
	s.Require().Len(d.CadastralDistricts, 1)
	s.Equal("N-01", d.CadastralDistricts[0].Code)

	staff, err := uow.Personnel().GetActive(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(staff, 1)
	s.True(staff[0].IsAdmin)
	s.Equal("p.mueller@example.org", staff[0].Email)
}

func (s *MigrationSuite) TestRunRollsBackOnMalformedRow() {
	s.seedStaging()
	// One application without a last name poisons the run.
	s.exec(`INSERT INTO migration_staging.raw_antrag (an_id, an_aktenzeichen, an_nachname)
		VALUES ($1, $2, $3)`,
		uuid.NewString(), "ALTNORD-2-2004", "  ")

	_, err := s.newRunner(nil).Run(s.ctx)
	s.Require().Error(err)
	s.Contains(err.Error(), "missing last name")

	// Nothing from any step survives, earlier steps included.
	uow := store.NewUnitOfWork(s.pc.DB, logger.New(), "test")
	defer uow.Close()
	districts, err := uow.Districts().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(districts)
	apps, err := uow.Applications().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(apps)
}

func (s *MigrationSuite) TestCheckpointWrittenAfterCommit() {
	rc := containers.NewRedisContainer(s.T())
	s.seedStaging()
	checkpoint := migration.NewCheckpoint(rc.Client)

	summary, err := s.newRunner(checkpoint).Run(s.ctx)
	s.Require().NoError(err)

	loaded, err := checkpoint.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(loaded)
	s.Equal(summary.Counts, loaded.Counts)
}
