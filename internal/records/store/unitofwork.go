package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"kgv/internal/records/models"
	"kgv/pkg/platform/sentinel"
)

// change is one staged write, applied in call order at flush time.
type change struct {
	desc string
	exec func(ctx context.Context, q querier) (int64, error)
}

type trackKey struct {
	table string
	id    uuid.UUID
}

// trackedEntity holds the flattened column snapshot taken at read time.
// SaveChanges diffs it against the current values and stages an update for
// entities mutated in place.
type trackedEntity struct {
	snapshot []any
	current  func() []any
	stage    func()
}

func cloneVals(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		if t, ok := v.(*time.Time); ok && t != nil {
			c := *t
			out[i] = &c
			continue
		}
		out[i] = v
	}
	return out
}

// UnitOfWork aggregates the repositories behind one transaction boundary.
// Repositories are instantiated lazily and memoized; all of them share the
// unit's session. The underlying session is owned exclusively by one
// UnitOfWork instance for its lifetime.
type UnitOfWork struct {
	db    *sql.DB
	log   *slog.Logger
	actor string
	clock func() time.Time

	tx      *sql.Tx
	closed  bool
	pending []change
	tracked map[trackKey]*trackedEntity

	applications   *ApplicationRepository
	history        *HistoryRepository
	districts      *DistrictRepository
	cadastral      *CadastralDistrictRepository
	fileReferences *FileReferenceRepository
	personnel      *PersonnelRepository
}

// Option configures a UnitOfWork.
type Option func(*UnitOfWork)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(u *UnitOfWork) {
		if clock != nil {
			u.clock = clock
		}
	}
}

// NewUnitOfWork binds a unit of work to the shared pool. The actor is written
// into the created_by/updated_by audit columns of every staged write.
func NewUnitOfWork(db *sql.DB, log *slog.Logger, actor string, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		db:      db,
		log:     log,
		actor:   actor,
		clock:   func() time.Time { return time.Now().UTC() },
		tracked: make(map[trackKey]*trackedEntity),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	return u
}

// q returns the active session: the explicit transaction when one is open,
// otherwise the pool.
func (u *UnitOfWork) q() querier {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWork) stage(c change) {
	u.pending = append(u.pending, c)
}

func (u *UnitOfWork) untrack(key trackKey) {
	delete(u.tracked, key)
}

// Applications returns the application repository, constructing it on first
// access.
func (u *UnitOfWork) Applications() *ApplicationRepository {
	if u.applications == nil {
		u.applications = &ApplicationRepository{repo[*models.Application]{uow: u, m: &applicationMapping}}
	}
	return u.applications
}

// History returns the history-entry repository.
func (u *UnitOfWork) History() *HistoryRepository {
	if u.history == nil {
		u.history = &HistoryRepository{repo[*models.HistoryEntry]{uow: u, m: &historyMapping}}
	}
	return u.history
}

// Districts returns the district repository.
func (u *UnitOfWork) Districts() *DistrictRepository {
	if u.districts == nil {
		u.districts = &DistrictRepository{repo[*models.District]{uow: u, m: &districtMapping}}
	}
	return u.districts
}

// CadastralDistricts returns the cadastral-district repository.
func (u *UnitOfWork) CadastralDistricts() *CadastralDistrictRepository {
	if u.cadastral == nil {
		u.cadastral = &CadastralDistrictRepository{repo[*models.CadastralDistrict]{uow: u, m: &cadastralMapping}}
	}
	return u.cadastral
}

// FileReferences returns the file-reference repository.
func (u *UnitOfWork) FileReferences() *FileReferenceRepository {
	if u.fileReferences == nil {
		u.fileReferences = &FileReferenceRepository{repo[*models.FileReference]{uow: u, m: &fileReferenceMapping}}
	}
	return u.fileReferences
}

// Personnel returns the personnel repository.
func (u *UnitOfWork) Personnel() *PersonnelRepository {
	if u.personnel == nil {
		u.personnel = &PersonnelRepository{repo[*models.Personnel]{uow: u, m: &personnelMapping}}
	}
	return u.personnel
}

// SaveChanges flushes all staged writes in call order as one atomic
// operation and returns the number of affected rows. Inside an explicit
// transaction the writes join it and durability waits for
// CommitTransaction; otherwise SaveChanges brackets its own transaction.
// On failure nothing of this flush remains applied.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int, error) {
	if u.closed {
		return 0, sentinel.ErrClosed
	}

	// Pick up in-place mutations of tracked entities.
	var dirty []*trackedEntity
	for _, t := range u.tracked {
		if !reflect.DeepEqual(t.snapshot, t.current()) {
			dirty = append(dirty, t)
		}
	}
	for _, t := range dirty {
		t.stage()
	}

	if len(u.pending) == 0 {
		return 0, nil
	}
	changes := u.pending

	apply := func(q querier) (int64, error) {
		var total int64
		for _, c := range changes {
			n, err := c.exec(ctx, q)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", c.desc, translate(err))
			}
			total += n
		}
		return total, nil
	}

	if u.tx != nil {
		n, err := apply(u.tx)
		if err != nil {
			return 0, err
		}
		u.pending = nil
		return int(n), nil
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save: %w", err)
	}
	n, err := apply(tx)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("commit save: %w", translate(err))
	}
	u.pending = nil
	return int(n), nil
}

// BeginTransaction opens the explicit transaction for multi-step workflows.
// Calling it while one is active is a programmer error.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	if u.closed {
		return sentinel.ErrClosed
	}
	if u.tx != nil {
		return sentinel.ErrTransactionActive
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	u.tx = tx
	return nil
}

// CommitTransaction commits the explicit transaction. A failed commit rolls
// back before returning the error.
func (u *UnitOfWork) CommitTransaction() error {
	if u.tx == nil {
		return sentinel.ErrNoTransaction
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("commit transaction: %w", translate(err))
	}
	return nil
}

// RollbackTransaction aborts the explicit transaction. A rollback without an
// active transaction is a no-op, not an error.
func (u *UnitOfWork) RollbackTransaction() error {
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	u.pending = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// Close releases the session. Any in-flight transaction is aborted and all
// staged changes are discarded. The shared pool stays open; it belongs to
// the process, not to this unit.
func (u *UnitOfWork) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	u.pending = nil
	u.tracked = nil
	if u.tx != nil {
		tx := u.tx
		u.tx = nil
		if err := tx.Rollback(); err != nil {
			return fmt.Errorf("abort transaction on close: %w", err)
		}
	}
	return nil
}
