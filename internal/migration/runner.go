package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kgv/internal/records/models"
	"kgv/internal/records/store"
)

// Summary is the outcome of one migration run.
type Summary struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Counts     map[string]int `json:"counts"`
}

// Runner drives the one-shot migration. All steps share one explicit
// transaction on the unit of work: either every legacy row lands in the new
// schema or none does.
type Runner struct {
	uow        *store.UnitOfWork
	src        *Source
	log        *slog.Logger
	metrics    *Metrics
	checkpoint *Checkpoint
	batchSize  int
	clock      func() time.Time
}

// NewRunner assembles the migration. metrics and checkpoint may be nil.
func NewRunner(uow *store.UnitOfWork, src *Source, log *slog.Logger, metrics *Metrics, checkpoint *Checkpoint, batchSize int) *Runner {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Runner{
		uow:        uow,
		src:        src,
		log:        log,
		metrics:    metrics,
		checkpoint: checkpoint,
		batchSize:  batchSize,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// Run executes the migration in foreign-key dependency order. Any failure
// rolls back the whole transaction; the tool never leaves partial data
// behind.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		StartedAt: r.clock(),
		Counts:    make(map[string]int),
	}

	if err := r.uow.BeginTransaction(ctx); err != nil {
		r.metrics.recordRun("failed")
		return nil, fmt.Errorf("begin migration transaction: %w", err)
	}

	steps := []struct {
		table string
		run   func(context.Context) (int, error)
	}{
		{"districts", r.migrateDistricts},
		{"cadastral_districts", r.migrateCadastralDistricts},
		{"file_references", r.migrateFileReferences},
		{"personnel", r.migratePersonnel},
		{"applications", r.migrateApplications},
		{"application_history", r.migrateHistory},
	}

	for _, step := range steps {
		start := r.clock()
		n, err := step.run(ctx)
		if err != nil {
			_ = r.uow.RollbackTransaction()
			r.metrics.recordFailure(step.table)
			r.metrics.recordRun("failed")
			r.log.Error("migration step failed, rolled back",
				"step", step.table, "error", err)
			return nil, fmt.Errorf("migrate %s: %w", step.table, err)
		}
		summary.Counts[step.table] = n
		r.metrics.observeStep(step.table, n, start)
		r.log.Info("migration step complete", "step", step.table, "records", n)
	}

	if err := r.uow.CommitTransaction(); err != nil {
		r.metrics.recordRun("failed")
		return nil, fmt.Errorf("commit migration: %w", err)
	}
	summary.FinishedAt = r.clock()
	r.metrics.recordRun("success")

	if err := r.checkpoint.Save(ctx, summary); err != nil {
		// The data is committed; a lost checkpoint is only an operator
		// inconvenience.
		r.log.Warn("migration checkpoint not saved", "error", err)
	}
	return summary, nil
}

func (r *Runner) migrateDistricts(ctx context.Context) (int, error) {
	raw, err := r.src.Districts(ctx)
	if err != nil {
		return 0, err
	}
	batch := make([]*models.District, 0, len(raw))
	for _, row := range raw {
		d, err := transformDistrict(row)
		if err != nil {
			return 0, err
		}
		batch = append(batch, d)
	}
	return r.flush(ctx, len(batch), func(lo, hi int) {
		r.uow.Districts().AddMany(batch[lo:hi])
	})
}

func (r *Runner) migrateCadastralDistricts(ctx context.Context) (int, error) {
	raw, err := r.src.CadastralDistricts(ctx)
	if err != nil {
		return 0, err
	}
	batch := make([]*models.CadastralDistrict, 0, len(raw))
	for _, row := range raw {
		c, err := transformCadastralDistrict(row)
		if err != nil {
			return 0, err
		}
		batch = append(batch, c)
	}
	return r.flush(ctx, len(batch), func(lo, hi int) {
		r.uow.CadastralDistricts().AddMany(batch[lo:hi])
	})
}

func (r *Runner) migrateFileReferences(ctx context.Context) (int, error) {
	raw, err := r.src.FileReferences(ctx)
	if err != nil {
		return 0, err
	}
	batch := make([]*models.FileReference, 0, len(raw))
	for _, row := range raw {
		f, err := transformFileReference(row)
		if err != nil {
			return 0, err
		}
		batch = append(batch, f)
	}
	return r.flush(ctx, len(batch), func(lo, hi int) {
		r.uow.FileReferences().AddMany(batch[lo:hi])
	})
}

func (r *Runner) migratePersonnel(ctx context.Context) (int, error) {
	raw, err := r.src.Personnel(ctx)
	if err != nil {
		return 0, err
	}
	batch := make([]*models.Personnel, 0, len(raw))
	for _, row := range raw {
		p, err := transformPersonnel(row)
		if err != nil {
			return 0, err
		}
		batch = append(batch, p)
	}
	return r.flush(ctx, len(batch), func(lo, hi int) {
		r.uow.Personnel().AddMany(batch[lo:hi])
	})
}

func (r *Runner) migrateApplications(ctx context.Context) (int, error) {
	raw, err := r.src.Applications(ctx)
	if err != nil {
		return 0, err
	}
	fallbackDate := r.clock()
	batch := make([]*models.Application, 0, len(raw))
	for _, row := range raw {
		a, err := transformApplication(row, fallbackDate)
		if err != nil {
			return 0, err
		}
		batch = append(batch, a)
	}
	return r.flush(ctx, len(batch), func(lo, hi int) {
		r.uow.Applications().AddMany(batch[lo:hi])
	})
}

func (r *Runner) migrateHistory(ctx context.Context) (int, error) {
	raw, err := r.src.HistoryEntries(ctx)
	if err != nil {
		return 0, err
	}
	fallbackDate := r.clock()
	batch := make([]*models.HistoryEntry, 0, len(raw))
	for _, row := range raw {
		h, err := transformHistoryEntry(row, fallbackDate)
		if err != nil {
			return 0, err
		}
		batch = append(batch, h)
	}
	return r.flush(ctx, len(batch), func(lo, hi int) {
		r.uow.History().AddMany(batch[lo:hi])
	})
}

// flush stages the transformed batch in bulk chunks and saves each chunk
// inside the shared transaction.
func (r *Runner) flush(ctx context.Context, total int, stage func(lo, hi int)) (int, error) {
	written := 0
	for lo := 0; lo < total; lo += r.batchSize {
		hi := min(lo+r.batchSize, total)
		stage(lo, hi)
		n, err := r.uow.SaveChanges(ctx)
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}
