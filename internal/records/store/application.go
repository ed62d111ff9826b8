package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"kgv/internal/records/models"
)

// ApplicationRepository persists garden-plot applications. The history
// collection is part of the aggregate: every read loads it eagerly unless a
// Query explicitly opts out via WithHistory.
type ApplicationRepository struct {
	repo[*models.Application]
}

// GetByID loads one application with its history attached.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	a, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, []*models.Application{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// Query runs the generic query and eagerly attaches history unless the
// options opt out.
func (r *ApplicationRepository) Query(ctx context.Context, q Query) ([]*models.Application, error) {
	apps, err := r.repo.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if q.WithHistory == nil || *q.WithHistory {
		if err := r.loadHistory(ctx, apps); err != nil {
			return nil, err
		}
	}
	return apps, nil
}

// GetAll returns every non-deleted application with history attached.
func (r *ApplicationRepository) GetAll(ctx context.Context) ([]*models.Application, error) {
	return r.Query(ctx, Query{})
}

// GetByFileReference resolves the unique case number. Tracked (write path).
func (r *ApplicationRepository) GetByFileReference(ctx context.Context, ref string) (*models.Application, error) {
	query := "SELECT " + r.m.selectColumns() + " FROM applications" +
		" WHERE file_reference = $1 AND deleted_at IS NULL"
	a, err := r.m.scan(r.uow.q().QueryRowContext(ctx, query, ref))
	if err != nil {
		return nil, fmt.Errorf("get application by file reference: %w", translate(err))
	}
	r.track(a)
	if err := r.loadHistory(ctx, []*models.Application{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// GetActive lists active applications, newest application date first.
func (r *ApplicationRepository) GetActive(ctx context.Context) ([]*models.Application, error) {
	return r.Query(ctx, Query{
		Where:   []Cond{{SQL: "active"}},
		OrderBy: "application_date DESC",
	})
}

// GetByWaitingList lists applications whose file reference carries the given
// district prefix, oldest application date first (FIFO waiting list).
func (r *ApplicationRepository) GetByWaitingList(ctx context.Context, districtPrefix string) ([]*models.Application, error) {
	return r.Query(ctx, Query{
		Where:   []Cond{{SQL: "file_reference LIKE $?", Args: []any{districtPrefix + "-%"}}},
		OrderBy: "application_date ASC",
	})
}

// GetNextWaitingListNumber returns the next number for the district's waiting
// list: the last issued numeric value plus one, or 1 when none exists. A
// stored non-numeric value resets the sequence to 1; the legacy data contains
// such values and a hard failure here would block intake, so the anomaly is
// logged instead.
func (r *ApplicationRepository) GetNextWaitingListNumber(ctx context.Context, district string) (int, error) {
	col := waitingListColumn(district)
	query := "SELECT " + col + " FROM applications" +
		" WHERE file_reference LIKE $1 AND deleted_at IS NULL AND " + col + " IS NOT NULL" +
		" ORDER BY application_date DESC, created_at DESC LIMIT 1"

	var last string
	err := r.uow.q().QueryRowContext(ctx, query, district+"-%").Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get last waiting list number: %w", translate(err))
	}

	n, err := strconv.Atoi(strings.TrimSpace(last))
	if err != nil {
		r.uow.log.Warn("non-numeric waiting list number, restarting sequence",
			"district", district, "value", last)
		return 1, nil
	}
	return n + 1, nil
}

// Search finds applications by fuzzy match over the applicant name and the
// file reference, backed by the trigram index.
func (r *ApplicationRepository) Search(ctx context.Context, term string) ([]*models.Application, error) {
	if strings.TrimSpace(term) == "" {
		return nil, nil
	}
	return r.Query(ctx, Query{
		Where: []Cond{{
			SQL:  "(last_name || ' ' || first_name || ' ' || file_reference) ILIKE '%' || $? || '%'",
			Args: []any{term},
		}},
		OrderBy: "last_name, first_name",
	})
}

// waitingListColumn picks the stored column for the district's waiting list.
// The association runs two lists, kept in the legacy columns 32 and 33; every
// other district code falls back to list 32.
func waitingListColumn(district string) string {
	if district == "33" {
		return "waiting_list_number_33"
	}
	return "waiting_list_number_32"
}

// loadHistory attaches the history collections for the given applications in
// one round trip, ordered chronologically.
func (r *ApplicationRepository) loadHistory(ctx context.Context, apps []*models.Application) error {
	if len(apps) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Application, len(apps))
	placeholders := make([]string, 0, len(apps))
	args := make([]any, 0, len(apps))
	for i, a := range apps {
		a.History = nil
		byID[a.ID] = a
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, a.ID)
	}

	query := "SELECT " + historyMapping.selectColumns() + " FROM application_history" +
		" WHERE application_id IN (" + strings.Join(placeholders, ", ") + ")" +
		" AND deleted_at IS NULL ORDER BY entry_date, created_at"
	rows, err := r.uow.q().QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load application history: %w", translate(err))
	}
	defer rows.Close()

	for rows.Next() {
		h, err := historyMapping.scan(rows)
		if err != nil {
			return fmt.Errorf("scan application history: %w", err)
		}
		if a, ok := byID[h.ApplicationID]; ok {
			a.History = append(a.History, *h)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load application history: %w", translate(err))
	}
	return nil
}
