package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"kgv/internal/records/models"
	"kgv/pkg/platform/sentinel"
)

// insertChunk bounds multi-row inserts so a bulk write never exceeds the
// placeholder limit of the wire protocol.
const insertChunk = 200

// repo is the generic repository over one mapped entity type. Reads run
// immediately against the owning unit of work's session; Add/Update/Delete
// only stage changes, which become durable at SaveChanges.
type repo[T models.Auditable] struct {
	uow *UnitOfWork
	m   *mapping[T]
}

// GetByID loads one entity. Soft-deleted and absent rows both surface as
// sentinel.ErrNotFound. The result is change-tracked (write path).
func (r *repo[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	query := "SELECT " + r.m.selectColumns() + " FROM " + r.m.table +
		" WHERE id = $1 AND deleted_at IS NULL"
	e, err := r.m.scan(r.uow.q().QueryRowContext(ctx, query, id))
	if err != nil {
		return zero, fmt.Errorf("get %s by id: %w", r.m.table, translate(err))
	}
	r.track(e)
	return e, nil
}

// GetAll returns every non-deleted row. Callers paginate upstream.
func (r *repo[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.Query(ctx, Query{})
}

// Query runs the composable query operation.
func (r *repo[T]) Query(ctx context.Context, q Query) ([]T, error) {
	where, args, _ := buildWhere(q.Where, 1)
	query := "SELECT " + r.m.selectColumns() + " FROM " + r.m.table + where
	if q.OrderBy != "" {
		query += " ORDER BY " + q.OrderBy
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := r.uow.q().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.m.table, translate(err))
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		e, err := r.m.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.m.table, err)
		}
		if q.Tracking {
			r.track(e)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", r.m.table, translate(err))
	}
	return out, nil
}

// Count returns the number of non-deleted rows matching the predicates.
func (r *repo[T]) Count(ctx context.Context, conds ...Cond) (int, error) {
	where, args, _ := buildWhere(conds, 1)
	var n int
	err := r.uow.q().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+r.m.table+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.m.table, translate(err))
	}
	return n, nil
}

// Add stages an insert and returns the entity with its surrogate key and
// audit block filled in. Durable only after SaveChanges.
func (r *repo[T]) Add(e T) T {
	r.prepareInsert(e)
	r.uow.stage(r.insertChange([]T{e}))
	return e
}

// AddMany stages one bulk insert for the whole batch, chunked to stay within
// protocol limits. Used by the data migration tool.
func (r *repo[T]) AddMany(batch []T) {
	if len(batch) == 0 {
		return
	}
	for _, e := range batch {
		r.prepareInsert(e)
	}
	for start := 0; start < len(batch); start += insertChunk {
		end := min(start+insertChunk, len(batch))
		r.uow.stage(r.insertChange(batch[start:end]))
	}
}

func (r *repo[T]) prepareInsert(e T) {
	if r.m.id(e) == uuid.Nil {
		r.m.setID(e, uuid.New())
	}
	e.AuditData().StampCreated(r.uow.clock(), r.uow.actor)
}

func (r *repo[T]) insertChange(batch []T) change {
	cols := r.m.insertColumns()
	return change{
		desc: "insert " + r.m.table,
		exec: func(ctx context.Context, q querier) (int64, error) {
			var (
				rowsSQL []string
				args    []any
			)
			for i, e := range batch {
				rowsSQL = append(rowsSQL, placeholderRow(i*len(cols)+1, len(cols)))
				args = append(args, r.m.insertVals(e)...)
			}
			query := "INSERT INTO " + r.m.table + " (" + strings.Join(cols, ", ") + ") VALUES " +
				strings.Join(rowsSQL, ", ")
			res, err := q.ExecContext(ctx, query, args...)
			if err != nil {
				return 0, err
			}
			return res.RowsAffected()
		},
	}
}

// Update stages an optimistic-concurrency-checked update. The version read
// from the store guards the write; a mismatch surfaces at flush time as
// sentinel.ErrConcurrencyConflict.
func (r *repo[T]) Update(e T) {
	expected := e.AuditData().Version
	e.AuditData().StampUpdated(r.uow.clock(), r.uow.actor)
	r.uow.untrack(trackKey{table: r.m.table, id: r.m.id(e)})
	r.uow.stage(change{
		desc: "update " + r.m.table,
		exec: func(ctx context.Context, q querier) (int64, error) {
			return r.execUpdate(ctx, q, e, expected)
		},
	})
}

func (r *repo[T]) execUpdate(ctx context.Context, q querier, e T, expected int64) (int64, error) {
	audit := e.AuditData()
	vals := r.m.dataVals(e)
	sets := make([]string, 0, len(r.m.dataCols)+5)
	args := []any{r.m.id(e)}
	idx := 2
	for i, col := range r.m.dataCols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, vals[i])
		idx++
	}
	for _, extra := range []struct {
		col string
		val any
	}{
		{"updated_at", audit.UpdatedAt},
		{"updated_by", audit.UpdatedBy},
		{"deleted_at", audit.DeletedAt},
		{"deleted_by", nullString(audit.DeletedBy)},
	} {
		sets = append(sets, fmt.Sprintf("%s = $%d", extra.col, idx))
		args = append(args, extra.val)
		idx++
	}
	sets = append(sets, "version = version + 1")
	args = append(args, expected)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 AND version = $%d",
		r.m.table, strings.Join(sets, ", "), idx)
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		var exists bool
		probe := "SELECT EXISTS (SELECT 1 FROM " + r.m.table + " WHERE id = $1)"
		if err := q.QueryRowContext(ctx, probe, r.m.id(e)).Scan(&exists); err != nil {
			return 0, err
		}
		if exists {
			return 0, fmt.Errorf("%s id %s: %w", r.m.table, r.m.id(e), sentinel.ErrConcurrencyConflict)
		}
		return 0, fmt.Errorf("%s id %s: %w", r.m.table, r.m.id(e), sentinel.ErrNotFound)
	}
	audit.Version = expected + 1
	return n, nil
}

// Delete stages a physical delete. Owned child rows go with it via the
// cascade rules in the schema; soft-deactivation is an Update concern.
func (r *repo[T]) Delete(e T) {
	id := r.m.id(e)
	r.uow.untrack(trackKey{table: r.m.table, id: id})
	r.uow.stage(change{
		desc: "delete " + r.m.table,
		exec: func(ctx context.Context, q querier) (int64, error) {
			res, err := q.ExecContext(ctx, "DELETE FROM "+r.m.table+" WHERE id = $1", id)
			if err != nil {
				return 0, err
			}
			return res.RowsAffected()
		},
	})
}

// track registers an entity with the change tracker so SaveChanges picks up
// in-place mutations without an explicit Update call.
func (r *repo[T]) track(e T) {
	if r.uow.tracked == nil {
		return
	}
	key := trackKey{table: r.m.table, id: r.m.id(e)}
	r.uow.tracked[key] = &trackedEntity{
		snapshot: cloneVals(r.m.dataVals(e)),
		current:  func() []any { return r.m.dataVals(e) },
		stage:    func() { r.Update(e) },
	}
}
