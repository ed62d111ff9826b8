// Package store implements the persistence layer for the records domain:
// declarative entity-to-row mapping, typed repositories, and the unit of work
// that brackets them in one transaction. Writes are staged on the unit of
// work and become durable only when SaveChanges flushes them; reads run
// immediately against the current session.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// querier abstracts *sql.DB and *sql.Tx so repositories run against whichever
// session the owning unit of work currently holds.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Cond is one composable predicate fragment. Placeholders are written as $?
// and renumbered when the final query is assembled, so fragments can be
// combined in any order.
type Cond struct {
	SQL  string
	Args []any
}

// Query carries the options of the generic query operation. The zero value
// returns untracked, unordered, non-deleted rows.
type Query struct {
	Where   []Cond
	OrderBy string // raw order expression, e.g. "application_date DESC"
	Limit   int

	// Tracking registers results with the unit of work's change tracker so
	// mutations are picked up by SaveChanges. Off by default: listing and
	// reporting paths get read-only snapshots.
	Tracking bool

	// WithHistory overrides the application repository's default eager load
	// of the history collection. Ignored by other repositories.
	WithHistory *bool
}

// renumber rewrites $? placeholders into sequential $n starting at next and
// returns the rewritten SQL plus the next free index.
func renumber(sqlFragment string, next int) (string, int) {
	var b strings.Builder
	for {
		i := strings.Index(sqlFragment, "$?")
		if i < 0 {
			b.WriteString(sqlFragment)
			return b.String(), next
		}
		b.WriteString(sqlFragment[:i])
		fmt.Fprintf(&b, "$%d", next)
		next++
		sqlFragment = sqlFragment[i+2:]
	}
}

// buildWhere assembles the WHERE clause for the given fragments, always
// filtering soft-deleted rows, and returns clause text plus ordered args.
func buildWhere(conds []Cond, startIdx int) (string, []any, int) {
	clauses := []string{"deleted_at IS NULL"}
	var args []any
	next := startIdx
	for _, c := range conds {
		var clause string
		clause, next = renumber(c.SQL, next)
		clauses = append(clauses, "("+clause+")")
		args = append(args, c.Args...)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, next
}

// nullString maps the empty string to NULL on the way into the database.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// timePtr converts a scanned nullable timestamp back to the model shape.
func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// placeholderRow renders ($n, $n+1, ...) for one insert row of width cols.
func placeholderRow(start, cols int) string {
	parts := make([]string, cols)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
