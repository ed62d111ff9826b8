package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

// migration is one versioned schema change, parsed from NNNN_name.up.sql /
// NNNN_name.down.sql pairs.
type migration struct {
	version int
	name    string
	up      string
	down    string
}

// Migrate applies every pending forward migration from fsys in version order.
// Each migration runs in its own transaction together with its ledger row, so
// a failed script leaves no half-applied version behind.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	migrations, err := load(fsys)
	if err != nil {
		return err
	}
	if err := ensureLedger(ctx, db); err != nil {
		return err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := runInTx(ctx, db, m.up, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", m.version, m.name)
			return err
		}); err != nil {
			return fmt.Errorf("apply migration %04d_%s: %w", m.version, m.name, err)
		}
	}
	return nil
}

// Rollback reverts the given number of most recently applied migrations.
func Rollback(ctx context.Context, db *sql.DB, fsys fs.FS, steps int) error {
	migrations, err := load(fsys)
	if err != nil {
		return err
	}
	if err := ensureLedger(ctx, db); err != nil {
		return err
	}
	byVersion := make(map[int]migration, len(migrations))
	for _, m := range migrations {
		byVersion[m.version] = m
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	var versions []int
	for v := range applied {
		versions = append(versions, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))

	for i, v := range versions {
		if i >= steps {
			break
		}
		m, ok := byVersion[v]
		if !ok {
			return fmt.Errorf("no down script for applied version %d", v)
		}
		if err := runInTx(ctx, db, m.down, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", v)
			return err
		}); err != nil {
			return fmt.Errorf("revert migration %04d_%s: %w", m.version, m.name, err)
		}
	}
	return nil
}

func runInTx(ctx context.Context, db *sql.DB, script string, ledger func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := ledger(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func ensureLedger(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// load parses the migration scripts from the filesystem root.
func load(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[int]*migration)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		base, direction, ok := splitName(name)
		if !ok {
			return nil, fmt.Errorf("malformed migration filename %q", name)
		}
		idx := strings.Index(base, "_")
		if idx < 0 {
			return nil, fmt.Errorf("malformed migration filename %q", name)
		}
		version, err := strconv.Atoi(base[:idx])
		if err != nil {
			return nil, fmt.Errorf("malformed migration version in %q", name)
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}

		m := byVersion[version]
		if m == nil {
			m = &migration{version: version, name: base[idx+1:]}
			byVersion[version] = m
		}
		if direction == "up" {
			m.up = string(body)
		} else {
			m.down = string(body)
		}
	}

	var out []migration
	for _, m := range byVersion {
		if m.up == "" || m.down == "" {
			return nil, fmt.Errorf("migration %04d_%s is missing its up or down script", m.version, m.name)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func splitName(filename string) (base, direction string, ok bool) {
	switch {
	case strings.HasSuffix(filename, ".up.sql"):
		return strings.TrimSuffix(filename, ".up.sql"), "up", true
	case strings.HasSuffix(filename, ".down.sql"):
		return strings.TrimSuffix(filename, ".down.sql"), "down", true
	default:
		return "", "", false
	}
}
