package store

import (
	"context"
	"fmt"
	"strings"

	"kgv/internal/records/models"
)

// FileReferenceRepository manages issued case numbers.
type FileReferenceRepository struct {
	repo[*models.FileReference]
}

// GenerateNext issues the next case number for (district, year): it reads
// max(number) and persists max+1 immediately, bypassing the staging queue so
// the number is visible to the caller right away. Under concurrent callers
// the unique constraint on (district_code, number, year) is the backstop: the
// loser gets sentinel.ErrDuplicateKey and must retry the sequence. Inside an
// explicit transaction the insert joins it.
//
// The max read ignores soft deletion on purpose: the unique constraint covers
// soft-deleted rows too, so an issued number is never handed out again.
func (r *FileReferenceRepository) GenerateNext(ctx context.Context, district string, year int) (*models.FileReference, error) {
	var max int
	err := r.uow.q().QueryRowContext(ctx,
		"SELECT COALESCE(MAX(number), 0) FROM file_references WHERE district_code = $1 AND year = $2",
		district, year).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("read max file reference number: %w", translate(err))
	}

	f := &models.FileReference{
		DistrictCode: district,
		Number:       max + 1,
		Year:         year,
	}
	r.prepareInsert(f)

	cols := r.m.insertColumns()
	query := "INSERT INTO file_references (" + strings.Join(cols, ", ") + ") VALUES " +
		placeholderRow(1, len(cols))
	if _, err := r.uow.q().ExecContext(ctx, query, r.m.insertVals(f)...); err != nil {
		return nil, fmt.Errorf("generate next file reference %s-%d: %w", district, year, translate(err))
	}
	return f, nil
}

// Exists is a pure existence check for the triple, without side effects.
func (r *FileReferenceRepository) Exists(ctx context.Context, district string, number, year int) (bool, error) {
	var exists bool
	err := r.uow.q().QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM file_references WHERE district_code = $1 AND number = $2 AND year = $3 AND deleted_at IS NULL)",
		district, number, year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check file reference existence: %w", translate(err))
	}
	return exists, nil
}
