package store

import (
	"context"

	"kgv/internal/records/models"
)

// PersonnelRepository persists case worker reference data.
type PersonnelRepository struct {
	repo[*models.Personnel]
}

// GetActive lists active case workers ordered by name.
func (r *PersonnelRepository) GetActive(ctx context.Context) ([]*models.Personnel, error) {
	return r.Query(ctx, Query{
		Where:   []Cond{{SQL: "active"}},
		OrderBy: "last_name, first_name",
	})
}
