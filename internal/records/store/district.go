package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"kgv/internal/records/models"
)

// DistrictRepository persists districts and eagerly loads their cadastral
// subdivisions; a district and its children form one reference-data unit.
type DistrictRepository struct {
	repo[*models.District]
}

// GetByID loads one district with its cadastral districts attached.
func (r *DistrictRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.District, error) {
	d, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.loadCadastral(ctx, []*models.District{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// GetByCode resolves a district by its unique code.
func (r *DistrictRepository) GetByCode(ctx context.Context, code string) (*models.District, error) {
	query := "SELECT " + r.m.selectColumns() + " FROM districts WHERE code = $1 AND deleted_at IS NULL"
	d, err := r.m.scan(r.uow.q().QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("get district by code: %w", translate(err))
	}
	r.track(d)
	if err := r.loadCadastral(ctx, []*models.District{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// GetAll lists districts ordered by code, children attached.
func (r *DistrictRepository) GetAll(ctx context.Context) ([]*models.District, error) {
	districts, err := r.repo.Query(ctx, Query{OrderBy: "code"})
	if err != nil {
		return nil, err
	}
	if err := r.loadCadastral(ctx, districts); err != nil {
		return nil, err
	}
	return districts, nil
}

func (r *DistrictRepository) loadCadastral(ctx context.Context, districts []*models.District) error {
	if len(districts) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.District, len(districts))
	placeholders := make([]string, 0, len(districts))
	args := make([]any, 0, len(districts))
	for i, d := range districts {
		d.CadastralDistricts = nil
		byID[d.ID] = d
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, d.ID)
	}

	query := "SELECT " + cadastralMapping.selectColumns() + " FROM cadastral_districts" +
		" WHERE district_id IN (" + strings.Join(placeholders, ", ") + ")" +
		" AND deleted_at IS NULL ORDER BY code"
	rows, err := r.uow.q().QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load cadastral districts: %w", translate(err))
	}
	defer rows.Close()

	for rows.Next() {
		c, err := cadastralMapping.scan(rows)
		if err != nil {
			return fmt.Errorf("scan cadastral district: %w", err)
		}
		if d, ok := byID[c.DistrictID]; ok {
			d.CadastralDistricts = append(d.CadastralDistricts, *c)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load cadastral districts: %w", translate(err))
	}
	return nil
}

// CadastralDistrictRepository persists cadastral subdivisions directly, used
// by seeding and the data migration tool.
type CadastralDistrictRepository struct {
	repo[*models.CadastralDistrict]
}

// ListByDistrict returns the subdivisions of one district.
func (r *CadastralDistrictRepository) ListByDistrict(ctx context.Context, districtID uuid.UUID) ([]*models.CadastralDistrict, error) {
	return r.Query(ctx, Query{
		Where:   []Cond{{SQL: "district_id = $?", Args: []any{districtID}}},
		OrderBy: "code",
	})
}
