package store

import (
	"context"

	"github.com/google/uuid"

	"kgv/internal/records/models"
)

// HistoryRepository persists application lifecycle events. Most reads go
// through the application repository's eager load; this repository serves
// direct writes and reporting queries.
type HistoryRepository struct {
	repo[*models.HistoryEntry]
}

// ListByApplication returns one application's events in chronological order.
func (r *HistoryRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.HistoryEntry, error) {
	return r.Query(ctx, Query{
		Where:   []Cond{{SQL: "application_id = $?", Args: []any{applicationID}}},
		OrderBy: "entry_date, created_at",
	})
}
