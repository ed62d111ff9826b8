package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgv/internal/records/models"
	"kgv/pkg/platform/sentinel"
)

func TestMemoryApplicationStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryApplicationStore()

	older := &models.Application{
		ID:              uuid.New(),
		FileReference:   "NORD-1-2023",
		Applicant:       models.PersonalInfo{FirstName: "Anna", LastName: "Schmidt"},
		ApplicationDate: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		Active:          true,
	}
	newer := &models.Application{
		ID:              uuid.New(),
		FileReference:   "SUED-2-2024",
		Applicant:       models.PersonalInfo{FirstName: "Jens", LastName: "Weber"},
		ApplicationDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Active:          true,
	}
	inactive := &models.Application{
		ID:            uuid.New(),
		FileReference: "OST-3-2022",
		Applicant:     models.PersonalInfo{LastName: "Klein"},
	}
	s.Put(older)
	s.Put(newer)
	s.Put(inactive)

	t.Run("get by id", func(t *testing.T) {
		got, err := s.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, older.FileReference, got.FileReference)

		_, err = s.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("active newest first", func(t *testing.T) {
		got, err := s.GetActive(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer.ID, got[0].ID)
		assert.Equal(t, older.ID, got[1].ID)
	})

	t.Run("search by name and file reference", func(t *testing.T) {
		got, err := s.Search(ctx, "schmidt")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, older.ID, got[0].ID)

		got, err = s.Search(ctx, "OST-3")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, inactive.ID, got[0].ID)
	})

	t.Run("soft-deleted rows hidden", func(t *testing.T) {
		deleted := &models.Application{ID: uuid.New(), Active: true}
		deleted.StampDeleted(time.Now(), "test")
		s.Put(deleted)

		_, err := s.GetByID(ctx, deleted.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestMemoryDistrictStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDistrictStore()
	s.Put(&models.District{ID: uuid.New(), Code: "SUED", Name: "Süd"})
	s.Put(&models.District{ID: uuid.New(), Code: "NORD", Name: "Nord"})

	got, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "NORD", got[0].Code)
	assert.Equal(t, "SUED", got[1].Code)
}
