package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"kgv/internal/records/models"
	"kgv/pkg/platform/sentinel"
)

// In-memory twins of the read repositories, used as handler test doubles and
// for local development without a database.

// MemoryApplicationStore is the in-memory counterpart of
// ApplicationRepository's read surface.
type MemoryApplicationStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*models.Application
}

func NewMemoryApplicationStore() *MemoryApplicationStore {
	return &MemoryApplicationStore{items: make(map[uuid.UUID]*models.Application)}
}

// Put inserts or replaces an application.
func (s *MemoryApplicationStore) Put(a *models.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[a.ID] = a
}

func (s *MemoryApplicationStore) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok || a.Deleted() {
		return nil, sentinel.ErrNotFound
	}
	return a, nil
}

func (s *MemoryApplicationStore) GetActive(_ context.Context) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, a := range s.items {
		if a.Active && !a.Deleted() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ApplicationDate.After(out[j].ApplicationDate)
	})
	return out, nil
}

func (s *MemoryApplicationStore) Search(_ context.Context, term string) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}
	var out []*models.Application
	for _, a := range s.items {
		if a.Deleted() {
			continue
		}
		haystack := strings.ToLower(a.Applicant.LastName + " " + a.Applicant.FirstName + " " + a.FileReference)
		if strings.Contains(haystack, term) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Applicant.LastName < out[j].Applicant.LastName
	})
	return out, nil
}

// MemoryDistrictStore is the in-memory counterpart of DistrictRepository's
// read surface.
type MemoryDistrictStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*models.District
}

func NewMemoryDistrictStore() *MemoryDistrictStore {
	return &MemoryDistrictStore{items: make(map[uuid.UUID]*models.District)}
}

// Put inserts or replaces a district.
func (s *MemoryDistrictStore) Put(d *models.District) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[d.ID] = d
}

func (s *MemoryDistrictStore) GetAll(_ context.Context) ([]*models.District, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.District, 0, len(s.items))
	for _, d := range s.items {
		if !d.Deleted() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
