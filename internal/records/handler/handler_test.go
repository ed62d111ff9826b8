package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgv/internal/platform/logger"
	"kgv/internal/records/models"
	"kgv/internal/records/store"
)

type memorySession struct {
	apps      *store.MemoryApplicationStore
	districts *store.MemoryDistrictStore
}

func (s memorySession) Applications() ApplicationReader { return s.apps }
func (s memorySession) Districts() DistrictReader       { return s.districts }
func (s memorySession) Close() error                    { return nil }

func newTestHandler(t *testing.T) (*Handler, memorySession) {
	t.Helper()
	sess := memorySession{
		apps:      store.NewMemoryApplicationStore(),
		districts: store.NewMemoryDistrictStore(),
	}
	h := New(func() Session { return sess }, logger.New())
	return h, sess
}

func seedApplication(sess memorySession) *models.Application {
	a := &models.Application{
		ID:            uuid.New(),
		FileReference: "NORD-1-2024",
		Applicant:     models.PersonalInfo{Salutation: "Frau", FirstName: "Anna", LastName: "Schmidt"},
		Contact: models.ContactInfo{
			Address: models.Address{Street: "Gartenweg 1", PostalCode: "50667", City: "Köln"},
			Email:   "anna@example.org",
		},
		ApplicationDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Active:          true,
		History: []models.HistoryEntry{
			{Kind: models.HistoryReceived, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	a.Version = 1
	sess.apps.Put(a)
	return a
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListApplications(t *testing.T) {
	h, sess := newTestHandler(t)
	seedApplication(sess)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/applications", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "NORD-1-2024", body[0]["file_reference"])
	assert.Equal(t, "Anna Schmidt", body[0]["name"])
}

func TestGetApplication(t *testing.T) {
	h, sess := newTestHandler(t)
	a := seedApplication(sess)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/applications/"+a.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, a.ID.String(), body["id"])
	assert.Equal(t, "Köln", body["city"])
	history, ok := body["history"].([]any)
	require.True(t, ok)
	assert.Len(t, history, 1)
}

func TestGetApplicationNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/applications/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetApplicationBadID(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/applications/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchApplications(t *testing.T) {
	h, sess := newTestHandler(t)
	seedApplication(sess)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/applications/search?q=schmidt", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)

	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/applications/search?q=nobody", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body)
}

func TestListDistricts(t *testing.T) {
	h, sess := newTestHandler(t)
	sess.districts.Put(&models.District{
		ID:   uuid.New(),
		Code: "NORD",
		Name: "Nord",
		CadastralDistricts: []models.CadastralDistrict{
			{Code: "N-01", Name: "Niehl"},
		},
	})

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/districts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "NORD", body[0]["code"])
	cads, ok := body[0]["cadastral_districts"].([]any)
	require.True(t, ok)
	assert.Len(t, cads, 1)
}
