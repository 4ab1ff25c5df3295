package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Impluse2/flowersss/internal/domain"
)

type stubCatalog struct {
	snap domain.Snapshot
	at   time.Time
}

func (s *stubCatalog) Current() domain.Snapshot { return s.snap }
func (s *stubCatalog) ReloadedAt() time.Time    { return s.at }

func TestHealth(t *testing.T) {
	h := NewHandler(&stubCatalog{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestStatus(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	h := NewHandler(&stubCatalog{
		snap: domain.Snapshot{{ID: 1}, {ID: 2}},
		at:   at,
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Products)
	assert.Equal(t, "2026-03-14T12:00:00Z", resp.ReloadedAt)
}

func TestStatusBeforeFirstReload(t *testing.T) {
	h := NewHandler(&stubCatalog{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Products)
	assert.Empty(t, resp.ReloadedAt)
}
