// Package admin exposes a small HTTP surface for liveness probes and
// operational checks next to the bot transport.
package admin

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Impluse2/flowersss/internal/domain"
)

type CatalogInfo interface {
	Current() domain.Snapshot
	ReloadedAt() time.Time
}

type statusResponse struct {
	Products   int    `json:"products"`
	ReloadedAt string `json:"reloaded_at,omitempty"`
}

// NewHandler builds the admin router.
func NewHandler(catalog CatalogInfo) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{Products: len(catalog.Current())}
		if at := catalog.ReloadedAt(); !at.IsZero() {
			resp.ReloadedAt = at.Format(time.RFC3339)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("failed to encode status response: %v", err)
		}
	})

	return r
}
