// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_aggregator/internal/app"
	"review_aggregator/internal/domain"
)

// RootStatus is the liveness payload served at "/".
const RootStatus = "Hotel Review Aggregator is running!"

const maxBodyBytes = 1 << 20

// BatchReader looks up previously persisted batches.
type BatchReader interface {
	ListBatch(ctx context.Context, batchID string) ([]domain.ReviewRecord, error)
}

// Handlers serves the scrape API. Persist and Batches are optional.
type Handlers struct {
	Agg     *app.Aggregator
	Persist *app.Persister
	Batches BatchReader
}

type scrapeRequest struct {
	URLs []string `json:"urls"`
}

type scrapeResponse struct {
	Data []domain.ReviewRecord `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/", h.root)
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/scrape-reviews", h.scrapeReviews)
	if h.Batches != nil {
		s.mux.Get("/v1/batches/{id}", h.getBatch)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": RootStatus})
}

func (h *Handlers) scrapeReviews(w http.ResponseWriter, r *http.Request) {
	if !h.Agg.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "API key not configured."})
		return
	}

	var req scrapeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be a JSON object with a urls array"})
		return
	}

	batch, err := h.Agg.Run(r.Context(), req.URLs)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotConfigured) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "API key not configured."})
			return
		}
		log.Error().Err(err).Msg("scrape batch failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "scrape failed"})
		return
	}

	writeJSON(w, http.StatusOK, scrapeResponse{Data: batch.Records})

	// after the response body; the persister never blocks
	if h.Persist != nil {
		h.Persist.Persist(batch)
	}
}

func (h *Handlers) getBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	recs, err := h.Batches.ListBatch(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "batch not found")
			return
		}
		log.Error().Err(err).Str("batch", id).Msg("list batch failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not read batch")
		return
	}

	etag, body := calcETagAndBody(scrapeResponse{Data: recs})
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getBatch body")
	}
}
