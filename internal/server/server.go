// Package server exposes the latest extraction result over a small HTTP
// API. The result is replaced wholesale by each extraction run; handlers
// only ever see a consistent snapshot.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/cache"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/segmenter"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/workorder"
)

// Runner performs one extraction pass over the configured source PDF.
type Runner interface {
	Extract(ctx context.Context) (*segmenter.Result, error)
}

// OrderExporter writes one work order's pages to a standalone PDF and
// returns the file path.
type OrderExporter interface {
	WorkOrderPDF(o *workorder.WorkOrder) (string, error)
}

// Server holds the shared extraction state and its HTTP handlers.
type Server struct {
	runner   Runner
	exporter OrderExporter
	store    *cache.Store
	pdfName  string

	mu      sync.RWMutex
	result  *segmenter.Result
	savedAt time.Time

	// Guards against concurrent extraction runs; a second POST while one
	// is in flight gets 409 instead of queueing.
	extractMu sync.Mutex
}

// New assembles a server. exporter and store may be nil; the matching
// endpoints then report the feature as unavailable.
func New(runner Runner, exporter OrderExporter, store *cache.Store, pdfName string) *Server {
	return &Server{runner: runner, exporter: exporter, store: store, pdfName: pdfName}
}

// SetResult seeds the shared state, typically from a cache snapshot at
// startup.
func (s *Server) SetResult(res *segmenter.Result, savedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = res
	s.savedAt = savedAt
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/workorders", s.handleList)
		r.Get("/workorders/{id}", s.handleGet)
		r.Get("/workorders/{id}/pdf", s.handleOrderPDF)
		r.Post("/extract", s.handleExtract)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type listResponse struct {
	PDFName     string                 `json:"pdfName"`
	SavedAt     time.Time              `json:"savedAt"`
	WorkOrders  []*workorder.WorkOrder `json:"workOrders"`
	CountsByNNI map[string]int         `json:"countsByNNI"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	res, savedAt := s.result, s.savedAt
	s.mu.RUnlock()

	if res == nil {
		writeError(w, http.StatusNotFound, "no extraction result available")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		PDFName:     s.pdfName,
		SavedAt:     savedAt,
		WorkOrders:  res.Orders,
		CountsByNNI: res.CountsByNNI,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	o, ok := s.findOrder(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "work order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "no source PDF configured")
		return
	}
	if !s.extractMu.TryLock() {
		writeError(w, http.StatusConflict, "extraction already in progress")
		return
	}
	defer s.extractMu.Unlock()

	res, err := s.runner.Extract(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("extraction failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now().UTC()
	s.SetResult(res, now)

	if s.store != nil {
		// The source document stays on disk in serve mode; only the
		// result snapshot is persisted.
		if err := s.store.Save(r.Context(), res, s.pdfName, nil); err != nil {
			log.Printf("cache save failed: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"workOrderCount": len(res.Orders),
		"savedAt":        now,
	})
}

func (s *Server) handleOrderPDF(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export not available")
		return
	}
	o, ok := s.findOrder(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "work order not found")
		return
	}

	path, err := s.exporter.WorkOrderPDF(o)
	if err != nil {
		log.Printf("export of %s failed: %v", o.ID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func (s *Server) findOrder(id string) (*workorder.WorkOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil, false
	}
	for _, o := range s.result.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
