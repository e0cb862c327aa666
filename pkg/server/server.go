// Package server exposes the netlist frontend over HTTP: upload a JSON
// netlist, get back a design id, then fetch summaries or the canonical
// re-exported document.
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/rtlgraph/rtlgraph/pkg/buildinfo"
	"github.com/rtlgraph/rtlgraph/pkg/errors"
	"github.com/rtlgraph/rtlgraph/pkg/frontend/netjson"
	"github.com/rtlgraph/rtlgraph/pkg/graph"
	"github.com/rtlgraph/rtlgraph/pkg/netlist"
)

// maxBodyBytes caps uploaded netlist documents.
const maxBodyBytes = 64 << 20 // 64 MiB

// Options configures a Server.
type Options struct {
	// Import is passed through to the frontend for every upload.
	Import netjson.Options

	// TTL bounds how long stored designs live. Zero means no expiry.
	TTL time.Duration

	// Logger receives request-level progress messages. Nil disables logging.
	Logger func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger(format, args...)
	}
}

// Server handles design uploads and lookups against a Store.
type Server struct {
	store Store
	opts  Options
}

// New creates a Server backed by store.
func New(store Store, opts Options) *Server {
	return &Server{store: store, opts: opts}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/designs", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSummary)
			r.Get("/document", s.handleDocument)
			r.Get("/modules", s.handleModules)
			r.Get("/modules/{name}", s.handleModule)
			r.Delete("/", s.handleDelete)
		})
	})
	return r
}

// =============================================================================
// Handlers
// =============================================================================

type designResponse struct {
	ID      string                `json:"id"`
	Modules []graph.ModuleSummary `json:"modules"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleCreate imports the request body, stores the canonical export, and
// returns the new design id with per-module statistics.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	design := netlist.NewDesign()
	if err := netjson.Read(body, design, s.opts.Import); err != nil {
		s.writeError(w, err)
		return
	}

	data, err := graph.Marshal(design)
	if err != nil {
		s.writeError(w, err)
		return
	}

	id := uuid.NewString()
	if err := s.store.Set(r.Context(), id, data, s.opts.TTL); err != nil {
		s.writeError(w, err)
		return
	}

	sums := graph.Summarize(design)
	s.opts.logf("stored design %s (%d modules, %d bytes)", id, len(sums), len(data))
	writeJSON(w, http.StatusCreated, designResponse{ID: id, Modules: sums})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	design, err := s.loadDesign(r, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, designResponse{ID: id, Modules: graph.Summarize(design)})
}

// handleDocument streams the stored canonical JSON unmodified.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	data, found, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "design not found"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	design, err := s.loadDesign(r, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.Summarize(design))
}

// handleModule returns the serialized form of one module from the stored
// canonical document.
func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "name")

	data, found, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "design not found"))
		return
	}

	var doc graph.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "stored design %s is corrupt", id))
		return
	}
	mod, ok := doc.Modules[name]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "module %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, mod)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.opts.logf("deleted design %s", id)
	w.WriteHeader(http.StatusNoContent)
}

// loadDesign re-imports a stored canonical document. Stored documents were
// produced by the exporter, so a failed import here is an internal error,
// not a client one.
func (s *Server) loadDesign(r *http.Request, id string) (*netlist.Design, error) {
	data, found, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New(errors.ErrCodeNotFound, "design not found")
	}

	design := netlist.NewDesign()
	if err := netjson.Read(bytes.NewReader(data), design, netjson.Options{}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stored design %s is corrupt", id)
	}
	return design, nil
}

// =============================================================================
// Response Helpers
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeStream, errors.ErrCodeSyntax, errors.ErrCodeSchema, errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeNameConflict:
		status = http.StatusConflict
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.opts.logf("internal error: %v", err)
	}
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}
