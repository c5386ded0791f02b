// Package storeapi serves the expense collection over HTTP:
//
//	GET    /expenses
//	POST   /expenses
//	PUT    /expenses/{id}
//	DELETE /expenses/{id}
//	GET    /summary
package storeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

type Handler struct {
	store  store.RecordStore
	logger *applog.Logger
}

func NewHandler(s store.RecordStore, logger *applog.Logger) *Handler {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Handler{store: s, logger: logger.WithComponent(applog.ComponentStore)}
}

// RegisterRoutes mounts the collection routes on router under prefix. The
// routes sit on router itself rather than a subrouter so that a known path
// with the wrong method answers 405, not 404.
func (h *Handler) RegisterRoutes(router *mux.Router, prefix string) {
	prefix = strings.TrimRight(prefix, "/")
	router.HandleFunc(prefix+"/expenses", h.List).Methods(http.MethodGet)
	router.HandleFunc(prefix+"/expenses", h.Create).Methods(http.MethodPost)
	router.HandleFunc(prefix+"/expenses/{id}", h.Update).Methods(http.MethodPut)
	router.HandleFunc(prefix+"/expenses/{id}", h.Delete).Methods(http.MethodDelete)
	router.HandleFunc(prefix+"/summary", h.Summary).Methods(http.MethodGet)
}

// NewRouter builds the complete store router under prefix (e.g. "/api"),
// with request logging and health probes.
func NewRouter(h *Handler, prefix string, ready func() error) *mux.Router {
	router := mux.NewRouter()
	router.Use(h.logRequests)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}).Methods(http.MethodGet)

	h.RegisterRoutes(router, prefix)
	return router
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, applog.OpList, err)
		return
	}
	if records == nil {
		records = []core.ExpenseRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.Remove(r.Context(), id); err != nil {
		h.fail(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	totals, err := h.store.Summary(r.Context())
	if err != nil {
		h.fail(w, r, applog.OpSummary, err)
		return
	}
	if totals == nil {
		totals = []core.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (core.ExpenseInput, bool) {
	var in core.ExpenseInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid request body", applog.FieldError, err)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return core.ExpenseInput{}, false
	}
	return in, true
}

// fail maps domain errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case core.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Store operation failed",
			applog.FieldOperation, op,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.InfoContext(r.Context(), "HTTP request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
