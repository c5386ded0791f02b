// Package http serves the expense dashboard: one server-rendered page whose
// panels are swapped by HTMX after every action, plus JSON projections and
// spreadsheet exports of the filtered records.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/state"
	appweb "expensetracker/web"
)

// SheetsExporter pushes records to a spreadsheet and reports how many were
// written.
type SheetsExporter interface {
	Export(ctx context.Context, records []core.ExpenseRecord) (int, error)
}

type Options struct {
	Logger *applog.Logger
	// Sheets enables POST /ui/export/sheets when set.
	Sheets    SheetsExporter
	RateLimit ratelimit.Config
}

type Server struct {
	http.Server
	tracker   *state.Tracker
	templates *template.Template
	sheets    SheetsExporter
	logger    *applog.Logger
	limiter   *ratelimit.Limiter
	trace     *trace.Middleware
	security  securityMetrics

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires every route.
func NewServer(addr string, tracker *state.Tracker, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		tracker:   tracker,
		templates: t,
		sheets:    opts.Sheets,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(opts.RateLimit),
	}
	s.trace = trace.NewMiddleware(logger, extractClientIP)

	r := mux.NewRouter()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	// UI routes stay on r itself so a wrong method answers 405.
	r.HandleFunc("/ui/expenses", s.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/ui/expenses/cancel", s.handleCancelEdit).Methods(http.MethodPost)
	r.HandleFunc("/ui/expenses/{id}", s.handleSelect).Methods(http.MethodGet)
	r.HandleFunc("/ui/expenses/{id}/edit", s.handleEdit).Methods(http.MethodPost)
	r.HandleFunc("/ui/expenses/{id}/delete", s.handleDelete).Methods(http.MethodPost)
	r.HandleFunc("/ui/detail/close", s.handleCloseDetail).Methods(http.MethodPost)
	r.HandleFunc("/ui/filters", s.handleFilters).Methods(http.MethodPost)
	r.HandleFunc("/ui/filters/clear", s.handleClearFilters).Methods(http.MethodPost)
	r.HandleFunc("/ui/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/ui/export/sheets", s.handleExportSheets).Methods(http.MethodPost)

	r.HandleFunc("/api/projection", s.handleProjection).Methods(http.MethodGet)
	r.HandleFunc("/api/calendar", s.handleCalendar).Methods(http.MethodGet)
	r.HandleFunc("/export.xlsx", s.handleExportXLSX).Methods(http.MethodGet)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = r
	h = s.limiter.Middleware(extractClientIP, s.onRateLimit)(h)
	h = headers.Middleware(h)
	h = s.flagSuspicious(h)
	h = s.trace.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&s.security.rateLimitHits, 1)
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, extractClientIP(r),
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests, please wait a minute.").
		Header("Retry-After", "60").
		Write(w)
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
