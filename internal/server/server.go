// Package server exposes the orchestrator over HTTP, with a websocket for
// batch job progress and generated API docs under /swagger.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/wcag131/internal/app"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/report"
	_ "github.com/raysh454/wcag131/internal/server/docs" // registers the swagger spec
	"github.com/raysh454/wcag131/internal/tracker"
	"github.com/raysh454/wcag131/internal/utils"
)

// maxBodyBytes caps request bodies, inline HTML included.
const maxBodyBytes = 10 << 20

// Server is the HTTP + WebSocket API surface for wcag131.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer creates a Server, building an Orchestrator from cfg.AppConfig
// unless one is supplied.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	orch := cfg.Orchestrator
	if orch == nil {
		var err error
		orch, err = app.NewOrchestrator(cfg.AppConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("creating orchestrator: %w", err)
		}
	}

	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       chi.NewRouter(),
		logger:       logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return cfg.AllowedOrigin == "*" || r.Header.Get("Origin") == cfg.AllowedOrigin
			},
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/audits", s.optionsHandler("GET, POST"))
	r.Options("/audits/diff", s.optionsHandler("GET"))
	r.Options("/audits/{id}", s.optionsHandler("GET"))
	r.Options("/audits/{id}/export", s.optionsHandler("GET"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/batch", s.optionsHandler("POST"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))

	// Audits
	r.Post("/audits", s.handleCreateAudit)
	r.Get("/audits", s.handleListAudits)
	r.Get("/audits/diff", s.handleDiffAudits)
	r.Get("/audits/{id}", s.handleGetAudit)
	r.Get("/audits/{id}/export", s.handleExportAudit)

	// Jobs over REST
	r.Post("/jobs/batch", s.handleStartBatchJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// WebSocket for job progress
	r.Get("/ws/jobs/batch", s.handleBatchWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}
	if r.ContentLength > 0 {
		fields = append(fields, logging.Field{Key: "body_bytes", Value: r.ContentLength})
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the orchestrator and underlying resources.
func (s *Server) Close() error {
	if s.orchestrator != nil {
		return s.orchestrator.Close()
	}
	return nil
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps orchestrator errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tracker.ErrAuditNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrNoURLs),
		errors.Is(err, report.ErrUnsupportedFormat),
		errors.Is(err, utils.ErrEmptyURL),
		errors.Is(err, utils.ErrMissingHost):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNoHistory), errors.Is(err, app.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.logger.Warn(what, logging.Field{Key: "error", Value: err.Error()})
	writeError(w, statusFor(err), err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// --- HTTP handlers ---

// Audits

// handleCreateAudit godoc
// @Summary Audit an HTML document or a URL
// @Tags audits
// @Accept json
// @Produce json
// @Param request body AuditRequest true "Either html (with an optional source) or url"
// @Success 201 {object} model.Report
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /audits [post]
func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var body AuditRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.logger.Warn("decoding audit body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	switch {
	case body.HTML != "" && body.URL != "":
		writeError(w, http.StatusBadRequest, "give either html or url, not both")
	case body.HTML != "":
		source := body.Source
		if source == "" {
			source = "inline"
		}
		rep, err := s.orchestrator.AuditHTML(r.Context(), []byte(body.HTML), source)
		if err != nil {
			s.fail(w, "auditing html", err)
			return
		}
		s.logger.Info("audited html", logging.Field{Key: "id", Value: rep.ID}, logging.Field{Key: "source", Value: source})
		writeJSON(w, http.StatusCreated, rep)
	case body.URL != "":
		rep, err := s.orchestrator.AuditURL(r.Context(), body.URL)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				status = http.StatusBadGateway
			}
			s.logger.Warn("auditing url", logging.Field{Key: "url", Value: body.URL}, logging.Field{Key: "error", Value: err.Error()})
			writeError(w, status, err.Error())
			return
		}
		s.logger.Info("audited url", logging.Field{Key: "id", Value: rep.ID}, logging.Field{Key: "url", Value: rep.Source})
		writeJSON(w, http.StatusCreated, rep)
	default:
		writeError(w, http.StatusBadRequest, "missing html or url")
	}
}

// handleListAudits godoc
// @Summary List stored audits of a source
// @Tags audits
// @Produce json
// @Param source query string true "URL or file name the audits were run on"
// @Param limit query int false "Maximum number of summaries"
// @Success 200 {array} model.ReportSummary
// @Failure 400 {object} ErrorResponse
// @Router /audits [get]
func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		writeError(w, http.StatusBadRequest, "missing source query parameter")
		return
	}
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	list, err := s.orchestrator.ListAudits(r.Context(), source, limit)
	if err != nil {
		s.fail(w, "listing audits", err)
		return
	}
	s.logger.Info("listed audits", logging.Field{Key: "source", Value: source}, logging.Field{Key: "count", Value: len(list)})
	writeJSON(w, http.StatusOK, list)
}

// handleGetAudit godoc
// @Summary Get a stored audit
// @Tags audits
// @Produce json
// @Param id path string true "Audit id"
// @Success 200 {object} model.Report
// @Failure 404 {object} ErrorResponse
// @Router /audits/{id} [get]
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := s.orchestrator.GetAudit(r.Context(), id)
	if err != nil {
		s.fail(w, "getting audit", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleExportAudit godoc
// @Summary Download a stored audit
// @Tags audits
// @Produce json,text/csv,text/markdown,text/html,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Audit id"
// @Param format query string false "Output format" Enums(json, csv, xlsx, markdown, html)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /audits/{id}/export [get]
func (s *Server) handleExportAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(report.FormatJSON)
	}
	f, err := report.ParseFormat(name)
	if err != nil {
		s.fail(w, "exporting audit", err)
		return
	}

	var buf bytes.Buffer
	if err := s.orchestrator.ExportAudit(r.Context(), &buf, id, f); err != nil {
		s.fail(w, "exporting audit", err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"."+f.Ext()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleDiffAudits godoc
// @Summary Compare two stored audits
// @Tags audits
// @Produce json
// @Param base query string false "Base audit id; empty compares against nothing"
// @Param head query string true "Head audit id"
// @Success 200 {object} model.AuditDiff
// @Failure 404 {object} ErrorResponse
// @Router /audits/diff [get]
func (s *Server) handleDiffAudits(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	head := r.URL.Query().Get("head")
	if head == "" {
		writeError(w, http.StatusBadRequest, "missing head query parameter")
		return
	}

	d, err := s.orchestrator.DiffAudits(r.Context(), base, head)
	if err != nil {
		s.fail(w, "diffing audits", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Jobs (REST)

// handleStartBatchJob godoc
// @Summary Start a batch audit
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body BatchJobRequest true "URLs to audit"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Router /jobs/batch [post]
func (s *Server) handleStartBatchJob(w http.ResponseWriter, r *http.Request) {
	var body BatchJobRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.logger.Warn("decoding batch job body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.CrawlDepth < 0 {
		writeError(w, http.StatusBadRequest, "crawl_depth must not be negative")
		return
	}

	// the job outlives this request
	job, err := s.orchestrator.StartBatchJob(context.Background(), body.URLs, body.CrawlDepth)
	if err != nil {
		s.fail(w, "starting batch job", err)
		return
	}
	s.logger.Info("started batch job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "urls", Value: len(body.URLs)})
	writeJSON(w, http.StatusAccepted, job)
}

// handleGetJob godoc
// @Summary Get a batch job
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job id"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		s.logger.Warn("getting job: not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob godoc
// @Summary Cancel a batch job
// @Tags jobs
// @Param jobID path string true "Job id"
// @Success 204
// @Router /jobs/{jobID} [delete]
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if s.orchestrator.CancelJob(jobID) {
		s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListJobs godoc
// @Summary List batch jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} app.Job
// @Router /jobs [get]
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	s.logger.Info("listed jobs", logging.Field{Key: "count", Value: len(jobs)})
	writeJSON(w, http.StatusOK, jobs)
}

// WebSockets

// handleBatchWS starts a batch job for the url query values and streams its
// events until the job ends. Closing the socket cancels the job.
func (s *Server) handleBatchWS(w http.ResponseWriter, r *http.Request) {
	urls := r.URL.Query()["url"]
	depth := 0
	if ds := r.URL.Query().Get("crawl_depth"); ds != "" {
		if v, err := strconv.Atoi(ds); err == nil && v > 0 {
			depth = v
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	job, err := s.orchestrator.StartBatchJob(r.Context(), urls, depth)
	if err != nil {
		s.logger.Warn("starting batch job", logging.Field{Key: "error", Value: err.Error()})
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started batch job", logging.Field{Key: "job_id", Value: job.ID})
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"))
}
