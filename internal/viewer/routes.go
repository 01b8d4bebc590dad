package viewer

import (
	"net/http"
	"strconv"
	"time"

	reperrors "sizereport/internal/errors"
	"sizereport/internal/storage"
	"sizereport/internal/version"
)

// registerRoutes registers all viewer routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleRoot)
	s.router.HandleFunc("GET /size", s.handleSizePage)
	s.router.HandleFunc("GET /api/sizeReportInfo", s.handleSizeReportInfo)
	s.router.HandleFunc("GET /api/reports", s.handleListReports)
	s.router.HandleFunc("GET /api/reports/{id}", s.handleGetReport)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.Handle("GET /metrics", s.metrics.Handler())
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/size", http.StatusFound)
}

func (s *Server) handleSizePage(w http.ResponseWriter, r *http.Request) {
	loaded, err := s.reports.current(r.Context())
	if err != nil {
		s.logger.Warn("Report unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		renderMissing(w, err)
		return
	}
	if err := renderPage(w, loaded.report); err != nil {
		s.logger.Error("Failed to render report page", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) handleSizeReportInfo(w http.ResponseWriter, r *http.Request) {
	loaded, err := s.reports.current(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Report-Source", loaded.source)
	_, _ = w.Write(loaded.raw)
}

// ReportListResponse is the body of GET /api/reports
type ReportListResponse struct {
	Reports []*storage.ReportRun `json:"reports"`
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		WriteError(w, reperrors.Newf(reperrors.ReportNotFound, "report store is disabled"))
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.opts.Store.List(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	if runs == nil {
		runs = []*storage.ReportRun{}
	}
	WriteJSON(w, ReportListResponse{Reports: runs}, http.StatusOK)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	loaded, err := s.reports.stored(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(loaded.raw)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	Version         string    `json:"version"`
	ReportAvailable bool      `json:"reportAvailable"`
	StoreEnabled    bool      `json:"storeEnabled"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, err := s.reports.current(r.Context())
	WriteJSON(w, HealthResponse{
		Status:          "healthy",
		Timestamp:       time.Now(),
		Version:         version.Version,
		ReportAvailable: err == nil,
		StoreEnabled:    s.opts.Store != nil,
	}, http.StatusOK)
}
