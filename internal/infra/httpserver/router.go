package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/admitlens/admitlens/internal/application/analysis"
	appinsight "github.com/admitlens/admitlens/internal/application/insight"
	domai "github.com/admitlens/admitlens/internal/domain/ai"
	"github.com/admitlens/admitlens/internal/domain/audit"
	"github.com/admitlens/admitlens/internal/domain/insight"
	"github.com/admitlens/admitlens/internal/domain/profile"
	"github.com/admitlens/admitlens/internal/middleware"
)

type Router struct {
	analysisSvc *appanalysis.Service
	insightSvc  *appinsight.Service
}

func NewRouter(analysisSvc *appanalysis.Service, insightSvc *appinsight.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{analysisSvc: analysisSvc, insightSvc: insightSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(middleware.RequireValidTenant)
		rt.Post("/profiles/{profile}/analysis", r.wrap(r.handleAnalyze))
		rt.Get("/profiles/{profile}/analysis", r.wrap(r.handleGetAnalysis))
		rt.Post("/profiles/{profile}/institutions/{institution}/insight", r.wrap(r.handleInsight))
		rt.Get("/profiles/{profile}/institutions/{institution}/insight", r.wrap(r.handleGetInsight))
		rt.Get("/audit", r.wrap(r.handleAuditLog))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// errNotFound marks lookups for subjects that have no stored analysis yet.
var errNotFound = errors.New("not found")

type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var badReq badRequestError
			switch {
			case errors.As(err, &badReq):
				http.Error(w, badReq.Error(), http.StatusBadRequest)
			case errors.Is(err, errNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domai.ErrQuotaExceeded):
				middleware.IncrementAnalyzerFailures()
				w.Header().Set("Retry-After", "60")
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			case errors.Is(err, domai.ErrUnavailable), errors.Is(err, domai.ErrMalformedOutput):
				middleware.IncrementAnalyzerFailures()
				http.Error(w, "analysis unavailable: "+err.Error(), http.StatusBadGateway)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// POST /v1/{tenant}/profiles/{profile}/analysis
// Body: the full current profile plus cache-control flags. The response is
// always a complete analysis; cached/partial flags tell the caller how it was
// produced.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	profileID := chi.URLParam(req, "profile")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateProfileID(profileID); err != nil {
		return badRequestError{err}
	}

	var body struct {
		Profile       profile.Profile `json:"profile"`
		ForceRefresh  bool            `json:"force_refresh"`
		AllowDegraded bool            `json:"allow_degraded"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestError{fmt.Errorf("invalid request body: %w", err)}
	}
	if err := middleware.ValidateProfile(body.Profile); err != nil {
		return badRequestError{err}
	}

	middleware.IncrementAnalyses()
	out, err := r.analysisSvc.Analyze(req.Context(), appanalysis.AnalyzeCommand{
		TenantID:      tenant,
		ProfileID:     profileID,
		Profile:       body.Profile,
		ForceRefresh:  body.ForceRefresh,
		AllowDegraded: body.AllowDegraded,
	})
	if err != nil {
		return err
	}
	switch {
	case out.Cached:
		middleware.IncrementCacheHits()
	case out.Partial:
		middleware.IncrementPartialRecomputes()
	default:
		middleware.IncrementFullRecomputes()
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(out)
}

// GET /v1/{tenant}/profiles/{profile}/analysis
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	profileID := chi.URLParam(req, "profile")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateProfileID(profileID); err != nil {
		return badRequestError{err}
	}

	rec, err := r.analysisSvc.Latest(req.Context(), tenant, profileID)
	if err != nil {
		return err
	}
	if rec == nil {
		return errNotFound
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}

// POST /v1/{tenant}/profiles/{profile}/institutions/{institution}/insight
func (r *Router) handleInsight(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	profileID := chi.URLParam(req, "profile")
	institutionID := chi.URLParam(req, "institution")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateProfileID(profileID); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateInstitutionID(institutionID); err != nil {
		return badRequestError{err}
	}

	var body struct {
		Profile      profile.Profile     `json:"profile"`
		Institution  insight.Institution `json:"institution"`
		ForceRefresh bool                `json:"force_refresh"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestError{fmt.Errorf("invalid request body: %w", err)}
	}
	if err := middleware.ValidateProfile(body.Profile); err != nil {
		return badRequestError{err}
	}
	body.Institution.ID = institutionID

	middleware.IncrementAnalyses()
	out, err := r.insightSvc.Insight(req.Context(), appinsight.InsightCommand{
		TenantID:     tenant,
		ProfileID:    profileID,
		Profile:      body.Profile,
		Institution:  body.Institution,
		ForceRefresh: body.ForceRefresh,
	})
	if err != nil {
		return err
	}
	if out.Cached {
		middleware.IncrementCacheHits()
	} else {
		middleware.IncrementFullRecomputes()
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(out)
}

// GET /v1/{tenant}/audit?page=1&page_size=20
func (r *Router) handleAuditLog(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequestError{err}
	}

	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	pageSize = middleware.ValidateLimit(pageSize)

	entries, err := r.analysisSvc.AuditLog(req.Context(), tenant, page, pageSize)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"page":      page,
		"page_size": pageSize,
		"entries":   entries,
	})
}

// GET /v1/{tenant}/profiles/{profile}/institutions/{institution}/insight
func (r *Router) handleGetInsight(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	profileID := chi.URLParam(req, "profile")
	institutionID := chi.URLParam(req, "institution")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateProfileID(profileID); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateInstitutionID(institutionID); err != nil {
		return badRequestError{err}
	}

	rec, err := r.insightSvc.Latest(req.Context(), tenant, profileID, institutionID)
	if err != nil {
		return err
	}
	if rec == nil {
		return errNotFound
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}
