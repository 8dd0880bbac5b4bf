package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/alert-feed/pkg/cache"
	"github.com/Sternrassler/alert-feed/pkg/client"
	"github.com/Sternrassler/alert-feed/pkg/metrics"
	"github.com/Sternrassler/alert-feed/pkg/pagination"
	"github.com/Sternrassler/alert-feed/pkg/stats"
	"github.com/Sternrassler/alert-feed/pkg/validation"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	maxPageSize = 100

	// maxBodyBytes caps form and report request bodies
	maxBodyBytes = 1 << 20
)

type server struct {
	cfg     config
	redis   *redis.Client
	cache   *cache.Manager
	fetcher pagination.Fetcher[client.Alert]
	logger  zerolog.Logger
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", s.readyHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /alerts", s.alertsHandler)
	mux.HandleFunc("DELETE /alerts/cache", s.invalidateHandler)
	mux.HandleFunc("POST /destinations/validate", validateDestinationHandler)
	mux.HandleFunc("POST /stats/policies", policiesChartHandler)
	return s.logRequests(mux)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (s *server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.redis.Ping(r.Context()).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("Readiness check failed")
		http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// alertsResponse is the accumulated list as rendered for clients.
type alertsResponse struct {
	Items   []client.Alert `json:"items"`
	HasMore bool           `json:"hasMore"`
	Loading bool           `json:"loading"`
	// Empty is set when there are no alerts at all, as opposed to a filter
	// that matched nothing
	Empty bool   `json:"empty"`
	Error string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// alertsHandler loads up to max_pages pages of the alert list into a fresh
// accumulator and renders its state. A failure of the first page is a 502;
// a later failure keeps the items loaded so far and reports the error.
func (s *server) alertsHandler(w http.ResponseWriter, r *http.Request) {
	params, pageSize, maxPages, err := s.parseAlertsQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	acc := pagination.New(s.fetcher, pagination.Config{
		Name:     "http-alerts",
		PageSize: pageSize,
		Timeout:  s.cfg.FetchTimeout,
	})

	ctx := r.Context()
	if err := acc.Initialize(ctx, params); err != nil {
		s.logger.Warn().Err(err).Str("params", params.Key()).Msg("Initial alert page failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: client.ExtractErrorMessage(err)})
		return
	}

	if maxPages > 1 {
		if _, err := acc.Drain(ctx, maxPages-1); err != nil {
			s.logger.Warn().Err(err).Int("items", acc.Len()).Msg("Loading further alert pages failed")
		}
	}

	state := acc.State()
	resp := alertsResponse{
		Items:   state.Items,
		HasMore: state.HasMore,
		Loading: state.Loading,
		Empty:   len(state.Items) == 0 && params.IsEmpty(),
		Error:   client.ExtractErrorMessage(state.Err),
	}
	if resp.Items == nil {
		resp.Items = []client.Alert{}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *server) parseAlertsQuery(r *http.Request) (pagination.Params, int, int, error) {
	q := r.URL.Query()

	sortDir, err := pagination.ParseSortDir(q.Get("sort_dir"))
	if err != nil {
		return pagination.Params{}, 0, 0, err
	}

	params := pagination.Params{
		SortDir:      sortDir,
		Severity:     q["severity"],
		Status:       q["status"],
		NameContains: q.Get("name_contains"),
		RuleID:       q.Get("rule_id"),
	}
	if sortDir != "" {
		params.SortBy = pagination.SortFieldCreatedAt
	}

	for name, target := range map[string]**time.Time{
		"created_after":  &params.CreatedAtAfter,
		"created_before": &params.CreatedAtBefore,
	} {
		if v := q.Get(name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return pagination.Params{}, 0, 0, fmt.Errorf("invalid %s %q: expected RFC 3339 time", name, v)
			}
			*target = &t
		}
	}

	pageSize, err := intParam(q.Get("page_size"), s.cfg.PageSize, 1, maxPageSize)
	if err != nil {
		return pagination.Params{}, 0, 0, fmt.Errorf("page_size: %w", err)
	}

	maxPages, err := intParam(q.Get("max_pages"), 1, 1, s.cfg.MaxPages)
	if err != nil {
		return pagination.Params{}, 0, 0, fmt.Errorf("max_pages: %w", err)
	}

	return params, pageSize, maxPages, nil
}

func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("must be between %d and %d (got %d)", lo, hi, n)
	}
	return n, nil
}

func (s *server) invalidateHandler(w http.ResponseWriter, r *http.Request) {
	n, err := s.cache.InvalidateQuery(r.Context(), client.OperationListAlerts)
	if err != nil {
		s.logger.Error().Err(err).Msg("Cache invalidation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "cache invalidation failed"})
		return
	}

	s.logger.Info().Int("deleted", n).Msg("Alert page cache invalidated")
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// validateDestinationHandler checks destination form values. The output type
// comes from ?type= (default customwebhook); ?existing=true validates an edit.
func validateDestinationHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	outputType := q.Get("type")
	if outputType == "" {
		outputType = validation.OutputTypeCustomWebhook
	}
	existing, _ := strconv.ParseBool(q.Get("existing"))

	schema, err := validation.DestinationSchema(outputType, existing)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var values map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&values); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	errs := validation.Validate(schema, values)
	if len(errs) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusUnprocessableEntity, map[string]validation.FieldErrors{"errors": errs})
}

func policiesChartHandler(w http.ResponseWriter, r *http.Request) {
	var report stats.ReportBySeverity
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&report); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	writeJSON(w, http.StatusOK, stats.FailingPoliciesChart(report))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
