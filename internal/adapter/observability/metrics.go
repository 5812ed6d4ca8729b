package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of generative AI requests by provider and model",
		},
		[]string{"provider", "model"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Generative AI request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"provider", "model"},
	)
	AITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_total",
			Help: "Tokens reported by the generative service, by direction (prompt|completion)",
		},
		[]string{"provider", "model", "direction"},
	)

	SuggestionOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestion_outcomes_total",
			Help: "Suggestion fetch outcomes by kind",
		},
		[]string{"outcome"},
	)
	SuggestionsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "suggestions_returned",
			Help:    "Number of suggestion records returned per successful fetch",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)
)

// Outcome labels for SuggestionOutcomesTotal.
const (
	OutcomeSuccess       = "success"
	OutcomeValidation    = "validation"
	OutcomeBusy          = "busy"
	OutcomeMisconfigured = "misconfigured"
	OutcomeEmptyResponse = "empty_response"
	OutcomeInvalidFormat = "invalid_format"
	OutcomeUpstream      = "upstream"
	OutcomeUnknown       = "unknown"
)

var initOnce sync.Once

// InitMetrics registers all collectors with the default registry once per process.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			AITokensTotal,
			SuggestionOutcomesTotal,
			SuggestionsReturned,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAIRequest records one completed call to the generative service.
func ObserveAIRequest(provider, model string, d time.Duration) {
	AIRequestsTotal.WithLabelValues(provider, model).Inc()
	AIRequestDuration.WithLabelValues(provider, model).Observe(d.Seconds())
}

// RecordAITokenUsage adds provider-reported token counts; non-positive counts are ignored.
func RecordAITokenUsage(provider, model string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		AITokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		AITokensTotal.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}

// RecordSuggestionOutcome counts one fetch outcome; n is the number of records
// returned and is only observed for OutcomeSuccess.
func RecordSuggestionOutcome(outcome string, n int) {
	if outcome == "" {
		outcome = OutcomeUnknown
	}
	SuggestionOutcomesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		SuggestionsReturned.Observe(float64(n))
	}
}
