package app_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/fairyhunter13/ai-career-advisor/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-career-advisor/internal/app"
	"github.com/fairyhunter13/ai-career-advisor/internal/config"
	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
	"github.com/fairyhunter13/ai-career-advisor/internal/ui"
)

type fixedFetcher []domain.CareerSuggestion

func (f fixedFetcher) Fetch(domain.Context, domain.Profile) ([]domain.CareerSuggestion, error) {
	return f, nil
}

func newRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	f := fixedFetcher{{Career: "Park Ranger", Description: "d", SalaryRange: "s", Education: "e"}}
	reg := ui.NewRegistry(f)
	srv, err := httpserver.NewServer(cfg, f, reg, app.BuildReadinessChecks(cfg, config.DefaultPrompts())...)
	require.NoError(t, err)
	return app.BuildRouter(cfg, srv, httpserver.NewVisitorSessions(cfg))
}

func TestBuildRouter_Healthz_And_Readyz(t *testing.T) {
	cfg := config.Config{Port: 8080, MaxFieldLength: 2000, SessionTTL: time.Minute}
	h := newRouter(t, cfg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// no credential configured
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	cfg.GeminiAPIKey = "k"
	rec = httptest.NewRecorder()
	newRouter(t, cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildRouter_FormFlowKeepsVisitorState(t *testing.T) {
	h := newRouter(t, config.Config{MaxFieldLength: 2000, SessionTTL: time.Minute, SessionSecret: "0123456789abcdef0123456789abcdef"})

	form := url.Values{"interests": {"hiking"}, "personality": {"calm"}, "skillLevel": {"40"}}
	req := httptest.NewRequest(http.MethodPost, "/suggest", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Park Ranger")
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "Park Ranger")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	// a fresh visitor sees the placeholder
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), ui.PlaceholderMessage)
}

func TestBuildRouter_APIAndMetrics(t *testing.T) {
	h := newRouter(t, config.Config{MaxFieldLength: 2000})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/skill-band?level=90", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(domain.BandAdvanced))

	req := httptest.NewRequest(http.MethodPost, "/v1/suggestions", strings.NewReader(`{"interests":"a","personality":"b","skillLevel":10}`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(domain.BandBeginner))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
