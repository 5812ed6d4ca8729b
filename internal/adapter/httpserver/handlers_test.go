package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-career-advisor/internal/config"
	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
	obsctx "github.com/fairyhunter13/ai-career-advisor/internal/observability"
	"github.com/fairyhunter13/ai-career-advisor/internal/ui"
)

type stubFetcher struct {
	calls int32
	fn    func(ctx domain.Context, p domain.Profile) ([]domain.CareerSuggestion, error)
}

func (s *stubFetcher) Fetch(ctx domain.Context, p domain.Profile) ([]domain.CareerSuggestion, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.fn(ctx, p)
}

func (s *stubFetcher) Calls() int { return int(atomic.LoadInt32(&s.calls)) }

func okFetcher() *stubFetcher {
	return &stubFetcher{fn: func(domain.Context, domain.Profile) ([]domain.CareerSuggestion, error) {
		return []domain.CareerSuggestion{
			{Career: "Park Ranger", Description: "Protects parks", SalaryRange: "$40,000 - $60,000", Education: "BSc Forestry"},
			{Career: "Wildlife Photographer", Description: "Shoots animals, with a camera", SalaryRange: "$30,000 - $90,000", Education: "Portfolio"},
		}, nil
	}}
}

func failingFetcher(err error) *stubFetcher {
	return &stubFetcher{fn: func(domain.Context, domain.Profile) ([]domain.CareerSuggestion, error) { return nil, err }}
}

func newTestServer(t *testing.T, f domain.SuggestionFetcher, checks ...ReadinessCheck) *Server {
	t.Helper()
	srv, err := NewServer(config.Config{MaxFieldLength: 2000}, f, ui.NewRegistry(f), checks...)
	require.NoError(t, err)
	return srv
}

func formRequest(visitor string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/suggest", strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(obsctx.ContextWithVisitorID(req.Context(), visitor))
}

func TestIndexHandler_Placeholder(t *testing.T) {
	srv := newTestServer(t, okFetcher())
	rec := httptest.NewRecorder()
	srv.IndexHandler()(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, ui.PlaceholderMessage)
	assert.Contains(t, body, `value="50"`)
	assert.Contains(t, body, string(domain.BandIntermediate))
}

func TestSubmitHandler_ValidationSkipsFetch(t *testing.T) {
	f := okFetcher()
	srv := newTestServer(t, f)
	rec := httptest.NewRecorder()
	srv.SubmitHandler()(rec, formRequest("v1", url.Values{"interests": {""}, "personality": {"calm"}, "skillLevel": {"50"}}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), ui.ValidationMessage)
	assert.Equal(t, 0, f.Calls())
}

func TestSubmitHandler_SuccessRendersCardsInOrder(t *testing.T) {
	f := okFetcher()
	srv := newTestServer(t, f)
	rec := httptest.NewRecorder()
	srv.SubmitHandler()(rec, formRequest("v1", url.Values{"interests": {"hiking"}, "personality": {"calm"}, "skillLevel": {"80"}}))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	first := strings.Index(body, "Park Ranger")
	second := strings.Index(body, "Wildlife Photographer")
	require.True(t, first >= 0 && second > first, "cards missing or out of order")
	assert.Contains(t, body, "$40,000 - $60,000")
	assert.NotContains(t, body, ui.PlaceholderMessage)
	assert.Equal(t, 1, f.Calls())

	// the visitor's state persists across page loads
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.IndexHandler()(rec, req.WithContext(obsctx.ContextWithVisitorID(req.Context(), "v1")))
	assert.Contains(t, rec.Body.String(), "Park Ranger")
}

func TestSubmitHandler_FetchFailureShowsGenericMessage(t *testing.T) {
	f := failingFetcher(&domain.FormatError{Raw: "not json at all", Reason: "bad"})
	srv := newTestServer(t, f)
	rec := httptest.NewRecorder()
	srv.SubmitHandler()(rec, formRequest("v1", url.Values{"interests": {"hiking"}, "personality": {"calm"}}))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Failed to get career suggestions. Please check your API key and try again.")
	assert.NotContains(t, body, "not json at all")
}

func TestSubmitHandler_BusyWhileLoading(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := &stubFetcher{fn: func(domain.Context, domain.Profile) ([]domain.CareerSuggestion, error) {
		close(started)
		<-release
		return okFetcher().fn(nil, domain.Profile{})
	}}
	srv := newTestServer(t, f)
	form := url.Values{"interests": {"hiking"}, "personality": {"calm"}}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		srv.SubmitHandler()(httptest.NewRecorder(), formRequest("v1", form))
	}()
	<-started

	rec := httptest.NewRecorder()
	srv.SubmitHandler()(rec, formRequest("v1", form))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "disabled")

	close(release)
	wg.Wait()
	assert.Equal(t, 1, f.Calls())
}

func TestSuggestionsHandler_Success(t *testing.T) {
	var got domain.Profile
	f := okFetcher()
	inner := f.fn
	f.fn = func(ctx domain.Context, p domain.Profile) ([]domain.CareerSuggestion, error) {
		got = p
		return inner(ctx, p)
	}
	srv := newTestServer(t, f)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/suggestions", strings.NewReader(`{"interests":" hiking ","personality":"calm"}`))
	req.Header.Set("Accept", "application/json")
	srv.SuggestionsHandler()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		SkillBand   string                    `json:"skillBand"`
		Suggestions []domain.CareerSuggestion `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.BandIntermediate), resp.SkillBand)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "Park Ranger", resp.Suggestions[0].Career)
	assert.Equal(t, domain.Profile{Interests: "hiking", Personality: "calm", SkillLevel: 50}, got)
}

func TestSuggestionsHandler_Validation(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"blank interests", `{"interests":"   ","personality":"calm"}`, "interests"},
		{"missing personality", `{"interests":"hiking"}`, "personality"},
		{"level too high", `{"interests":"hiking","personality":"calm","skillLevel":101}`, "skillLevel"},
		{"level negative", `{"interests":"hiking","personality":"calm","skillLevel":-1}`, "skillLevel"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := okFetcher()
			srv := newTestServer(t, f)
			rec := httptest.NewRecorder()
			srv.SuggestionsHandler()(rec, httptest.NewRequest(http.MethodPost, "/v1/suggestions", strings.NewReader(c.body)))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var env struct {
				Error struct {
					Code    string            `json:"code"`
					Details map[string]string `json:"details"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, "INVALID_ARGUMENT", env.Error.Code)
			assert.Contains(t, env.Error.Details, c.field)
			assert.Equal(t, 0, f.Calls())
		})
	}
}

func TestSuggestionsHandler_InvalidJSONAndAccept(t *testing.T) {
	srv := newTestServer(t, okFetcher())

	rec := httptest.NewRecorder()
	srv.SuggestionsHandler()(rec, httptest.NewRequest(http.MethodPost, "/v1/suggestions", strings.NewReader(`{`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/suggestions", strings.NewReader(`{}`))
	req.Header.Set("Accept", "text/html")
	srv.SuggestionsHandler()(rec, req)
	require.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestSuggestionsHandler_FetchErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("op=gemini.Generate: %w", domain.ErrMissingCredential), http.StatusServiceUnavailable, "MISCONFIGURED"},
		{fmt.Errorf("op=gemini.Generate: %w: secret detail", domain.ErrUpstream), http.StatusBadGateway, "UPSTREAM_FAILED"},
		{domain.ErrEmptyResponse, http.StatusBadGateway, "UPSTREAM_FAILED"},
		{&domain.FormatError{Reason: "x"}, http.StatusBadGateway, "UPSTREAM_FAILED"},
	}
	for _, c := range cases {
		t.Run(c.code+"/"+c.err.Error(), func(t *testing.T) {
			srv := newTestServer(t, failingFetcher(c.err))
			rec := httptest.NewRecorder()
			srv.SuggestionsHandler()(rec, httptest.NewRequest(http.MethodPost, "/v1/suggestions", strings.NewReader(`{"interests":"a","personality":"b"}`)))

			require.Equal(t, c.status, rec.Code)
			var env errorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, c.code, env.Error.Code)
			assert.Equal(t, ui.FetchFailedMessage, env.Error.Message)
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestSkillBandHandler(t *testing.T) {
	srv := newTestServer(t, okFetcher())
	cases := []struct {
		q      string
		status int
		band   domain.SkillBand
	}{
		{"0", http.StatusOK, domain.BandBeginner},
		{"32", http.StatusOK, domain.BandBeginner},
		{"33", http.StatusOK, domain.BandIntermediate},
		{"66", http.StatusOK, domain.BandAdvanced},
		{"101", http.StatusBadRequest, ""},
		{"abc", http.StatusBadRequest, ""},
		{"", http.StatusBadRequest, ""},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		srv.SkillBandHandler()(rec, httptest.NewRequest(http.MethodGet, "/v1/skill-band?level="+c.q, nil))
		require.Equal(t, c.status, rec.Code, "level=%q", c.q)
		if c.status == http.StatusOK {
			var body struct {
				Level int    `json:"level"`
				Band  string `json:"band"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(c.band), body.Band)
		}
	}
}

func TestReadyzHandler(t *testing.T) {
	ok := ReadinessCheck{Name: "prompts", Check: func(context.Context) error { return nil }}
	bad := ReadinessCheck{Name: "gemini_credential", Check: func(context.Context) error { return errors.New("GEMINI_API_KEY not set") }}

	rec := httptest.NewRecorder()
	newTestServer(t, okFetcher(), ok).ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newTestServer(t, okFetcher(), ok, bad).ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "GEMINI_API_KEY not set")
}

func TestHealthzAndStatic(t *testing.T) {
	srv := newTestServer(t, okFetcher())

	rec := httptest.NewRecorder()
	srv.HealthzHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.StaticHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".cards")
}
