package httpserver

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-career-advisor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-career-advisor/internal/config"
	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
	obsctx "github.com/fairyhunter13/ai-career-advisor/internal/observability"
	"github.com/fairyhunter13/ai-career-advisor/internal/ui"
	"github.com/fairyhunter13/ai-career-advisor/internal/usecase"
	"github.com/fairyhunter13/ai-career-advisor/pkg/textx"
)

//go:embed static
var staticFiles embed.FS

//go:embed templates/*.html
var templateFiles embed.FS

// ReadinessCheck is one named dependency probe reported by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server aggregates handlers dependencies.
type Server struct {
	Cfg      config.Config
	Fetcher  domain.SuggestionFetcher
	Visitors *ui.Registry
	Checks   []ReadinessCheck

	pages *template.Template
}

// NewServer constructs an HTTP server with the page templates parsed.
func NewServer(cfg config.Config, fetcher domain.SuggestionFetcher, visitors *ui.Registry, checks ...ReadinessCheck) (*Server, error) {
	pages, err := template.New("pages").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("op=httpserver.NewServer: parse templates: %w", err)
	}
	if visitors == nil {
		visitors = ui.NewRegistry(fetcher)
	}
	return &Server{Cfg: cfg, Fetcher: fetcher, Visitors: visitors, Checks: checks, pages: pages}, nil
}

type pageData struct {
	State       ui.State
	SkillLabel  string
	MinLevel    int
	MaxLevel    int
	Placeholder string
}

func (p pageData) Failed() bool  { return p.State.Phase == ui.PhaseFailed }
func (p pageData) Loading() bool { return p.State.Loading() }
func (p pageData) Success() bool { return p.State.Phase == ui.PhaseSuccess && len(p.State.Suggestions) > 0 }

func (s *Server) controllerFor(r *http.Request) *ui.Controller {
	if id := obsctx.VisitorIDFromContext(r.Context()); id != "" {
		return s.Visitors.Controller(id)
	}
	// no visitor cookie middleware in front; state lives for this request only
	return ui.NewController(s.Fetcher)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, st ui.State) {
	data := pageData{
		State:       st,
		SkillLabel:  st.Form.SkillLabel(),
		MinLevel:    domain.MinSkillLevel,
		MaxLevel:    domain.MaxSkillLevel,
		Placeholder: ui.PlaceholderMessage,
	}
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "index.html", data); err != nil {
		LoggerFrom(r).Error("template render failed", slog.Any("error", err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// IndexHandler renders the form and the visitor's current output region.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, s.controllerFor(r).Snapshot())
	}
}

// SubmitHandler runs the form post through the visitor's controller.
func (s *Server) SubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.formBodyLimit())
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			return
		}
		in := ui.ParseForm(r.PostForm, s.Cfg.MaxFieldLength)
		st, err := s.controllerFor(r).Submit(r.Context(), in)
		observability.RecordSuggestionOutcome(outcomeOf(err), len(st.Suggestions))

		status := http.StatusOK
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrBusy):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInvalidArgument):
			status = http.StatusUnprocessableEntity
		default:
			status = http.StatusBadGateway
		}
		s.render(w, r, status, st)
	}
}

func (s *Server) formBodyLimit() int64 {
	// each rune may be up to 4 bytes and percent-encoding triples that
	return int64(s.Cfg.MaxFieldLength)*12*2 + 4096
}

type suggestionsRequest struct {
	Interests   string `json:"interests" validate:"required"`
	Personality string `json:"personality" validate:"required"`
	SkillLevel  *int   `json:"skillLevel" validate:"omitempty,min=0,max=100"`
}

type suggestionsResponse struct {
	SkillBand   domain.SkillBand          `json:"skillBand"`
	Suggestions []domain.CareerSuggestion `json:"suggestions"`
}

// SuggestionsHandler is the stateless JSON form of the fetch.
func (s *Server) SuggestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a := r.Header.Get("Accept"); a != "" && a != "*/*" && !strings.Contains(a, "application/json") {
			writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: "not acceptable", Details: map[string]any{"accept": a}}})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req suggestionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		req.Interests = textx.Truncate(textx.SanitizeText(req.Interests), s.Cfg.MaxFieldLength)
		req.Personality = textx.Truncate(textx.SanitizeText(req.Personality), s.Cfg.MaxFieldLength)
		if err := usecase.Validator().Struct(req); err != nil {
			verrs := map[string]string{}
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				for _, fe := range ve {
					verrs[fe.Field()] = fe.Tag()
				}
			}
			observability.RecordSuggestionOutcome(observability.OutcomeValidation, 0)
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}

		p := domain.Profile{Interests: req.Interests, Personality: req.Personality, SkillLevel: domain.DefaultSkillLevel}
		if req.SkillLevel != nil {
			p.SkillLevel = *req.SkillLevel
		}
		suggestions, err := s.Fetcher.Fetch(r.Context(), p)
		observability.RecordSuggestionOutcome(outcomeOf(err), len(suggestions))
		if err != nil {
			LoggerFrom(r).Error("career suggestion fetch failed", slog.Any("error", err))
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, suggestionsResponse{SkillBand: usecase.ClassifySkill(p.SkillLevel), Suggestions: suggestions})
	}
}

// SkillBandHandler returns the band label for ?level=N.
func (s *Server) SkillBandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("level")
		level, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || level < domain.MinSkillLevel || level > domain.MaxSkillLevel {
			writeError(w, r, fmt.Errorf("%w: level must be an integer between %d and %d", domain.ErrInvalidArgument, domain.MinSkillLevel, domain.MaxSkillLevel),
				map[string]string{"level": raw})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"level": level, "band": usecase.ClassifySkill(level)})
	}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler runs every readiness check and answers 503 if any fails.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, len(s.Checks))
		ok := true
		for _, c := range s.Checks {
			if err := c.Check(ctx); err != nil {
				ok = false
				checks = append(checks, check{Name: c.Name, OK: false, Details: err.Error()})
				continue
			}
			checks = append(checks, check{Name: c.Name, OK: true})
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}

// StaticHandler serves the embedded stylesheet and script under /static/.
func (s *Server) StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
