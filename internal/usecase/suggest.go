// Package usecase contains application business logic services.
package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairyhunter13/ai-career-advisor/internal/config"
	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
	"github.com/fairyhunter13/ai-career-advisor/internal/observability"
)

// SuggestionService turns a profile into career suggestions with exactly one
// call to the generative service. It implements domain.SuggestionFetcher.
type SuggestionService struct {
	Gen     domain.Generator
	Model   string
	Prompts PromptBuilder
}

// NewSuggestionService constructs a SuggestionService with its dependencies.
func NewSuggestionService(gen domain.Generator, model string, prompts config.Prompts) SuggestionService {
	return SuggestionService{Gen: gen, Model: model, Prompts: NewPromptBuilder(prompts)}
}

// Fetch validates the profile, calls the generator once and parses the reply.
// Errors wrap one of domain.ErrInvalidArgument, ErrMissingCredential,
// ErrUpstream, ErrEmptyResponse or ErrInvalidFormat.
func (s SuggestionService) Fetch(ctx domain.Context, p domain.Profile) ([]domain.CareerSuggestion, error) {
	lg := observability.LoggerFromContext(ctx)

	p, err := ValidateProfile(p)
	if err != nil {
		return nil, fmt.Errorf("op=usecase.Fetch: %w", err)
	}
	if s.Gen == nil {
		return nil, fmt.Errorf("op=usecase.Fetch: %w: generator not configured", domain.ErrMissingCredential)
	}

	band := ClassifySkill(p.SkillLevel)
	req := domain.GenerateRequest{
		Model:             s.Model,
		SystemInstruction: s.Prompts.SystemInstruction(),
		Prompt:            s.Prompts.Build(p.Interests, p.Personality, band),
		Schema:            SuggestionSchema(),
	}

	start := time.Now()
	text, err := s.Gen.Generate(ctx, req)
	if err != nil {
		lg.Error("generative call failed",
			slog.String("model", s.Model),
			slog.String("skill_band", string(band)),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return nil, fmt.Errorf("op=usecase.Fetch: %w", err)
	}

	suggestions, err := ParseSuggestions(text)
	if err != nil {
		var fe *domain.FormatError
		switch {
		case errors.As(err, &fe):
			lg.Error("failed to parse generative response",
				slog.String("reason", fe.Reason),
				slog.String("raw", fe.Raw))
		case errors.Is(err, domain.ErrEmptyResponse):
			lg.Error("received an empty response from the generative service", slog.String("model", s.Model))
		}
		return nil, fmt.Errorf("op=usecase.Fetch: %w", err)
	}

	lg.Info("career suggestions generated",
		slog.String("model", s.Model),
		slog.String("skill_band", string(band)),
		slog.Int("count", len(suggestions)),
		slog.Duration("duration", time.Since(start)))
	return suggestions, nil
}
