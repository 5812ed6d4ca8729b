// Package ui holds the presentation state machine for the suggestion form.
//
// Each visitor owns one Controller. Its State moves through
// Idle -> Validating -> Loading -> Success|Failed and back to Loading on the
// next submit; suggestions and the error message are never populated together.
package ui

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
	"github.com/fairyhunter13/ai-career-advisor/internal/usecase"
	"github.com/fairyhunter13/ai-career-advisor/pkg/textx"
)

// Phase is the controller's position in the submit lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseLoading    Phase = "loading"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
)

// User-facing messages. Underlying errors are logged, never rendered.
const (
	ValidationMessage  = "Please fill out both interests and personality fields."
	FetchFailedMessage = "Failed to get career suggestions. Please check your API key and try again."
	PlaceholderMessage = "Your future career suggestions will appear here."
)

// FormInput is what the form posts.
type FormInput struct {
	Interests   string
	Personality string
	SkillLevel  int
}

// NewFormInput returns an empty form at the default skill level.
func NewFormInput() FormInput {
	return FormInput{SkillLevel: domain.DefaultSkillLevel}
}

// ParseForm reads interests, personality and skillLevel from posted form
// values. Text is sanitized and cut to maxLen runes when maxLen > 0; a
// missing or malformed level falls back to the default and out-of-range
// values are clamped the way a range control would.
func ParseForm(v url.Values, maxLen int) FormInput {
	in := FormInput{
		Interests:   cleanField(v.Get("interests"), maxLen),
		Personality: cleanField(v.Get("personality"), maxLen),
		SkillLevel:  domain.DefaultSkillLevel,
	}
	if raw := strings.TrimSpace(v.Get("skillLevel")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			in.SkillLevel = clampLevel(n)
		}
	}
	return in
}

// Profile converts the form into the domain triple.
func (in FormInput) Profile() domain.Profile {
	return domain.Profile{
		Interests:   in.Interests,
		Personality: in.Personality,
		SkillLevel:  in.SkillLevel,
	}
}

// SkillLabel is the live label shown next to the range control.
func (in FormInput) SkillLabel() string { return SkillLabel(in.SkillLevel) }

// SkillLabel returns the band label for level.
func SkillLabel(level int) string {
	return string(usecase.ClassifySkill(level))
}

func cleanField(s string, maxLen int) string {
	s = textx.SanitizeText(s)
	if maxLen > 0 {
		s = textx.Truncate(s, maxLen)
	}
	return s
}

func clampLevel(n int) int {
	if n < domain.MinSkillLevel {
		return domain.MinSkillLevel
	}
	if n > domain.MaxSkillLevel {
		return domain.MaxSkillLevel
	}
	return n
}

// State is a value snapshot of one visitor's output region.
type State struct {
	Phase       Phase
	Form        FormInput
	Suggestions []domain.CareerSuggestion
	Error       string
}

// Loading reports whether a fetch is in flight; the submit control is
// disabled while it is true.
func (s State) Loading() bool { return s.Phase == PhaseLoading }

func (s State) clone() State {
	if s.Suggestions != nil {
		s.Suggestions = append([]domain.CareerSuggestion(nil), s.Suggestions...)
	}
	return s
}
