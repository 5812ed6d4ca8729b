package usecase

import (
	"strings"

	"github.com/fairyhunter13/ai-career-advisor/internal/config"
	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
)

// PromptBuilder renders the profile prompt and exposes the system instruction.
type PromptBuilder struct {
	prompts config.Prompts
}

// NewPromptBuilder constructs a PromptBuilder over the given prompt texts.
func NewPromptBuilder(p config.Prompts) PromptBuilder {
	return PromptBuilder{prompts: p}
}

// SystemInstruction returns the fixed instruction describing the model's role
// and the required output shape.
func (b PromptBuilder) SystemInstruction() string { return b.prompts.SystemInstruction }

// Build embeds the profile into the template. User text is inserted verbatim;
// a single-pass replacer keeps placeholders typed by the user from being expanded.
func (b PromptBuilder) Build(interests, personality string, band domain.SkillBand) string {
	r := strings.NewReplacer(
		"{{interests}}", interests,
		"{{personality}}", personality,
		"{{skill_level}}", string(band),
	)
	return r.Replace(b.prompts.ProfileTemplate)
}

// BuildPrompt renders the profile prompt with the embedded default template.
func BuildPrompt(interests, personality string, band domain.SkillBand) string {
	return NewPromptBuilder(config.DefaultPrompts()).Build(interests, personality, band)
}

// SuggestionSchema is the strict output schema sent with every request:
// {suggestions: [{career, description, salaryRange, education}]}, all required strings.
func SuggestionSchema() *domain.ResponseSchema {
	str := func(desc string) *domain.ResponseSchema {
		return &domain.ResponseSchema{Type: domain.SchemaString, Description: desc}
	}
	fields := []string{"career", "description", "salaryRange", "education"}
	return &domain.ResponseSchema{
		Type: domain.SchemaObject,
		Properties: map[string]*domain.ResponseSchema{
			"suggestions": {
				Type: domain.SchemaArray,
				Items: &domain.ResponseSchema{
					Type: domain.SchemaObject,
					Properties: map[string]*domain.ResponseSchema{
						"career":      str("The name of the career path."),
						"description": str("A short summary of why this career fits the user's profile."),
						"salaryRange": str("A typical salary range, e.g., '$60,000 - $90,000 USD'."),
						"education":   str("Common educational requirements for this career."),
					},
					Order:    fields,
					Required: fields,
				},
			},
		},
		Required: []string{"suggestions"},
	}
}
