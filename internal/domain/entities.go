package domain

import (
	"context"
	"errors"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMissingCredential = errors.New("missing credential")
	ErrEmptyResponse     = errors.New("empty response")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrUpstream          = errors.New("upstream failure")
	ErrBusy              = errors.New("request already in flight")
)

// FormatError reports a generative response that could not be decoded into
// suggestion records. Raw keeps the unparsable text for diagnostics only and
// is never rendered to users.
type FormatError struct {
	Raw    string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Reason == "" {
		return ErrInvalidFormat.Error()
	}
	return ErrInvalidFormat.Error() + ": " + e.Reason
}

// Unwrap lets errors.Is match ErrInvalidFormat.
func (e *FormatError) Unwrap() error { return ErrInvalidFormat }

// SkillBand is one of three ordinal labels derived from a 0-100 skill level.
type SkillBand string

const (
	BandBeginner     SkillBand = "Beginner / Entry-Level"
	BandIntermediate SkillBand = "Intermediate / Some Experience"
	BandAdvanced     SkillBand = "Advanced / Expert"
)

// Skill level bounds accepted at the input boundary.
const (
	MinSkillLevel     = 0
	MaxSkillLevel     = 100
	DefaultSkillLevel = 50
)

// Profile is the triple supplied by the user.
// Invariants: Interests and Personality non-blank; SkillLevel in [0,100].
type Profile struct {
	Interests   string `json:"interests" validate:"required"`
	Personality string `json:"personality" validate:"required"`
	SkillLevel  int    `json:"skillLevel" validate:"min=0,max=100"`
}

// CareerSuggestion is one AI-produced career recommendation.
type CareerSuggestion struct {
	Career      string `json:"career" validate:"required"`
	Description string `json:"description" validate:"required"`
	SalaryRange string `json:"salaryRange" validate:"required"`
	Education   string `json:"education" validate:"required"`
}

// SchemaType enumerates the JSON schema node kinds the generative service understands.
type SchemaType string

const (
	SchemaObject SchemaType = "object"
	SchemaArray  SchemaType = "array"
	SchemaString SchemaType = "string"
)

// ResponseSchema is a provider-neutral description of the output shape
// the generative service must produce.
type ResponseSchema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*ResponseSchema
	// Order lists property names in the order the model should emit them.
	Order    []string
	Items    *ResponseSchema
	Required []string
}

// GenerateRequest describes a single call to the generative service.
type GenerateRequest struct {
	Model             string
	SystemInstruction string
	Prompt            string
	Schema            *ResponseSchema
}

// Generator (port) performs one call to the generative service and returns
// the raw response text.
type Generator interface {
	Generate(ctx Context, req GenerateRequest) (string, error)
}

// SuggestionFetcher (port) turns a profile into career suggestions.
type SuggestionFetcher interface {
	Fetch(ctx Context, p Profile) ([]CareerSuggestion, error)
}

// Context is an alias to keep the domain signatures short.
type Context = context.Context
