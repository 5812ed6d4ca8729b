package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
	"github.com/fairyhunter13/ai-career-advisor/pkg/textx"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

// Validator returns the process-wide validator. Field errors report JSON
// names so they match the wire format.
func Validator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New(validator.WithRequiredStructEnabled())
		vld.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

type suggestionsEnvelope struct {
	// pointer distinguishes a missing key from an empty array
	Suggestions *[]domain.CareerSuggestion `json:"suggestions"`
}

// ParseSuggestions decodes the generative service's response text.
//
// Blank text yields domain.ErrEmptyResponse. A surrounding markdown code fence
// is removed; prose or trailing data around the JSON object is not. Text that
// is not exactly the expected object, lacks the "suggestions" key, holds no
// records, or holds a record with a blank required field yields a
// *domain.FormatError carrying the raw text.
// Records are returned in model output order with surrounding whitespace trimmed.
func ParseSuggestions(text string) ([]domain.CareerSuggestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyResponse
	}

	dec := json.NewDecoder(strings.NewReader(textx.StripCodeFence(text)))
	var env suggestionsEnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, &domain.FormatError{Raw: text, Reason: err.Error()}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &domain.FormatError{Raw: text, Reason: "unexpected data after JSON object"}
	}
	if env.Suggestions == nil {
		return nil, &domain.FormatError{Raw: text, Reason: `missing "suggestions" key`}
	}
	out := *env.Suggestions
	if len(out) == 0 {
		return nil, &domain.FormatError{Raw: text, Reason: "no suggestions returned"}
	}

	for i := range out {
		s := &out[i]
		s.Career = strings.TrimSpace(s.Career)
		s.Description = strings.TrimSpace(s.Description)
		s.SalaryRange = strings.TrimSpace(s.SalaryRange)
		s.Education = strings.TrimSpace(s.Education)
		if err := Validator().Struct(s); err != nil {
			return nil, &domain.FormatError{Raw: text, Reason: fmt.Sprintf("suggestion %d: %s", i, missingFields(err))}
		}
	}
	return out, nil
}

// ValidateProfile trims the text fields and checks the profile invariants.
// It returns the normalized profile or an error wrapping domain.ErrInvalidArgument.
func ValidateProfile(p domain.Profile) (domain.Profile, error) {
	p.Interests = strings.TrimSpace(p.Interests)
	p.Personality = strings.TrimSpace(p.Personality)
	if err := Validator().Struct(p); err != nil {
		return p, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, missingFields(err))
	}
	return p, nil
}

// missingFields renders validator errors as "field:tag" pairs using JSON names.
func missingFields(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fe.Field()+":"+fe.Tag())
	}
	return strings.Join(parts, ",")
}
