package app

import (
	"context"
	"fmt"
	"strings"

	httpserver "github.com/fairyhunter13/ai-career-advisor/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-career-advisor/internal/config"
)

// BuildReadinessChecks returns the probes reported by /readyz: the Gemini
// credential and the prompt texts. Neither touches the network.
func BuildReadinessChecks(cfg config.Config, prompts config.Prompts) []httpserver.ReadinessCheck {
	credential := func(context.Context) error {
		if !cfg.HasCredential() {
			return fmt.Errorf("GEMINI_API_KEY not set")
		}
		return nil
	}
	promptCheck := func(context.Context) error {
		if prompts.SystemInstruction == "" {
			return fmt.Errorf("system instruction empty")
		}
		for _, ph := range []string{"{{interests}}", "{{personality}}", "{{skill_level}}"} {
			if !strings.Contains(prompts.ProfileTemplate, ph) {
				return fmt.Errorf("profile template missing %s", ph)
			}
		}
		return nil
	}
	return []httpserver.ReadinessCheck{
		{Name: "gemini_credential", Check: credential},
		{Name: "prompts", Check: promptCheck},
	}
}
