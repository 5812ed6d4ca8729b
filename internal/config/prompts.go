package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Prompts holds the texts sent to the generative service.
type Prompts struct {
	SystemInstruction string `yaml:"system_instruction"`
	// ProfileTemplate uses {{interests}}, {{personality}} and {{skill_level}} placeholders.
	ProfileTemplate string `yaml:"profile_template"`
}

// DefaultPrompts returns the embedded prompt texts.
func DefaultPrompts() Prompts {
	p, err := parsePrompts(defaultPromptsYAML)
	if err != nil {
		// The embedded file is part of the binary; failing to parse it is a build defect.
		panic(fmt.Sprintf("embedded prompts.yaml: %v", err))
	}
	return p
}

// LoadPrompts returns the embedded prompts, overlaid with the YAML file at path
// when path is non-empty. Empty keys in the override keep their defaults.
func LoadPrompts(path string) (Prompts, error) {
	base := DefaultPrompts()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("op=config.LoadPrompts: failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return Prompts{}, fmt.Errorf("op=config.LoadPrompts: config file not found: %s", absPath)
	}
	// #nosec G304 -- operator-supplied configuration path
	content, err := os.ReadFile(absPath)
	if err != nil {
		return Prompts{}, fmt.Errorf("op=config.LoadPrompts: failed to read config file: %w", err)
	}
	override, err := parsePrompts(content)
	if err != nil {
		return Prompts{}, fmt.Errorf("op=config.LoadPrompts: %w", err)
	}

	if override.SystemInstruction != "" {
		base.SystemInstruction = override.SystemInstruction
	}
	if override.ProfileTemplate != "" {
		base.ProfileTemplate = override.ProfileTemplate
	}
	return base, nil
}

func parsePrompts(content []byte) (Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(content, &p); err != nil {
		return Prompts{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	p.SystemInstruction = strings.TrimSpace(p.SystemInstruction)
	p.ProfileTemplate = strings.TrimSpace(p.ProfileTemplate)
	return p, nil
}
