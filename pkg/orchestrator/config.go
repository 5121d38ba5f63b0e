// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration filename looked up in the
// working directory.
const DefaultConfigFile = "configuration.yaml"

// Config holds all orchestrator settings. Callers either construct a
// Config in Go code and pass it to New(), or place a configuration.yaml
// in the working directory and call LoadConfig().
type Config struct {
	// StateFile is the path of the persisted project record
	// (default "project_state.json").
	StateFile string `yaml:"state_file"`

	// OutputDir is the managed directory sync writes into
	// (default "generated_project").
	OutputDir string `yaml:"output_dir"`

	// ManifestFile is the dependency manifest filename inside
	// OutputDir (default "dependencies.txt").
	ManifestFile string `yaml:"manifest_file"`

	// Sentinel is the line that terminates a pasted response
	// (default "END_OF_JSON").
	Sentinel string `yaml:"sentinel"`

	// Archetype seeds a fresh project when no state file exists yet.
	// Empty means start blank and wait for a plan.
	Archetype string `yaml:"archetype"`

	// Per-command prompt template overrides. Each is a file path;
	// LoadConfig reads the file and stores its content here. Empty
	// fields fall back to the embedded defaults.
	PlanPrompt    string `yaml:"plan_prompt"`
	SpecifyPrompt string `yaml:"specify_prompt"`
	CodePrompt    string `yaml:"code_prompt"`
	RefinePrompt  string `yaml:"refine_prompt"`
	ReadmePrompt  string `yaml:"readme_prompt"`

	// CopyClipboard controls whether rendered prompts are copied to
	// the system clipboard (default true).
	CopyClipboard *bool `yaml:"copy_clipboard"`

	// Verbose echoes debug logging to stderr.
	Verbose bool `yaml:"verbose"`

	// LogFile, when set, appends debug logging to this file.
	LogFile string `yaml:"log_file"`
}

// Clipboard returns whether prompts should be copied to the clipboard.
// Handles the nil-pointer case for the default (true).
func (c *Config) Clipboard() bool {
	if c.CopyClipboard == nil {
		return true
	}
	return *c.CopyClipboard
}

// PromptOverride returns the loaded template override for cmd, or ""
// when the embedded default applies.
func (c *Config) PromptOverride(cmd Command) string {
	switch cmd {
	case CmdPlan:
		return c.PlanPrompt
	case CmdSpecify:
		return c.SpecifyPrompt
	case CmdCode:
		return c.CodePrompt
	case CmdRefine:
		return c.RefinePrompt
	case CmdReadme:
		return c.ReadmePrompt
	}
	return ""
}

func (c *Config) applyDefaults() {
	if c.StateFile == "" {
		c.StateFile = "project_state.json"
	}
	if c.OutputDir == "" {
		c.OutputDir = "generated_project"
	}
	if c.ManifestFile == "" {
		c.ManifestFile = ManifestFileName
	}
	if c.Sentinel == "" {
		c.Sentinel = "END_OF_JSON"
	}
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a configuration YAML file and returns a Config. The
// per-command prompt fields are treated as file paths: LoadConfig reads
// each referenced file and replaces the field with its content.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	for _, f := range []*string{
		&cfg.PlanPrompt, &cfg.SpecifyPrompt, &cfg.CodePrompt, &cfg.RefinePrompt, &cfg.ReadmePrompt,
	} {
		if *f == "" {
			continue
		}
		content, err := os.ReadFile(*f)
		if err != nil {
			return Config{}, fmt.Errorf("reading prompt template %s: %w", *f, err)
		}
		*f = string(content)
	}

	cfg.applyDefaults()
	return cfg, nil
}
