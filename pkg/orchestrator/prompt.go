// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.yaml
var promptFS embed.FS

// Section is one named block of a prompt template. Name becomes a
// markdown heading ("response_contract" → "# RESPONSE CONTRACT"). When
// the YAML value is a scalar it is the Text directly; a mapping may set
// text, append, and format.
//
// Append names a ContextBundle data key whose value follows the Text;
// when that value is empty the whole section is omitted. Format "yaml"
// wraps appended data in ```yaml fences.
type Section struct {
	Name   string
	Text   string
	Append string
	Format string
}

type sectionDetail struct {
	Text   string `yaml:"text"`
	Append string `yaml:"append"`
	Format string `yaml:"format"`
}

// PromptDef is an ordered list of prompt sections. In YAML it is a
// sequence of single-key mappings, the key being the section name.
type PromptDef []Section

// UnmarshalYAML implements the single-key-mapping sequence form.
func (pd *PromptDef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("prompt definition must be a YAML sequence, got %v", value.Kind)
	}
	sections := make(PromptDef, 0, len(value.Content))
	for i, item := range value.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) < 2 {
			return fmt.Errorf("section %d: expected a single-key mapping", i)
		}
		sec := Section{Name: item.Content[0].Value}
		valNode := item.Content[1]
		switch valNode.Kind {
		case yaml.ScalarNode:
			sec.Text = valNode.Value
		case yaml.MappingNode:
			var detail sectionDetail
			if err := valNode.Decode(&detail); err != nil {
				return fmt.Errorf("section %q: %w", sec.Name, err)
			}
			sec.Text = detail.Text
			sec.Append = detail.Append
			sec.Format = detail.Format
		default:
			return fmt.Errorf("section %q: unexpected YAML node kind %v", sec.Name, valNode.Kind)
		}
		sections = append(sections, sec)
	}
	*pd = sections
	return nil
}

func parsePromptDef(yamlContent string) (PromptDef, error) {
	var def PromptDef
	if err := yaml.Unmarshal([]byte(yamlContent), &def); err != nil {
		return nil, err
	}
	return def, nil
}

func sectionHeading(sec Section) string {
	return "# " + strings.ToUpper(strings.ReplaceAll(sec.Name, "_", " "))
}

// renderPrompt assembles the prompt text from a definition and a data
// map. {key} placeholders in section text are substituted; substitution
// never applies to appended values, so pasted artifacts containing
// braces stay intact.
func renderPrompt(def PromptDef, data map[string]string) string {
	var buf strings.Builder
	first := true
	for _, sec := range def {
		if sec.Append != "" && data[sec.Append] == "" {
			continue
		}
		if !first {
			buf.WriteString("\n")
		}
		first = false

		buf.WriteString(sectionHeading(sec))
		buf.WriteString("\n\n")

		if sec.Text != "" {
			text := sec.Text
			for k, v := range data {
				text = strings.ReplaceAll(text, "{"+k+"}", v)
			}
			buf.WriteString(text)
		}
		if sec.Append != "" {
			val := data[sec.Append]
			switch sec.Format {
			case "yaml":
				buf.WriteString("\n```yaml\n")
				buf.WriteString(val)
				if !strings.HasSuffix(val, "\n") {
					buf.WriteByte('\n')
				}
				buf.WriteString("```\n")
			default:
				buf.WriteString("\n")
				buf.WriteString(val)
				if !strings.HasSuffix(val, "\n") {
					buf.WriteByte('\n')
				}
			}
		}
	}
	return buf.String()
}

// promptData flattens a ContextBundle into the renderer's data map.
// Structured context is serialized as YAML so the model sees the same
// shape regardless of which command asked.
func promptData(p *Project, bundle ContextBundle) (map[string]string, error) {
	data := map[string]string{
		"command":             string(bundle.Command),
		"target":              bundle.TargetID,
		"instruction":         bundle.Instruction,
		"project_description": bundle.ProjectDescription,
	}

	if p.Archetype != "" {
		if a, err := LoadArchetype(p.Archetype); err == nil {
			data["archetype_context"] = a.PromptContext
		}
	}
	if bundle.Milestone != nil {
		out, err := yaml.Marshal(bundle.Milestone)
		if err != nil {
			return nil, fmt.Errorf("serializing milestone context: %w", err)
		}
		data["milestone"] = string(out)
	}
	if bundle.Task != nil {
		out, err := yaml.Marshal(bundle.Task)
		if err != nil {
			return nil, fmt.Errorf("serializing task context: %w", err)
		}
		data["task"] = string(out)
	}
	if len(bundle.Specifications) > 0 {
		out, err := yaml.Marshal(bundle.Specifications)
		if err != nil {
			return nil, fmt.Errorf("serializing specifications: %w", err)
		}
		data["specifications"] = string(out)
	}
	return data, nil
}

// RenderPrompt produces the full text for a command's model round trip
// from its context bundle. Config may override any command's template
// with its own PromptDef; otherwise the embedded default is used.
func RenderPrompt(cfg Config, p *Project, bundle ContextBundle) (string, error) {
	tmpl := cfg.PromptOverride(bundle.Command)
	if tmpl == "" {
		raw, err := promptFS.ReadFile("prompts/" + promptFileFor(bundle.Command))
		if err != nil {
			return "", fmt.Errorf("no prompt template for %s: %w", bundle.Command, err)
		}
		tmpl = string(raw)
	}
	def, err := parsePromptDef(tmpl)
	if err != nil {
		return "", fmt.Errorf("parsing %s prompt template: %w", bundle.Command, err)
	}
	data, err := promptData(p, bundle)
	if err != nil {
		return "", err
	}
	return renderPrompt(def, data), nil
}

func promptFileFor(cmd Command) string {
	if cmd == CmdReadme {
		return "readme.yaml"
	}
	return string(cmd) + ".yaml"
}
