// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestPromptDefUnmarshal(t *testing.T) {
	src := `
- role: plain scalar text
- milestone:
    text: 'Outline:'
    append: milestone
    format: yaml
- request: closing
`
	def, err := parsePromptDef(src)
	if err != nil {
		t.Fatalf("parsePromptDef: %v", err)
	}
	if len(def) != 3 {
		t.Fatalf("sections = %d, want 3", len(def))
	}
	if def[0].Name != "role" || def[0].Text != "plain scalar text" {
		t.Errorf("section 0 = %+v", def[0])
	}
	if def[1].Append != "milestone" || def[1].Format != "yaml" || def[1].Text != "Outline:" {
		t.Errorf("section 1 = %+v", def[1])
	}
}

func TestPromptDefRejectsNonSequence(t *testing.T) {
	if _, err := parsePromptDef("role: not a sequence\n"); err == nil {
		t.Fatal("mapping-form template accepted")
	}
}

func TestRenderPromptPlaceholders(t *testing.T) {
	def := PromptDef{{Name: "request", Text: "Generate code for {target} now."}}
	out := renderPrompt(def, map[string]string{"target": "M1-T1"})
	want := "# REQUEST\n\nGenerate code for M1-T1 now."
	if out != want {
		t.Errorf("renderPrompt = %q, want %q", out, want)
	}
}

func TestRenderPromptSkipsEmptyAppend(t *testing.T) {
	def := PromptDef{
		{Name: "role", Text: "intro"},
		{Name: "archetype_notes", Append: "archetype_context"},
	}
	out := renderPrompt(def, map[string]string{"archetype_context": ""})
	if strings.Contains(out, "ARCHETYPE") {
		t.Errorf("empty append section rendered: %q", out)
	}
}

func TestRenderPromptYAMLFence(t *testing.T) {
	def := PromptDef{{Name: "milestone", Append: "milestone", Format: "yaml"}}
	out := renderPrompt(def, map[string]string{"milestone": "id: M1"})
	if !strings.Contains(out, "```yaml\nid: M1\n```") {
		t.Errorf("yaml fence missing: %q", out)
	}
}

func TestRenderPromptNoSubstitutionInAppendedData(t *testing.T) {
	def := PromptDef{{Name: "task", Append: "task"}}
	out := renderPrompt(def, map[string]string{
		"task":   "content with a {target} brace",
		"target": "M1-T1",
	})
	if !strings.Contains(out, "{target}") {
		t.Errorf("appended data was substituted: %q", out)
	}
}

func TestRenderPromptEmbeddedTemplates(t *testing.T) {
	p := plannedProject(t)
	tk := p.Task("M1-T1")
	tk.Spec = &Specification{Content: "the spec"}

	bundle, err := BuildContext(p, CmdCode, "M1-T1", "")
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	out, err := RenderPrompt(DefaultConfig(), p, bundle)
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}
	for _, want := range []string{"# ROLE", "# RESPONSE CONTRACT", "M1-T1", "```yaml"} {
		if !strings.Contains(out, want) {
			t.Errorf("code prompt missing %q", want)
		}
	}
}

func TestRenderPromptAllCommandsHaveTemplates(t *testing.T) {
	p := plannedProject(t)
	p.Task("M1-T1").Spec = &Specification{Content: "s"}
	targets := map[Command]string{
		CmdPlan:    "",
		CmdSpecify: "M1",
		CmdCode:    "M1-T1",
		CmdRefine:  "M1-T1",
		CmdReadme:  "",
	}
	for cmd, target := range targets {
		bundle, err := BuildContext(p, cmd, target, "instruction")
		if err != nil {
			t.Fatalf("BuildContext(%s): %v", cmd, err)
		}
		out, err := RenderPrompt(DefaultConfig(), p, bundle)
		if err != nil {
			t.Fatalf("RenderPrompt(%s): %v", cmd, err)
		}
		if out == "" {
			t.Errorf("empty prompt for %s", cmd)
		}
	}
}

const overrideTemplate = `- role: You answer with a single JSON object.
- project:
    append: project_description
- request: 'Plan this: {instruction}'
`

func TestRenderPromptOverrideGolden(t *testing.T) {
	p := NewProject()
	p.Description = "A link service"
	bundle, err := BuildContext(p, CmdPlan, "", "Build a URL shortener")
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	cfg := DefaultConfig()
	cfg.PlanPrompt = overrideTemplate

	out, err := RenderPrompt(cfg, p, bundle)
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}
	g := goldie.New(t)
	g.Assert(t, "plan_prompt_override", []byte(out))
}
