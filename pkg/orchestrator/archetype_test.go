// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"reflect"
	"testing"
)

func TestArchetypesListsEmbedded(t *testing.T) {
	names := Archetypes()
	want := []string{"generic-webapp", "simple"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Archetypes() = %v, want %v", names, want)
	}
}

func TestLoadArchetype(t *testing.T) {
	a, err := LoadArchetype("generic-webapp")
	if err != nil {
		t.Fatalf("LoadArchetype: %v", err)
	}
	if a.Name != "generic-webapp" {
		t.Errorf("Name = %q", a.Name)
	}
	if a.Description == "" {
		t.Error("no description")
	}
	if a.PromptContext == "" {
		t.Error("no prompt context")
	}
	if len(a.Milestones) == 0 {
		t.Error("no seeded milestones")
	}
}

func TestLoadArchetypeUnknown(t *testing.T) {
	if _, err := LoadArchetype("no-such-archetype"); err == nil {
		t.Fatal("unknown archetype accepted")
	}
}

func TestSeedProject(t *testing.T) {
	a, err := LoadArchetype("generic-webapp")
	if err != nil {
		t.Fatalf("LoadArchetype: %v", err)
	}
	p := a.SeedProject()
	if p.Archetype != "generic-webapp" {
		t.Errorf("Archetype = %q", p.Archetype)
	}
	if p.Milestones.Len() != len(a.Milestones) {
		t.Fatalf("milestones = %d, want %d", p.Milestones.Len(), len(a.Milestones))
	}
	// Seeded IDs follow the same numbering a plan merge would produce.
	first := p.Milestone("M1")
	if first == nil {
		t.Fatal("no M1")
	}
	if first.Tasks.Len() != len(a.Milestones[0].Tasks) {
		t.Errorf("M1 tasks = %d, want %d", first.Tasks.Len(), len(a.Milestones[0].Tasks))
	}
	p.EachTask(func(_ *Milestone, tk *Task) bool {
		if tk.Status != StatusPlanned {
			t.Errorf("%s status = %q, want planned", tk.ID, tk.Status)
		}
		return true
	})
	if len(a.Config) > 0 && !reflect.DeepEqual(p.Config, a.Config) {
		t.Errorf("config = %v, want %v", p.Config, a.Config)
	}
}
