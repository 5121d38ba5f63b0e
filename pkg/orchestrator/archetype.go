// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed archetypes/*.yaml
var archetypeFS embed.FS

// Archetype is a predefined project seed: a description, configuration
// defaults, optional prompt context, and optionally a first round of
// milestones. It bootstraps a project without an initial plan round
// trip.
type Archetype struct {
	Name          string               `yaml:"name"`
	Description   string               `yaml:"description"`
	Config        map[string]string    `yaml:"config"`
	PromptContext string               `yaml:"prompt_context"`
	Milestones    []ArchetypeMilestone `yaml:"milestones"`
}

// ArchetypeMilestone is one seeded milestone with task descriptions.
type ArchetypeMilestone struct {
	Description string   `yaml:"description"`
	Tasks       []string `yaml:"tasks"`
}

// Archetypes lists the embedded archetype names, sorted.
func Archetypes() []string {
	entries, err := archetypeFS.ReadDir("archetypes")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// LoadArchetype reads an embedded archetype by name.
func LoadArchetype(name string) (Archetype, error) {
	data, err := archetypeFS.ReadFile("archetypes/" + name + ".yaml")
	if err != nil {
		return Archetype{}, fmt.Errorf("unknown archetype %q (have: %s)", name, strings.Join(Archetypes(), ", "))
	}
	var a Archetype
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Archetype{}, fmt.Errorf("parsing archetype %s: %w", name, err)
	}
	if a.Name == "" {
		a.Name = name
	}
	return a, nil
}

// SeedProject builds a fresh project tree from the archetype: config
// copied over, seeded milestones created in order with Planned tasks.
func (a Archetype) SeedProject() *Project {
	p := NewProject()
	p.Archetype = a.Name
	p.Description = a.Description
	if len(a.Config) > 0 {
		p.Config = make(map[string]string, len(a.Config))
		for k, v := range a.Config {
			p.Config[k] = v
		}
	}
	for i, am := range a.Milestones {
		mid := fmt.Sprintf("M%d", i+1)
		m, _ := p.AddMilestone(mid, am.Description)
		for j, desc := range am.Tasks {
			m.AddTask(fmt.Sprintf("%s-T%d", mid, j+1), desc)
		}
	}
	return p
}
