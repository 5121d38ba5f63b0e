// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Orchestrator is the command facade over the project state machine.
// One instance owns the loaded project tree for the life of the
// process; every command handler goes through it, and it persists the
// tree after each successful merge or sync. Commands are strictly
// sequential; there is no background work.
type Orchestrator struct {
	cfg     Config
	store   *Store
	syncer  *Syncer
	project *Project
	resumed bool
}

// New loads (or seeds) the project state and returns an orchestrator.
// When no state file exists and an archetype is configured, the project
// is bootstrapped from the archetype seed and saved immediately.
func New(cfg Config) (*Orchestrator, error) {
	cfg.applyDefaults()
	SetVerbose(cfg.Verbose)
	if cfg.LogFile != "" {
		if err := openLogSink(cfg.LogFile); err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
	}

	store := NewStore(cfg.StateFile)
	resumed := store.Exists()

	var p *Project
	if !resumed && cfg.Archetype != "" {
		a, err := LoadArchetype(cfg.Archetype)
		if err != nil {
			return nil, err
		}
		p = a.SeedProject()
		if err := store.Save(p); err != nil {
			return nil, err
		}
		logf("seeded new project from archetype %s", a.Name)
	} else {
		var err error
		p, err = store.Load()
		if err != nil {
			return nil, err
		}
	}

	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		syncer:  &Syncer{Root: cfg.OutputDir, Manifest: cfg.ManifestFile},
		project: p,
		resumed: resumed,
	}, nil
}

// Close releases the log sink, if any.
func (o *Orchestrator) Close() { closeLogSink() }

// Project exposes the loaded tree to read-only callers.
func (o *Orchestrator) Project() *Project { return o.project }

// Resumed reports whether an existing state file was loaded.
func (o *Orchestrator) Resumed() bool { return o.resumed }

// StatePath returns the state file location.
func (o *Orchestrator) StatePath() string { return o.store.Path }

// Sentinel returns the configured payload terminator line.
func (o *Orchestrator) Sentinel() string { return o.cfg.Sentinel }

// BuildPrompt renders the model prompt for a command: context slice
// first, then the command's template. Unknown targets fail here.
func (o *Orchestrator) BuildPrompt(cmd Command, targetID, instruction string) (string, error) {
	bundle, err := BuildContext(o.project, cmd, targetID, instruction)
	if err != nil {
		return "", err
	}
	return RenderPrompt(o.cfg, o.project, bundle)
}

// ApplyResult is what a completed round trip reports back: the merge
// summary plus the model's guidance message, when the response carried
// one.
type ApplyResult struct {
	MergeResult
	Message string
}

// Apply validates a pasted response against the command's schema,
// merges it into the project tree, and persists the tree. On any
// validation or merge error the tree is left exactly as it was, in
// memory and on disk. The model's message is returned even when the
// payload is rejected, so the operator sees why.
func (o *Orchestrator) Apply(cmd Command, targetID, raw string) (ApplyResult, error) {
	payload, message, err := ParseResponse(raw, cmd)
	res := ApplyResult{Message: message}
	if err != nil {
		return res, err
	}

	merged, err := Merge(o.project, cmd, targetID, payload)
	if err != nil {
		return res, err
	}
	res.MergeResult = merged

	if err := o.store.Save(o.project); err != nil {
		return res, fmt.Errorf("merge applied but state not saved: %w", err)
	}
	logf("apply %s %s: created=%d updated=%d dirty=%d", cmd, targetID,
		len(merged.Created), len(merged.Updated), len(merged.Dirty))
	return res, nil
}

// Sync reconciles the output directory with state for the given scope
// (a task ID or ScopeAll) and persists the cleared dirty flags.
func (o *Orchestrator) Sync(scope string) (SyncReport, error) {
	report, err := o.syncer.Sync(o.project, scope)
	if err != nil {
		return report, err
	}
	if err := o.store.Save(o.project); err != nil {
		return report, fmt.Errorf("sync finished but state not saved: %w", err)
	}
	logf("sync %s: written=%d deleted=%d skipped=%d failed=%d", scope,
		len(report.Written), len(report.Deleted), len(report.Skipped), len(report.Failed))
	return report, nil
}

// planOutline is the display shape for show_plan.
type planOutline struct {
	Description string             `yaml:"description"`
	Archetype   string             `yaml:"archetype,omitempty"`
	Milestones  []milestoneOutline `yaml:"milestones"`
}

type milestoneOutline struct {
	ID          string        `yaml:"id"`
	Description string        `yaml:"description"`
	Tasks       []taskOutline `yaml:"tasks"`
}

type taskOutline struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Status      Status `yaml:"status"`
	Dirty       bool   `yaml:"dirty,omitempty"`
}

// PlanOutline renders the current plan as YAML for display.
func (o *Orchestrator) PlanOutline() (string, error) {
	if o.project.Description == "" && o.project.Milestones.Len() == 0 {
		return "", fmt.Errorf("no plan yet; run plan <description> first")
	}
	outline := planOutline{Description: o.project.Description, Archetype: o.project.Archetype}
	o.project.Milestones.Each(func(_ string, m *Milestone) bool {
		mo := milestoneOutline{ID: m.ID, Description: m.Description}
		m.Tasks.Each(func(_ string, t *Task) bool {
			mo.Tasks = append(mo.Tasks, taskOutline{ID: t.ID, Description: t.Description, Status: t.Status, Dirty: t.Dirty})
			return true
		})
		outline.Milestones = append(outline.Milestones, mo)
		return true
	})
	out, err := yaml.Marshal(outline)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// SpecText renders a milestone's specifications for display, one
// heading per task in creation order.
func (o *Orchestrator) SpecText(milestoneID string) (string, error) {
	m := o.project.Milestone(milestoneID)
	if m == nil {
		return "", &UnknownTargetError{Kind: "milestone", ID: milestoneID}
	}
	var b strings.Builder
	m.Tasks.Each(func(_ string, t *Task) bool {
		if t.Spec == nil {
			return true
		}
		fmt.Fprintf(&b, "## %s: %s\n\n%s\n\n", t.ID, t.Description, strings.TrimSpace(t.Spec.Content))
		return true
	})
	if b.Len() == 0 {
		return "", fmt.Errorf("no specification for %s yet; run specify %s first", milestoneID, milestoneID)
	}
	return b.String(), nil
}

// CodeListing returns a task's code artifact for display.
func (o *Orchestrator) CodeListing(taskID string) (*CodeArtifact, error) {
	t := o.project.Task(taskID)
	if t == nil {
		return nil, &UnknownTargetError{Kind: "task", ID: taskID}
	}
	if t.Code == nil {
		return nil, fmt.Errorf("no code for %s yet; run code %s first", taskID, taskID)
	}
	return t.Code, nil
}
