// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package orchestrator implements the atelier project state machine: an
// insertion-ordered Project → Milestone → Task tree, the merge rules for
// applying validated model payloads into that tree, dependency
// aggregation, and the engine that reconciles the tree with an on-disk
// directory. The interactive front end lives in internal/repl and talks
// to this package through the Orchestrator facade.
package orchestrator

import (
	"fmt"
	"regexp"
	"time"
)

// Status is a task's position in the plan → specify → code workflow.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusSpecified Status = "specified"
	StatusCoded     Status = "coded"
)

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanned, StatusSpecified, StatusCoded:
		return true
	}
	return false
}

// rank orders statuses for the forward-only progression check.
func (s Status) rank() int {
	switch s {
	case StatusPlanned:
		return 0
	case StatusSpecified:
		return 1
	case StatusCoded:
		return 2
	}
	return -1
}

var (
	milestoneIDRe = regexp.MustCompile(`^M[1-9][0-9]*$`)
	taskIDRe      = regexp.MustCompile(`^(M[1-9][0-9]*)-T[1-9][0-9]*$`)
)

// ValidMilestoneID reports whether id has the M<n> form.
func ValidMilestoneID(id string) bool {
	return milestoneIDRe.MatchString(id)
}

// ValidTaskID reports whether id has the M<n>-T<m> form.
func ValidTaskID(id string) bool {
	return taskIDRe.MatchString(id)
}

// MilestoneOfTask returns the milestone component of a task ID
// ("M1-T2" → "M1"). ok is false when id is not a valid task ID.
func MilestoneOfTask(id string) (string, bool) {
	m := taskIDRe.FindStringSubmatch(id)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FileEntry is one generated file in a code artifact. Path is relative
// to the managed output directory, slash-separated.
type FileEntry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// CodeArtifact is the full replacement file set produced by a code or
// refine response, plus the task's accumulated dependency set.
type CodeArtifact struct {
	Files        []FileEntry `json:"files"`
	Dependencies []string    `json:"dependencies,omitempty"`
}

// Specification is the per-task slice of a milestone specification
// response. Content is the canonical text form (structured payloads are
// stored as indented JSON).
type Specification struct {
	Content string `json:"content"`
}

// Task is a unit of work inside a milestone. The ID is the map key in
// the serialized form and is restored after load.
type Task struct {
	ID          string         `json:"-"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	Spec        *Specification `json:"spec,omitempty"`
	Code        *CodeArtifact  `json:"code,omitempty"`
	Dirty       bool           `json:"dirty"`
}

// Milestone groups tasks under a stable M<n> key.
type Milestone struct {
	ID          string             `json:"-"`
	Description string             `json:"description"`
	Tasks       *OrderedMap[*Task] `json:"tasks"`
}

// AddTask appends a task to the milestone. The ID must be well formed,
// namespaced under this milestone, and not already present.
func (m *Milestone) AddTask(id, description string) (*Task, error) {
	owner, ok := MilestoneOfTask(id)
	if !ok {
		return nil, fmt.Errorf("invalid task ID %q", id)
	}
	if owner != m.ID {
		return nil, fmt.Errorf("task %q does not belong to milestone %s", id, m.ID)
	}
	if _, exists := m.Tasks.Get(id); exists {
		return nil, fmt.Errorf("task %q already exists", id)
	}
	t := &Task{ID: id, Description: description, Status: StatusPlanned}
	m.Tasks.Set(id, t)
	return t, nil
}

// PlanRecord is one entry in the plan history. Every plan merge replaces
// the active description and appends a record here, so superseded plans
// remain visible without being part of the active tree.
type PlanRecord struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Project is the root aggregate and the only persisted record. The
// dependency manifest is derived (see Aggregate) and never stored.
type Project struct {
	Description string                  `json:"description"`
	Archetype   string                  `json:"archetype,omitempty"`
	Config      map[string]string       `json:"config,omitempty"`
	Milestones  *OrderedMap[*Milestone] `json:"milestones"`
	Readme      string                  `json:"readme,omitempty"`
	PlanLog     []PlanRecord            `json:"plan_log,omitempty"`
}

// NewProject returns an empty project tree.
func NewProject() *Project {
	return &Project{Milestones: NewOrderedMap[*Milestone]()}
}

// AddMilestone appends a milestone to the project. The ID must be well
// formed and not already present.
func (p *Project) AddMilestone(id, description string) (*Milestone, error) {
	if !ValidMilestoneID(id) {
		return nil, fmt.Errorf("invalid milestone ID %q", id)
	}
	if _, exists := p.Milestones.Get(id); exists {
		return nil, fmt.Errorf("milestone %q already exists", id)
	}
	m := &Milestone{ID: id, Description: description, Tasks: NewOrderedMap[*Task]()}
	p.Milestones.Set(id, m)
	return m, nil
}

// Milestone returns the milestone with the given ID, or nil.
func (p *Project) Milestone(id string) *Milestone {
	m, _ := p.Milestones.Get(id)
	return m
}

// Task resolves a task ID through its owning milestone, or nil.
func (p *Project) Task(id string) *Task {
	mid, ok := MilestoneOfTask(id)
	if !ok {
		return nil
	}
	m := p.Milestone(mid)
	if m == nil {
		return nil
	}
	t, _ := m.Tasks.Get(id)
	return t
}

// EachTask visits every task in creation order (milestones in insertion
// order, tasks in insertion order within each). Iteration stops if fn
// returns false.
func (p *Project) EachTask(fn func(*Milestone, *Task) bool) {
	p.Milestones.Each(func(_ string, m *Milestone) bool {
		stop := false
		m.Tasks.Each(func(_ string, t *Task) bool {
			if !fn(m, t) {
				stop = true
				return false
			}
			return true
		})
		return !stop
	})
}

// DirtyTasks returns the IDs of tasks whose artifacts changed since
// their last successful sync, in creation order.
func (p *Project) DirtyTasks() []string {
	var out []string
	p.EachTask(func(_ *Milestone, t *Task) bool {
		if t.Dirty {
			out = append(out, t.ID)
		}
		return true
	})
	return out
}

// restoreIdentity writes the map keys back into the ID fields after a
// load, since IDs are not duplicated inside the serialized values.
func (p *Project) restoreIdentity() {
	if p.Milestones == nil {
		p.Milestones = NewOrderedMap[*Milestone]()
	}
	p.Milestones.Each(func(id string, m *Milestone) bool {
		m.ID = id
		if m.Tasks == nil {
			m.Tasks = NewOrderedMap[*Task]()
		}
		m.Tasks.Each(func(tid string, t *Task) bool {
			t.ID = tid
			return true
		})
		return true
	})
}
