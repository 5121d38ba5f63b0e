// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

// ContextBundle is the minimal slice of project state a command needs
// for its model round trip. It is opaque data for the prompt renderer;
// nothing here is formatted for humans.
type ContextBundle struct {
	Command     Command
	TargetID    string
	Instruction string // plan description, or refine instruction text

	ProjectDescription string
	Milestone          *MilestoneContext
	Task               *TaskContext
	Specifications     []MilestoneSpecs // generate_readme only
}

// MilestoneContext carries a milestone's description and task outline.
type MilestoneContext struct {
	ID          string        `yaml:"id"`
	Description string        `yaml:"description"`
	Tasks       []TaskSummary `yaml:"tasks"`
}

// TaskSummary is a task's ID and description, without artifacts.
type TaskSummary struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// TaskContext carries everything the model needs to produce or rework a
// single task: its description, its specification when present, and
// the full current code artifact, so a refine is always a complete
// replacement with full prior content rather than a diff instruction.
type TaskContext struct {
	ID          string        `yaml:"id"`
	Description string        `yaml:"description"`
	Spec        string        `yaml:"spec,omitempty"`
	Code        *CodeArtifact `yaml:"code,omitempty"`
}

// MilestoneSpecs pairs a milestone with its tasks' specifications.
type MilestoneSpecs struct {
	ID    string            `yaml:"id"`
	Specs map[string]string `yaml:"specs"`
}

// BuildContext assembles the context slice for cmd. For plan there is
// no prior state beyond the project description; specify adds the
// target milestone outline; code and refine add the target task with
// its spec and full current code; generate_readme sees every
// specification. Unknown targets fail here, before any prompt is built.
func BuildContext(p *Project, cmd Command, targetID, instruction string) (ContextBundle, error) {
	bundle := ContextBundle{
		Command:            cmd,
		TargetID:           targetID,
		Instruction:        instruction,
		ProjectDescription: p.Description,
	}

	switch cmd {
	case CmdPlan:
		return bundle, nil

	case CmdSpecify:
		m := p.Milestone(targetID)
		if m == nil {
			return bundle, &UnknownTargetError{Kind: "milestone", ID: targetID}
		}
		bundle.Milestone = milestoneContext(m)
		return bundle, nil

	case CmdCode, CmdRefine:
		t := p.Task(targetID)
		if t == nil {
			return bundle, &UnknownTargetError{Kind: "task", ID: targetID}
		}
		mid, _ := MilestoneOfTask(targetID)
		bundle.Milestone = milestoneContext(p.Milestone(mid))
		tc := &TaskContext{ID: t.ID, Description: t.Description, Code: t.Code}
		if t.Spec != nil {
			tc.Spec = t.Spec.Content
		}
		bundle.Task = tc
		return bundle, nil

	case CmdReadme:
		p.Milestones.Each(func(_ string, m *Milestone) bool {
			specs := MilestoneSpecs{ID: m.ID, Specs: make(map[string]string)}
			m.Tasks.Each(func(_ string, t *Task) bool {
				if t.Spec != nil {
					specs.Specs[t.ID] = t.Spec.Content
				}
				return true
			})
			if len(specs.Specs) > 0 {
				bundle.Specifications = append(bundle.Specifications, specs)
			}
			return true
		})
		return bundle, nil

	default:
		return bundle, &SchemaViolationError{Command: cmd, Field: "command", Reason: "is not a round-trip command"}
	}
}

func milestoneContext(m *Milestone) *MilestoneContext {
	if m == nil {
		return nil
	}
	mc := &MilestoneContext{ID: m.ID, Description: m.Description}
	m.Tasks.Each(func(_ string, t *Task) bool {
		mc.Tasks = append(mc.Tasks, TaskSummary{ID: t.ID, Description: t.Description})
		return true
	})
	return mc
}
