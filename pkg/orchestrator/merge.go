// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MergeResult summarizes what a merge changed in the project tree.
type MergeResult struct {
	Command Command
	Target  string
	Created []string // milestone and task IDs created
	Updated []string // task IDs whose artifacts were replaced
	Dirty   []string // task IDs newly marked dirty
	Grown   []string // task IDs a specify response added beyond the plan
}

// Merge applies a validated payload into the project tree. It is atomic
// with respect to its target: every target and ID check completes
// before the first field is touched, so a failed merge leaves the tree
// exactly as it was. Later merges fully overwrite the same fields from
// earlier ones; artifacts are replaced, never diffed.
func Merge(p *Project, cmd Command, targetID string, payload Payload) (MergeResult, error) {
	res := MergeResult{Command: cmd, Target: targetID}

	switch pl := payload.(type) {
	case *PlanPayload:
		if cmd != CmdPlan {
			return res, fmt.Errorf("plan payload for %s command", cmd)
		}
		mergePlan(p, pl, &res)
		return res, nil
	case *SpecifyPayload:
		if cmd != CmdSpecify {
			return res, fmt.Errorf("specify payload for %s command", cmd)
		}
		return res, mergeSpecify(p, targetID, pl, &res)
	case *CodePayload:
		if cmd != CmdCode && cmd != CmdRefine {
			return res, fmt.Errorf("code payload for %s command", cmd)
		}
		return res, mergeCode(p, targetID, pl, &res)
	case *ReadmePayload:
		if cmd != CmdReadme {
			return res, fmt.Errorf("readme payload for %s command", cmd)
		}
		p.Readme = pl.Content
		return res, nil
	default:
		return res, fmt.Errorf("unhandled payload type %T", payload)
	}
}

// mergePlan replaces the active description and the milestone set
// wholesale. IDs are re-derived in payload order, so M1 is always the
// first milestone of the current plan. The superseded description
// survives only in the plan log; nothing is marked dirty because a
// fresh plan has nothing synced yet.
func mergePlan(p *Project, pl *PlanPayload, res *MergeResult) {
	p.Description = pl.Description
	p.Milestones = NewOrderedMap[*Milestone]()
	for i, pm := range pl.Milestones {
		mid := fmt.Sprintf("M%d", i+1)
		m, _ := p.AddMilestone(mid, pm.Description)
		res.Created = append(res.Created, mid)
		for j, pt := range pm.Tasks {
			tid := fmt.Sprintf("%s-T%d", mid, j+1)
			m.AddTask(tid, pt.Description)
			res.Created = append(res.Created, tid)
		}
	}
	p.PlanLog = append(p.PlanLog, PlanRecord{
		ID:          uuid.NewString(),
		Description: pl.Description,
		CreatedAt:   time.Now().UTC(),
	})
}

// mergeSpecify fans a milestone specification out to its tasks. Task
// IDs not present in the plan are accepted as milestone scope growth
// and reported in Grown rather than rejected.
func mergeSpecify(p *Project, milestoneID string, pl *SpecifyPayload, res *MergeResult) error {
	m := p.Milestone(milestoneID)
	if m == nil {
		return &UnknownTargetError{Kind: "milestone", ID: milestoneID}
	}

	// Check every ID before applying anything.
	for _, entry := range pl.Tasks {
		if _, exists := m.Tasks.Get(entry.TaskID); exists {
			continue
		}
		owner, ok := MilestoneOfTask(entry.TaskID)
		if !ok || owner != milestoneID {
			return &SchemaViolationError{
				Command: CmdSpecify,
				Field:   "tasks[" + entry.TaskID + "]",
				Reason:  "is not a task ID under milestone " + milestoneID,
			}
		}
	}

	for _, entry := range pl.Tasks {
		t, exists := m.Tasks.Get(entry.TaskID)
		if !exists {
			// A grown task has no plan description; its spec's first
			// line stands in.
			t, _ = m.AddTask(entry.TaskID, firstLine(entry.Content))
			res.Created = append(res.Created, entry.TaskID)
			res.Grown = append(res.Grown, entry.TaskID)
		}
		t.Spec = &Specification{Content: entry.Content}
		if t.Status == StatusPlanned {
			t.Status = StatusSpecified
		}
		res.Updated = append(res.Updated, entry.TaskID)
	}
	return nil
}

// mergeCode replaces a task's code artifact wholesale and unions the
// payload's dependencies into the task's accumulated dependency set.
// The task re-enters Coded on refine; status never regresses.
func mergeCode(p *Project, taskID string, pl *CodePayload, res *MergeResult) error {
	t := p.Task(taskID)
	if t == nil {
		return &UnknownTargetError{Kind: "task", ID: taskID}
	}

	var prior []string
	if t.Code != nil {
		prior = t.Code.Dependencies
	}
	files := make([]FileEntry, len(pl.Files))
	copy(files, pl.Files)
	t.Code = &CodeArtifact{
		Files:        files,
		Dependencies: unionSorted(prior, pl.Dependencies),
	}
	t.Status = StatusCoded
	t.Dirty = true
	res.Updated = append(res.Updated, taskID)
	res.Dirty = append(res.Dirty, taskID)
	return nil
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return s
}

// unionSorted merges two dependency lists, deduplicating by exact
// string match and sorting for a deterministic artifact.
func unionSorted(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, d := range list {
			if d == "" || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}
