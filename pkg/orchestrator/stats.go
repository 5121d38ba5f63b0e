// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

// StatsRecord is a point-in-time summary of the project tree, used by
// the stats command and recorded for progress tracking.
type StatsRecord struct {
	Milestones   int `yaml:"milestones"`
	Tasks        int `yaml:"tasks"`
	Specified    int `yaml:"specified"`
	Coded        int `yaml:"coded"`
	Dirty        int `yaml:"dirty"`
	Files        int `yaml:"files"`
	ContentBytes int `yaml:"content_bytes"`
	Dependencies int `yaml:"dependencies"`
	PlanRounds   int `yaml:"plan_rounds"`
}

// CollectStats walks the tree once and counts everything. Pure and
// cheap; recomputed on demand like the dependency manifest.
func CollectStats(p *Project) StatsRecord {
	rec := StatsRecord{
		Milestones: p.Milestones.Len(),
		PlanRounds: len(p.PlanLog),
	}
	p.EachTask(func(_ *Milestone, t *Task) bool {
		rec.Tasks++
		switch t.Status {
		case StatusSpecified:
			rec.Specified++
		case StatusCoded:
			rec.Specified++
			rec.Coded++
		}
		if t.Dirty {
			rec.Dirty++
		}
		if t.Code != nil {
			rec.Files += len(t.Code.Files)
			for _, f := range t.Code.Files {
				rec.ContentBytes += len(f.Content)
			}
		}
		return true
	})
	rec.Dependencies = len(Aggregate(p))
	return rec
}

// EstimateTokens approximates the model-token cost of a prompt at
// four bytes per token, the same rough figure used when sizing
// context by hand.
func EstimateTokens(prompt string) int {
	return len(prompt) / 4
}
