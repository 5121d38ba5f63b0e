// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import "sort"

// Aggregate collects every task's code dependencies into one
// deduplicated, lexicographically sorted manifest. It is a pure
// function over the tree and is recomputed on every call, so the
// manifest can never drift from the code artifacts it is derived from.
func Aggregate(p *Project) []string {
	seen := make(map[string]bool)
	var out []string
	p.EachTask(func(_ *Milestone, t *Task) bool {
		if t.Code == nil {
			return true
		}
		for _, d := range t.Code.Dependencies {
			if d == "" || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
		return true
	})
	sort.Strings(out)
	return out
}

// ManifestContent renders the aggregated dependencies as the manifest
// file body, one package per line.
func ManifestContent(p *Project) string {
	deps := Aggregate(p)
	if len(deps) == 0 {
		return ""
	}
	var b []byte
	for _, d := range deps {
		b = append(b, d...)
		b = append(b, '\n')
	}
	return string(b)
}
