// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Command identifies which workflow step produced a response, and
// therefore which payload schema applies.
type Command string

const (
	CmdPlan    Command = "plan"
	CmdSpecify Command = "specify"
	CmdCode    Command = "code"
	CmdRefine  Command = "refine"
	CmdReadme  Command = "generate_readme"
)

// IsValid reports whether c is a known round-trip command.
func (c Command) IsValid() bool {
	switch c {
	case CmdPlan, CmdSpecify, CmdCode, CmdRefine, CmdReadme:
		return true
	}
	return false
}

// Payload is the tagged union of validated response shapes. The merge
// engine switches exhaustively over the concrete types.
type Payload interface {
	isPayload()
}

// PlanPayload is a validated plan response. Milestones are in payload
// order; their IDs are re-derived at merge time, so only order and
// descriptions carry over.
type PlanPayload struct {
	Description string
	Milestones  []PlanMilestone
}

// PlanMilestone is one milestone in a plan payload.
type PlanMilestone struct {
	Description string
	Tasks       []PlanTask
}

// PlanTask is one task in a plan payload.
type PlanTask struct {
	Description string
}

// SpecifyPayload is a validated specify response: specification content
// per task ID, in payload order.
type SpecifyPayload struct {
	Tasks []SpecEntry
}

// SpecEntry is one task's slice of a milestone specification.
type SpecEntry struct {
	TaskID  string
	Content string
}

// CodePayload is a validated code or refine response: the full
// replacement file set and any new dependencies.
type CodePayload struct {
	Files        []FileEntry
	Dependencies []string
}

// ReadmePayload is a validated generate_readme response.
type ReadmePayload struct {
	Content string
}

func (*PlanPayload) isPayload()    {}
func (*SpecifyPayload) isPayload() {}
func (*CodePayload) isPayload()    {}
func (*ReadmePayload) isPayload()  {}

// ParseResponse validates the raw text pasted by the operator against
// the schema for cmd and returns the typed payload. The returned string
// is the model's guidance message when the response carries the
// {status, message, stateUpdate} envelope; it is empty otherwise.
// Validation is all-or-nothing and has no side effects.
func ParseResponse(raw string, cmd Command) (Payload, string, error) {
	body := stripFences(raw)
	if strings.TrimSpace(body) == "" {
		return nil, "", &MalformedPayloadError{Err: errEmptyResponse}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &top); err != nil {
		return nil, "", &MalformedPayloadError{Err: err}
	}

	message := optionalString(top, "message")

	// Responses may arrive wrapped in the assistant envelope. A
	// non-success status means the model declined; the payload, if any,
	// is not trusted.
	if update, ok := top["stateUpdate"]; ok {
		if status := optionalString(top, "status"); status != "" && !strings.EqualFold(status, "success") {
			return nil, message, ErrUnsuccessful
		}
		inner := make(map[string]json.RawMessage)
		if err := json.Unmarshal(update, &inner); err != nil {
			return nil, message, &SchemaViolationError{Command: cmd, Field: "stateUpdate", Reason: "must be an object"}
		}
		top = inner
	}

	var (
		payload Payload
		err     error
	)
	switch cmd {
	case CmdPlan:
		payload, err = parsePlan(top)
	case CmdSpecify:
		payload, err = parseSpecify(top)
	case CmdCode, CmdRefine:
		payload, err = parseCode(top, cmd)
	case CmdReadme:
		payload, err = parseReadme(top)
	default:
		return nil, message, &SchemaViolationError{Command: cmd, Field: "command", Reason: "is not a round-trip command"}
	}
	if err != nil {
		return nil, message, err
	}
	return payload, message, nil
}

var (
	errEmptyResponse = errors.New("response is empty")
	errValueNull     = errors.New("value is null")
)

// stripFences removes a surrounding markdown code fence, if present, so
// a response copied as a ```json block still parses.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		return s
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func optionalString(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func requireString(m map[string]json.RawMessage, key string, cmd Command) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", &SchemaViolationError{Command: cmd, Field: key, Reason: "is required"}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &SchemaViolationError{Command: cmd, Field: key, Reason: "must be a string"}
	}
	if strings.TrimSpace(s) == "" {
		return "", &SchemaViolationError{Command: cmd, Field: key, Reason: "must not be empty"}
	}
	return s, nil
}

type planMilestoneJSON struct {
	Description *string         `json:"description"`
	Tasks       json.RawMessage `json:"tasks"`
}

func parsePlan(top map[string]json.RawMessage) (*PlanPayload, error) {
	desc, err := requireString(top, "description", CmdPlan)
	if err != nil {
		return nil, err
	}

	rawMilestones, ok := top["milestones"]
	if !ok {
		return nil, &SchemaViolationError{Command: CmdPlan, Field: "milestones", Reason: "is required"}
	}
	milestones := NewOrderedMap[planMilestoneJSON]()
	if err := json.Unmarshal(rawMilestones, milestones); err != nil {
		return nil, &SchemaViolationError{Command: CmdPlan, Field: "milestones", Reason: "must be a mapping of milestone objects"}
	}
	if milestones.Len() == 0 {
		return nil, &SchemaViolationError{Command: CmdPlan, Field: "milestones", Reason: "must not be empty"}
	}

	payload := &PlanPayload{Description: desc}
	for _, key := range milestones.Keys() {
		m, _ := milestones.Get(key)
		if m.Description == nil || strings.TrimSpace(*m.Description) == "" {
			return nil, &SchemaViolationError{Command: CmdPlan, Field: "milestones[" + key + "].description", Reason: "is required"}
		}
		if m.Tasks == nil {
			return nil, &SchemaViolationError{Command: CmdPlan, Field: "milestones[" + key + "].tasks", Reason: "is required"}
		}
		tasks := NewOrderedMap[string]()
		if err := json.Unmarshal(m.Tasks, tasks); err != nil {
			return nil, &SchemaViolationError{Command: CmdPlan, Field: "milestones[" + key + "].tasks", Reason: "must map task IDs to description strings"}
		}
		pm := PlanMilestone{Description: *m.Description}
		for _, tk := range tasks.Keys() {
			td, _ := tasks.Get(tk)
			pm.Tasks = append(pm.Tasks, PlanTask{Description: td})
		}
		payload.Milestones = append(payload.Milestones, pm)
	}
	return payload, nil
}

func parseSpecify(top map[string]json.RawMessage) (*SpecifyPayload, error) {
	rawTasks, ok := top["tasks"]
	if !ok {
		return nil, &SchemaViolationError{Command: CmdSpecify, Field: "tasks", Reason: "is required"}
	}
	tasks := NewOrderedMap[json.RawMessage]()
	if err := json.Unmarshal(rawTasks, tasks); err != nil {
		return nil, &SchemaViolationError{Command: CmdSpecify, Field: "tasks", Reason: "must be a mapping of task IDs to specifications"}
	}
	if tasks.Len() == 0 {
		return nil, &SchemaViolationError{Command: CmdSpecify, Field: "tasks", Reason: "must not be empty"}
	}

	payload := &SpecifyPayload{}
	for _, id := range tasks.Keys() {
		raw, _ := tasks.Get(id)
		content, err := canonicalSpecContent(raw)
		if err != nil {
			return nil, &SchemaViolationError{Command: CmdSpecify, Field: "tasks[" + id + "]", Reason: "must be a string or object"}
		}
		payload.Tasks = append(payload.Tasks, SpecEntry{TaskID: id, Content: content})
	}
	return payload, nil
}

// canonicalSpecContent flattens a specification value to text.
// Specifications are free-form (string or structured); structured values
// are stored as indented JSON so the round-trip is byte-stable.
func canonicalSpecContent(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", errValueNull
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type fileEntryJSON struct {
	Path    *string `json:"path"`
	Content *string `json:"content"`
}

func parseCode(top map[string]json.RawMessage, cmd Command) (*CodePayload, error) {
	rawFiles, ok := top["files"]
	if !ok {
		return nil, &SchemaViolationError{Command: cmd, Field: "files", Reason: "is required"}
	}
	var files []fileEntryJSON
	if err := json.Unmarshal(rawFiles, &files); err != nil {
		return nil, &SchemaViolationError{Command: cmd, Field: "files", Reason: "must be a sequence of {path, content} objects"}
	}
	if len(files) == 0 {
		return nil, &SchemaViolationError{Command: cmd, Field: "files", Reason: "must not be empty"}
	}

	payload := &CodePayload{}
	for i, f := range files {
		field := fieldIndex("files", i)
		if f.Path == nil || strings.TrimSpace(*f.Path) == "" {
			return nil, &SchemaViolationError{Command: cmd, Field: field + ".path", Reason: "is required"}
		}
		if f.Content == nil {
			return nil, &SchemaViolationError{Command: cmd, Field: field + ".content", Reason: "is required"}
		}
		payload.Files = append(payload.Files, FileEntry{Path: *f.Path, Content: *f.Content})
	}

	if rawDeps, ok := top["dependencies"]; ok {
		var deps []string
		if err := json.Unmarshal(rawDeps, &deps); err != nil {
			return nil, &SchemaViolationError{Command: cmd, Field: "dependencies", Reason: "must be a sequence of strings"}
		}
		for _, d := range deps {
			if strings.TrimSpace(d) != "" {
				payload.Dependencies = append(payload.Dependencies, d)
			}
		}
	}
	return payload, nil
}

func parseReadme(top map[string]json.RawMessage) (*ReadmePayload, error) {
	content, err := requireString(top, "readme", CmdReadme)
	if err != nil {
		return nil, err
	}
	return &ReadmePayload{Content: content}, nil
}

func fieldIndex(name string, i int) string {
	return fmt.Sprintf("%s[%d]", name, i)
}
