// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"errors"
	"fmt"
)

// The error taxonomy. All three kinds are recoverable: the operator can
// repaste or rerun the same command, and state is untouched when any of
// them is returned. File-level sync failures are not errors at this
// level; they are reported per path inside SyncReport.

// MalformedPayloadError means the pasted response is not parseable as
// JSON at all.
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// SchemaViolationError means the response parsed but does not satisfy
// the schema for the command that produced it. Field names the missing
// or ill-shaped element, e.g. "files[2].path".
type SchemaViolationError struct {
	Command Command
	Field   string
	Reason  string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation in %s response: field %q %s", e.Command, e.Field, e.Reason)
}

// UnknownTargetError means a referenced milestone or task does not
// exist in the project tree.
type UnknownTargetError struct {
	Kind string // "milestone" or "task"
	ID   string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.ID)
}

// ErrUnsuccessful is returned when a response envelope carries a
// non-success status: the model declined the request, so the payload is
// discarded and state stays untouched.
var ErrUnsuccessful = errors.New("model reported the request could not be completed")
