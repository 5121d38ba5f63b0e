// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Debug logging. logf lines go to stderr when verbose mode is on, and
// to the log sink file when one is open. Operator-facing output never
// goes through here; that belongs to the front end.

var (
	logVerbose bool
	logSink    *os.File
)

// SetVerbose toggles logf output on stderr.
func SetVerbose(v bool) { logVerbose = v }

// openLogSink starts appending logf output to the file at path,
// creating parent directories as needed.
func openLogSink(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	logSink = f
	return nil
}

// closeLogSink stops file logging.
func closeLogSink() {
	if logSink != nil {
		logSink.Close()
		logSink = nil
	}
}

func logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if logVerbose {
		fmt.Fprintf(os.Stderr, "[atelier] %s\n", msg)
	}
	if logSink != nil {
		fmt.Fprintf(logSink, "%s %s\n", time.Now().Format("15:04:05.000"), msg)
	}
}
