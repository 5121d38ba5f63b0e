// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/atelier/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive shell",
	Long: `Start the interactive shell. Each round-trip command renders a prompt
for your model (copied to the clipboard); paste the JSON reply back and
finish with the sentinel line. Type 'help' inside the shell for the
command list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl() error {
	orc, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orc.Close()

	r, err := repl.New(&repl.Config{Orc: orc, Clipboard: cfg.Clipboard()})
	if err != nil {
		return err
	}
	return r.Run()
}
