// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync <Task-ID|all>",
	Short: "Write project files from state to disk",
	Long: `Write the file sets declared in project state to the output directory.
With a task ID, only that task's files are written and nothing is
deleted. With 'all', the directory is made an exact mirror of state:
stale files are removed and the dependency manifest is regenerated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer orc.Close()

		report, err := orc.Sync(args[0])
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		for _, p := range report.Written {
			fmt.Printf("  %s %s\n", green("wrote"), p)
		}
		for _, p := range report.Deleted {
			fmt.Printf("  %s %s\n", red("deleted"), p)
		}
		for _, f := range report.Failed {
			fmt.Printf("  %s %s: %v\n", red("failed"), f.Path, f.Err)
		}
		fmt.Printf("%d written, %d deleted, %d unchanged, %d failed\n",
			len(report.Written), len(report.Deleted), len(report.Skipped), len(report.Failed))
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d path(s) failed; dirty flags for affected tasks were kept", len(report.Failed))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
