// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/atelier/pkg/orchestrator"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display project state without a model round trip",
}

var showPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Display the current plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer orc.Close()
		out, err := orc.PlanOutline()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var showSpecCmd = &cobra.Command{
	Use:   "spec <Milestone-ID>",
	Short: "Display a milestone's specifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer orc.Close()
		out, err := orc.SpecText(args[0])
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var showCodeCmd = &cobra.Command{
	Use:   "code <Task-ID>",
	Short: "Display a task's generated files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer orc.Close()
		code, err := orc.CodeListing(args[0])
		if err != nil {
			return err
		}
		cyan := color.New(color.FgCyan).SprintFunc()
		for _, f := range code.Files {
			fmt.Println(cyan("--- " + f.Path + " ---"))
			fmt.Println(f.Content)
		}
		if len(code.Dependencies) > 0 {
			fmt.Printf("dependencies: %s\n", strings.Join(code.Dependencies, ", "))
		}
		return nil
	},
}

var showPromptCmd = &cobra.Command{
	Use:   "prompt <command> [target-ID]",
	Short: "Render a prompt without applying anything, with a token estimate",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer orc.Close()
		wc := orchestrator.Command(args[0])
		if !wc.IsValid() {
			return fmt.Errorf("unknown command %q", args[0])
		}
		target := ""
		if len(args) == 2 {
			target = args[1]
		}
		prompt, err := orc.BuildPrompt(wc, target, "")
		if err != nil {
			return err
		}
		fmt.Print(prompt)
		fmt.Fprintf(os.Stderr, "~%d tokens\n", orchestrator.EstimateTokens(prompt))
		return nil
	},
}

func init() {
	showCmd.AddCommand(showPlanCmd, showSpecCmd, showCodeCmd, showPromptCmd)
	rootCmd.AddCommand(showCmd)
}
