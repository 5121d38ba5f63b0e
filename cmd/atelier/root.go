// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/atelier/pkg/orchestrator"
)

var (
	cfgPath string
	verbose bool
	cfg     orchestrator.Config
)

var rootCmd = &cobra.Command{
	Use:   "atelier",
	Short: "Drive a plan/specify/code/refine/sync workflow with a model",
	Long: `atelier is a local, stateful orchestrator for building software with a
language model you operate by hand. It keeps the project tree
(milestones, tasks, specifications, code artifacts) in a single state
file, builds the context for each model round trip, validates and
merges the pasted response, and syncs generated files to disk.

Run without a subcommand to start the interactive shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		switch {
		case cfgPath != "":
			cfg, err = orchestrator.LoadConfig(cfgPath)
		case fileExists(orchestrator.DefaultConfigFile):
			cfg, err = orchestrator.LoadConfig(orchestrator.DefaultConfigFile)
		default:
			cfg = orchestrator.DefaultConfig()
		}
		if err != nil {
			return err
		}
		if verbose {
			cfg.Verbose = true
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a configuration YAML file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "echo debug logging to stderr")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// newOrchestrator builds the facade from the resolved configuration.
// Callers own Close.
func newOrchestrator() (*orchestrator.Orchestrator, error) {
	orc, err := orchestrator.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading project state: %w", err)
	}
	return orc, nil
}
