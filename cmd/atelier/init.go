// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/atelier/pkg/orchestrator"
)

var (
	initArchetype string
	initList      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a project from an archetype",
	Long: `Create the project state file from a predefined archetype seed,
skipping the initial plan round trip. Fails if a state file already
exists.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if initList {
			fmt.Println(strings.Join(orchestrator.Archetypes(), "\n"))
			return nil
		}
		if initArchetype == "" {
			return fmt.Errorf("--archetype is required (use --list to see choices)")
		}
		if fileExists(cfg.StateFile) {
			return fmt.Errorf("state file %s already exists; refusing to overwrite", cfg.StateFile)
		}

		cfg.Archetype = initArchetype
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer orc.Close()

		fmt.Printf("Seeded %s from archetype %s.\n", orc.StatePath(), initArchetype)
		if out, err := orc.PlanOutline(); err == nil {
			fmt.Print(out)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initArchetype, "archetype", "", "archetype seed to bootstrap from")
	initCmd.Flags().BoolVar(&initList, "list", false, "list available archetypes")
	rootCmd.AddCommand(initCmd)
}
