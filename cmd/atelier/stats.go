// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/atelier/pkg/orchestrator"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the project tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer orc.Close()
		rec := orchestrator.CollectStats(orc.Project())
		out, err := yaml.Marshal(rec)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
