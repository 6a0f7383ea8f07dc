// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package cli wires together the lucidstage root Cobra command and global
// CLI options.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lucidstage/internal/cli/commands"
)

// NewRootCommand constructs the lucidstage root Cobra command: apply and
// plan, the two subcommands the core's six-stage pipeline drives.
//
// Feature: ARCH_OVERVIEW
// Spec: spec/overview.md
func NewRootCommand() *cobra.Command {
	version := os.Getenv("LUCIDSTAGE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "lucidstage",
		Short:         "lucidstage – a declarative host configuration engine",
		Long:          "lucidstage drives a host toward a plan module's desired state: packages installed, files present, git checkouts, and arbitrary commands, streaming progress as it plans and applies.",
		SilenceUsage:  true, // don't dump usage on user errors
		SilenceErrors: true, // centralize error printing in main()
	}

	// Global flags - registered in lexicographic order for deterministic help output
	cmd.PersistentFlags().StringP("config", "c", "", "path to lucidstage.yml")
	cmd.PersistentFlags().Bool("dry-run", false, "alias for plan: compute operations without executing them")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	// Version command – simple and explicit.
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of lucidstage",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "lucidstage version %s\n", version)
		},
	})

	// Subcommands - keep registrations in lexicographic order by .Use
	// to ensure deterministic help output.
	cmd.AddCommand(commands.NewApplyCommand())
	cmd.AddCommand(commands.NewPlanCommand())

	return cmd
}
