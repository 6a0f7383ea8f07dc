// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CLI_GLOBAL_FLAGS
// Spec: spec/core/global-flags.md

package commands

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"lucidstage/pkg/config"
)

// ResolvedFlags holds the global flags every subcommand reads, resolved
// with the same flag > env > default precedence the teacher's multi-
// environment CLI used.
type ResolvedFlags struct {
	Config  string
	Verbose bool
	DryRun  bool
}

// ResolveFlags resolves the persistent flags registered on the root
// command.
func ResolveFlags(cmd *cobra.Command) *ResolvedFlags {
	configFlag, _ := cmd.Flags().GetString("config")
	verboseFlag, _ := cmd.Flags().GetBool("verbose")
	dryRunFlag, _ := cmd.Flags().GetBool("dry-run")

	return &ResolvedFlags{
		Config:  resolveString(configFlag, os.Getenv("LUCIDSTAGE_CONFIG"), config.DefaultConfigPath()),
		Verbose: resolveBool(verboseFlag, os.Getenv("LUCIDSTAGE_VERBOSE")),
		DryRun:  dryRunFlag,
	}
}

func resolveString(flag, env, defaultValue string) string {
	if flag != "" {
		return flag
	}
	if env != "" {
		return env
	}
	return defaultValue
}

func resolveBool(flag bool, env string) bool {
	if flag {
		return true
	}
	parsed, err := strconv.ParseBool(env)
	return err == nil && parsed
}
