// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CLI_APPLY
// Spec: spec/apply/engine.md

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lucidstage/pkg/apply"
	"lucidstage/pkg/progress"
)

// NewApplyCommand builds the "apply" subcommand: it drives the six-stage
// pipeline (spec §2) against a plan module, streaming the progress
// protocol (spec §4.5) as it goes, and executes any operations the diff
// produces.
func NewApplyCommand() *cobra.Command {
	var jsonOut bool
	var paramsPath string

	cmd := &cobra.Command{
		Use:   "apply <module>",
		Short: "Apply a plan module's desired state to the configured host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := ResolveFlags(cmd)
			return runApply(cmd, args[0], paramsPath, flags, jsonOut, flags.DryRun)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "stream the raw line-delimited progress protocol instead of a human summary")
	cmd.Flags().StringVar(&paramsPath, "params", "", "path to a YAML file of top-level params for the plan module")

	return cmd
}

// NewPlanCommand builds the "plan" subcommand: stages 1-5 of the pipeline,
// printing the computed operation tree without executing anything.
func NewPlanCommand() *cobra.Command {
	var jsonOut bool
	var paramsPath string

	cmd := &cobra.Command{
		Use:   "plan <module>",
		Short: "Compute and print the operations a plan module would apply, without executing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := ResolveFlags(cmd)
			return runApply(cmd, args[0], paramsPath, flags, jsonOut, true)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "stream the raw line-delimited progress protocol instead of a human summary")
	cmd.Flags().StringVar(&paramsPath, "params", "", "path to a YAML file of top-level params for the plan module")

	return cmd
}

func runApply(cmd *cobra.Command, moduleRef, paramsPath string, flags *ResolvedFlags, jsonOut, planOnly bool) error {
	ctx := cmd.Context()

	hostCtx, _, err := buildHostContext(ctx, flags.Config, flags.Verbose)
	if err != nil {
		return err
	}

	evaluator, module, rawParams, err := loadModule(ctx, moduleRef, paramsPath)
	if err != nil {
		return err
	}

	var emitter progress.Emitter
	if jsonOut {
		emitter = progress.NewJSONLinesEmitter(cmd.OutOrStdout())
	} else {
		emitter = newLineEmitter(cmd.OutOrStdout())
	}

	engine := apply.New(hostCtx, evaluator)
	if err := engine.Apply(ctx, module, rawParams, emitter, planOnly); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	return nil
}
