// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CLI_MODULE_LOAD
// Spec: spec/plan/evalstub.md

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lucidstage/pkg/plan"
	"lucidstage/pkg/plan/evalstub"
)

// loadModule resolves moduleRef (a path to a plan module written in the
// YAML format pkg/plan/evalstub documents) via the reference Evaluator and
// reads paramsPath, if given, as the raw top-level params the module's
// Setup validates against its own Params schema.
func loadModule(ctx context.Context, moduleRef, paramsPath string) (plan.Evaluator, *plan.Module, any, error) {
	evaluator := &evalstub.FileEvaluator{Store: evalstub.LocalStore{Root: filepath.Dir(moduleRef)}}

	module, err := evaluator.Load(ctx, filepath.Base(moduleRef))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading module %s: %w", moduleRef, err)
	}

	if paramsPath == "" {
		return evaluator, module, nil, nil
	}

	data, err := os.ReadFile(paramsPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading params file %s: %w", paramsPath, err)
	}

	var rawParams map[string]any
	if err := yaml.Unmarshal(data, &rawParams); err != nil {
		return nil, nil, nil, fmt.Errorf("parsing params file %s: %w", paramsPath, err)
	}
	return evaluator, module, rawParams, nil
}
