// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: PLAN_MODULE
// Spec: spec/plan/module.md

// Package plan evaluates a plan module into a tree of typed resource
// parameters: it resolves "@core/*" items against the built-in resource
// kinds, loads and splices any other module reference recursively, and
// validates every item's params against its target's schema before a
// single resource is ever expanded.
package plan

import (
	"context"

	"lucidstage/pkg/params"
)

// Module is one plan module: a name, an optional params schema its Setup
// expects, and the Setup function that turns validated params into the
// items this module evaluates to.
type Module struct {
	Name    string
	Version *string
	Params  *params.Schema
	Setup   SetupFunc

	// SourceDir is the directory HostPath fields resolve against, both in
	// this module's own Params and in the params of the "@core" items its
	// Setup returns. Module references in those items are handed to the
	// Evaluator as written, not resolved against it. It is empty for a
	// module with no on-disk origin (e.g. one built entirely in Go for a
	// test).
	SourceDir string
}

// SetupFunc turns a module's validated top-level params into the list of
// items it evaluates to. value is the zero params.Value when the module
// declares no Params schema.
type SetupFunc func(value params.Value) ([]Item, error)

// Item is one entry of a module's Setup output: either a "@core/<kind>"
// resource reference or a path/URL to another plan module, along with the
// causality metadata that positions it among its siblings.
type Item struct {
	// Module is "@core/apt", "@core/pacman", "@core/file", "@core/git",
	// "@core/command", or a reference another Evaluator knows how to load.
	Module string
	// ID, if set, names this item so other items in the same module can
	// Require or RequiredBy it.
	ID *string
	// Params is the raw, not-yet-validated value this item passes to its
	// target: a resource kind's ParamTypes schema, or another module's
	// Params schema.
	Params any

	Requires   []string
	RequiredBy []string
}

// Evaluator loads a plan module by reference. A plan module's Setup may
// name another module by path or URL; Build calls back into Evaluator to
// resolve it before recursing.
type Evaluator interface {
	Load(ctx context.Context, ref string) (*Module, error)
}

// Store is the read-only byte source an Evaluator implementation fetches
// module definitions from, keeping the "where do bytes come from" concern
// separate from "how are they parsed into a Module".
type Store interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}
