// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: PLAN_LOAD
// Spec: spec/plan/load.md

package plan

import (
	"context"
	"fmt"

	"lucidstage/pkg/causality"
	"lucidstage/pkg/params"
	"lucidstage/pkg/resource"
	"lucidstage/pkg/tree"
)

// paramsTree is the tree shape Build produces: one leaf per "@core/*" item,
// branches splicing in recursively-loaded modules.
type paramsTree = tree.Tree[*ParamsRef, causality.Meta[string]]

// Build evaluates module against rawParams, recursively resolving every
// "@core/*" item to a validated ParamsRef leaf and every other item to
// another module's own Build output, spliced as a branch carrying the
// item's causality metadata.
func Build(ctx context.Context, ev Evaluator, module *Module, rawParams any) (paramsTree, error) {
	value, err := validateModuleParams(module, rawParams)
	if err != nil {
		return paramsTree{}, fmt.Errorf("module %s: %w", module.Name, err)
	}

	items, err := module.Setup(value)
	if err != nil {
		return paramsTree{}, fmt.Errorf("module %s: setup: %w", module.Name, err)
	}

	children := make([]paramsTree, 0, len(items))
	for _, item := range items {
		child, err := buildItem(ctx, ev, module, item)
		if err != nil {
			return paramsTree{}, err
		}
		children = append(children, child)
	}
	return tree.Branch[*ParamsRef, causality.Meta[string]](causality.Meta[string]{}, children), nil
}

func validateModuleParams(module *Module, rawParams any) (params.Value, error) {
	if module.Params == nil {
		return params.Value{}, nil
	}
	return params.Validate(*module.Params, rawParams, module.SourceDir)
}

func buildItem(ctx context.Context, ev Evaluator, parent *Module, item Item) (paramsTree, error) {
	meta := causality.Meta[string]{ID: item.ID, Requires: item.Requires, RequiredBy: item.RequiredBy}

	if kind, ok := resource.KindFromModuleName(item.Module); ok {
		value, err := params.Validate(ParamTypesFor(kind), item.Params, parent.SourceDir)
		if err != nil {
			return paramsTree{}, fmt.Errorf("%s: %w", item.Module, err)
		}
		ref := &ParamsRef{Kind: kind, Value: value}
		return tree.Leaf(meta, ref), nil
	}

	if ev == nil {
		return paramsTree{}, fmt.Errorf("%s: no evaluator configured to load module references", item.Module)
	}

	sub, err := ev.Load(ctx, item.Module)
	if err != nil {
		return paramsTree{}, fmt.Errorf("loading %s: %w", item.Module, err)
	}

	subtree, err := Build(ctx, ev, sub, item.Params)
	if err != nil {
		return paramsTree{}, err
	}

	// Build always returns a Branch with zero metadata at its own top, so
	// splicing in the item's id/requires/required_by simply replaces it.
	if subtree.IsLeaf() {
		return tree.Leaf(meta, subtree.Node()), nil
	}
	return tree.Branch(meta, subtree.Children()), nil
}
