// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: RESOURCE_PACMAN
// Spec: spec/resources/pacman.md

// Package pacman implements the "@core/pacman" resource kind: Arch Linux
// package installation via pacman.
package pacman

import (
	"context"
	"fmt"
	"strings"

	"lucidstage/pkg/causality"
	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/executil"
	"lucidstage/pkg/operation"
	"lucidstage/pkg/params"
	"lucidstage/pkg/tree"
)

// ParamTypes is the schema a "@core/pacman" plan item's params must
// validate against: either a single package name, or a list of them.
func ParamTypes() params.Schema {
	return params.Schema{Union: []params.Struct{
		{
			Keys:   []string{"package"},
			Fields: map[string]params.Field{"package": {Type: params.Type{Kind: params.String}}},
		},
		{
			Keys: []string{"packages"},
			Fields: map[string]params.Field{
				"packages": {Type: params.Type{Kind: params.List, Item: &params.Type{Kind: params.String}}},
			},
		},
	}}
}

// Resource is a single pacman package to ensure installed.
type Resource struct {
	Package string
}

func (r Resource) String() string { return fmt.Sprintf("Pacman(%s)", r.Package) }

// Resources expands validated params into one leaf per package.
func Resources(value params.Value) tree.Tree[*Resource, causality.Meta[string]] {
	var resources []Resource
	if pkg, ok := value.Object["package"]; ok {
		resources = append(resources, Resource{Package: pkg.Str})
	}
	if pkgs, ok := value.Object["packages"]; ok {
		for _, item := range pkgs.List {
			resources = append(resources, Resource{Package: item.Str})
		}
	}

	children := make([]tree.Tree[*Resource, causality.Meta[string]], len(resources))
	for i := range resources {
		r := resources[i]
		children[i] = tree.Leaf[*Resource, causality.Meta[string]](causality.Meta[string]{}, &r)
	}
	return tree.Branch(causality.Meta[string]{}, children)
}

// State names whether a package is currently installed.
type State int

const (
	NotInstalled State = iota
	Installed
)

func (s State) String() string {
	if s == Installed {
		return "Pacman::Installed"
	}
	return "Pacman::NotInstalled"
}

// GetState observes whether resource.Package is installed via
// "pacman -Q <package>": empty stdout with a zero exit is unexpected and
// treated as a parse failure, and a "was not found" stderr message is the
// only recognized not-installed signal.
func GetState(ctx context.Context, hostCtx *hostctx.Context, resource Resource) (State, error) {
	result, err := hostCtx.Runner.Run(ctx, executil.NewCommand("pacman", "-Q", resource.Package))
	if err != nil {
		stderr := string(result.Stderr)
		if strings.Contains(stderr, "was not found") {
			return NotInstalled, nil
		}
		return 0, fmt.Errorf("pacman -Q %s: %w", resource.Package, err)
	}

	if strings.TrimSpace(string(result.Stdout)) == "" {
		return 0, fmt.Errorf("failed to determine package status: %q", result.Stdout)
	}
	return Installed, nil
}

// Change is the install this resource needs, if any.
type Change struct {
	Package string
}

func (c Change) String() string { return fmt.Sprintf("Pacman::Install(%s)", c.Package) }

// GetChange returns a non-nil Change when state shows the package is not
// yet installed.
func GetChange(resource Resource, state State) *Change {
	if state == Installed {
		return nil
	}
	return &Change{Package: resource.Package}
}

// Operations lowers change to a "pacman -Syu" upgrade followed by a
// "pacman -S" install of the package, ordered after the upgrade via the
// "upgrade" causality id.
func Operations(change Change) tree.Tree[*operation.Operation, causality.Meta[string]] {
	upgradeID := "upgrade"
	upgrade := operation.Operation{Kind: operation.KindPacman, Pacman: &operation.PacmanOperation{Variant: operation.PacmanUpgrade}}
	install := operation.Operation{Kind: operation.KindPacman, Pacman: &operation.PacmanOperation{
		Variant:  operation.PacmanInstall,
		Packages: []string{change.Package},
	}}

	return tree.Branch(causality.Meta[string]{}, []tree.Tree[*operation.Operation, causality.Meta[string]]{
		tree.Leaf(causality.Meta[string]{ID: &upgradeID}, &upgrade),
		tree.Leaf(causality.Meta[string]{Requires: []string{upgradeID}}, &install),
	})
}
