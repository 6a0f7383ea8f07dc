// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: RESOURCE_APT
// Spec: spec/resources/apt.md

// Package apt implements the "@core/apt" resource kind: Debian/Ubuntu
// package installation via apt-get/dpkg-query.
package apt

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

// ParamTypes is the schema a "@core/apt" plan item's params must validate
// against: either a single package name, or a list of package names.
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

// Resource is a single apt package to ensure installed.
type Resource struct {
	Package string
}

func (r Resource) String() string { return fmt.Sprintf("Apt(%s)", r.Package) }

// Resources expands validated params into one leaf per package, with no
// causality metadata of its own (package installs are independent of one
// another unless a plan module layer adds ordering).
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
		return "Apt::Installed"
	}
	return "Apt::NotInstalled"
}

// State observes whether resource.Package is installed via dpkg-query.
// An unrecognized dpkg status word is an error, not silently treated as
// "not installed" — a status this package has never seen before is more
// likely a parsing mismatch than a genuine new state.
func GetState(ctx context.Context, hostCtx *hostctx.Context, resource Resource) (State, error) {
	result, err := hostCtx.Runner.Run(ctx, executil.NewCommand("dpkg-query", "-W", "-f=${Status}", resource.Package))
	if err != nil {
		stderr := strings.ToLower(string(result.Stderr))
		if strings.Contains(stderr, "no packages found matching") {
			return NotInstalled, nil
		}
		return 0, fmt.Errorf("dpkg-query %s: %w", resource.Package, err)
	}

	stdout := strings.Trim(string(result.Stdout), "'")
	parts := strings.Split(stdout, " ")
	if len(parts) < 3 {
		return 0, fmt.Errorf("failed to parse dpkg status: %q", stdout)
	}
	switch parts[2] {
	case "not-installed", "unpacked", "half-installed", "config-files":
		return NotInstalled, nil
	case "installed":
		return Installed, nil
	default:
		return 0, fmt.Errorf("failed to parse dpkg status: %q", stdout)
	}
}

// Change is the install this resource needs, if any.
type Change struct {
	Package string
}

func (c Change) String() string { return fmt.Sprintf("Apt::Install(%s)", c.Package) }

// GetChange returns a non-nil Change when state shows the package is not
// yet installed.
func GetChange(resource Resource, state State) *Change {
	if state == Installed {
		return nil
	}
	return &Change{Package: resource.Package}
}

// Operations lowers change to an "apt-get update" followed by an
// "apt-get install" of the single package, the install ordered after the
// update via the "update" causality id.
func Operations(change Change) tree.Tree[*operation.Operation, causality.Meta[string]] {
	updateID := "update"
	update := operation.Operation{Kind: operation.KindApt, Apt: &operation.AptOperation{Variant: operation.AptUpdate}}
	install := operation.Operation{Kind: operation.KindApt, Apt: &operation.AptOperation{
		Variant:  operation.AptInstall,
		Packages: []string{change.Package},
	}}

	return tree.Branch(causality.Meta[string]{}, []tree.Tree[*operation.Operation, causality.Meta[string]]{
		tree.Leaf(causality.Meta[string]{ID: &updateID}, &update),
		tree.Leaf(causality.Meta[string]{Requires: []string{updateID}}, &install),
	})
}
