// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: RESOURCE_COMMAND
// Spec: spec/resources/command.md

// Package command implements the "@core/command" resource kind: an
// install/uninstall shell command pair, gated by an optional is-installed
// probe.
package command

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

// Status selects which of Install/Uninstall the resource enforces.
type Status int

const (
	StatusInstall Status = iota
	StatusUninstall
)

// ParamTypes is the schema a "@core/command" plan item's params must
// validate against: a "status"-tagged union of Install (install required,
// uninstall optional) and Uninstall (uninstall required, install optional).
func ParamTypes() params.Schema {
	isInstalled := params.Field{Type: params.Type{Kind: params.String}, Optional: true}
	return params.Schema{Union: []params.Struct{
		{
			Keys: []string{"status", "is_installed", "install", "uninstall"},
			Fields: map[string]params.Field{
				"status":       {Type: params.Type{Kind: params.Literal, Literal: "install"}},
				"is_installed": isInstalled,
				"install":      {Type: params.Type{Kind: params.String}},
				"uninstall":    {Type: params.Type{Kind: params.String}, Optional: true},
			},
		},
		{
			Keys: []string{"status", "is_installed", "install", "uninstall"},
			Fields: map[string]params.Field{
				"status":       {Type: params.Type{Kind: params.Literal, Literal: "uninstall"}},
				"is_installed": isInstalled,
				"uninstall":    {Type: params.Type{Kind: params.String}},
				"install":      {Type: params.Type{Kind: params.String}, Optional: true},
			},
		},
	}}
}

// Resource is a single install/uninstall command pair.
type Resource struct {
	Status      Status
	IsInstalled string // empty means "no probe"
	Install     string // empty means "none"
	Uninstall   string // empty means "none"
}

func (r Resource) String() string {
	status := "Install"
	if r.Status == StatusUninstall {
		status = "Uninstall"
	}
	return fmt.Sprintf("Command(status = %s, is_installed = %q, install = %q, uninstall = %q)",
		status, r.IsInstalled, r.Install, r.Uninstall)
}

// Resources expands validated params into a single leaf resource.
func Resources(value params.Value) tree.Tree[*Resource, causality.Meta[string]] {
	status := StatusInstall
	if value.Object["status"].Literal == "uninstall" {
		status = StatusUninstall
	}

	r := Resource{Status: status}
	if v, ok := value.Object["is_installed"]; ok {
		r.IsInstalled = v.Str
	}
	if v, ok := value.Object["install"]; ok {
		r.Install = v.Str
	}
	if v, ok := value.Object["uninstall"]; ok {
		r.Uninstall = v.Str
	}
	return tree.Leaf[*Resource, causality.Meta[string]](causality.Meta[string]{}, &r)
}

// State names the observed result of resource's is-installed probe.
type State int

const (
	StateUnknown State = iota
	StateInstalled
	StateNotInstalled
)

func (s State) String() string {
	switch s {
	case StateInstalled:
		return "Command::Installed"
	case StateNotInstalled:
		return "Command::NotInstalled"
	default:
		return "Command::Unknown"
	}
}

// GetState runs resource.IsInstalled and maps its exit status to
// Installed/NotInstalled. A missing or blank probe yields Unknown rather
// than an error: an is-installed check is optional, and its absence says
// nothing about whether the thing it would have checked is installed. A
// probe that fails to execute at all is treated like one that exits
// non-zero and yields NotInstalled.
func GetState(ctx context.Context, hostCtx *hostctx.Context, resource Resource) (State, error) {
	if strings.TrimSpace(resource.IsInstalled) == "" {
		return StateUnknown, nil
	}

	_, err := hostCtx.Runner.Run(ctx, executil.NewCommand("sh", "-c", resource.IsInstalled))
	if err != nil {
		return StateNotInstalled, nil
	}
	return StateInstalled, nil
}

// Change is the single command resource needs to run, if any.
type Change struct {
	Variant ChangeVariant
	Command string
}

// ChangeVariant distinguishes an install run from an uninstall run; both
// lower to the same operation shape, but the distinction matters for
// logging and progress reporting upstream.
type ChangeVariant int

const (
	ChangeInstall ChangeVariant = iota
	ChangeUninstall
)

func (c Change) String() string {
	if c.Variant == ChangeUninstall {
		return fmt.Sprintf("Command::Uninstall(%s)", c.Command)
	}
	return fmt.Sprintf("Command::Install(%s)", c.Command)
}

// GetChange returns a non-nil Change per the (status, state) table: Install
// resources run their install command when NotInstalled, Uninstall
// resources run their uninstall command when Installed, and an Unknown
// state never produces a change since there is nothing to compare against.
func GetChange(resource Resource, state State) *Change {
	switch {
	case resource.Status == StatusInstall && state == StateInstalled:
		return nil
	case resource.Status == StatusInstall && state == StateNotInstalled:
		if resource.Install == "" {
			return nil
		}
		return &Change{Variant: ChangeInstall, Command: resource.Install}
	case resource.Status == StatusUninstall && state == StateNotInstalled:
		return nil
	case resource.Status == StatusUninstall && state == StateInstalled:
		if resource.Uninstall == "" {
			return nil
		}
		return &Change{Variant: ChangeUninstall, Command: resource.Uninstall}
	default:
		return nil
	}
}

// Operations lowers change to a single shell command operation.
func Operations(change Change) tree.Tree[*operation.Operation, causality.Meta[string]] {
	op := operation.Operation{Kind: operation.KindCommand, Command: &operation.CommandOperation{Command: change.Command}}
	return tree.Leaf[*operation.Operation, causality.Meta[string]](causality.Meta[string]{}, &op)
}
