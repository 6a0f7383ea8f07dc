// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: PLAN_RESOURCE
// Spec: spec/plan/resource.md

package plan

import (
	"context"
	"fmt"

	"lucidstage/pkg/causality"
	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/operation"
	"lucidstage/pkg/params"
	"lucidstage/pkg/resource"
	"lucidstage/pkg/resource/apt"
	"lucidstage/pkg/resource/command"
	"lucidstage/pkg/resource/file"
	"lucidstage/pkg/resource/git"
	"lucidstage/pkg/resource/pacman"
	"lucidstage/pkg/tree"
)

// ParamsRef names which resource kind a plan item targets and carries its
// already-validated params, ahead of expansion into concrete resources.
type ParamsRef struct {
	Kind  resource.Kind
	Value params.Value
}

func (p ParamsRef) String() string { return string(p.Kind) }

// ResourceRef is the tagged union over every built-in kind's concrete
// Resource type: exactly one of the kind-matching fields is set. pkg/plan
// is the one place that type-switches resource.Kind into calls on the
// matching subpackage, so every other package can stay free of the other
// four kinds.
type ResourceRef struct {
	Kind    resource.Kind
	Apt     *apt.Resource
	Pacman  *pacman.Resource
	File    *file.Resource
	Git     *git.Resource
	Command *command.Resource
}

func (r ResourceRef) String() string {
	switch r.Kind {
	case resource.KindApt:
		return r.Apt.String()
	case resource.KindPacman:
		return r.Pacman.String()
	case resource.KindFile:
		return r.File.String()
	case resource.KindGit:
		return r.Git.String()
	case resource.KindCommand:
		return r.Command.String()
	default:
		return "Resource(unknown)"
	}
}

// StateRef is the tagged union over every built-in kind's observed State.
type StateRef struct {
	Kind    resource.Kind
	Apt     apt.State
	Pacman  pacman.State
	File    file.State
	Git     git.State
	Command command.State
}

func (s StateRef) String() string {
	switch s.Kind {
	case resource.KindApt:
		return s.Apt.String()
	case resource.KindPacman:
		return s.Pacman.String()
	case resource.KindFile:
		return s.File.String()
	case resource.KindGit:
		return s.Git.String()
	case resource.KindCommand:
		return s.Command.String()
	default:
		return "State(unknown)"
	}
}

// ResourceState pairs an expanded resource with its observed state, the
// input ComputeChange needs.
type ResourceState struct {
	Resource *ResourceRef
	State    StateRef
}

// ChangeRef is the tagged union over every built-in kind's Change.
type ChangeRef struct {
	Kind    resource.Kind
	Apt     *apt.Change
	Pacman  *pacman.Change
	File    *file.Change
	Git     *git.Change
	Command *command.Change
}

func (c ChangeRef) String() string {
	switch c.Kind {
	case resource.KindApt:
		return c.Apt.String()
	case resource.KindPacman:
		return c.Pacman.String()
	case resource.KindFile:
		return c.File.String()
	case resource.KindGit:
		return c.Git.String()
	case resource.KindCommand:
		return c.Command.String()
	default:
		return "Change(unknown)"
	}
}

// ParamTypesFor returns the params schema a "@core/<kind>" item's params
// must validate against.
func ParamTypesFor(kind resource.Kind) params.Schema {
	switch kind {
	case resource.KindApt:
		return apt.ParamTypes()
	case resource.KindPacman:
		return pacman.ParamTypes()
	case resource.KindFile:
		return file.ParamTypes()
	case resource.KindGit:
		return git.ParamTypes()
	case resource.KindCommand:
		return command.ParamTypes()
	default:
		return params.Schema{}
	}
}

// ExpandResources dispatches to kind's Resources function and wraps every
// leaf it produces in a ResourceRef.
func ExpandResources(kind resource.Kind, value params.Value) tree.Tree[*ResourceRef, causality.Meta[string]] {
	switch kind {
	case resource.KindApt:
		return tree.MapNode(apt.Resources(value), func(r *apt.Resource) *ResourceRef {
			return &ResourceRef{Kind: kind, Apt: r}
		})
	case resource.KindPacman:
		return tree.MapNode(pacman.Resources(value), func(r *pacman.Resource) *ResourceRef {
			return &ResourceRef{Kind: kind, Pacman: r}
		})
	case resource.KindFile:
		return tree.MapNode(file.Resources(value), func(r *file.Resource) *ResourceRef {
			return &ResourceRef{Kind: kind, File: r}
		})
	case resource.KindGit:
		return tree.MapNode(git.Resources(value), func(r *git.Resource) *ResourceRef {
			return &ResourceRef{Kind: kind, Git: r}
		})
	case resource.KindCommand:
		return tree.MapNode(command.Resources(value), func(r *command.Resource) *ResourceRef {
			return &ResourceRef{Kind: kind, Command: r}
		})
	default:
		return tree.Branch[*ResourceRef, causality.Meta[string]](causality.Meta[string]{}, nil)
	}
}

// ObserveState dispatches to kind's GetState function.
func ObserveState(ctx context.Context, hostCtx *hostctx.Context, r *ResourceRef) (StateRef, error) {
	switch r.Kind {
	case resource.KindApt:
		s, err := apt.GetState(ctx, hostCtx, *r.Apt)
		return StateRef{Kind: r.Kind, Apt: s}, err
	case resource.KindPacman:
		s, err := pacman.GetState(ctx, hostCtx, *r.Pacman)
		return StateRef{Kind: r.Kind, Pacman: s}, err
	case resource.KindFile:
		s, err := file.GetState(hostCtx, *r.File)
		return StateRef{Kind: r.Kind, File: s}, err
	case resource.KindGit:
		s, err := git.GetState(ctx, hostCtx, *r.Git)
		return StateRef{Kind: r.Kind, Git: s}, err
	case resource.KindCommand:
		s, err := command.GetState(ctx, hostCtx, *r.Command)
		return StateRef{Kind: r.Kind, Command: s}, err
	default:
		return StateRef{}, fmt.Errorf("plan: unknown resource kind %q", r.Kind)
	}
}

// ComputeChange dispatches to kind's GetChange function, returning nil
// when the resource kind reports nothing to do.
func ComputeChange(r *ResourceRef, s StateRef) *ChangeRef {
	switch r.Kind {
	case resource.KindApt:
		c := apt.GetChange(*r.Apt, s.Apt)
		if c == nil {
			return nil
		}
		return &ChangeRef{Kind: r.Kind, Apt: c}
	case resource.KindPacman:
		c := pacman.GetChange(*r.Pacman, s.Pacman)
		if c == nil {
			return nil
		}
		return &ChangeRef{Kind: r.Kind, Pacman: c}
	case resource.KindFile:
		c := file.GetChange(*r.File, s.File)
		if c == nil {
			return nil
		}
		return &ChangeRef{Kind: r.Kind, File: c}
	case resource.KindGit:
		c := git.GetChange(*r.Git, s.Git)
		if c == nil {
			return nil
		}
		return &ChangeRef{Kind: r.Kind, Git: c}
	case resource.KindCommand:
		c := command.GetChange(*r.Command, s.Command)
		if c == nil {
			return nil
		}
		return &ChangeRef{Kind: r.Kind, Command: c}
	default:
		return nil
	}
}

// LowerOperations dispatches to kind's Operations function.
func LowerOperations(c *ChangeRef) tree.Tree[*operation.Operation, causality.Meta[string]] {
	switch c.Kind {
	case resource.KindApt:
		return apt.Operations(*c.Apt)
	case resource.KindPacman:
		return pacman.Operations(*c.Pacman)
	case resource.KindFile:
		return file.Operations(*c.File)
	case resource.KindGit:
		return git.Operations(*c.Git)
	case resource.KindCommand:
		return command.Operations(*c.Command)
	default:
		return tree.Branch[*operation.Operation, causality.Meta[string]](causality.Meta[string]{}, nil)
	}
}
