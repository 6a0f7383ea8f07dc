// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: RESOURCE_GIT
// Spec: spec/resources/git.md

// Package git implements the "@core/git" resource kind: a working tree
// cloned from a repo and optionally pinned to a version, kept up to date.
package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"lucidstage/pkg/causality"
	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/executil"
	"lucidstage/pkg/operation"
	"lucidstage/pkg/params"
	"lucidstage/pkg/tree"
)

// ParamTypes is the schema a "@core/git" plan item's params must validate
// against.
func ParamTypes() params.Schema {
	return params.Schema{Struct: &params.Struct{
		Keys: []string{"repo", "path", "version", "update", "force"},
		Fields: map[string]params.Field{
			"repo":    {Type: params.Type{Kind: params.String}},
			"path":    {Type: params.Type{Kind: params.TargetPath}},
			"version": {Type: params.Type{Kind: params.String}, Optional: true},
			"update":  {Type: params.Type{Kind: params.Boolean}, Optional: true},
			"force":   {Type: params.Type{Kind: params.Boolean}, Optional: true},
		},
	}}
}

// Resource is a single working tree to keep cloned and, optionally, pinned.
type Resource struct {
	Repo    string
	Path    string
	Version string // empty means "no pin"
	Update  bool
	Force   bool
}

func (r Resource) String() string {
	return fmt.Sprintf("Git(repo = %s, path = %s, version = %q, update = %v, force = %v)",
		r.Repo, r.Path, r.Version, r.Update, r.Force)
}

// Resources expands validated params into a single leaf resource. update
// defaults to true and force defaults to false, matching the params
// defaulting the source applies when these optional fields are absent.
func Resources(value params.Value) tree.Tree[*Resource, causality.Meta[string]] {
	r := Resource{
		Repo:   value.Object["repo"].Str,
		Path:   value.Object["path"].Path,
		Update: true,
	}
	if v, ok := value.Object["version"]; ok {
		r.Version = v.Str
	}
	if v, ok := value.Object["update"]; ok {
		r.Update = v.Bool
	}
	if v, ok := value.Object["force"]; ok {
		r.Force = v.Bool
	}
	return tree.Leaf[*Resource, causality.Meta[string]](causality.Meta[string]{}, &r)
}

// State observes a working tree's presence, head, branch and cleanliness.
type State struct {
	Absent  bool
	Head    string // empty if unknown
	Branch  string // empty if unknown
	IsDirty bool
}

func (s State) String() string {
	if s.Absent {
		return "Git::Absent"
	}
	return fmt.Sprintf("Git::Present(head = %q, branch = %q, is_dirty = %v)", s.Head, s.Branch, s.IsDirty)
}

// GetState observes resource's working tree. It returns an error for every
// mismatch the original guards against: a path that exists but is not
// resource's git dir, a remote that doesn't match resource.Repo, and an
// unforced dirty tree.
func GetState(ctx context.Context, hostCtx *hostctx.Context, resource Resource) (State, error) {
	exists, err := hostCtx.FS.Exists(resource.Path)
	if err != nil {
		return State{}, err
	}
	if !exists {
		return State{Absent: true}, nil
	}

	gitDirOut, err := gitRun(ctx, hostCtx, resource, "rev-parse", "--git-dir")
	if err != nil {
		return State{}, fmt.Errorf("%s is not a git repo: %w", resource.Path, err)
	}
	gitDir := strings.TrimSpace(string(gitDirOut))
	expectedGitDir := filepath.Join(resource.Path, ".git")
	actualGitDir := gitDir
	if !filepath.IsAbs(actualGitDir) {
		actualGitDir = filepath.Join(resource.Path, actualGitDir)
	}
	if expectedGitDir != actualGitDir {
		return State{}, fmt.Errorf("git dir mismatch: expected %s, got %s", expectedGitDir, actualGitDir)
	}

	var remote string
	if out, err := gitRun(ctx, hostCtx, resource, "config", "--get", "remote.origin.url"); err == nil {
		remote = strings.TrimSpace(string(out))
	}
	if remote != resource.Repo {
		return State{}, fmt.Errorf("remote origin mismatch: expected %s, got %q", resource.Repo, remote)
	}

	statusOut, err := gitRun(ctx, hostCtx, resource, "status", "--porcelain")
	if err != nil {
		return State{}, err
	}
	isDirty := len(strings.TrimSpace(string(statusOut))) > 0
	if isDirty && !resource.Force {
		return State{}, fmt.Errorf("working tree has uncommitted changes: %s", resource.Path)
	}

	var head, branch string
	if out, err := gitRun(ctx, hostCtx, resource, "rev-parse", "HEAD"); err == nil {
		head = strings.TrimSpace(string(out))
	}
	if out, err := gitRun(ctx, hostCtx, resource, "symbolic-ref", "--quiet", "--short", "HEAD"); err == nil {
		branch = strings.TrimSpace(string(out))
	}

	return State{Head: head, Branch: branch, IsDirty: isDirty}, nil
}

func gitRun(ctx context.Context, hostCtx *hostctx.Context, resource Resource, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", resource.Path}, args...)
	result, err := hostCtx.Runner.Run(ctx, executil.NewCommand("git", fullArgs...))
	if err != nil {
		return nil, err
	}
	return result.Stdout, nil
}

// Change is the single git mutation resource needs, if any.
type Change struct {
	Variant ChangeVariant
	Repo    string // Clone
	Path    string
	Version string // Checkout
	Force   bool   // Checkout
	Fetch   bool   // Checkout: fetch first
}

// ChangeVariant selects which Change fields are meaningful.
type ChangeVariant int

const (
	ChangeClone ChangeVariant = iota
	ChangeCheckout
	ChangePull
)

func (c Change) String() string {
	switch c.Variant {
	case ChangeClone:
		return fmt.Sprintf("Git::Clone(repo = %s, path = %s)", c.Repo, c.Path)
	case ChangeCheckout:
		return fmt.Sprintf("Git::Checkout(path = %s, version = %s, force = %v, fetch = %v)", c.Path, c.Version, c.Force, c.Fetch)
	case ChangePull:
		return fmt.Sprintf("Git::Pull(path = %s)", c.Path)
	default:
		return "Git::Unknown"
	}
}

// GetChange returns a non-nil Change when state shows resource is not yet
// satisfied.
func GetChange(resource Resource, state State) *Change {
	if state.Absent {
		return &Change{Variant: ChangeClone, Repo: resource.Repo, Path: resource.Path}
	}
	return changeForPresent(resource, state)
}

func changeForPresent(resource Resource, state State) *Change {
	if resource.Version != "" {
		matches := state.Branch == resource.Version || state.Head == resource.Version
		if matches {
			if !state.IsDirty && resource.Update && state.Branch == resource.Version {
				return &Change{Variant: ChangePull, Path: resource.Path}
			}
			return nil
		}
		return &Change{
			Variant: ChangeCheckout,
			Path:    resource.Path,
			Version: resource.Version,
			Force:   resource.Force,
			Fetch:   resource.Update,
		}
	}

	if !state.IsDirty && resource.Update && state.Branch != "" {
		return &Change{Variant: ChangePull, Path: resource.Path}
	}
	return nil
}

// Operations lowers change to the git operation(s) it requires. A
// fetch-before-checkout pairs two leaves via the "fetch" causality id; every
// other change is a single leaf.
func Operations(change Change) tree.Tree[*operation.Operation, causality.Meta[string]] {
	switch change.Variant {
	case ChangeClone:
		op := operation.Operation{Kind: operation.KindGit, Git: &operation.GitOperation{
			Variant: operation.GitClone, Repo: change.Repo, Path: change.Path,
		}}
		return tree.Leaf[*operation.Operation, causality.Meta[string]](causality.Meta[string]{}, &op)

	case ChangeCheckout:
		checkout := operation.Operation{Kind: operation.KindGit, Git: &operation.GitOperation{
			Variant: operation.GitCheckout, Path: change.Path, Version: change.Version, Force: change.Force,
		}}
		if !change.Fetch {
			return tree.Leaf[*operation.Operation, causality.Meta[string]](causality.Meta[string]{}, &checkout)
		}
		fetch := operation.Operation{Kind: operation.KindGit, Git: &operation.GitOperation{
			Variant: operation.GitFetch, Path: change.Path,
		}}
		fetchID := "fetch"
		return tree.Branch(causality.Meta[string]{}, []tree.Tree[*operation.Operation, causality.Meta[string]]{
			tree.Leaf(causality.Meta[string]{ID: &fetchID}, &fetch),
			tree.Leaf(causality.Meta[string]{Requires: []string{fetchID}}, &checkout),
		})

	case ChangePull:
		op := operation.Operation{Kind: operation.KindGit, Git: &operation.GitOperation{
			Variant: operation.GitPull, Path: change.Path,
		}}
		return tree.Leaf[*operation.Operation, causality.Meta[string]](causality.Meta[string]{}, &op)

	default:
		return tree.Branch[*operation.Operation, causality.Meta[string]](causality.Meta[string]{}, nil)
	}
}
