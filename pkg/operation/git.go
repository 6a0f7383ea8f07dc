// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package operation

import (
	"context"
	"fmt"

	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/executil"
)

// GitVariant selects which git invocation a GitOperation performs.
type GitVariant int

const (
	GitClone GitVariant = iota
	GitFetch
	GitCheckout
	GitPull
)

// GitOperation is a single git invocation against a working tree at Path.
type GitOperation struct {
	Variant GitVariant
	Path    string
	Repo    string // GitClone
	Version string // GitCheckout
	Force   bool   // GitCheckout
}

func (op GitOperation) String() string {
	switch op.Variant {
	case GitClone:
		return fmt.Sprintf("Git::Clone(repo = %s, path = %s)", op.Repo, op.Path)
	case GitFetch:
		return fmt.Sprintf("Git::Fetch(path = %s)", op.Path)
	case GitCheckout:
		return fmt.Sprintf("Git::Checkout(path = %s, version = %s, force = %v)", op.Path, op.Version, op.Force)
	case GitPull:
		return fmt.Sprintf("Git::Pull(path = %s)", op.Path)
	default:
		return "Git::Unknown"
	}
}

// MergeGit is the identity merge: each git operation targets an exact
// working tree and step, so there is nothing to coalesce.
func MergeGit(operations []GitOperation) []GitOperation {
	return operations
}

// ApplyGit runs op by shelling out to the system git binary. Unlike apt/
// pacman, git operations never need privilege elevation.
func ApplyGit(ctx context.Context, hostCtx *hostctx.Context, op GitOperation, lines chan<- executil.Line) error {
	var cmd executil.Command
	switch op.Variant {
	case GitClone:
		cmd = executil.NewCommand("git", "clone", op.Repo, op.Path)
	case GitFetch:
		cmd = executil.NewCommand("git", "-C", op.Path, "fetch", "--all", "--prune")
	case GitCheckout:
		args := []string{"-C", op.Path, "checkout"}
		if op.Force {
			args = append(args, "-f")
		}
		args = append(args, op.Version)
		cmd = executil.NewCommand("git", args...)
	case GitPull:
		cmd = executil.NewCommand("git", "-C", op.Path, "pull", "--ff-only")
	default:
		return fmt.Errorf("unknown git operation variant %d", op.Variant)
	}
	return executil.RunSplit(ctx, cmd, lines)
}
