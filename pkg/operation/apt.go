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
	"sort"
	"strings"

	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/executil"
)

// AptVariant selects which apt-get invocation an AptOperation performs.
type AptVariant int

const (
	AptUpdate AptVariant = iota
	AptInstall
)

// AptOperation is a single apt-get invocation: either a package index
// refresh, or an install of a package set.
type AptOperation struct {
	Variant  AptVariant
	Packages []string // only meaningful when Variant == AptInstall
}

func (op AptOperation) String() string {
	switch op.Variant {
	case AptUpdate:
		return "Apt::Update"
	case AptInstall:
		return fmt.Sprintf("Apt::Install(packages = [%s])", strings.Join(op.Packages, ", "))
	default:
		return "Apt::Unknown"
	}
}

// MergeApt coalesces a set of apt operations within one epoch down to at
// most one Update followed by at most one Install, whose package list is
// the sorted union of every input Install's packages.
func MergeApt(operations []AptOperation) []AptOperation {
	update := false
	install := make(map[string]struct{})

	for _, op := range operations {
		switch op.Variant {
		case AptUpdate:
			update = true
		case AptInstall:
			for _, pkg := range op.Packages {
				install[pkg] = struct{}{}
			}
		}
	}

	var merged []AptOperation
	if update {
		merged = append(merged, AptOperation{Variant: AptUpdate})
	}
	if len(install) > 0 {
		packages := make([]string, 0, len(install))
		for pkg := range install {
			packages = append(packages, pkg)
		}
		sort.Strings(packages)
		merged = append(merged, AptOperation{Variant: AptInstall, Packages: packages})
	}
	return merged
}

// ApplyApt runs op via apt-get under privilege elevation, with
// DEBIAN_FRONTEND=noninteractive so install prompts never block.
func ApplyApt(ctx context.Context, hostCtx *hostctx.Context, op AptOperation, lines chan<- executil.Line) error {
	env := map[string]string{"DEBIAN_FRONTEND": "noninteractive"}

	var args []string
	switch op.Variant {
	case AptUpdate:
		args = []string{"update"}
	case AptInstall:
		args = append([]string{"install", "-y"}, op.Packages...)
	default:
		return fmt.Errorf("unknown apt operation variant %d", op.Variant)
	}

	cmd := executil.NewCommand("apt-get", args...)
	cmd.Env = env
	return executil.RunSplit(ctx, executil.Privileged(cmd), lines)
}
