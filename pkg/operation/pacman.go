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

// PacmanVariant selects which pacman invocation a PacmanOperation performs.
type PacmanVariant int

const (
	PacmanUpgrade PacmanVariant = iota
	PacmanInstall
)

// PacmanOperation is a single pacman invocation: a full system upgrade, or
// an install of a package set.
type PacmanOperation struct {
	Variant  PacmanVariant
	Packages []string // only meaningful when Variant == PacmanInstall
}

func (op PacmanOperation) String() string {
	switch op.Variant {
	case PacmanUpgrade:
		return "Pacman::Upgrade"
	case PacmanInstall:
		return fmt.Sprintf("Pacman::Install(packages = [%s])", strings.Join(op.Packages, ", "))
	default:
		return "Pacman::Unknown"
	}
}

// MergePacman coalesces a set of pacman operations to at most one Upgrade
// followed by at most one Install, whose package list is the sorted union
// of every input Install's packages.
func MergePacman(operations []PacmanOperation) []PacmanOperation {
	upgrade := false
	install := make(map[string]struct{})

	for _, op := range operations {
		switch op.Variant {
		case PacmanUpgrade:
			upgrade = true
		case PacmanInstall:
			for _, pkg := range op.Packages {
				install[pkg] = struct{}{}
			}
		}
	}

	var merged []PacmanOperation
	if upgrade {
		merged = append(merged, PacmanOperation{Variant: PacmanUpgrade})
	}
	if len(install) > 0 {
		packages := make([]string, 0, len(install))
		for pkg := range install {
			packages = append(packages, pkg)
		}
		sort.Strings(packages)
		merged = append(merged, PacmanOperation{Variant: PacmanInstall, Packages: packages})
	}
	return merged
}

// ApplyPacman runs op via pacman under privilege elevation, non-interactive
// and with colored output disabled so progress lines parse cleanly.
func ApplyPacman(ctx context.Context, hostCtx *hostctx.Context, op PacmanOperation, lines chan<- executil.Line) error {
	var args []string
	switch op.Variant {
	case PacmanUpgrade:
		args = []string{"-Syu", "--noconfirm", "--color=never"}
	case PacmanInstall:
		args = append([]string{"-S", "--noconfirm", "--needed", "--color=never"}, op.Packages...)
	default:
		return fmt.Errorf("unknown pacman operation variant %d", op.Variant)
	}

	cmd := executil.NewCommand("pacman", args...)
	return executil.RunSplit(ctx, executil.Privileged(cmd), lines)
}
