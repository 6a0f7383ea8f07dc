// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CORE_RESOURCE
// Spec: spec/core/resource.md

// Package resource names the built-in resource kinds. The capability set
// each kind implements (ParamTypes/Resources/State/Change/Operations) is
// not expressed as a shared Go interface here, since each kind's params,
// resource and state types are genuinely different shapes (mirroring the
// source's per-kind enum variants dispatched through a typed<R> helper
// rather than dynamic trait objects); instead each kind lives in its own
// subpackage (pkg/resource/{apt,pacman,file,git,command}) with its own
// concrete functions, and pkg/plan type-switches on Kind to call into the
// right one. This keeps every kind free of dependencies on its siblings
// and on this package, avoiding an import cycle.
package resource

// Kind names one of the built-in resource kinds a plan item's module field
// can select via "@core/<kind>".
type Kind string

const (
	KindApt     Kind = "apt"
	KindPacman  Kind = "pacman"
	KindFile    Kind = "file"
	KindGit     Kind = "git"
	KindCommand Kind = "command"
)

// ModuleName returns the "@core/<kind>" module name a plan item uses to
// select k.
func (k Kind) ModuleName() string {
	return "@core/" + string(k)
}

// KindFromModuleName reports the Kind a module name selects, if any.
func KindFromModuleName(name string) (Kind, bool) {
	switch name {
	case "@core/apt":
		return KindApt, true
	case "@core/pacman":
		return KindPacman, true
	case "@core/file":
		return KindFile, true
	case "@core/git":
		return KindGit, true
	case "@core/command":
		return KindCommand, true
	default:
		return "", false
	}
}
