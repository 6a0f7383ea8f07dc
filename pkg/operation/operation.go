// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CORE_OPERATION
// Spec: spec/core/operation.md

// Package operation is the lowered, executable form of a resource change:
// a per-kind Operation value that knows how to merge with its siblings
// within an epoch and how to apply itself against a host.
package operation

import (
	"context"
	"fmt"

	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/executil"
)

// Kind tags which concrete operation a Operation value carries.
type Kind string

const (
	KindApt     Kind = "apt"
	KindPacman  Kind = "pacman"
	KindFile    Kind = "file"
	KindGit     Kind = "git"
	KindCommand Kind = "command"
)

// Operation is a closed sum over every operation kind the engine knows how
// to apply. Exactly one of the kind-specific fields is set, selected by
// Kind.
type Operation struct {
	Kind    Kind
	Apt     *AptOperation
	Pacman  *PacmanOperation
	File    *FileOperation
	Git     *GitOperation
	Command *CommandOperation
}

func (op Operation) String() string {
	switch op.Kind {
	case KindApt:
		return op.Apt.String()
	case KindPacman:
		return op.Pacman.String()
	case KindFile:
		return op.File.String()
	case KindGit:
		return op.Git.String()
	case KindCommand:
		return op.Command.String()
	default:
		return fmt.Sprintf("Operation(unknown kind %q)", op.Kind)
	}
}

// Merge coalesces operations within a single epoch, grouping by kind and
// delegating to each kind's own merge rule, then reassembling the sum
// values in apt, pacman, file, git, command order.
func Merge(operations []Operation) []Operation {
	var apt []AptOperation
	var pacman []PacmanOperation
	var file []FileOperation
	var git []GitOperation
	var command []CommandOperation

	for _, op := range operations {
		switch op.Kind {
		case KindApt:
			apt = append(apt, *op.Apt)
		case KindPacman:
			pacman = append(pacman, *op.Pacman)
		case KindFile:
			file = append(file, *op.File)
		case KindGit:
			git = append(git, *op.Git)
		case KindCommand:
			command = append(command, *op.Command)
		}
	}

	var merged []Operation
	for _, o := range MergeApt(apt) {
		o := o
		merged = append(merged, Operation{Kind: KindApt, Apt: &o})
	}
	for _, o := range MergePacman(pacman) {
		o := o
		merged = append(merged, Operation{Kind: KindPacman, Pacman: &o})
	}
	for _, o := range MergeFile(file) {
		o := o
		merged = append(merged, Operation{Kind: KindFile, File: &o})
	}
	for _, o := range MergeGit(git) {
		o := o
		merged = append(merged, Operation{Kind: KindGit, Git: &o})
	}
	for _, o := range MergeCommand(command) {
		o := o
		merged = append(merged, Operation{Kind: KindCommand, Command: &o})
	}
	return merged
}

// Apply runs op against the host described by hostCtx, delivering any
// output lines on lines. For the apt, pacman, git and command kinds, lines
// is closed once the command's output is drained (executil.RunSplit closes
// it); the file kind neither writes to nor closes lines.
func Apply(ctx context.Context, hostCtx *hostctx.Context, op Operation, lines chan<- executil.Line) error {
	switch op.Kind {
	case KindApt:
		return ApplyApt(ctx, hostCtx, *op.Apt, lines)
	case KindPacman:
		return ApplyPacman(ctx, hostCtx, *op.Pacman, lines)
	case KindFile:
		return ApplyFile(ctx, hostCtx, *op.File)
	case KindGit:
		return ApplyGit(ctx, hostCtx, *op.Git, lines)
	case KindCommand:
		return ApplyCommand(ctx, hostCtx, *op.Command, lines)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}
