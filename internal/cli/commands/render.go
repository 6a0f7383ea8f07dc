// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CLI_PROGRESS_RENDER
// Spec: spec/progress/render.md

package commands

import (
	"fmt"
	"io"

	"lucidstage/pkg/progress"
	"lucidstage/pkg/view"
)

// lineEmitter is the minimal terminal renderer SPEC_FULL.md calls for: it
// folds every progress.Event into an view.AppView (the same incremental
// state machine a real terminal UI would use) and prints one line per
// notable transition. It is not a replacement for the terminal renderer
// named as an external collaborator in spec §1 — just enough to watch an
// apply run from this reference CLI.
type lineEmitter struct {
	out   io.Writer
	state view.AppView
}

func newLineEmitter(out io.Writer) *lineEmitter {
	return &lineEmitter{out: out}
}

// Emit implements progress.Emitter.
func (p *lineEmitter) Emit(event progress.Event) error {
	next, err := view.Update(p.state, event.ToUpdate())
	if err != nil {
		return fmt.Errorf("rendering %s: %w", event.Type, err)
	}
	p.state = next

	switch event.Type {
	case progress.EventResourcesStart:
		fmt.Fprintln(p.out, "==> expanding resources")
	case progress.EventResourceStatesStart:
		fmt.Fprintln(p.out, "==> observing state")
	case progress.EventResourceChangesComplete:
		if event.HasChanges != nil && !*event.HasChanges {
			fmt.Fprintln(p.out, "==> already in desired state, nothing to do")
		}
	case progress.EventOperationsStart:
		fmt.Fprintln(p.out, "==> computing operations")
	case progress.EventOperationsApplyStart:
		total := 0
		for _, epoch := range event.Operations {
			total += len(epoch)
		}
		fmt.Fprintf(p.out, "==> applying %d operations across %d epochs\n", total, len(event.Operations))
		for e, epoch := range event.Operations {
			for _, op := range epoch {
				fmt.Fprintf(p.out, "    [%d] %s\n", e, op.String())
			}
		}
	case progress.EventOperationApplyStart:
		fmt.Fprintf(p.out, "--> (%d,%d) starting\n", event.OpIndex[0], event.OpIndex[1])
	case progress.EventOperationApplyStdout:
		fmt.Fprintf(p.out, "(%d,%d) %s\n", event.OpIndex[0], event.OpIndex[1], event.Stdout)
	case progress.EventOperationApplyStderr:
		fmt.Fprintf(p.out, "(%d,%d) ! %s\n", event.OpIndex[0], event.OpIndex[1], event.Stderr)
	case progress.EventOperationApplyComplete:
		if event.Error != nil {
			fmt.Fprintf(p.out, "--> (%d,%d) failed: %s\n", event.OpIndex[0], event.OpIndex[1], *event.Error)
		} else {
			fmt.Fprintf(p.out, "--> (%d,%d) done\n", event.OpIndex[0], event.OpIndex[1])
		}
	case progress.EventOperationsApplyComplete:
		fmt.Fprintln(p.out, "==> done")
	}
	return nil
}
