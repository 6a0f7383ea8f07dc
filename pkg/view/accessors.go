// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: VIEW_ACCESSORS
// Spec: spec/view/appview.md

package view

// ResourceParamsTree returns the resource-params tree once it has arrived,
// else nil.
func (s AppView) ResourceParamsTree() *FlatViewTree {
	if s.Phase < PhaseResourceParams {
		return nil
	}
	return s.ResourceParams
}

// ResourcesTree returns the expanded resources tree once it has arrived,
// else nil.
func (s AppView) ResourcesTree() *FlatViewTree {
	if s.Phase < PhaseResources {
		return nil
	}
	return s.Resources
}

// ResourceStatesTree returns the observed-state tree once it has arrived,
// else nil.
func (s AppView) ResourceStatesTree() *FlatViewTree {
	if s.Phase < PhaseResourceStates {
		return nil
	}
	return s.ResourceStates
}

// ResourceChangesTree returns the computed-changes tree once it has
// arrived, else nil.
func (s AppView) ResourceChangesTree() *FlatViewTree {
	if s.Phase < PhaseResourceChanges {
		return nil
	}
	return s.ResourceChanges
}

// OperationsTreeView returns the lowered-operations tree once it has
// arrived, else nil.
func (s AppView) OperationsTreeView() *FlatViewTree {
	if s.Phase < PhaseOperations {
		return nil
	}
	return s.OperationsTree
}

// OperationsEpochsView returns the per-epoch operation schedule once apply
// has started, else nil.
func (s AppView) OperationsEpochsView() [][]*OperationView {
	if s.Phase < PhaseOperationsApply {
		return nil
	}
	return s.OperationsEpochs
}

// IsDone reports whether the run has fully completed.
func (s AppView) IsDone() bool {
	return s.Phase == PhaseDone
}
