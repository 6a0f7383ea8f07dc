// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: VIEW_UPDATE
// Spec: spec/view/update.md

package view

import "fmt"

// OperationIndex locates one operation within the apply schedule: the
// epoch it ran in and its position within that epoch.
type OperationIndex struct {
	Epoch int
	Op    int
}

// OperationView is one running operation's live display state.
type OperationView struct {
	Label      View
	Stdout     string
	Stderr     string
	IsComplete bool
	Error      *string
}

// UpdateKind tags which of Update's fields are meaningful, mirroring one
// progress-protocol event each.
type UpdateKind int

const (
	UpdateResourceParams UpdateKind = iota
	UpdateResourcesStart
	UpdateResourcesNode
	UpdateResourcesComplete
	UpdateResourceStatesStart
	UpdateResourceStatesNodeStart
	UpdateResourceStatesNodeComplete
	UpdateResourceStatesComplete
	UpdateResourceChangesStart
	UpdateResourceChangesNode
	UpdateResourceChangesComplete
	UpdateOperationsStart
	UpdateOperationsNode
	UpdateOperationsComplete
	UpdateOperationsApplyStart
	UpdateOperationApplyStart
	UpdateOperationApplyStdout
	UpdateOperationApplyStderr
	UpdateOperationApplyComplete
	UpdateOperationsApplyComplete
)

func (k UpdateKind) String() string {
	names := [...]string{
		"ResourceParams", "ResourcesStart", "ResourcesNode", "ResourcesComplete",
		"ResourceStatesStart", "ResourceStatesNodeStart", "ResourceStatesNodeComplete", "ResourceStatesComplete",
		"ResourceChangesStart", "ResourceChangesNode", "ResourceChangesComplete",
		"OperationsStart", "OperationsNode", "OperationsComplete",
		"OperationsApplyStart", "OperationApplyStart", "OperationApplyStdout", "OperationApplyStderr",
		"OperationApplyComplete", "OperationsApplyComplete",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// Update is one progress-protocol event, folded into an AppView by Update().
type Update struct {
	Kind UpdateKind

	ResourceParams ViewTree // UpdateResourceParams

	Index int      // node-index updates
	Tree  ViewTree // UpdateResourcesNode, UpdateOperationsNode

	Node *View // UpdateResourceStatesNodeComplete (non-nil); UpdateResourceChangesNode (nil = "no change")

	HasChanges bool // UpdateResourceChangesComplete

	Operations [][]View // UpdateOperationsApplyStart

	OpIndex OperationIndex // every Operation* update
	Line    string         // UpdateOperationApplyStdout/Stderr
	Error   *string        // UpdateOperationApplyComplete
}

// Phase names which variant of AppView's accumulated data is valid.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseResourceParams
	PhaseResources
	PhaseResourceStates
	PhaseResourceChanges
	PhaseOperations
	PhaseOperationsApply
	PhaseDone
)

func (p Phase) String() string {
	names := [...]string{
		"Start", "ResourceParams", "Resources", "ResourceStates",
		"ResourceChanges", "Operations", "OperationsApply", "Done",
	}
	if int(p) < 0 || int(p) >= len(names) {
		return "Unknown"
	}
	return names[p]
}

// AppView is the incrementally-revealed view of a single apply run. Each
// phase accumulates the previous phase's fields; a zero AppView is
// PhaseStart.
type AppView struct {
	Phase Phase

	ResourceParams   *FlatViewTree
	Resources        *FlatViewTree
	ResourceStates   *FlatViewTree
	ResourceChanges  *FlatViewTree
	HasChanges       *bool
	OperationsTree   *FlatViewTree
	OperationsEpochs [][]*OperationView
}

// ErrInvalidTransition is returned when update does not apply to state's
// current phase; state is left unmodified.
type ErrInvalidTransition struct {
	From   Phase
	Update UpdateKind
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.Update)
}

// ErrOperationIndexOutOfBounds is returned when an Operation* update names
// an epoch or within-epoch position that doesn't exist.
type ErrOperationIndexOutOfBounds struct{ Epoch, Op int }

func (e *ErrOperationIndexOutOfBounds) Error() string {
	return fmt.Sprintf("operation index out of bounds: epoch=%d, op=%d", e.Epoch, e.Op)
}

// Update folds update into state, returning the next AppView. A mismatched
// (phase, update) pair returns ErrInvalidTransition and the original state
// unmodified.
func Update(state AppView, update Update) (AppView, error) {
	switch {
	case state.Phase == PhaseStart && update.Kind == UpdateResourceParams:
		return AppView{Phase: PhaseResourceParams, ResourceParams: FromViewTreeCompleted(update.ResourceParams)}, nil

	case state.Phase == PhaseResourceParams && update.Kind == UpdateResourcesStart:
		return AppView{
			Phase:          PhaseResources,
			ResourceParams: state.ResourceParams,
			Resources:      state.ResourceParams.Template(),
		}, nil

	case state.Phase == PhaseResources && update.Kind == UpdateResourcesNode:
		if err := state.Resources.ReplaceSubtreeCompleted(update.Index, update.Tree); err != nil {
			return state, err
		}
		return state, nil

	case state.Phase == PhaseResources && update.Kind == UpdateResourcesComplete:
		return state, nil

	case state.Phase == PhaseResources && update.Kind == UpdateResourceStatesStart:
		return AppView{
			Phase:          PhaseResourceStates,
			ResourceParams: state.ResourceParams,
			Resources:      state.Resources,
			ResourceStates: state.Resources.Template(),
		}, nil

	case state.Phase == PhaseResourceStates && update.Kind == UpdateResourceStatesNodeStart:
		if err := state.ResourceStates.SetLeafStarted(update.Index); err != nil {
			return state, err
		}
		return state, nil

	case state.Phase == PhaseResourceStates && update.Kind == UpdateResourceStatesNodeComplete:
		if err := state.ResourceStates.SetLeafView(update.Index, ViewNode{Kind: Complete, View: *update.Node}); err != nil {
			return state, err
		}
		return state, nil

	case state.Phase == PhaseResourceStates && update.Kind == UpdateResourceStatesComplete:
		return state, nil

	case state.Phase == PhaseResourceStates && update.Kind == UpdateResourceChangesStart:
		return AppView{
			Phase:           PhaseResourceChanges,
			ResourceParams:  state.ResourceParams,
			Resources:       state.Resources,
			ResourceStates:  state.ResourceStates,
			ResourceChanges: state.ResourceStates.Template(),
		}, nil

	case state.Phase == PhaseResourceChanges && update.Kind == UpdateResourceChangesNode:
		if update.Node != nil {
			if err := state.ResourceChanges.SetLeafView(update.Index, ViewNode{Kind: Complete, View: *update.Node}); err != nil {
				return state, err
			}
		} else {
			if err := state.ResourceChanges.SetNodeNone(update.Index); err != nil {
				return state, err
			}
		}
		return state, nil

	case state.Phase == PhaseResourceChanges && update.Kind == UpdateResourceChangesComplete:
		hasChanges := update.HasChanges
		state.HasChanges = &hasChanges
		return state, nil

	case state.Phase == PhaseResourceChanges && update.Kind == UpdateOperationsStart:
		return AppView{
			Phase:           PhaseOperations,
			ResourceParams:  state.ResourceParams,
			Resources:       state.Resources,
			ResourceStates:  state.ResourceStates,
			ResourceChanges: state.ResourceChanges,
			HasChanges:      state.HasChanges,
			OperationsTree:  state.ResourceChanges.Template(),
		}, nil

	case state.Phase == PhaseOperations && update.Kind == UpdateOperationsNode:
		if err := state.OperationsTree.ReplaceSubtreeCompleted(update.Index, update.Tree); err != nil {
			return state, err
		}
		return state, nil

	case state.Phase == PhaseOperations && update.Kind == UpdateOperationsComplete:
		return state, nil

	case state.Phase == PhaseOperations && update.Kind == UpdateOperationsApplyStart:
		epochs := make([][]*OperationView, len(update.Operations))
		for i, epoch := range update.Operations {
			ops := make([]*OperationView, len(epoch))
			for j, label := range epoch {
				ops[j] = &OperationView{Label: label}
			}
			epochs[i] = ops
		}
		return AppView{
			Phase:            PhaseOperationsApply,
			ResourceParams:   state.ResourceParams,
			Resources:        state.Resources,
			ResourceStates:   state.ResourceStates,
			ResourceChanges:  state.ResourceChanges,
			HasChanges:       state.HasChanges,
			OperationsTree:   state.OperationsTree,
			OperationsEpochs: epochs,
		}, nil

	case state.Phase == PhaseOperationsApply && update.Kind == UpdateOperationApplyStart:
		op, err := state.operation(update.OpIndex)
		if err != nil {
			return state, err
		}
		op.Stdout = ""
		op.Stderr = ""
		op.IsComplete = false
		return state, nil

	case state.Phase == PhaseOperationsApply && update.Kind == UpdateOperationApplyStdout:
		op, err := state.operation(update.OpIndex)
		if err != nil {
			return state, err
		}
		op.Stdout += update.Line + "\n"
		return state, nil

	case state.Phase == PhaseOperationsApply && update.Kind == UpdateOperationApplyStderr:
		op, err := state.operation(update.OpIndex)
		if err != nil {
			return state, err
		}
		// The separator for a received line goes on the stream the bytes
		// actually arrived on.
		op.Stderr += update.Line + "\n"
		return state, nil

	case state.Phase == PhaseOperationsApply && update.Kind == UpdateOperationApplyComplete:
		op, err := state.operation(update.OpIndex)
		if err != nil {
			return state, err
		}
		op.IsComplete = true
		op.Error = update.Error
		return state, nil

	case state.Phase == PhaseOperationsApply && update.Kind == UpdateOperationsApplyComplete:
		state.Phase = PhaseDone
		return state, nil

	default:
		return state, &ErrInvalidTransition{From: state.Phase, Update: update.Kind}
	}
}

func (s AppView) operation(index OperationIndex) (*OperationView, error) {
	if index.Epoch < 0 || index.Epoch >= len(s.OperationsEpochs) {
		return nil, &ErrOperationIndexOutOfBounds{Epoch: index.Epoch, Op: index.Op}
	}
	epoch := s.OperationsEpochs[index.Epoch]
	if index.Op < 0 || index.Op >= len(epoch) {
		return nil, &ErrOperationIndexOutOfBounds{Epoch: index.Epoch, Op: index.Op}
	}
	return epoch[index.Op], nil
}
