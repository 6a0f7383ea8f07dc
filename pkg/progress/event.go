// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: PROGRESS_EVENT
// Spec: spec/progress/event.md

// Package progress defines the line-delimited JSON event stream an apply
// run emits as it moves through resource expansion, state observation,
// change computation, operation lowering and execution, and the Emitter
// that writes it.
package progress

import "lucidstage/pkg/view"

// EventKind tags which of Event's fields are populated. JSON encodes this
// as the "type" field so a consumer can dispatch before looking at the
// rest of the object.
type EventKind string

const (
	EventResourceParams EventKind = "resource_params"

	EventResourcesStart    EventKind = "resources_start"
	EventResourcesNode     EventKind = "resources_node"
	EventResourcesComplete EventKind = "resources_complete"

	EventResourceStatesStart        EventKind = "resource_states_start"
	EventResourceStatesNodeStart    EventKind = "resource_states_node_start"
	EventResourceStatesNodeComplete EventKind = "resource_states_node_complete"
	EventResourceStatesComplete     EventKind = "resource_states_complete"

	EventResourceChangesStart    EventKind = "resource_changes_start"
	EventResourceChangesNode     EventKind = "resource_changes_node"
	EventResourceChangesComplete EventKind = "resource_changes_complete"

	EventOperationsStart    EventKind = "operations_start"
	EventOperationsNode     EventKind = "operations_node"
	EventOperationsComplete EventKind = "operations_complete"

	EventOperationsApplyStart  EventKind = "operations_apply_start"
	EventOperationApplyStart   EventKind = "operation_apply_start"
	EventOperationApplyStdout  EventKind = "operation_apply_stdout"
	EventOperationApplyStderr  EventKind = "operation_apply_stderr"
	EventOperationApplyComplete EventKind = "operation_apply_complete"
	EventOperationsApplyComplete EventKind = "operations_apply_complete"
)

// OperationIndexWire is the JSON-friendly (epoch, op) pair; the source
// encodes it as a 2-tuple, which Go renders as an array of two ints.
type OperationIndexWire [2]int

// Event is one line of the progress protocol. Only the fields relevant to
// Type are populated; the rest are omitted from JSON via omitempty, except
// op_index, which as a fixed-size array is always written.
type Event struct {
	Type EventKind `json:"type"`

	ResourceParams *view.ViewTree `json:"resource_params,omitempty"`

	Index *int           `json:"index,omitempty"`
	Tree  *view.ViewTree `json:"tree,omitempty"`

	Node       *view.View `json:"node,omitempty"`
	HasChanges *bool      `json:"has_changes,omitempty"`

	Operations [][]view.View `json:"operations,omitempty"`

	OpIndex OperationIndexWire `json:"op_index,omitempty"`
	Stdout  string             `json:"stdout,omitempty"`
	Stderr  string             `json:"stderr,omitempty"`
	Error   *string            `json:"error,omitempty"`
}

// ToUpdate converts a wire Event into the view package's Update input,
// the shape AppView.Update folds over.
func (e Event) ToUpdate() view.Update {
	u := view.Update{}
	switch e.Type {
	case EventResourceParams:
		u.Kind = view.UpdateResourceParams
		if e.ResourceParams != nil {
			u.ResourceParams = *e.ResourceParams
		}
	case EventResourcesStart:
		u.Kind = view.UpdateResourcesStart
	case EventResourcesNode:
		u.Kind = view.UpdateResourcesNode
		u.Index = intOrZero(e.Index)
		if e.Tree != nil {
			u.Tree = *e.Tree
		}
	case EventResourcesComplete:
		u.Kind = view.UpdateResourcesComplete
	case EventResourceStatesStart:
		u.Kind = view.UpdateResourceStatesStart
	case EventResourceStatesNodeStart:
		u.Kind = view.UpdateResourceStatesNodeStart
		u.Index = intOrZero(e.Index)
	case EventResourceStatesNodeComplete:
		u.Kind = view.UpdateResourceStatesNodeComplete
		u.Index = intOrZero(e.Index)
		u.Node = e.Node
	case EventResourceStatesComplete:
		u.Kind = view.UpdateResourceStatesComplete
	case EventResourceChangesStart:
		u.Kind = view.UpdateResourceChangesStart
	case EventResourceChangesNode:
		u.Kind = view.UpdateResourceChangesNode
		u.Index = intOrZero(e.Index)
		u.Node = e.Node
	case EventResourceChangesComplete:
		u.Kind = view.UpdateResourceChangesComplete
		if e.HasChanges != nil {
			u.HasChanges = *e.HasChanges
		}
	case EventOperationsStart:
		u.Kind = view.UpdateOperationsStart
	case EventOperationsNode:
		u.Kind = view.UpdateOperationsNode
		u.Index = intOrZero(e.Index)
		if e.Tree != nil {
			u.Tree = *e.Tree
		}
	case EventOperationsComplete:
		u.Kind = view.UpdateOperationsComplete
	case EventOperationsApplyStart:
		u.Kind = view.UpdateOperationsApplyStart
		u.Operations = e.Operations
	case EventOperationApplyStart:
		u.Kind = view.UpdateOperationApplyStart
		u.OpIndex = opIndex(e.OpIndex)
	case EventOperationApplyStdout:
		u.Kind = view.UpdateOperationApplyStdout
		u.OpIndex = opIndex(e.OpIndex)
		u.Line = e.Stdout
	case EventOperationApplyStderr:
		u.Kind = view.UpdateOperationApplyStderr
		u.OpIndex = opIndex(e.OpIndex)
		u.Line = e.Stderr
	case EventOperationApplyComplete:
		u.Kind = view.UpdateOperationApplyComplete
		u.OpIndex = opIndex(e.OpIndex)
		u.Error = e.Error
	case EventOperationsApplyComplete:
		u.Kind = view.UpdateOperationsApplyComplete
	}
	return u
}

func intOrZero(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func opIndex(w OperationIndexWire) view.OperationIndex {
	return view.OperationIndex{Epoch: w[0], Op: w[1]}
}
