// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: APPLY_ENGINE
// Spec: spec/apply/engine.md

// Package apply drives a plan module through the six pipeline stages —
// parameters, resources, states, changes, operations, execution — emitting
// a progress.Event at every leaf transition along the way.
package apply

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"lucidstage/pkg/causality"
	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/executil"
	"lucidstage/pkg/operation"
	"lucidstage/pkg/plan"
	"lucidstage/pkg/progress"
	"lucidstage/pkg/tree"
	"lucidstage/pkg/view"
)

// Engine runs plan modules against a single host context.
type Engine struct {
	HostCtx   *hostctx.Context
	Evaluator plan.Evaluator
}

// New constructs an Engine.
func New(hostCtx *hostctx.Context, evaluator plan.Evaluator) *Engine {
	return &Engine{HostCtx: hostCtx, Evaluator: evaluator}
}

// Apply evaluates module against rawParams and runs it to completion,
// emitting progress to emitter. When planOnly is set, execution stops once
// operations have been lowered (stage 5); nothing is run against the host.
func (e *Engine) Apply(ctx context.Context, module *plan.Module, rawParams any, emitter progress.Emitter, planOnly bool) error {
	// Stage 1: parse & evaluate the plan module into a tree of typed
	// resource parameters.
	paramsTree, err := plan.Build(ctx, e.Evaluator, module, rawParams)
	if err != nil {
		return fmt.Errorf("building plan: %w", err)
	}
	paramsView := progress.RenderTree(paramsTree, renderParamsRef)
	if err := emitter.Emit(progress.Event{Type: progress.EventResourceParams, ResourceParams: &paramsView}); err != nil {
		return err
	}
	paramsFlat := tree.NewFlatTree(paramsTree)

	// Stage 2: expand each leaf into its atomic resources.
	if err := emitter.Emit(progress.Event{Type: progress.EventResourcesStart}); err != nil {
		return err
	}
	resourcesFlat, err := tree.MapTreeAsync(ctx, paramsFlat,
		func(p *plan.ParamsRef, meta causality.Meta[string]) tree.Tree[*plan.ResourceRef, causality.Meta[string]] {
			expanded := plan.ExpandResources(p.Kind, p.Value)
			scoped := causality.Rescope(expanded, newScopeID())
			return rewrapMeta(scoped, meta)
		},
		func(ctx context.Context, index int, subtree tree.Tree[*plan.ResourceRef, causality.Meta[string]]) error {
			v := progress.RenderTree(subtree, renderResourceRef)
			return emitter.Emit(progress.Event{Type: progress.EventResourcesNode, Index: &index, Tree: &v})
		},
	)
	if err != nil {
		return fmt.Errorf("expanding resources: %w", err)
	}
	if err := emitter.Emit(progress.Event{Type: progress.EventResourcesComplete}); err != nil {
		return err
	}

	// Stage 3: observe each resource's state.
	if err := emitter.Emit(progress.Event{Type: progress.EventResourceStatesStart}); err != nil {
		return err
	}
	statesFlat, err := tree.MapResultAsync(ctx, resourcesFlat,
		func(ctx context.Context, r *plan.ResourceRef) (*plan.ResourceState, error) {
			state, err := plan.ObserveState(ctx, e.HostCtx, r)
			if err != nil {
				return nil, fmt.Errorf("observing %s: %w", r, err)
			}
			return &plan.ResourceState{Resource: r, State: state}, nil
		},
		func(ctx context.Context, index int) error {
			return emitter.Emit(progress.Event{Type: progress.EventResourceStatesNodeStart, Index: &index})
		},
		func(ctx context.Context, index int, rs *plan.ResourceState) error {
			v := view.Line(fmt.Sprintf("%s => %s", rs.Resource, rs.State))
			return emitter.Emit(progress.Event{Type: progress.EventResourceStatesNodeComplete, Index: &index, Node: &v})
		},
	)
	if err != nil {
		return fmt.Errorf("observing state: %w", err)
	}
	if err := emitter.Emit(progress.Event{Type: progress.EventResourceStatesComplete}); err != nil {
		return err
	}

	// Stage 4: compute the change (if any) each resource needs.
	if err := emitter.Emit(progress.Event{Type: progress.EventResourceChangesStart}); err != nil {
		return err
	}
	changesFlat, err := tree.MapOptionAsync(ctx, statesFlat,
		func(rs *plan.ResourceState) (*plan.ChangeRef, bool) {
			c := plan.ComputeChange(rs.Resource, rs.State)
			if c == nil {
				return nil, false
			}
			return c, true
		},
		func(ctx context.Context, index int, node **plan.ChangeRef) error {
			var v *view.View
			if node != nil {
				line := view.Line((*node).String())
				v = &line
			}
			return emitter.Emit(progress.Event{Type: progress.EventResourceChangesNode, Index: &index, Node: v})
		},
	)
	if err != nil {
		return fmt.Errorf("computing changes: %w", err)
	}
	hasChanges := anyLeaf(changesFlat)
	if err := emitter.Emit(progress.Event{Type: progress.EventResourceChangesComplete, HasChanges: &hasChanges}); err != nil {
		return err
	}
	if !hasChanges {
		return nil
	}

	// Stage 5: lower every change to its operation(s).
	if err := emitter.Emit(progress.Event{Type: progress.EventOperationsStart}); err != nil {
		return err
	}
	opsFlat, err := tree.MapTreeAsync(ctx, changesFlat,
		func(c *plan.ChangeRef, meta causality.Meta[string]) tree.Tree[*operation.Operation, causality.Meta[string]] {
			lowered := plan.LowerOperations(c)
			scoped := causality.Rescope(lowered, newScopeID())
			return rewrapMeta(scoped, meta)
		},
		func(ctx context.Context, index int, subtree tree.Tree[*operation.Operation, causality.Meta[string]]) error {
			v := progress.RenderTree(subtree, renderOperation)
			return emitter.Emit(progress.Event{Type: progress.EventOperationsNode, Index: &index, Tree: &v})
		},
	)
	if err != nil {
		return fmt.Errorf("lowering operations: %w", err)
	}
	if err := emitter.Emit(progress.Event{Type: progress.EventOperationsComplete}); err != nil {
		return err
	}
	if planOnly {
		return nil
	}

	// Stage 6: schedule into epochs, merge within each, and execute.
	return e.execute(ctx, opsFlat, emitter)
}

func (e *Engine) execute(ctx context.Context, opsFlat *tree.FlatTree[*operation.Operation, causality.Meta[string]], emitter progress.Emitter) error {
	epochs, err := causality.ComputeEpochs[operation.Operation, string](opsFlat.ToTree())
	if err != nil {
		return fmt.Errorf("scheduling operations: %w", err)
	}

	merged := make([][]operation.Operation, len(epochs))
	for i, epoch := range epochs {
		merged[i] = operation.Merge(epoch)
	}

	labels := make([][]view.View, len(merged))
	for i, epoch := range merged {
		row := make([]view.View, len(epoch))
		for j, op := range epoch {
			row[j] = view.Line(op.String())
		}
		labels[i] = row
	}
	if err := emitter.Emit(progress.Event{Type: progress.EventOperationsApplyStart, Operations: labels}); err != nil {
		return err
	}

	for epochIndex, epoch := range merged {
		for opIndex, op := range epoch {
			index := progress.OperationIndexWire{epochIndex, opIndex}
			if err := emitter.Emit(progress.Event{Type: progress.EventOperationApplyStart, OpIndex: index}); err != nil {
				return err
			}

			applyErr := e.applyOne(ctx, op, emitter, index)

			var errField *string
			if applyErr != nil {
				s := applyErr.Error()
				errField = &s
			}
			if err := emitter.Emit(progress.Event{Type: progress.EventOperationApplyComplete, OpIndex: index, Error: errField}); err != nil {
				return err
			}
			if applyErr != nil {
				return fmt.Errorf("applying %s: %w", op.String(), applyErr)
			}
		}
	}

	return emitter.Emit(progress.Event{Type: progress.EventOperationsApplyComplete})
}

// applyOne runs op to completion, forwarding every stdout/stderr line it
// produces as a progress event. File operations have no subprocess and so
// never write to a lines channel; everything else does, and its channel is
// closed by operation.Apply itself once the process exits.
func (e *Engine) applyOne(ctx context.Context, op operation.Operation, emitter progress.Emitter, index progress.OperationIndexWire) error {
	if op.Kind == operation.KindFile {
		return operation.Apply(ctx, e.HostCtx, op, nil)
	}

	lines := make(chan executil.Line)
	done := make(chan error, 1)
	go func() { done <- operation.Apply(ctx, e.HostCtx, op, lines) }()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			event := progress.Event{Type: progress.EventOperationApplyStdout, OpIndex: index, Stdout: line.Text}
			if line.Stderr {
				event = progress.Event{Type: progress.EventOperationApplyStderr, OpIndex: index, Stderr: line.Text}
			}
			if err := emitter.Emit(event); err != nil {
				return err
			}
		case err := <-done:
			return err
		}
	}
}

func newScopeID() string { return uuid.NewString() }

// rewrapMeta overwrites a resources()/operations() expansion's own top-level
// metadata (always zero by construction) with the causality metadata of the
// plan item it expanded from, so the item's id/requires/required_by still
// apply to the whole expansion.
func rewrapMeta[N any](t tree.Tree[N, causality.Meta[string]], meta causality.Meta[string]) tree.Tree[N, causality.Meta[string]] {
	if t.IsLeaf() {
		return tree.Leaf(meta, t.Node())
	}
	return tree.Branch(meta, t.Children())
}

func anyLeaf[N, M any](ft *tree.FlatTree[N, M]) bool {
	for _, index := range ft.DepthFirstSearch() {
		node, err := ft.Get(index)
		if err != nil {
			continue
		}
		if !node.Branch {
			return true
		}
	}
	return false
}

func renderParamsRef(p *plan.ParamsRef) view.View { return view.Line(p.String()) }
func renderResourceRef(r *plan.ResourceRef) view.View { return view.Line(r.String()) }
func renderOperation(op *operation.Operation) view.View { return view.Line(op.String()) }
