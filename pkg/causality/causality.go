// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CORE_CAUSALITY
// Spec: spec/core/causality.md

// Package causality attaches ordering metadata to a tree.Tree and reduces it
// to epochs: layers of nodes that may run concurrently with everything in
// the same layer, after every earlier layer has completed.
package causality

import (
	"fmt"
	"sort"

	"lucidstage/pkg/tree"
)

// Meta is the causality metadata carried by every node of a Tree[N, Meta[ID]].
// A Branch's Requires/RequiredBy apply to every leaf beneath it, in addition
// to whatever that leaf declares itself.
type Meta[ID comparable] struct {
	ID         *ID
	Requires   []ID
	RequiredBy []ID
}

// Error is returned by ComputeEpochs. It always identifies which failure
// mode occurred.
type Error struct {
	Kind ErrorKind
	// ID is set for DuplicateID, UnknownRequires and UnknownRequiredBy.
	ID any
	// Remaining is set for CycleDetected: the count of nodes that never
	// reached indegree zero.
	Remaining int
}

// ErrorKind enumerates the ways epoch computation can fail.
type ErrorKind int

const (
	// DuplicateID means the same id was declared on two different nodes.
	DuplicateID ErrorKind = iota
	// UnknownRequires means a node's Requires referenced an id that does
	// not exist anywhere in the tree.
	UnknownRequires
	// UnknownRequiredBy means a node's RequiredBy referenced an id that
	// does not exist anywhere in the tree.
	UnknownRequiredBy
	// CycleDetected means the dependency graph has no valid topological
	// order.
	CycleDetected
)

func (e *Error) Error() string {
	switch e.Kind {
	case DuplicateID:
		return fmt.Sprintf("duplicate id: %v", e.ID)
	case UnknownRequires:
		return fmt.Sprintf("unknown id referenced in 'requires': %v", e.ID)
	case UnknownRequiredBy:
		return fmt.Sprintf("unknown id referenced in 'required_by': %v", e.ID)
	case CycleDetected:
		return fmt.Sprintf("cycle detected in dependency graph (remaining nodes: %d)", e.Remaining)
	default:
		return "unknown causality error"
	}
}

// Rescope rewrites every id declared or referenced within t, prefixing each
// with scope. A resources()/operations() expansion coins its own small,
// purely-internal ids (e.g. "file", "update") to order its own leaves;
// without rescoping, two expansions that both use "file" would collide in
// the caller's global id namespace the moment both subtrees are spliced
// into the same tree.
func Rescope[N any](t tree.Tree[N, Meta[string]], scope string) tree.Tree[N, Meta[string]] {
	return tree.MapMeta(t, func(m Meta[string]) Meta[string] {
		return Meta[string]{
			ID:         scopeID(m.ID, scope),
			Requires:   scopeIDs(m.Requires, scope),
			RequiredBy: scopeIDs(m.RequiredBy, scope),
		}
	})
}

func scopeID(id *string, scope string) *string {
	if id == nil {
		return nil
	}
	scoped := scope + ":" + *id
	return &scoped
}

func scopeIDs(ids []string, scope string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = scope + ":" + id
	}
	return out
}

type collectedLeaf[N any, ID comparable] struct {
	node       *N
	requires   []ID
	requiredBy []ID
}

// ComputeEpochs collapses a causality-annotated tree into epochs: a list of
// layers where every node in layer k only depends on nodes in layers
// strictly before k, and every dependency is satisfied by the end of k-1.
// Leaves carrying a nil node (the *N is nil) still participate in ordering
// but contribute nothing to the output; this lets a caller splice "marker" leaves into the tree purely to
// establish id/requires/required_by relationships.
func ComputeEpochs[N any, ID comparable](t tree.Tree[*N, Meta[ID]]) ([][]N, error) {
	var leaves []collectedLeaf[N, ID]
	idToLeaves := make(map[ID][]int)
	seenIDs := make(map[ID]bool)

	var ancestorRequires []ID
	var ancestorRequiredBy []ID
	var activeBranchIDs []ID

	var collect func(node tree.Tree[*N, Meta[ID]]) error
	collect = func(node tree.Tree[*N, Meta[ID]]) error {
		meta := node.Meta()

		if node.IsBranch() {
			requiresLen := len(ancestorRequires)
			ancestorRequires = append(ancestorRequires, meta.Requires...)

			requiredByLen := len(ancestorRequiredBy)
			ancestorRequiredBy = append(ancestorRequiredBy, meta.RequiredBy...)

			pushedBranchID := false
			if meta.ID != nil {
				id := *meta.ID
				if seenIDs[id] {
					return &Error{Kind: DuplicateID, ID: id}
				}
				seenIDs[id] = true
				if _, ok := idToLeaves[id]; !ok {
					idToLeaves[id] = nil
				}
				activeBranchIDs = append(activeBranchIDs, id)
				pushedBranchID = true
			}

			for _, child := range node.Children() {
				if err := collect(child); err != nil {
					return err
				}
			}

			ancestorRequires = ancestorRequires[:requiresLen]
			ancestorRequiredBy = ancestorRequiredBy[:requiredByLen]
			if pushedBranchID {
				activeBranchIDs = activeBranchIDs[:len(activeBranchIDs)-1]
			}
			return nil
		}

		effectiveRequires := make([]ID, 0, len(ancestorRequires)+len(meta.Requires))
		effectiveRequires = append(effectiveRequires, ancestorRequires...)
		effectiveRequires = append(effectiveRequires, meta.Requires...)

		effectiveRequiredBy := make([]ID, 0, len(ancestorRequiredBy)+len(meta.RequiredBy))
		effectiveRequiredBy = append(effectiveRequiredBy, ancestorRequiredBy...)
		effectiveRequiredBy = append(effectiveRequiredBy, meta.RequiredBy...)

		index := len(leaves)
		leaves = append(leaves, collectedLeaf[N, ID]{
			node:       node.Node(),
			requires:   effectiveRequires,
			requiredBy: effectiveRequiredBy,
		})

		for _, branchID := range activeBranchIDs {
			idToLeaves[branchID] = append(idToLeaves[branchID], index)
		}

		if meta.ID != nil {
			id := *meta.ID
			if seenIDs[id] {
				return &Error{Kind: DuplicateID, ID: id}
			}
			seenIDs[id] = true
			idToLeaves[id] = []int{index}
		}
		return nil
	}

	if err := collect(t); err != nil {
		return nil, err
	}

	n := len(leaves)
	outgoing := make([][]int, n)
	indegree := make([]int, n)

	for i, leaf := range leaves {
		for _, id := range leaf.requires {
			targets, ok := idToLeaves[id]
			if !ok {
				return nil, &Error{Kind: UnknownRequires, ID: id}
			}
			for _, j := range targets {
				outgoing[j] = append(outgoing[j], i)
				indegree[i]++
			}
		}
		for _, id := range leaf.requiredBy {
			targets, ok := idToLeaves[id]
			if !ok {
				return nil, &Error{Kind: UnknownRequiredBy, ID: id}
			}
			for _, j := range targets {
				outgoing[i] = append(outgoing[i], j)
				indegree[j]++
			}
		}
	}

	var queue []int
	for i, d := range indegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}

	seen := 0
	var epochs [][]N

	for len(queue) > 0 {
		currentWave := queue
		queue = nil
		seen += len(currentWave)

		var epoch []N
		for _, i := range currentWave {
			if leaves[i].node != nil {
				epoch = append(epoch, *leaves[i].node)
			}
		}
		if len(epoch) > 0 {
			epochs = append(epochs, epoch)
		}

		var nextWave []int
		for _, i := range currentWave {
			for _, j := range outgoing[i] {
				indegree[j]--
				if indegree[j] == 0 {
					nextWave = append(nextWave, j)
				}
			}
		}
		// nextWave is discovered in currentWave/outgoing-edge order, not
		// leaf-index order: two leaves reaching indegree zero via different
		// predecessors in this wave would otherwise surface out of order.
		// Ties within an epoch must preserve original leaf index order.
		sort.Ints(nextWave)
		queue = append(queue, nextWave...)
	}

	if seen != n {
		return nil, &Error{Kind: CycleDetected, Remaining: n - seen}
	}

	return epochs, nil
}
