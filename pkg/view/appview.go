// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: VIEW_APPVIEW
// Spec: spec/view/appview.md

package view

import "fmt"

// FlatViewTreeNode is a single flat-arena slot: a Branch (a label plus
// child indices) or a Leaf (a ViewNode tracking that leaf's reveal state).
type FlatViewTreeNode struct {
	Branch   bool
	View     View // meaningful when Branch
	Children []int
	Leaf     ViewNode // meaningful when !Branch
}

// FlatViewTree is an indexed arena of FlatViewTreeNode, root always at
// index 0 when non-empty. Slots tolerate being nil; template/replace
// operations skip or clear them rather than erroring.
type FlatViewTree struct {
	nodes []*FlatViewTreeNode
}

// ErrIndexOutOfBounds is returned when an index falls outside the arena.
type ErrIndexOutOfBounds struct{ Index int }

func (e *ErrIndexOutOfBounds) Error() string {
	return fmt.Sprintf("index %d is out of bounds", e.Index)
}

// ErrNodeMissing is returned when the slot at an index has been cleared.
type ErrNodeMissing struct{ Index int }

func (e *ErrNodeMissing) Error() string {
	return fmt.Sprintf("node at index %d is None", e.Index)
}

// ErrNotALeaf is returned when a leaf-only operation targets a branch.
type ErrNotALeaf struct{ Index int }

func (e *ErrNotALeaf) Error() string {
	return fmt.Sprintf("expected leaf at index %d", e.Index)
}

// RootIndex is always 0.
const RootIndex = 0

// IsEmpty reports whether the root slot is absent.
func (ft *FlatViewTree) IsEmpty() bool {
	return len(ft.nodes) == 0 || ft.nodes[RootIndex] == nil
}

// Root returns the node at index 0, if present.
func (ft *FlatViewTree) Root() *FlatViewTreeNode {
	if ft.IsEmpty() {
		return nil
	}
	return ft.nodes[RootIndex]
}

// Get returns the node at index, or an error if out of bounds or cleared.
func (ft *FlatViewTree) Get(index int) (*FlatViewTreeNode, error) {
	if index < 0 || index >= len(ft.nodes) {
		return nil, &ErrIndexOutOfBounds{Index: index}
	}
	node := ft.nodes[index]
	if node == nil {
		return nil, &ErrNodeMissing{Index: index}
	}
	return node, nil
}

// FromViewTreeCompleted builds a flat tree from a fully-rendered ViewTree,
// every leaf starting as Complete (since the source tree is already done).
func FromViewTreeCompleted(t ViewTree) *FlatViewTree {
	ft := &FlatViewTree{}
	appendViewTreeNodes(&ft.nodes, t)
	return ft
}

// ReplaceSubtreeCompleted clears the subtree at index and stores t there,
// every leaf of t starting Complete. index must fall within the tree's
// established size; children newly appended as part of storing t are the
// only slots this grows the arena for.
func (ft *FlatViewTree) ReplaceSubtreeCompleted(index int, t ViewTree) error {
	if index < 0 || index >= len(ft.nodes) {
		return &ErrIndexOutOfBounds{Index: index}
	}
	replaceViewTreeNodes(&ft.nodes, &t, index)
	return nil
}

// SetLeafStarted marks the leaf at index Started.
func (ft *FlatViewTree) SetLeafStarted(index int) error {
	return ft.SetLeafView(index, ViewNode{Kind: Started})
}

// SetLeafView replaces the leaf at index with newView. index must fall
// within the tree's established size (the size fixed by Template() or
// FromViewTreeCompleted()); a missing slot within that range is created as
// a fresh leaf, an existing branch at index is an error, and an index
// outside the established size is ErrIndexOutOfBounds rather than silently
// growing the arena to fit it.
func (ft *FlatViewTree) SetLeafView(index int, newView ViewNode) error {
	if index < 0 || index >= len(ft.nodes) {
		return &ErrIndexOutOfBounds{Index: index}
	}
	existing := ft.nodes[index]
	switch {
	case existing == nil:
		ft.nodes[index] = &FlatViewTreeNode{Leaf: newView}
		return nil
	case existing.Branch:
		return &ErrNotALeaf{Index: index}
	default:
		existing.Leaf = newView
		return nil
	}
}

// SetNodeNone clears the slot at index, used to prune a "no change" leaf.
// index must fall within the tree's established size.
func (ft *FlatViewTree) SetNodeNone(index int) error {
	if index < 0 || index >= len(ft.nodes) {
		return &ErrIndexOutOfBounds{Index: index}
	}
	ft.nodes[index] = nil
	return nil
}

// Template produces a structural clone that keeps every branch's label and
// children but resets every leaf to NotStarted, so a new phase's indices
// line up with the phase it was derived from.
func (ft *FlatViewTree) Template() *FlatViewTree {
	nodes := make([]*FlatViewTreeNode, len(ft.nodes))
	for i, node := range ft.nodes {
		switch {
		case node == nil:
			continue
		case node.Branch:
			nodes[i] = &FlatViewTreeNode{Branch: true, View: node.View, Children: append([]int(nil), node.Children...)}
		default:
			nodes[i] = &FlatViewTreeNode{Leaf: ViewNode{Kind: NotStarted}}
		}
	}
	return &FlatViewTree{nodes: nodes}
}

func appendViewTreeNodes(nodes *[]*FlatViewTreeNode, t ViewTree) int {
	if t.IsLeaf() {
		index := len(*nodes)
		*nodes = append(*nodes, &FlatViewTreeNode{Leaf: ViewNode{Kind: Complete, View: t.View()}})
		return index
	}
	index := len(*nodes)
	*nodes = append(*nodes, &FlatViewTreeNode{Branch: true, View: t.View()})
	childIndices := make([]int, 0, len(t.Children()))
	for _, child := range t.Children() {
		childIndices = append(childIndices, appendViewTreeNodes(nodes, child))
	}
	(*nodes)[index].Children = childIndices
	return index
}

func replaceViewTreeNodes(nodes *[]*FlatViewTreeNode, t *ViewTree, rootIndex int) {
	if rootIndex >= 0 && rootIndex < len(*nodes) {
		if existing := (*nodes)[rootIndex]; existing != nil && existing.Branch {
			for _, child := range existing.Children {
				replaceViewTreeNodes(nodes, nil, child)
			}
		}
	}

	ensureNodesLen(nodes, rootIndex+1)

	switch {
	case t == nil:
		(*nodes)[rootIndex] = nil
	case t.IsLeaf():
		(*nodes)[rootIndex] = &FlatViewTreeNode{Leaf: ViewNode{Kind: Complete, View: t.View()}}
	default:
		childIndices := make([]int, 0, len(t.Children()))
		for _, child := range t.Children() {
			childIndices = append(childIndices, appendViewTreeNodes(nodes, child))
		}
		ensureNodesLen(nodes, rootIndex+1)
		(*nodes)[rootIndex] = &FlatViewTreeNode{Branch: true, View: t.View(), Children: childIndices}
	}
}

func ensureNodesLen(nodes *[]*FlatViewTreeNode, n int) {
	if len(*nodes) >= n {
		return
	}
	grown := make([]*FlatViewTreeNode, n)
	copy(grown, *nodes)
	*nodes = grown
}

// ToViewTree leniently converts ft to a nested ViewTree, rendering every
// ViewNode leaf through Render(); missing children are skipped, and a
// missing root yields a single "?" line rather than an error.
func (ft *FlatViewTree) ToViewTree() ViewTree {
	t, ok := buildViewTree(RootIndex, ft.nodes)
	if !ok {
		return ViewLeaf(Line("?"))
	}
	return t
}

func buildViewTree(index int, nodes []*FlatViewTreeNode) (ViewTree, bool) {
	if index < 0 || index >= len(nodes) || nodes[index] == nil {
		return ViewTree{}, false
	}
	node := nodes[index]
	if !node.Branch {
		return ViewLeaf(node.Leaf.Render()), true
	}
	children := make([]ViewTree, 0, len(node.Children))
	for _, childIndex := range node.Children {
		if child, ok := buildViewTree(childIndex, nodes); ok {
			children = append(children, child)
		}
	}
	if len(children) == 0 {
		return ViewTree{}, false
	}
	return ViewBranch(node.View, children), true
}
