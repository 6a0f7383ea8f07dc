// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package tree

import (
	"context"
	"fmt"
)

// ErrIndexOutOfBounds is returned when an index is not within the arena.
type ErrIndexOutOfBounds struct{ Index int }

func (e *ErrIndexOutOfBounds) Error() string {
	return fmt.Sprintf("index %d is out of bounds", e.Index)
}

// ErrNodeMissing is returned when the slot at an index has been cleared.
type ErrNodeMissing struct{ Index int }

func (e *ErrNodeMissing) Error() string {
	return fmt.Sprintf("node at index %d is None", e.Index)
}

// FlatNode is a single arena slot: either a Branch (referencing child
// indices) or a Leaf (carrying a node value).
type FlatNode[N, M any] struct {
	Branch   bool
	Meta     M
	Children []int // only meaningful when Branch is true
	Node     N     // only meaningful when Branch is false
}

// FlatTree is the indexed-arena form of Tree. The root, whenever the tree is
// non-empty, lives at index 0. Slots are tolerant of being nil ("None");
// mappers and rebuilders skip them.
type FlatTree[N, M any] struct {
	nodes []*FlatNode[N, M]
}

// RootIndex is always 0.
const RootIndex = 0

// NewFlatTree converts a nested Tree into a FlatTree, placing its root at
// index 0.
func NewFlatTree[N, M any](t Tree[N, M]) *FlatTree[N, M] {
	ft := &FlatTree[N, M]{}
	appendTreeNodes(&ft.nodes, t)
	return ft
}

// Empty returns a FlatTree with no nodes at all.
func Empty[N, M any]() *FlatTree[N, M] {
	return &FlatTree[N, M]{}
}

// Len returns the number of arena slots (including cleared ones).
func (ft *FlatTree[N, M]) Len() int { return len(ft.nodes) }

// IsEmpty reports whether the root slot is absent.
func (ft *FlatTree[N, M]) IsEmpty() bool {
	return len(ft.nodes) == 0 || ft.nodes[0] == nil
}

// Root returns the node at index 0, if present.
func (ft *FlatTree[N, M]) Root() (*FlatNode[N, M], error) {
	return ft.Get(RootIndex)
}

// Get returns the node at index, or an error if out of bounds or cleared.
func (ft *FlatTree[N, M]) Get(index int) (*FlatNode[N, M], error) {
	if index < 0 || index >= len(ft.nodes) {
		return nil, &ErrIndexOutOfBounds{Index: index}
	}
	node := ft.nodes[index]
	if node == nil {
		return nil, &ErrNodeMissing{Index: index}
	}
	return node, nil
}

// AppendTree appends a nested tree to the arena and returns the index of its
// root. The very first append into an empty arena yields index 0.
func (ft *FlatTree[N, M]) AppendTree(t Tree[N, M]) int {
	return appendTreeNodes(&ft.nodes, t)
}

// ReplaceSubtree clears the subtree rooted at index (recursively) and, if t
// is non-nil, stores the new tree there: a Leaf directly at index, or a
// Branch at index whose children are freshly appended at the tail.
func (ft *FlatTree[N, M]) ReplaceSubtree(index int, t *Tree[N, M]) {
	replaceTreeNodes(&ft.nodes, t, index)
}

// DepthFirstSearch returns leaf/branch indices in post-order (children
// before their parent). Missing or out-of-bounds children are skipped.
func (ft *FlatTree[N, M]) DepthFirstSearch() []int {
	var order []int
	if ft.IsEmpty() {
		return order
	}

	type frame struct {
		index   int
		visited bool
	}
	stack := []frame{{index: RootIndex, visited: false}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.index < 0 || top.index >= len(ft.nodes) || ft.nodes[top.index] == nil {
			continue
		}
		node := ft.nodes[top.index]

		if !node.Branch {
			order = append(order, top.index)
			continue
		}

		if top.visited {
			order = append(order, top.index)
			continue
		}

		stack = append(stack, frame{index: top.index, visited: true})
		for i := len(node.Children) - 1; i >= 0; i-- {
			child := node.Children[i]
			if child >= 0 && child < len(ft.nodes) && ft.nodes[child] != nil {
				stack = append(stack, frame{index: child, visited: false})
			}
		}
	}

	return order
}

// ToTree lenient-reconstructs a nested Tree from the arena: missing children
// are skipped, and a missing root yields an empty Branch with the zero value
// of M.
func (ft *FlatTree[N, M]) ToTree() Tree[N, M] {
	visited := make([]bool, len(ft.nodes))
	t, ok := buildTree(RootIndex, ft.nodes, visited)
	if !ok {
		var zero M
		return Branch[N, M](zero, nil)
	}
	return t
}

func buildTree[N, M any](index int, nodes []*FlatNode[N, M], visited []bool) (Tree[N, M], bool) {
	if index < 0 || index >= len(nodes) || nodes[index] == nil || visited[index] {
		var zero Tree[N, M]
		return zero, false
	}
	visited[index] = true
	node := nodes[index]
	if !node.Branch {
		return Leaf(node.Meta, node.Node), true
	}
	children := make([]Tree[N, M], 0, len(node.Children))
	for _, childIndex := range node.Children {
		if child, ok := buildTree(childIndex, nodes, visited); ok {
			children = append(children, child)
		}
	}
	return Branch(node.Meta, children), true
}

func appendTreeNodes[N, M any](nodes *[]*FlatNode[N, M], t Tree[N, M]) int {
	if t.IsLeaf() {
		index := len(*nodes)
		*nodes = append(*nodes, &FlatNode[N, M]{Branch: false, Meta: t.Meta(), Node: t.Node()})
		return index
	}

	index := len(*nodes)
	*nodes = append(*nodes, &FlatNode[N, M]{Branch: true, Meta: t.Meta()})
	childIndices := make([]int, 0, len(t.Children()))
	for _, child := range t.Children() {
		childIndices = append(childIndices, appendTreeNodes(nodes, child))
	}
	(*nodes)[index].Children = childIndices
	return index
}

func replaceTreeNodes[N, M any](nodes *[]*FlatNode[N, M], t *Tree[N, M], rootIndex int) {
	if rootIndex >= 0 && rootIndex < len(*nodes) {
		if existing := (*nodes)[rootIndex]; existing != nil && existing.Branch {
			children := existing.Children
			for _, child := range children {
				replaceTreeNodes[N, M](nodes, nil, child)
			}
		}
	}

	ensureLen(nodes, rootIndex+1)

	switch {
	case t == nil:
		(*nodes)[rootIndex] = nil
	case t.IsLeaf():
		(*nodes)[rootIndex] = &FlatNode[N, M]{Branch: false, Meta: t.Meta(), Node: t.Node()}
	default:
		childIndices := make([]int, 0, len(t.Children()))
		for _, child := range t.Children() {
			childIndices = append(childIndices, appendTreeNodes(nodes, child))
		}
		ensureLen(nodes, rootIndex+1)
		(*nodes)[rootIndex] = &FlatNode[N, M]{Branch: true, Meta: t.Meta(), Children: childIndices}
	}
}

func ensureLen[N, M any](nodes *[]*FlatNode[N, M], n int) {
	if len(*nodes) >= n {
		return
	}
	grown := make([]*FlatNode[N, M], n)
	copy(grown, *nodes)
	*nodes = grown
}

// MapAsync transforms every leaf's node value in ascending index order via
// fn, then invokes onUpdate(index, newNode) before moving to the next leaf.
// Branches pass through unchanged.
func MapAsync[N, M, N2 any](
	ctx context.Context,
	ft *FlatTree[N, M],
	fn func(N) N2,
	onUpdate func(ctx context.Context, index int, node N2) error,
) (*FlatTree[N2, M], error) {
	next := make([]*FlatNode[N2, M], len(ft.nodes))
	for index, node := range ft.nodes {
		if node == nil {
			continue
		}
		if node.Branch {
			next[index] = &FlatNode[N2, M]{Branch: true, Meta: node.Meta, Children: node.Children}
			continue
		}
		nextNode := fn(node.Node)
		next[index] = &FlatNode[N2, M]{Branch: false, Meta: node.Meta, Node: nextNode}
		if err := onUpdate(ctx, index, nextNode); err != nil {
			return nil, err
		}
	}
	return &FlatTree[N2, M]{nodes: next}, nil
}

// MapOptionAsync is MapAsync where fn may map a leaf to "absent" (ok=false),
// in which case the leaf is dropped. After mapping, any branch whose entire
// subtree became absent is also dropped, in a post-order sweep.
func MapOptionAsync[N, M, N2 any](
	ctx context.Context,
	ft *FlatTree[N, M],
	fn func(N) (N2, bool),
	onUpdate func(ctx context.Context, index int, node *N2) error,
) (*FlatTree[N2, M], error) {
	next := make([]*FlatNode[N2, M], len(ft.nodes))
	for index, node := range ft.nodes {
		if node == nil {
			continue
		}
		if node.Branch {
			next[index] = &FlatNode[N2, M]{Branch: true, Meta: node.Meta, Children: node.Children}
			continue
		}
		nextNode, ok := fn(node.Node)
		var reported *N2
		if ok {
			next[index] = &FlatNode[N2, M]{Branch: false, Meta: node.Meta, Node: nextNode}
			reported = &nextNode
		}
		if err := onUpdate(ctx, index, reported); err != nil {
			return nil, err
		}
	}

	result := &FlatTree[N2, M]{nodes: next}
	for _, index := range result.DepthFirstSearch() {
		node := result.nodes[index]
		if node == nil || !node.Branch {
			continue
		}
		hasChild := false
		for _, child := range node.Children {
			if child >= 0 && child < len(result.nodes) && result.nodes[child] != nil {
				hasChild = true
				break
			}
		}
		if !hasChild {
			result.nodes[index] = nil
		}
	}
	return result, nil
}

// MapTreeAsync replaces each leaf at index i with a sub-tree returned by fn,
// appending its branches below i.
func MapTreeAsync[N, M, N2 any](
	ctx context.Context,
	ft *FlatTree[N, M],
	fn func(N, M) Tree[N2, M],
	onUpdate func(ctx context.Context, index int, subtree Tree[N2, M]) error,
) (*FlatTree[N2, M], error) {
	next := make([]*FlatNode[N2, M], len(ft.nodes))
	for index, node := range ft.nodes {
		if node == nil {
			continue
		}
		if node.Branch {
			next[index] = &FlatNode[N2, M]{Branch: true, Meta: node.Meta, Children: node.Children}
			continue
		}
		subtree := fn(node.Node, node.Meta)
		replaceTreeNodes(&next, &subtree, index)
		if err := onUpdate(ctx, index, subtree); err != nil {
			return nil, err
		}
	}
	return &FlatTree[N2, M]{nodes: next}, nil
}

// MapResultAsync is MapAsync where fn is fallible: onStart(index) fires
// before the call, fn may return an error that aborts the whole traversal,
// and onUpdate(index, node) fires after a successful call.
func MapResultAsync[N, M, N2 any](
	ctx context.Context,
	ft *FlatTree[N, M],
	fn func(ctx context.Context, node N) (N2, error),
	onStart func(ctx context.Context, index int) error,
	onUpdate func(ctx context.Context, index int, node N2) error,
) (*FlatTree[N2, M], error) {
	next := make([]*FlatNode[N2, M], len(ft.nodes))
	for index, node := range ft.nodes {
		if node == nil {
			continue
		}
		if node.Branch {
			next[index] = &FlatNode[N2, M]{Branch: true, Meta: node.Meta, Children: node.Children}
			continue
		}
		if err := onStart(ctx, index); err != nil {
			return nil, err
		}
		nextNode, err := fn(ctx, node.Node)
		if err != nil {
			return nil, err
		}
		next[index] = &FlatNode[N2, M]{Branch: false, Meta: node.Meta, Node: nextNode}
		if err := onUpdate(ctx, index, nextNode); err != nil {
			return nil, err
		}
	}
	return &FlatTree[N2, M]{nodes: next}, nil
}
