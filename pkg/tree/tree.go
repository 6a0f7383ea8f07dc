// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CORE_TREE
// Spec: spec/core/tree.md

// Package tree provides a generic nested tree and an indexed flat-arena
// representation of it, with structural mapping helpers used by every stage
// of the planning-and-application pipeline.
package tree

// Tree is a nested tree over leaf node type N and metadata type M. A Branch
// carries metadata that applies to every descendant (see package causality);
// a Leaf carries a single node value.
type Tree[N, M any] struct {
	branch   bool
	meta     M
	children []Tree[N, M]
	node     N
}

// Branch constructs a branch node.
func Branch[N, M any](meta M, children []Tree[N, M]) Tree[N, M] {
	return Tree[N, M]{branch: true, meta: meta, children: children}
}

// Leaf constructs a leaf node.
func Leaf[N, M any](meta M, node N) Tree[N, M] {
	return Tree[N, M]{branch: false, meta: meta, node: node}
}

// IsLeaf reports whether t is a Leaf.
func (t Tree[N, M]) IsLeaf() bool { return !t.branch }

// IsBranch reports whether t is a Branch.
func (t Tree[N, M]) IsBranch() bool { return t.branch }

// Meta returns the node's metadata.
func (t Tree[N, M]) Meta() M { return t.meta }

// Node returns the leaf's node value. Only meaningful when IsLeaf() is true.
func (t Tree[N, M]) Node() N { return t.node }

// Children returns the branch's children. Only meaningful when IsBranch() is
// true.
func (t Tree[N, M]) Children() []Tree[N, M] { return t.children }

// IsEmpty reports whether t is a branch with no non-empty descendants. A
// leaf is never empty.
func (t Tree[N, M]) IsEmpty() bool {
	if !t.branch {
		return false
	}
	for _, child := range t.children {
		if !child.IsEmpty() {
			return false
		}
	}
	return true
}

// MapNode returns a new tree with every leaf's node value transformed by fn.
// Metadata is preserved unchanged.
func MapNode[N, M, N2 any](t Tree[N, M], fn func(N) N2) Tree[N2, M] {
	if !t.branch {
		return Leaf[N2, M](t.meta, fn(t.node))
	}
	children := make([]Tree[N2, M], len(t.children))
	for i, child := range t.children {
		children[i] = MapNode(child, fn)
	}
	return Branch(t.meta, children)
}

// MapMeta returns a new tree with every node's metadata transformed by fn.
// Leaf/branch node values are preserved unchanged.
func MapMeta[N, M, M2 any](t Tree[N, M], fn func(M) M2) Tree[N, M2] {
	if !t.branch {
		return Leaf(fn(t.meta), t.node)
	}
	children := make([]Tree[N, M2], len(t.children))
	for i, child := range t.children {
		children[i] = MapMeta(child, fn)
	}
	return Branch(fn(t.meta), children)
}
