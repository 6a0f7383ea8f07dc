// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: VIEW_RENDER
// Spec: spec/view/render.md

// Package view renders plan/resource/operation data into a small,
// UI-agnostic tree of text (View/ViewTree) and folds the progress
// protocol's events into an incrementally-revealed view (AppView).
package view

import "strings"

// Kind tags which of View's three shapes a value holds.
type Kind int

const (
	// KindLine is a single line of text, rendered on its own.
	KindLine Kind = iota
	// KindSpan is inline text meant to sit beside other spans.
	KindSpan
	// KindFragment groups child views with no separator of its own.
	KindFragment
)

// View is the rendered form of anything the apply pipeline reports: a plan
// tree, a resource's observed state, a change, or a running operation's
// label. It carries no styling; a terminal or log renderer decides how to
// lay it out.
type View struct {
	Kind     Kind
	Text     string // KindLine, KindSpan
	Children []View // KindFragment
}

// Line constructs a standalone line of text.
func Line(text string) View { return View{Kind: KindLine, Text: text} }

// Span constructs inline text.
func Span(text string) View { return View{Kind: KindSpan, Text: text} }

// Fragment groups children with no separator.
func Fragment(children ...View) View { return View{Kind: KindFragment, Children: children} }

// String flattens v to a plain-text rendering: lines are newline
// terminated, spans and fragments are concatenated inline.
func (v View) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v View) write(b *strings.Builder) {
	switch v.Kind {
	case KindLine:
		b.WriteString(v.Text)
		b.WriteByte('\n')
	case KindSpan:
		b.WriteString(v.Text)
	case KindFragment:
		for _, child := range v.Children {
			child.write(b)
		}
	}
}

// Renderer is implemented by anything that can flatten itself to a View,
// mirroring the source's per-type Render impls (ViewNode's being the one
// this package actually needs).
type Renderer interface {
	Render() View
}

// ViewTree is a nested tree of rendered content: a Leaf carries one View, a
// Branch carries a label View plus child ViewTrees. It is the shape
// produced once a plan/resource/operation tree is fully rendered, before
// being flattened into a FlatViewTree for incremental display.
type ViewTree struct {
	branch   bool
	view     View
	children []ViewTree
}

// ViewLeaf constructs a leaf ViewTree.
func ViewLeaf(v View) ViewTree { return ViewTree{view: v} }

// ViewBranch constructs a branch ViewTree.
func ViewBranch(v View, children []ViewTree) ViewTree {
	return ViewTree{branch: true, view: v, children: children}
}

// IsLeaf reports whether t is a leaf.
func (t ViewTree) IsLeaf() bool { return !t.branch }

// View returns t's own rendered content (a branch's label, or a leaf's
// content).
func (t ViewTree) View() View { return t.view }

// Children returns t's children. Only meaningful when !t.IsLeaf().
func (t ViewTree) Children() []ViewTree { return t.children }

// ViewNodeKind selects which of ViewNode's three states a value holds.
type ViewNodeKind int

const (
	NotStarted ViewNodeKind = iota
	Started
	Complete
)

// ViewNode is a single leaf's rendering status in an incrementally-revealed
// FlatViewTree.
type ViewNode struct {
	Kind ViewNodeKind
	View View // meaningful only when Kind == Complete
}

// Render renders n to a View: a placeholder icon for NotStarted, a pending
// icon for Started, or a checkmark followed by the completed content.
func (n ViewNode) Render() View {
	switch n.Kind {
	case Started:
		return Span("⌛")
	case Complete:
		return Fragment(Span("✅"), n.View)
	default:
		return Span("🟩")
	}
}

// IDOrDot renders a causality id as its own text, or "." when absent —
// the label every tree/view in the progress protocol uses for a node with
// no declared id.
func IDOrDot(id *string) string {
	if id == nil {
		return "."
	}
	return *id
}
