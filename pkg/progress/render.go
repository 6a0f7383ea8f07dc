// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: PROGRESS_RENDER
// Spec: spec/progress/render.md

package progress

import (
	"lucidstage/pkg/causality"
	"lucidstage/pkg/tree"
	"lucidstage/pkg/view"
)

// RenderTree flattens a causality-annotated tree into a ViewTree: every
// branch is labeled with its id (or a dot when it has none), every leaf is
// rendered through renderNode.
func RenderTree[N any](t tree.Tree[N, causality.Meta[string]], renderNode func(N) view.View) view.ViewTree {
	if t.IsLeaf() {
		return view.ViewLeaf(renderNode(t.Node()))
	}
	meta := t.Meta()
	children := make([]view.ViewTree, 0, len(t.Children()))
	for _, child := range t.Children() {
		children = append(children, RenderTree(child, renderNode))
	}
	return view.ViewBranch(view.Line(view.IDOrDot(meta.ID)), children)
}
