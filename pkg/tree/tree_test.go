// SPDX-License-Identifier: AGPL-3.0-or-later

package tree_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucidstage/pkg/tree"
)

func sampleTree() tree.Tree[int, string] {
	return tree.Branch("root", []tree.Tree[int, string]{
		tree.Leaf("a", 1),
		tree.Branch("group", []tree.Tree[int, string]{
			tree.Leaf("b", 2),
			tree.Leaf("c", 3),
		}),
	})
}

func TestTreeAccessors(t *testing.T) {
	leaf := tree.Leaf("meta", 7)
	assert.True(t, leaf.IsLeaf())
	assert.False(t, leaf.IsBranch())
	assert.Equal(t, 7, leaf.Node())

	branch := sampleTree()
	assert.True(t, branch.IsBranch())
	assert.Len(t, branch.Children(), 2)
}

func TestTreeIsEmpty(t *testing.T) {
	assert.True(t, tree.Branch[int, string]("m", nil).IsEmpty())
	assert.False(t, tree.Leaf("m", 0).IsEmpty())
	assert.False(t, sampleTree().IsEmpty())
}

func TestMapNodeAndMapMeta(t *testing.T) {
	t1 := sampleTree()

	doubled := tree.MapNode(t1, func(n int) int { return n * 2 })
	assert.Equal(t, 2, doubled.Children()[0].Node())
	assert.Equal(t, 4, doubled.Children()[1].Children()[0].Node())

	relabeled := tree.MapMeta(t1, func(m string) string { return "x-" + m })
	assert.Equal(t, "x-root", relabeled.Meta())
	assert.Equal(t, "x-a", relabeled.Children()[0].Meta())
}

func TestFlatTreeRoundTrip(t *testing.T) {
	t1 := sampleTree()
	flat := tree.NewFlatTree(t1)
	rebuilt := flat.ToTree()

	assert.Equal(t, t1, rebuilt)
}

func TestFlatTreeGetAndBounds(t *testing.T) {
	flat := tree.NewFlatTree(sampleTree())

	root, err := flat.Root()
	require.NoError(t, err)
	assert.True(t, root.Branch)
	assert.Len(t, root.Children, 2)

	_, err = flat.Get(999)
	var oob *tree.ErrIndexOutOfBounds
	require.ErrorAs(t, err, &oob)
}

func TestFlatTreeDepthFirstSearchIsPostOrder(t *testing.T) {
	flat := tree.NewFlatTree(sampleTree())
	order := flat.DepthFirstSearch()
	require.NotEmpty(t, order)

	// root (index 0) must be visited last.
	assert.Equal(t, tree.RootIndex, order[len(order)-1])

	// every child index must appear before its parent.
	position := make(map[int]int, len(order))
	for i, idx := range order {
		position[idx] = i
	}
	root, err := flat.Root()
	require.NoError(t, err)
	for _, child := range root.Children {
		assert.Less(t, position[child], position[tree.RootIndex])
	}
}

func TestFlatTreeReplaceSubtreeClearsDescendants(t *testing.T) {
	flat := tree.NewFlatTree(sampleTree())
	root, err := flat.Root()
	require.NoError(t, err)
	groupIndex := root.Children[1]

	replacement := tree.Leaf("z", 99)
	flat.ReplaceSubtree(groupIndex, &replacement)

	node, err := flat.Get(groupIndex)
	require.NoError(t, err)
	assert.False(t, node.Branch)
	assert.Equal(t, 99, node.Node)
}

func TestFlatTreeReplaceSubtreeWithNilClears(t *testing.T) {
	flat := tree.NewFlatTree(sampleTree())
	root, err := flat.Root()
	require.NoError(t, err)
	leafIndex := root.Children[0]

	flat.ReplaceSubtree(leafIndex, nil)

	_, err = flat.Get(leafIndex)
	var missing *tree.ErrNodeMissing
	require.ErrorAs(t, err, &missing)
}

func TestMapAsync(t *testing.T) {
	flat := tree.NewFlatTree(sampleTree())
	var updates []int

	mapped, err := tree.MapAsync(context.Background(), flat, func(n int) string {
		return strconv.Itoa(n * 10)
	}, func(_ context.Context, index int, node string) error {
		updates = append(updates, index)
		_ = node
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, updates, 3)

	rebuilt := mapped.ToTree()
	assert.Equal(t, "10", rebuilt.Children()[0].Node())
}

func TestMapOptionAsyncDropsAbsentLeavesAndEmptyBranches(t *testing.T) {
	flat := tree.NewFlatTree(sampleTree())

	mapped, err := tree.MapOptionAsync(context.Background(), flat, func(n int) (int, bool) {
		return n, n != 2 && n != 3
	}, func(context.Context, int, *int) error { return nil })
	require.NoError(t, err)

	rebuilt := mapped.ToTree()
	// the "group" branch had both its children dropped, so it disappears too.
	assert.Len(t, rebuilt.Children(), 1)
	assert.Equal(t, 1, rebuilt.Children()[0].Node())
}

func TestMapResultAsyncPropagatesError(t *testing.T) {
	flat := tree.NewFlatTree(sampleTree())
	boom := assert.AnError

	_, err := tree.MapResultAsync(context.Background(), flat,
		func(_ context.Context, n int) (int, error) {
			if n == 2 {
				return 0, boom
			}
			return n, nil
		},
		func(context.Context, int) error { return nil },
		func(context.Context, int, int) error { return nil },
	)
	require.ErrorIs(t, err, boom)
}
