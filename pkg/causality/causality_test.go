// SPDX-License-Identifier: AGPL-3.0-or-later

package causality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucidstage/pkg/causality"
	"lucidstage/pkg/tree"
)

func ptr[T any](v T) *T { return &v }

func leaf(id string, requires, requiredBy []string, value string) tree.Tree[*string, causality.Meta[string]] {
	var idPtr *string
	if id != "" {
		idPtr = ptr(id)
	}
	return tree.Leaf(causality.Meta[string]{ID: idPtr, Requires: requires, RequiredBy: requiredBy}, ptr(value))
}

func branch(id string, requires, requiredBy []string, children ...tree.Tree[*string, causality.Meta[string]]) tree.Tree[*string, causality.Meta[string]] {
	var idPtr *string
	if id != "" {
		idPtr = ptr(id)
	}
	return tree.Branch(causality.Meta[string]{ID: idPtr, Requires: requires, RequiredBy: requiredBy}, children)
}

func flatten(epochs [][]string) []string {
	var out []string
	for _, epoch := range epochs {
		out = append(out, epoch...)
	}
	return out
}

func TestComputeEpochsLinearChain(t *testing.T) {
	t1 := branch("", nil, nil,
		leaf("a", nil, nil, "A"),
		leaf("b", []string{"a"}, nil, "B"),
		leaf("c", []string{"b"}, nil, "C"),
	)

	epochs, err := causality.ComputeEpochs(t1)
	require.NoError(t, err)
	require.Len(t, epochs, 3)
	assert.Equal(t, []string{"A"}, epochs[0])
	assert.Equal(t, []string{"B"}, epochs[1])
	assert.Equal(t, []string{"C"}, epochs[2])
}

func TestComputeEpochsIndependentNodesShareEpoch(t *testing.T) {
	t1 := branch("", nil, nil,
		leaf("a", nil, nil, "A"),
		leaf("b", nil, nil, "B"),
	)

	epochs, err := causality.ComputeEpochs(t1)
	require.NoError(t, err)
	require.Len(t, epochs, 1)
	assert.ElementsMatch(t, []string{"A", "B"}, epochs[0])
}

func TestComputeEpochsRequiredByIsInverseOfRequires(t *testing.T) {
	viaRequires := branch("", nil, nil,
		leaf("a", nil, nil, "A"),
		leaf("b", []string{"a"}, nil, "B"),
	)
	viaRequiredBy := branch("", nil, nil,
		leaf("a", nil, []string{"b"}, "A"),
		leaf("b", nil, nil, "B"),
	)

	first, err := causality.ComputeEpochs(viaRequires)
	require.NoError(t, err)
	second, err := causality.ComputeEpochs(viaRequiredBy)
	require.NoError(t, err)

	assert.Equal(t, flatten(first), flatten(second))
}

func TestComputeEpochsBranchMetaPropagatesToDescendants(t *testing.T) {
	t1 := branch("", nil, nil,
		leaf("a", nil, nil, "A"),
		branch("grp", []string{"a"}, nil,
			leaf("b", nil, nil, "B"),
			leaf("c", nil, nil, "C"),
		),
	)

	epochs, err := causality.ComputeEpochs(t1)
	require.NoError(t, err)
	require.Len(t, epochs, 2)
	assert.Equal(t, []string{"A"}, epochs[0])
	assert.ElementsMatch(t, []string{"B", "C"}, epochs[1])
}

func TestComputeEpochsUnknownRequiresErrors(t *testing.T) {
	t1 := branch("", nil, nil,
		leaf("a", []string{"nope"}, nil, "A"),
	)

	_, err := causality.ComputeEpochs(t1)
	require.Error(t, err)
	var causalityErr *causality.Error
	require.ErrorAs(t, err, &causalityErr)
	assert.Equal(t, causality.UnknownRequires, causalityErr.Kind)
}

func TestComputeEpochsUnknownRequiredByErrors(t *testing.T) {
	t1 := branch("", nil, nil,
		leaf("a", nil, []string{"nope"}, "A"),
	)

	_, err := causality.ComputeEpochs(t1)
	require.Error(t, err)
	var causalityErr *causality.Error
	require.ErrorAs(t, err, &causalityErr)
	assert.Equal(t, causality.UnknownRequiredBy, causalityErr.Kind)
}

func TestComputeEpochsDuplicateIDErrors(t *testing.T) {
	t1 := branch("", nil, nil,
		leaf("a", nil, nil, "A"),
		leaf("a", nil, nil, "A2"),
	)

	_, err := causality.ComputeEpochs(t1)
	require.Error(t, err)
	var causalityErr *causality.Error
	require.ErrorAs(t, err, &causalityErr)
	assert.Equal(t, causality.DuplicateID, causalityErr.Kind)
}

func TestComputeEpochsCycleDetected(t *testing.T) {
	t1 := branch("", nil, nil,
		leaf("a", []string{"b"}, nil, "A"),
		leaf("b", []string{"a"}, nil, "B"),
	)

	_, err := causality.ComputeEpochs(t1)
	require.Error(t, err)
	var causalityErr *causality.Error
	require.ErrorAs(t, err, &causalityErr)
	assert.Equal(t, causality.CycleDetected, causalityErr.Kind)
	assert.Equal(t, 2, causalityErr.Remaining)
}

func TestComputeEpochsPreservesLeafIndexOrderAcrossConvergingChains(t *testing.T) {
	// leaf0(id="x0"), leaf1(id="x1"), leaf2(requires=["x1"]), leaf3(requires=["x0"]).
	// Epoch 0 clears leaf0 before leaf1; processing leaf0 first resolves
	// leaf3's dependency before leaf1 resolves leaf2's, so a wave built in
	// discovery order would yield [leaf3, leaf2]. Index order requires
	// [leaf2, leaf3].
	t1 := branch("", nil, nil,
		leaf("x0", nil, nil, "leaf0"),
		leaf("x1", nil, nil, "leaf1"),
		leaf("", []string{"x1"}, nil, "leaf2"),
		leaf("", []string{"x0"}, nil, "leaf3"),
	)

	epochs, err := causality.ComputeEpochs(t1)
	require.NoError(t, err)
	require.Len(t, epochs, 2)
	assert.Equal(t, []string{"leaf0", "leaf1"}, epochs[0])
	assert.Equal(t, []string{"leaf2", "leaf3"}, epochs[1])
}

func TestComputeEpochsUnionOfIdsMatchesLeafCount(t *testing.T) {
	t1 := branch("", nil, nil,
		leaf("a", nil, nil, "A"),
		leaf("b", []string{"a"}, nil, "B"),
		leaf("c", []string{"a"}, nil, "C"),
		leaf("d", []string{"b", "c"}, nil, "D"),
	)

	epochs, err := causality.ComputeEpochs(t1)
	require.NoError(t, err)
	assert.Len(t, flatten(epochs), 4)
}
