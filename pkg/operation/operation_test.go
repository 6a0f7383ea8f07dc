// SPDX-License-Identifier: AGPL-3.0-or-later

package operation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucidstage/pkg/executil"
	"lucidstage/pkg/operation"
)

func TestMergeAptCoalescesUpdateAndDedupesInstalls(t *testing.T) {
	ops := operation.MergeApt([]operation.AptOperation{
		{Variant: operation.AptUpdate},
		{Variant: operation.AptInstall, Packages: []string{"git", "curl"}},
		{Variant: operation.AptInstall, Packages: []string{"curl", "vim"}},
	})

	require.Len(t, ops, 2)
	assert.Equal(t, operation.AptUpdate, ops[0].Variant)
	assert.Equal(t, []string{"curl", "git", "vim"}, ops[1].Packages)
}

func TestMergeAptOmitsEmptyVariants(t *testing.T) {
	ops := operation.MergeApt(nil)
	assert.Empty(t, ops)
}

func TestMergePacmanCoalescesUpgradeAndDedupesInstalls(t *testing.T) {
	ops := operation.MergePacman([]operation.PacmanOperation{
		{Variant: operation.PacmanInstall, Packages: []string{"base"}},
		{Variant: operation.PacmanUpgrade},
		{Variant: operation.PacmanInstall, Packages: []string{"base", "linux"}},
	})

	require.Len(t, ops, 2)
	assert.Equal(t, operation.PacmanUpgrade, ops[0].Variant)
	assert.Equal(t, []string{"base", "linux"}, ops[1].Packages)
}

func TestMergeFileIsIdentity(t *testing.T) {
	ops := []operation.FileOperation{
		{Variant: operation.FileRemove, Path: "/tmp/a"},
		{Variant: operation.FileCreateDirectory, Path: "/tmp/b"},
	}
	assert.Equal(t, ops, operation.MergeFile(ops))
}

func TestMergeGitIsIdentity(t *testing.T) {
	ops := []operation.GitOperation{{Variant: operation.GitFetch, Path: "/repo"}}
	assert.Equal(t, ops, operation.MergeGit(ops))
}

func TestMergeCommandIsIdentity(t *testing.T) {
	ops := []operation.CommandOperation{{Command: "echo hi"}}
	assert.Equal(t, ops, operation.MergeCommand(ops))
}

func TestOperationMergeDispatchesByKind(t *testing.T) {
	install := operation.AptOperation{Variant: operation.AptInstall, Packages: []string{"curl"}}
	ops := []operation.Operation{
		{Kind: operation.KindApt, Apt: &install},
		{Kind: operation.KindFile, File: &operation.FileOperation{Variant: operation.FileRemove, Path: "/tmp/x"}},
	}

	merged := operation.Merge(ops)
	require.Len(t, merged, 2)
}

func TestApplyCommandRunsShellCommand(t *testing.T) {
	lines := make(chan executil.Line, 8)
	op := operation.CommandOperation{Command: "echo from-command"}

	err := operation.ApplyCommand(context.Background(), nil, op, lines)
	require.NoError(t, err)

	var out []string
	for l := range lines {
		out = append(out, l.Text)
	}
	assert.Equal(t, []string{"from-command"}, out)
}
