// SPDX-License-Identifier: AGPL-3.0-or-later

package pacman_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucidstage/pkg/resource/pacman"

	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/executil"
	"lucidstage/pkg/operation"
	"lucidstage/pkg/params"
)

type stubRunner struct {
	result *executil.Result
	err    error
}

func (r stubRunner) Run(_ context.Context, _ executil.Command) (*executil.Result, error) {
	return r.result, r.err
}

func (r stubRunner) RunStream(_ context.Context, _ executil.Command, _ io.Writer) error {
	return nil
}

func TestParamTypesValidatesSinglePackage(t *testing.T) {
	value, err := params.Validate(pacman.ParamTypes(), map[string]any{"package": "curl"}, "")
	require.NoError(t, err)
	assert.Equal(t, "curl", value.Object["package"].Str)
}

func TestParamTypesValidatesPackageList(t *testing.T) {
	value, err := params.Validate(pacman.ParamTypes(), map[string]any{"packages": []any{"curl", "git"}}, "")
	require.NoError(t, err)
	require.Len(t, value.Object["packages"].List, 2)
}

func TestResourcesExpandsSinglePackage(t *testing.T) {
	value, err := params.Validate(pacman.ParamTypes(), map[string]any{"package": "curl"}, "")
	require.NoError(t, err)

	tr := pacman.Resources(value)
	require.True(t, tr.IsBranch())
	require.Len(t, tr.Children(), 1)
	assert.Equal(t, pacman.Resource{Package: "curl"}, *tr.Children()[0].Node())
}

func TestResourcesExpandsPackageList(t *testing.T) {
	value, err := params.Validate(pacman.ParamTypes(), map[string]any{"packages": []any{"curl", "git"}}, "")
	require.NoError(t, err)

	tr := pacman.Resources(value)
	require.Len(t, tr.Children(), 2)
	assert.Equal(t, "curl", tr.Children()[0].Node().Package)
	assert.Equal(t, "git", tr.Children()[1].Node().Package)
}

func TestGetStateInstalled(t *testing.T) {
	runner := stubRunner{result: &executil.Result{Stdout: []byte("curl 8.5.0-1\n")}}
	state, err := pacman.GetState(context.Background(), &hostctx.Context{Runner: runner}, pacman.Resource{Package: "curl"})
	require.NoError(t, err)
	assert.Equal(t, pacman.Installed, state)
}

func TestGetStateNotInstalledWhenNotFound(t *testing.T) {
	runner := stubRunner{
		result: &executil.Result{Stderr: []byte("error: package 'curl' was not found")},
		err:    errors.New("command failed with exit code 1"),
	}
	state, err := pacman.GetState(context.Background(), &hostctx.Context{Runner: runner}, pacman.Resource{Package: "curl"})
	require.NoError(t, err)
	assert.Equal(t, pacman.NotInstalled, state)
}

func TestGetStateUnexpectedFailureErrors(t *testing.T) {
	runner := stubRunner{
		result: &executil.Result{Stderr: []byte("some other pacman error")},
		err:    errors.New("command failed with exit code 2"),
	}
	_, err := pacman.GetState(context.Background(), &hostctx.Context{Runner: runner}, pacman.Resource{Package: "curl"})
	require.Error(t, err)
}

func TestGetStateBlankStdoutErrors(t *testing.T) {
	runner := stubRunner{result: &executil.Result{Stdout: []byte("  \n")}}
	_, err := pacman.GetState(context.Background(), &hostctx.Context{Runner: runner}, pacman.Resource{Package: "curl"})
	require.Error(t, err)
}

func TestGetChangeReturnsNilWhenInstalled(t *testing.T) {
	change := pacman.GetChange(pacman.Resource{Package: "curl"}, pacman.Installed)
	assert.Nil(t, change)
}

func TestGetChangeReturnsInstallWhenNotInstalled(t *testing.T) {
	change := pacman.GetChange(pacman.Resource{Package: "curl"}, pacman.NotInstalled)
	require.NotNil(t, change)
	assert.Equal(t, "curl", change.Package)
}

func TestOperationsOrdersInstallAfterUpgrade(t *testing.T) {
	tr := pacman.Operations(pacman.Change{Package: "curl"})
	require.True(t, tr.IsBranch())
	require.Len(t, tr.Children(), 2)

	upgrade := tr.Children()[0]
	install := tr.Children()[1]

	require.NotNil(t, upgrade.Meta().ID)
	assert.Equal(t, "upgrade", *upgrade.Meta().ID)
	assert.Equal(t, operation.PacmanUpgrade, upgrade.Node().Pacman.Variant)

	require.Equal(t, []string{"upgrade"}, install.Meta().Requires)
	assert.Equal(t, operation.PacmanInstall, install.Node().Pacman.Variant)
	assert.Equal(t, []string{"curl"}, install.Node().Pacman.Packages)
}
