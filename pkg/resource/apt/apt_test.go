// SPDX-License-Identifier: AGPL-3.0-or-later

package apt_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucidstage/pkg/resource/apt"

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
	value, err := params.Validate(apt.ParamTypes(), map[string]any{"package": "curl"}, "")
	require.NoError(t, err)
	assert.Equal(t, "curl", value.Object["package"].Str)
}

func TestParamTypesValidatesPackageList(t *testing.T) {
	value, err := params.Validate(apt.ParamTypes(), map[string]any{"packages": []any{"curl", "git"}}, "")
	require.NoError(t, err)
	require.Len(t, value.Object["packages"].List, 2)
}

func TestResourcesExpandsSinglePackage(t *testing.T) {
	value, err := params.Validate(apt.ParamTypes(), map[string]any{"package": "curl"}, "")
	require.NoError(t, err)

	tr := apt.Resources(value)
	require.True(t, tr.IsBranch())
	require.Len(t, tr.Children(), 1)
	assert.Equal(t, apt.Resource{Package: "curl"}, *tr.Children()[0].Node())
}

func TestResourcesExpandsPackageList(t *testing.T) {
	value, err := params.Validate(apt.ParamTypes(), map[string]any{"packages": []any{"curl", "git"}}, "")
	require.NoError(t, err)

	tr := apt.Resources(value)
	require.Len(t, tr.Children(), 2)
	assert.Equal(t, "curl", tr.Children()[0].Node().Package)
	assert.Equal(t, "git", tr.Children()[1].Node().Package)
}

func TestGetStateInstalled(t *testing.T) {
	runner := stubRunner{result: &executil.Result{Stdout: []byte("install ok installed")}}
	state, err := apt.GetState(context.Background(), &hostctx.Context{Runner: runner}, apt.Resource{Package: "curl"})
	require.NoError(t, err)
	assert.Equal(t, apt.Installed, state)
}

func TestGetStateNotInstalled(t *testing.T) {
	runner := stubRunner{result: &executil.Result{Stdout: []byte("deinstall ok config-files")}}
	state, err := apt.GetState(context.Background(), &hostctx.Context{Runner: runner}, apt.Resource{Package: "curl"})
	require.NoError(t, err)
	assert.Equal(t, apt.NotInstalled, state)
}

func TestGetStateUnknownPackageIsNotInstalled(t *testing.T) {
	runner := stubRunner{
		result: &executil.Result{Stderr: []byte("dpkg-query: no packages found matching curl")},
		err:    errors.New("command failed with exit code 1"),
	}
	state, err := apt.GetState(context.Background(), &hostctx.Context{Runner: runner}, apt.Resource{Package: "curl"})
	require.NoError(t, err)
	assert.Equal(t, apt.NotInstalled, state)
}

func TestGetStateUnparseableStatusErrors(t *testing.T) {
	runner := stubRunner{result: &executil.Result{Stdout: []byte("garbage")}}
	_, err := apt.GetState(context.Background(), &hostctx.Context{Runner: runner}, apt.Resource{Package: "curl"})
	require.Error(t, err)
}

func TestGetChangeReturnsNilWhenInstalled(t *testing.T) {
	change := apt.GetChange(apt.Resource{Package: "curl"}, apt.Installed)
	assert.Nil(t, change)
}

func TestGetChangeReturnsInstallWhenNotInstalled(t *testing.T) {
	change := apt.GetChange(apt.Resource{Package: "curl"}, apt.NotInstalled)
	require.NotNil(t, change)
	assert.Equal(t, "curl", change.Package)
}

func TestOperationsOrdersInstallAfterUpdate(t *testing.T) {
	tr := apt.Operations(apt.Change{Package: "curl"})
	require.True(t, tr.IsBranch())
	require.Len(t, tr.Children(), 2)

	update := tr.Children()[0]
	install := tr.Children()[1]

	require.NotNil(t, update.Meta().ID)
	assert.Equal(t, "update", *update.Meta().ID)
	assert.Equal(t, operation.AptUpdate, update.Node().Apt.Variant)

	require.Equal(t, []string{"update"}, install.Meta().Requires)
	assert.Equal(t, operation.AptInstall, install.Node().Apt.Variant)
	assert.Equal(t, []string{"curl"}, install.Node().Apt.Packages)
}
