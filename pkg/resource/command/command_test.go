// SPDX-License-Identifier: AGPL-3.0-or-later

package command_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/executil"
	"lucidstage/pkg/params"
	"lucidstage/pkg/resource/command"
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

func TestParamTypesValidatesInstall(t *testing.T) {
	value, err := params.Validate(command.ParamTypes(), map[string]any{
		"status": "install", "install": "apt-get install -y foo",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "install", value.Object["status"].Literal)
}

func TestParamTypesValidatesUninstall(t *testing.T) {
	_, err := params.Validate(command.ParamTypes(), map[string]any{
		"status": "uninstall", "uninstall": "apt-get remove -y foo",
	}, "")
	require.NoError(t, err)
}

func TestResourcesExpandsInstall(t *testing.T) {
	value, err := params.Validate(command.ParamTypes(), map[string]any{
		"status": "install", "install": "make install", "is_installed": "which foo",
	}, "")
	require.NoError(t, err)

	tr := command.Resources(value)
	require.True(t, tr.IsLeaf())
	r := tr.Node()
	assert.Equal(t, command.StatusInstall, r.Status)
	assert.Equal(t, "make install", r.Install)
	assert.Equal(t, "which foo", r.IsInstalled)
}

func TestGetStateUnknownWhenNoProbe(t *testing.T) {
	state, err := command.GetState(context.Background(), &hostctx.Context{Runner: stubRunner{}}, command.Resource{})
	require.NoError(t, err)
	assert.Equal(t, command.StateUnknown, state)
}

func TestGetStateUnknownWhenProbeBlank(t *testing.T) {
	state, err := command.GetState(context.Background(), &hostctx.Context{Runner: stubRunner{}}, command.Resource{IsInstalled: "   "})
	require.NoError(t, err)
	assert.Equal(t, command.StateUnknown, state)
}

func TestGetStateInstalledWhenProbeSucceeds(t *testing.T) {
	runner := stubRunner{result: &executil.Result{ExitCode: 0}}
	state, err := command.GetState(context.Background(), &hostctx.Context{Runner: runner}, command.Resource{IsInstalled: "which foo"})
	require.NoError(t, err)
	assert.Equal(t, command.StateInstalled, state)
}

func TestGetStateNotInstalledWhenProbeFails(t *testing.T) {
	runner := stubRunner{result: &executil.Result{ExitCode: 1}, err: errors.New("exit 1")}
	state, err := command.GetState(context.Background(), &hostctx.Context{Runner: runner}, command.Resource{IsInstalled: "which foo"})
	require.NoError(t, err)
	assert.Equal(t, command.StateNotInstalled, state)
}

func TestGetChangeInstallWhenNotInstalled(t *testing.T) {
	change := command.GetChange(command.Resource{Status: command.StatusInstall, Install: "make install"}, command.StateNotInstalled)
	require.NotNil(t, change)
	assert.Equal(t, command.ChangeInstall, change.Variant)
	assert.Equal(t, "make install", change.Command)
}

func TestGetChangeNilWhenInstalledAndWantInstall(t *testing.T) {
	change := command.GetChange(command.Resource{Status: command.StatusInstall, Install: "make install"}, command.StateInstalled)
	assert.Nil(t, change)
}

func TestGetChangeUninstallWhenInstalled(t *testing.T) {
	change := command.GetChange(command.Resource{Status: command.StatusUninstall, Uninstall: "make uninstall"}, command.StateInstalled)
	require.NotNil(t, change)
	assert.Equal(t, command.ChangeUninstall, change.Variant)
}

func TestGetChangeNilWhenUnknown(t *testing.T) {
	change := command.GetChange(command.Resource{Status: command.StatusInstall, Install: "make install"}, command.StateUnknown)
	assert.Nil(t, change)
}

func TestOperationsLowersToCommandOperation(t *testing.T) {
	tr := command.Operations(command.Change{Variant: command.ChangeInstall, Command: "make install"})
	require.True(t, tr.IsLeaf())
	op := tr.Node()
	require.NotNil(t, op.Command)
	assert.Equal(t, "make install", op.Command.Command)
}
