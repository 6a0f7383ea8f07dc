// SPDX-License-Identifier: AGPL-3.0-or-later

package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hostctx "lucidstage/pkg/ctx"
	fspkg "lucidstage/pkg/fs"
	"lucidstage/pkg/operation"
	"lucidstage/pkg/params"
	"lucidstage/pkg/resource/file"
)

func TestParamTypesValidatesFilePresent(t *testing.T) {
	value, err := params.Validate(file.ParamTypes(), map[string]any{
		"type": "file", "path": "/etc/app.conf", "mode": 420, "user": "root", "group": "root",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "/etc/app.conf", value.Object["path"].Path)
}

func TestParamTypesValidatesFileAbsent(t *testing.T) {
	_, err := params.Validate(file.ParamTypes(), map[string]any{
		"type": "file-absent", "path": "/etc/app.conf",
	}, "")
	require.NoError(t, err)
}

func TestParamTypesValidatesDirectory(t *testing.T) {
	_, err := params.Validate(file.ParamTypes(), map[string]any{
		"type": "directory", "path": "/etc/app.d", "mode": 493, "user": "root", "group": "root",
	}, "")
	require.NoError(t, err)
}

func TestResourcesExpandsFilePresentWithAttrs(t *testing.T) {
	value, err := params.Validate(file.ParamTypes(), map[string]any{
		"type": "file", "path": "/etc/app.conf", "mode": 420, "user": "root", "group": "root",
	}, "")
	require.NoError(t, err)

	tr := file.Resources(value)
	require.True(t, tr.IsBranch())
	require.Len(t, tr.Children(), 4)

	presence := tr.Children()[0]
	require.NotNil(t, presence.Meta().ID)
	assert.Equal(t, "file", *presence.Meta().ID)
	assert.Equal(t, file.KindFilePresent, presence.Node().Kind)

	mode := tr.Children()[1]
	assert.Equal(t, []string{"file"}, mode.Meta().Requires)
	assert.Equal(t, file.KindMode, mode.Node().Kind)
	assert.Equal(t, os.FileMode(420), mode.Node().Mode)
}

func TestParamTypesValidatesBareFilePresent(t *testing.T) {
	value, err := params.Validate(file.ParamTypes(), map[string]any{
		"type": "file", "path": "/tmp/x",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", value.Object["path"].Path)
}

func TestResourcesExpandsBareFilePresentAsPresenceOnly(t *testing.T) {
	value, err := params.Validate(file.ParamTypes(), map[string]any{
		"type": "file", "path": "/tmp/x",
	}, "")
	require.NoError(t, err)

	tr := file.Resources(value)
	require.True(t, tr.IsBranch())
	require.Len(t, tr.Children(), 1)

	presence := tr.Children()[0]
	require.NotNil(t, presence.Meta().ID)
	assert.Equal(t, "file", *presence.Meta().ID)
	assert.Equal(t, file.KindFilePresent, presence.Node().Kind)
}

func TestResourcesExpandsFileAbsentAsSingleLeaf(t *testing.T) {
	value, err := params.Validate(file.ParamTypes(), map[string]any{
		"type": "file-absent", "path": "/etc/app.conf",
	}, "")
	require.NoError(t, err)

	tr := file.Resources(value)
	require.True(t, tr.IsLeaf())
	assert.Equal(t, file.KindFileAbsent, tr.Node().Kind)
}

func TestGetStateFilePresentTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	state, err := file.GetState(&hostctx.Context{FS: fspkg.Local{}}, file.Resource{Kind: file.KindFilePresent, Path: path})
	require.NoError(t, err)
	assert.Equal(t, file.StateFilePresent, state)
}

func TestGetStateFileAbsentTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.conf")

	state, err := file.GetState(&hostctx.Context{FS: fspkg.Local{}}, file.Resource{Kind: file.KindFileAbsent, Path: path})
	require.NoError(t, err)
	assert.Equal(t, file.StateFileAbsent, state)
}

func TestGetStateModeMasksToLow12Bits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	state, err := file.GetState(&hostctx.Context{FS: fspkg.Local{}}, file.Resource{Kind: file.KindMode, Path: path, Mode: 0o644})
	require.NoError(t, err)
	assert.Equal(t, file.StateModeCorrect, state)
}

func TestGetChangeReturnsNilWhenPresent(t *testing.T) {
	change := file.GetChange(file.Resource{Kind: file.KindFilePresent, Path: "/etc/app.conf"}, file.StateFilePresent)
	assert.Nil(t, change)
}

func TestGetChangeReturnsWriteWhenAbsent(t *testing.T) {
	change := file.GetChange(file.Resource{Kind: file.KindFilePresent, Path: "/etc/app.conf"}, file.StateFileAbsent)
	require.NotNil(t, change)
	assert.Equal(t, "/etc/app.conf", change.Path)
}

func TestOperationsLowersChangeModeToChangeModeOperation(t *testing.T) {
	tr := file.Operations(file.Change{Kind: file.KindMode, Path: "/etc/app.conf", Mode: 0o600})
	require.True(t, tr.IsLeaf())
	op := tr.Node()
	require.NotNil(t, op.File)
	assert.Equal(t, operation.FileChangeMode, op.File.Variant)
	assert.Equal(t, os.FileMode(0o600), op.File.Mode)
}

func TestOperationsLowersFileSourceChangeToWriteWithSourcePath(t *testing.T) {
	tr := file.Operations(file.Change{Kind: file.KindFileSource, Path: "/etc/app.conf", Source: "/home/dev/app.conf"})
	op := tr.Node()
	require.NotNil(t, op.File)
	assert.Equal(t, operation.FileWrite, op.File.Variant)
	assert.Equal(t, "/home/dev/app.conf", op.File.Source.Path)
}
