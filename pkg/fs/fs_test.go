// SPDX-License-Identifier: AGPL-3.0-or-later

package fs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lfs "lucidstage/pkg/fs"
)

func TestLocalWriteFileAtomicAndMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	local := lfs.Local{}

	err := local.WriteFile(path, strings.NewReader("hello"), 0o640)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestLocalCopyAndMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	moved := filepath.Join(dir, "moved.txt")
	local := lfs.Local{}

	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))
	require.NoError(t, local.CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, local.MoveFile(dst, moved))
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))

	data, err = os.ReadFile(moved)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestLocalCreateAndRemoveDirectory(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	local := lfs.Local{}

	require.NoError(t, local.CreateDirectory(nested, 0o755))
	exists, err := local.Exists(nested)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, local.RemoveDirectory(filepath.Join(dir, "a")))
	exists, err = local.Exists(nested)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalRemoveFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	local := lfs.Local{}

	require.NoError(t, local.RemoveFile(path))
}

func TestLocalCreateSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	link := filepath.Join(dir, "link.txt")
	local := lfs.Local{}

	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	require.NoError(t, local.CreateSymlink(target, link))

	resolved, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, resolved)
}

func TestLocalChangeMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "perm.txt")
	local := lfs.Local{}

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, local.ChangeMode(path, 0o600))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
