// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CORE_FS
// Spec: spec/core/fs.md

// Package fs is the filesystem boundary: operations that mutate the host's
// disk go through the FS interface rather than directly through os. This
// is an external interface in the sense that a real deployment replaces
// Local with something that reaches a remote host; what ships here is the
// local, same-machine implementation used by tests and single-host applies.
package fs

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"
)

// FS is the set of file operations a resource's operations can perform.
// Every path is an absolute target-host path.
type FS interface {
	WriteFile(path string, content io.Reader, mode os.FileMode) error
	CopyFile(from, to string) error
	MoveFile(from, to string) error
	RemoveFile(path string) error
	CreateDirectory(path string, mode os.FileMode) error
	RemoveDirectory(path string) error
	CreateSymlink(target, linkPath string) error
	ChangeMode(path string, mode os.FileMode) error
	ChangeOwner(path string, user, group *string) error

	Stat(path string) (os.FileInfo, error)
	Exists(path string) (bool, error)

	// GetOwnerUser and GetOwnerGroup look up the name of path's owning user
	// and group, used by the file resource kind's User/Group state checks.
	GetOwnerUser(path string) (string, error)
	GetOwnerGroup(path string) (string, error)
}

// Error wraps a failed filesystem operation with the path it targeted.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Local performs every FS operation directly against the machine Go is
// running on, via os.
type Local struct{}

var _ FS = Local{}

// WriteFile writes content to a fresh temp file beside path and renames it
// into place, so a reader never observes a partially written file.
func (Local) WriteFile(path string, content io.Reader, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &Error{Op: "write_file", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return &Error{Op: "write_file", Path: path, Err: err}
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return &Error{Op: "write_file", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Op: "write_file", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &Error{Op: "write_file", Path: path, Err: err}
	}
	return nil
}

// CopyFile copies from to to, giving to the permission bits of from (0644
// if from cannot be stat'ed), via a temp-file-and-rename sequence.
func (l Local) CopyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return &Error{Op: "copy_file", Path: from, Err: err}
	}
	defer src.Close()

	mode := os.FileMode(0o644)
	if info, err := os.Stat(from); err == nil {
		mode = info.Mode().Perm()
	}
	return l.WriteFile(to, src, mode)
}

// MoveFile renames from to to, falling back to copy-then-remove across
// filesystem boundaries.
func (l Local) MoveFile(from, to string) error {
	if err := os.Rename(from, to); err == nil {
		return nil
	}
	if err := l.CopyFile(from, to); err != nil {
		return err
	}
	if err := os.Remove(from); err != nil {
		return &Error{Op: "move_file", Path: from, Err: err}
	}
	return nil
}

// RemoveFile deletes path. Removing a path that does not exist is not an
// error.
func (Local) RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &Error{Op: "remove_file", Path: path, Err: err}
	}
	return nil
}

// CreateDirectory makes path and any missing parents.
func (Local) CreateDirectory(path string, mode os.FileMode) error {
	if err := os.MkdirAll(path, mode); err != nil {
		return &Error{Op: "create_directory", Path: path, Err: err}
	}
	return nil
}

// RemoveDirectory recursively removes path. Removing a path that does not
// exist is not an error.
func (Local) RemoveDirectory(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return &Error{Op: "remove_directory", Path: path, Err: err}
	}
	return nil
}

// CreateSymlink creates linkPath pointing at target, replacing any existing
// entry at linkPath.
func (Local) CreateSymlink(target, linkPath string) error {
	_ = os.Remove(linkPath)
	if err := os.Symlink(target, linkPath); err != nil {
		return &Error{Op: "create_symlink", Path: linkPath, Err: err}
	}
	return nil
}

// ChangeMode sets path's permission bits.
func (Local) ChangeMode(path string, mode os.FileMode) error {
	if err := os.Chmod(path, mode); err != nil {
		return &Error{Op: "change_mode", Path: path, Err: err}
	}
	return nil
}

// ChangeOwner sets path's owning user and/or group by name. A nil pointer
// leaves that half of the ownership unchanged.
func (Local) ChangeOwner(path string, userName, groupName *string) error {
	uid, gid := -1, -1
	if userName != nil {
		u, err := user.Lookup(*userName)
		if err != nil {
			return &Error{Op: "change_owner", Path: path, Err: fmt.Errorf("user %q: %w", *userName, err)}
		}
		uid, err = strconv.Atoi(u.Uid)
		if err != nil {
			return &Error{Op: "change_owner", Path: path, Err: err}
		}
	}
	if groupName != nil {
		g, err := user.LookupGroup(*groupName)
		if err != nil {
			return &Error{Op: "change_owner", Path: path, Err: fmt.Errorf("group %q: %w", *groupName, err)}
		}
		gid, err = strconv.Atoi(g.Gid)
		if err != nil {
			return &Error{Op: "change_owner", Path: path, Err: err}
		}
	}
	if err := os.Chown(path, uid, gid); err != nil {
		return &Error{Op: "change_owner", Path: path, Err: err}
	}
	return nil
}

// GetOwnerUser looks up the name of the user owning path.
func (Local) GetOwnerUser(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &Error{Op: "get_owner_user", Path: path, Err: err}
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", &Error{Op: "get_owner_user", Path: path, Err: fmt.Errorf("owner metadata unavailable")}
	}
	u, err := user.LookupId(strconv.FormatUint(uint64(stat.Uid), 10))
	if err != nil {
		return "", &Error{Op: "get_owner_user", Path: path, Err: err}
	}
	return u.Username, nil
}

// GetOwnerGroup looks up the name of the group owning path.
func (Local) GetOwnerGroup(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &Error{Op: "get_owner_group", Path: path, Err: err}
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", &Error{Op: "get_owner_group", Path: path, Err: fmt.Errorf("owner metadata unavailable")}
	}
	g, err := user.LookupGroupId(strconv.FormatUint(uint64(stat.Gid), 10))
	if err != nil {
		return "", &Error{Op: "get_owner_group", Path: path, Err: err}
	}
	return g.Name, nil
}

// Stat is os.Stat, wrapped so callers only depend on the FS interface.
func (Local) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &Error{Op: "stat", Path: path, Err: err}
	}
	return info, nil
}

// Exists reports whether path exists, treating any non-"not exist" stat
// failure as an error rather than as absence.
func (Local) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, &Error{Op: "exists", Path: path, Err: err}
	}
}
