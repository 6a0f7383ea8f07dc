// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package operation

import (
	"context"
	"fmt"
	"os"
	"strings"

	hostctx "lucidstage/pkg/ctx"
)

// FileVariant selects which filesystem mutation a FileOperation performs.
type FileVariant int

const (
	FileWrite FileVariant = iota
	FileCopy
	FileMove
	FileRemove
	FileCreateDirectory
	FileRemoveDirectory
	FileCreateSymlink
	FileChangeMode
	FileChangeOwner
)

// FileSource is the content a WriteFile operation writes: either literal
// bytes or a path to copy from.
type FileSource struct {
	Contents []byte
	Path     string // set instead of Contents when copying from a path
}

// FileOperation is a single filesystem mutation.
type FileOperation struct {
	Variant     FileVariant
	Path        string
	Source      FileSource // FileWrite
	FromPath    string     // FileCopy, FileMove, FileCreateSymlink (the "source")
	Mode        os.FileMode
	User, Group *string
}

func (op FileOperation) String() string {
	switch op.Variant {
	case FileWrite:
		if op.Source.Path != "" {
			return fmt.Sprintf("File::WriteFile(path = %s, source = Path(%s))", op.Path, op.Source.Path)
		}
		return fmt.Sprintf("File::WriteFile(path = %s, source = Contents(%d bytes))", op.Path, len(op.Source.Contents))
	case FileCopy:
		return fmt.Sprintf("File::CopyFile(source = %s, destination = %s)", op.FromPath, op.Path)
	case FileMove:
		return fmt.Sprintf("File::MoveFile(source = %s, destination = %s)", op.FromPath, op.Path)
	case FileRemove:
		return fmt.Sprintf("File::RemoveFile(path = %s)", op.Path)
	case FileCreateDirectory:
		return fmt.Sprintf("File::CreateDirectory(path = %s)", op.Path)
	case FileRemoveDirectory:
		return fmt.Sprintf("File::RemoveDirectory(path = %s)", op.Path)
	case FileCreateSymlink:
		return fmt.Sprintf("File::CreateSymlink(source = %s, path = %s)", op.FromPath, op.Path)
	case FileChangeMode:
		return fmt.Sprintf("File::ChangeMode(path = %s, mode = %o)", op.Path, op.Mode)
	case FileChangeOwner:
		return fmt.Sprintf("File::ChangeOwner(path = %s, user = %s, group = %s)", op.Path, ptrStr(op.User), ptrStr(op.Group))
	default:
		return "File::Unknown"
	}
}

func ptrStr(p *string) string {
	if p == nil {
		return "<none>"
	}
	return *p
}

// MergeFile is the identity merge: file operations never combine with one
// another, since each already names its exact target path.
func MergeFile(operations []FileOperation) []FileOperation {
	return operations
}

// ApplyFile performs op directly against hostCtx.FS. File operations have
// no interesting stdout/stderr, matching the source's tokio::io::empty()
// streams.
func ApplyFile(_ context.Context, hostCtx *hostctx.Context, op FileOperation) error {
	switch op.Variant {
	case FileWrite:
		if op.Source.Path != "" {
			return hostCtx.FS.CopyFile(op.Source.Path, op.Path)
		}
		return hostCtx.FS.WriteFile(op.Path, strings.NewReader(string(op.Source.Contents)), 0o644)
	case FileCopy:
		return hostCtx.FS.CopyFile(op.FromPath, op.Path)
	case FileMove:
		return hostCtx.FS.MoveFile(op.FromPath, op.Path)
	case FileRemove:
		return hostCtx.FS.RemoveFile(op.Path)
	case FileCreateDirectory:
		return hostCtx.FS.CreateDirectory(op.Path, 0o755)
	case FileRemoveDirectory:
		return hostCtx.FS.RemoveDirectory(op.Path)
	case FileCreateSymlink:
		return hostCtx.FS.CreateSymlink(op.FromPath, op.Path)
	case FileChangeMode:
		return hostCtx.FS.ChangeMode(op.Path, op.Mode)
	case FileChangeOwner:
		return hostCtx.FS.ChangeOwner(op.Path, op.User, op.Group)
	default:
		return fmt.Errorf("unknown file operation variant %d", op.Variant)
	}
}
