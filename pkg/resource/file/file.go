// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: RESOURCE_FILE
// Spec: spec/resources/file.md

// Package file implements the "@core/file" resource kind: files,
// directories, and their mode/owner/group, expanded to atomic leaves per
// attribute.
package file

import (
	"fmt"
	"os"

	"lucidstage/pkg/causality"
	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/operation"
	"lucidstage/pkg/params"
	"lucidstage/pkg/tree"
)

// ParamTypes is the schema a "@core/file" plan item's params must validate
// against: a "type"-tagged union over the five supported variants.
func ParamTypes() params.Schema {
	pathFields := func(extra map[string]params.Field) map[string]params.Field {
		fields := map[string]params.Field{"path": {Type: params.Type{Kind: params.TargetPath}}}
		for k, v := range extra {
			fields[k] = v
		}
		return fields
	}
	modeOwner := map[string]params.Field{
		"mode":  {Type: params.Type{Kind: params.Number}, Optional: true},
		"user":  {Type: params.Type{Kind: params.String}, Optional: true},
		"group": {Type: params.Type{Kind: params.String}, Optional: true},
	}

	return params.Schema{Union: []params.Struct{
		{
			Keys: []string{"type", "source", "path", "mode", "user", "group"},
			Fields: pathFields(map[string]params.Field{
				"type":   {Type: params.Type{Kind: params.Literal, Literal: "source"}},
				"source": {Type: params.Type{Kind: params.HostPath}},
				"mode":   modeOwner["mode"],
				"user":   modeOwner["user"],
				"group":  modeOwner["group"],
			}),
		},
		{
			Keys: []string{"type", "path", "mode", "user", "group"},
			Fields: pathFields(map[string]params.Field{
				"type":  {Type: params.Type{Kind: params.Literal, Literal: "file"}},
				"mode":  modeOwner["mode"],
				"user":  modeOwner["user"],
				"group": modeOwner["group"],
			}),
		},
		{
			Keys: []string{"type", "path"},
			Fields: pathFields(map[string]params.Field{
				"type": {Type: params.Type{Kind: params.Literal, Literal: "file-absent"}},
			}),
		},
		{
			Keys: []string{"type", "path", "mode", "user", "group"},
			Fields: pathFields(map[string]params.Field{
				"type":  {Type: params.Type{Kind: params.Literal, Literal: "directory"}},
				"mode":  modeOwner["mode"],
				"user":  modeOwner["user"],
				"group": modeOwner["group"],
			}),
		},
		{
			Keys: []string{"type", "path"},
			Fields: pathFields(map[string]params.Field{
				"type": {Type: params.Type{Kind: params.Literal, Literal: "directory-absent"}},
			}),
		},
	}}
}

// Kind tags which variant a Resource leaf describes.
type Kind int

const (
	KindFileSource Kind = iota
	KindFilePresent
	KindFileAbsent
	KindDirectoryPresent
	KindDirectoryAbsent
	KindMode
	KindUser
	KindGroup
)

// Resource is one atomic file-system fact.
type Resource struct {
	Kind   Kind
	Path   string
	Source string      // KindFileSource
	Mode   os.FileMode // KindMode
	User   string      // KindUser
	Group  string      // KindGroup
}

func (r Resource) String() string {
	switch r.Kind {
	case KindFileSource:
		return fmt.Sprintf("FileSource(%s -> %s)", r.Source, r.Path)
	case KindFilePresent:
		return fmt.Sprintf("FilePresent(%s)", r.Path)
	case KindFileAbsent:
		return fmt.Sprintf("FileAbsent(%s)", r.Path)
	case KindDirectoryPresent:
		return fmt.Sprintf("DirectoryPresent(%s)", r.Path)
	case KindDirectoryAbsent:
		return fmt.Sprintf("DirectoryAbsent(%s)", r.Path)
	case KindMode:
		return fmt.Sprintf("FileMode(%s, mode = %o)", r.Path, r.Mode)
	case KindUser:
		return fmt.Sprintf("FileUser(%s, user = %s)", r.Path, r.User)
	case KindGroup:
		return fmt.Sprintf("FileGroup(%s, group = %s)", r.Path, r.Group)
	default:
		return "File(unknown)"
	}
}

// Resources expands validated params into the atomic leaves for each
// variant. "source"/"file"/"directory" expand into a presence leaf (id
// "file" or "directory") plus Mode/User/Group leaves that require it, per
// spec §4.3's worked example.
func Resources(value params.Value) tree.Tree[*Resource, causality.Meta[string]] {
	typ := value.Object["type"].Literal.(string)
	path := value.Object["path"].Path

	switch typ {
	case "source":
		return presenceWithAttrs("file", Resource{Kind: KindFileSource, Path: path, Source: value.Object["source"].Path}, value)
	case "file":
		return presenceWithAttrs("file", Resource{Kind: KindFilePresent, Path: path}, value)
	case "file-absent":
		return tree.Leaf[*Resource, causality.Meta[string]](causality.Meta[string]{}, &Resource{Kind: KindFileAbsent, Path: path})
	case "directory":
		return presenceWithAttrs("directory", Resource{Kind: KindDirectoryPresent, Path: path}, value)
	case "directory-absent":
		return tree.Leaf[*Resource, causality.Meta[string]](causality.Meta[string]{}, &Resource{Kind: KindDirectoryAbsent, Path: path})
	default:
		return tree.Branch[*Resource, causality.Meta[string]](causality.Meta[string]{}, nil)
	}
}

// presenceWithAttrs builds the presence leaf plus one Mode/User/Group leaf
// per attribute the plan item actually supplied; an unset mode, user, or
// group is left unmanaged rather than forced to a zero value, so a bare
// {type: "file", path: ...} item is a true no-op once the file exists.
func presenceWithAttrs(presenceID string, presence Resource, value params.Value) tree.Tree[*Resource, causality.Meta[string]] {
	path := presence.Path
	id := presenceID
	children := []tree.Tree[*Resource, causality.Meta[string]]{
		tree.Leaf[*Resource, causality.Meta[string]](causality.Meta[string]{ID: &id}, &presence),
	}

	if mode, ok := value.Object["mode"]; ok {
		children = append(children, tree.Leaf[*Resource, causality.Meta[string]](
			causality.Meta[string]{Requires: []string{presenceID}},
			&Resource{Kind: KindMode, Path: path, Mode: os.FileMode(uint32(mode.Num))},
		))
	}
	if user, ok := value.Object["user"]; ok {
		children = append(children, tree.Leaf[*Resource, causality.Meta[string]](
			causality.Meta[string]{Requires: []string{presenceID}},
			&Resource{Kind: KindUser, Path: path, User: user.Str},
		))
	}
	if group, ok := value.Object["group"]; ok {
		children = append(children, tree.Leaf[*Resource, causality.Meta[string]](
			causality.Meta[string]{Requires: []string{presenceID}},
			&Resource{Kind: KindGroup, Path: path, Group: group.Str},
		))
	}

	return tree.Branch(causality.Meta[string]{}, children)
}

// State names the observed fact for a Resource.
type State int

const (
	StateFileSourced State = iota
	StateFileNotSourced
	StateFilePresent
	StateFileAbsent
	StateDirectoryPresent
	StateDirectoryAbsent
	StateModeCorrect
	StateModeIncorrect
	StateUserCorrect
	StateUserIncorrect
	StateGroupCorrect
	StateGroupIncorrect
)

func (s State) String() string {
	switch s {
	case StateFileSourced:
		return "FileSourced"
	case StateFileNotSourced:
		return "FileNotSourced"
	case StateFilePresent:
		return "FilePresent"
	case StateFileAbsent:
		return "FileAbsent"
	case StateDirectoryPresent:
		return "DirectoryPresent"
	case StateDirectoryAbsent:
		return "DirectoryAbsent"
	case StateModeCorrect:
		return "ModeCorrect"
	case StateModeIncorrect:
		return "ModeIncorrect"
	case StateUserCorrect:
		return "UserCorrect"
	case StateUserIncorrect:
		return "UserIncorrect"
	case StateGroupCorrect:
		return "GroupCorrect"
	case StateGroupIncorrect:
		return "GroupIncorrect"
	default:
		return "Unknown"
	}
}

// modeMask keeps only the permission bits a "@core/file" resource cares
// about, per spec §4.3's "mode comparisons mask to the low 12 bits".
const modeMask = 0o7777

// GetState observes the current filesystem fact for resource.
func GetState(hostCtx *hostctx.Context, resource Resource) (State, error) {
	switch resource.Kind {
	case KindFileSource:
		src, err := os.ReadFile(resource.Source)
		if err != nil {
			return 0, fmt.Errorf("reading source %s: %w", resource.Source, err)
		}
		dst, err := os.ReadFile(resource.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return StateFileNotSourced, nil
			}
			return 0, fmt.Errorf("reading %s: %w", resource.Path, err)
		}
		if string(src) == string(dst) {
			return StateFileSourced, nil
		}
		return StateFileNotSourced, nil

	case KindFilePresent, KindFileAbsent:
		exists, err := hostCtx.FS.Exists(resource.Path)
		if err != nil {
			return 0, err
		}
		if exists {
			return StateFilePresent, nil
		}
		return StateFileAbsent, nil

	case KindDirectoryPresent, KindDirectoryAbsent:
		exists, err := hostCtx.FS.Exists(resource.Path)
		if err != nil {
			return 0, err
		}
		if exists {
			return StateDirectoryPresent, nil
		}
		return StateDirectoryAbsent, nil

	case KindMode:
		info, err := hostCtx.FS.Stat(resource.Path)
		if err != nil {
			return 0, err
		}
		actual := info.Mode().Perm()
		if info.Mode()&os.ModeSetuid != 0 {
			actual |= 0o4000
		}
		if info.Mode()&os.ModeSetgid != 0 {
			actual |= 0o2000
		}
		if info.Mode()&os.ModeSticky != 0 {
			actual |= 0o1000
		}
		if actual&modeMask == resource.Mode&modeMask {
			return StateModeCorrect, nil
		}
		return StateModeIncorrect, nil

	case KindUser:
		actual, err := hostCtx.FS.GetOwnerUser(resource.Path)
		if err != nil {
			return 0, err
		}
		if actual == resource.User {
			return StateUserCorrect, nil
		}
		return StateUserIncorrect, nil

	case KindGroup:
		actual, err := hostCtx.FS.GetOwnerGroup(resource.Path)
		if err != nil {
			return 0, err
		}
		if actual == resource.Group {
			return StateGroupCorrect, nil
		}
		return StateGroupIncorrect, nil

	default:
		return 0, fmt.Errorf("unknown file resource kind %d", resource.Kind)
	}
}

// Change is the single filesystem mutation resource needs, if any.
type Change struct {
	Kind   Kind
	Path   string
	Source string // KindFileSource: path to copy content from
	Mode   os.FileMode
	User   string
	Group  string
}

func (c Change) String() string {
	switch c.Kind {
	case KindFileSource:
		return fmt.Sprintf("File::Write(%s -> %s)", c.Source, c.Path)
	case KindFilePresent:
		return fmt.Sprintf("File::Write(%s)", c.Path)
	case KindFileAbsent:
		return fmt.Sprintf("File::Remove(%s)", c.Path)
	case KindDirectoryPresent:
		return fmt.Sprintf("File::CreateDirectory(%s)", c.Path)
	case KindDirectoryAbsent:
		return fmt.Sprintf("File::RemoveDirectory(%s)", c.Path)
	case KindMode:
		return fmt.Sprintf("File::ChangeMode(%s, mode = %o)", c.Path, c.Mode)
	case KindUser:
		return fmt.Sprintf("File::ChangeOwner(%s, user = %s)", c.Path, c.User)
	case KindGroup:
		return fmt.Sprintf("File::ChangeOwner(%s, group = %s)", c.Path, c.Group)
	default:
		return "File::Unknown"
	}
}

// GetChange returns a non-nil Change when state shows resource is not yet
// satisfied.
func GetChange(resource Resource, state State) *Change {
	switch resource.Kind {
	case KindFileSource:
		if state == StateFileSourced {
			return nil
		}
		return &Change{Kind: KindFileSource, Path: resource.Path, Source: resource.Source}
	case KindFilePresent:
		if state == StateFilePresent {
			return nil
		}
		return &Change{Kind: KindFilePresent, Path: resource.Path}
	case KindFileAbsent:
		if state == StateFileAbsent {
			return nil
		}
		return &Change{Kind: KindFileAbsent, Path: resource.Path}
	case KindDirectoryPresent:
		if state == StateDirectoryPresent {
			return nil
		}
		return &Change{Kind: KindDirectoryPresent, Path: resource.Path}
	case KindDirectoryAbsent:
		if state == StateDirectoryAbsent {
			return nil
		}
		return &Change{Kind: KindDirectoryAbsent, Path: resource.Path}
	case KindMode:
		if state == StateModeCorrect {
			return nil
		}
		return &Change{Kind: KindMode, Path: resource.Path, Mode: resource.Mode}
	case KindUser:
		if state == StateUserCorrect {
			return nil
		}
		return &Change{Kind: KindUser, Path: resource.Path, User: resource.User}
	case KindGroup:
		if state == StateGroupCorrect {
			return nil
		}
		return &Change{Kind: KindGroup, Path: resource.Path, Group: resource.Group}
	default:
		return nil
	}
}

// Operations lowers change to the matching low-level file operation.
func Operations(change Change) tree.Tree[*operation.Operation, causality.Meta[string]] {
	var op operation.Operation
	switch change.Kind {
	case KindFileSource:
		op = operation.Operation{Kind: operation.KindFile, File: &operation.FileOperation{
			Variant: operation.FileWrite, Path: change.Path, Source: operation.FileSource{Path: change.Source},
		}}
	case KindFilePresent:
		op = operation.Operation{Kind: operation.KindFile, File: &operation.FileOperation{
			Variant: operation.FileWrite, Path: change.Path, Source: operation.FileSource{Contents: []byte{}},
		}}
	case KindFileAbsent:
		op = operation.Operation{Kind: operation.KindFile, File: &operation.FileOperation{
			Variant: operation.FileRemove, Path: change.Path,
		}}
	case KindDirectoryPresent:
		op = operation.Operation{Kind: operation.KindFile, File: &operation.FileOperation{
			Variant: operation.FileCreateDirectory, Path: change.Path,
		}}
	case KindDirectoryAbsent:
		op = operation.Operation{Kind: operation.KindFile, File: &operation.FileOperation{
			Variant: operation.FileRemoveDirectory, Path: change.Path,
		}}
	case KindMode:
		op = operation.Operation{Kind: operation.KindFile, File: &operation.FileOperation{
			Variant: operation.FileChangeMode, Path: change.Path, Mode: change.Mode,
		}}
	case KindUser:
		user := change.User
		op = operation.Operation{Kind: operation.KindFile, File: &operation.FileOperation{
			Variant: operation.FileChangeOwner, Path: change.Path, User: &user,
		}}
	case KindGroup:
		group := change.Group
		op = operation.Operation{Kind: operation.KindFile, File: &operation.FileOperation{
			Variant: operation.FileChangeOwner, Path: change.Path, Group: &group,
		}}
	}
	return tree.Leaf[*operation.Operation, causality.Meta[string]](causality.Meta[string]{}, &op)
}
