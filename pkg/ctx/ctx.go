// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CORE_CTX
// Spec: spec/core/ctx.md

// Package ctx bundles the collaborators every resource kind's state/change/
// operations methods need to reach the host: a command runner, a
// filesystem, and the detected system identity. It is threaded through the
// pipeline instead of being reconstructed at each stage.
package ctx

import (
	"lucidstage/pkg/executil"
	"lucidstage/pkg/fs"
	"lucidstage/pkg/logging"
	"lucidstage/pkg/system"
)

// Context is the host-interaction bundle passed to every ResourceType and
// OperationType method.
type Context struct {
	// CacheDir is where downloaded sources and other transient artifacts
	// are staged before being placed on the target host.
	CacheDir string

	Runner executil.Runner
	FS     fs.FS
	System system.System
	Logger logging.Logger
}

// New constructs a Context from its collaborators.
func New(cacheDir string, runner executil.Runner, filesystem fs.FS, sys system.System, logger logging.Logger) *Context {
	return &Context{
		CacheDir: cacheDir,
		Runner:   runner,
		FS:       filesystem,
		System:   sys,
		Logger:   logger,
	}
}
