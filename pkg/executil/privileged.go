// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CORE_EXECUTIL
// Spec: spec/core/executil.md

package executil

import (
	"fmt"
	"sort"
)

// Privileged rewraps cmd to run under "sudo -n" (non-interactive: fail
// rather than prompt for a password). Environment variables are forwarded
// as explicit "KEY=VALUE" arguments to sudo itself, ahead of the wrapped
// program, since sudo does not inherit the caller's env by default.
func Privileged(cmd Command) Command {
	keys := make([]string, 0, len(cmd.Env))
	for key := range cmd.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := make([]string, 0, len(keys)+1+len(cmd.Args))
	args = append(args, "-n")
	for _, key := range keys {
		args = append(args, fmt.Sprintf("%s=%s", key, cmd.Env[key]))
	}
	args = append(args, cmd.Name)
	args = append(args, cmd.Args...)

	return Command{
		Name:  "sudo",
		Args:  args,
		Dir:   cmd.Dir,
		Stdin: cmd.Stdin,
	}
}
