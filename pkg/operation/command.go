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

	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/executil"
)

// CommandOperation runs an arbitrary shell command line, unprivileged.
type CommandOperation struct {
	Command string
}

func (op CommandOperation) String() string {
	return fmt.Sprintf("Command(%s)", op.Command)
}

// MergeCommand is the identity merge: arbitrary shell commands have no
// general coalescing rule.
func MergeCommand(operations []CommandOperation) []CommandOperation {
	return operations
}

// ApplyCommand runs op.Command through the host shell, so the same
// quoting/globbing/pipe syntax a plan author writes in a command param
// works unchanged.
func ApplyCommand(ctx context.Context, hostCtx *hostctx.Context, op CommandOperation, lines chan<- executil.Line) error {
	cmd := executil.NewCommand("sh", "-c", op.Command)
	return executil.RunSplit(ctx, cmd, lines)
}
