// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CLI_HOST_CONTEXT
// Spec: spec/core/ctx.md

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	hostctx "lucidstage/pkg/ctx"
	"lucidstage/pkg/config"
	"lucidstage/pkg/executil"
	"lucidstage/pkg/fs"
	"lucidstage/pkg/logging"
	"lucidstage/pkg/system"
)

// buildHostContext loads the host config at configPath (tolerating it being
// absent — local, unprivileged, no env passthrough is a valid default) and
// assembles the pkg/ctx.Context every resource kind needs to reach the host.
func buildHostContext(ctx context.Context, configPath string, verbose bool) (*hostctx.Context, *config.HostConfig, error) {
	hostCfg, err := config.LoadHostConfig(configPath)
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil, fmt.Errorf("loading host config: %w", err)
		}
		hostCfg = &config.HostConfig{}
	}

	if !hostCfg.IsLocal() {
		return nil, nil, fmt.Errorf("host %s: remote apply goes through the SSH transport collaborator, not wired into this reference CLI", hostCfg.Host.Address)
	}

	// Privilege elevation is applied per-operation (apt/pacman always shell
	// out through executil.Privileged); hostCfg.Become/PassthroughEnv are
	// not consulted here.
	runner := executil.NewRunner()

	sys, err := system.Detect(ctx, runner)
	if err != nil {
		return nil, nil, fmt.Errorf("detecting host system: %w", err)
	}

	logger := logging.NewLogger(verbose)

	cacheDir := hostCfg.CacheDir
	if cacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		cacheDir = filepath.Join(dir, "lucidstage")
	}

	return hostctx.New(cacheDir, runner, fs.Local{}, sys, logger), hostCfg, nil
}
