// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CORE_SYSTEM
// Spec: spec/core/system.md

// Package system identifies the host a plan is being applied to: its
// architecture, package-manager family, and the user running the apply.
// The result is carried on the host context; the built-in resource kinds
// do not consult it, and target paths are used as written ("~" is not
// expanded).
package system

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"runtime"

	"lucidstage/pkg/executil"
)

// Arch is the host's CPU architecture, in the same vocabulary the plan
// language uses (not Go's GOARCH names).
type Arch int

const (
	X86_64 Arch = iota
	Aarch64
)

func (a Arch) String() string {
	switch a {
	case X86_64:
		return "x86-64"
	case Aarch64:
		return "aarch64"
	default:
		return "unknown"
	}
}

// ArchFromRuntime maps runtime.GOARCH to Arch.
func ArchFromRuntime() (Arch, error) {
	switch runtime.GOARCH {
	case "amd64":
		return X86_64, nil
	case "arm64":
		return Aarch64, nil
	default:
		return 0, fmt.Errorf("unsupported architecture: %s", runtime.GOARCH)
	}
}

// PackageManager names the family of package-management resource kinds a
// host supports.
type PackageManager int

const (
	Apt PackageManager = iota
	Pacman
)

func (p PackageManager) String() string {
	switch p {
	case Apt:
		return "apt"
	case Pacman:
		return "pacman"
	default:
		return "unknown"
	}
}

// User is the identity of the user the apply runs as.
type User struct {
	Name string
	Home string
}

// System describes the host a plan is being evaluated or applied against.
type System struct {
	Hostname       string
	Arch           Arch
	PackageManager PackageManager
	User           User
}

// Detect gathers System by inspecting the local machine: hostname via the
// kernel, architecture via the Go runtime, package manager by checking
// which of apt-get/pacman is on PATH, and user identity via os/user.
func Detect(ctx context.Context, runner executil.Runner) (System, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return System{}, fmt.Errorf("getting hostname: %w", err)
	}

	arch, err := ArchFromRuntime()
	if err != nil {
		return System{}, err
	}

	pm, err := detectPackageManager(ctx, runner)
	if err != nil {
		return System{}, err
	}

	u, err := detectUser()
	if err != nil {
		return System{}, err
	}

	return System{Hostname: hostname, Arch: arch, PackageManager: pm, User: u}, nil
}

func detectPackageManager(ctx context.Context, runner executil.Runner) (PackageManager, error) {
	if _, err := runner.Run(ctx, executil.NewCommand("which", "apt-get")); err == nil {
		return Apt, nil
	}
	if _, err := runner.Run(ctx, executil.NewCommand("which", "pacman")); err == nil {
		return Pacman, nil
	}
	return 0, fmt.Errorf("no supported package manager found on PATH")
}

func detectUser() (User, error) {
	current, err := user.Current()
	if err != nil {
		return User{}, fmt.Errorf("getting current user: %w", err)
	}
	if current.Username == "" {
		return User{}, fmt.Errorf("missing user")
	}
	if current.HomeDir == "" {
		return User{}, fmt.Errorf("missing home")
	}
	return User{Name: current.Username, Home: current.HomeDir}, nil
}
