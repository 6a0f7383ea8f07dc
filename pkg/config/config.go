// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package config defines how lucidstage reaches the host it manages and
// helpers for loading that configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Feature: CORE_CONFIG
// Spec: spec/core/config.md

// ErrConfigNotFound is returned when the config file does not exist at the
// given path.
var ErrConfigNotFound = errors.New("lucidstage config not found")

// HostConfig describes the single host a plan module is applied against.
type HostConfig struct {
	// Host selects how the target is reached: local execution, or a named
	// SSH connection. Empty means Local.
	Host *SSHConfig `yaml:"ssh,omitempty"`

	// Become names a privilege-elevation command (e.g. "sudo -n"). It is
	// parsed but not applied: operations that need elevation always run
	// under executil.Privileged's fixed "sudo -n" prefix.
	Become string `yaml:"become,omitempty"`

	// PassthroughEnv lists environment variable names to forward into
	// commands run against the host. It is parsed but not applied; nothing
	// that runs a command reads it.
	PassthroughEnv []string `yaml:"passthrough_env,omitempty"`

	// CacheDir is where downloaded sources are staged before being placed
	// on the target host. Defaults to a subdirectory of the user's cache
	// directory when empty.
	CacheDir string `yaml:"cache_dir,omitempty"`
}

// SSHConfig names a remote host reached over SSH. A nil *SSHConfig on
// HostConfig.Host means the target is the local machine.
type SSHConfig struct {
	Address string `yaml:"address"`
	User    string `yaml:"user,omitempty"`
	Port    int    `yaml:"port,omitempty"`
	// IdentityFile is a path to a private key; empty uses the calling
	// user's default SSH agent/identity.
	IdentityFile string `yaml:"identity_file,omitempty"`
}

// IsLocal reports whether c targets the local machine.
func (c *HostConfig) IsLocal() bool {
	return c == nil || c.Host == nil
}

// DefaultConfigPath returns the default config path for the current
// working directory.
func DefaultConfigPath() string {
	return "lucidstage.yml"
}

// Exists reports whether a config file exists at the given path. It
// returns (false, nil) if the file does not exist.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// LoadHostConfig reads and validates the host config at path. It returns
// ErrConfigNotFound if the file does not exist.
func LoadHostConfig(path string) (*HostConfig, error) {
	exists, err := Exists(path)
	if err != nil {
		return nil, fmt.Errorf("checking config existence: %w", err)
	}
	if !exists {
		return nil, ErrConfigNotFound
	}

	// nolint:gosec // G304: reading config file from user-specified path is expected behavior
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg HostConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *HostConfig) error {
	if cfg.Host != nil && cfg.Host.Address == "" {
		return errors.New("config: ssh.address must be non-empty when ssh is configured")
	}
	return nil
}
