// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: PLAN_EVALSTUB
// Spec: spec/plan/evalstub.md

// Package evalstub is a reference plan.Evaluator: a static evaluator for
// modules built directly as Go values (the shape most tests want), and a
// YAML-backed evaluator for the minimal on-disk plan format lucidstage
// ships in place of a full expression language. Neither is the plan
// language itself — a module's Setup in the YAML form is a fixed item
// list, not a template — but both are enough to drive and test the full
// six-stage pipeline end to end.
package evalstub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lucidstage/pkg/params"
	"lucidstage/pkg/plan"
)

// StaticEvaluator resolves module references by exact-string lookup
// against a fixed table, built once in Go by the caller.
type StaticEvaluator map[string]*plan.Module

// Load implements plan.Evaluator.
func (e StaticEvaluator) Load(_ context.Context, ref string) (*plan.Module, error) {
	module, ok := e[ref]
	if !ok {
		return nil, fmt.Errorf("evalstub: no module registered for %q", ref)
	}
	return module, nil
}

// LocalStore fetches module bytes from the local filesystem, relative to
// Root when ref is not already absolute.
type LocalStore struct {
	Root string
}

// Fetch implements plan.Store.
func (s LocalStore) Fetch(_ context.Context, ref string) ([]byte, error) {
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, path)
	}
	return os.ReadFile(path)
}

// FileEvaluator loads plan modules from the minimal YAML format below,
// via Store, caching each ref's parsed Module for the lifetime of a run.
//
//	name: example
//	version: "1.0"
//	params:
//	  keys: [package]
//	  fields:
//	    package: {type: string}
//	setup:
//	  - module: "@core/apt"
//	    id: git
//	    params: {package: git}
type FileEvaluator struct {
	Store plan.Store
	cache map[string]*plan.Module
}

// Load implements plan.Evaluator.
func (e *FileEvaluator) Load(ctx context.Context, ref string) (*plan.Module, error) {
	if e.cache == nil {
		e.cache = make(map[string]*plan.Module)
	}
	if m, ok := e.cache[ref]; ok {
		return m, nil
	}

	raw, err := e.Store.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("evalstub: fetching %s: %w", ref, err)
	}

	var doc yamlModule
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("evalstub: parsing %s: %w", ref, err)
	}

	module, err := doc.toModule(filepath.Dir(ref))
	if err != nil {
		return nil, fmt.Errorf("evalstub: %s: %w", ref, err)
	}

	e.cache[ref] = module
	return module, nil
}

type yamlModule struct {
	Name    string      `yaml:"name"`
	Version *string     `yaml:"version"`
	Params  *yamlSchema `yaml:"params"`
	Setup   []yamlItem  `yaml:"setup"`
}

type yamlSchema struct {
	Keys   []string             `yaml:"keys"`
	Fields map[string]yamlField `yaml:"fields"`
}

type yamlField struct {
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional"`
}

type yamlItem struct {
	Module     string         `yaml:"module"`
	ID         *string        `yaml:"id"`
	Params     map[string]any `yaml:"params"`
	Requires   []string       `yaml:"requires"`
	RequiredBy []string       `yaml:"required_by"`
}

func (d yamlModule) toModule(sourceDir string) (*plan.Module, error) {
	schema, err := d.Params.toSchema()
	if err != nil {
		return nil, err
	}
	items := d.Setup
	return &plan.Module{
		Name:      d.Name,
		Version:   d.Version,
		Params:    schema,
		SourceDir: sourceDir,
		Setup: func(params.Value) ([]plan.Item, error) {
			out := make([]plan.Item, len(items))
			for i, item := range items {
				out[i] = plan.Item{
					Module:     item.Module,
					ID:         item.ID,
					Params:     item.Params,
					Requires:   item.Requires,
					RequiredBy: item.RequiredBy,
				}
			}
			return out, nil
		},
	}, nil
}

func (s *yamlSchema) toSchema() (*params.Schema, error) {
	if s == nil {
		return nil, nil
	}
	fields := make(map[string]params.Field, len(s.Fields))
	for name, field := range s.Fields {
		t, err := field.toType()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields[name] = params.Field{Type: t, Optional: field.Optional}
	}
	return &params.Schema{Struct: &params.Struct{Keys: s.Keys, Fields: fields}}, nil
}

func (f yamlField) toType() (params.Type, error) {
	switch f.Type {
	case "boolean":
		return params.Type{Kind: params.Boolean}, nil
	case "string":
		return params.Type{Kind: params.String}, nil
	case "number":
		return params.Type{Kind: params.Number}, nil
	case "host_path":
		return params.Type{Kind: params.HostPath}, nil
	case "target_path":
		return params.Type{Kind: params.TargetPath}, nil
	case "list_string":
		item := params.Type{Kind: params.String}
		return params.Type{Kind: params.List, Item: &item}, nil
	default:
		return params.Type{}, fmt.Errorf("unsupported field type %q", f.Type)
	}
}
