// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CORE_PARAMS
// Spec: spec/core/params.md

// Package params types and validates the raw, already-evaluated argument
// values a plan module hands to a resource kind. Evaluating the plan
// language itself (the rimu-equivalent expression language) is out of
// scope; this package starts from a plain Go value tree (as produced by
// decoding JSON or YAML) and checks it against a declared schema.
package params

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Kind identifies the shape a Field's value must take.
type Kind int

const (
	// Literal requires the value to equal a fixed constant.
	Literal Kind = iota
	Boolean
	String
	Number
	// List requires a slice whose every element matches Item.
	List
	// Object requires a map whose every value matches Item.
	Object
	// HostPath is a string resolved relative to the directory containing
	// the plan module that declared it.
	HostPath
	// TargetPath is an opaque string naming a path on the managed host;
	// it is not resolved locally.
	TargetPath
)

// Type describes one parameter's shape.
type Type struct {
	Kind    Kind
	Literal any   // only meaningful when Kind == Literal
	Item    *Type // only meaningful when Kind == List or Kind == Object
}

// Field is one named entry of a Struct schema.
type Field struct {
	Type     Type
	Optional bool
}

// Struct is an ordered set of named fields. Key order is preserved from
// Keys for deterministic error messages and serialization.
type Struct struct {
	Keys   []string
	Fields map[string]Field
}

// Schema is either a single Struct or a Union of alternative Structs; a
// value is valid against a Union if it validates against at least one case.
type Schema struct {
	Struct *Struct
	Union  []Struct
}

// Value mirrors Type: the typed result of validating a raw Go value against
// a Type. HostPath values are the given relative path joined onto the
// sourceDir passed to Validate, so they are absolute only when it is.
type Value struct {
	Kind    Kind
	Literal any
	Bool    bool
	Str     string
	Num     float64
	List    []Value
	Object  map[string]Value
	Path    string // HostPath (resolved) or TargetPath (opaque)
}

// Error reports a single validation failure at a field path such as
// "packages[2]" or "source".
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks raw against schema. sourceDir is the directory containing
// the plan module the value came from, used to resolve HostPath fields.
func Validate(schema Schema, raw any, sourceDir string) (Value, error) {
	if schema.Struct != nil {
		return validateStruct(*schema.Struct, raw, sourceDir, "")
	}

	var errs *multierror.Error
	for i, candidate := range schema.Union {
		value, err := validateStruct(candidate, raw, sourceDir, "")
		if err == nil {
			return value, nil
		}
		errs = multierror.Append(errs, fmt.Errorf("case %d: %w", i, err))
	}
	return Value{}, fmt.Errorf("value did not match any union case: %w", errs.ErrorOrNil())
}

func validateStruct(s Struct, raw any, sourceDir, path string) (Value, error) {
	object, ok := raw.(map[string]any)
	if !ok {
		return Value{}, &Error{Path: path, Message: "expected an object"}
	}

	result := make(map[string]Value, len(s.Fields))
	var errs *multierror.Error

	for _, key := range s.Keys {
		field := s.Fields[key]
		fieldPath := joinPath(path, key)
		rawValue, present := object[key]
		if !present {
			if field.Optional {
				continue
			}
			errs = multierror.Append(errs, &Error{Path: fieldPath, Message: "required field is missing"})
			continue
		}
		value, err := validateType(field.Type, rawValue, sourceDir, fieldPath)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		result[key] = value
	}

	extra := extraKeys(s, object)
	for _, key := range extra {
		errs = multierror.Append(errs, &Error{Path: joinPath(path, key), Message: "unexpected field"})
	}

	if err := errs.ErrorOrNil(); err != nil {
		return Value{}, err
	}
	return Value{Kind: Object, Object: result}, nil
}

func extraKeys(s Struct, object map[string]any) []string {
	var extra []string
	for key := range object {
		if _, ok := s.Fields[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return extra
}

func validateType(t Type, raw any, sourceDir, path string) (Value, error) {
	switch t.Kind {
	case Literal:
		if raw != t.Literal {
			return Value{}, &Error{Path: path, Message: fmt.Sprintf("expected literal value %v, got %v", t.Literal, raw)}
		}
		return Value{Kind: Literal, Literal: raw}, nil

	case Boolean:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, &Error{Path: path, Message: "expected a boolean"}
		}
		return Value{Kind: Boolean, Bool: b}, nil

	case String:
		str, ok := raw.(string)
		if !ok {
			return Value{}, &Error{Path: path, Message: "expected a string"}
		}
		return Value{Kind: String, Str: str}, nil

	case Number:
		num, ok := asFloat(raw)
		if !ok {
			return Value{}, &Error{Path: path, Message: "expected a number"}
		}
		return Value{Kind: Number, Num: num}, nil

	case List:
		items, ok := raw.([]any)
		if !ok {
			return Value{}, &Error{Path: path, Message: "expected a list"}
		}
		var errs *multierror.Error
		values := make([]Value, 0, len(items))
		for i, item := range items {
			value, err := validateType(*t.Item, item, sourceDir, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			values = append(values, value)
		}
		if err := errs.ErrorOrNil(); err != nil {
			return Value{}, err
		}
		return Value{Kind: List, List: values}, nil

	case Object:
		object, ok := raw.(map[string]any)
		if !ok {
			return Value{}, &Error{Path: path, Message: "expected an object"}
		}
		keys := make([]string, 0, len(object))
		for key := range object {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var errs *multierror.Error
		values := make(map[string]Value, len(object))
		for _, key := range keys {
			value, err := validateType(*t.Item, object[key], sourceDir, joinPath(path, key))
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			values[key] = value
		}
		if err := errs.ErrorOrNil(); err != nil {
			return Value{}, err
		}
		return Value{Kind: Object, Object: values}, nil

	case HostPath:
		str, ok := raw.(string)
		if !ok {
			return Value{}, &Error{Path: path, Message: "expected a string"}
		}
		if filepath.IsAbs(str) {
			return Value{}, &Error{Path: path, Message: "host path must be relative"}
		}
		if sourceDir == "" {
			return Value{}, &Error{Path: path, Message: "host path requires a known source directory"}
		}
		return Value{Kind: HostPath, Path: filepath.Join(sourceDir, str)}, nil

	case TargetPath:
		str, ok := raw.(string)
		if !ok {
			return Value{}, &Error{Path: path, Message: "expected a string"}
		}
		if !filepath.IsAbs(str) {
			return Value{}, &Error{Path: path, Message: "target path must be absolute"}
		}
		return Value{Kind: TargetPath, Path: str}, nil

	default:
		return Value{}, &Error{Path: path, Message: "unknown param type"}
	}
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}
