// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: PROGRESS_EMITTER
// Spec: spec/progress/emitter.md

package progress

import (
	"encoding/json"
	"io"
	"sync"

	"lucidstage/pkg/view"
)

// Emitter accepts one Event at a time, in the order the apply pipeline
// produces them.
type Emitter interface {
	Emit(Event) error
}

// JSONLinesEmitter writes each Event as its own JSON object followed by a
// newline, flushing after every line so a consumer tailing the stream sees
// progress as it happens rather than once a buffer fills.
type JSONLinesEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
	w   io.Writer
}

// NewJSONLinesEmitter wraps w, which must flush on every Write for the
// "as it happens" guarantee to hold (an *os.File already does).
func NewJSONLinesEmitter(w io.Writer) *JSONLinesEmitter {
	return &JSONLinesEmitter{enc: json.NewEncoder(w), w: w}
}

// Emit writes event as one line of JSON.
func (e *JSONLinesEmitter) Emit(event Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(event); err != nil {
		return err
	}
	if f, ok := e.w.(interface{ Sync() error }); ok {
		return f.Sync()
	}
	return nil
}

// CollectingEmitter accumulates every Event it receives, in order; useful
// for tests and for driving a local view.AppView without going through the
// wire format.
type CollectingEmitter struct {
	mu     sync.Mutex
	Events []Event
}

// Emit records event.
func (e *CollectingEmitter) Emit(event Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, event)
	return nil
}

// ReplayInto folds every collected event into state in order via
// view.Update, returning the final AppView or the first error.
func (e *CollectingEmitter) ReplayInto(state view.AppView) (view.AppView, error) {
	e.mu.Lock()
	events := append([]Event(nil), e.Events...)
	e.mu.Unlock()

	for _, event := range events {
		next, err := view.Update(state, event.ToUpdate())
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}
