// SPDX-License-Identifier: AGPL-3.0-or-later

package progress_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucidstage/pkg/causality"
	"lucidstage/pkg/progress"
	"lucidstage/pkg/tree"
	"lucidstage/pkg/view"
)

func TestRenderTreeLabelsBranchWithIDOrDot(t *testing.T) {
	id := "web"
	leaf := tree.Leaf[string, causality.Meta[string]](causality.Meta[string]{}, "apt install nginx")
	branch := tree.Branch[string, causality.Meta[string]](
		causality.Meta[string]{ID: &id},
		[]tree.Tree[string, causality.Meta[string]]{leaf},
	)
	unlabeled := tree.Branch[string, causality.Meta[string]](
		causality.Meta[string]{},
		[]tree.Tree[string, causality.Meta[string]]{leaf},
	)

	rendered := progress.RenderTree(branch, view.Line)
	assert.False(t, rendered.IsLeaf())
	assert.Equal(t, "web\n", rendered.View().String())
	assert.Equal(t, "apt install nginx\n", rendered.Children()[0].View().String())

	renderedDot := progress.RenderTree(unlabeled, view.Line)
	assert.Equal(t, ".\n", renderedDot.View().String())
}

func TestEventToUpdateResourceParams(t *testing.T) {
	vt := view.ViewLeaf(view.Line("x"))
	event := progress.Event{Type: progress.EventResourceParams, ResourceParams: &vt}

	update := event.ToUpdate()
	assert.Equal(t, view.UpdateResourceParams, update.Kind)
	assert.True(t, update.ResourceParams.IsLeaf())
}

func TestEventToUpdateOperationApplyStderrCarriesLine(t *testing.T) {
	event := progress.Event{
		Type:    progress.EventOperationApplyStderr,
		OpIndex: progress.OperationIndexWire{2, 1},
		Stderr:  "boom",
	}
	update := event.ToUpdate()
	assert.Equal(t, view.UpdateOperationApplyStderr, update.Kind)
	assert.Equal(t, view.OperationIndex{Epoch: 2, Op: 1}, update.OpIndex)
	assert.Equal(t, "boom", update.Line)
}

func TestJSONLinesEmitterWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	emitter := progress.NewJSONLinesEmitter(&buf)

	require.NoError(t, emitter.Emit(progress.Event{Type: progress.EventResourcesStart}))
	require.NoError(t, emitter.Emit(progress.Event{Type: progress.EventResourcesComplete}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var first progress.Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, progress.EventResourcesStart, first.Type)
}

func TestCollectingEmitterReplayIntoDrivesAppView(t *testing.T) {
	emitter := &progress.CollectingEmitter{}
	vt := view.ViewLeaf(view.Line("pkg"))

	require.NoError(t, emitter.Emit(progress.Event{Type: progress.EventResourceParams, ResourceParams: &vt}))
	require.NoError(t, emitter.Emit(progress.Event{Type: progress.EventResourcesStart}))

	state, err := emitter.ReplayInto(view.AppView{})
	require.NoError(t, err)
	assert.Equal(t, view.PhaseResources, state.Phase)
}
