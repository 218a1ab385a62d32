package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard-backend/internal/element"
	"whiteboard-backend/internal/scene"
)

func el(id string, version int) element.Element {
	return element.Element{ID: id, Type: element.TypeRectangle, Version: version, VersionNonce: version}
}

func TestRecordSkipsIdenticalState(t *testing.T) {
	h := New(0)
	state := scene.NewAppState()

	assert.True(t, h.Record([]element.Element{el("a", 1)}, state))
	assert.False(t, h.Record([]element.Element{el("a", 1)}, state))
	assert.True(t, h.Record([]element.Element{el("a", 2)}, state))

	state.SelectedElementIDs["a"] = true
	assert.True(t, h.Record([]element.Element{el("a", 2)}, state))
	assert.True(t, h.CanUndo())
}

func TestUndoRedoStacks(t *testing.T) {
	h := New(0)
	state := scene.NewAppState()
	h.Record([]element.Element{el("a", 1)}, state)
	h.Record([]element.Element{el("a", 1), el("b", 1)}, state)

	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	entry := h.PopUndo()
	require.NotNil(t, entry)
	assert.Len(t, entry.Elements, 1)
	assert.True(t, h.CanRedo())
	assert.False(t, h.CanUndo())
	assert.Nil(t, h.PopUndo(), "only the initial state remains")

	entry = h.PopRedo()
	require.NotNil(t, entry)
	assert.Len(t, entry.Elements, 2)
	assert.Nil(t, h.PopRedo())
}

func TestRecordClearsRedo(t *testing.T) {
	h := New(0)
	state := scene.NewAppState()
	h.Record([]element.Element{el("a", 1)}, state)
	h.Record([]element.Element{el("a", 2)}, state)
	h.PopUndo()
	require.True(t, h.CanRedo())

	h.Record([]element.Element{el("a", 3)}, state)
	assert.False(t, h.CanRedo())
}

func TestRecordTrimsToLimit(t *testing.T) {
	h := New(3)
	state := scene.NewAppState()
	for v := 1; v <= 5; v++ {
		h.Record([]element.Element{el("a", v)}, state)
	}

	undo, redo := h.Stacks()
	require.Len(t, undo, 3)
	assert.Empty(t, redo)
	assert.Equal(t, 3, undo[0].Elements[0].Version)
	assert.Equal(t, 5, undo[2].Elements[0].Version)
}

func TestPoppedEntryIsIsolated(t *testing.T) {
	h := New(0)
	state := scene.NewAppState()
	h.Record([]element.Element{el("a", 1)}, state)
	h.Record([]element.Element{el("a", 2)}, state)

	entry := h.PopUndo()
	entry.Elements[0].X = 100

	redoEntry := h.PopRedo()
	require.NotNil(t, redoEntry)
	undoEntry := h.PopUndo()
	assert.Equal(t, float64(0), undoEntry.Elements[0].X)
}

func TestSyncCurrentReplacesTop(t *testing.T) {
	h := New(0)
	state := scene.NewAppState()
	h.Record([]element.Element{el("a", 1)}, state)
	h.Record([]element.Element{el("a", 2)}, state)

	h.SyncCurrent([]element.Element{el("a", 7)}, state)
	undo, _ := h.Stacks()
	require.Len(t, undo, 2)
	assert.Equal(t, 7, undo[1].Elements[0].Version)

	empty := New(0)
	empty.SyncCurrent([]element.Element{el("a", 1)}, state)
	undo, _ = empty.Stacks()
	assert.Len(t, undo, 1)
}

func TestRestore(t *testing.T) {
	h := New(0)
	state := scene.NewAppState()
	h.Record([]element.Element{el("a", 1)}, state)
	h.Record([]element.Element{el("a", 2)}, state)
	h.PopUndo()
	undo, redo := h.Stacks()

	restored := New(0)
	restored.Restore(undo, redo)
	assert.False(t, restored.CanUndo())
	assert.True(t, restored.CanRedo())

	restored.Clear()
	assert.False(t, restored.CanRedo())
}
