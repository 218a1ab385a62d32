package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard-backend/internal/element"
	"whiteboard-backend/internal/scene"
)

func commentEl(id, owner string, deleted bool) element.Element {
	return element.Element{
		ID:        id,
		Type:      element.TypeComment,
		Version:   1,
		IsDeleted: deleted,
		Comment:   &element.Comment{Owner: element.Owner{Email: owner}, CommentID: "thread-" + id},
	}
}

func popOnce(entry *Entry) func() *Entry {
	return func() *Entry { return entry }
}

func byID(t *testing.T, elements []element.Element, id string) element.Element {
	t.Helper()
	el, ok := element.Find(elements, id)
	require.True(t, ok, "element %s missing", id)
	return el
}

func TestReconcileGestureDoesNotPop(t *testing.T) {
	markers := map[string]func(*scene.AppState){
		"multiElement":    func(s *scene.AppState) { s.MultiElement = element.StringPtr("a") },
		"resizingElement": func(s *scene.AppState) { s.ResizingElement = element.StringPtr("a") },
		"editingElement":  func(s *scene.AppState) { s.EditingElement = element.StringPtr("a") },
		"draggingElement": func(s *scene.AppState) { s.DraggingElement = element.StringPtr("a") },
	}

	for name, set := range markers {
		t.Run(name, func(t *testing.T) {
			state := scene.NewAppState()
			set(&state)

			pop := func() *Entry {
				t.Fatal("pop must not be called during a gesture")
				return nil
			}
			_, ok := Reconcile([]element.Element{el("a", 1)}, state, pop)
			assert.False(t, ok)
		})
	}
}

func TestReconcileGestureKeepsRedoAvailable(t *testing.T) {
	h := New(0)
	state := scene.NewAppState()
	h.Record([]element.Element{el("a", 1)}, state)
	h.Record([]element.Element{el("a", 2)}, state)

	state.DraggingElement = element.StringPtr("a")
	_, ok := Reconcile([]element.Element{el("a", 2)}, state, h.PopUndo)
	assert.False(t, ok)
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestReconcileEmptyStack(t *testing.T) {
	_, ok := Reconcile([]element.Element{el("a", 1)}, scene.NewAppState(), popOnce(nil))
	assert.False(t, ok)
}

func TestReconcileProtectsCommentsMissingFromEntry(t *testing.T) {
	live := []element.Element{el("1", 2), commentEl("9", "a@x", false)}
	entry := &Entry{Elements: []element.Element{el("1", 1)}}

	result, ok := Reconcile(live, scene.NewAppState(), popOnce(entry))
	require.True(t, ok)

	comment := byID(t, result.Elements, "9")
	assert.False(t, comment.IsDeleted)
	assert.Equal(t, live[1], comment)
	assert.False(t, result.CommitToHistory)
	assert.True(t, result.SyncHistory)
}

func TestReconcileNeverResurrectsComment(t *testing.T) {
	live := []element.Element{commentEl("9", "a@x", true)}
	live[0].Version = 3
	snapshot := commentEl("9", "a@x", false)
	snapshot.X = 40

	result, ok := Reconcile(live, scene.NewAppState(), popOnce(&Entry{Elements: []element.Element{snapshot}}))
	require.True(t, ok)

	comment := byID(t, result.Elements, "9")
	assert.True(t, comment.IsDeleted)
	assert.Equal(t, float64(40), comment.X)
	assert.Greater(t, comment.Version, 3)
}

func TestReconcileDoesNotDeleteLiveComment(t *testing.T) {
	live := []element.Element{commentEl("9", "a@x", false)}
	snapshot := commentEl("9", "a@x", true)

	result, ok := Reconcile(live, scene.NewAppState(), popOnce(&Entry{Elements: []element.Element{snapshot}}))
	require.True(t, ok)
	assert.False(t, byID(t, result.Elements, "9").IsDeleted)
}

func TestReconcileMarksUnknownElementsDeleted(t *testing.T) {
	live := []element.Element{el("1", 1), el("2", 1)}
	entry := &Entry{Elements: []element.Element{el("1", 1)}}

	result, ok := Reconcile(live, scene.NewAppState(), popOnce(entry))
	require.True(t, ok)
	require.Len(t, result.Elements, 2)

	assert.Equal(t, live[0], byID(t, result.Elements, "1"), "untouched element keeps identity")
	removed := byID(t, result.Elements, "2")
	assert.True(t, removed.IsDeleted)
	assert.Equal(t, 2, removed.Version)
}

func TestReconcileRestoresSnapshotElements(t *testing.T) {
	deleted := el("1", 2)
	deleted.IsDeleted = true
	snapshot := el("1", 1)
	snapshot.X = 10

	result, ok := Reconcile([]element.Element{deleted}, scene.NewAppState(), popOnce(&Entry{Elements: []element.Element{snapshot}}))
	require.True(t, ok)

	restored := byID(t, result.Elements, "1")
	assert.False(t, restored.IsDeleted)
	assert.Equal(t, float64(10), restored.X)
	assert.Equal(t, 3, restored.Version)
}

func TestReconcileClearsBindingsToDeleted(t *testing.T) {
	box := el("box", 1)
	text := el("text", 1)
	text.Type = element.TypeText
	text.ContainerID = element.StringPtr("box")
	arrow := element.Element{
		ID:           "arrow",
		Type:         element.TypeArrow,
		Version:      1,
		Points:       []element.Point{{X: 0, Y: 0}, {X: 10, Y: 10}},
		StartBinding: &element.Binding{ElementID: "box"},
	}

	// 스냅샷에는 box 가 없으므로 box 는 삭제된다
	live := []element.Element{box, text, arrow}
	entry := &Entry{Elements: []element.Element{text, arrow}}

	result, ok := Reconcile(live, scene.NewAppState(), popOnce(entry))
	require.True(t, ok)

	assert.True(t, byID(t, result.Elements, "box").IsDeleted)
	assert.Nil(t, byID(t, result.Elements, "arrow").StartBinding)
	assert.Nil(t, byID(t, result.Elements, "text").ContainerID)
	assert.Empty(t, element.FindDanglingReferences(result.Elements))
}

func TestReconcileMergesAppState(t *testing.T) {
	state := scene.NewAppState()
	state.Name = "live"
	state.ActiveTool = scene.ActiveTool{Type: scene.ToolArrow}
	state.SelectedElementIDs["b"] = true

	entry := &Entry{
		Elements: []element.Element{el("a", 1)},
		AppState: scene.Snapshot{
			Name:               "old",
			SelectedElementIDs: map[string]bool{"a": true},
			EditingGroupID:     element.StringPtr("g"),
		},
	}

	result, ok := Reconcile([]element.Element{el("a", 1)}, state, popOnce(entry))
	require.True(t, ok)
	assert.Equal(t, "old", result.AppState.Name)
	assert.Equal(t, map[string]bool{"a": true}, result.AppState.SelectedElementIDs)
	assert.Equal(t, "g", *result.AppState.EditingGroupID)
	assert.Equal(t, scene.ToolArrow, result.AppState.ActiveTool.Type)
	assert.True(t, state.IsSelected("b"), "input state untouched")
}

func TestCommentSurvivesUndoRedoCycle(t *testing.T) {
	h := New(0)
	state := scene.NewAppState()

	rect := el("r", 1)
	h.Record([]element.Element{rect}, state)

	comment := commentEl("c", "a@x", false)
	live := []element.Element{rect, comment}
	h.Record(live, state)

	// 코멘트 작성자가 코멘트를 삭제
	state.SelectedElementIDs["c"] = true
	deleted, ok := scene.DeleteSelection(live, state, scene.DeletePolicy{
		Actor: &scene.Identity{Email: "a@x"},
	})
	require.True(t, ok)
	require.True(t, deleted.CommitToHistory)
	require.True(t, byID(t, deleted.Elements, "c").IsDeleted)
	h.Record(deleted.Elements, deleted.AppState)

	live, state = deleted.Elements, deleted.AppState
	for i := 0; i < 2; i++ {
		result, ok := Reconcile(live, state, h.PopUndo)
		require.True(t, ok)
		h.SyncCurrent(result.Elements, result.AppState)
		live, state = result.Elements, result.AppState
		assert.True(t, byID(t, live, "c").IsDeleted, "undo %d", i+1)
	}

	for i := 0; i < 2; i++ {
		result, ok := Reconcile(live, state, h.PopRedo)
		require.True(t, ok)
		live, state = result.Elements, result.AppState
		assert.True(t, byID(t, live, "c").IsDeleted, "redo %d", i+1)
	}
	assert.Len(t, live, 2)
}

type countingFixer struct {
	calls   int
	deleted []string
}

func (f *countingFixer) FixBindingsAfterDeletion(elements, deleted []element.Element) []element.Element {
	f.calls++
	for _, el := range deleted {
		f.deleted = append(f.deleted, el.ID)
	}
	return elements
}

func TestReconcilerPassesDeletedElementsToFixer(t *testing.T) {
	fixer := &countingFixer{}
	r := &Reconciler{Bindings: fixer}

	live := []element.Element{el("1", 1), el("2", 1), commentEl("9", "a@x", false)}
	entry := &Entry{Elements: []element.Element{el("1", 1)}}

	_, ok := r.Reconcile(live, scene.NewAppState(), popOnce(entry))
	require.True(t, ok)
	assert.Equal(t, 1, fixer.calls)
	assert.Equal(t, []string{"2"}, fixer.deleted)
}
