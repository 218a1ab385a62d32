package history

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whiteboard-backend/internal/element"
	"whiteboard-backend/internal/scene"
)

// DefaultLimit 기본 히스토리 깊이
const DefaultLimit = 100

// Entry 특정 시점의 요소 배열과 상태 일부 스냅샷 (불변)
type Entry struct {
	Elements []element.Element `json:"elements"`
	AppState scene.Snapshot    `json:"appState"`
}

func newEntry(elements []element.Element, appState scene.AppState) Entry {
	copied := make([]element.Element, len(elements))
	for i, el := range elements {
		copied[i] = el.Clone()
	}
	return Entry{Elements: copied, AppState: appState.Snapshot()}
}

// clone 호출자가 받은 항목을 수정해도 스택이 바뀌지 않도록 복사
func (e Entry) clone() Entry {
	copied := make([]element.Element, len(e.Elements))
	for i, el := range e.Elements {
		copied[i] = el.Clone()
	}
	snap := e.AppState
	if e.AppState.SelectedElementIDs != nil {
		snap.SelectedElementIDs = make(map[string]bool, len(e.AppState.SelectedElementIDs))
		for id, v := range e.AppState.SelectedElementIDs {
			snap.SelectedElementIDs[id] = v
		}
	}
	if e.AppState.EditingGroupID != nil {
		id := *e.AppState.EditingGroupID
		snap.EditingGroupID = &id
	}
	return Entry{Elements: copied, AppState: snap}
}

// sameState 요소 버전과 상태 스냅샷이 모두 같으면 새 항목을 만들지 않는다
func sameState(a, b Entry) bool {
	if len(a.Elements) != len(b.Elements) {
		return false
	}
	for i := range a.Elements {
		x, y := a.Elements[i], b.Elements[i]
		if x.ID != y.ID || x.Version != y.Version || x.VersionNonce != y.VersionNonce {
			return false
		}
	}
	return cmp.Equal(a.AppState, b.AppState, cmpopts.EquateEmpty())
}

// History 되돌리기/다시하기 스택
// stateHistory 의 마지막 항목은 현재 상태이다.
type History struct {
	stateHistory []Entry
	redoStack    []Entry
	limit        int
}

// New limit 이 0 이하이면 깊이 제한 없음
func New(limit int) *History {
	return &History{limit: limit}
}

// Record 현재 상태를 기록하고 redo 스택을 비운다
// 직전 항목과 같으면 기록하지 않고 false 를 반환한다.
func (h *History) Record(elements []element.Element, appState scene.AppState) bool {
	entry := newEntry(elements, appState)
	if n := len(h.stateHistory); n > 0 && sameState(h.stateHistory[n-1], entry) {
		return false
	}

	h.stateHistory = append(h.stateHistory, entry)
	h.redoStack = nil
	h.trim()
	return true
}

func (h *History) trim() {
	if h.limit <= 0 || len(h.stateHistory) <= h.limit {
		return
	}
	drop := len(h.stateHistory) - h.limit
	h.stateHistory = append([]Entry(nil), h.stateHistory[drop:]...)
}

// PopUndo 현재 항목을 redo 스택으로 옮기고 복원할 이전 항목 반환
func (h *History) PopUndo() *Entry {
	if len(h.stateHistory) <= 1 {
		return nil
	}

	n := len(h.stateHistory)
	current := h.stateHistory[n-1]
	h.stateHistory = h.stateHistory[:n-1]
	h.redoStack = append(h.redoStack, current)

	restore := h.stateHistory[len(h.stateHistory)-1].clone()
	return &restore
}

// PopRedo redo 스택의 항목을 현재 항목으로 올리고 반환
func (h *History) PopRedo() *Entry {
	if len(h.redoStack) == 0 {
		return nil
	}

	n := len(h.redoStack)
	entry := h.redoStack[n-1]
	h.redoStack = h.redoStack[:n-1]
	h.stateHistory = append(h.stateHistory, entry)

	restore := entry.clone()
	return &restore
}

// SyncCurrent 현재 항목을 주어진 상태로 교체 (redo 스택 유지)
func (h *History) SyncCurrent(elements []element.Element, appState scene.AppState) {
	entry := newEntry(elements, appState)
	if len(h.stateHistory) == 0 {
		h.stateHistory = append(h.stateHistory, entry)
		return
	}
	h.stateHistory[len(h.stateHistory)-1] = entry
}

// CanUndo 되돌릴 항목 존재 여부
func (h *History) CanUndo() bool {
	return len(h.stateHistory) > 1
}

// CanRedo 다시 할 항목 존재 여부
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// Clear 모든 항목 삭제
func (h *History) Clear() {
	h.stateHistory = nil
	h.redoStack = nil
}

// Stacks 영속화를 위한 스택 사본
func (h *History) Stacks() (undo, redo []Entry) {
	undo = make([]Entry, len(h.stateHistory))
	for i, e := range h.stateHistory {
		undo[i] = e.clone()
	}
	redo = make([]Entry, len(h.redoStack))
	for i, e := range h.redoStack {
		redo[i] = e.clone()
	}
	return undo, redo
}

// Restore 영속화된 스택으로 교체
func (h *History) Restore(undo, redo []Entry) {
	h.stateHistory = append([]Entry(nil), undo...)
	h.redoStack = append([]Entry(nil), redo...)
	h.trim()
}
