package action

import (
	"errors"
	"fmt"
	"strings"

	"whiteboard-backend/internal/element"
	"whiteboard-backend/internal/history"
	"whiteboard-backend/internal/scene"
)

// Action 이름
const (
	NameDeleteSelected = "deleteSelectedElements"
	NameUndo           = "undo"
	NameRedo           = "redo"
)

// Category 액션 분류 (이벤트 추적용)
type Category string

const (
	CategoryElement Category = "element"
	CategoryHistory Category = "history"
)

// KeyEvent 단축키 판정에 필요한 키 입력 정보
type KeyEvent struct {
	Key      string `json:"key"`
	Ctrl     bool   `json:"ctrlKey"`
	Meta     bool   `json:"metaKey"`
	Shift    bool   `json:"shiftKey"`
	Platform string `json:"platform,omitempty"`
}

// PlatformWindows Ctrl+Y 다시하기가 허용되는 플랫폼
const PlatformWindows = "windows"

// CtrlOrCmd 맥에서는 Cmd, 그 외에는 Ctrl
func (e KeyEvent) CtrlOrCmd() bool {
	if e.Platform == "mac" || e.Platform == "darwin" {
		return e.Meta
	}
	return e.Ctrl
}

// Context 호스트가 액션마다 전달하는 값
type Context struct {
	Actor             *scene.Identity
	CanDeleteComments bool
	ForceDeleteIDs    []string
	History           *history.History
}

// Policy 삭제 정책으로 변환
// 강제 삭제 목록은 코멘트 삭제 권한이 있을 때만 전달된다.
func (c Context) Policy() scene.DeletePolicy {
	policy := scene.DeletePolicy{Actor: c.Actor}
	if c.CanDeleteComments {
		policy.ForceDeleteIDs = c.ForceDeleteIDs
	}
	return policy
}

// PerformFunc 액션 실행 함수
// false 는 상태를 바꾸지 말라는 뜻이다.
type PerformFunc func(elements []element.Element, appState scene.AppState, ctx Context) (scene.Result, bool)

// Action 이름으로 호출되는 편집 동작
type Action struct {
	Name             string
	Category         Category
	Perform          PerformFunc
	KeyTest          func(KeyEvent) bool
	ContextItemLabel string
}

// Registry 이름 → 액션
type Registry struct {
	actions []*Action
	byName  map[string]*Action
}

// NewRegistry 빈 레지스트리
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Action)}
}

// DefaultRegistry 삭제/되돌리기/다시하기가 등록된 레지스트리
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(DeleteSelected())
	r.Register(Undo())
	r.Register(Redo())
	return r
}

// Register 액션 등록 (같은 이름이면 교체)
func (r *Registry) Register(a *Action) {
	if _, exists := r.byName[a.Name]; exists {
		for i, existing := range r.actions {
			if existing.Name == a.Name {
				r.actions[i] = a
			}
		}
	} else {
		r.actions = append(r.actions, a)
	}
	r.byName[a.Name] = a
}

// Get 이름으로 조회
func (r *Registry) Get(name string) (*Action, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Match 키 입력에 맞는 첫 번째 액션
func (r *Registry) Match(event KeyEvent) (*Action, bool) {
	for _, a := range r.actions {
		if a.KeyTest != nil && a.KeyTest(event) {
			return a, true
		}
	}
	return nil, false
}

// Names 등록 순서대로 이름 목록
func (r *Registry) Names() []string {
	names := make([]string, len(r.actions))
	for i, a := range r.actions {
		names[i] = a.Name
	}
	return names
}

// DeleteSelected 선택 요소 삭제 액션
func DeleteSelected() *Action {
	return &Action{
		Name:     NameDeleteSelected,
		Category: CategoryElement,
		Perform: func(elements []element.Element, appState scene.AppState, ctx Context) (scene.Result, bool) {
			return scene.DeleteSelection(elements, appState, ctx.Policy())
		},
		KeyTest: func(e KeyEvent) bool {
			return e.Key == "Backspace" || e.Key == "Delete"
		},
		ContextItemLabel: "labels.delete",
	}
}

// Undo 되돌리기 액션
func Undo() *Action {
	return &Action{
		Name:     NameUndo,
		Category: CategoryHistory,
		Perform: func(elements []element.Element, appState scene.AppState, ctx Context) (scene.Result, bool) {
			if ctx.History == nil {
				return scene.Result{}, false
			}
			return history.Reconcile(elements, appState, ctx.History.PopUndo)
		},
		KeyTest: func(e KeyEvent) bool {
			return e.CtrlOrCmd() && strings.ToLower(e.Key) == "z" && !e.Shift
		},
	}
}

// Redo 다시하기 액션
func Redo() *Action {
	return &Action{
		Name:     NameRedo,
		Category: CategoryHistory,
		Perform: func(elements []element.Element, appState scene.AppState, ctx Context) (scene.Result, bool) {
			if ctx.History == nil {
				return scene.Result{}, false
			}
			return history.Reconcile(elements, appState, ctx.History.PopRedo)
		},
		KeyTest: func(e KeyEvent) bool {
			if e.CtrlOrCmd() && e.Shift && strings.ToLower(e.Key) == "z" {
				return true
			}
			return e.Platform == PlatformWindows && e.Ctrl && !e.Shift && e.Key == "y"
		},
	}
}

// ErrUnknownAction 등록되지 않은 액션 이름
var ErrUnknownAction = errors.New("unknown action")

// Lookup 이름 또는 키 입력으로 액션 조회
func (r *Registry) Lookup(name string, key *KeyEvent) (*Action, error) {
	if name != "" {
		if a, ok := r.Get(name); ok {
			return a, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	if key != nil {
		if a, ok := r.Match(*key); ok {
			return a, nil
		}
		return nil, fmt.Errorf("%w: key %q", ErrUnknownAction, key.Key)
	}
	return nil, ErrUnknownAction
}
