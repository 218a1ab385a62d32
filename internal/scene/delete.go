package scene

import (
	"whiteboard-backend/internal/element"
)

// DeletePolicy 삭제 권한 입력
//
// 코멘트 삭제 판정 우선순위:
//  1. ForceDeleteIDs 에 포함된 요소는 무조건 삭제
//  2. Actor 가 없으면 (단일 사용자 모드) 삭제
//  3. Actor 가 작성자와 같으면 삭제, 다르면 유지
//
// 호스트의 코멘트 삭제 권한은 ForceDeleteIDs 를 넘길 수 있는지로만 표현된다.
type DeletePolicy struct {
	Actor          *Identity
	ForceDeleteIDs []string
}

// DefaultPolicy 단일 사용자 모드 기본 정책
func DefaultPolicy() DeletePolicy {
	return DeletePolicy{}
}

func (p DeletePolicy) forceSet() map[string]bool {
	set := make(map[string]bool, len(p.ForceDeleteIDs))
	for _, id := range p.ForceDeleteIDs {
		set[id] = true
	}
	return set
}

// mayDelete 선택된 요소를 지울 수 있는지 판정
// 작성자가 다른 코멘트는 오류가 아니라 조용히 건너뛴다.
func (p DeletePolicy) mayDelete(el element.Element) bool {
	if el.Kind() != element.KindComment || p.Actor == nil {
		return true
	}
	return el.Comment.Owner.Email == p.Actor.Email
}

// Engine 삭제 엔진 및 그룹 편집 해석기
type Engine struct {
	Bindings BindingFixer
	Points   PointEditor
	Groups   GroupQuery
}

// NewEngine element 패키지 협력자로 엔진 생성
func NewEngine() *Engine {
	c := Collaborators{}
	return &Engine{Bindings: c, Points: c, Groups: c}
}

var defaultEngine = NewEngine()

// DeleteSelection 기본 엔진으로 선택 삭제
func DeleteSelection(elements []element.Element, appState AppState, policy DeletePolicy) (Result, bool) {
	return defaultEngine.DeleteSelection(elements, appState, policy)
}

// ResolveGroupEditing 기본 엔진으로 그룹 편집 해석
func ResolveGroupEditing(appState AppState, elements []element.Element) AppState {
	return defaultEngine.ResolveGroupEditing(appState, elements)
}

// DeleteSelection 선택 요소 삭제
// 선형 요소 포인트 편집 중이면 포인트 삭제로 분기한다.
// false 를 반환하면 대상 요소가 사라진 것이므로 호출자는 상태를 바꾸지 않는다.
func (e *Engine) DeleteSelection(elements []element.Element, appState AppState, policy DeletePolicy) (Result, bool) {
	if appState.EditingLinearElement != nil {
		return e.deleteLinearPoints(elements, appState)
	}
	return e.deleteSelectedElements(elements, appState, policy), true
}

func (e *Engine) deleteLinearPoints(elements []element.Element, appState AppState) (Result, bool) {
	editor := appState.EditingLinearElement

	target, ok := element.Find(elements, editor.ElementID)
	if !ok {
		return Result{}, false
	}

	var indices []int
	for _, idx := range element.NormalizeIndices(editor.SelectedPointsIndices) {
		if idx >= 0 && idx < len(target.Points) {
			indices = append(indices, idx)
		}
	}

	// 선택된 포인트가 없거나 남는 포인트가 2개 미만이면 요소 자체를 제거
	if len(indices) == 0 || len(target.Points)-len(indices) < 2 {
		nextElements := make([]element.Element, 0, len(elements))
		for _, el := range elements {
			if el.ID != target.ID {
				nextElements = append(nextElements, el)
			}
		}

		removed := element.NewElementWith(target, element.WithDeleted(true))
		nextElements = e.Bindings.FixBindingsAfterDeletion(nextElements, []element.Element{removed})

		nextAppState := e.resolveGroupEditingOrExit(appState, nextElements)
		nextAppState.EditingLinearElement = nil

		return Result{
			Elements:        nextElements,
			AppState:        nextAppState,
			CommitToHistory: false,
		}, true
	}

	nextEditor := editor.Clone()
	updated := e.Points.DeletePoints(target, indices)

	// 끝점을 지우면 해당 끝의 바인딩도 끊긴다
	var mutators []element.Mutator
	if indices[0] == 0 {
		nextEditor.StartBindingElement = nil
		mutators = append(mutators, element.WithStartBinding(nil))
	}
	if indices[len(indices)-1] == len(target.Points)-1 {
		nextEditor.EndBindingElement = nil
		mutators = append(mutators, element.WithEndBinding(nil))
	}
	updated = element.NewElementWith(updated, mutators...)

	nextElements := make([]element.Element, len(elements))
	for i, el := range elements {
		if el.ID == target.ID {
			nextElements[i] = updated
			continue
		}
		nextElements[i] = el
	}

	nextEditor.SelectedPointsIndices = []int{max(indices[0]-1, 0)}

	nextAppState := appState.Clone()
	nextAppState.EditingLinearElement = nextEditor

	return Result{
		Elements:        nextElements,
		AppState:        nextAppState,
		CommitToHistory: true,
	}, true
}

func (e *Engine) deleteSelectedElements(elements []element.Element, appState AppState, policy DeletePolicy) Result {
	forced := policy.forceSet()

	var (
		transitioned         []element.Element
		deletedCommentIDs    []string
		activeCommentDeleted bool
	)

	nextElements := make([]element.Element, len(elements))
	for i, el := range elements {
		var remove bool
		switch {
		case forced[el.ID]:
			remove = true
		case appState.IsSelected(el.ID):
			remove = policy.mayDelete(el)
		default:
			containerID, bound := el.BoundContainer()
			remove = bound && appState.IsSelected(containerID) && policy.mayDelete(el)
		}

		if !remove {
			nextElements[i] = el
			continue
		}

		deleted := element.NewElementWith(el, element.WithDeleted(true))
		nextElements[i] = deleted

		if appState.ActiveComment != nil && *appState.ActiveComment == el.ID {
			activeCommentDeleted = true
		}
		if el.IsDeleted {
			continue
		}
		transitioned = append(transitioned, deleted)
		if el.Kind() == element.KindComment {
			deletedCommentIDs = append(deletedCommentIDs, el.Comment.CommentID)
		}
	}

	nextAppState := appState.Clone()
	nextAppState.SelectedElementIDs = map[string]bool{}
	if activeCommentDeleted {
		nextAppState.ActiveComment = nil
	}

	nextElements = e.Bindings.FixBindingsAfterDeletion(nextElements, transitioned)
	nextAppState = e.resolveGroupEditingOrExit(nextAppState, nextElements)

	nextAppState.ActiveTool = ActiveTool{Type: ToolSelection}
	nextAppState.MultiElement = nil
	if len(policy.ForceDeleteIDs) == 0 {
		nextAppState.ActiveComment = nil
	}

	return Result{
		Elements:          nextElements,
		AppState:          nextAppState,
		CommitToHistory:   someElementSelected(element.NonDeleted(elements), appState),
		DeletedCommentIDs: deletedCommentIDs,
	}
}

func someElementSelected(elements []element.Element, appState AppState) bool {
	for _, el := range elements {
		if appState.IsSelected(el.ID) {
			return true
		}
	}
	return false
}
