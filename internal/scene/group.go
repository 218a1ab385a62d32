package scene

import "whiteboard-backend/internal/element"

// ResolveGroupEditing 편집 중인 그룹의 첫 번째 남은 멤버를 단독 선택
// editingGroupId 가 없거나 남은 멤버가 없으면 상태를 그대로 돌려준다.
func (e *Engine) ResolveGroupEditing(appState AppState, elements []element.Element) AppState {
	next, _ := e.resolveGroupEditing(appState, elements)
	return next
}

func (e *Engine) resolveGroupEditing(appState AppState, elements []element.Element) (AppState, bool) {
	if appState.EditingGroupID == nil {
		return appState, true
	}

	siblings := e.Groups.ElementsInGroup(element.NonDeleted(elements), *appState.EditingGroupID)
	if len(siblings) == 0 {
		return appState, false
	}

	next := appState.Clone()
	next.SelectedElementIDs = map[string]bool{siblings[0].ID: true}
	return next, true
}

// resolveGroupEditingOrExit 멤버가 하나도 남지 않으면 그룹 편집을 종료
func (e *Engine) resolveGroupEditingOrExit(appState AppState, elements []element.Element) AppState {
	next, found := e.resolveGroupEditing(appState, elements)
	if !found {
		next = next.Clone()
		next.EditingGroupID = nil
	}
	return next
}
