package scene

import "whiteboard-backend/internal/element"

// Result 액션 수행 결과
type Result struct {
	Elements        []element.Element
	AppState        AppState
	CommitToHistory bool
	SyncHistory     bool

	// 이번 호출로 삭제된 코멘트의 commentID (외부 스레드 저장소 통지용)
	DeletedCommentIDs []string
}

// BindingFixer 삭제 후 참조 정리
type BindingFixer interface {
	FixBindingsAfterDeletion(elements, deleted []element.Element) []element.Element
}

// PointEditor 선형 요소 포인트 편집
type PointEditor interface {
	DeletePoints(el element.Element, indices []int) element.Element
}

// GroupQuery 그룹 멤버 조회
type GroupQuery interface {
	ElementsInGroup(elements []element.Element, groupID string) []element.Element
}

// Collaborators element 패키지 구현을 사용하는 기본 협력자
type Collaborators struct{}

// FixBindingsAfterDeletion element.FixBindingsAfterDeletion 위임
func (Collaborators) FixBindingsAfterDeletion(elements, deleted []element.Element) []element.Element {
	return element.FixBindingsAfterDeletion(elements, deleted)
}

// DeletePoints element.DeletePoints 위임
func (Collaborators) DeletePoints(el element.Element, indices []int) element.Element {
	return element.DeletePoints(el, indices)
}

// ElementsInGroup element.ElementsInGroup 위임
func (Collaborators) ElementsInGroup(elements []element.Element, groupID string) []element.Element {
	return element.ElementsInGroup(elements, groupID)
}
