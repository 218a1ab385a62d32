package history

import (
	"whiteboard-backend/internal/element"
	"whiteboard-backend/internal/scene"
)

// Reconciler 히스토리 항목을 현재 문서에 병합
type Reconciler struct {
	Bindings scene.BindingFixer
}

// NewReconciler element 패키지 바인딩 정리기로 생성
func NewReconciler() *Reconciler {
	return &Reconciler{Bindings: scene.Collaborators{}}
}

var defaultReconciler = NewReconciler()

// Reconcile 기본 정리기로 병합
func Reconcile(elements []element.Element, appState scene.AppState, pop func() *Entry) (scene.Result, bool) {
	return defaultReconciler.Reconcile(elements, appState, pop)
}

// Reconcile pop 으로 꺼낸 항목을 현재 요소와 병합한다
//
// 제스처 진행 중이면 pop 을 호출하지 않고 false 를 반환한다.
// 코멘트의 삭제 여부는 히스토리 이동으로 바뀌지 않는다.
func (r *Reconciler) Reconcile(prevElements []element.Element, appState scene.AppState, pop func() *Entry) (scene.Result, bool) {
	if appState.GestureActive() {
		return scene.Result{CommitToHistory: false}, false
	}

	entry := pop()
	if entry == nil {
		return scene.Result{CommitToHistory: false}, false
	}

	prevMap := element.ToMap(prevElements)
	nextMap := element.ToMap(entry.Elements)

	// 스냅샷에 없는 현재 요소
	var removedByEntry []element.Element
	for _, prev := range prevElements {
		if _, ok := nextMap[prev.ID]; !ok {
			removedByEntry = append(removedByEntry, prev)
		}
	}

	merged := make([]element.Element, 0, len(entry.Elements)+len(removedByEntry))
	for _, next := range entry.Elements {
		prev, existed := prevMap[next.ID]
		if !existed {
			merged = append(merged, next)
			continue
		}
		if next.IsComment() || prev.IsComment() {
			// 한 번 삭제된 코멘트는 되살리지 않고, 살아 있는 코멘트는 지우지 않는다
			merged = append(merged, element.NewElementWith(prev,
				element.WithFieldsFrom(next),
				element.WithDeleted(prev.IsDeleted),
			))
			continue
		}
		merged = append(merged, element.NewElementWith(prev, element.WithFieldsFrom(next)))
	}

	for _, prev := range removedByEntry {
		if prev.IsComment() {
			// 스냅샷 이후에 생긴 코멘트는 그대로 남긴다
			merged = append(merged, prev)
			continue
		}
		merged = append(merged, element.NewElementWith(prev, element.WithDeleted(true)))
	}

	var deleted []element.Element
	for _, el := range merged {
		if el.IsDeleted {
			deleted = append(deleted, el)
		}
	}
	merged = r.Bindings.FixBindingsAfterDeletion(merged, deleted)

	return scene.Result{
		Elements:        merged,
		AppState:        appState.Merge(entry.AppState),
		CommitToHistory: false,
		SyncHistory:     true,
	}, true
}
