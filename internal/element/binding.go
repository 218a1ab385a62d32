package element

// FixBindingsAfterDeletion 삭제된 요소를 가리키는 참조 정리
// 삭제되지 않은 요소의 startBinding/endBinding/containerId 가 deleted 중 하나를
// 가리키면 해당 참조를 해제한 새 버전으로 교체한 배열을 반환한다.
func FixBindingsAfterDeletion(elements []Element, deleted []Element) []Element {
	if len(deleted) == 0 {
		return elements
	}

	deletedIDs := make(map[string]bool, len(deleted))
	for _, el := range deleted {
		deletedIDs[el.ID] = true
	}

	next := make([]Element, len(elements))
	for i, el := range elements {
		next[i] = el
		if el.IsDeleted {
			continue
		}

		var mutators []Mutator
		if el.StartBinding != nil && deletedIDs[el.StartBinding.ElementID] {
			mutators = append(mutators, WithStartBinding(nil))
		}
		if el.EndBinding != nil && deletedIDs[el.EndBinding.ElementID] {
			mutators = append(mutators, WithEndBinding(nil))
		}
		if containerID, ok := el.BoundContainer(); ok && deletedIDs[containerID] {
			mutators = append(mutators, WithContainerID(nil))
		}
		if len(mutators) > 0 {
			next[i] = NewElementWith(el, mutators...)
		}
	}
	return next
}

// DanglingReference 삭제된 요소를 가리키는 참조 (감사용)
type DanglingReference struct {
	ElementID string
	Field     string
	TargetID  string
}

// FindDanglingReferences 삭제되지 않은 요소 중 삭제된 요소를 참조하는 항목 검색
func FindDanglingReferences(elements []Element) []DanglingReference {
	byID := ToMap(elements)
	isDeleted := func(id string) bool {
		target, ok := byID[id]
		return ok && target.IsDeleted
	}

	var refs []DanglingReference
	for _, el := range elements {
		if el.IsDeleted {
			continue
		}
		if el.StartBinding != nil && isDeleted(el.StartBinding.ElementID) {
			refs = append(refs, DanglingReference{el.ID, "startBinding", el.StartBinding.ElementID})
		}
		if el.EndBinding != nil && isDeleted(el.EndBinding.ElementID) {
			refs = append(refs, DanglingReference{el.ID, "endBinding", el.EndBinding.ElementID})
		}
		if containerID, ok := el.BoundContainer(); ok && isDeleted(containerID) {
			refs = append(refs, DanglingReference{el.ID, "containerId", containerID})
		}
	}
	return refs
}
