package element

// ElementsInGroup 그룹에 속한 삭제되지 않은 요소 (배열 순서 유지)
func ElementsInGroup(elements []Element, groupID string) []Element {
	var members []Element
	for _, el := range elements {
		if !el.IsDeleted && el.HasGroup(groupID) {
			members = append(members, el)
		}
	}
	return members
}
