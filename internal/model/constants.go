package model

// MemberRole 씬 멤버 역할
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "OWNER"
	MemberRoleEditor MemberRole = "EDITOR"
	MemberRoleViewer MemberRole = "VIEWER"
)

func (r MemberRole) String() string {
	return string(r)
}

// HistoryStack 히스토리 스택 구분
type HistoryStack string

const (
	HistoryStackUndo HistoryStack = "undo"
	HistoryStackRedo HistoryStack = "redo"
)

func (s HistoryStack) String() string {
	return string(s)
}
