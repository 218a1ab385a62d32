package scene

// ToolType 활성 도구 타입
type ToolType string

const (
	ToolSelection ToolType = "selection"
	ToolRectangle ToolType = "rectangle"
	ToolArrow     ToolType = "arrow"
	ToolLine      ToolType = "line"
	ToolText      ToolType = "text"
	ToolComment   ToolType = "comment"
)

// ActiveTool 현재 선택된 도구
type ActiveTool struct {
	Type ToolType `json:"type"`
}

// LinearElementEditor 선형 요소 포인트 편집 세션 상태
type LinearElementEditor struct {
	ElementID             string  `json:"elementId"`
	SelectedPointsIndices []int   `json:"selectedPointsIndices"` // nil 이면 선택된 포인트 없음
	StartBindingElement   *string `json:"startBindingElement"`
	EndBindingElement     *string `json:"endBindingElement"`
}

// Clone 세션 상태 복사
func (l *LinearElementEditor) Clone() *LinearElementEditor {
	if l == nil {
		return nil
	}
	c := *l
	if l.SelectedPointsIndices != nil {
		c.SelectedPointsIndices = append([]int(nil), l.SelectedPointsIndices...)
	}
	c.StartBindingElement = cloneID(l.StartBindingElement)
	c.EndBindingElement = cloneID(l.EndBindingElement)
	return &c
}

// AppState 에디터 상태 중 요소 수명주기에 관여하는 부분
// ActiveComment, EditingGroupID 는 약한 참조(ID)이며 사용 시점에 조회한다.
type AppState struct {
	Name                 string               `json:"name,omitempty"`
	SelectedElementIDs   map[string]bool      `json:"selectedElementIds"`
	ActiveComment        *string              `json:"activeComment"`
	EditingGroupID       *string              `json:"editingGroupId"`
	EditingLinearElement *LinearElementEditor `json:"editingLinearElement"`
	ActiveTool           ActiveTool           `json:"activeTool"`

	// 진행 중인 제스처 표시
	MultiElement    *string `json:"multiElement"`
	ResizingElement *string `json:"resizingElement"`
	EditingElement  *string `json:"editingElement"`
	DraggingElement *string `json:"draggingElement"`
}

// NewAppState 기본 상태 생성
func NewAppState() AppState {
	return AppState{
		SelectedElementIDs: map[string]bool{},
		ActiveTool:         ActiveTool{Type: ToolSelection},
	}
}

// Clone 맵/포인터 필드까지 복사
func (s AppState) Clone() AppState {
	c := s
	c.SelectedElementIDs = make(map[string]bool, len(s.SelectedElementIDs))
	for id, selected := range s.SelectedElementIDs {
		c.SelectedElementIDs[id] = selected
	}
	c.ActiveComment = cloneID(s.ActiveComment)
	c.EditingGroupID = cloneID(s.EditingGroupID)
	c.EditingLinearElement = s.EditingLinearElement.Clone()
	c.MultiElement = cloneID(s.MultiElement)
	c.ResizingElement = cloneID(s.ResizingElement)
	c.EditingElement = cloneID(s.EditingElement)
	c.DraggingElement = cloneID(s.DraggingElement)
	return c
}

// IsSelected 선택 여부
func (s AppState) IsSelected(id string) bool {
	return s.SelectedElementIDs[id]
}

// GestureActive 커밋되지 않은 제스처 진행 여부
func (s AppState) GestureActive() bool {
	return s.MultiElement != nil ||
		s.ResizingElement != nil ||
		s.EditingElement != nil ||
		s.DraggingElement != nil
}

// Snapshot 히스토리 항목에 저장되는 상태 일부
type Snapshot struct {
	Name               string          `json:"name,omitempty"`
	SelectedElementIDs map[string]bool `json:"selectedElementIds"`
	EditingGroupID     *string         `json:"editingGroupId"`
}

// Snapshot 히스토리용 상태 추출
func (s AppState) Snapshot() Snapshot {
	c := s.Clone()
	return Snapshot{
		Name:               c.Name,
		SelectedElementIDs: c.SelectedElementIDs,
		EditingGroupID:     c.EditingGroupID,
	}
}

// Merge 스냅샷 필드로 덮어쓴 새 상태 반환
func (s AppState) Merge(snap Snapshot) AppState {
	next := s.Clone()
	next.Name = snap.Name
	next.SelectedElementIDs = make(map[string]bool, len(snap.SelectedElementIDs))
	for id, selected := range snap.SelectedElementIDs {
		next.SelectedElementIDs[id] = selected
	}
	next.EditingGroupID = cloneID(snap.EditingGroupID)
	return next
}

// Identity 동작을 수행하는 사용자
type Identity struct {
	Email string `json:"email"`
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
