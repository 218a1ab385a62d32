package element

// Type 요소 타입
type Type string

const (
	TypeRectangle Type = "rectangle"
	TypeEllipse   Type = "ellipse"
	TypeDiamond   Type = "diamond"
	TypeText      Type = "text"
	TypeLine      Type = "line"
	TypeArrow     Type = "arrow"
	TypeFreedraw  Type = "freedraw"
	TypeComment   Type = "comment"
)

// Kind 삭제/히스토리 규칙이 분기하는 요소 분류
type Kind int

const (
	KindShape Kind = iota
	KindLinear
	KindBoundText
	KindComment
)

// String 분류를 문자열로 반환
func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindLinear:
		return "linear"
	case KindBoundText:
		return "bound_text"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Point 선형 요소의 상대 좌표
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Binding 선형 요소 끝점이 붙어 있는 대상 요소 참조
type Binding struct {
	ElementID string  `json:"elementId"`
	Focus     float64 `json:"focus"`
	Gap       float64 `json:"gap"`
}

// Owner 코멘트 작성자
type Owner struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Comment 코멘트 요소 전용 필드
// CommentID 는 외부 스레드 저장소의 키이며 요소 ID 와 별개다.
type Comment struct {
	Owner     Owner  `json:"owner"`
	CommentID string `json:"commentID"`
}

// Element 버전이 관리되는 소프트 삭제 가능 요소
type Element struct {
	ID           string   `json:"id"`
	Type         Type     `json:"type"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	Angle        float64  `json:"angle"`
	Version      int      `json:"version"`
	VersionNonce int      `json:"versionNonce"`
	IsDeleted    bool     `json:"isDeleted"`
	GroupIDs     []string `json:"groupIds"`
	ContainerID  *string  `json:"containerId"`

	// 선형 요소 전용
	Points       []Point  `json:"points,omitempty"`
	StartBinding *Binding `json:"startBinding,omitempty"`
	EndBinding   *Binding `json:"endBinding,omitempty"`

	Text    string   `json:"text,omitempty"`
	Comment *Comment `json:"comment,omitempty"`
}

// Kind 요소 분류 반환
func (e Element) Kind() Kind {
	switch {
	case e.Type == TypeComment && e.Comment != nil:
		return KindComment
	case e.Type == TypeLine || e.Type == TypeArrow:
		return KindLinear
	case e.ContainerID != nil && *e.ContainerID != "":
		return KindBoundText
	default:
		return KindShape
	}
}

// IsComment 코멘트 요소 여부
func (e Element) IsComment() bool {
	return e.Kind() == KindComment
}

// IsLinear 선형 요소 여부
func (e Element) IsLinear() bool {
	return e.Kind() == KindLinear
}

// BoundContainer 컨테이너에 붙어 있으면 컨테이너 ID 반환
func (e Element) BoundContainer() (string, bool) {
	if e.ContainerID == nil || *e.ContainerID == "" {
		return "", false
	}
	return *e.ContainerID, true
}

// HasGroup 그룹 소속 여부
func (e Element) HasGroup(groupID string) bool {
	for _, id := range e.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// Clone 슬라이스/포인터 필드까지 복사한 사본 반환
func (e Element) Clone() Element {
	c := e
	if e.GroupIDs != nil {
		c.GroupIDs = append([]string(nil), e.GroupIDs...)
	}
	if e.ContainerID != nil {
		id := *e.ContainerID
		c.ContainerID = &id
	}
	if e.Points != nil {
		c.Points = append([]Point(nil), e.Points...)
	}
	if e.StartBinding != nil {
		b := *e.StartBinding
		c.StartBinding = &b
	}
	if e.EndBinding != nil {
		b := *e.EndBinding
		c.EndBinding = &b
	}
	if e.Comment != nil {
		cm := *e.Comment
		c.Comment = &cm
	}
	return c
}

// ToMap ID 기준 조회 맵 생성
func ToMap(elements []Element) map[string]Element {
	m := make(map[string]Element, len(elements))
	for _, el := range elements {
		m[el.ID] = el
	}
	return m
}

// NonDeleted 삭제되지 않은 요소만 반환
func NonDeleted(elements []Element) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if !el.IsDeleted {
			out = append(out, el)
		}
	}
	return out
}

// Find ID 로 요소 조회
func Find(elements []Element, id string) (Element, bool) {
	for _, el := range elements {
		if el.ID == id {
			return el, true
		}
	}
	return Element{}, false
}

// StringPtr 문자열 포인터 헬퍼
func StringPtr(s string) *string {
	return &s
}
