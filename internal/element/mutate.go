package element

import (
	"math"
	"math/rand"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Mutator 새 버전에 적용할 필드 변경
type Mutator func(*Element)

// randomNonce 버전 논스 생성기 (테스트에서 교체 가능)
var randomNonce = func() int {
	return rand.Intn(math.MaxInt32)
}

var contentOptions = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmpopts.IgnoreFields(Element{}, "Version", "VersionNonce"),
}

// SameContent 버전/논스를 제외한 필드가 같은지 확인
// nil 과 빈 슬라이스는 같은 값으로 본다.
func SameContent(a, b Element) bool {
	return cmp.Equal(a, b, contentOptions...)
}

// NewElementWith base 에 변경을 적용한 새 버전 반환
// 실제로 바뀐 필드가 없으면 base 를 그대로 돌려준다.
func NewElementWith(base Element, mutators ...Mutator) Element {
	next := base.Clone()
	for _, mutate := range mutators {
		mutate(&next)
	}
	if SameContent(base, next) {
		return base
	}
	next.Version = base.Version + 1
	next.VersionNonce = randomNonce()
	return next
}

// WithDeleted 삭제 플래그 설정
func WithDeleted(deleted bool) Mutator {
	return func(e *Element) {
		e.IsDeleted = deleted
	}
}

// WithPoints 포인트 교체
func WithPoints(points []Point) Mutator {
	return func(e *Element) {
		e.Points = append([]Point(nil), points...)
	}
}

// WithPosition 위치 변경
func WithPosition(x, y float64) Mutator {
	return func(e *Element) {
		e.X = x
		e.Y = y
	}
}

// WithStartBinding 시작점 바인딩 교체 (nil 이면 해제)
func WithStartBinding(b *Binding) Mutator {
	return func(e *Element) {
		e.StartBinding = copyBinding(b)
	}
}

// WithEndBinding 끝점 바인딩 교체 (nil 이면 해제)
func WithEndBinding(b *Binding) Mutator {
	return func(e *Element) {
		e.EndBinding = copyBinding(b)
	}
}

// WithContainerID 컨테이너 참조 교체 (nil 이면 해제)
func WithContainerID(id *string) Mutator {
	return func(e *Element) {
		if id == nil {
			e.ContainerID = nil
			return
		}
		v := *id
		e.ContainerID = &v
	}
}

// WithFieldsFrom src 의 모든 필드를 덮어쓴다 (버전/논스 제외)
func WithFieldsFrom(src Element) Mutator {
	return func(e *Element) {
		version, nonce := e.Version, e.VersionNonce
		*e = src.Clone()
		e.Version = version
		e.VersionNonce = nonce
	}
}

func copyBinding(b *Binding) *Binding {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
