package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	assert.Equal(t, KindShape, Element{Type: TypeRectangle}.Kind())
	assert.Equal(t, KindLinear, Element{Type: TypeArrow}.Kind())
	assert.Equal(t, KindLinear, Element{Type: TypeLine}.Kind())
	assert.Equal(t, KindBoundText, Element{Type: TypeText, ContainerID: StringPtr("box")}.Kind())
	assert.Equal(t, KindShape, Element{Type: TypeText, ContainerID: StringPtr("")}.Kind())
	assert.Equal(t, KindComment, Element{Type: TypeComment, Comment: &Comment{CommentID: "c1"}}.Kind())
	// comment 타입이지만 payload 가 없으면 일반 도형으로 취급
	assert.Equal(t, KindShape, Element{Type: TypeComment}.Kind())
	assert.Equal(t, "bound_text", KindBoundText.String())
}

func TestCloneIsDeep(t *testing.T) {
	orig := Element{
		ID:           "a",
		GroupIDs:     []string{"g1"},
		ContainerID:  StringPtr("box"),
		Points:       []Point{{0, 0}, {1, 1}},
		StartBinding: &Binding{ElementID: "s"},
		Comment:      &Comment{CommentID: "c"},
	}
	c := orig.Clone()
	c.GroupIDs[0] = "changed"
	*c.ContainerID = "changed"
	c.Points[0].X = 9
	c.StartBinding.ElementID = "changed"
	c.Comment.CommentID = "changed"

	assert.Equal(t, "g1", orig.GroupIDs[0])
	assert.Equal(t, "box", *orig.ContainerID)
	assert.Equal(t, float64(0), orig.Points[0].X)
	assert.Equal(t, "s", orig.StartBinding.ElementID)
	assert.Equal(t, "c", orig.Comment.CommentID)
}

func TestNewElementWithAdvancesVersion(t *testing.T) {
	base := Element{ID: "a", Version: 3, VersionNonce: 42}
	next := NewElementWith(base, WithDeleted(true))

	assert.True(t, next.IsDeleted)
	assert.Equal(t, 4, next.Version)
	assert.False(t, base.IsDeleted, "base must not be mutated")
	assert.Equal(t, 3, base.Version)
}

func TestNewElementWithIdenticalOverridesIsNoop(t *testing.T) {
	base := Element{
		ID:           "a",
		Version:      7,
		VersionNonce: 99,
		GroupIDs:     []string{"g"},
		StartBinding: &Binding{ElementID: "b", Focus: 0.5},
	}
	next := NewElementWith(base,
		WithDeleted(false),
		WithStartBinding(&Binding{ElementID: "b", Focus: 0.5}),
		WithFieldsFrom(base.Clone()),
	)

	assert.Equal(t, base, next)
	assert.Equal(t, 7, next.Version)
	assert.Equal(t, 99, next.VersionNonce)
}

func TestNewElementWithTreatsNilAndEmptyAsEqual(t *testing.T) {
	base := Element{ID: "a", Version: 1, GroupIDs: nil}
	next := NewElementWith(base, func(e *Element) { e.GroupIDs = []string{} })
	assert.Equal(t, 1, next.Version)
}

func TestWithFieldsFromKeepsBaseVersion(t *testing.T) {
	live := Element{ID: "a", Version: 10, VersionNonce: 1, X: 1}
	snapshot := Element{ID: "a", Version: 4, VersionNonce: 2, X: 5}

	merged := NewElementWith(live, WithFieldsFrom(snapshot))
	assert.Equal(t, float64(5), merged.X)
	assert.Equal(t, 11, merged.Version)
}

func TestFixBindingsAfterDeletion(t *testing.T) {
	elements := []Element{
		{ID: "box", IsDeleted: true},
		{ID: "arrow", Type: TypeArrow, StartBinding: &Binding{ElementID: "box"}, EndBinding: &Binding{ElementID: "other"}},
		{ID: "label", Type: TypeText, ContainerID: StringPtr("box")},
		{ID: "ghost", IsDeleted: true, StartBinding: &Binding{ElementID: "box"}},
		{ID: "other"},
	}

	fixed := FixBindingsAfterDeletion(elements, []Element{{ID: "box"}})
	require.Len(t, fixed, len(elements))

	assert.Nil(t, fixed[1].StartBinding)
	require.NotNil(t, fixed[1].EndBinding)
	assert.Equal(t, "other", fixed[1].EndBinding.ElementID)
	assert.Equal(t, 1, fixed[1].Version)

	assert.Nil(t, fixed[2].ContainerID)
	// 삭제된 요소는 건드리지 않음
	assert.NotNil(t, fixed[3].StartBinding)
	assert.Equal(t, elements[4], fixed[4])

	// 원본 배열 불변
	assert.NotNil(t, elements[1].StartBinding)
	assert.Empty(t, FindDanglingReferences(fixed))
}

func TestFindDanglingReferences(t *testing.T) {
	elements := []Element{
		{ID: "box", IsDeleted: true},
		{ID: "arrow", EndBinding: &Binding{ElementID: "box"}},
		{ID: "label", ContainerID: StringPtr("box")},
	}
	refs := FindDanglingReferences(elements)
	assert.Equal(t, []DanglingReference{
		{ElementID: "arrow", Field: "endBinding", TargetID: "box"},
		{ElementID: "label", Field: "containerId", TargetID: "box"},
	}, refs)
}

func TestElementsInGroup(t *testing.T) {
	elements := []Element{
		{ID: "a", GroupIDs: []string{"g"}, IsDeleted: true},
		{ID: "b", GroupIDs: []string{"outer", "g"}},
		{ID: "c"},
		{ID: "d", GroupIDs: []string{"g"}},
	}
	members := ElementsInGroup(elements, "g")
	require.Len(t, members, 2)
	assert.Equal(t, "b", members[0].ID)
	assert.Equal(t, "d", members[1].ID)
	assert.Empty(t, ElementsInGroup(elements, "missing"))
}

func TestDeletePointsMiddle(t *testing.T) {
	line := Element{ID: "l", Type: TypeLine, X: 10, Y: 10, Points: []Point{{0, 0}, {5, 5}, {10, 0}}}
	next := DeletePoints(line, []int{1})

	assert.Equal(t, []Point{{0, 0}, {10, 0}}, next.Points)
	assert.Equal(t, float64(10), next.X)
	assert.Equal(t, 1, next.Version)
	assert.Len(t, line.Points, 3)
}

func TestDeletePointsFirstRenormalizes(t *testing.T) {
	line := Element{ID: "l", Type: TypeLine, X: 10, Y: 20, Points: []Point{{0, 0}, {5, 5}, {10, 0}}}
	next := DeletePoints(line, []int{0, 7})

	assert.Equal(t, []Point{{0, 0}, {5, -5}}, next.Points)
	assert.Equal(t, float64(15), next.X)
	assert.Equal(t, float64(25), next.Y)
}

func TestNormalizeIndices(t *testing.T) {
	assert.Equal(t, []int{0, 2, 5}, NormalizeIndices([]int{5, 2, 0, 2}))
	assert.Empty(t, NormalizeIndices(nil))
}
