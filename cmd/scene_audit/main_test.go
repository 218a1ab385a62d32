package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"whiteboard-backend/internal/element"
	"whiteboard-backend/internal/scene"
)

func TestAuditCleanScene(t *testing.T) {
	elements := []element.Element{
		{ID: "1", Type: element.TypeRectangle, GroupIDs: []string{"g"}},
		{ID: "2", Type: element.TypeText, ContainerID: element.StringPtr("1")},
	}
	state := scene.NewAppState()
	state.EditingGroupID = element.StringPtr("g")

	f := audit("s1", elements, state)
	assert.Empty(t, f.Dangling)
	assert.Empty(t, f.StaleEditGroup)
}

func TestAuditReportsBrokenReferences(t *testing.T) {
	elements := []element.Element{
		{ID: "1", Type: element.TypeRectangle, GroupIDs: []string{"g"}, IsDeleted: true},
		{ID: "2", Type: element.TypeText, ContainerID: element.StringPtr("1")},
	}
	state := scene.NewAppState()
	state.EditingGroupID = element.StringPtr("g")

	f := audit("s1", elements, state)
	assert.Equal(t, []element.DanglingReference{{ElementID: "2", Field: "containerId", TargetID: "1"}}, f.Dangling)
	assert.Equal(t, "g", f.StaleEditGroup)
}
