package save

import (
	"context"
	"testing"

	"github.com/dukex/textflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveNode_Execute(t *testing.T) {
	state := &models.ExecutionState{Buffer: "keep"}

	require.NoError(t, NewSaveNode("s1", true).Execute(context.Background(), state))
	assert.True(t, state.ShouldSave)
	assert.True(t, state.SkipConfirmation)
	assert.Equal(t, "keep", state.Buffer)
}

func TestSaveNodeFactory_Create(t *testing.T) {
	node, err := NewSaveNodeFactory().Create(context.Background(), &models.WorkflowNode{
		ID:     "s2",
		Type:   models.NodeTypeSave,
		Config: models.NodeConfig{SkipConfirmation: false},
	})
	require.NoError(t, err)

	state := &models.ExecutionState{}
	require.NoError(t, node.Execute(context.Background(), state))
	assert.True(t, state.ShouldSave)
	assert.False(t, state.SkipConfirmation)
}
