package clipboard

import (
	"context"
	"errors"
	"testing"

	"github.com/dukex/textflow/pkg/mocks"
	"github.com/dukex/textflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyToClipboardNode_Execute(t *testing.T) {
	memory := &Memory{}

	node := NewCopyToClipboardNode("c1", memory)
	state := &models.ExecutionState{Buffer: "copied"}

	require.NoError(t, node.Execute(context.Background(), state))
	assert.Equal(t, "copied", memory.Text())
	assert.True(t, state.DidCopyToClipboard)
	assert.Equal(t, "copied", state.Buffer)
}

func TestCopyToClipboardNode_ExecuteError(t *testing.T) {
	cb := &mocks.MockClipboard{}
	cb.On("WriteAll", "x").Return(errors.New("no display"))

	state := &models.ExecutionState{Buffer: "x"}

	err := NewCopyToClipboardNode("c1", cb).Execute(context.Background(), state)
	require.ErrorIs(t, err, models.ErrTransport)
	assert.False(t, state.DidCopyToClipboard)
	cb.AssertExpectations(t)
}

func TestCopyToClipboardNodeFactory(t *testing.T) {
	memory := &Memory{}
	factory := NewCopyToClipboardNodeFactory(memory)

	node, err := factory.Create(context.Background(), &models.WorkflowNode{ID: "c2", Type: models.NodeTypeCopyToClipboard})
	require.NoError(t, err)
	assert.Equal(t, "c2", node.ID())
	assert.Equal(t, models.NodeTypeCopyToClipboard, node.Type())
	assert.Equal(t, models.NodeTypeCopyToClipboard, factory.ID())
}
