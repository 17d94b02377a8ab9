package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/dukex/textflow/pkg/mocks"
	"github.com/dukex/textflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProcessNode_EmptyPromptIsNoop(t *testing.T) {
	client := &mocks.MockAIClient{}

	node := NewAIProcessNode("n1", "", client)
	state := &models.ExecutionState{Buffer: "unchanged"}

	require.NoError(t, node.Execute(context.Background(), state))
	assert.Equal(t, "unchanged", state.Buffer)
	client.AssertNotCalled(t, "Complete")
}

func TestAIProcessNode_ReplacesBuffer(t *testing.T) {
	client := &mocks.MockAIClient{}
	client.On("Complete", context.Background(), "shout", "hello").Return("HELLO", nil)

	node := NewAIProcessNode("n1", "shout", client)
	state := &models.ExecutionState{Buffer: "hello"}

	require.NoError(t, node.Execute(context.Background(), state))
	assert.Equal(t, "HELLO", state.Buffer)
	client.AssertExpectations(t)
}

func TestAIProcessNode_ErrorKeepsBuffer(t *testing.T) {
	client := &mocks.MockAIClient{}
	client.On("Complete", context.Background(), "shout", "hello").Return("", errors.New("offline"))

	node := NewAIProcessNode("n1", "shout", client)
	state := &models.ExecutionState{Buffer: "hello"}

	require.Error(t, node.Execute(context.Background(), state))
	assert.Equal(t, "hello", state.Buffer)
}

func TestAIProcessNodeFactory(t *testing.T) {
	factory := NewAIProcessNodeFactory(&mocks.MockAIClient{})

	assert.Equal(t, models.NodeTypeAIProcess, factory.ID())
	assert.NotEmpty(t, factory.Name())
	assert.NotEmpty(t, factory.Schema()["properties"])

	node, err := factory.Create(context.Background(), &models.WorkflowNode{
		ID:     "n7",
		Type:   models.NodeTypeAIProcess,
		Config: models.NodeConfig{AIPrompt: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "n7", node.ID())
	assert.Equal(t, models.NodeTypeAIProcess, node.Type())
}
