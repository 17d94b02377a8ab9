// Package ai provides the AI rewrite node and its chat-completion client.
package ai

import (
	"context"

	"github.com/dukex/textflow/pkg/models"
)

// AIProcessNode replaces the buffer with the AI rewrite of it.
type AIProcessNode struct {
	id     string
	prompt string
	client Client
}

// NewAIProcessNode creates a new AI process node.
func NewAIProcessNode(id, prompt string, client Client) *AIProcessNode {
	return &AIProcessNode{id: id, prompt: prompt, client: client}
}

// ID returns the node ID.
func (n *AIProcessNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *AIProcessNode) Type() models.NodeType {
	return models.NodeTypeAIProcess
}

// Execute sends the buffer to the AI client. An empty prompt leaves the buffer untouched.
func (n *AIProcessNode) Execute(ctx context.Context, state *models.ExecutionState) error {
	if n.prompt == "" {
		return nil
	}

	text, err := n.client.Complete(ctx, n.prompt, state.Buffer)
	if err != nil {
		return err
	}

	state.Buffer = text

	return nil
}
