package ai

import (
	"context"

	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/protocol"
)

// AIProcessNodeFactory creates AIProcessNode instances sharing one client.
type AIProcessNodeFactory struct {
	client Client
}

// NewAIProcessNodeFactory creates a new AI process node factory.
func NewAIProcessNodeFactory(client Client) protocol.NodeFactory {
	return &AIProcessNodeFactory{client: client}
}

// Create creates a new AIProcessNode instance.
func (f *AIProcessNodeFactory) Create(_ context.Context, node *models.WorkflowNode) (models.Node, error) {
	return NewAIProcessNode(node.ID, node.Config.AIPrompt, f.client), nil
}

// ID returns the factory ID.
func (f *AIProcessNodeFactory) ID() models.NodeType {
	return models.NodeTypeAIProcess
}

// Name returns the factory name.
func (f *AIProcessNodeFactory) Name() string {
	return "AI Process"
}

// Description returns the factory description.
func (f *AIProcessNodeFactory) Description() string {
	return "Rewrites the text with an AI chat-completion model following the configured prompt"
}

// Schema returns the JSON schema for AI process node configuration.
func (f *AIProcessNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ai_prompt": map[string]any{
				"type":        "string",
				"description": "Instruction sent ahead of the text. An empty prompt skips the node",
				"examples": []string{
					"Fix grammar and spelling",
					"Translate to English",
				},
			},
		},
	}
}
