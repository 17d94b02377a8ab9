package save

import (
	"context"

	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/protocol"
)

// SaveNodeFactory creates SaveNode instances.
type SaveNodeFactory struct{}

// NewSaveNodeFactory creates a new save node factory.
func NewSaveNodeFactory() protocol.NodeFactory {
	return &SaveNodeFactory{}
}

// Create creates a new SaveNode instance.
func (f *SaveNodeFactory) Create(_ context.Context, node *models.WorkflowNode) (models.Node, error) {
	return NewSaveNode(node.ID, node.Config.SkipConfirmation), nil
}

// ID returns the factory ID.
func (f *SaveNodeFactory) ID() models.NodeType {
	return models.NodeTypeSave
}

// Name returns the factory name.
func (f *SaveNodeFactory) Name() string {
	return "Save"
}

// Description returns the factory description.
func (f *SaveNodeFactory) Description() string {
	return "Marks the result to be saved as a record, optionally without confirmation"
}

// Schema returns the JSON schema for save node configuration.
func (f *SaveNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skip_confirmation": map[string]any{
				"type":        "boolean",
				"description": "Save without asking for confirmation",
				"default":     false,
			},
		},
	}
}
