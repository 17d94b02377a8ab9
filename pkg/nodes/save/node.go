// Package save provides the node that marks a run's result for saving.
package save

import (
	"context"

	"github.com/dukex/textflow/pkg/models"
)

// SaveNode requests that the caller store the final buffer. It does not write anything itself.
type SaveNode struct {
	id               string
	skipConfirmation bool
}

// NewSaveNode creates a new save node.
func NewSaveNode(id string, skipConfirmation bool) *SaveNode {
	return &SaveNode{id: id, skipConfirmation: skipConfirmation}
}

// ID returns the node ID.
func (n *SaveNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *SaveNode) Type() models.NodeType {
	return models.NodeTypeSave
}

// Execute sets the save flags on the state.
func (n *SaveNode) Execute(_ context.Context, state *models.ExecutionState) error {
	state.ShouldSave = true
	state.SkipConfirmation = n.skipConfirmation

	return nil
}
