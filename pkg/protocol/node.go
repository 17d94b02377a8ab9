// Package protocol defines the contract between the registry and the node types it builds.
package protocol

import (
	"context"

	"github.com/dukex/textflow/pkg/models"
)

// Describer carries the metadata listed by the node-types endpoint.
type Describer interface {
	ID() models.NodeType
	Name() string
	Description() string
	// Schema is the JSON schema the node's configuration must satisfy.
	Schema() map[string]any
}

// NodeFactory builds a runnable node from a stored workflow node. An unusable
// configuration is reported by the node's Execute as models.ErrConfiguration.
type NodeFactory interface {
	Describer
	Create(ctx context.Context, node *models.WorkflowNode) (models.Node, error)
}
