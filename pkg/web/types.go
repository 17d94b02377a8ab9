// Package web provides HTTP request and response types for the textflow API.
package web

import (
	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/protocol"
)

// AddRecordRequest represents the request body for saving text directly as a record.
type AddRecordRequest struct {
	Text string   `json:"text" validate:"required"`
	Tags []string `json:"tags"`
}

// DeleteRecordsRequest represents the request body for a batch delete.
type DeleteRecordsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// UpdateTagsRequest replaces the tags of a record.
type UpdateTagsRequest struct {
	Tags []string `json:"tags" validate:"dive,required"`
}

// AddTagRequest adds a single tag to a record.
type AddTagRequest struct {
	Tag string `json:"tag" validate:"required"`
}

// SetActiveWorkflowRequest selects the workflow used for captures.
type SetActiveWorkflowRequest struct {
	ID string `json:"id" validate:"required"`
}

// UpdateNodeRequest represents the request body for updating an existing workflow node.
// The node type cannot be changed.
type UpdateNodeRequest struct {
	Enabled bool              `json:"enabled"`
	Config  models.NodeConfig `json:"config"`
}

// MoveNodeRequest moves a node among the movable nodes of a workflow.
type MoveNodeRequest struct {
	Position *int `json:"position" validate:"required,min=0"`
}

// RunRequest represents the request body for running a workflow over text.
type RunRequest struct {
	Text string   `json:"text" validate:"required"`
	Tags []string `json:"tags"`
}

// CommitRequest saves a result returned by a previous run.
type CommitRequest struct {
	Result *models.ExecutionResult `json:"result" validate:"required"`
}

// RecordsResponse is a record listing with the known tags.
type RecordsResponse struct {
	Records []*models.Record       `json:"records"`
	Tags    []models.SelectableTag `json:"tags"`
	Count   int                    `json:"count"`
}

// NodeTypeResponse describes a registered node type.
type NodeTypeResponse struct {
	ID          models.NodeType `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      map[string]any  `json:"schema"`
	Pinned      bool            `json:"pinned"`
}

// TransformNodeTypeResponse transforms a node factory into its API description.
func TransformNodeTypeResponse(factory protocol.NodeFactory) NodeTypeResponse {
	return NodeTypeResponse{
		ID:          factory.ID(),
		Name:        factory.Name(),
		Description: factory.Description(),
		Schema:      factory.Schema(),
		Pinned:      factory.ID().IsPinned(),
	}
}
