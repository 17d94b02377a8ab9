// Package workflow executes a workflow's enabled nodes over a text buffer.
package workflow

import (
	"github.com/dukex/textflow/pkg/models"
	"github.com/google/uuid"
)

// Normalize returns a copy of nodes holding exactly one copy-to-clipboard and
// one save node at the tail, in that order. The first occurrence of each
// pinned type wins; a missing one is synthesized disabled.
func Normalize(nodes []*models.WorkflowNode) []*models.WorkflowNode {
	normalized := make([]*models.WorkflowNode, 0, len(nodes)+2)

	var copyNode, saveNode *models.WorkflowNode

	for _, node := range nodes {
		switch node.Type {
		case models.NodeTypeCopyToClipboard:
			if copyNode == nil {
				copyNode = node.Clone()
			}
		case models.NodeTypeSave:
			if saveNode == nil {
				saveNode = node.Clone()
			}
		default:
			normalized = append(normalized, node.Clone())
		}
	}

	if copyNode == nil {
		copyNode = &models.WorkflowNode{ID: uuid.NewString(), Type: models.NodeTypeCopyToClipboard}
	}

	if saveNode == nil {
		saveNode = &models.WorkflowNode{ID: uuid.NewString(), Type: models.NodeTypeSave}
	}

	return append(normalized, copyNode, saveNode)
}

// NormalizeWorkflow returns a copy of workflow with normalized nodes.
func NormalizeWorkflow(workflow *models.Workflow) *models.Workflow {
	normalized := workflow.Clone()
	normalized.Nodes = Normalize(workflow.Nodes)

	if normalized.Icon == "" {
		normalized.Icon = models.DefaultWorkflowIcon
	}

	return normalized
}

// IsNormalized reports whether copy and save already form the tail of nodes.
func IsNormalized(nodes []*models.WorkflowNode) bool {
	n := len(nodes)
	if n < 2 || nodes[n-2].Type != models.NodeTypeCopyToClipboard || nodes[n-1].Type != models.NodeTypeSave {
		return false
	}

	for _, node := range nodes[:n-2] {
		if node.Type.IsPinned() {
			return false
		}
	}

	return true
}
