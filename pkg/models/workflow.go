// Package models defines the core domain models for text capture workflows and records
package models

// DefaultWorkflowIcon is the symbol name given to workflows created without an icon.
const DefaultWorkflowIcon = "text.bubble"

// Workflow represents a named, ordered list of nodes executed against captured text.
type Workflow struct {
	ID    string          `json:"id"    validate:"required"`
	Name  string          `json:"name"  validate:"required,min=1"`
	Icon  string          `json:"icon"`
	Nodes []*WorkflowNode `json:"nodes" validate:"dive"`
}

// Clone returns a deep copy of the workflow. Node identities are preserved.
func (w *Workflow) Clone() *Workflow {
	clone := &Workflow{
		ID:    w.ID,
		Name:  w.Name,
		Icon:  w.Icon,
		Nodes: make([]*WorkflowNode, 0, len(w.Nodes)),
	}

	for _, node := range w.Nodes {
		clone.Nodes = append(clone.Nodes, node.Clone())
	}

	return clone
}

// NodeByID returns the node with the given ID and its position in the list.
func (w *Workflow) NodeByID(id string) (*WorkflowNode, int, bool) {
	for i, node := range w.Nodes {
		if node.ID == id {
			return node, i, true
		}
	}

	return nil, -1, false
}

// EnabledNodes returns the enabled nodes in stored order.
func (w *Workflow) EnabledNodes() []*WorkflowNode {
	enabled := make([]*WorkflowNode, 0, len(w.Nodes))

	for _, node := range w.Nodes {
		if node.Enabled {
			enabled = append(enabled, node)
		}
	}

	return enabled
}
