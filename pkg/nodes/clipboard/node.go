// Package clipboard provides the node that copies the buffer to a clipboard.
package clipboard

import (
	"context"
	"fmt"

	"github.com/dukex/textflow/pkg/models"
)

// CopyToClipboardNode places the buffer on the clipboard without changing it.
type CopyToClipboardNode struct {
	id        string
	clipboard Clipboard
}

// NewCopyToClipboardNode creates a new copy node.
func NewCopyToClipboardNode(id string, clipboard Clipboard) *CopyToClipboardNode {
	return &CopyToClipboardNode{id: id, clipboard: clipboard}
}

// ID returns the node ID.
func (n *CopyToClipboardNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *CopyToClipboardNode) Type() models.NodeType {
	return models.NodeTypeCopyToClipboard
}

// Execute writes the buffer and records that a copy happened.
func (n *CopyToClipboardNode) Execute(_ context.Context, state *models.ExecutionState) error {
	if err := n.clipboard.WriteAll(state.Buffer); err != nil {
		return fmt.Errorf("%w: clipboard: %w", models.ErrTransport, err)
	}

	state.DidCopyToClipboard = true

	return nil
}
