package clipboard

import (
	"context"

	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/protocol"
)

// CopyToClipboardNodeFactory creates CopyToClipboardNode instances.
type CopyToClipboardNodeFactory struct {
	clipboard Clipboard
}

// NewCopyToClipboardNodeFactory creates a new copy node factory. A nil
// clipboard selects Default.
func NewCopyToClipboardNodeFactory(clipboard Clipboard) protocol.NodeFactory {
	if clipboard == nil {
		clipboard = Default()
	}

	return &CopyToClipboardNodeFactory{clipboard: clipboard}
}

// Create creates a new CopyToClipboardNode instance.
func (f *CopyToClipboardNodeFactory) Create(_ context.Context, node *models.WorkflowNode) (models.Node, error) {
	return NewCopyToClipboardNode(node.ID, f.clipboard), nil
}

// ID returns the factory ID.
func (f *CopyToClipboardNodeFactory) ID() models.NodeType {
	return models.NodeTypeCopyToClipboard
}

// Name returns the factory name.
func (f *CopyToClipboardNodeFactory) Name() string {
	return "Copy to Clipboard"
}

// Description returns the factory description.
func (f *CopyToClipboardNodeFactory) Description() string {
	return "Copies the text to the clipboard"
}

// Schema returns the JSON schema for copy node configuration.
func (f *CopyToClipboardNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}
