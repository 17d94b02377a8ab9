package registry

import (
	"net/http"

	"github.com/dukex/textflow/pkg/nodes/ai"
	"github.com/dukex/textflow/pkg/nodes/clipboard"
	"github.com/dukex/textflow/pkg/nodes/httppost"
	"github.com/dukex/textflow/pkg/nodes/save"
)

// Collaborators are the external services the built-in nodes talk to.
type Collaborators struct {
	AI         ai.Client
	Clipboard  clipboard.Clipboard
	HTTPClient *http.Client
}

// RegisterDefaultNodes registers all built-in node factories with the registry.
func (r *Registry) RegisterDefaultNodes(deps Collaborators) {
	// Register AI Process node
	r.RegisterNode(ai.NewAIProcessNodeFactory(deps.AI))

	// Register HTTP Post node
	r.RegisterNode(httppost.NewHTTPPostNodeFactory(deps.HTTPClient))

	// Register pinned tail nodes
	r.RegisterNode(clipboard.NewCopyToClipboardNodeFactory(deps.Clipboard))
	r.RegisterNode(save.NewSaveNodeFactory())
}
