package httppost

import (
	"context"
	"net/http"

	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/protocol"
)

// HTTPPostNodeFactory creates HTTPPostNode instances.
type HTTPPostNodeFactory struct {
	client *http.Client
}

// NewHTTPPostNodeFactory creates a new HTTP post node factory. A nil client
// gets a default client with DefaultTimeout.
func NewHTTPPostNodeFactory(client *http.Client) protocol.NodeFactory {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &HTTPPostNodeFactory{client: client}
}

// Create creates a new HTTPPostNode instance.
func (f *HTTPPostNodeFactory) Create(_ context.Context, node *models.WorkflowNode) (models.Node, error) {
	return NewHTTPPostNode(node.ID, node.Config.HTTPHost, node.Config.HTTPPort, f.client), nil
}

// ID returns the factory ID.
func (f *HTTPPostNodeFactory) ID() models.NodeType {
	return models.NodeTypeHTTPPost
}

// Name returns the factory name.
func (f *HTTPPostNodeFactory) Name() string {
	return "HTTP Post"
}

// Description returns the factory description.
func (f *HTTPPostNodeFactory) Description() string {
	return "Posts the text as text/plain to a receiver on the network; fails the run on non-2xx responses"
}

// Schema returns the JSON schema for HTTP post node configuration.
func (f *HTTPPostNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"http_host": map[string]any{
				"type":        "string",
				"description": "Receiver host name or IP address",
				"default":     DefaultHost,
				"maxLength":   253,
				"examples":    []string{"localhost", "192.168.1.20", "notes.local"},
			},
			"http_port": map[string]any{
				"type":        "integer",
				"description": "Receiver TCP port",
				"default":     DefaultPort,
				"minimum":     1,
				"maximum":     65535,
			},
		},
	}
}
