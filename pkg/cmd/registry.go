// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"
	"net/http"

	"github.com/dukex/textflow/pkg/nodes/ai"
	"github.com/dukex/textflow/pkg/nodes/clipboard"
	"github.com/dukex/textflow/pkg/nodes/httppost"
	"github.com/dukex/textflow/pkg/registry"
)

// AIConfig configures the chat-completion client used by AI process nodes.
type AIConfig struct {
	Endpoint string
	Token    string
	Model    string
}

// NewRegistry registers the built-in nodes wired to their real collaborators.
func NewRegistry(log *slog.Logger, aiConfig AIConfig) *registry.Registry {
	reg := registry.NewRegistry(log)

	opts := []ai.HTTPClientOption{}
	if aiConfig.Model != "" {
		opts = append(opts, ai.WithModel(aiConfig.Model))
	}

	reg.RegisterDefaultNodes(registry.Collaborators{
		AI:         ai.NewHTTPClient(aiConfig.Endpoint, aiConfig.Token, log, opts...),
		Clipboard:  clipboard.Default(),
		HTTPClient: &http.Client{Timeout: httppost.DefaultTimeout},
	})

	return reg
}
