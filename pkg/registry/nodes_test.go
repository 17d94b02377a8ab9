package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dukex/textflow/pkg/mocks"
	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/nodes/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	registry := NewRegistry(slog.New(slog.DiscardHandler))
	registry.RegisterDefaultNodes(Collaborators{
		AI:        &mocks.MockAIClient{},
		Clipboard: &clipboard.Memory{},
	})

	return registry
}

func TestRegisterDefaultNodes(t *testing.T) {
	registry := newTestRegistry()

	available := registry.GetAvailableNodes()
	require.Len(t, available, len(models.NodeTypes))

	ids := make([]models.NodeType, 0, len(available))
	for _, factory := range available {
		ids = append(ids, factory.ID())
		assert.NotEmpty(t, factory.Name())
		assert.NotEmpty(t, factory.Description())
		assert.Equal(t, "object", factory.Schema()["type"])
	}

	assert.Equal(t, []models.NodeType{
		models.NodeTypeAIProcess,
		models.NodeTypeCopyToClipboard,
		models.NodeTypeHTTPPost,
		models.NodeTypeSave,
	}, ids)
}

func TestCreateNode(t *testing.T) {
	registry := newTestRegistry()

	for _, nodeType := range models.NodeTypes {
		t.Run(string(nodeType), func(t *testing.T) {
			node, err := registry.CreateNode(context.Background(), &models.WorkflowNode{
				ID:   "node-" + string(nodeType),
				Type: nodeType,
			})
			require.NoError(t, err)
			assert.Equal(t, "node-"+string(nodeType), node.ID())
			assert.Equal(t, nodeType, node.Type())
		})
	}
}

func TestCreateNode_UnknownType(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.CreateNode(context.Background(), &models.WorkflowNode{ID: "x", Type: "transform"})

	require.ErrorIs(t, err, ErrNodeTypeNotRegistered)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	registry := newTestRegistry()

	tests := []struct {
		name    string
		node    *models.WorkflowNode
		wantErr bool
	}{
		{
			name: "valid http post",
			node: &models.WorkflowNode{ID: "n", Type: models.NodeTypeHTTPPost, Config: models.NodeConfig{HTTPHost: "10.0.0.2", HTTPPort: 8080}},
		},
		{
			name:    "port out of range",
			node:    &models.WorkflowNode{ID: "n", Type: models.NodeTypeHTTPPost, Config: models.NodeConfig{HTTPPort: 65536}},
			wantErr: true,
		},
		{
			name:    "negative port",
			node:    &models.WorkflowNode{ID: "n", Type: models.NodeTypeHTTPPost, Config: models.NodeConfig{HTTPPort: -5}},
			wantErr: true,
		},
		{
			name:    "host too long",
			node:    &models.WorkflowNode{ID: "n", Type: models.NodeTypeHTTPPost, Config: models.NodeConfig{HTTPHost: string(make([]byte, 300))}},
			wantErr: true,
		},
		{
			name:    "missing id",
			node:    &models.WorkflowNode{Type: models.NodeTypeSave},
			wantErr: true,
		},
		{
			name: "ai prompt",
			node: &models.WorkflowNode{ID: "n", Type: models.NodeTypeAIProcess, Config: models.NodeConfig{AIPrompt: "summarize"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Validate(tt.node)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidNodeConfig)
				assert.ErrorIs(t, err, models.ErrConfiguration)

				return
			}

			assert.NoError(t, err)
		})
	}
}
