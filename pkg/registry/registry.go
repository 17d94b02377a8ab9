// Package registry maps node types to the factories that build them.
package registry

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/protocol"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrNodeTypeNotRegistered = errors.New("node type not registered")
	ErrInvalidNodeConfig     = errors.New("invalid node configuration")
)

type Registry struct {
	logger        *slog.Logger
	nodeFactories map[models.NodeType]protocol.NodeFactory
	validate      *validator.Validate
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:        log.With("module", "registry"),
		nodeFactories: make(map[models.NodeType]protocol.NodeFactory),
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterNode adds a factory, replacing any factory registered for the same type.
func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.nodeFactories[factory.ID()] = factory
}

// GetAvailableNodes returns the registered factories ordered by type.
func (r *Registry) GetAvailableNodes() []protocol.NodeFactory {
	factories := make([]protocol.NodeFactory, 0, len(r.nodeFactories))
	for _, factory := range r.nodeFactories {
		factories = append(factories, factory)
	}

	slices.SortFunc(factories, func(a, b protocol.NodeFactory) int {
		return cmp.Compare(a.ID(), b.ID())
	})

	return factories
}

// Factory returns the factory registered for nodeType.
func (r *Registry) Factory(nodeType models.NodeType) (protocol.NodeFactory, bool) {
	factory, ok := r.nodeFactories[nodeType]

	return factory, ok
}

// Validate checks the node's struct tags and its config against the factory schema.
func (r *Registry) Validate(node *models.WorkflowNode) error {
	factory, ok := r.nodeFactories[node.Type]
	if !ok {
		return fmt.Errorf("%w: %w: '%s'", models.ErrConfiguration, ErrNodeTypeNotRegistered, node.Type)
	}

	if err := r.validate.Struct(node); err != nil {
		return fmt.Errorf("%w: %w: %w", models.ErrConfiguration, ErrInvalidNodeConfig, err)
	}

	if err := validateSchema(factory.Schema(), node.Config); err != nil {
		return fmt.Errorf("%w: %w: %w", models.ErrConfiguration, ErrInvalidNodeConfig, err)
	}

	return nil
}

// CreateNode validates node and builds its executable instance.
func (r *Registry) CreateNode(ctx context.Context, node *models.WorkflowNode) (models.Node, error) {
	if err := r.Validate(node); err != nil {
		return nil, err
	}

	factory := r.nodeFactories[node.Type]

	instance, err := factory.Create(ctx, node)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create node", "node_id", node.ID, "node_type", node.Type, "error", err)

		return nil, fmt.Errorf("%w: creating node %s: %w", models.ErrConfiguration, node.ID, err)
	}

	return instance, nil
}

func validateSchema(schema map[string]any, config models.NodeConfig) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return err
	}

	var document map[string]any
	if err := json.Unmarshal(raw, &document); err != nil {
		return err
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(document))
	if err != nil {
		return err
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
