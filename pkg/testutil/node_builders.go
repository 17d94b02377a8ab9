// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/textflow/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a test WorkflowNode with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:      uuid.New().String(),
		Type:    models.NodeTypeAIProcess,
		Enabled: true,
		Config:  models.NodeConfig{AIPrompt: "Fix grammar"},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithType sets the node type and clears its configuration.
func WithType(nodeType models.NodeType) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = nodeType
		n.Config = models.NodeConfig{}
	}
}

// WithID sets the node ID.
func WithID(id string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ID = id
	}
}

// WithEnabled sets whether the node runs.
func WithEnabled(enabled bool) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Enabled = enabled
	}
}

// WithPrompt configures an AI process node.
func WithPrompt(prompt string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = models.NodeTypeAIProcess
		n.Config.AIPrompt = prompt
	}
}

// WithHTTPTarget configures an HTTP post node.
func WithHTTPTarget(host string, port int) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = models.NodeTypeHTTPPost
		n.Config = models.NodeConfig{HTTPHost: host, HTTPPort: port}
	}
}

// WithSkipConfirmation configures a save node.
func WithSkipConfirmation(skip bool) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = models.NodeTypeSave
		n.Config = models.NodeConfig{SkipConfirmation: skip}
	}
}

// CreateTestWorkflow creates a workflow with the given nodes and default values that can be overridden.
func CreateTestWorkflow(nodes []*models.WorkflowNode, overrides ...func(*models.Workflow)) *models.Workflow {
	workflow := &models.Workflow{
		ID:    uuid.New().String(),
		Name:  "Test Workflow",
		Icon:  models.DefaultWorkflowIcon,
		Nodes: nodes,
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithWorkflowName sets the workflow name.
func WithWorkflowName(name string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Name = name
	}
}
