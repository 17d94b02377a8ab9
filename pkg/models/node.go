// Package models defines core node models for pipeline execution
package models

import (
	"context"
	"slices"
)

// NodeType identifies the kind of processing a node performs.
type NodeType string

const (
	NodeTypeAIProcess       NodeType = "ai_process"
	NodeTypeCopyToClipboard NodeType = "copy_to_clipboard"
	NodeTypeSave            NodeType = "save"
	NodeTypeHTTPPost        NodeType = "http_post"
)

// NodeTypes lists every supported node type.
var NodeTypes = []NodeType{
	NodeTypeAIProcess,
	NodeTypeCopyToClipboard,
	NodeTypeSave,
	NodeTypeHTTPPost,
}

// IsValid reports whether t is a known node type.
func (t NodeType) IsValid() bool {
	return slices.Contains(NodeTypes, t)
}

// IsPinned reports whether nodes of this type are mandatory and pinned to the tail of a workflow.
func (t NodeType) IsPinned() bool {
	return t == NodeTypeCopyToClipboard || t == NodeTypeSave
}

// NodeConfig holds the node-specific settings. Only the fields relevant to the node's type are used.
type NodeConfig struct {
	AIPrompt         string `json:"ai_prompt,omitempty"`
	SkipConfirmation bool   `json:"skip_confirmation,omitempty"`
	HTTPHost         string `json:"http_host,omitempty"         validate:"omitempty,hostname_rfc1123|ip"`
	HTTPPort         int    `json:"http_port,omitempty"         validate:"omitempty,min=1,max=65535"`
}

// WorkflowNode represents a node instance in a workflow.
type WorkflowNode struct {
	ID      string     `json:"id"      validate:"required"`
	Type    NodeType   `json:"type"    validate:"required"`
	Enabled bool       `json:"enabled"`
	Config  NodeConfig `json:"config"`
}

// Clone returns a copy of the node.
func (n *WorkflowNode) Clone() *WorkflowNode {
	clone := *n

	return &clone
}

// ExecutionState is the mutable state threaded through the nodes of a single run.
type ExecutionState struct {
	Buffer             string
	ShouldSave         bool
	SkipConfirmation   bool
	DidCopyToClipboard bool
}

// Node is an executable instance of a WorkflowNode.
type Node interface {
	ID() string
	Type() NodeType
	Execute(ctx context.Context, state *ExecutionState) error
}
