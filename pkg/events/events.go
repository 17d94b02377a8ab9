// Package events defines change notifications emitted by the record store, workflow manager and pipeline.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every textflow event.
const Topic = "textflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Record store events.
	RecordAddedEvent     EventType = "record.added"
	RecordUpdatedEvent   EventType = "record.updated"
	RecordsDeletedEvent  EventType = "records.deleted"
	RecordsReloadedEvent EventType = "records.reloaded"

	// Workflow collection events.
	WorkflowChangedEvent       EventType = "workflow.changed"
	ActiveWorkflowChangedEvent EventType = "workflow.active.changed"

	// Pipeline execution events.
	PipelineCompletedEvent EventType = "pipeline.completed"
	PipelineFailedEvent    EventType = "pipeline.failed"
)

// WorkflowChange describes what happened to a workflow.
type WorkflowChange string

const (
	WorkflowCreated    WorkflowChange = "created"
	WorkflowUpdated    WorkflowChange = "updated"
	WorkflowDeleted    WorkflowChange = "deleted"
	WorkflowDuplicated WorkflowChange = "duplicated"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]any),
	}
}

type RecordAdded struct {
	BaseEvent

	RecordID string   `json:"record_id"`
	FileName string   `json:"file_name"`
	Tags     []string `json:"tags,omitempty"`
	// ReplacedID is set when an existing record with identical text was removed first.
	ReplacedID string `json:"replaced_id,omitempty"`
}

func (e RecordAdded) GetType() EventType {
	return RecordAddedEvent
}

type RecordUpdated struct {
	BaseEvent

	RecordID string   `json:"record_id"`
	Tags     []string `json:"tags"`
}

func (e RecordUpdated) GetType() EventType {
	return RecordUpdatedEvent
}

type RecordsDeleted struct {
	BaseEvent

	RecordIDs []string `json:"record_ids"`
}

func (e RecordsDeleted) GetType() EventType {
	return RecordsDeletedEvent
}

type RecordsReloaded struct {
	BaseEvent

	Count    int    `json:"count"`
	Location string `json:"location"`
}

func (e RecordsReloaded) GetType() EventType {
	return RecordsReloadedEvent
}

type WorkflowChanged struct {
	BaseEvent

	WorkflowID string         `json:"workflow_id"`
	Change     WorkflowChange `json:"change"`
}

func (e WorkflowChanged) GetType() EventType {
	return WorkflowChangedEvent
}

type ActiveWorkflowChanged struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
}

func (e ActiveWorkflowChanged) GetType() EventType {
	return ActiveWorkflowChangedEvent
}

type PipelineCompleted struct {
	BaseEvent

	WorkflowID         string        `json:"workflow_id"`
	ShouldSave         bool          `json:"should_save"`
	DidCopyToClipboard bool          `json:"did_copy_to_clipboard"`
	Duration           time.Duration `json:"duration"`
}

func (e PipelineCompleted) GetType() EventType {
	return PipelineCompletedEvent
}

type PipelineFailed struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
	NodeID     string `json:"node_id,omitempty"`
	StepIndex  int    `json:"step_index"`
	Error      string `json:"error"`
}

func (e PipelineFailed) GetType() EventType {
	return PipelineFailedEvent
}
