package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypes(t *testing.T) {
	assert.Equal(t, RecordAddedEvent, RecordAdded{}.GetType())
	assert.Equal(t, RecordUpdatedEvent, RecordUpdated{}.GetType())
	assert.Equal(t, RecordsDeletedEvent, RecordsDeleted{}.GetType())
	assert.Equal(t, RecordsReloadedEvent, RecordsReloaded{}.GetType())
	assert.Equal(t, WorkflowChangedEvent, WorkflowChanged{}.GetType())
	assert.Equal(t, ActiveWorkflowChangedEvent, ActiveWorkflowChanged{}.GetType())
	assert.Equal(t, PipelineCompletedEvent, PipelineCompleted{}.GetType())
	assert.Equal(t, PipelineFailedEvent, PipelineFailed{}.GetType())
}

func TestNewBaseEvent(t *testing.T) {
	event := NewBaseEvent(RecordAddedEvent)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, RecordAddedEvent, event.Type)
	assert.False(t, event.Timestamp.IsZero())
	assert.NotNil(t, event.Metadata)
}

func TestRecordAdded_JSONSerialization(t *testing.T) {
	original := &RecordAdded{
		BaseEvent:  NewBaseEvent(RecordAddedEvent),
		RecordID:   "rec-1",
		FileName:   "2024-01-02-0304-05.md",
		Tags:       []string{"work"},
		ReplacedID: "rec-0",
	}

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"type":"record.added"`)
	assert.Contains(t, string(jsonData), `"record_id":"rec-1"`)
	assert.Contains(t, string(jsonData), `"replaced_id":"rec-0"`)

	var deserialized RecordAdded

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)

	assert.Equal(t, original.Type, deserialized.Type)
	assert.Equal(t, original.RecordID, deserialized.RecordID)
	assert.Equal(t, original.FileName, deserialized.FileName)
	assert.Equal(t, original.Tags, deserialized.Tags)
	assert.Equal(t, original.ReplacedID, deserialized.ReplacedID)
}

func TestPipelineFailed_JSONSerialization(t *testing.T) {
	original := &PipelineFailed{
		BaseEvent:  NewBaseEvent(PipelineFailedEvent),
		WorkflowID: "wf-1",
		NodeID:     "node-2",
		StepIndex:  1,
		Error:      "http post failed: status 500",
	}

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)

	var deserialized PipelineFailed

	require.NoError(t, json.Unmarshal(jsonData, &deserialized))
	assert.Equal(t, original.WorkflowID, deserialized.WorkflowID)
	assert.Equal(t, original.NodeID, deserialized.NodeID)
	assert.Equal(t, original.StepIndex, deserialized.StepIndex)
	assert.Equal(t, original.Error, deserialized.Error)
}
