package models

// ExecutionResult is produced once per pipeline run and consumed by the caller
// to decide whether the text should be saved.
type ExecutionResult struct {
	FinalText          string   `json:"final_text"`
	OriginalText       string   `json:"original_text"`
	Tags               []string `json:"tags"`
	ShouldSave         bool     `json:"should_save"`
	SkipConfirmation   bool     `json:"skip_confirmation"`
	DidCopyToClipboard bool     `json:"did_copy_to_clipboard"`
}

// ExecutionStatus defines the possible states of a pipeline execution.
type ExecutionStatus string

const (
	ExecutionStatusIdle      ExecutionStatus = "idle"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// Progress reports the observable position of a running pipeline.
// StepIndex counts enabled nodes only and is -1 outside the Running state.
type Progress struct {
	Status    ExecutionStatus `json:"status"`
	StepIndex int             `json:"step_index"`
	NodeID    string          `json:"node_id,omitempty"`
	NodeType  NodeType        `json:"node_type,omitempty"`
	Error     string          `json:"error,omitempty"`
}
