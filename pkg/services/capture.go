package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/records"
	"github.com/dukex/textflow/pkg/workflow"
)

// CaptureOutcome is the result of RunAndSave.
type CaptureOutcome struct {
	Result *models.ExecutionResult `json:"result"`
	// Record is set when the result was saved without confirmation.
	Record *models.Record `json:"record,omitempty"`
	// PendingConfirmation is set when the result asks to be saved but needs confirmation first.
	PendingConfirmation bool `json:"pending_confirmation"`
}

// Capture runs captured text through the active workflow and saves results.
type Capture struct {
	logger    *slog.Logger
	workflows *Workflows
	executor  *workflow.Executor
	records   *records.Store
}

func NewCapture(logger *slog.Logger, workflows *Workflows, executor *workflow.Executor, store *records.Store) *Capture {
	return &Capture{
		logger:    logger.With("module", "capture"),
		workflows: workflows,
		executor:  executor,
		records:   store,
	}
}

// IsExecuting reports whether a pipeline run is in progress.
func (c *Capture) IsExecuting() bool {
	return c.executor.IsExecuting()
}

// Run executes the active workflow over text.
func (c *Capture) Run(ctx context.Context, text string, opts ...workflow.ExecuteOption) (*models.ExecutionResult, error) {
	active := c.workflows.Active()
	if active == nil {
		return nil, fmt.Errorf("%w: no active workflow", ErrWorkflowNotFound)
	}

	return c.run(ctx, active, text, opts...)
}

// RunWorkflow executes the workflow with id over text.
func (c *Capture) RunWorkflow(ctx context.Context, id, text string, opts ...workflow.ExecuteOption) (*models.ExecutionResult, error) {
	wf, err := c.workflows.Get(id)
	if err != nil {
		return nil, err
	}

	return c.run(ctx, wf, text, opts...)
}

func (c *Capture) run(ctx context.Context, wf *models.Workflow, text string, opts ...workflow.ExecuteOption) (*models.ExecutionResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("run", "empty_text", "text cannot be empty", ErrEmptyText)
	}

	result, err := c.executor.Execute(ctx, wf, text, opts...)
	if err != nil {
		c.logger.WarnContext(ctx, "Capture run failed", "workflow_id", wf.ID, "error", err)

		return nil, err
	}

	return result, nil
}

// Commit stores the final text of a result marked for saving.
func (c *Capture) Commit(ctx context.Context, result *models.ExecutionResult) (*models.Record, error) {
	if result == nil || !result.ShouldSave {
		return nil, ErrNothingToSave
	}

	if result.FinalText == "" {
		return nil, NewValidationError("commit", "empty_text", "text cannot be empty", ErrEmptyText)
	}

	record, err := c.records.Add(ctx, result.FinalText, result.Tags)
	if err != nil {
		return record, fmt.Errorf("failed to save record: %w", err)
	}

	return record, nil
}

// RunAndSave runs the active workflow and saves the result right away when
// the save node asked to skip confirmation.
func (c *Capture) RunAndSave(ctx context.Context, text string, tags []string) (*CaptureOutcome, error) {
	result, err := c.Run(ctx, text, workflow.WithTags(tags))
	if err != nil {
		return nil, err
	}

	outcome := &CaptureOutcome{Result: result}

	if !result.ShouldSave {
		return outcome, nil
	}

	if !result.SkipConfirmation {
		outcome.PendingConfirmation = true

		return outcome, nil
	}

	record, err := c.Commit(ctx, result)
	if err != nil {
		return outcome, err
	}

	outcome.Record = record

	return outcome, nil
}
