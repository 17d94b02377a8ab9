package workflow

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/dukex/textflow/pkg/eventbus"
	"github.com/dukex/textflow/pkg/events"
	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/otelhelper"
	"github.com/dukex/textflow/pkg/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTracer sets the tracer used for execution and node spans.
func WithTracer(tracer trace.Tracer) ExecutorOption {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

// WithPublisher sets the publisher notified when a run completes or fails.
func WithPublisher(publisher eventbus.EventPublisher) ExecutorOption {
	return func(e *Executor) {
		e.publisher = publisher
	}
}

// ExecuteOption configures a single run.
type ExecuteOption func(*runConfig)

type runConfig struct {
	progress func(models.Progress)
	tags     []string
}

// WithProgress registers a callback invoked before each enabled node and once
// when the run completes or fails.
func WithProgress(fn func(models.Progress)) ExecuteOption {
	return func(c *runConfig) {
		c.progress = fn
	}
}

// WithTags sets the tags carried on the result.
func WithTags(tags []string) ExecuteOption {
	return func(c *runConfig) {
		c.tags = tags
	}
}

// Executor runs workflows one at a time.
type Executor struct {
	registry  *registry.Registry
	logger    *slog.Logger
	tracer    trace.Tracer
	publisher eventbus.EventPublisher
	executing atomic.Bool
}

func NewExecutor(logger *slog.Logger, registry *registry.Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry:  registry,
		logger:    logger.With("module", "workflow_executor"),
		tracer:    otelhelper.NoopTracer(),
		publisher: eventbus.NopPublisher{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// IsExecuting reports whether a run is in progress.
func (e *Executor) IsExecuting() bool {
	return e.executing.Load()
}

// Execute normalizes the workflow and runs its enabled nodes in order over
// input. The first node error aborts the run and is returned as a *NodeError;
// side effects of nodes that already ran are kept. A run in progress cannot
// be interrupted once a node has started.
func (e *Executor) Execute(ctx context.Context, workflow *models.Workflow, input string, opts ...ExecuteOption) (*models.ExecutionResult, error) {
	if !e.executing.CompareAndSwap(false, true) {
		return nil, ErrAlreadyExecuting
	}
	defer e.executing.Store(false)

	cfg := &runConfig{progress: func(models.Progress) {}}
	for _, opt := range opts {
		opt(cfg)
	}

	started := time.Now()
	enabled := NormalizeWorkflow(workflow).EnabledNodes()

	logger := e.logger.With("workflow_id", workflow.ID, "enabled_nodes", len(enabled))

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
		attribute.String(otelhelper.WorkflowNameKey, workflow.Name),
		attribute.Int(otelhelper.InputLengthKey, len(input)),
	)
	defer span.End()

	logger.InfoContext(ctx, "Starting execution of workflow")

	state := &models.ExecutionState{Buffer: input}

	for i, node := range enabled {
		cfg.progress(models.Progress{
			Status:    models.ExecutionStatusRunning,
			StepIndex: i,
			NodeID:    node.ID,
			NodeType:  node.Type,
		})

		if err := e.executeNode(ctx, i, node, state); err != nil {
			nodeErr := &NodeError{Index: i, NodeID: node.ID, Type: node.Type, Err: err}

			logger.ErrorContext(ctx, "Workflow execution failed", "step_index", i, "node_id", node.ID, "node_type", node.Type, "error", err)
			otelhelper.SetError(span, nodeErr,
				attribute.String(otelhelper.NodeIDKey, node.ID),
				attribute.String(otelhelper.ErrorKindKey, nodeErr.Kind().Error()),
			)

			cfg.progress(models.Progress{
				Status:    models.ExecutionStatusFailed,
				StepIndex: i,
				NodeID:    node.ID,
				NodeType:  node.Type,
				Error:     nodeErr.Error(),
			})

			e.publish(ctx, workflow.ID, events.PipelineFailed{
				BaseEvent:  events.NewBaseEvent(events.PipelineFailedEvent),
				WorkflowID: workflow.ID,
				NodeID:     node.ID,
				StepIndex:  i,
				Error:      nodeErr.Error(),
			})

			return nil, nodeErr
		}
	}

	result := &models.ExecutionResult{
		FinalText:          state.Buffer,
		OriginalText:       input,
		Tags:               slices.Clone(cfg.tags),
		ShouldSave:         state.ShouldSave,
		SkipConfirmation:   state.SkipConfirmation,
		DidCopyToClipboard: state.DidCopyToClipboard,
	}

	span.SetAttributes(attribute.Int(otelhelper.OutputLengthKey, len(result.FinalText)))

	cfg.progress(models.Progress{Status: models.ExecutionStatusCompleted, StepIndex: -1})

	logger.InfoContext(ctx, "Completed execution of workflow", "should_save", result.ShouldSave, "copied", result.DidCopyToClipboard)

	e.publish(ctx, workflow.ID, events.PipelineCompleted{
		BaseEvent:          events.NewBaseEvent(events.PipelineCompletedEvent),
		WorkflowID:         workflow.ID,
		ShouldSave:         result.ShouldSave,
		DidCopyToClipboard: result.DidCopyToClipboard,
		Duration:           time.Since(started),
	})

	return result, nil
}

func (e *Executor) executeNode(ctx context.Context, index int, node *models.WorkflowNode, state *models.ExecutionState) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.node",
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
		attribute.Int(otelhelper.StepIndexKey, index),
	)
	defer span.End()

	instance, err := e.registry.CreateNode(ctx, node)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	if err := instance.Execute(ctx, state); err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	return nil
}

func (e *Executor) publish(ctx context.Context, key string, event eventbus.Event) {
	if err := e.publisher.Publish(ctx, key, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
