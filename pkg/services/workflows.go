package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dukex/textflow/pkg/eventbus"
	"github.com/dukex/textflow/pkg/events"
	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/persistence"
	"github.com/dukex/textflow/pkg/registry"
	"github.com/dukex/textflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	// WorkflowsKey holds the serialized workflow collection.
	WorkflowsKey = "workflows"

	// ActiveWorkflowKey holds the id of the active workflow.
	ActiveWorkflowKey = "active_workflow_id"

	DefaultWorkflowName = "Default"
	duplicateSuffix     = " Copy"
)

// CreateWorkflowRequest describes a new workflow.
type CreateWorkflowRequest struct {
	Name  string                 `json:"name"  validate:"required"`
	Icon  string                 `json:"icon"`
	Nodes []*models.WorkflowNode `json:"nodes" validate:"dive"`
}

// UpdateWorkflowRequest patches a workflow. Nil fields are left unchanged.
type UpdateWorkflowRequest struct {
	Name  *string                `json:"name,omitempty"`
	Icon  *string                `json:"icon,omitempty"`
	Nodes []*models.WorkflowNode `json:"nodes,omitempty"`
}

// WorkflowsOption configures a Workflows manager.
type WorkflowsOption func(*Workflows)

// WithPublisher sets the publisher notified after every workflow mutation.
func WithPublisher(publisher eventbus.EventPublisher) WorkflowsOption {
	return func(w *Workflows) {
		w.publisher = publisher
	}
}

// Workflows owns the workflow collection and the active workflow pointer.
// Every mutation is persisted before the in-memory state changes.
type Workflows struct {
	logger    *slog.Logger
	store     persistence.SettingsStore
	registry  *registry.Registry
	publisher eventbus.EventPublisher
	validate  *validator.Validate

	mu        sync.RWMutex
	workflows []*models.Workflow
	activeID  string
}

// NewWorkflows creates a manager. A nil registry skips node config validation.
func NewWorkflows(logger *slog.Logger, store persistence.SettingsStore, registry *registry.Registry, opts ...WorkflowsOption) *Workflows {
	w := &Workflows{
		logger:    logger.With("module", "workflows"),
		store:     store,
		registry:  registry,
		publisher: eventbus.NopPublisher{},
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// HealthCheck checks the health of the settings store.
func (w *Workflows) HealthCheck(ctx context.Context) (string, bool) {
	if w.store == nil {
		return "Settings store not initialized", false
	}

	if err := w.store.HealthCheck(ctx); err != nil {
		return "Settings store is unhealthy: " + err.Error(), false
	}

	return "Settings store is healthy", true
}

// Load reads the persisted collection. Missing state yields a single default
// workflow; stored node lists are normalized and an unknown active id falls
// back to the first workflow. Repaired state is written back.
func (w *Workflows) Load(ctx context.Context) error {
	stored, err := persistence.GetJSON[[]*models.Workflow](ctx, w.store, WorkflowsKey)
	if err != nil && !persistence.IsKeyNotFound(err) {
		return fmt.Errorf("failed to load workflows: %w", err)
	}

	activeID, err := persistence.GetJSON[string](ctx, w.store, ActiveWorkflowKey)
	if err != nil && !persistence.IsKeyNotFound(err) {
		return fmt.Errorf("failed to load active workflow: %w", err)
	}

	dirty := false
	workflows := make([]*models.Workflow, 0, len(stored))

	for _, wf := range stored {
		if wf == nil {
			dirty = true

			continue
		}

		if !workflow.IsNormalized(wf.Nodes) || wf.Icon == "" || wf.ID == "" {
			dirty = true
		}

		normalized := workflow.NormalizeWorkflow(wf)
		if normalized.ID == "" {
			normalized.ID = uuid.NewString()
		}

		workflows = append(workflows, normalized)
	}

	if len(workflows) == 0 {
		workflows = append(workflows, newDefaultWorkflow())
		dirty = true
	}

	if !slices.ContainsFunc(workflows, func(wf *models.Workflow) bool { return wf.ID == activeID }) {
		activeID = workflows[0].ID
		dirty = true
	}

	if dirty {
		if err := w.persist(ctx, stored, workflows, activeID); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.workflows = workflows
	w.activeID = activeID
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Workflows loaded", "count", len(workflows), "active_workflow_id", activeID, "repaired", dirty)

	return nil
}

// List returns copies of every workflow in stored order.
func (w *Workflows) List() []*models.Workflow {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return cloneAll(w.workflows)
}

// Get returns a copy of the workflow with id.
func (w *Workflows) Get(id string) (*models.Workflow, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	idx := indexOf(w.workflows, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}

	return w.workflows[idx].Clone(), nil
}

// Active returns a copy of the active workflow, or nil before Load.
func (w *Workflows) Active() *models.Workflow {
	w.mu.RLock()
	defer w.mu.RUnlock()

	idx := indexOf(w.workflows, w.activeID)
	if idx < 0 {
		return nil
	}

	return w.workflows[idx].Clone()
}

// ActiveID returns the id of the active workflow.
func (w *Workflows) ActiveID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.activeID
}

// Create adds a workflow. Nodes without ids get one; the node list is normalized.
func (w *Workflows) Create(ctx context.Context, req CreateWorkflowRequest) (*models.Workflow, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, NewValidationError("create", "name_required", "workflow name is required", ErrWorkflowNameRequired)
	}

	wf := &models.Workflow{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Icon:  req.Icon,
		Nodes: assignNodeIDs(req.Nodes),
	}

	var created *models.Workflow

	err := w.mutate(ctx, "create", func(workflows []*models.Workflow, activeID string) ([]*models.Workflow, string, error) {
		created = workflow.NormalizeWorkflow(wf)

		if err := w.check(created); err != nil {
			return nil, "", err
		}

		return append(workflows, created), activeID, nil
	})
	if err != nil {
		return nil, err
	}

	w.publishChange(ctx, created.ID, events.WorkflowCreated)

	return created.Clone(), nil
}

// Update patches the name, icon or node list of a workflow.
func (w *Workflows) Update(ctx context.Context, id string, req UpdateWorkflowRequest) (*models.Workflow, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, NewValidationError("update", "name_required", "workflow name is required", ErrWorkflowNameRequired)
	}

	return w.update(ctx, "update", id, func(wf *models.Workflow) error {
		if req.Name != nil {
			wf.Name = strings.TrimSpace(*req.Name)
		}

		if req.Icon != nil {
			wf.Icon = *req.Icon
		}

		if req.Nodes != nil {
			wf.Nodes = assignNodeIDs(req.Nodes)
		}

		return nil
	})
}

// Delete removes a workflow. The last workflow cannot be deleted; deleting
// the active workflow activates the first remaining one.
func (w *Workflows) Delete(ctx context.Context, id string) error {
	activeChanged := false

	err := w.mutate(ctx, "delete", func(workflows []*models.Workflow, activeID string) ([]*models.Workflow, string, error) {
		idx := indexOf(workflows, id)
		if idx < 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}

		if len(workflows) == 1 {
			return nil, "", ErrLastWorkflow
		}

		remaining := slices.Delete(slices.Clone(workflows), idx, idx+1)

		if activeID == id {
			activeID = remaining[0].ID
			activeChanged = true
		}

		return remaining, activeID, nil
	})
	if err != nil {
		return err
	}

	w.publishChange(ctx, id, events.WorkflowDeleted)

	if activeChanged {
		w.publishActive(ctx)
	}

	return nil
}

// SetActive selects the workflow used for captures.
func (w *Workflows) SetActive(ctx context.Context, id string) (*models.Workflow, error) {
	var active *models.Workflow

	err := w.mutate(ctx, "set_active", func(workflows []*models.Workflow, _ string) ([]*models.Workflow, string, error) {
		idx := indexOf(workflows, id)
		if idx < 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}

		active = workflows[idx]

		return workflows, id, nil
	})
	if err != nil {
		return nil, err
	}

	w.publishActive(ctx)

	return active.Clone(), nil
}

// Duplicate deep-copies a workflow under a fresh id with " Copy" appended to
// its name. Node configuration is copied; node ids are reissued.
func (w *Workflows) Duplicate(ctx context.Context, id string) (*models.Workflow, error) {
	var duplicate *models.Workflow

	err := w.mutate(ctx, "duplicate", func(workflows []*models.Workflow, activeID string) ([]*models.Workflow, string, error) {
		idx := indexOf(workflows, id)
		if idx < 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}

		duplicate = workflows[idx].Clone()
		duplicate.ID = uuid.NewString()
		duplicate.Name += duplicateSuffix

		for _, node := range duplicate.Nodes {
			node.ID = uuid.NewString()
		}

		out := slices.Insert(slices.Clone(workflows), idx+1, duplicate)

		return out, activeID, nil
	})
	if err != nil {
		return nil, err
	}

	w.publishChange(ctx, duplicate.ID, events.WorkflowDuplicated)

	return duplicate.Clone(), nil
}

// AddNode inserts a node ahead of the pinned copy and save nodes.
func (w *Workflows) AddNode(ctx context.Context, workflowID string, node *models.WorkflowNode) (*models.Workflow, error) {
	if node == nil || !node.Type.IsValid() {
		return nil, NewValidationError("add_node", "invalid_node_type", "unknown node type", ErrInvalidNodeType)
	}

	if node.Type.IsPinned() {
		return nil, NewValidationError("add_node", "pinned_node_type", "copy and save nodes are always present", ErrInvalidNodeType)
	}

	added := node.Clone()
	if added.ID == "" {
		added.ID = uuid.NewString()
	}

	return w.update(ctx, "add_node", workflowID, func(wf *models.Workflow) error {
		if _, _, exists := wf.NodeByID(added.ID); exists {
			return NewValidationError("add_node", "duplicate_node_id", "node id already used", ErrInvalidRequest)
		}

		wf.Nodes = slices.Insert(wf.Nodes, pinnedStart(wf.Nodes), added)

		return nil
	})
}

// UpdateNode replaces the enabled flag and configuration of a node. The node type cannot change.
func (w *Workflows) UpdateNode(ctx context.Context, workflowID string, node *models.WorkflowNode) (*models.Workflow, error) {
	if node == nil || node.ID == "" {
		return nil, NewValidationError("update_node", "node_id_required", "node id is required", ErrInvalidRequest)
	}

	return w.update(ctx, "update_node", workflowID, func(wf *models.Workflow) error {
		existing, _, ok := wf.NodeByID(node.ID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, node.ID)
		}

		if node.Type != "" && node.Type != existing.Type {
			return NewValidationError("update_node", "node_type_immutable", "node type cannot change", ErrInvalidNodeType)
		}

		existing.Enabled = node.Enabled
		existing.Config = node.Config

		return nil
	})
}

// RemoveNode deletes a node. Copy and save nodes can only be disabled.
func (w *Workflows) RemoveNode(ctx context.Context, workflowID, nodeID string) (*models.Workflow, error) {
	return w.update(ctx, "remove_node", workflowID, func(wf *models.Workflow) error {
		node, idx, ok := wf.NodeByID(nodeID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
		}

		if node.Type.IsPinned() {
			return ErrPinnedNode
		}

		wf.Nodes = slices.Delete(wf.Nodes, idx, idx+1)

		return nil
	})
}

// MoveNode moves a node to position among the movable nodes, which are all
// nodes ahead of the pinned tail.
func (w *Workflows) MoveNode(ctx context.Context, workflowID, nodeID string, position int) (*models.Workflow, error) {
	return w.update(ctx, "move_node", workflowID, func(wf *models.Workflow) error {
		node, idx, ok := wf.NodeByID(nodeID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
		}

		if node.Type.IsPinned() {
			return ErrPinnedNode
		}

		movable := pinnedStart(wf.Nodes)
		if position < 0 || position >= movable {
			return NewValidationError("move_node", "invalid_position",
				fmt.Sprintf("position must be between 0 and %d", movable-1), ErrInvalidPosition)
		}

		nodes := slices.Delete(wf.Nodes, idx, idx+1)
		wf.Nodes = slices.Insert(nodes, position, node)

		return nil
	})
}

// update applies fn to a copy of one workflow, normalizes and validates it,
// persists the collection and only then swaps it in.
func (w *Workflows) update(ctx context.Context, op, id string, fn func(*models.Workflow) error) (*models.Workflow, error) {
	var updated *models.Workflow

	err := w.mutate(ctx, op, func(workflows []*models.Workflow, activeID string) ([]*models.Workflow, string, error) {
		idx := indexOf(workflows, id)
		if idx < 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}

		candidate := workflows[idx].Clone()
		if err := fn(candidate); err != nil {
			return nil, "", err
		}

		updated = workflow.NormalizeWorkflow(candidate)

		if err := w.check(updated); err != nil {
			return nil, "", err
		}

		out := slices.Clone(workflows)
		out[idx] = updated

		return out, activeID, nil
	})
	if err != nil {
		return nil, err
	}

	w.publishChange(ctx, id, events.WorkflowUpdated)

	return updated.Clone(), nil
}

type mutation func(workflows []*models.Workflow, activeID string) ([]*models.Workflow, string, error)

func (w *Workflows) mutate(ctx context.Context, op string, fn mutation) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	workflows, activeID, err := fn(w.workflows, w.activeID)
	if err != nil {
		return err
	}

	if err := w.persist(ctx, w.workflows, workflows, activeID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to persist workflows", "op", op, "error", err)

		return &ServiceError{Op: op, Code: "persistence_failed", Err: err}
	}

	w.workflows = workflows
	w.activeID = activeID

	return nil
}

// persist writes the collection and then the active id. When the second
// write fails the collection is put back to previous, so the stored pair
// never mixes two states. A nil previous means the collection was not stored.
func (w *Workflows) persist(ctx context.Context, previous, workflows []*models.Workflow, activeID string) error {
	if err := persistence.SetJSON(ctx, w.store, WorkflowsKey, workflows); err != nil {
		return err
	}

	err := persistence.SetJSON(ctx, w.store, ActiveWorkflowKey, activeID)
	if err == nil {
		return nil
	}

	var restoreErr error
	if previous == nil {
		restoreErr = w.store.Delete(ctx, WorkflowsKey)
	} else {
		restoreErr = persistence.SetJSON(ctx, w.store, WorkflowsKey, previous)
	}

	if restoreErr != nil {
		w.logger.ErrorContext(ctx, "Failed to restore workflows after partial write", "error", restoreErr)

		return errors.Join(err, fmt.Errorf("failed to restore workflows: %w", restoreErr))
	}

	return err
}

// check validates the workflow struct and every node configuration.
func (w *Workflows) check(wf *models.Workflow) error {
	if err := w.validate.Struct(wf); err != nil {
		return NewValidationError("validate", "invalid_workflow", err.Error(), errors.Join(ErrInvalidRequest, err))
	}

	for _, node := range wf.Nodes {
		if !node.Type.IsValid() {
			return NewValidationError("validate", "invalid_node_type",
				fmt.Sprintf("unknown node type '%s'", node.Type), ErrInvalidNodeType)
		}

		if w.registry == nil {
			continue
		}

		if err := w.registry.Validate(node); err != nil {
			return NewValidationError("validate", "invalid_node_config", err.Error(), errors.Join(ErrInvalidRequest, err))
		}
	}

	return nil
}

func (w *Workflows) publishChange(ctx context.Context, id string, change events.WorkflowChange) {
	w.publish(ctx, id, events.WorkflowChanged{
		BaseEvent:  events.NewBaseEvent(events.WorkflowChangedEvent),
		WorkflowID: id,
		Change:     change,
	})
}

func (w *Workflows) publishActive(ctx context.Context) {
	id := w.ActiveID()

	w.publish(ctx, id, events.ActiveWorkflowChanged{
		BaseEvent:  events.NewBaseEvent(events.ActiveWorkflowChangedEvent),
		WorkflowID: id,
	})
}

func (w *Workflows) publish(ctx context.Context, key string, event eventbus.Event) {
	if err := w.publisher.Publish(ctx, key, event); err != nil {
		w.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func newDefaultWorkflow() *models.Workflow {
	return workflow.NormalizeWorkflow(&models.Workflow{
		ID:   uuid.NewString(),
		Name: DefaultWorkflowName,
		Icon: models.DefaultWorkflowIcon,
	})
}

func assignNodeIDs(nodes []*models.WorkflowNode) []*models.WorkflowNode {
	out := make([]*models.WorkflowNode, 0, len(nodes))

	for _, node := range nodes {
		if node == nil {
			continue
		}

		clone := node.Clone()
		if clone.ID == "" {
			clone.ID = uuid.NewString()
		}

		out = append(out, clone)
	}

	return out
}

// pinnedStart returns the index of the first pinned node in a normalized list.
func pinnedStart(nodes []*models.WorkflowNode) int {
	idx := slices.IndexFunc(nodes, func(n *models.WorkflowNode) bool { return n.Type.IsPinned() })
	if idx < 0 {
		return len(nodes)
	}

	return idx
}

func indexOf(workflows []*models.Workflow, id string) int {
	return slices.IndexFunc(workflows, func(wf *models.Workflow) bool { return wf.ID == id })
}

func cloneAll(workflows []*models.Workflow) []*models.Workflow {
	out := make([]*models.Workflow, 0, len(workflows))
	for _, wf := range workflows {
		out = append(out, wf.Clone())
	}

	return out
}
