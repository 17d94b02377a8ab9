// Package web provides HTTP handlers and REST API endpoints for records, workflows and captures.
package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/records"
	"github.com/dukex/textflow/pkg/registry"
	"github.com/dukex/textflow/pkg/search"
	"github.com/dukex/textflow/pkg/services"
	"github.com/dukex/textflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	logger    *slog.Logger
	records   *records.Store
	workflows *services.Workflows
	capture   *services.Capture
	validator *validator.Validate
	registry  *registry.Registry
}

func NewAPIHandlers(
	logger *slog.Logger,
	store *records.Store,
	workflows *services.Workflows,
	capture *services.Capture,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		logger:    logger.With("module", "web"),
		records:   store,
		workflows: workflows,
		capture:   capture,
		validator: validator,
		registry:  registry,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	settingsCheck, settingsOk := h.workflows.HealthCheck(c.Context())

	recordsCheck := "Record directory is available"
	recordsOk := true

	if _, err := h.records.Dir(); err != nil {
		recordsCheck = "Record directory is unavailable: " + err.Error()
		recordsOk = false
	}

	status := "unhealthy"
	message := "Textflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if settingsOk && recordsOk {
		status = "healthy"
		message = "Textflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"settings": settingsCheck,
			"records":  recordsCheck,
		},
		"location":  h.records.Location(),
		"executing": h.capture.IsExecuting(),
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	factories := h.registry.GetAvailableNodes()

	response := make([]NodeTypeResponse, 0, len(factories))
	for _, factory := range factories {
		response = append(response, TransformNodeTypeResponse(factory))
	}

	return c.JSON(response)
}

// Records

func (h *APIHandlers) GetRecords(c fiber.Ctx) error {
	visible := search.Filter(h.records.Records(), nil, c.Query("q"))

	return c.JSON(RecordsResponse{
		Records: visible,
		Tags:    h.records.Tags().Entries(),
		Count:   len(visible),
	})
}

func (h *APIHandlers) SearchRecords(c fiber.Ctx) error {
	var query search.Query
	if err := c.Bind().JSON(&query); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return c.JSON(search.Apply(h.records.Records(), query))
}

func (h *APIHandlers) GetTags(c fiber.Ctx) error {
	return c.JSON(h.records.Tags().Entries())
}

func (h *APIHandlers) ReloadRecords(c fiber.Ctx) error {
	list, err := h.records.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(RecordsResponse{
		Records: list,
		Tags:    h.records.Tags().Entries(),
		Count:   len(list),
	})
}

func (h *APIHandlers) GetRecord(c fiber.Ctx) error {
	record, ok := h.records.Get(c.Params("id"))
	if !ok {
		return notFound(c, "Record not found")
	}

	return c.JSON(record)
}

func (h *APIHandlers) CreateRecord(c fiber.Ctx) error {
	var req AddRecordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	record, err := h.records.Add(c.Context(), req.Text, req.Tags)
	if err != nil {
		h.logger.ErrorContext(c.Context(), "Failed to save record", "error", err)

		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *APIHandlers) DeleteRecord(c fiber.Ctx) error {
	if err := h.records.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DeleteRecords(c fiber.Ctx) error {
	var req DeleteRecordsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.records.DeleteBatch(c.Context(), req.IDs); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) UpdateRecordTags(c fiber.Ctx) error {
	var req UpdateTagsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	record, err := h.records.UpdateTags(c.Context(), c.Params("id"), req.Tags)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) AddRecordTag(c fiber.Ctx) error {
	var req AddTagRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	record, err := h.records.AddTag(c.Context(), c.Params("id"), req.Tag)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) RemoveRecordTag(c fiber.Ctx) error {
	record, err := h.records.RemoveTag(c.Context(), c.Params("id"), c.Params("tag"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) ExportRecords(c fiber.Ctx) error {
	var buf bytes.Buffer

	count, err := h.records.ExportAll(c.Context(), &buf)
	if err != nil {
		return internalError(c, err)
	}

	h.logger.InfoContext(c.Context(), "Records exported", "count", count)

	c.Attachment(records.ExportFileName(time.Now()))

	return c.Send(buf.Bytes())
}

// Workflows

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"workflows":          h.workflows.List(),
		"active_workflow_id": h.workflows.ActiveID(),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	wf, err := h.workflows.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req services.CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	created, err := h.workflows.Create(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req services.UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	updated, err := h.workflows.Update(c.Context(), c.Params("id"), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.workflows.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DuplicateWorkflow(c fiber.Ctx) error {
	duplicate, err := h.workflows.Duplicate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(duplicate)
}

func (h *APIHandlers) GetActiveWorkflow(c fiber.Ctx) error {
	active := h.workflows.Active()
	if active == nil {
		return notFound(c, "No active workflow")
	}

	return c.JSON(active)
}

func (h *APIHandlers) SetActiveWorkflow(c fiber.Ctx) error {
	var req SetActiveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	active, err := h.workflows.SetActive(c.Context(), req.ID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(active)
}

// Workflow nodes

func (h *APIHandlers) CreateWorkflowNode(c fiber.Ctx) error {
	var req models.WorkflowNode
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	wf, err := h.workflows.AddNode(c.Context(), c.Params("id"), &req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(wf)
}

func (h *APIHandlers) UpdateWorkflowNode(c fiber.Ctx) error {
	var req UpdateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	wf, err := h.workflows.UpdateNode(c.Context(), c.Params("id"), &models.WorkflowNode{
		ID:      c.Params("nodeId"),
		Enabled: req.Enabled,
		Config:  req.Config,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) DeleteWorkflowNode(c fiber.Ctx) error {
	wf, err := h.workflows.RemoveNode(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) MoveWorkflowNode(c fiber.Ctx) error {
	var req MoveNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	wf, err := h.workflows.MoveNode(c.Context(), c.Params("id"), c.Params("nodeId"), *req.Position)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(wf)
}

// Captures

func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	var req RunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.capture.RunWorkflow(c.Context(), c.Params("id"), req.Text, workflow.WithTags(req.Tags))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) Capture(c fiber.Ctx) error {
	var req RunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	outcome, err := h.capture.RunAndSave(c.Context(), req.Text, req.Tags)
	if err != nil {
		return handleServiceError(c, err)
	}

	status := fiber.StatusOK
	if outcome.Record != nil {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(outcome)
}

func (h *APIHandlers) CommitCapture(c fiber.Ctx) error {
	var req CommitRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	record, err := h.capture.Commit(c.Context(), req.Result)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}
