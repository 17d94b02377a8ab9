package web

import (
	"errors"

	"github.com/dukex/textflow/pkg/records"
	"github.com/dukex/textflow/pkg/services"
	"github.com/dukex/textflow/pkg/workflow"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps service, store and pipeline errors to problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case services.IsNotFoundError(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType(notFoundType(err)).
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case records.IsNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("record_not_found").
			WithDetail("record not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case services.IsConflictError(err), errors.Is(err, workflow.ErrAlreadyExecuting):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)
	}

	if nodeErr, ok := workflow.AsNodeError(err); ok {
		return pipelineError(c, nodeErr)
	}

	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// pipelineError reports a failed node. Misconfigured nodes are the caller's
// problem; transport and decode failures come from the remote collaborator.
func pipelineError(c fiber.Ctx, nodeErr *workflow.NodeError) error {
	status := fiber.StatusBadGateway
	problemType := "pipeline_transport_error"

	switch nodeErr.Kind() {
	case workflow.ErrConfiguration:
		status = fiber.StatusUnprocessableEntity
		problemType = "pipeline_configuration_error"
	case workflow.ErrDecode:
		problemType = "pipeline_decode_error"
	case workflow.ErrUnclassified:
		status = fiber.StatusInternalServerError
		problemType = "pipeline_error"
	}

	problem := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(nodeErr.Error())

	return c.Status(status).JSON(problem)
}

func notFoundType(err error) string {
	if errors.Is(err, services.ErrNodeNotFound) {
		return "node_not_found"
	}

	return "workflow_not_found"
}
