package web

import "github.com/gofiber/fiber/v3"

// Register mounts every API endpoint on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/node-types", h.GetNodeTypes)

	r := router.Group("/records")
	r.Get("/", h.GetRecords)
	r.Post("/", h.CreateRecord)
	r.Post("/search", h.SearchRecords)
	r.Get("/tags", h.GetTags)
	r.Post("/reload", h.ReloadRecords)
	r.Get("/export", h.ExportRecords)
	r.Post("/delete", h.DeleteRecords)
	r.Get("/:id", h.GetRecord)
	r.Delete("/:id", h.DeleteRecord)
	r.Put("/:id/tags", h.UpdateRecordTags)
	r.Post("/:id/tags", h.AddRecordTag)
	r.Delete("/:id/tags/:tag", h.RemoveRecordTag)

	w := router.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Get("/active", h.GetActiveWorkflow)
	w.Put("/active", h.SetActiveWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Patch("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
	w.Post("/:id/duplicate", h.DuplicateWorkflow)
	w.Post("/:id/run", h.RunWorkflow)

	// Node endpoints:
	w.Post("/:id/nodes", h.CreateWorkflowNode)
	w.Patch("/:id/nodes/:nodeId", h.UpdateWorkflowNode)
	w.Delete("/:id/nodes/:nodeId", h.DeleteWorkflowNode)
	w.Post("/:id/nodes/:nodeId/move", h.MoveWorkflowNode)

	cp := router.Group("/capture")
	cp.Post("/", h.Capture)
	cp.Post("/commit", h.CommitCapture)
}
