// Package main provides the textflow API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/textflow/pkg/cmd"
	"github.com/dukex/textflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	app      *cmd.App
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, app *cmd.App) *API {
	return &API{
		logger:   logger,
		app:      app,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(
		a.logger,
		a.app.Records,
		a.app.Workflows,
		a.app.Capture,
		a.validate,
		a.app.Registry,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Textflow API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(app *fiber.App, port int) error {
	return app.Listen(":" + strconv.Itoa(port))
}
