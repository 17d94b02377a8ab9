package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dukex/textflow/pkg/eventbus"
	"github.com/dukex/textflow/pkg/events"
	"github.com/dukex/textflow/pkg/otelhelper"
	"github.com/dukex/textflow/pkg/persistence"
	"github.com/dukex/textflow/pkg/records"
	"github.com/dukex/textflow/pkg/registry"
	"github.com/dukex/textflow/pkg/services"
	"github.com/dukex/textflow/pkg/workflow"
	"github.com/urfave/cli/v3"
)

// Config holds the settings shared by every textflow binary.
type Config struct {
	DataDir      string
	RemoteDir    string
	SettingsURL  string
	EventBus     string
	KafkaBrokers string
	Tracing      bool
	AI           AIConfig
}

// DefaultDataDir is the local record directory used when none is configured.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "textflow"
	}

	return filepath.Join(home, ".textflow", "records")
}

// Flags returns the flags every binary accepts.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "Local directory holding record files",
			Value:   DefaultDataDir(),
			Sources: cli.EnvVars("TEXTFLOW_DATA_DIR"),
		},
		&cli.StringFlag{
			Name:    "remote-dir",
			Usage:   "Synced directory preferred over the local one when writable",
			Sources: cli.EnvVars("TEXTFLOW_REMOTE_DIR"),
		},
		&cli.StringFlag{
			Name:    "settings-url",
			Usage:   "Settings store URL (file://path, redis://..., postgres://...)",
			Sources: cli.EnvVars("SETTINGS_URL"),
		},
		&cli.StringFlag{
			Name:    "ai-endpoint",
			Usage:   "Chat-completion endpoint used by AI process nodes",
			Sources: cli.EnvVars("AI_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "ai-token",
			Usage:   "Bearer token for the AI endpoint",
			Sources: cli.EnvVars("AI_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ai-model",
			Usage:   "Model requested from the AI endpoint",
			Sources: cli.EnvVars("AI_MODEL"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus type (gochannel, kafka)",
			Value:   "gochannel",
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringFlag{
			Name:    "kafka-brokers",
			Usage:   "Comma-separated Kafka brokers used by the kafka event bus",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
		&cli.BoolFlag{
			Name:    "tracing",
			Usage:   "Export OpenTelemetry traces over OTLP/HTTP",
			Sources: cli.EnvVars("OTEL_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format (text, json)",
			Value:   "text",
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
	}
}

// ConfigFromCommand reads the shared flags.
func ConfigFromCommand(command *cli.Command) Config {
	cfg := Config{
		DataDir:      command.String("data-dir"),
		RemoteDir:    command.String("remote-dir"),
		SettingsURL:  command.String("settings-url"),
		EventBus:     command.String("event-bus"),
		KafkaBrokers: command.String("kafka-brokers"),
		Tracing:      command.Bool("tracing"),
		AI: AIConfig{
			Endpoint: command.String("ai-endpoint"),
			Token:    command.String("ai-token"),
			Model:    command.String("ai-model"),
		},
	}

	if cfg.SettingsURL == "" {
		cfg.SettingsURL = "file://" + filepath.Join(filepath.Dir(cfg.DataDir), "settings")
	}

	return cfg
}

// App wires the record store, workflow manager and capture service.
type App struct {
	Logger    *slog.Logger
	Settings  persistence.SettingsStore
	EventBus  eventbus.EventBus
	Registry  *registry.Registry
	Records   *records.Store
	Workflows *services.Workflows
	Executor  *workflow.Executor
	Capture   *services.Capture

	shutdownTracer otelhelper.ShutdownFunc
}

// NewApp opens the settings store, loads workflows and records and starts
// the event bus subscription.
func NewApp(ctx context.Context, logger *slog.Logger, cfg Config) (*App, error) {
	app := &App{Logger: logger}

	settings, err := NewSettingsStore(ctx, logger, cfg.SettingsURL)
	if err != nil {
		return nil, err
	}

	app.Settings = settings

	app.EventBus, err = NewEventBus(cfg, logger)
	if err != nil {
		_ = app.Close(ctx)

		return nil, err
	}

	app.Registry = NewRegistry(logger, cfg.AI)

	executorOpts := []workflow.ExecutorOption{workflow.WithPublisher(app.EventBus)}

	if cfg.Tracing {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, "textflow")
		if err != nil {
			_ = app.Close(ctx)

			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}

		app.shutdownTracer = shutdown
		executorOpts = append(executorOpts, workflow.WithTracer(tracer))
	}

	app.Records = records.NewStore(logger, records.NewDirResolver(cfg.RemoteDir, cfg.DataDir),
		records.WithPublisher(app.EventBus))
	app.Workflows = services.NewWorkflows(logger, settings, app.Registry, services.WithPublisher(app.EventBus))
	app.Executor = workflow.NewExecutor(logger, app.Registry, executorOpts...)
	app.Capture = services.NewCapture(logger, app.Workflows, app.Executor, app.Records)

	if err := app.Workflows.Load(ctx); err != nil {
		_ = app.Close(ctx)

		return nil, err
	}

	if err := app.Records.Reload(ctx); err != nil {
		_ = app.Close(ctx)

		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	if err := app.subscribe(ctx); err != nil {
		_ = app.Close(ctx)

		return nil, err
	}

	return app, nil
}

// subscribe logs every change notification at debug level.
func (a *App) subscribe(ctx context.Context) error {
	logger := a.Logger.With("module", "events")

	for _, eventType := range []events.EventType{
		events.RecordAddedEvent,
		events.RecordUpdatedEvent,
		events.RecordsDeletedEvent,
		events.RecordsReloadedEvent,
		events.WorkflowChangedEvent,
		events.ActiveWorkflowChangedEvent,
		events.PipelineCompletedEvent,
		events.PipelineFailedEvent,
	} {
		err := a.EventBus.Handle(eventType, func(ctx context.Context, event eventbus.Event) error {
			logger.DebugContext(ctx, "Event received", "event_type", eventType, "event", event)

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	return a.EventBus.Subscribe(ctx)
}

// Close releases the event bus, tracer and settings store.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.EventBus != nil {
		if err := a.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event bus: %w", err))
		}
	}

	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer: %w", err))
		}
	}

	if a.Settings != nil {
		if err := a.Settings.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close settings store: %w", err))
		}
	}

	return errors.Join(errs...)
}
