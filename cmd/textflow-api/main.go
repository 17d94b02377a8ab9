package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dukex/textflow/pkg/backup"
	"github.com/dukex/textflow/pkg/cmd"
	"github.com/dukex/textflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort     = 9091
	shutdownTimeout = 10 * time.Second
)

func main() {
	command := &cli.Command{
		Name:                  "textflow-api",
		Usage:                 "Serve records, workflows and captures over HTTP",
		EnableShellCompletion: true,
		Flags: append(cmd.Flags(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "backup-cron",
				Usage:   "Cron expression for scheduled record archives; empty disables backups",
				Sources: cli.EnvVars("BACKUP_CRON"),
			},
			&cli.StringFlag{
				Name:    "backup-dir",
				Usage:   "Directory receiving scheduled archives (default: backups next to the data directory)",
				Sources: cli.EnvVars("BACKUP_DIR"),
			},
			&cli.IntFlag{
				Name:    "backup-keep",
				Usage:   "Number of archives to keep; 0 keeps all",
				Value:   7,
				Sources: cli.EnvVars("BACKUP_KEEP"),
			},
		),
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(os.Stderr, command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("api")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.InfoContext(ctx, "Initializing Textflow API")

	app, err := cmd.NewApp(ctx, logger, cmd.ConfigFromCommand(command))
	if err != nil {
		return err
	}

	defer func() {
		if err := app.Close(context.Background()); err != nil {
			logger.Error("Failed to close application", "error", err)
		}
	}()

	if spec := command.String("backup-cron"); spec != "" {
		dir := command.String("backup-dir")
		if dir == "" {
			dir = filepath.Join(filepath.Dir(command.String("data-dir")), "backups")
		}

		scheduler, err := backup.NewScheduler(app.Records, dir, spec, logger,
			backup.WithRetention(int(command.Int("backup-keep"))))
		if err != nil {
			return err
		}

		if err := scheduler.Start(ctx); err != nil {
			return err
		}

		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := scheduler.Stop(stopCtx); err != nil {
				logger.Error("Failed to stop backup scheduler", "error", err)
			}
		}()
	}

	api := NewAPI(logger, app)
	server := api.App()

	errCh := make(chan error, 1)

	go func() {
		errCh <- api.Start(server, int(command.Int("port")))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down Textflow API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return nil
}
