// Package main provides the textflow command-line client.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dukex/textflow/pkg/cmd"
	"github.com/dukex/textflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:                  "textflow",
		Usage:                 "Capture text, run it through workflows and manage saved records",
		EnableShellCompletion: true,
		Flags:                 cmd.Flags(),
		Commands: []*cli.Command{
			captureCommand(),
			recordsCommand(),
			workflowsCommand(),
		},
	}
}

// withApp builds the application from the root flags, runs fn and closes it.
func withApp(ctx context.Context, command *cli.Command, fn func(ctx context.Context, app *cmd.App) error) error {
	log.Setup(os.Stderr, command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("cli")
	ctx = log.WithLogger(ctx, logger)

	app, err := cmd.NewApp(ctx, logger, cmd.ConfigFromCommand(command))
	if err != nil {
		return err
	}

	defer func() {
		if err := app.Close(ctx); err != nil {
			log.FromContext(ctx).ErrorContext(ctx, "Failed to close application", "error", err)
		}
	}()

	return fn(ctx, app)
}

func stdout(command *cli.Command) io.Writer {
	if w := command.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func stdin(command *cli.Command) io.Reader {
	if r := command.Root().Reader; r != nil {
		return r
	}

	return os.Stdin
}
