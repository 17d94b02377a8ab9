package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dukex/textflow/pkg/cmd"
	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/services"
	"github.com/dukex/textflow/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

func captureCommand() *cli.Command {
	return &cli.Command{
		Name:      "capture",
		Aliases:   []string{"run"},
		Usage:     "Run text through the active workflow; reads stdin when no text is given",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "Tag given to the saved record",
			},
			&cli.StringFlag{
				Name:    "workflow",
				Aliases: []string{"w"},
				Usage:   "Workflow id to run instead of the active one",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Save without asking when the workflow requests confirmation",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			text, err := captureText(command)
			if err != nil {
				return err
			}

			return withApp(ctx, command, func(ctx context.Context, app *cmd.App) error {
				return runCapture(ctx, command, app, text)
			})
		},
	}
}

func captureText(command *cli.Command) (string, error) {
	if command.NArg() > 0 {
		return strings.Join(command.Args().Slice(), " "), nil
	}

	data, err := io.ReadAll(stdin(command))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}

	return strings.TrimRight(string(data), "\n"), nil
}

func runCapture(ctx context.Context, command *cli.Command, app *cmd.App, text string) error {
	w := stdout(command)
	opts := []workflow.ExecuteOption{workflow.WithTags(command.StringSlice("tag"))}

	var (
		result *models.ExecutionResult
		err    error
	)

	if id := command.String("workflow"); id != "" {
		result, err = app.Capture.RunWorkflow(ctx, id, text, opts...)
	} else {
		result, err = app.Capture.Run(ctx, text, opts...)
	}

	if err != nil {
		if nodeErr, ok := workflow.AsNodeError(err); ok {
			return fmt.Errorf("step %d (%s) failed: %w", nodeErr.Index+1, nodeErr.Type, nodeErr.Err)
		}

		return err
	}

	fmt.Fprintln(w, result.FinalText)

	if !result.ShouldSave {
		return nil
	}

	if !result.SkipConfirmation && !command.Bool("yes") {
		fmt.Fprintln(w, "Not saved: the workflow asks for confirmation, rerun with --yes to save.")

		return nil
	}

	record, err := app.Capture.Commit(ctx, result)
	if err != nil && !errors.Is(err, services.ErrNothingToSave) {
		return err
	}

	if record != nil {
		fmt.Fprintf(w, "Saved %s (%s)\n", record.ID, record.FileName)
	}

	return nil
}
