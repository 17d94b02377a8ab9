package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dukex/textflow/pkg/cmd"
	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/search"
	cli "github.com/urfave/cli/v3"
)

var errIDRequired = errors.New("record id is required")

func recordsCommand() *cli.Command {
	return &cli.Command{
		Name:    "records",
		Aliases: []string{"r"},
		Usage:   "Manage saved records",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List records, optionally filtered by a search query and tag selections",
				ArgsUsage: "[query]",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Only records carrying tag"},
					&cli.StringSliceFlag{Name: "not-tag", Aliases: []string{"x"}, Usage: "Only records not carrying tag"},
					&cli.BoolFlag{Name: "untagged", Usage: "Only records without tags"},
					&cli.BoolFlag{Name: "tagged", Usage: "Only records with at least one tag"},
					&cli.BoolFlag{Name: "levels", Usage: "Also print the tags selectable at each filter level"},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					return withApp(ctx, command, func(_ context.Context, app *cmd.App) error {
						result := search.Apply(app.Records.Records(), search.Query{
							Text:       strings.Join(command.Args().Slice(), " "),
							Selections: selectionsFromFlags(command),
						})

						w := stdout(command)
						printRecords(w, result.Records)

						if command.Bool("levels") {
							printLevels(w, result.Levels)
						}

						return nil
					})
				},
			},
			{
				Name:      "show",
				Usage:     "Print the text of a record",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, command *cli.Command) error {
					id := command.Args().First()
					if id == "" {
						return errIDRequired
					}

					return withApp(ctx, command, func(_ context.Context, app *cmd.App) error {
						record, ok := app.Records.Get(id)
						if !ok {
							return fmt.Errorf("record %s not found", id)
						}

						fmt.Fprintln(stdout(command), record.Text)

						return nil
					})
				},
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete one or more records",
				ArgsUsage: "<id>...",
				Action: func(ctx context.Context, command *cli.Command) error {
					ids := command.Args().Slice()
					if len(ids) == 0 {
						return errIDRequired
					}

					return withApp(ctx, command, func(ctx context.Context, app *cmd.App) error {
						if len(ids) == 1 {
							return app.Records.Delete(ctx, ids[0])
						}

						return app.Records.DeleteBatch(ctx, ids)
					})
				},
			},
			{
				Name:  "tag",
				Usage: "Change the tags of a record",
				Commands: []*cli.Command{
					tagCommand("add", "Add a tag to a record", func(ctx context.Context, app *cmd.App, id string, tags []string) (*models.Record, error) {
						var record *models.Record

						for _, tag := range tags {
							var err error
							if record, err = app.Records.AddTag(ctx, id, tag); err != nil {
								return nil, err
							}
						}

						return record, nil
					}),
					tagCommand("remove", "Remove a tag from a record", func(ctx context.Context, app *cmd.App, id string, tags []string) (*models.Record, error) {
						var record *models.Record

						for _, tag := range tags {
							var err error
							if record, err = app.Records.RemoveTag(ctx, id, tag); err != nil {
								return nil, err
							}
						}

						return record, nil
					}),
					tagCommand("set", "Replace the tags of a record", func(ctx context.Context, app *cmd.App, id string, tags []string) (*models.Record, error) {
						return app.Records.UpdateTags(ctx, id, tags)
					}),
				},
			},
			{
				Name:  "tags",
				Usage: "List every tag with its record count",
				Action: func(ctx context.Context, command *cli.Command) error {
					return withApp(ctx, command, func(_ context.Context, app *cmd.App) error {
						w := stdout(command)
						index := app.Records.Tags()
						if index.Len() == 0 {
							fmt.Fprintln(w, "No tags")
							return nil
						}

						for _, tag := range index.Tags() {
							fmt.Fprintf(w, "%s\t%d\n", tag, index.Count(tag))
						}

						return nil
					})
				},
			},
			{
				Name:      "export",
				Usage:     "Write a zip archive of every record into a directory",
				ArgsUsage: "[dir]",
				Action: func(ctx context.Context, command *cli.Command) error {
					dir := command.Args().First()
					if dir == "" {
						dir = "."
					}

					return withApp(ctx, command, func(ctx context.Context, app *cmd.App) error {
						path, err := app.Records.ExportToFile(ctx, dir)
						if err != nil {
							return err
						}

						fmt.Fprintln(stdout(command), path)

						return nil
					})
				},
			},
		},
	}
}

type tagFunc func(ctx context.Context, app *cmd.App, id string, tags []string) (*models.Record, error)

func tagCommand(name, usage string, fn tagFunc) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id> <tag>...",
		Action: func(ctx context.Context, command *cli.Command) error {
			args := command.Args().Slice()
			if len(args) == 0 {
				return errIDRequired
			}

			return withApp(ctx, command, func(ctx context.Context, app *cmd.App) error {
				record, err := fn(ctx, app, args[0], args[1:])
				if err != nil {
					return err
				}

				if record != nil {
					fmt.Fprintf(stdout(command), "%s\t%s\n", record.ID, strings.Join(record.Tags, ", "))
				}

				return nil
			})
		},
	}
}

func selectionsFromFlags(command *cli.Command) []models.TagSelection {
	var selections []models.TagSelection

	for _, tag := range command.StringSlice("tag") {
		selections = append(selections, models.IncludeTag(tag))
	}

	for _, tag := range command.StringSlice("not-tag") {
		selections = append(selections, models.ExcludeTag(tag))
	}

	if command.Bool("untagged") {
		selections = append(selections, models.Untagged(false))
	}

	if command.Bool("tagged") {
		selections = append(selections, models.Untagged(true))
	}

	return selections
}

func printRecords(w io.Writer, records []*models.Record) {
	for _, record := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			record.ID,
			record.CreatedAt.Format("2006-01-02 15:04:05"),
			strings.Join(record.Tags, ","),
			strings.ReplaceAll(record.Description, "\n", " "),
		)
	}
}

func printLevels(w io.Writer, levels []models.FilterLevel) {
	for _, level := range levels {
		tags := make([]string, 0, len(level.Tags))
		for _, tag := range level.Tags {
			tags = append(tags, fmt.Sprintf("%s(%d)", tag.Tag, tag.Count))
		}

		fmt.Fprintf(w, "level %d: %s\n", level.Index, strings.Join(tags, " "))
	}
}
