package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dukex/textflow/pkg/cmd"
	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/services"
	cli "github.com/urfave/cli/v3"
)

var errWorkflowIDRequired = errors.New("workflow id is required")

func workflowsCommand() *cli.Command {
	return &cli.Command{
		Name:    "workflows",
		Aliases: []string{"w"},
		Usage:   "Manage workflows",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List workflows; the active one is marked with *",
				Action: func(ctx context.Context, command *cli.Command) error {
					return withApp(ctx, command, func(_ context.Context, app *cmd.App) error {
						w := stdout(command)
						active := app.Workflows.ActiveID()

						for _, wf := range app.Workflows.List() {
							marker := " "
							if wf.ID == active {
								marker = "*"
							}

							fmt.Fprintf(w, "%s %s\t%s\t%s\t%d nodes\n", marker, wf.ID, wf.Name, wf.Icon, len(wf.Nodes))
						}

						return nil
					})
				},
			},
			{
				Name:      "create",
				Usage:     "Create a workflow",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "icon", Usage: "Symbol name shown for the workflow"},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					return withApp(ctx, command, func(ctx context.Context, app *cmd.App) error {
						wf, err := app.Workflows.Create(ctx, services.CreateWorkflowRequest{
							Name: command.Args().First(),
							Icon: command.String("icon"),
						})
						if err != nil {
							return err
						}

						fmt.Fprintln(stdout(command), wf.ID)

						return nil
					})
				},
			},
			{
				Name:      "rename",
				Usage:     "Rename a workflow",
				ArgsUsage: "<id> <name>",
				Action: workflowAction(func(ctx context.Context, command *cli.Command, app *cmd.App, id string) error {
					name := command.Args().Get(1)

					_, err := app.Workflows.Update(ctx, id, services.UpdateWorkflowRequest{Name: &name})

					return err
				}),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a workflow",
				ArgsUsage: "<id>",
				Action: workflowAction(func(ctx context.Context, _ *cli.Command, app *cmd.App, id string) error {
					return app.Workflows.Delete(ctx, id)
				}),
			},
			{
				Name:      "duplicate",
				Usage:     "Copy a workflow and its nodes",
				ArgsUsage: "<id>",
				Action: workflowAction(func(ctx context.Context, command *cli.Command, app *cmd.App, id string) error {
					wf, err := app.Workflows.Duplicate(ctx, id)
					if err != nil {
						return err
					}

					fmt.Fprintln(stdout(command), wf.ID)

					return nil
				}),
			},
			{
				Name:      "activate",
				Usage:     "Select the workflow used by capture",
				ArgsUsage: "<id>",
				Action: workflowAction(func(ctx context.Context, _ *cli.Command, app *cmd.App, id string) error {
					_, err := app.Workflows.SetActive(ctx, id)

					return err
				}),
			},
			nodesCommand(),
		},
	}
}

func nodesCommand() *cli.Command {
	return &cli.Command{
		Name:  "nodes",
		Usage: "Manage the nodes of a workflow",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List the nodes of a workflow in execution order",
				ArgsUsage: "<workflow-id>",
				Action: workflowAction(func(_ context.Context, command *cli.Command, app *cmd.App, id string) error {
					wf, err := app.Workflows.Get(id)
					if err != nil {
						return err
					}

					printNodes(stdout(command), wf)

					return nil
				}),
			},
			{
				Name:      "add",
				Usage:     "Add a node ahead of the copy and save nodes",
				ArgsUsage: "<workflow-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "Node type (ai_process, http_post)", Required: true},
					&cli.StringFlag{Name: "prompt", Usage: "AI prompt for ai_process nodes"},
					&cli.StringFlag{Name: "host", Usage: "Target host for http_post nodes"},
					&cli.IntFlag{Name: "port", Usage: "Target port for http_post nodes"},
					&cli.BoolFlag{Name: "disabled", Usage: "Add the node disabled"},
				},
				Action: workflowAction(func(ctx context.Context, command *cli.Command, app *cmd.App, id string) error {
					wf, err := app.Workflows.AddNode(ctx, id, &models.WorkflowNode{
						Type:    models.NodeType(command.String("type")),
						Enabled: !command.Bool("disabled"),
						Config:  configFromFlags(command),
					})
					if err != nil {
						return err
					}

					printNodes(stdout(command), wf)

					return nil
				}),
			},
			{
				Name:      "set",
				Usage:     "Replace the configuration of a node",
				ArgsUsage: "<workflow-id> <node-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prompt", Usage: "AI prompt for ai_process nodes"},
					&cli.StringFlag{Name: "host", Usage: "Target host for http_post nodes"},
					&cli.IntFlag{Name: "port", Usage: "Target port for http_post nodes"},
					&cli.BoolFlag{Name: "skip-confirmation", Usage: "Save without confirmation (save nodes)"},
					&cli.BoolFlag{Name: "disabled", Usage: "Disable the node"},
				},
				Action: nodeAction(func(ctx context.Context, command *cli.Command, app *cmd.App, id, nodeID string) (*models.Workflow, error) {
					return app.Workflows.UpdateNode(ctx, id, &models.WorkflowNode{
						ID:      nodeID,
						Enabled: !command.Bool("disabled"),
						Config:  configFromFlags(command),
					})
				}),
			},
			{
				Name:      "enable",
				Usage:     "Enable a node",
				ArgsUsage: "<workflow-id> <node-id>",
				Action:    nodeAction(toggleNode(true)),
			},
			{
				Name:      "disable",
				Usage:     "Disable a node",
				ArgsUsage: "<workflow-id> <node-id>",
				Action:    nodeAction(toggleNode(false)),
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a node; copy and save nodes can only be disabled",
				ArgsUsage: "<workflow-id> <node-id>",
				Action: nodeAction(func(ctx context.Context, _ *cli.Command, app *cmd.App, id, nodeID string) (*models.Workflow, error) {
					return app.Workflows.RemoveNode(ctx, id, nodeID)
				}),
			},
			{
				Name:      "move",
				Usage:     "Move a node to a position among the movable nodes",
				ArgsUsage: "<workflow-id> <node-id> <position>",
				Action: nodeAction(func(ctx context.Context, command *cli.Command, app *cmd.App, id, nodeID string) (*models.Workflow, error) {
					position, err := strconv.Atoi(command.Args().Get(2))
					if err != nil {
						return nil, fmt.Errorf("invalid position: %w", err)
					}

					return app.Workflows.MoveNode(ctx, id, nodeID, position)
				}),
			},
		},
	}
}

func workflowAction(fn func(ctx context.Context, command *cli.Command, app *cmd.App, id string) error) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		id := command.Args().First()
		if id == "" {
			return errWorkflowIDRequired
		}

		return withApp(ctx, command, func(ctx context.Context, app *cmd.App) error {
			return fn(ctx, command, app, id)
		})
	}
}

type nodeFunc func(ctx context.Context, command *cli.Command, app *cmd.App, id, nodeID string) (*models.Workflow, error)

func nodeAction(fn nodeFunc) cli.ActionFunc {
	return workflowAction(func(ctx context.Context, command *cli.Command, app *cmd.App, id string) error {
		nodeID := command.Args().Get(1)
		if nodeID == "" {
			return errors.New("node id is required")
		}

		wf, err := fn(ctx, command, app, id, nodeID)
		if err != nil {
			return err
		}

		printNodes(stdout(command), wf)

		return nil
	})
}

func toggleNode(enabled bool) nodeFunc {
	return func(ctx context.Context, _ *cli.Command, app *cmd.App, id, nodeID string) (*models.Workflow, error) {
		wf, err := app.Workflows.Get(id)
		if err != nil {
			return nil, err
		}

		node, _, ok := wf.NodeByID(nodeID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", services.ErrNodeNotFound, nodeID)
		}

		node.Enabled = enabled

		return app.Workflows.UpdateNode(ctx, id, node)
	}
}

func configFromFlags(command *cli.Command) models.NodeConfig {
	return models.NodeConfig{
		AIPrompt:         command.String("prompt"),
		HTTPHost:         command.String("host"),
		HTTPPort:         int(command.Int("port")),
		SkipConfirmation: command.Bool("skip-confirmation"),
	}
}

func printNodes(w io.Writer, wf *models.Workflow) {
	fmt.Fprintf(w, "%s (%s)\n", wf.Name, wf.ID)

	for i, node := range wf.Nodes {
		state := "on "
		if !node.Enabled {
			state = "off"
		}

		fmt.Fprintf(w, "%d. [%s] %s\t%s%s\n", i, state, node.ID, node.Type, describeConfig(node))
	}
}

func describeConfig(node *models.WorkflowNode) string {
	switch node.Type {
	case models.NodeTypeAIProcess:
		return "\tprompt=" + strconv.Quote(node.Config.AIPrompt)
	case models.NodeTypeHTTPPost:
		return fmt.Sprintf("\thost=%s port=%d", node.Config.HTTPHost, node.Config.HTTPPort)
	case models.NodeTypeSave:
		return fmt.Sprintf("\tskip_confirmation=%t", node.Config.SkipConfirmation)
	default:
		return ""
	}
}
