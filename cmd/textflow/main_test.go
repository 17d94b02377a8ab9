package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukex/textflow/pkg/cmd"
	"github.com/dukex/textflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	dataDir     string
	settingsURL string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	return &cliEnv{
		dataDir:     t.TempDir(),
		settingsURL: "file://" + filepath.Join(t.TempDir(), "settings"),
	}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCommand()
	root.Writer = &out
	root.Reader = strings.NewReader(stdin)

	argv := append([]string{
		"textflow",
		"--data-dir", e.dataDir,
		"--settings-url", e.settingsURL,
		"--log-level", "error",
	}, args...)

	err := root.Run(context.Background(), argv)

	return out.String(), err
}

// app opens the same stores the CLI uses so tests can look up generated ids.
func (e *cliEnv) app(t *testing.T) *cmd.App {
	t.Helper()

	ctx := context.Background()

	app, err := cmd.NewApp(ctx, slog.New(slog.DiscardHandler), cmd.Config{
		DataDir:     e.dataDir,
		SettingsURL: e.settingsURL,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = app.Close(ctx) })

	return app
}

func TestCLI_CaptureWithDefaultWorkflowDoesNotSave(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "", "capture", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)

	out, err = env.run(t, "", "records", "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCLI_CaptureSavesFromStdin(t *testing.T) {
	env := newCLIEnv(t)

	active := env.app(t).Workflows.Active()
	require.NotNil(t, active)

	saveNode := active.Nodes[len(active.Nodes)-1]
	require.Equal(t, models.NodeTypeSave, saveNode.Type)

	_, err := env.run(t, "", "workflows", "nodes", "set", active.ID, saveNode.ID, "--skip-confirmation")
	require.NoError(t, err)

	out, err := env.run(t, "captured note\n", "capture", "--tag", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "captured note\n")
	assert.Contains(t, out, "Saved ")

	out, err = env.run(t, "", "records", "list", "--tag", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "captured note")

	out, err = env.run(t, "", "records", "tags")
	require.NoError(t, err)
	assert.Contains(t, out, "work\t1\n")
}

func TestCLI_TagsEmpty(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "", "records", "tags")
	require.NoError(t, err)
	assert.Equal(t, "No tags\n", out)
}

func TestCLI_CaptureAsksForConfirmation(t *testing.T) {
	env := newCLIEnv(t)

	active := env.app(t).Workflows.Active()
	saveNode := active.Nodes[len(active.Nodes)-1]

	_, err := env.run(t, "", "workflows", "nodes", "enable", active.ID, saveNode.ID)
	require.NoError(t, err)

	out, err := env.run(t, "", "capture", "draft")
	require.NoError(t, err)
	assert.Contains(t, out, "Not saved")

	out, err = env.run(t, "", "capture", "--yes", "draft")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved ")
}

func TestCLI_Workflows(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "", "workflows", "create", "--icon", "star", "Notes")
	require.NoError(t, err)

	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	_, err = env.run(t, "", "workflows", "activate", id)
	require.NoError(t, err)

	out, err = env.run(t, "", "workflows", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* "+id+"\tNotes\tstar")
	assert.Contains(t, out, "Default")

	out, err = env.run(t, "", "workflows", "nodes", "add", "--type", "http_post", "--host", "localhost", "--port", "8080", id)
	require.NoError(t, err)
	assert.Contains(t, out, "http_post\thost=localhost port=8080")
	assert.Contains(t, out, "copy_to_clipboard")

	wf, err := env.app(t).Workflows.Get(id)
	require.NoError(t, err)

	_, err = env.run(t, "", "workflows", "nodes", "remove", id, wf.Nodes[len(wf.Nodes)-1].ID)
	assert.Error(t, err)

	out, err = env.run(t, "", "workflows", "nodes", "remove", id, wf.Nodes[0].ID)
	require.NoError(t, err)
	assert.NotContains(t, out, "http_post")

	_, err = env.run(t, "", "workflows", "delete")
	assert.ErrorIs(t, err, errWorkflowIDRequired)
}

func TestCLI_RecordsRequireID(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "", "records", "show")
	assert.ErrorIs(t, err, errIDRequired)
}
