package workflow

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dukex/textflow/pkg/events"
	"github.com/dukex/textflow/pkg/mocks"
	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/nodes/clipboard"
	"github.com/dukex/textflow/pkg/registry"
	"github.com/dukex/textflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type testEnv struct {
	executor  *Executor
	ai        *mocks.MockAIClient
	clipboard *clipboard.Memory
}

func newTestEnv(t *testing.T, opts ...ExecutorOption) *testEnv {
	t.Helper()

	env := &testEnv{ai: &mocks.MockAIClient{}, clipboard: &clipboard.Memory{}}

	logger := slog.New(slog.DiscardHandler)
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes(registry.Collaborators{AI: env.ai, Clipboard: env.clipboard})

	env.executor = NewExecutor(logger, reg, opts...)

	return env
}

func listenerHostPort(t *testing.T, server *httptest.Server) (string, int) {
	t.Helper()

	host, portStr, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return host, port
}

func TestExecutor_EmptyWorkflowReturnsInput(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.executor.Execute(context.Background(), testutil.CreateTestWorkflow(nil), "as is")
	require.NoError(t, err)

	assert.Equal(t, "as is", result.FinalText)
	assert.Equal(t, "as is", result.OriginalText)
	assert.False(t, result.ShouldSave)
	assert.False(t, result.DidCopyToClipboard)
	assert.Empty(t, env.clipboard.Text())
}

func TestExecutor_RunsEnabledNodesInOrder(t *testing.T) {
	env := newTestEnv(t)
	env.ai.On("Complete", mock.Anything, "upper", "hello").Return("HELLO", nil).Once()
	env.ai.On("Complete", mock.Anything, "exclaim", "HELLO").Return("HELLO!", nil).Once()

	workflow := testutil.CreateTestWorkflow([]*models.WorkflowNode{
		testutil.CreateTestNode(testutil.WithPrompt("upper")),
		testutil.CreateTestNode(testutil.WithPrompt("skipped"), testutil.WithEnabled(false)),
		testutil.CreateTestNode(testutil.WithPrompt("exclaim")),
		testutil.CreateTestNode(testutil.WithType(models.NodeTypeCopyToClipboard)),
		testutil.CreateTestNode(testutil.WithSkipConfirmation(true)),
	})

	var progress []models.Progress

	result, err := env.executor.Execute(context.Background(), workflow, "hello",
		WithTags([]string{"inbox"}),
		WithProgress(func(p models.Progress) { progress = append(progress, p) }),
	)
	require.NoError(t, err)

	assert.Equal(t, "HELLO!", result.FinalText)
	assert.Equal(t, "hello", result.OriginalText)
	assert.Equal(t, []string{"inbox"}, result.Tags)
	assert.True(t, result.ShouldSave)
	assert.True(t, result.SkipConfirmation)
	assert.True(t, result.DidCopyToClipboard)
	assert.Equal(t, "HELLO!", env.clipboard.Text())

	require.Len(t, progress, 5)

	for i := range 4 {
		assert.Equal(t, models.ExecutionStatusRunning, progress[i].Status)
		assert.Equal(t, i, progress[i].StepIndex)
	}

	assert.Equal(t, models.NodeTypeSave, progress[3].NodeType)
	assert.Equal(t, models.ExecutionStatusCompleted, progress[4].Status)

	env.ai.AssertExpectations(t)
}

func TestExecutor_EmptyPromptIsNoop(t *testing.T) {
	env := newTestEnv(t)

	workflow := testutil.CreateTestWorkflow([]*models.WorkflowNode{
		testutil.CreateTestNode(testutil.WithPrompt("")),
	})

	result, err := env.executor.Execute(context.Background(), workflow, "untouched")
	require.NoError(t, err)
	assert.Equal(t, "untouched", result.FinalText)
	env.ai.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_FailFastOnHTTPError(t *testing.T) {
	var posted string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posted = r.Header.Get("Content-Type")

		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	host, port := listenerHostPort(t, server)

	bus := &mocks.MockPublisher{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.AnythingOfType("events.PipelineFailed")).Return(nil).Once()

	env := newTestEnv(t, WithPublisher(bus))
	env.ai.On("Complete", mock.Anything, "x", "input").Return("rewritten", nil)

	workflow := testutil.CreateTestWorkflow([]*models.WorkflowNode{
		testutil.CreateTestNode(testutil.WithPrompt("x")),
		testutil.CreateTestNode(testutil.WithID("http"), testutil.WithHTTPTarget(host, port)),
		testutil.CreateTestNode(testutil.WithType(models.NodeTypeCopyToClipboard)),
		testutil.CreateTestNode(testutil.WithSkipConfirmation(true)),
	})

	var last models.Progress

	result, err := env.executor.Execute(context.Background(), workflow, "input",
		WithProgress(func(p models.Progress) { last = p }))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotEmpty(t, posted)

	nodeErr, ok := AsNodeError(err)
	require.True(t, ok)
	assert.Equal(t, 1, nodeErr.Index)
	assert.Equal(t, "http", nodeErr.NodeID)
	assert.Equal(t, models.NodeTypeHTTPPost, nodeErr.Type)

	assert.Equal(t, models.ExecutionStatusFailed, last.Status)
	assert.Equal(t, 1, last.StepIndex)
	assert.Empty(t, env.clipboard.Text())

	bus.AssertExpectations(t)

	failed := bus.Published()[0].(events.PipelineFailed)
	assert.Equal(t, "http", failed.NodeID)
	assert.Equal(t, workflow.ID, failed.WorkflowID)
}

func TestExecutor_ConfigurationError(t *testing.T) {
	env := newTestEnv(t)

	workflow := testutil.CreateTestWorkflow([]*models.WorkflowNode{
		testutil.CreateTestNode(testutil.WithHTTPTarget("localhost", 70000)),
	})

	_, err := env.executor.Execute(context.Background(), workflow, "x")

	require.ErrorIs(t, err, ErrConfiguration)
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestExecutor_DecodeErrorClassified(t *testing.T) {
	env := newTestEnv(t)
	env.ai.On("Complete", mock.Anything, "p", "x").Return("", errors.Join(models.ErrDecode, errors.New("no content")))

	workflow := testutil.CreateTestWorkflow([]*models.WorkflowNode{testutil.CreateTestNode(testutil.WithPrompt("p"))})

	_, err := env.executor.Execute(context.Background(), workflow, "x")

	require.ErrorIs(t, err, ErrDecode)

	nodeErr, ok := AsNodeError(err)
	require.True(t, ok)
	assert.Equal(t, ErrDecode, nodeErr.Kind())
}

func TestExecutor_UnclassifiedError(t *testing.T) {
	env := newTestEnv(t)
	env.ai.On("Complete", mock.Anything, "p", "x").Return("", context.Canceled)

	workflow := testutil.CreateTestWorkflow([]*models.WorkflowNode{testutil.CreateTestNode(testutil.WithPrompt("p"))})

	_, err := env.executor.Execute(context.Background(), workflow, "x")

	require.ErrorIs(t, err, ErrUnclassified)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTransport)

	nodeErr, ok := AsNodeError(err)
	require.True(t, ok)
	assert.Equal(t, ErrUnclassified, nodeErr.Kind())
}

func TestExecutor_RejectsConcurrentRun(t *testing.T) {
	env := newTestEnv(t)

	release := make(chan struct{})
	entered := make(chan struct{})

	env.ai.On("Complete", mock.Anything, "slow", "x").Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return("done", nil)

	workflow := testutil.CreateTestWorkflow([]*models.WorkflowNode{testutil.CreateTestNode(testutil.WithPrompt("slow"))})

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		_, err := env.executor.Execute(context.Background(), workflow, "x")
		assert.NoError(t, err)
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not start")
	}

	assert.True(t, env.executor.IsExecuting())

	_, err := env.executor.Execute(context.Background(), workflow, "x")
	assert.ErrorIs(t, err, ErrAlreadyExecuting)

	close(release)
	wg.Wait()

	assert.False(t, env.executor.IsExecuting())
}

func TestExecutor_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	env := newTestEnv(t, WithTracer(provider.Tracer("test")))

	workflow := testutil.CreateTestWorkflow([]*models.WorkflowNode{
		testutil.CreateTestNode(testutil.WithSkipConfirmation(false)),
	})

	_, err := env.executor.Execute(context.Background(), workflow, "x")
	require.NoError(t, err)

	names := make([]string, 0, 2)
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}

	assert.Equal(t, []string{"workflow.node", "workflow.execute"}, names)
}
