package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukex/textflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(endpoint, token string, opts ...HTTPClientOption) *HTTPClient {
	return NewHTTPClient(endpoint, token, slog.New(slog.DiscardHandler), opts...)
}

func TestHTTPClient_Complete_Success(t *testing.T) {
	var received chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Fixed text."}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "secret", WithModel("test-model"))

	text, err := client.Complete(context.Background(), "Fix grammar", "fixd text")
	require.NoError(t, err)
	assert.Equal(t, "Fixed text.", text)

	assert.Equal(t, "test-model", received.Model)
	assert.False(t, received.Stream)
	require.Len(t, received.Messages, 1)
	assert.Equal(t, "user", received.Messages[0].Role)
	assert.Equal(t, "Fix grammar\n\nfixd text", received.Messages[0].Content)
}

func TestHTTPClient_Complete_MissingToken(t *testing.T) {
	called := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, "  ").Complete(context.Background(), "p", "t")

	require.ErrorIs(t, err, ErrMissingToken)
	assert.ErrorIs(t, err, models.ErrConfiguration)
	assert.False(t, called)
}

func TestHTTPClient_Complete_InvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "ftp://example.com", "://bad", "localhost:8080"} {
		_, err := newTestClient(endpoint, "secret").Complete(context.Background(), "p", "t")

		assert.ErrorIs(t, err, ErrInvalidEndpoint, endpoint)
		assert.ErrorIs(t, err, models.ErrConfiguration, endpoint)
	}
}

func TestHTTPClient_Complete_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, "secret").Complete(context.Background(), "p", "t")

	require.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, models.ErrTransport)
	assert.Contains(t, err.Error(), "429")
}

func TestHTTPClient_Complete_EmptyResponse(t *testing.T) {
	for name, body := range map[string]string{
		"no choices":      `{"choices":[]}`,
		"no message":      `{"choices":[{}]}`,
		"no content":      `{"choices":[{"message":{"role":"assistant"}}]}`,
		"empty content":   `{"choices":[{"message":{"role":"assistant","content":""}}]}`,
		"blank content":   `{"choices":[{"message":{"role":"assistant","content":" \n "}}]}`,
		"not json":        `<html>`,
		"unexpected type": `{"choices":"nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, "secret").Complete(context.Background(), "p", "t")

			require.ErrorIs(t, err, ErrEmptyResponse)
			assert.ErrorIs(t, err, models.ErrDecode)
		})
	}
}

func TestHTTPClient_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, "secret", WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))

	_, err := client.Complete(context.Background(), "p", "t")

	require.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, models.ErrTransport)
}
