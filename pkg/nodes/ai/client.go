package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukex/textflow/pkg/models"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second

	promptSeparator = "\n\n"
	maxErrorBody    = 512
)

var (
	ErrMissingToken    = errors.New("missing AI API token")
	ErrInvalidEndpoint = errors.New("invalid AI endpoint")
	ErrRequestFailed   = errors.New("AI request failed")
	ErrEmptyResponse   = errors.New("AI response has no content")
)

// Client rewrites text according to a prompt.
type Client interface {
	Complete(ctx context.Context, prompt, text string) (string, error)
}

// HTTPClient calls a chat-completion endpoint.
type HTTPClient struct {
	endpoint   string
	token      string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

// HTTPClientOption configures an HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithModel sets the model identifier sent with every request.
func WithModel(model string) HTTPClientOption {
	return func(c *HTTPClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates a chat-completion client. Token and endpoint are
// checked on each call so a misconfiguration surfaces as a pipeline failure.
func NewHTTPClient(endpoint, token string, logger *slog.Logger, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:   endpoint,
		token:      token,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logger.With("adapter", "ai_chat"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt and text as a single user message and returns the
// content of the first choice.
func (c *HTTPClient) Complete(ctx context.Context, prompt, text string) (string, error) {
	if strings.TrimSpace(c.token) == "" {
		return "", fmt.Errorf("%w: %w", models.ErrConfiguration, ErrMissingToken)
	}

	endpoint, err := url.Parse(c.endpoint)
	if err != nil || (endpoint.Scheme != "http" && endpoint.Scheme != "https") || endpoint.Host == "" {
		return "", fmt.Errorf("%w: %w: %q", models.ErrConfiguration, ErrInvalidEndpoint, c.endpoint)
	}

	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt + promptSeparator + text}},
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode AI request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %w: %w", models.ErrConfiguration, ErrInvalidEndpoint, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "ai request failed", slog.String("error", err.Error()))

		return "", fmt.Errorf("%w: %w: %w", models.ErrTransport, ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w: reading response: %w", models.ErrTransport, ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.ErrorContext(ctx, "ai request rejected", slog.Int("status", resp.StatusCode))

		return "", fmt.Errorf("%w: %w: status %d: %s", models.ErrTransport, ErrRequestFailed, resp.StatusCode, truncate(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %w: %w", models.ErrDecode, ErrEmptyResponse, err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message == nil || parsed.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("%w: %w", models.ErrDecode, ErrEmptyResponse)
	}

	content := *parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: %w: blank content", models.ErrDecode, ErrEmptyResponse)
	}

	c.log.DebugContext(ctx, "ai completion received", slog.Int("length", len(content)))

	return content, nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody])
	}

	return string(body)
}
