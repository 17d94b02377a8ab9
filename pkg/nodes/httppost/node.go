// Package httppost provides the node that delivers the buffer to an HTTP receiver.
package httppost

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/textflow/pkg/models"
)

const (
	DefaultHost    = "localhost"
	DefaultPort    = 9999
	ContentType    = "text/plain; charset=utf-8"
	DefaultTimeout = 30 * time.Second
)

// HTTPPostNode posts the buffer verbatim and leaves it unchanged.
type HTTPPostNode struct {
	id     string
	host   string
	port   int
	client *http.Client
}

// NewHTTPPostNode creates a new HTTP post node. Empty host and zero port fall
// back to DefaultHost and DefaultPort.
func NewHTTPPostNode(id, host string, port int, client *http.Client) *HTTPPostNode {
	if strings.TrimSpace(host) == "" {
		host = DefaultHost
	}

	if port == 0 {
		port = DefaultPort
	}

	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &HTTPPostNode{id: id, host: strings.TrimSpace(host), port: port, client: client}
}

// ID returns the node ID.
func (n *HTTPPostNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *HTTPPostNode) Type() models.NodeType {
	return models.NodeTypeHTTPPost
}

// Target returns the URL the node posts to.
func (n *HTTPPostNode) Target() (string, error) {
	if n.port < 1 || n.port > 65535 {
		return "", fmt.Errorf("%w: port %d out of range", models.ErrConfiguration, n.port)
	}

	if strings.ContainsAny(n.host, "/?#@ ") {
		return "", fmt.Errorf("%w: malformed host %q", models.ErrConfiguration, n.host)
	}

	target := "http://" + net.JoinHostPort(strings.Trim(n.host, "[]"), strconv.Itoa(n.port))

	parsed, err := url.Parse(target)
	if err != nil || parsed.Hostname() == "" {
		return "", fmt.Errorf("%w: malformed target %q", models.ErrConfiguration, target)
	}

	return parsed.String(), nil
}

// Execute posts the buffer. A transport failure or non-2xx status is an error.
func (n *HTTPPostNode) Execute(ctx context.Context, state *models.ExecutionState) error {
	target, err := n.Target()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(state.Buffer))
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrConfiguration, err)
	}

	req.Header.Set("Content-Type", ContentType)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: post to %s: %w", models.ErrTransport, target, err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: post to %s: status %d", models.ErrTransport, target, resp.StatusCode)
	}

	return nil
}
