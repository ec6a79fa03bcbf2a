// Package atlascloud talks to the Atlas Cloud GraphQL API to render and
// share schema visualizations.
package atlascloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/itchyny/gojq"

	"github.com/eleven-am/schemaviz/internal/logger"
)

const (
	// DefaultHost is the production Atlas Cloud host.
	DefaultHost    = "https://gh.atlasgo.cloud"
	defaultTimeout = 60 * time.Second
)

// APIEndpoint returns the GraphQL endpoint of host.
func APIEndpoint(host string) string {
	return strings.TrimRight(host, "/") + "/api/query"
}

// UIEndpoint returns the base URL of shared visualizations on host.
func UIEndpoint(host string) string {
	return strings.TrimRight(host, "/") + "/explore"
}

// ShareURL returns the public link of a shared visualization.
func ShareURL(host, extID string) string {
	return UIEndpoint(host) + "/" + extID
}

// Client sends GraphQL operations to Atlas Cloud.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
	log        logger.Logger
}

type Option func(*Client)

// WithHTTPClient sends requests through a copy of hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the client tag sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the GraphQL endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		log:      logger.Atlas(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := http.Client{Timeout: defaultTimeout}
	if c.httpClient != nil {
		hc = *c.httpClient
	}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// execute posts one operation and returns the decoded response document.
func (c *Client) execute(ctx context.Context, operation, query string, variables map[string]any) (map[string]any, error) {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.log.Debug("Sending request", "operation", operation, "endpoint", c.endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", operation, err)
	}

	c.log.Debug("Received response", "operation", operation, "status", resp.StatusCode, "bytes", len(respBody))

	return decodeResponse(resp.StatusCode, respBody)
}

// decodeResponse validates a GraphQL response body. A body that is not a
// JSON object, or that carries an "errors" member, is a ProtocolError.
func decodeResponse(status int, body []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
		if status < 200 || status >= 300 {
			return nil, &HTTPError{StatusCode: status, Body: string(body)}
		}
		return nil, &ProtocolError{Detail: string(body)}
	}

	if errs, ok := doc["errors"]; ok {
		detail, err := json.Marshal(errs)
		if err != nil {
			detail = []byte(fmt.Sprint(errs))
		}
		return nil, &ProtocolError{Detail: string(detail)}
	}

	if status < 200 || status >= 300 {
		return nil, &HTTPError{StatusCode: status, Body: string(body)}
	}

	return doc, nil
}

// mustCompile compiles a jq path expression. It is only called with the
// constant queries of this package.
func mustCompile(expr string) *gojq.Code {
	parsed, err := gojq.Parse(expr)
	if err != nil {
		panic(fmt.Sprintf("invalid query %q: %v", expr, err))
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		panic(fmt.Sprintf("failed to compile query %q: %v", expr, err))
	}
	return code
}

// lookup runs query against doc and returns its first result. It reports
// false when the query yields nothing, null, an error, or a value that is
// not a T.
func lookup[T any](doc map[string]any, query *gojq.Code) (T, bool) {
	var zero T
	if doc == nil {
		return zero, false
	}

	v, ok := query.Run(doc).Next()
	if !ok || v == nil {
		return zero, false
	}
	if _, isErr := v.(error); isErr {
		return zero, false
	}

	t, ok := v.(T)
	return t, ok
}
