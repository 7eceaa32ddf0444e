// Package tracker provides the issue-tracker API client and the tools that
// expose it through the gateway. The upstream API is GraphQL over HTTP with
// API-key authentication.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/trackops/issuegate/internal/domain"
)

const defaultBaseURL = "https://api.tracker.example/graphql"

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client is an HTTP client for the tracker's GraphQL API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new tracker API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []graphqlError `json:"errors,omitempty"`
}

type graphqlError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Query executes one GraphQL operation and returns the data object.
// HTTP and GraphQL failures are classified into canonical error codes:
// 429 becomes RATE_LIMIT, 401/403 become AUTHENTICATION_ERROR, transport
// failures become NETWORK_ERROR, and GraphQL errors become TOOL_ERROR.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any) (map[string]any, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.WrapToolError(domain.ErrorCodeNetwork,
			fmt.Sprintf("tracker API unreachable: %v", err), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapToolError(domain.ErrorCodeNetwork,
			fmt.Sprintf("read tracker response: %v", err), err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewToolError(domain.ErrorCodeRateLimit, "tracker API rate limit exceeded")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.NewToolError(domain.ErrorCodeAuthentication, "tracker API rejected credentials")
	case resp.StatusCode >= 500:
		return nil, domain.NewToolError(domain.ErrorCodeNetwork,
			fmt.Sprintf("tracker API unavailable (status %d)", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewToolError(domain.ErrorCodeTool,
			fmt.Sprintf("tracker API error (status %d): %s", resp.StatusCode, string(respBody)))
	}

	var result graphqlResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, domain.WrapToolError(domain.ErrorCodeTool,
			fmt.Sprintf("unmarshal tracker response: %v", err), err)
	}

	if len(result.Errors) > 0 {
		first := result.Errors[0]
		return nil, domain.NewToolError(codeFromExtensions(first.Extensions), first.Message).
			WithDetails(result.Errors)
	}

	return result.Data, nil
}

// codeFromExtensions maps a GraphQL error-extension code onto the canonical
// taxonomy, defaulting to TOOL_ERROR.
func codeFromExtensions(ext map[string]any) domain.ErrorCode {
	code, _ := ext["code"].(string)
	switch code {
	case "RATELIMITED", "RATE_LIMIT":
		return domain.ErrorCodeRateLimit
	case "AUTHENTICATION_ERROR", "UNAUTHENTICATED":
		return domain.ErrorCodeAuthentication
	default:
		return domain.ErrorCodeTool
	}
}
