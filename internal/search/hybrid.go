// Package search calls the hybrid semantic and keyword index over FRASER/FOMC documents.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fredgpt/server/internal/agent/model"
	errx "github.com/fredgpt/server/internal/core/error"
	logx "github.com/fredgpt/server/pkg/logger"
)

const (
	serviceName    = "hybrid search"
	hybridEndpoint = "/api/v1/search/hybrid"
	maxBodyBytes   = 8 << 20
)

// ErrNotConfigured is returned by Search when no endpoint was configured.
var ErrNotConfigured = errors.New("hybrid search not configured: set HYBRID_SEARCH_URL and HYBRID_SEARCH_TOKEN")

// Result is one raw hit as returned by the index.
type Result map[string]any

type searchResponse struct {
	Data struct {
		Results []Result `json:"results"`
	} `json:"data"`
}

// Client is a disabled no-op when both URL and token are empty.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient rejects a half-configured endpoint (URL without token or the reverse).
func NewClient(cfg model.SearchConfig, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	token := strings.TrimSpace(cfg.Token)
	if (base == "") != (token == "") {
		return nil, errx.Config("HYBRID_SEARCH_URL and HYBRID_SEARCH_TOKEN must be set together")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		token:      token,
	}
	if base != "" {
		c.endpoint = base
		if !strings.HasSuffix(base, hybridEndpoint) {
			c.endpoint = base + hybridEndpoint
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Configured reports whether searches can be issued.
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != ""
}

// Search posts the query and returns the ranked hits.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logx.Warn().Err(err).Str("service", serviceName).Msg("request failed")
		return nil, errx.WrapUpstream(fmt.Errorf("%s request: %w", serviceName, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errx.WrapUpstream(fmt.Errorf("read %s response: %w", serviceName, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errx.WrapUpstream(&errx.UpstreamError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		})
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", serviceName, err)
	}
	if out.Data.Results == nil {
		return []Result{}, nil
	}
	return out.Data.Results, nil
}
