// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package awards is the client for the award lookup service, the crawler
// front end that returns NSTC award records for an investigator name.
package awards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/research-crawler/internal/httputil"
	"github.com/pdiddy/research-crawler/internal/logging"
	"github.com/pdiddy/research-crawler/pkg/types"
)

// DefaultBaseURL is the local development endpoint used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

const (
	awardsPath = "/api/awards"
	detailPath = "/api/awards/detail/"
	healthPath = "/api/health"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "research-crawler/0.1"
	defaultRPS       = 2.0
	defaultBurst     = 4

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 16 << 20
)

// Client is a rate-limited client for the award lookup service.
type Client struct {
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a client for the service at cfg.BaseURL. A blank base
// URL falls back to DefaultBaseURL; zero limits fall back to defaults.
func NewClient(cfg types.LookupConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries: cfg.MaxRetries,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// LookupAwards returns the award records for an investigator name. A 2xx
// response whose body is valid JSON but not an array yields no records and
// no error. A 2xx response with an invalid body returns ErrMalformedBody.
// Non-2xx responses return an *APIError.
func (c *Client) LookupAwards(ctx context.Context, piName string) ([]types.AwardRecord, error) {
	piName = strings.TrimSpace(piName)
	if piName == "" {
		return nil, ErrEmptyName
	}

	reqURL := c.baseURL + awardsPath + "?" + url.Values{"pi_name": {piName}}.Encode()
	body, err := c.get(ctx, "lookup", reqURL)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("award lookup done", "pi_name", piName, "records", len(records))
	return records, nil
}

// ImpactDetail returns the full impact statement of one project.
func (c *Client) ImpactDetail(ctx context.Context, projectNo string) (string, error) {
	projectNo = strings.TrimSpace(projectNo)
	if projectNo == "" {
		return "", ErrEmptyProjectNo
	}

	body, err := c.get(ctx, "detail", c.baseURL+detailPath+url.PathEscape(projectNo))
	if err != nil {
		return "", err
	}

	var detail struct {
		ProjectNo string `json:"project_no"`
		Impact    string `json:"impact"`
	}
	if err := json.Unmarshal(body, &detail); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return detail.Impact, nil
}

// Health reports the service's self-declared status (e.g. "healthy").
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "health", c.baseURL+healthPath)
	if err != nil {
		return "", err
	}
	var status struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return status.Status, nil
}

// get performs a rate-limited GET with retries and returns the body of a
// 2xx response. Non-2xx responses become *APIError.
func (c *Client) get(ctx context.Context, op, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("award service request", "op", op, "url", req.URL.Redacted())

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries, logger)
	if err != nil {
		return nil, fmt.Errorf("award service %s request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Detail: parseDetail(body)}
		logger.Debug("award service error", "op", op, "status", resp.StatusCode, "detail", apiErr.Detail)
		return nil, apiErr
	}
	return body, nil
}

// decodeRecords parses a lookup body. Only a top-level array carries
// records; any other valid JSON is an empty result. Array elements that are
// not objects are skipped.
func decodeRecords(body []byte) ([]types.AwardRecord, error) {
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, ErrMalformedBody
	}
	if len(body) == 0 || body[0] != '[' {
		return []types.AwardRecord{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	records := make([]types.AwardRecord, 0, len(raw))
	for _, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			continue
		}
		var r types.AwardRecord
		if err := json.Unmarshal(elem, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		records = append(records, r)
	}
	return records, nil
}
