package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAddress is where a local Ollama instance listens.
const DefaultAddress = "http://127.0.0.1:11434"

const (
	defaultProbeTimeout    = 5 * time.Second
	defaultGenerateTimeout = 5 * time.Minute
)

// Model describes one model reported by the backend's tags endpoint.
type Model struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
}

// ProbeStatus classifies the outcome of a connection check.
type ProbeStatus string

const (
	StatusOK             ProbeStatus = "ok"
	StatusForbidden      ProbeStatus = "forbidden"
	StatusUnreachable    ProbeStatus = "unreachable"
	StatusInvalidAddress ProbeStatus = "invalid_address"
)

// ProbeResult is the outcome of probing a backend address.
type ProbeResult struct {
	Status    ProbeStatus `json:"status"`
	LatencyMs int64       `json:"latency_ms,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Client talks to an Ollama-compatible inference server. Probe and
// model listing use a short timeout; generation gets a long one since
// a large batch on a slow model can take minutes.
type Client struct {
	probeClient    *http.Client
	generateClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithProbeTimeout overrides the timeout for probe and model listing.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) { c.probeClient.Timeout = d }
}

// WithGenerateTimeout overrides the timeout for generation calls.
func WithGenerateTimeout(d time.Duration) Option {
	return func(c *Client) { c.generateClient.Timeout = d }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		probeClient:    &http.Client{Timeout: defaultProbeTimeout},
		generateClient: &http.Client{Timeout: defaultGenerateTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeAddress prepares a user-entered backend address for use:
// surrounding whitespace is trimmed, full-width colons are replaced
// with the ASCII colon, one trailing slash is stripped, and a missing
// scheme defaults to http. The stored raw value is never mutated; this
// runs on every call.
func NormalizeAddress(raw string) string {
	addr := strings.TrimSpace(raw)
	addr = strings.ReplaceAll(addr, "：", ":")
	addr = strings.TrimSuffix(addr, "/")
	if addr != "" && !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return addr
}

// Probe checks whether a backend is reachable via its tags endpoint.
// A malformed address short-circuits before any network attempt. A 403
// is reported separately from a down service since it usually means an
// origin policy the user can fix locally.
func (c *Client) Probe(ctx context.Context, address string) ProbeResult {
	base := NormalizeAddress(address)

	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ProbeResult{Status: StatusInvalidAddress, Error: "malformed address"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/tags", nil)
	if err != nil {
		return ProbeResult{Status: StatusInvalidAddress, Error: err.Error()}
	}

	start := time.Now()
	resp, err := c.probeClient.Do(req)
	if err != nil {
		return ProbeResult{Status: StatusUnreachable, Error: err.Error()}
	}
	defer resp.Body.Close()
	latency := time.Since(start).Milliseconds()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return ProbeResult{Status: StatusForbidden, LatencyMs: latency}
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return ProbeResult{Status: StatusOK, LatencyMs: latency}
	default:
		return ProbeResult{Status: StatusUnreachable, LatencyMs: latency, Error: fmt.Sprintf("status %d", resp.StatusCode)}
	}
}

// ListModels queries the backend's available models. Discovery is
// best-effort: any failure returns an empty list rather than an error
// so a dead backend never blocks the caller.
func (c *Client) ListModels(ctx context.Context, address string) []Model {
	base := NormalizeAddress(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/tags", nil)
	if err != nil {
		return []Model{}
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		log.Printf("[ollama] model listing failed for %s: %v", base, err)
		return []Model{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ollama] model listing failed for %s: status %d", base, resp.StatusCode)
		return []Model{}
	}

	var tags struct {
		Models []Model `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		log.Printf("[ollama] parse model listing from %s: %v", base, err)
		return []Model{}
	}
	if tags.Models == nil {
		return []Model{}
	}
	return tags.Models
}

// Generate runs a single non-streaming completion and returns the
// trimmed response text. Any transport failure or non-success status
// is an error; the caller decides how to recover.
func (c *Client) Generate(ctx context.Context, address, model, prompt string) (string, error) {
	base := NormalizeAddress(address)

	reqBody := map[string]interface{}{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.3,
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", base+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.generateClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("parse ollama response: %w", err)
	}

	return strings.TrimSpace(genResp.Response), nil
}
