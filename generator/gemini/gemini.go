// Package gemini implements the generator boundary against the Google
// generative language REST endpoint using its generateContent wire format.
// The request carries the prompt as a single text part; the first part of the
// first candidate in the response is the utterance. Any other shape, an empty
// candidate list or a non-2xx status is a failure.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production generative language endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Options configures the gemini client (endpoint, model id, API key,
// transport). Extend via functional options to preserve stability.
type Options struct {
	BaseURL    string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

// Client calls the generateContent endpoint. One outbound call per Generate,
// no retry, no backoff.
type Client struct {
	opts Options
}

// New creates a gemini client with sensible defaults.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    DefaultBaseURL,
		Model:      "gemini-2.0-flash",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{opts: opts}
}

type requestBody struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type responseRoot struct {
	Candidates []responseCandidate `json:"candidates"`
}

type responseCandidate struct {
	Content responseContent `json:"content"`
}

type responseContent struct {
	Parts []responsePart `json:"parts"`
}

type responsePart struct {
	Text string `json:"text"`
}

// Generate implements generator.Generator with a single generateContent call.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(requestBody{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.opts.BaseURL, "/"), c.opts.Model, url.QueryEscape(strings.TrimSpace(c.opts.APIKey)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	var root responseRoot
	if err := json.Unmarshal(data, &root); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(root.Candidates) == 0 || len(root.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty candidate list")
	}
	return root.Candidates[0].Content.Parts[0].Text, nil
}
