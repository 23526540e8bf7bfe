package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"llmgames/meta"
)

const (
	defaultAnthropicURL     = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	anthropicMessagesSuffix = "/v1/messages"
)

type anthropicBackend struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

func newAnthropicBackend(cfg Config, temperature float64) (Backend, error) {
	base := cfg.URL
	if base == "" {
		base = defaultAnthropicURL
	}
	return &anthropicBackend{
		baseURL:     strings.TrimRight(base, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: temperature,
		client:      &http.Client{Timeout: meta.HTTP_TIMEOUT_SECONDS * time.Second},
	}, nil
}

func (a *anthropicBackend) Name() string { return string(VendorAnthropic) }

func (a *anthropicBackend) Invoke(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model":       a.model,
		"max_tokens":  meta.MAX_RESPONSE_TOKENS,
		"temperature": a.temperature,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+anthropicMessagesSuffix, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("anthropic returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(out)))
	}

	var payload struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("anthropic response: %w", err)
	}
	for _, block := range payload.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic returned no text content")
}
