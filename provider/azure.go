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

const defaultAzureAPIVersion = "2024-02-01"

type azureBackend struct {
	endpoint    string
	apiKey      string
	temperature float64
	client      *http.Client
}

func newAzureBackend(cfg Config, temperature float64) (Backend, error) {
	version := cfg.AzureAPIVersion
	if version == "" {
		version = defaultAzureAPIVersion
	}
	endpoint := fmt.Sprintf("https://%s.openai.azure.com/openai/deployments/%s/chat/completions?api-version=%s",
		cfg.AzureInstance, cfg.AzureDeployment, version)
	return &azureBackend{
		endpoint:    endpoint,
		apiKey:      cfg.APIKey,
		temperature: temperature,
		client:      &http.Client{Timeout: meta.HTTP_TIMEOUT_SECONDS * time.Second},
	}, nil
}

func (a *azureBackend) Name() string { return string(VendorAzure) }

func (a *azureBackend) Invoke(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"temperature": a.temperature,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("azure returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(out)))
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("azure response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("azure returned no choices")
	}
	return payload.Choices[0].Message.Content, nil
}
