package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// PullStatus is the phase of a model download.
type PullStatus string

const (
	PullDownloading PullStatus = "downloading"
	PullVerifying   PullStatus = "verifying"
	PullWriting     PullStatus = "writing"
	PullComplete    PullStatus = "complete"
	PullError       PullStatus = "error"
)

// PullEvent is one step of a model download. The sequence a pull
// produces is ordered and finite, terminating in complete or error.
type PullEvent struct {
	Status    PullStatus `json:"status"`
	Digest    string     `json:"digest,omitempty"`
	Total     int64      `json:"total,omitempty"`
	Completed int64      `json:"completed,omitempty"`
	Percent   float64    `json:"progressPercent,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// PullModel fetches a model onto a local Ollama instance, streaming
// progress events as the layers download. The returned channel is
// closed after the terminal event.
func PullModel(ctx context.Context, cfg Config) (<-chan PullEvent, error) {
	if cfg.Provider != VendorOllama {
		return nil, fmt.Errorf("model pull is only supported for ollama, not %q", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}
	base := cfg.URL
	if base == "" {
		base = defaultOllamaURL
	}

	body, err := json.Marshal(map[string]any{"name": cfg.Model, "stream": true})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	// No client timeout: large models take a while. Cancellation comes
	// from the request context.
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama pull: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama pull returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(out)))
	}

	events := make(chan PullEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		emit := func(ev PullEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		dec := json.NewDecoder(resp.Body)
		for {
			var line struct {
				Status    string `json:"status"`
				Digest    string `json:"digest"`
				Total     int64  `json:"total"`
				Completed int64  `json:"completed"`
				Error     string `json:"error"`
			}
			err := dec.Decode(&line)
			if err == io.EOF {
				emit(PullEvent{Status: PullError, Message: "pull stream ended before completion"})
				return
			}
			if err != nil {
				emit(PullEvent{Status: PullError, Message: err.Error()})
				return
			}
			if line.Error != "" {
				emit(PullEvent{Status: PullError, Message: line.Error})
				return
			}
			if line.Status == "success" {
				emit(PullEvent{Status: PullComplete, Percent: 100})
				return
			}

			ev := PullEvent{
				Digest:    line.Digest,
				Total:     line.Total,
				Completed: line.Completed,
			}
			switch {
			case strings.HasPrefix(line.Status, "verifying"):
				ev.Status = PullVerifying
			case strings.HasPrefix(line.Status, "writing"),
				strings.HasPrefix(line.Status, "removing"):
				ev.Status = PullWriting
			default:
				ev.Status = PullDownloading
			}
			if line.Total > 0 {
				ev.Percent = float64(line.Completed) / float64(line.Total) * 100
			}
			if !emit(ev) {
				return
			}
		}
	}()
	return events, nil
}
