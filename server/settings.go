package server

import (
	"sync"

	"llmgames/provider"
)

// Settings is the in-process holder of the current provider
// configuration. The engine reads it per call and never persists it.
type Settings struct {
	mu  sync.RWMutex
	cfg provider.Config
}

func NewSettings(cfg provider.Config) *Settings {
	return &Settings{cfg: cfg}
}

func (s *Settings) Current() provider.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Settings) Update(cfg provider.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Redacted returns the configuration with secret material blanked, for
// echoing back over the API.
func (s *Settings) Redacted() provider.Config {
	cfg := s.Current()
	if cfg.APIKey != "" {
		cfg.APIKey = "***"
	}
	if cfg.SecretAccessKey != "" {
		cfg.SecretAccessKey = "***"
	}
	return cfg
}
