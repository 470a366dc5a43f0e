package model

import (
	"errors"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"min above desired", func(c *Config) { c.Cluster.MinSize = 20 }},
		{"desired above max", func(c *Config) { c.Cluster.Desired = 80 }},
		{"remainder overflows max", func(c *Config) { c.Cluster.MaxSize = 20 }},
		{"zero min length", func(c *Config) { c.Extract.MinSentenceLength = 0 }},
		{"unknown segmenter", func(c *Config) { c.Extract.Segmenter = "spacy" }},
		{"unknown builder", func(c *Config) { c.Index.Builder = "lunr" }},
		{"exec without command", func(c *Config) { c.Index.Builder = "exec"; c.Index.Command = nil }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "mongo" }},
		{"no workers", func(c *Config) { c.Concurrency.Workers = 0 }},
		{"negative priority", func(c *Config) { c.Workflow.MinPriority = -1 }},
		{"negative bootstrap", func(c *Config) { c.Workflow.BootstrapVotes = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
