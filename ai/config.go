// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultEmbeddingTimeout bounds one batched embedding call.
	DefaultEmbeddingTimeout = 30 * time.Second

	// DefaultOCRConfidence is reported for vision-model transcriptions,
	// which carry no per-page confidence of their own.
	DefaultOCRConfidence = 0.8
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// VisionHost is the base URL for the vision model used for OCR.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	VisionHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// VisionModel is the model identifier used to transcribe page images.
	// Example: "qwen2.5vl:7b", "gpt-4o-mini"
	VisionModel string

	// APIToken is sent as the bearer token. Local servers accept any value.
	// Default: "none"
	APIToken string

	// EmbeddingTimeout bounds each batched embedding call.
	// Default: 30s
	EmbeddingTimeout time.Duration

	// OCRConfidence is the confidence attached to transcribed pages.
	// Default: 0.8
	OCRConfidence float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithVisionHost sets the vision service host URL.
func WithVisionHost(host string) ConfigOption {
	return func(c *Config) {
		c.VisionHost = host
	}
}

// WithHost sets both embedding and vision hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.VisionHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithVisionModel sets the vision model identifier.
func WithVisionModel(model string) ConfigOption {
	return func(c *Config) {
		c.VisionModel = model
	}
}

// WithAPIToken sets the bearer token sent to both services.
func WithAPIToken(token string) ConfigOption {
	return func(c *Config) {
		c.APIToken = token
	}
}

// WithEmbeddingTimeout sets the per-call embedding timeout.
func WithEmbeddingTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.EmbeddingTimeout = d
	}
}

// WithOCRConfidence sets the confidence reported for transcribed pages.
func WithOCRConfidence(confidence float64) ConfigOption {
	return func(c *Config) {
		c.OCRConfidence = confidence
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and vision use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:    defaultHost,
		VisionHost:       defaultHost,
		EmbeddingModel:   "embeddinggemma",
		VisionModel:      "qwen2.5vl:7b",
		APIToken:         "none",
		EmbeddingTimeout: DefaultEmbeddingTimeout,
		OCRConfidence:    DefaultOCRConfidence,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.VisionHost = normalizeHost(c.VisionHost)
	if c.APIToken == "" {
		c.APIToken = "none"
	}
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.VisionHost == "" {
		return errors.New("ai config: VisionHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.VisionModel == "" {
		return errors.New("ai config: VisionModel is required")
	}
	if c.EmbeddingTimeout <= 0 {
		return errors.New("ai config: EmbeddingTimeout must be positive")
	}
	if c.OCRConfidence < 0 || c.OCRConfidence > 1 {
		return errors.New("ai config: OCRConfidence must be between 0 and 1")
	}
	return nil
}
