package pagefind

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/poiesic/pagefind/ai"
	"github.com/poiesic/pagefind/extraction"
	"github.com/poiesic/pagefind/search"
)

// Config is the file form of a Finder's settings.
//
// Example:
//
//	dir = "/srv/documents"
//	cache_dir = "/var/cache/pagefind"
//
//	[ai]
//	embedding_host = "http://localhost:11434/v1"
//	embedding_model = "embeddinggemma"
//	embedding_timeout = "30s"
//
//	[search]
//	max_results = 5
type Config struct {
	Dir      string `toml:"dir"`
	CacheDir string `toml:"cache_dir"`
	PoolSize int    `toml:"pool_size"`

	AI         AIConfig         `toml:"ai"`
	Extraction ExtractionConfig `toml:"extraction"`
	Search     SearchConfig     `toml:"search"`
}

// AIConfig mirrors ai.Config. Empty values keep the ai defaults.
type AIConfig struct {
	Host             string  `toml:"host"`
	EmbeddingHost    string  `toml:"embedding_host"`
	VisionHost       string  `toml:"vision_host"`
	EmbeddingModel   string  `toml:"embedding_model"`
	VisionModel      string  `toml:"vision_model"`
	APIToken         string  `toml:"api_token"`
	EmbeddingTimeout string  `toml:"embedding_timeout"`
	OCRConfidence    float64 `toml:"ocr_confidence"`
}

// ExtractionConfig holds extraction selector settings. Unset keys keep the
// defaults; an explicit zero is applied as written.
type ExtractionConfig struct {
	MinAverageChars *int `toml:"min_average_chars"`
}

// SearchConfig holds ranking settings. Unset keys keep the defaults.
type SearchConfig struct {
	RelevanceFloor *float64 `toml:"relevance_floor"`
	ContextChars   *int     `toml:"context_chars"`
	PreviewChars   *int     `toml:"preview_chars"`
	MaxResults     *int     `toml:"max_results"`
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML configuration. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// AIConfig builds an ai.Config from the file settings.
func (c *Config) AIConfig() (*ai.Config, error) {
	var opts []ai.ConfigOption
	a := c.AI
	if a.Host != "" {
		opts = append(opts, ai.WithHost(a.Host))
	}
	if a.EmbeddingHost != "" {
		opts = append(opts, ai.WithEmbeddingHost(a.EmbeddingHost))
	}
	if a.VisionHost != "" {
		opts = append(opts, ai.WithVisionHost(a.VisionHost))
	}
	if a.EmbeddingModel != "" {
		opts = append(opts, ai.WithEmbeddingModel(a.EmbeddingModel))
	}
	if a.VisionModel != "" {
		opts = append(opts, ai.WithVisionModel(a.VisionModel))
	}
	if a.APIToken != "" {
		opts = append(opts, ai.WithAPIToken(a.APIToken))
	}
	if a.EmbeddingTimeout != "" {
		d, err := time.ParseDuration(a.EmbeddingTimeout)
		if err != nil {
			return nil, fmt.Errorf("ai.embedding_timeout: %w", err)
		}
		opts = append(opts, ai.WithEmbeddingTimeout(d))
	}
	if a.OCRConfidence != 0 {
		opts = append(opts, ai.WithOCRConfidence(a.OCRConfidence))
	}

	cfg := ai.NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Options converts the file settings into Finder options.
func (c *Config) Options() ([]Option, error) {
	aiCfg, err := c.AIConfig()
	if err != nil {
		return nil, err
	}

	opts := []Option{WithAIConfig(aiCfg)}
	if c.CacheDir != "" {
		opts = append(opts, WithCacheDir(c.CacheDir))
	}
	if c.PoolSize > 0 {
		opts = append(opts, WithPoolSize(c.PoolSize))
	}
	if n := c.Extraction.MinAverageChars; n != nil {
		opts = append(opts, WithExtractionOptions(extraction.WithMinAverageChars(*n)))
	}

	var searchOpts []search.Option
	sc := c.Search
	if sc.RelevanceFloor != nil {
		searchOpts = append(searchOpts, search.WithRelevanceFloor(*sc.RelevanceFloor))
	}
	if sc.ContextChars != nil {
		searchOpts = append(searchOpts, search.WithContextChars(*sc.ContextChars))
	}
	if sc.PreviewChars != nil {
		searchOpts = append(searchOpts, search.WithPreviewChars(*sc.PreviewChars))
	}
	if sc.MaxResults != nil {
		searchOpts = append(searchOpts, search.WithMaxResults(*sc.MaxResults))
	}
	if len(searchOpts) > 0 {
		opts = append(opts, WithSearchOptions(searchOpts...))
	}
	return opts, nil
}
