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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/poiesic/pagefind"
	"github.com/poiesic/pagefind/search"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pagefind",
		Usage: "Find and rank the pages of a PDF that match a query",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding the PDF documents (overrides config)",
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "Directory for the extraction cache (overrides config)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Embedding and vision service host URL (overrides config)",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name (overrides config)",
			},
			&cli.StringFlag{
				Name:  "vision-model",
				Usage: "Vision model name used for OCR (overrides config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of pages transcribed concurrently (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Report OCR progress on stderr",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the PDF documents in the directory",
				Action: listCommand,
			},
			{
				Name:      "info",
				Usage:     "Show document metadata and whether it looks scanned",
				ArgsUsage: "<document>",
				Action:    infoCommand,
			},
			{
				Name:      "process",
				Usage:     "Extract the text of a document",
				ArgsUsage: "<document>",
				Action:    processCommand,
			},
			{
				Name:      "search",
				Usage:     "Rank the pages of a document against a query",
				ArgsUsage: "<document> <query...>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "exact",
						Aliases: []string{"e"},
						Usage:   "Rank by exact matches only, without embeddings",
					},
				},
			},
		},
	}
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(c *cli.Context) (*pagefind.Config, error) {
	cfg := &pagefind.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := pagefind.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if dir := c.String("dir"); dir != "" {
		cfg.Dir = dir
	}
	if cache := c.String("cache"); cache != "" {
		cfg.CacheDir = cache
	}
	if host := c.String("host"); host != "" {
		cfg.AI.Host = host
		cfg.AI.EmbeddingHost = ""
		cfg.AI.VisionHost = ""
	}
	if model := c.String("embedding-model"); model != "" {
		cfg.AI.EmbeddingModel = model
	}
	if model := c.String("vision-model"); model != "" {
		cfg.AI.VisionModel = model
	}
	if workers := c.Int("workers"); workers > 0 {
		cfg.PoolSize = workers
	}

	if cfg.Dir == "" {
		return nil, fmt.Errorf("document directory is required (--dir or config dir)")
	}
	return cfg, nil
}

func openFinder(c *cli.Context) (*pagefind.Finder, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Bool("progress") {
		opts = append(opts, pagefind.WithProgress(c.App.ErrWriter))
	}
	return pagefind.Open(cfg.Dir, opts...)
}

func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt)
}

func listCommand(c *cli.Context) error {
	finder, err := openFinder(c)
	if err != nil {
		return err
	}
	defer finder.Close()

	ctx, cancel := commandContext(c)
	defer cancel()

	names, err := finder.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	return writeJSON(c, names)
}

func infoCommand(c *cli.Context) error {
	name, err := documentArg(c)
	if err != nil {
		return err
	}
	finder, err := openFinder(c)
	if err != nil {
		return err
	}
	defer finder.Close()

	ctx, cancel := commandContext(c)
	defer cancel()

	info, err := finder.Info(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return writeJSON(c, info)
}

func processCommand(c *cli.Context) error {
	name, err := documentArg(c)
	if err != nil {
		return err
	}
	finder, err := openFinder(c)
	if err != nil {
		return err
	}
	defer finder.Close()

	ctx, cancel := commandContext(c)
	defer cancel()

	result, err := finder.Process(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", name, err)
	}
	return writeJSON(c, result)
}

func searchCommand(c *cli.Context) error {
	name, err := documentArg(c)
	if err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(c.Args().Tail(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	finder, err := openFinder(c)
	if err != nil {
		return err
	}
	defer finder.Close()

	ctx, cancel := commandContext(c)
	defer cancel()

	rs, err := finder.Search(ctx, name, query, search.SearchOptions{ExactOnly: c.Bool("exact")})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return writeJSON(c, rs)
}

func documentArg(c *cli.Context) (string, error) {
	name := c.Args().First()
	if name == "" {
		return "", fmt.Errorf("document name is required")
	}
	return name, nil
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Logs go to stderr; stdout carries JSON only.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
