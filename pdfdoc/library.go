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


package pdfdoc

import (
	"fmt"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	// DefaultProbePages is how many leading pages HasTextLayer inspects.
	DefaultProbePages = 3

	// DefaultProbeMinChars is the text a probed page must exceed to count
	// as having a usable text layer.
	DefaultProbeMinChars = 50
)

// Library reads PDF files from disk. ledongthuc/pdf handles the text layer;
// pdfcpu handles metadata and embedded page images.
// A Library holds no open files and is safe for concurrent use.
type Library struct {
	probePages    int
	probeMinChars int
	logger        *slog.Logger
}

// Option configures a Library.
type Option func(*Library) error

// WithLogger sets a custom logger.
// Default is slog.Default(); nil also selects it.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithProbe sets how many pages HasTextLayer inspects and how many
// characters one of them must exceed.
func WithProbe(pages, minChars int) Option {
	return func(l *Library) error {
		if pages < 1 {
			return fmt.Errorf("probe pages must be positive, got %d", pages)
		}
		if minChars < 0 {
			return fmt.Errorf("probe min chars must not be negative, got %d", minChars)
		}
		l.probePages = pages
		l.probeMinChars = minChars
		return nil
	}
}

// New creates a Library.
func New(opts ...Option) (*Library, error) {
	l := &Library{
		probePages:    DefaultProbePages,
		probeMinChars: DefaultProbeMinChars,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.logger = l.logger.With("component", "pdfdoc")
	return l, nil
}

// pdfcpuConfig returns a fresh relaxed-validation configuration.
func pdfcpuConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}
