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


package openai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/pagefind/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyImage is returned when a page image carries no bytes.
var ErrEmptyImage = errors.New("page image is empty")

// Transcriber implements ai.Transcriber using an OpenAI-compatible vision model.
type Transcriber struct {
	client     llms.Model
	confidence float64
	logger     *slog.Logger
}

// newTranscriber is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.VisionHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.VisionModel),
	)
	if err != nil {
		return nil, err
	}

	return &Transcriber{
		client:     client,
		confidence: config.OCRConfidence,
		logger:     slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a new vision transcriber using the provided configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe sends the page image to the vision model and returns its text.
// Vision models report no confidence, so the configured value is attached.
func (t *Transcriber) Transcribe(ctx context.Context, image ai.PageImage, languages []string) (ai.Transcription, error) {
	if len(image.Data) == 0 {
		return ai.Transcription{}, ErrEmptyImage
	}
	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildTranscriptionPrompt(languages)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart("Transcribe this page."),
				llms.BinaryPart(mimeType, image.Data),
			},
		},
	}

	t.logger.Debug("transcribing page", "page", image.PageNumber, "bytes", len(image.Data), "languages", languages)
	response, err := t.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		t.logger.Error("failed to transcribe page", "page", image.PageNumber, "err", err)
		return ai.Transcription{}, err
	}

	if len(response.Choices) < 1 {
		t.logger.Debug("no choices returned from model", "page", image.PageNumber)
		return ai.Transcription{}, nil
	}

	text := cleanTranscription(response.Choices[0].Content)
	if text == "" {
		return ai.Transcription{}, nil
	}
	return ai.Transcription{Text: text, Confidence: t.confidence}, nil
}
