package mock

import (
	"context"
	"sync"

	"github.com/poiesic/pagefind/ai"
)

// MockTranscriber is a test double for ai.Transcriber.
// By default it treats the image bytes as the page's UTF-8 text, which lets
// tests build "scans" without real images.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	TranscribeFunc func(ctx context.Context, image ai.PageImage, languages []string) (ai.Transcription, error)

	// Confidence is reported by the default behavior.
	Confidence float64

	mu        sync.Mutex
	callCount int
	languages [][]string
}

// NewMockTranscriber creates a mock transcriber reporting confidence 0.8.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{Confidence: ai.DefaultOCRConfidence}
}

// Transcribe records the call and returns the image bytes as text.
func (m *MockTranscriber) Transcribe(ctx context.Context, image ai.PageImage, languages []string) (ai.Transcription, error) {
	m.mu.Lock()
	m.callCount++
	m.languages = append(m.languages, append([]string(nil), languages...))
	fn := m.TranscribeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, image, languages)
	}
	if err := ctx.Err(); err != nil {
		return ai.Transcription{}, err
	}
	return ai.Transcription{Text: string(image.Data), Confidence: m.Confidence}, nil
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Languages returns the language lists passed to each call, in call order.
func (m *MockTranscriber) Languages() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.languages...)
}

// Reset clears the call history and custom function.
func (m *MockTranscriber) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.languages = nil
	m.TranscribeFunc = nil
}
