package ocr

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	t.Run("reports every interval", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProgressTracker(&buf, "OCR", 10, 5)
		p.Start()

		p.Increment(4)
		assert.Empty(t, buf.String())

		p.Increment(1)
		assert.Contains(t, buf.String(), "OCR: 5/10 pages (50.0%)")
	})

	t.Run("caps at total", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProgressTracker(&buf, "OCR", 3, 1)
		p.Start()
		p.Increment(10)
		assert.Equal(t, 3, p.Current())
	})

	t.Run("ignored before start", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProgressTracker(&buf, "OCR", 3, 1)
		p.Increment(1)
		p.Finish()
		assert.Zero(t, p.Current())
		assert.Empty(t, buf.String())
	})

	t.Run("finish prints final line", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProgressTracker(&buf, "OCR", 4, 100)
		p.Start()
		p.Increment(1)
		p.Finish()
		assert.True(t, strings.HasSuffix(buf.String(), "\n"))
		assert.Contains(t, buf.String(), "4/4 pages (100.0%)")
	})
}
