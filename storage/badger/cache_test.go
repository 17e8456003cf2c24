package badger

import (
	"context"
	"testing"

	"github.com/poiesic/pagefind/core"
	"github.com/poiesic/pagefind/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(id core.ID) *core.DocumentExtractionResult {
	return &core.DocumentExtractionResult{
		ID: id,
		Pages: []core.Page{
			{Number: 1, Text: "alpha beta", Confidence: 1.0, Source: core.SourceDirect},
			{Number: 2, Text: "ગુજરાતી", Confidence: 0.8, Source: core.SourceOCR},
		},
		Metadata: core.Metadata{
			Title:         "Sample",
			PageCount:     2,
			FileSizeBytes: 1024,
		},
		Method:            core.MethodOCRFallback,
		DetectedLanguages: []string{"eng", "guj"},
	}
}

func TestExtractionCache_PutGet(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	want := sampleResult(42)

	require.NoError(t, cache.Put(ctx, want))

	got, err := cache.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, got)
}

func TestExtractionCache_Miss(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	got, err := cache.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExtractionCache_Overwrite(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	first := sampleResult(1)
	require.NoError(t, cache.Put(ctx, first))

	second := sampleResult(1)
	second.Pages = second.Pages[:1]
	second.Method = core.MethodDirectText
	require.NoError(t, cache.Put(ctx, second))

	got, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got.Pages, 1)
	assert.Equal(t, core.MethodDirectText, got.Method)
}

func TestExtractionCache_Delete(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, sampleResult(3)))
	require.NoError(t, cache.Delete(ctx, 3))

	got, err := cache.Get(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting a missing entry is not an error.
	assert.NoError(t, cache.Delete(ctx, 99))
}

func TestExtractionCache_IDs(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	for _, id := range []core.ID{5, 1, 3} {
		require.NoError(t, cache.Put(ctx, sampleResult(id)))
	}

	ids, err := cache.(*ExtractionCache).IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 3, 5}, ids)
}

func TestExtractionCache_Closed(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	ctx := context.Background()
	_, err = cache.Get(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, cache.Put(ctx, sampleResult(1)), storage.ErrStorageClosed)
	assert.ErrorIs(t, cache.Delete(ctx, 1), storage.ErrStorageClosed)

	// Second close is a no-op.
	assert.NoError(t, cache.Close())
}

func TestExtractionCache_CancelledContext(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = cache.Get(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, cache.Put(ctx, sampleResult(1)), context.Canceled)
}

func TestExtractionCache_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := NewExtractionCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, sampleResult(11)))
	require.NoError(t, cache.Close())

	reopened, err := NewExtractionCache(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, 11)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Sample", got.Metadata.Title)
}

func TestExtractionCache_SharedBackend(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	cache := NewExtractionCacheWithBackend(backend)
	require.NoError(t, cache.Close())
	assert.False(t, backend.IsClosed())
}
