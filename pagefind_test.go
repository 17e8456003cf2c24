package pagefind

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/pagefind/ai/mock"
	"github.com/poiesic/pagefind/core"
	"github.com/poiesic/pagefind/pdfdoc"
	"github.com/poiesic/pagefind/search"
	"github.com/poiesic/pagefind/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	foxLine   = "The quick brown fox jumps over the lazy dog near the riverbank at dawn."
	taxLine   = "Quarterly tax filings are due at the end of the month for every branch."
	riverLine = "The river rose overnight and flooded the lower fields of the old farm."
)

func writePDF(t *testing.T, dir, name string, pages []string) {
	t.Helper()
	data := pdfdoc.BuildPDF(pages, "Field Notes", "A. Writer")
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

// keywordProvider embeds text by the presence of a few keywords so that
// similarity is predictable.
func keywordProvider() *mock.MockProvider {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			lower := strings.ToLower(text)
			v := []float32{0, 0, 0, 0.01}
			for j, kw := range []string{"fox", "tax", "river"} {
				if strings.Contains(lower, kw) {
					v[j] = 1
				}
			}
			out[i] = v
		}
		return out, nil
	}
	return mock.NewMockProviderWithServices(embedder, mock.NewMockTranscriber())
}

func openFinder(t *testing.T, dir string, opts ...Option) (*Finder, *mock.MockProvider) {
	t.Helper()
	provider := keywordProvider()
	f, err := Open(dir, append([]Option{WithProvider(provider), WithPoolSize(2)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f, provider
}

func TestOpen(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "absent"), WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
	})

	t.Run("cache dir is a file", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "not_a_dir")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := Open(dir, WithProvider(mock.NewMockProvider()), WithCacheDir(file))
		assert.Error(t, err)
	})

	t.Run("default provider from config", func(t *testing.T) {
		f, err := Open(t.TempDir())
		require.NoError(t, err)
		assert.NoError(t, f.Close())
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		f, err := Open(t.TempDir(), WithProvider(mock.NewMockProvider()), WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, f.logger)
		assert.NoError(t, f.Close())
	})
}

func TestFinder_List(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "b.pdf", []string{foxLine})
	writePDF(t, dir, "a.pdf", []string{foxLine})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	f, _ := openFinder(t, dir)
	names, err := f.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, names)
}

func TestFinder_ProcessDirectText(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "doc.pdf", []string{foxLine, "", taxLine})

	f, provider := openFinder(t, dir)
	result, err := f.Process(context.Background(), "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, core.MethodDirectText, result.Method)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, 1, result.Pages[0].Number)
	assert.Equal(t, 3, result.Pages[1].Number)
	assert.Equal(t, 3, result.Metadata.PageCount)
	assert.Equal(t, "Field Notes", result.Metadata.Title)
	assert.Zero(t, provider.GetMockTranscriber().CallCount())
}

func TestFinder_ProcessShortTextKeepsDirect(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "short.pdf", []string{foxLine, "a", "b"})

	f, _ := openFinder(t, dir)
	result, err := f.Process(context.Background(), "short.pdf")
	require.NoError(t, err)

	// OCR finds no page images, so the direct text survives the fallback.
	assert.Equal(t, core.MethodOCRFallback, result.Method)
	assert.Len(t, result.Pages, 3)
}

func TestFinder_Search(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "doc.pdf", []string{taxLine, foxLine, riverLine})

	f, _ := openFinder(t, dir)
	ctx := context.Background()

	t.Run("hybrid", func(t *testing.T) {
		rs, err := f.Search(ctx, "doc.pdf", "fox", search.SearchOptions{})
		require.NoError(t, err)

		assert.Equal(t, core.SearchTypeHybrid, rs.SearchType)
		assert.Equal(t, 3, rs.TotalPages)
		require.Len(t, rs.Results, 1)
		assert.Equal(t, 2, rs.Results[0].Page)
		assert.True(t, rs.Results[0].HasExactMatch)
	})

	t.Run("exact only", func(t *testing.T) {
		rs, err := f.Search(ctx, "doc.pdf", "THE", search.SearchOptions{ExactOnly: true})
		require.NoError(t, err)

		assert.Equal(t, core.SearchTypeExactMatch, rs.SearchType)
		got := pagesOf(rs)
		require.Len(t, got, 3)
		assert.ElementsMatch(t, []int{2, 3}, got[:2])
		assert.Equal(t, 1, got[2])
		assert.Equal(t, 3, rs.Results[0].MatchCount)
		assert.Equal(t, 2, rs.Results[2].MatchCount)
	})
}

func pagesOf(rs *core.ResultSet) []int {
	out := make([]int, len(rs.Results))
	for i, r := range rs.Results {
		out[i] = r.Page
	}
	return out
}

func TestFinder_SearchEmbeddingDown(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "doc.pdf", []string{taxLine, foxLine})

	f, provider := openFinder(t, dir)
	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, assert.AnError
	}

	rs, err := f.Search(context.Background(), "doc.pdf", "fox", search.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, core.SearchTypeExactMatch, rs.SearchType)
	assert.Equal(t, []int{2}, pagesOf(rs))
}

func TestFinder_SearchNoText(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "blank.pdf", []string{"", ""})

	f, _ := openFinder(t, dir)
	rs, err := f.Search(context.Background(), "blank.pdf", "fox", search.SearchOptions{})
	require.NoError(t, err)

	assert.Empty(t, rs.Results)
	assert.Equal(t, search.NoTextMessage, rs.Message)
	assert.Equal(t, 0, rs.TotalPages)
}

func TestFinder_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.pdf"), []byte("not a pdf"), 0o644))

	f, _ := openFinder(t, dir)
	ctx := context.Background()

	_, err := f.Search(ctx, "missing.pdf", "fox", search.SearchOptions{})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.Search(ctx, "../etc/passwd", "fox", search.SearchOptions{})
	assert.ErrorIs(t, err, storage.ErrInvalidName)

	_, err = f.Search(ctx, "garbage.pdf", "fox", search.SearchOptions{})
	assert.ErrorIs(t, err, core.ErrDocumentUnreadable)
}

func TestFinder_Info(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "text.pdf", []string{foxLine})
	writePDF(t, dir, "scan.pdf", []string{"", ""})

	f, _ := openFinder(t, dir)
	ctx := context.Background()

	info, err := f.Info(ctx, "text.pdf")
	require.NoError(t, err)
	assert.Equal(t, "text.pdf", info.Name)
	assert.False(t, info.Scanned)
	assert.Equal(t, 1, info.Metadata.PageCount)
	assert.NotZero(t, info.ID)

	info, err = f.Info(ctx, "scan.pdf")
	require.NoError(t, err)
	assert.True(t, info.Scanned)
	assert.Equal(t, 2, info.Metadata.PageCount)
}

func TestFinder_Cache(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "doc.pdf", []string{foxLine})
	writePDF(t, dir, "copy.pdf", []string{foxLine})
	cacheDir := filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()

	f, _ := openFinder(t, dir, WithCacheDir(cacheDir))
	first, err := f.Process(ctx, "doc.pdf")
	require.NoError(t, err)

	// Identical bytes under another name share the cache entry.
	second, err := f.Process(ctx, "copy.pdf")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.NoError(t, f.Close())

	// The cache survives reopening.
	reopened, _ := openFinder(t, dir, WithCacheDir(cacheDir))
	third, err := reopened.Process(ctx, "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestFinder_MemoryCache(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "doc.pdf", []string{foxLine})

	f, _ := openFinder(t, dir, WithMemoryCache())
	require.NotNil(t, f.cache)

	result, err := f.Process(context.Background(), "doc.pdf")
	require.NoError(t, err)

	cached, err := f.cache.Get(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, result, cached)
}

func TestFinder_Close(t *testing.T) {
	provider := mock.NewMockProvider()
	f, err := Open(t.TempDir(), WithProvider(provider), WithMemoryCache())
	require.NoError(t, err)

	require.NoError(t, f.Close())
	assert.True(t, provider.(*mock.MockProvider).Closed())
}
