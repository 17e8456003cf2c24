package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/poiesic/pagefind/core"
	"github.com/poiesic/pagefind/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLibrary struct {
	pages   []core.Page
	err     error
	meta    core.Metadata
	metaErr error
	calls   atomic.Int32
}

func (f *fakeLibrary) ExtractDirect(ctx context.Context, doc core.Document) ([]core.Page, error) {
	f.calls.Add(1)
	return f.pages, f.err
}

func (f *fakeLibrary) Metadata(ctx context.Context, doc core.Document) (core.Metadata, error) {
	return f.meta, f.metaErr
}

type fakeOCR struct {
	scanned     bool
	scannedErr  error
	languages   []string
	languageErr error
	pages       []core.Page
	err         error
	calls       atomic.Int32
	gotLangs    []string
}

func (f *fakeOCR) IsScanned(ctx context.Context, doc core.Document) (bool, error) {
	return f.scanned, f.scannedErr
}

func (f *fakeOCR) DetectLanguages(ctx context.Context, doc core.Document) ([]string, error) {
	return f.languages, f.languageErr
}

func (f *fakeOCR) ExtractViaOCR(ctx context.Context, doc core.Document, languages []string) ([]core.Page, error) {
	f.calls.Add(1)
	f.gotLangs = languages
	return f.pages, f.err
}

var testDoc = core.Document{ID: 99, Name: "doc.pdf", Path: "/tmp/doc.pdf"}

func direct(n int, text string) core.Page {
	return core.Page{Number: n, Text: text, Confidence: 1.0, Source: core.SourceDirect}
}

func scannedPage(n int, text string) core.Page {
	return core.Page{Number: n, Text: text, Confidence: 0.8, Source: core.SourceOCR}
}

func newSelector(t *testing.T, lib DocumentLibrary, ocr OCR, opts ...Option) *Selector {
	t.Helper()
	s, err := NewSelector(lib, ocr, opts...)
	require.NoError(t, err)
	return s
}

func TestNewSelector(t *testing.T) {
	t.Run("requires library", func(t *testing.T) {
		_, err := NewSelector(nil, &fakeOCR{})
		assert.ErrorIs(t, err, ErrLibraryRequired)
	})

	t.Run("requires ocr", func(t *testing.T) {
		_, err := NewSelector(&fakeLibrary{}, nil)
		assert.ErrorIs(t, err, ErrOCRRequired)
	})

	t.Run("negative threshold", func(t *testing.T) {
		_, err := NewSelector(&fakeLibrary{}, &fakeOCR{}, WithMinAverageChars(-1))
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		s := newSelector(t, &fakeLibrary{}, &fakeOCR{})
		assert.Equal(t, DefaultMinAverageChars, s.minAverageChars)
	})
}

func TestExtract_DirectText(t *testing.T) {
	long := strings.Repeat("a", 60)
	lib := &fakeLibrary{
		pages: []core.Page{direct(2, "  "+long+"  "), direct(1, long), direct(3, "   ")},
		meta:  core.Metadata{PageCount: 3, Title: "Doc"},
	}
	ocr := &fakeOCR{}

	result, err := newSelector(t, lib, ocr).Extract(context.Background(), testDoc)
	require.NoError(t, err)

	assert.Equal(t, core.MethodDirectText, result.Method)
	assert.Equal(t, testDoc.ID, result.ID)
	assert.Equal(t, "Doc", result.Metadata.Title)
	assert.Empty(t, result.DetectedLanguages)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, 1, result.Pages[0].Number)
	assert.Equal(t, 2, result.Pages[1].Number)
	assert.Equal(t, long, result.Pages[1].Text)
	assert.Zero(t, ocr.calls.Load())
}

func TestExtract_Scanned(t *testing.T) {
	lib := &fakeLibrary{}
	ocr := &fakeOCR{
		scanned:   true,
		languages: []string{"eng", "guj"},
		pages:     []core.Page{scannedPage(2, "second"), scannedPage(1, "first")},
	}

	result, err := newSelector(t, lib, ocr).Extract(context.Background(), testDoc)
	require.NoError(t, err)

	assert.Equal(t, core.MethodOCR, result.Method)
	assert.Equal(t, []string{"eng", "guj"}, result.DetectedLanguages)
	assert.Equal(t, []string{"eng", "guj"}, ocr.gotLangs)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, "first", result.Pages[0].Text)
	assert.Equal(t, core.SourceOCR, result.Pages[0].Source)
	assert.Zero(t, lib.calls.Load())
}

func TestExtract_LanguageDetectionFailure(t *testing.T) {
	ocr := &fakeOCR{
		scanned:     true,
		languageErr: errors.New("sampler crashed"),
		pages:       []core.Page{scannedPage(1, "text")},
	}

	result, err := newSelector(t, &fakeLibrary{}, ocr).Extract(context.Background(), testDoc)
	require.NoError(t, err)
	assert.Equal(t, []string{"eng"}, ocr.gotLangs)
	assert.Equal(t, []string{"eng"}, result.DetectedLanguages)
}

func TestExtract_Fallback(t *testing.T) {
	tests := []struct {
		name       string
		direct     []core.Page
		directErr  error
		ocrPages   []core.Page
		ocrErr     error
		wantMethod core.ExtractionMethod
		wantTexts  []string
		wantOCR    bool
	}{
		{
			name:       "short pages fall back",
			direct:     []core.Page{direct(1, "tiny"), direct(2, "also tiny")},
			ocrPages:   []core.Page{scannedPage(1, strings.Repeat("o", 80))},
			wantMethod: core.MethodOCRFallback,
			wantTexts:  []string{strings.Repeat("o", 80)},
			wantOCR:    true,
		},
		{
			name:       "no pages fall back",
			ocrPages:   []core.Page{scannedPage(1, "ocr text")},
			wantMethod: core.MethodOCRFallback,
			wantTexts:  []string{"ocr text"},
			wantOCR:    true,
		},
		{
			name:       "blank pages fall back",
			direct:     []core.Page{direct(1, "  "), direct(2, "\n\t")},
			ocrPages:   []core.Page{scannedPage(2, "from ocr")},
			wantMethod: core.MethodOCRFallback,
			wantTexts:  []string{"from ocr"},
			wantOCR:    true,
		},
		{
			name:       "direct error falls back",
			directErr:  errors.New("broken xref"),
			ocrPages:   []core.Page{scannedPage(1, "rescued")},
			wantMethod: core.MethodOCRFallback,
			wantTexts:  []string{"rescued"},
			wantOCR:    true,
		},
		{
			name:       "empty ocr keeps direct text",
			direct:     []core.Page{direct(1, "short")},
			wantMethod: core.MethodOCRFallback,
			wantTexts:  []string{"short"},
			wantOCR:    true,
		},
		{
			name:       "failed ocr keeps direct text",
			direct:     []core.Page{direct(1, "short")},
			ocrErr:     fmt.Errorf("%w: page 1: vision model down", core.ErrOCRFailure),
			wantMethod: core.MethodOCRFallback,
			wantTexts:  []string{"short"},
			wantOCR:    true,
		},
		{
			name:       "unreadable images keep direct text",
			direct:     []core.Page{direct(1, "short")},
			ocrErr:     fmt.Errorf("%w: no image streams", core.ErrDocumentUnreadable),
			wantMethod: core.MethodOCRFallback,
			wantTexts:  []string{"short"},
			wantOCR:    true,
		},
		{
			name:       "failed ocr with no direct text",
			ocrErr:     errors.New("vision model down"),
			wantMethod: core.MethodOCRFallback,
			wantTexts:  []string{},
			wantOCR:    true,
		},
		{
			name:       "nothing anywhere",
			wantMethod: core.MethodOCRFallback,
			wantTexts:  []string{},
			wantOCR:    true,
		},
		{
			name:       "exactly at threshold accepted",
			direct:     []core.Page{direct(1, strings.Repeat("x", 50))},
			wantMethod: core.MethodDirectText,
			wantTexts:  []string{strings.Repeat("x", 50)},
		},
		{
			name:       "threshold counts characters not bytes",
			direct:     []core.Page{direct(1, strings.Repeat("ગ", 30))},
			ocrPages:   []core.Page{scannedPage(1, "ocr")},
			wantMethod: core.MethodOCRFallback,
			wantTexts:  []string{"ocr"},
			wantOCR:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &fakeLibrary{pages: tt.direct, err: tt.directErr}
			ocr := &fakeOCR{languages: []string{"eng"}, pages: tt.ocrPages, err: tt.ocrErr}

			result, err := newSelector(t, lib, ocr).Extract(context.Background(), testDoc)
			require.NoError(t, err)

			assert.Equal(t, tt.wantMethod, result.Method)
			texts := make([]string, 0, len(result.Pages))
			for _, p := range result.Pages {
				texts = append(texts, p.Text)
			}
			assert.Equal(t, tt.wantTexts, texts)
			assert.Equal(t, tt.wantOCR, ocr.calls.Load() > 0)
		})
	}
}

func TestExtract_CustomThreshold(t *testing.T) {
	lib := &fakeLibrary{pages: []core.Page{direct(1, "short but fine")}}
	ocr := &fakeOCR{}

	result, err := newSelector(t, lib, ocr, WithMinAverageChars(5)).Extract(context.Background(), testDoc)
	require.NoError(t, err)
	assert.Equal(t, core.MethodDirectText, result.Method)
	assert.Zero(t, ocr.calls.Load())
}

func TestExtract_Unreadable(t *testing.T) {
	t.Run("classification fails", func(t *testing.T) {
		ocr := &fakeOCR{scannedErr: errors.New("not a pdf")}
		_, err := newSelector(t, &fakeLibrary{}, ocr).Extract(context.Background(), testDoc)
		assert.ErrorIs(t, err, core.ErrDocumentUnreadable)
	})

	t.Run("scanned document cannot be opened", func(t *testing.T) {
		ocr := &fakeOCR{scanned: true, err: fmt.Errorf("%w: cannot read images", core.ErrDocumentUnreadable)}
		_, err := newSelector(t, &fakeLibrary{}, ocr).Extract(context.Background(), testDoc)
		assert.ErrorIs(t, err, core.ErrDocumentUnreadable)
	})

	t.Run("fallback cannot open document and no direct text", func(t *testing.T) {
		lib := &fakeLibrary{err: errors.New("broken")}
		ocr := &fakeOCR{err: fmt.Errorf("%w: also broken", core.ErrDocumentUnreadable)}
		_, err := newSelector(t, lib, ocr).Extract(context.Background(), testDoc)
		assert.ErrorIs(t, err, core.ErrDocumentUnreadable)
	})

	t.Run("collaborator type does not leak", func(t *testing.T) {
		cause := &customErr{}
		ocr := &fakeOCR{scannedErr: cause}
		_, err := newSelector(t, &fakeLibrary{}, ocr).Extract(context.Background(), testDoc)
		var target *customErr
		assert.False(t, errors.As(err, &target))
		assert.Contains(t, err.Error(), "custom failure")
	})

	t.Run("cancelled context is not unreadable", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ocr := &fakeOCR{scannedErr: context.Canceled}
		_, err := newSelector(t, &fakeLibrary{}, ocr).Extract(ctx, testDoc)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, core.ErrDocumentUnreadable)
	})
}

func TestExtract_OCRFailureIsNotFatal(t *testing.T) {
	ocr := &fakeOCR{
		scanned:   true,
		languages: []string{"guj", "eng"},
		err:       fmt.Errorf("%w: page 1: timeout", core.ErrOCRFailure),
	}
	result, err := newSelector(t, &fakeLibrary{}, ocr).Extract(context.Background(), testDoc)
	require.NoError(t, err)
	assert.Equal(t, core.MethodOCR, result.Method)
	assert.Empty(t, result.Pages)
	assert.NotNil(t, result.Pages)
	assert.Equal(t, []string{"guj", "eng"}, result.DetectedLanguages)
}

type customErr struct{}

func (*customErr) Error() string { return "custom failure" }

func TestExtract_MetadataFailureIgnored(t *testing.T) {
	lib := &fakeLibrary{
		pages:   []core.Page{direct(1, strings.Repeat("m", 100))},
		metaErr: errors.New("no info dict"),
	}
	result, err := newSelector(t, lib, &fakeOCR{}).Extract(context.Background(), testDoc)
	require.NoError(t, err)
	assert.Equal(t, core.Metadata{}, result.Metadata)
	assert.Len(t, result.Pages, 1)
}

func TestNormalize(t *testing.T) {
	s := newSelector(t, &fakeLibrary{}, &fakeOCR{})
	pages := s.normalize(testDoc, []core.Page{
		direct(3, " three "),
		direct(1, "one"),
		direct(3, "duplicate three"),
		direct(0, "invalid number"),
		{Number: 2, Text: "bad confidence", Confidence: 1.5, Source: core.SourceDirect},
		direct(2, "two"),
		direct(4, "\u00a0\n"),
	})

	require.Len(t, pages, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{pages[0].Number, pages[1].Number, pages[2].Number})
	assert.Equal(t, "three", pages[2].Text)
	assert.Equal(t, "two", pages[1].Text)
}

func TestExtract_Cache(t *testing.T) {
	cache, err := badger.NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	lib := &fakeLibrary{pages: []core.Page{direct(1, strings.Repeat("c", 70))}}
	s := newSelector(t, lib, &fakeOCR{}, WithCache(cache))
	ctx := context.Background()

	first, err := s.Extract(ctx, testDoc)
	require.NoError(t, err)

	second, err := s.Extract(ctx, testDoc)
	require.NoError(t, err)

	assert.Equal(t, int32(1), lib.calls.Load())
	assert.Equal(t, first, second)

	t.Run("empty results are not cached", func(t *testing.T) {
		emptyDoc := core.Document{ID: 7, Name: "empty.pdf"}
		emptyLib := &fakeLibrary{}
		s := newSelector(t, emptyLib, &fakeOCR{}, WithCache(cache))

		_, err := s.Extract(ctx, emptyDoc)
		require.NoError(t, err)
		_, err = s.Extract(ctx, emptyDoc)
		require.NoError(t, err)
		assert.Equal(t, int32(2), emptyLib.calls.Load())
	})

	t.Run("closed cache does not fail extraction", func(t *testing.T) {
		closed, err := badger.NewMemoryCache()
		require.NoError(t, err)
		require.NoError(t, closed.Close())

		s := newSelector(t, lib, &fakeOCR{}, WithCache(closed))
		result, err := s.Extract(ctx, testDoc)
		require.NoError(t, err)
		assert.Len(t, result.Pages, 1)
	})
}
