package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for a document's contents.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	return IDFromBytes([]byte(text))
}

// IDFromBytes generates a deterministic ID from raw bytes using BLAKE2b hashing.
// Two byte-identical documents always share an ID regardless of their file names.
func IDFromBytes(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Source identifies how a page's text was obtained.
type Source int

const (
	// SourceDirect is text read from the document's embedded text layer.
	SourceDirect Source = iota + 1
	// SourceOCR is text recognised from a rendered page image.
	SourceOCR
)

func (s Source) String() string {
	switch s {
	case SourceDirect:
		return "direct"
	case SourceOCR:
		return "ocr"
	default:
		return "unknown"
	}
}

// MarshalText encodes the source as its string form.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ExtractionMethod records which strategy produced a document's pages.
type ExtractionMethod int

const (
	// MethodDirectText means the text layer was usable as-is.
	MethodDirectText ExtractionMethod = iota + 1
	// MethodOCR means the document was classified as scanned and OCR'd.
	MethodOCR
	// MethodOCRFallback means direct extraction was rejected and OCR ran instead.
	MethodOCRFallback
)

func (m ExtractionMethod) String() string {
	switch m {
	case MethodDirectText:
		return "direct_text"
	case MethodOCR:
		return "ocr"
	case MethodOCRFallback:
		return "ocr_fallback"
	default:
		return "unknown"
	}
}

// MarshalText encodes the method as its string form.
func (m ExtractionMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Page is a single page of text, regardless of where the text came from.
// Pages are immutable once produced and belong to the request that produced them.
type Page struct {
	Number     int     `json:"page"`       // 1-based physical page number
	Text       string  `json:"text"`       // Page text, trimmed
	Confidence float64 `json:"confidence"` // 1.0 for direct text, recogniser-reported for OCR
	Source     Source  `json:"source"`
}

// Metadata describes the document file itself.
type Metadata struct {
	PageCount     int    `json:"pageCount"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
	Title         string `json:"title,omitempty"`
	Author        string `json:"author,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Creator       string `json:"creator,omitempty"`
}

// DocumentExtractionResult is the output of one extraction run.
// Pages is empty only if no page yielded text after every attempted strategy.
type DocumentExtractionResult struct {
	ID                ID               `json:"id"`
	Pages             []Page           `json:"pages"`
	Method            ExtractionMethod `json:"method"`
	DetectedLanguages []string         `json:"detectedLanguages"`
	Metadata          Metadata         `json:"metadata"`
}

// Document is a resolvable handle to a stored source file.
type Document struct {
	ID   ID     // Content hash of the file bytes
	Name string // Sanitised file name inside the store
	Path string // Absolute path on disk
	Size int64
}

// ExactMatchSpan is one occurrence of the query inside a page.
// Position and Length count characters (code points) of the original page text.
type ExactMatchSpan struct {
	Position    int    `json:"position"`
	Length      int    `json:"length"`
	MatchedText string `json:"matchedText"`
}

// SearchResult is one ranked page.
type SearchResult struct {
	Page          int              `json:"page"`
	Snippet       string           `json:"snippet"`
	Score         float64          `json:"score"`
	FullText      string           `json:"fullText"`
	HasExactMatch bool             `json:"hasExactMatch"`
	MatchCount    int              `json:"matchCount"`
	ExactMatches  []ExactMatchSpan `json:"exactMatches"`
}

// SearchType names the ranking mode that produced a result set.
type SearchType string

const (
	// SearchTypeHybrid ranks by embedding similarity with exact matches first.
	SearchTypeHybrid SearchType = "hybrid"
	// SearchTypeExactMatch ranks by exact match count and density only.
	SearchTypeExactMatch SearchType = "exact_match"
)

// ResultSet wraps the ranked results of one search.
// An empty Results slice is a valid outcome, not a failure.
type ResultSet struct {
	Results    []SearchResult `json:"results"`
	TotalPages int            `json:"totalPages"`
	Query      string         `json:"query"`
	Message    string         `json:"message,omitempty"`
	SearchType SearchType     `json:"searchType,omitempty"`
}
