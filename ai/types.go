package ai

// PageImage is the raster of one physical document page.
type PageImage struct {
	// PageNumber is the 1-based page the image was taken from.
	PageNumber int

	// Data holds the encoded image bytes.
	Data []byte

	// MimeType describes Data, e.g. "image/png" or "image/jpeg".
	MimeType string
}

// Transcription is the recognised text of one page image.
type Transcription struct {
	Text string

	// Confidence is the recogniser's confidence in [0,1].
	Confidence float64
}

// LanguageNames maps the tesseract-style language codes used throughout
// pagefind to their English names.
var LanguageNames = map[string]string{
	"eng": "English",
	"hin": "Hindi",
	"guj": "Gujarati",
	"ben": "Bengali",
	"pan": "Punjabi",
	"ori": "Odia",
	"tam": "Tamil",
	"tel": "Telugu",
	"kan": "Kannada",
	"mal": "Malayalam",
}

// LanguageName returns the English name for code, or code itself if unknown.
func LanguageName(code string) string {
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	return code
}
