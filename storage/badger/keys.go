package badger

import (
	"encoding/binary"

	"github.com/poiesic/pagefind/core"
)

// Key prefixes for different data types
const (
	extractionPrefix = "extres:"
)

// makeExtractionKey generates a key for an extraction result by document ID.
// Format: prefix + 8 bytes big-endian ID
func makeExtractionKey(id core.ID) []byte {
	buf := make([]byte, len(extractionPrefix)+8)
	offset := copy(buf, extractionPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// extractionIDFromKey recovers the document ID from an extraction key.
func extractionIDFromKey(key []byte) (core.ID, bool) {
	if len(key) != len(extractionPrefix)+8 || string(key[:len(extractionPrefix)]) != extractionPrefix {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(extractionPrefix):])), true
}
