package extract

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// extractPlain reads a text file as UTF-8. Content that is not valid
// UTF-8 is re-decoded with a permissive single-byte fallback encoding
// instead of failing; a Latin-1 decode accepts every byte sequence.
func extractPlain(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if utf8.Valid(b) {
		return string(b)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// should not happen; replace invalid sequences as a last resort
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(decoded)
}
