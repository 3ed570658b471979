package constants

import (
	"path/filepath"
	"strings"
)

// Format identifies how a document's text is extracted.
type Format string

const (
	PDF  Format = "PDF"
	DOCX Format = "DOCX"
	TXT  Format = "TXT"
)

// AllowedExtensions holds the recognized file extensions for CV ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to its Format.
// Returns "" for unrecognized extensions.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "txt":
		return TXT
	default:
		return ""
	}
}

// AllowedExt reports whether a path's extension is in the recognized set.
func AllowedExt(path string) bool {
	_, ok := AllowedExtensions[NormalizeExt(filepath.Ext(path))]
	return ok
}
