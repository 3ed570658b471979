// Package extract turns CV documents into plain text. Extraction is
// best-effort: a document that cannot be parsed yields empty text, and
// an image-only PDF page falls back to rasterization plus OCR.
package extract

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/cv-screener/constants"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned pages, default 250
	MaxPages      int    // 0 = no limit
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	// stub point for the PDF text layer in tests
	textLayer func(path string) ([]string, error)
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 250
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger, textLayer: pdfTextLayer}
}

// Extract picks a strategy based on file extension. Unknown formats
// yield empty text, not an error.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	ext := filepath.Ext(path)
	e.logger.Debug("starting extraction", "path", path, "ext", ext)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		return e.extractPDF(ctx, path)
	case constants.DOCX:
		return extractDOCX(path), nil
	case constants.TXT:
		return extractPlain(path), nil
	default:
		e.logger.Debug("unrecognized extension, skipping", "path", path, "ext", ext)
		return "", nil
	}
}
