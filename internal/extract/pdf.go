package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads the text layer page by page. Pages whose direct
// extraction yields only whitespace are collected, and the contiguous
// range spanning the first through last such page is rasterized and
// OCR-ed; recognized text is appended after the directly-extracted
// text in page order. A whole-document parse failure falls back to
// OCR-ing every page.
func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	pages, err := e.textLayer(path)
	if err != nil {
		e.logger.Warn("pdf text layer unavailable, ocr fallback for whole document",
			"path", path, "error", err)
		text, ocrErr := e.ocrPages(ctx, path, 0, 0)
		if ocrErr != nil {
			return "", fmt.Errorf("pdf parse and ocr both failed: %w", ocrErr)
		}
		return text, nil
	}

	var parts []string
	var blank []int
	for i, t := range pages {
		if strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		} else {
			blank = append(blank, i)
		}
	}

	if len(blank) > 0 {
		// OCR is expensive: rasterize only the contiguous range covering
		// the pages that lack a text layer, not the whole document.
		first := blank[0] + 1 // pdftoppm pages are 1-based
		last := blank[len(blank)-1] + 1
		ocrText, ocrErr := e.ocrPages(ctx, path, first, last)
		if ocrErr != nil {
			e.logger.Warn("ocr fallback failed, keeping text-layer content",
				"path", path, "first_page", first, "last_page", last, "error", ocrErr)
		} else if ocrText != "" {
			parts = append(parts, ocrText)
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// pdfTextLayer returns the direct text of every page, in order. A page
// that cannot be read contributes an empty string, which the caller
// treats as a missing text layer. Malformed documents can make the
// parser panic; that is reported as an ordinary parse error.
func pdfTextLayer(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		txt, perr := p.GetPlainText(nil)
		if perr != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, txt)
	}
	return pages, nil
}

// ocrPages rasterizes pages [first..last] (1-based, inclusive) to PNG
// and runs OCR on each. first=0 means every page. An OCR failure on an
// individual page is swallowed; that page contributes no text.
func (e *Extractor) ocrPages(ctx context.Context, path string, first, last int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "cvs-pp-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png"}
	if first > 0 {
		args = append(args, "-f", fmt.Sprintf("%d", first), "-l", fmt.Sprintf("%d", last))
	}
	args = append(args, path, prefix)
	// pdftoppm -r 250 -png [-f a -l b] <in.pdf> <tmp/page>
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no images")
	}

	var b strings.Builder
	for _, img := range matches {
		txt, err := e.tesseractOCR(ctx, img)
		if err != nil {
			e.logger.Warn("ocr failed for page, skipping", "image", img, "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	return Normalize(b.String()), nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}

	// minor cleanup of obvious line noise
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
