package extract

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner simulates pdftoppm and tesseract. For pdftoppm it creates
// PNG files for the requested page range; for tesseract it returns a
// canned per-page string.
type fakeRunner struct {
	totalPages int
	ocrText    map[string]string // png base name -> text
	failOCRFor map[string]bool   // png base name -> fail
	calls      [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	switch name {
	case "pdftoppm":
		first, last := 1, f.totalPages
		for i, a := range args {
			if a == "-f" {
				_, _ = fmt.Sscanf(args[i+1], "%d", &first)
			}
			if a == "-l" {
				_, _ = fmt.Sscanf(args[i+1], "%d", &last)
			}
		}
		prefix := args[len(args)-1]
		for p := first; p <= last; p++ {
			png := fmt.Sprintf("%s-%d.png", prefix, p)
			if err := os.WriteFile(png, []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		base := filepath.Base(args[0])
		if f.failOCRFor[base] {
			return nil, []byte("tesseract boom"), errors.New("exit status 1")
		}
		return []byte(f.ocrText[base]), nil, nil
	default:
		return nil, nil, fmt.Errorf("unexpected command %q", name)
	}
}

func newTestExtractor(r Runner, layer func(string) ([]string, error)) *Extractor {
	e := NewExtractor(Config{}, nil)
	e.runner = r
	if layer != nil {
		e.textLayer = layer
	}
	return e
}

func pdftoppmCall(t *testing.T, calls [][]string) []string {
	t.Helper()
	for _, c := range calls {
		if c[0] == "pdftoppm" {
			return c
		}
	}
	t.Fatal("pdftoppm was not invoked")
	return nil
}

func TestPDFOCRPageRangeMinimality(t *testing.T) {
	// Pages 0 and 3 (0-based) lack a text layer: rasterization must cover
	// pages 1..4 (1-based), not the whole document and nothing outside.
	r := &fakeRunner{
		totalPages: 6,
		ocrText: map[string]string{
			"page-1.png": "ocr one",
			"page-2.png": "ocr two",
			"page-3.png": "ocr three",
			"page-4.png": "ocr four",
		},
	}
	layer := func(string) ([]string, error) {
		return []string{"", "direct two", "direct three", "  \n ", "direct five", "direct six"}, nil
	}
	e := newTestExtractor(r, layer)

	text, err := e.Extract(context.Background(), "cv.pdf")
	require.NoError(t, err)

	call := pdftoppmCall(t, r.calls)
	joined := strings.Join(call, " ")
	assert.Contains(t, joined, "-f 1")
	assert.Contains(t, joined, "-l 4")

	var ocrRuns int
	for _, c := range r.calls {
		if c[0] == "tesseract" {
			ocrRuns++
		}
	}
	assert.Equal(t, 4, ocrRuns, "exactly pages 1..4 OCR-ed")

	assert.Contains(t, text, "direct two")
	assert.Contains(t, text, "direct five")
	assert.Contains(t, text, "ocr one")
	assert.Contains(t, text, "ocr four")
	// directly-extracted text comes first, recognized text after
	assert.Less(t, strings.Index(text, "direct six"), strings.Index(text, "ocr one"))
}

func TestPDFNoOCRWhenAllPagesHaveText(t *testing.T) {
	r := &fakeRunner{totalPages: 2}
	layer := func(string) ([]string, error) {
		return []string{"page one text", "page two text"}, nil
	}
	e := newTestExtractor(r, layer)

	text, err := e.Extract(context.Background(), "cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, "page one text\npage two text", text)
	assert.Empty(t, r.calls, "no external commands should run")
}

func TestPDFWholeDocumentFallback(t *testing.T) {
	r := &fakeRunner{
		totalPages: 3,
		ocrText: map[string]string{
			"page-1.png": "alpha",
			"page-2.png": "beta",
			"page-3.png": "gamma",
		},
	}
	layer := func(string) ([]string, error) {
		return nil, errors.New("corrupt xref table")
	}
	e := newTestExtractor(r, layer)

	text, err := e.Extract(context.Background(), "cv.pdf")
	require.NoError(t, err)

	call := pdftoppmCall(t, r.calls)
	joined := strings.Join(call, " ")
	assert.NotContains(t, joined, "-f", "total-parse failure rasterizes every page")
	assert.Equal(t, "alpha\nbeta\ngamma", text)
}

func TestPDFSinglePageOCRFailureSwallowed(t *testing.T) {
	r := &fakeRunner{
		totalPages: 2,
		ocrText:    map[string]string{"page-2.png": "recovered"},
		failOCRFor: map[string]bool{"page-1.png": true},
	}
	layer := func(string) ([]string, error) {
		return []string{"", ""}, nil
	}
	e := newTestExtractor(r, layer)

	text, err := e.Extract(context.Background(), "cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
}

func TestPDFMaxPagesCap(t *testing.T) {
	r := &fakeRunner{
		totalPages: 4,
		ocrText: map[string]string{
			"page-1.png": "one", "page-2.png": "two",
			"page-3.png": "three", "page-4.png": "four",
		},
	}
	layer := func(string) ([]string, error) {
		return []string{"", "", "", ""}, nil
	}
	e := newTestExtractor(r, layer)
	e.cfg.MaxPages = 2

	text, err := e.Extract(context.Background(), "cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", text)
}

func TestUnknownFormatYieldsEmptyText(t *testing.T) {
	e := newTestExtractor(&fakeRunner{}, nil)
	text, err := e.Extract(context.Background(), "archive.tar.gz")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func writeDOCX(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestDOCXParagraphOrder(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t>Senior </w:t></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>
    <w:p><w:r><w:t>jane@example.com</w:t></w:r></w:p>
  </w:body>
</w:document>`
	path := writeDOCX(t, doc)

	e := newTestExtractor(&fakeRunner{}, nil)
	text, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSenior Engineer\njane@example.com", text)
}

func TestDOCXMalformedYieldsEmptyText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip"), 0o644))

	e := newTestExtractor(&fakeRunner{}, nil)
	text, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestPlainTextUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("héllo wörld"), 0o644))

	e := newTestExtractor(&fakeRunner{}, nil)
	text, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld", text)
}

func TestPlainTextLatin1Fallback(t *testing.T) {
	// 0xE9 is 'é' in ISO-8859-1 and invalid as a standalone UTF-8 byte.
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte{'r', 0xE9, 's', 'u', 'm', 0xE9}, 0o644))

	e := newTestExtractor(&fakeRunner{}, nil)
	text, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "résumé", text)
}

func TestIdempotentExtraction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("same content"), 0o644))

	e := newTestExtractor(&fakeRunner{}, nil)
	first, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalize(t *testing.T) {
	in := "a\r\nb\t\tc   d\n\n\n\ne   \n____\nf"
	out := Normalize(reBoxNoise.ReplaceAllString(in, ""))
	assert.NotContains(t, out, "\r")
	assert.NotContains(t, out, "\t")
	assert.NotContains(t, out, "   ")
	assert.NotContains(t, out, "____")
	assert.NotContains(t, out, "\n\n\n")
}
