package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

// extractDOCX concatenates paragraph text from word/document.xml in
// document order, one paragraph per line. Any failure (not a zip,
// missing part, malformed XML) yields empty text: extraction is
// best-effort, never an error.
func extractDOCX(path string) string {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return ""
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		text := docxParagraphs(rc)
		_ = rc.Close()
		return text
	}
	return ""
}

// docxParagraphs walks the WordprocessingML token stream, joining the
// runs (<w:t>) of each paragraph (<w:p>) and separating paragraphs by
// newlines. Tabs and explicit breaks keep their meaning.
func docxParagraphs(r io.Reader) string {
	dec := xml.NewDecoder(r)

	var paras []string
	var para strings.Builder
	inRun := false

	for {
		tok, err := dec.Token()
		if err != nil {
			break // io.EOF, or malformed XML: keep what we have
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inRun = true
			case "tab":
				para.WriteByte('\t')
			case "br":
				para.WriteByte('\n')
			}
		case xml.CharData:
			if inRun {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				paras = append(paras, para.String())
				para.Reset()
			}
		}
	}
	if para.Len() > 0 {
		paras = append(paras, para.String())
	}
	return strings.TrimSpace(strings.Join(paras, "\n"))
}
