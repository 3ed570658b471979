package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/cv-screener/constants"
	"github.com/joseph-ayodele/cv-screener/internal/common"
)

// Discover lists the processable documents in dir, non-recursively.
// Hidden files and unrecognized extensions are skipped. Entries are
// returned in lexical order and numbered; that number is the ranking
// tiebreaker, so discovery order must be deterministic.
func Discover(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, common.WrapError(err, fmt.Sprintf("reading inbox %s", dir))
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !constants.AllowedExt(e.Name()) {
			continue
		}
		docs = append(docs, Document{Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	for i := range docs {
		docs[i].Index = i
	}
	return docs, nil
}
