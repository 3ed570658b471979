package openai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/cv-screener/internal/contacts"
)

func TestClipKeepsShortStrings(t *testing.T) {
	assert.Equal(t, "hello", clip("hello", 10))
	assert.Equal(t, "hello", clip("hello", 5))
	assert.Equal(t, "", clip("", 4))
}

func TestClipTruncatesOnRuneBoundary(t *testing.T) {
	// "é" is two bytes; a byte-level cut inside it would leave an
	// invalid UTF-8 tail in the prompt.
	s := "résumé"
	for max := 1; max < len(s); max++ {
		got := clip(s, max)
		assert.LessOrEqual(t, len(got), max)
		assert.True(t, utf8.ValidString(got), "clip(%q, %d) = %q is not valid UTF-8", s, max, got)
		assert.True(t, strings.HasPrefix(s, got))
	}

	wide := strings.Repeat("日", 10) // 3 bytes per rune
	got := clip(wide, 8)
	assert.Equal(t, strings.Repeat("日", 2), got)
	assert.True(t, utf8.ValidString(got))
}

func TestCandidatePromptClipsLongCVs(t *testing.T) {
	long := strings.Repeat("é", maxCVChars) // 2x maxCVChars bytes
	p := buildCandidatePrompt(long, contacts.Hints{})
	assert.True(t, utf8.ValidString(p))
	assert.Less(t, len(p), 2*maxCVChars)
}
