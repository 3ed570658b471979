// Package contacts pulls lightweight structural hints (emails, phone
// numbers, a name guess) out of raw CV text. Hints are fallbacks for
// the judge, never authoritative values.
package contacts

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reEmail = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	rePhone = regexp.MustCompile(`\+?\d[\d\s\-]{6,}\d`)
)

// Hints holds the structural extraction results, in order of first
// appearance in the text.
type Hints struct {
	Emails    []string
	Phones    []string
	FirstName string
	LastName  string
}

// Parse scans text for address-shaped emails, phone-like digit runs,
// and a 2-3 token all-alphabetic line treated as a name.
func Parse(text string) Hints {
	h := Hints{
		Emails: dedupe(reEmail.FindAllString(text, -1)),
		Phones: dedupe(rePhone.FindAllString(text, -1)),
	}
	h.FirstName, h.LastName = guessName(text)
	return h
}

// guessName returns the first line whose whitespace-delimited tokens
// number 2 or 3 and consist solely of alphabetic characters, split into
// (first token, remaining tokens joined). Crude on purpose.
func guessName(text string) (string, string) {
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 3 {
			continue
		}
		if !allAlpha(words) {
			continue
		}
		return words[0], strings.Join(words[1:], " ")
	}
	return "", ""
}

func allAlpha(words []string) bool {
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
