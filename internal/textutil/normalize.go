package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	leadingArticlePattern = regexp.MustCompile(`^(the|a|an)\s+`)
	featuringPattern      = regexp.MustCompile(`\s+(feat|ft|featuring)\b\.?.*$`)
	nonAlphanumericChars  = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRuns        = regexp.MustCompile(`\s+`)
)

// diacriticFolder decomposes text and strips combining marks so accented
// characters compare equal to their ASCII forms ("Café" -> "Cafe").
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes text for matching. The steps run in a fixed order:
// diacritic folding, lowercasing, leading-article stripping, truncation at the
// first "feat"/"ft"/"featuring" marker, replacement of non-alphanumeric
// characters with spaces, and whitespace collapse. Empty input yields "".
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
//
// A single pipeline pass is not a fixpoint for every input: stripping one
// leading article can expose another, and punctuation removal can expose a
// "feat" marker that the truncation step missed. The pipeline runs until the
// text stops changing; each pass only ever shortens the text, so the loop
// terminates.
func Normalize(text string) string {
	for {
		next := normalizeOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func normalizeOnce(text string) string {
	if text == "" {
		return ""
	}
	if folded, _, err := transform.String(diacriticFolder, text); err == nil {
		text = folded
	}
	text = strings.ToLower(text)
	text = leadingArticlePattern.ReplaceAllString(text, "")
	text = featuringPattern.ReplaceAllString(text, "")
	text = nonAlphanumericChars.ReplaceAllString(text, " ")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tokenize returns the indexable tokens of text: the space-split words of the
// normalized form longer than two characters. Shorter words are too noisy to
// serve as index keys, though they still participate in substring scoring.
func Tokenize(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	words := strings.Split(normalized, " ")
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) > 2 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
