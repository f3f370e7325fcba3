package textnorm

import (
	"regexp"
	"strings"
)

var (
	punctRe       = regexp.MustCompile(`[^\pL\pN\s-]+`)
	multiHyphenRe = regexp.MustCompile(`-{2,}`)
)

// Normalize canonicalizes text before embedding: lowercase, punctuation
// stripped, runs of whitespace collapsed to single spaces, leading/trailing
// whitespace removed. Hyphens joining word characters are kept ("b2b-focused"
// stays one token); dangling hyphens are dropped. Idempotent and pure.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	stripped := punctRe.ReplaceAllString(lower, " ")
	fields := strings.Fields(stripped)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = multiHyphenRe.ReplaceAllString(f, "-")
		f = strings.Trim(f, "-")
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

// Tokenize normalizes text and splits it into tokens with stopwords removed.
func Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if IsStopword(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// IsStopword reports whether the token is a common English stopword.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
