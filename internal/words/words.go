// Package words turns raw social-media text into normalized word tokens and
// counts them. A word is a run of characters between whitespace after
// normalization: punctuation is spaced out, emoji are spaced out or removed,
// links are dropped, and edge punctuation is trimmed while leading @ and #
// survive.
package words

import (
	"regexp"
	"strings"
)

// Options tunes extraction.
type Options struct {
	// IncludeEmoji keeps emoji as tokens of their own; otherwise they are
	// stripped.
	IncludeEmoji bool

	// RemoveLinks drops http/https/www tokens.
	RemoveLinks bool
}

// DefaultOptions keeps emoji and removes links.
func DefaultOptions() Options {
	return Options{IncludeEmoji: true, RemoveLinks: true}
}

var (
	ellipsisRE    = regexp.MustCompile(`\.{2,}`)
	exclamationRE = regexp.MustCompile(`!(?:1?!)*`)
	apostropheRE  = regexp.MustCompile(`’(s|d|ll|re|ve|m|all)`)
	hashRE        = regexp.MustCompile(`#+`)
	whitespaceRE  = regexp.MustCompile(`\s+`)
	slashSplitRE  = regexp.MustCompile(`[/?]`)
)

// spacedReplacer handles the fixed-string punctuation substitutions.
var spacedReplacer = strings.NewReplacer(
	"&amp;", " & ",
	"&lt;", " <",
	"&gt;", " >",
	",", ", ",
	"…", "… ",
	"b!tch", "b*tch",
	"sh!t", "sh*t",
	"•", " •",
	"‘", " '",
	"n’t", "n't",
	"“", `"`,
	"”", `"`,
	"http", " http",
)

// spaceOutPunctuation inserts whitespace around punctuation so that the
// subsequent whitespace split separates words from their neighbors.
func spaceOutPunctuation(s string) string {
	s = spacedReplacer.Replace(s)
	s = ellipsisRE.ReplaceAllString(s, ". ")
	s = exclamationRE.ReplaceAllString(s, "! ")
	s = apostropheRE.ReplaceAllString(s, "'$1")
	s = strings.ReplaceAll(s, "’", "' ")
	s = strings.ReplaceAll(s, `"`, ` " `)
	s = hashRE.ReplaceAllString(s, " #")
	s = whitespaceRE.ReplaceAllString(s, " ")
	return s
}

// edgeCutset is trimmed from both ends of every token.
const edgeCutset = ",.?/[]\\{}|=+-–—_()*^!~`>‘’'\"“”…•&"

// trailingCutset is additionally trimmed from token ends only, so leading
// @mentions and #hashtags survive.
const trailingCutset = "@#<:;"

// bracketCutset is trimmed from the start of leftover markup tokens.
const bracketCutset = ",.?/[]\\{}|=+-—_()*^!~`<>:;‘’'\"“”…•&"

// Extract returns the normalized words of a text with default options.
func Extract(s string) []string {
	return ExtractWith(s, DefaultOptions())
}

// ExtractWith returns the normalized words of a text.
func ExtractWith(s string, opts Options) []string {
	s = spaceOutPunctuation(s)
	if opts.IncludeEmoji {
		s = spaceOutEmoji(s)
	} else {
		s = removeEmoji(s)
	}

	var out []string
	for _, token := range strings.Fields(s) {
		out = append(out, normalize(token, opts)...)
	}
	return out
}

// normalize lowercases a token and trims its edge punctuation. Tokens with
// an interior / or ? that are not links split into their parts, so
// "either/or" counts both alternatives. The result holds zero or more words.
func normalize(token string, opts Options) []string {
	word := strings.ToLower(token)
	word = strings.Trim(word, edgeCutset)
	word = strings.TrimRight(word, trailingCutset)

	if opts.RemoveLinks && (strings.HasPrefix(word, "http") || strings.HasPrefix(word, "www")) {
		return nil
	}
	if strings.HasPrefix(word, "<") && word != "<3" {
		word = strings.TrimLeft(word, bracketCutset)
	}

	if strings.ContainsAny(word, "/?") &&
		!strings.HasPrefix(word, "http") && !strings.HasPrefix(word, "www") &&
		!strings.Contains(word, ".") {
		var parts []string
		for _, sub := range slashSplitRE.Split(word, -1) {
			parts = append(parts, normalize(sub, opts)...)
		}
		return parts
	}

	if word == "" {
		return nil
	}
	return []string{word}
}
