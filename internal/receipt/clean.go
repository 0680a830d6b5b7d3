package receipt

import (
	"regexp"
	"strings"
	"unicode"
)

// phrase dedup window, in words
const (
	minPhraseWords = 3
	maxPhraseWords = 8
	minPhraseChars = 10
)

var (
	spaceRe = regexp.MustCompile(`\s+`)

	// lot, fabrication, expiry and regulatory codes that trail the product name
	trailingCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s+L-\s+\d+`),
		regexp.MustCompile(`(?i)\s+C\d{3}[A-Z]?-[A-Z]\d+`),
		regexp.MustCompile(`(?i)\s+FAB\s+\d{2}/\d{4}`),
		regexp.MustCompile(`(?i)\s+VAL-\s+\d{2}/\d{4}`),
		regexp.MustCompile(`(?i)\s+ANVISA`),
		regexp.MustCompile(`\s+\d{12,}`),
	}
)

// CleanDescription collapses whitespace, doubled characters and repeated phrases,
// then cuts trailing codes. It is applied until stable, so cleaning a cleaned
// description is a no-op.
func CleanDescription(s string) string {
	out := collapseSpaces(s)
	for {
		next := trimTrailingCodes(removeDuplicatePhrases(removeDuplicateChars(out)))
		if next == out {
			return out
		}
		out = next
	}
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// fullyPaired reports whether every rune of tok appears twice in a row: "TTIIRR".
func fullyPaired(tok []rune) bool {
	if len(tok) < 2 || len(tok)%2 != 0 {
		return false
	}
	for i := 0; i < len(tok); i += 2 {
		if tok[i] != tok[i+1] {
			return false
		}
	}
	return true
}

func halve(tok []rune) []rune {
	out := make([]rune, 0, len(tok)/2)
	for i := 0; i < len(tok); i += 2 {
		out = append(out, tok[i])
	}
	return out
}

// collapsible is a doubled token whose halved form is not doubled again,
// so "LLLL" is left alone while "TTIIRR" becomes "TIR".
func collapsible(tok []rune) bool {
	return fullyPaired(tok) && !fullyPaired(halve(tok))
}

// removeDuplicateChars undoes the decoder artifact that emits every glyph twice.
// Tokens without letters ("1100") are only collapsed when most worded tokens
// of the same text are doubled.
func removeDuplicateChars(s string) string {
	if s == "" {
		return s
	}
	words := strings.Fields(s)
	toks := make([][]rune, len(words))
	lettered, doubled := 0, 0
	for i, w := range words {
		toks[i] = []rune(w)
		if hasLetter(w) {
			lettered++
			if collapsible(toks[i]) {
				doubled++
			}
		}
	}
	artifactText := doubled > 0 && doubled*2 > lettered

	for i, w := range words {
		if !collapsible(toks[i]) {
			continue
		}
		if hasLetter(w) || artifactText {
			words[i] = string(halve(toks[i]))
		}
	}
	return strings.Join(words, " ")
}

// removeDuplicatePhrases drops a run of 3 to 8 words that immediately repeats
// itself ("TIRZEPATIDE 50 MG/2ML TIRZEPATIDE 50 MG/2ML"), keeping the first copy.
// Short repeats of 10 characters or fewer are kept.
func removeDuplicatePhrases(s string) string {
	words := strings.Fields(s)
	if len(words) < 2*minPhraseWords {
		return s
	}
	for i := 0; i < len(words); {
		removed := false
		for n := minPhraseWords; n <= maxPhraseWords && i+2*n <= len(words); n++ {
			first := strings.Join(words[i:i+n], " ")
			second := strings.Join(words[i+n:i+2*n], " ")
			if len(first) > minPhraseChars && strings.EqualFold(first, second) {
				words = append(words[:i+n], words[i+2*n:]...)
				removed = true
				break
			}
		}
		if !removed {
			i++
		}
	}
	return strings.Join(words, " ")
}

// trimTrailingCodes cuts s at the first lot/expiry/regulatory code and strips
// trailing dashes.
func trimTrailingCodes(s string) string {
	cut := len(s)
	for _, re := range trailingCodePatterns {
		if loc := re.FindStringIndex(s); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	out := strings.TrimSpace(s[:cut])
	out = strings.TrimRightFunc(out, func(r rune) bool { return r == '-' || unicode.IsSpace(r) })
	return collapseSpaces(out)
}
