package receipt

import (
	"strings"
)

// Header holds the optional header fields of one receipt.
type Header struct {
	ID       string
	Seller   string
	Customer string
}

// customerLookahead is how many lines after the label are searched for the name.
const customerLookahead = 4

// ExtractHeader applies the anchored header patterns to one segment's text.
// Every field is optional; absence is not an error.
func ExtractHeader(text string) Header {
	h := Header{ID: firstID(text)}
	for _, m := range sellerRe.FindAllStringSubmatch(text, -1) {
		if v := strings.TrimSpace(m[1]); v != "" {
			h.Seller = v
			break
		}
	}
	h.Customer = extractCustomer(splitLines(text))
	return h
}

func extractCustomer(lines []string) string {
	for i, line := range lines {
		if !customerRe.MatchString(line) {
			continue
		}
		if m := customerSameRe.FindStringSubmatch(line); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
		for j := i + 1; j < len(lines) && j <= i+customerLookahead; j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" || containsAny(fold(next), otherLabelKeywords...) {
				continue
			}
			if len([]rune(next)) > 3 {
				return next
			}
		}
	}
	return ""
}
