package consolidation

import "strings"

// SplitSentences splits text into sentences on '.', '!', '?' boundaries,
// requiring the terminal punctuation be followed by whitespace (or
// end-of-string) or by whitespace-then-uppercase, to avoid splitting on
// abbreviations like "e.g." mid-sentence. Ported directly from
// original_source's algorithms/sentence_splitter.rs.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	var sentences []string
	var current strings.Builder

	for i := 0; i < n; i++ {
		current.WriteRune(runes[i])

		c := runes[i]
		isTerminal := c == '.' || c == '!' || c == '?'
		if !isTerminal {
			continue
		}

		atEnd := i+1 >= n
		nextIsSpace := !atEnd && isSpace(runes[i+1])
		nextIsUpper := !atEnd && i+2 < n && isSpace(runes[i+1]) && isUpper(runes[i+2])

		if atEnd || nextIsSpace || nextIsUpper {
			trimmed := strings.TrimSpace(current.String())
			if len(trimmed) > 2 {
				sentences = append(sentences, trimmed)
			}
			current.Reset()
		}
	}

	trimmed := strings.TrimSpace(current.String())
	if len(trimmed) > 2 {
		sentences = append(sentences, trimmed)
	}

	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
