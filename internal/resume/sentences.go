package resume

import (
	"strings"
	"unicode"
)

// sentenceSplitter cuts text at terminal punctuation followed by whitespace
// and at line breaks. Resumes are mostly lists, so a line is the natural unit
// when there is no punctuation at all.
type sentenceSplitter struct {
	terminals string
}

func newSentenceSplitter() *sentenceSplitter {
	return &sentenceSplitter{terminals: ".!?"}
}

// Split returns trimmed, non-empty sentences in text order.
func (s *sentenceSplitter) Split(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		current.Reset()
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			flush()
			continue
		}

		current.WriteRune(r)

		if !strings.ContainsRune(s.terminals, r) {
			continue
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()

	return sentences
}
