package catalog

import (
	"strings"
	"unicode/utf8"
)

// wrapText breaks text into lines no wider than width. Explicit newlines
// are kept and words longer than width are split between runes. The result
// always holds at least one line.
func wrapText(text string, width float64, measure func(string) float64) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimRight(text, "\n")

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		start := len(lines)
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if measure(candidate) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			for measure(word) > width {
				cut := fitPrefix(word, width, measure)
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			line = word
		}
		if line != "" || len(lines) == start {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// fitPrefix returns the byte length of the longest rune prefix of word that
// fits in width, never less than one rune.
func fitPrefix(word string, width float64, measure func(string) float64) int {
	_, first := utf8.DecodeRuneInString(word)
	cut := first
	for i := range word {
		if i == 0 {
			continue
		}
		if measure(word[:i]) > width {
			break
		}
		cut = i
	}
	return cut
}
