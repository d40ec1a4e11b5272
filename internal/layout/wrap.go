package layout

import (
	"strings"
	"unicode/utf8"
)

// Style selects the font variant used to measure or draw text.
type Style struct {
	Size float64
	Bold bool
}

// Metrics measures rendered text width in the same unit as Geometry.
type Metrics interface {
	Width(text string, st Style) float64
}

// Wrap breaks text into lines no wider than width. Embedded newlines always
// start a new line; a blank source line yields an empty entry. Words wider
// than the line are split by rune, and every line holds at least one rune.
func Wrap(m Metrics, text string, st Style, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		space := m.Width(" ", st)
		var cur strings.Builder
		curW := 0.0
		flush := func() {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}

		for _, word := range words {
			ww := m.Width(word, st)
			if cur.Len() > 0 && curW+space+ww <= width {
				cur.WriteByte(' ')
				cur.WriteString(word)
				curW += space + ww
				continue
			}
			if cur.Len() > 0 {
				flush()
			}
			if ww <= width {
				cur.WriteString(word)
				curW = ww
				continue
			}
			pieces := splitWord(m, word, st, width)
			for _, p := range pieces[:len(pieces)-1] {
				lines = append(lines, p)
			}
			last := pieces[len(pieces)-1]
			cur.WriteString(last)
			curW = m.Width(last, st)
		}
		if cur.Len() > 0 {
			flush()
		}
	}
	return lines
}

// splitWord cuts a single over-long word into pieces that fit width.
func splitWord(m Metrics, word string, st Style, width float64) []string {
	var pieces []string
	start := 0
	for start < len(word) {
		end := start
		for end < len(word) {
			_, size := utf8.DecodeRuneInString(word[end:])
			if end > start && m.Width(word[start:end+size], st) > width {
				break
			}
			end += size
		}
		pieces = append(pieces, word[start:end])
		start = end
	}
	return pieces
}
