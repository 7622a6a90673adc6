package render

import "strings"

// Wrap greedily word-wraps text to lines of at most width characters.
// Runs of whitespace, newlines included, collapse to a single space and
// words longer than width are split.
func Wrap(text string, width int) []string {
	if width <= 0 {
		width = 1
	}

	var (
		lines   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, string(current))
			current = current[:0]
		}
	}

	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		for len(runes) > 0 {
			room := width - len(current)
			if len(current) > 0 {
				room--
			}

			if len(runes) <= room {
				if len(current) > 0 {
					current = append(current, ' ')
				}
				current = append(current, runes...)
				runes = nil
				continue
			}

			if len(current) > 0 {
				flush()
				continue
			}

			current = append(current, runes[:width]...)
			runes = runes[width:]
			flush()
		}
	}
	flush()
	return lines
}
