package utils

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// TruncateToWidth truncates string to width with ellipsis
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return TrimToWidth(text, width)
	}
	return TrimToWidth(text, width-3) + "..."
}

// TrimToWidth trims string to width without ellipsis
func TrimToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	var sb strings.Builder
	currentWidth := 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if currentWidth+w > width {
			break
		}
		sb.WriteRune(r)
		currentWidth += w
	}
	return sb.String()
}

// PadStyled pads text with spaces to width, accounting for style
func PadStyled(text string, width int) string {
	if width <= 0 {
		return text
	}
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}
	return text + strings.Repeat(" ", width-textWidth)
}

// Wrap breaks plain text into lines no wider than width. Words longer than
// width are split.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var cur strings.Builder
		curWidth := 0
		flush := func() {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}

		for _, word := range words {
			ww := runewidth.StringWidth(word)
			for ww > width {
				if curWidth > 0 {
					flush()
				}
				head := TrimToWidth(word, width)
				if head == "" {
					head = string([]rune(word)[:1])
				}
				lines = append(lines, head)
				word = word[len(head):]
				ww = runewidth.StringWidth(word)
			}
			if ww == 0 {
				continue
			}
			switch {
			case curWidth == 0:
				cur.WriteString(word)
				curWidth = ww
			case curWidth+1+ww <= width:
				cur.WriteByte(' ')
				cur.WriteString(word)
				curWidth += 1 + ww
			default:
				flush()
				cur.WriteString(word)
				curWidth = ww
			}
		}
		if curWidth > 0 {
			flush()
		}
	}
	return lines
}
