package welcome

import (
	"fmt"
	"strings"

	"chatcal/pkg/ui/components/utils"
	"chatcal/pkg/ui/styles"
	"chatcal/pkg/version"

	"github.com/mattn/go-runewidth"
)

const maxBoxWidth = 53

var shortcuts = []struct{ key, desc string }{
	{"Enter", "Extract an event from your text"},
	{"Ctrl+Y", "Add the preview to the agenda"},
	{"Esc", "Discard preview / cancel request"},
	{"Ctrl+E", "Export agenda as .ics"},
	{"Ctrl+K", "Copy agenda to clipboard"},
	{"Ctrl+C", "Quit"},
}

// Message returns the welcome box shown before the first request, fitted
// to width.
func Message(width int) string {
	boxWidth := maxBoxWidth
	if width-2 < boxWidth {
		boxWidth = width - 2
	}
	if boxWidth < 10 {
		return styles.WelcomeTitleStyle.Render("chatcal")
	}

	makeLine := func(content string, visualWidth int) string {
		pad := boxWidth - visualWidth
		if pad < 0 {
			pad = 0
		}
		return styles.WelcomeBorderStyle.Render("│") + content + strings.Repeat(" ", pad) + styles.WelcomeBorderStyle.Render("│")
	}
	centered := func(text string, style func(...string) string) string {
		text = utils.TruncateToWidth(text, boxWidth-2)
		w := runewidth.StringWidth(text)
		left := (boxWidth - w) / 2
		return makeLine(strings.Repeat(" ", left)+style(text), left+w)
	}

	top := styles.WelcomeBorderStyle.Render("╭" + strings.Repeat("─", boxWidth) + "╮")
	bottom := styles.WelcomeBorderStyle.Render("╰" + strings.Repeat("─", boxWidth) + "╯")
	empty := makeLine("", 0)

	lines := []string{top}
	lines = append(lines, centered("Welcome to chatcal", styles.WelcomeTitleStyle.Render))
	lines = append(lines, centered("Try: Block 2 hours Friday for writing", styles.TextMutedStyle.Render))
	lines = append(lines, empty)

	for _, s := range shortcuts {
		key := fmt.Sprintf("  %-8s", s.key)
		desc := utils.TruncateToWidth(s.desc, boxWidth-runewidth.StringWidth(key))
		line := styles.WelcomeKeyStyle.Render(key) + styles.TextStyle.Render(desc)
		lines = append(lines, makeLine(line, runewidth.StringWidth(key)+runewidth.StringWidth(desc)))
	}

	lines = append(lines, empty)
	lines = append(lines, centered(version.Summary(), styles.WelcomeVersionStyle.Render))
	lines = append(lines, bottom)

	return strings.Join(lines, "\n")
}
