package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	styles *Styles
	gray   lipgloss.Style
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
		gray:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// RenderPopupOverlay renders a popup centered on top of main content.
// The base stays visible around the popup in greyscale.
func (pr *PopupRenderer) RenderPopupOverlay(mainContent, popupContent string, height, width int, popupStyle lipgloss.Style) string {
	styledPopup := popupStyle.Render(popupContent)
	if width <= 0 || height <= 0 {
		return lipgloss.JoinVertical(lipgloss.Left, mainContent, styledPopup)
	}

	modal := strings.Split(styledPopup, "\n")
	if len(modal) > height {
		modal = modal[:height]
	}
	modalW := lipgloss.Width(styledPopup)
	x := max((width-modalW)/2, 0)
	y := max((height-len(modal))/2, 0)

	base := strings.Split(ansiRE.ReplaceAllString(mainContent, ""), "\n")
	for len(base) < height {
		base = append(base, "")
	}
	base = base[:height]

	out := make([]string, len(base))
	for i, line := range base {
		if i < y || i >= y+len(modal) {
			out[i] = pr.gray.Render(line)
			continue
		}
		left := runewidth.Truncate(line, x, "")
		left += strings.Repeat(" ", x-runewidth.StringWidth(left))
		right := cutLeft(line, x+modalW)
		out[i] = pr.gray.Render(left) + modal[i-y] + pr.gray.Render(right)
	}
	return strings.Join(out, "\n")
}

// RenderCentered places popup content in the middle of an otherwise empty screen
func (pr *PopupRenderer) RenderCentered(popupContent string, height, width int, popupStyle lipgloss.Style) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, popupStyle.Render(popupContent))
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// cutLeft drops the first n display columns of s
func cutLeft(s string, n int) string {
	w := 0
	for i, r := range s {
		if w >= n {
			return s[i:]
		}
		w += runewidth.RuneWidth(r)
	}
	return ""
}

// Plain strips ANSI styling
func Plain(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}
