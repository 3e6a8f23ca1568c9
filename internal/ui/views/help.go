package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpEntry struct {
	key  string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Navigation", []helpEntry{
		{"↑/↓, j/k", "Move up/down"},
		{"←/→, h/l", "Move between cells"},
		{"PgUp/PgDn", "Page up/down"},
		{"gg/G", "Go to top/bottom"},
		{"[ / ]", "Previous/next page"},
		{"< / >", "Previous/next resource"},
		{"1 2 3", "Grid, approval queue, journal"},
	}},
	{"Grid", []helpEntry{
		{"e", "Toggle edit mode"},
		{"Enter", "Edit cell / commit"},
		{"Tab", "Commit and move to the next editable cell"},
		{"Esc", "Cancel edit"},
		{"s", "Submit row for approval"},
		{"n", "New row"},
		{"d", "Request deletion"},
		{"u", "Revert row"},
		{"y", "Copy cell value"},
	}},
	{"Approval Queue", []helpEntry{
		{"Space", "Toggle selection"},
		{"V", "Select range to cursor"},
		{"a", "Select/deselect all"},
		{"A", "Final approval of selected"},
		{"R", "Retract selected"},
		{"v", "View payload"},
		{"o, Enter", "Open target row"},
	}},
	{"Other", []helpEntry{
		{"/", "Filter rows (field:value or text)"},
		{"r", "Reload"},
		{"Esc", "Clear selection / go back"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}},
}

// HelpContent renders the full help text
func (r *Renderer) HelpContent() string {
	var help strings.Builder

	help.WriteString(r.styles.Title.Render("refdesk Help"))
	help.WriteString("\n")

	for _, section := range helpSections {
		help.WriteString("\n")
		help.WriteString(r.styles.Section.Render(section.title))
		help.WriteString("\n")
		for _, e := range section.entries {
			help.WriteString(fmt.Sprintf("  %s  %s\n",
				r.styles.Key.Render(fmt.Sprintf("%-10s", e.key)),
				r.styles.Desc.Render(e.desc)))
		}
	}
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  Filter examples: status:in_service, service_nm:ai_calc"))
	return help.String()
}

// HelpPopup renders the help text cut to a popup of the given height
func (r *Renderer) HelpPopup(height, scrollOffset int) string {
	lines := strings.Split(r.HelpContent(), "\n")
	totalLines := len(lines)

	visibleHeight := max(height-6, 5)
	if totalLines <= visibleHeight {
		return strings.Join(lines, "\n")
	}

	scrollOffset = max(min(scrollOffset, totalLines-visibleHeight), 0)
	endLine := min(scrollOffset+visibleHeight, totalLines)
	lines = lines[scrollOffset:endLine]
	if scrollOffset > 0 {
		lines[0] = r.styles.Scroll.Render("↑ (more above)")
	}
	if endLine < totalLines {
		lines[len(lines)-1] = r.styles.Scroll.Render("↓ (more below)")
	}
	return strings.Join(lines, "\n")
}
