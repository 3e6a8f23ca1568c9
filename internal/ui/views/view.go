package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusKind selects the color of the status line
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusOK
	StatusWarn
	StatusErr
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int

	Resource  string
	Tabs      []string
	ActiveTab int
	PageInfo  string

	Loading     bool
	Spinner     string
	Pending     int
	EditMode    bool
	FilterQuery string

	// InputLine is the active text input or confirmation prompt
	InputLine string
	Confirm   string

	StatusMessage string
	StatusKind    StatusKind

	Grid    *GridView
	Queue   *QueueView
	Journal *JournalView
	Empty   string

	HelpLine string

	// Editor is a select list or date picker drawn next to the grid
	Editor string
	// Popup is a full popup such as a payload or notice
	Popup      string
	PopupTitle string
}

// Chrome is the number of lines around the list body: padding, title, tabs,
// status, help and scroll indicators.
const Chrome = 9

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	gridRender  *GridRenderer
	queueRender *QueueRenderer
	popupRender *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		gridRender:  NewGridRenderer(styles),
		queueRender: NewQueueRenderer(styles),
		popupRender: NewPopupRenderer(styles),
	}
}

// Styles exposes the renderer styles
func (r *Renderer) Styles() *Styles { return r.styles }

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.titleLine(state))
	content.WriteString("\n")
	content.WriteString(r.tabLine(state))
	content.WriteString("\n")

	if state.Confirm != "" {
		content.WriteString(r.styles.Confirm.Render(state.Confirm + " (y/n): "))
		content.WriteString("\n")
	} else if state.InputLine != "" {
		content.WriteString(state.InputLine)
		content.WriteString("\n")
	}

	var mainContent string
	switch {
	case state.Grid != nil && len(state.Grid.Rows) > 0:
		mainContent = r.gridRender.Render(*state.Grid)
	case state.Queue != nil && len(state.Queue.Items) > 0:
		mainContent = r.queueRender.Render(*state.Queue)
	case state.Journal != nil && len(state.Journal.Entries) > 0:
		mainContent = r.queueRender.RenderJournal(*state.Journal)
	case state.Loading:
		mainContent = r.styles.Dim.Render("Loading...")
	default:
		mainContent = r.styles.Dim.Render(state.Empty)
	}
	if state.Editor != "" {
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, mainContent, "  ", r.styles.EditorBox.Render(state.Editor))
	}
	content.WriteString(mainContent)

	bottom := r.bottomLines(state)
	currentLines := strings.Count(content.String(), "\n") + 1
	availableLines := state.Height - 2
	if availableLines <= 0 {
		availableLines = 22
	}
	if pad := availableLines - currentLines - len(bottom); pad > 0 {
		content.WriteString(strings.Repeat("\n", pad))
	}
	for _, line := range bottom {
		content.WriteString("\n")
		content.WriteString(line)
	}

	mainStyle := r.styles.Main.MaxHeight(state.Height)
	finalContent := mainStyle.Render(content.String())

	if state.Popup != "" {
		popup := state.Popup
		if state.PopupTitle != "" {
			popup = r.styles.Title.Render(state.PopupTitle) + "\n\n" + popup
		}
		return r.popupRender.RenderPopupOverlay(finalContent, popup, state.Height, state.Width, r.styles.PopupBox)
	}
	return finalContent
}

func (r *Renderer) titleLine(state ViewState) string {
	logo := r.styles.Title.Render("refdesk")
	if state.Resource != "" {
		logo += r.styles.Dim.Render(" · ") + r.styles.Highlight.Render(state.Resource)
	}

	var right []string
	if state.Loading {
		indicator := strings.TrimSpace(state.Spinner + " Loading")
		if state.Pending > 1 {
			indicator = fmt.Sprintf("%s %d", indicator, state.Pending)
		}
		right = append(right, r.styles.Dim.Render(indicator))
	}
	if state.FilterQuery != "" {
		right = append(right, r.styles.Filter.Render(fmt.Sprintf("[Filter: %s]", state.FilterQuery)))
	}
	if state.EditMode {
		right = append(right, r.styles.EditBadge.Render("EDIT"))
	}
	if len(right) == 0 {
		return logo
	}

	rightContent := strings.Join(right, "  ")
	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	paddingWidth := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(rightContent)
	if paddingWidth > 0 {
		return logo + strings.Repeat(" ", paddingWidth) + rightContent
	}
	return logo + "  " + rightContent
}

func (r *Renderer) tabLine(state ViewState) string {
	parts := make([]string, 0, len(state.Tabs))
	for i, tab := range state.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tab)
		if i == state.ActiveTab {
			parts = append(parts, r.styles.ActiveTab.Render(label))
		} else {
			parts = append(parts, r.styles.Tab.Render(label))
		}
	}
	line := strings.Join(parts, "   ")
	if state.PageInfo != "" {
		line += "   " + r.styles.Dim.Render(state.PageInfo)
	}
	return line
}

func (r *Renderer) bottomLines(state ViewState) []string {
	var lines []string
	if state.StatusMessage != "" {
		style := r.styles.Status
		switch state.StatusKind {
		case StatusOK:
			style = r.styles.StatusSuccess
		case StatusWarn:
			style = r.styles.StatusWarning
		case StatusErr:
			style = r.styles.StatusError
		}
		lines = append(lines, style.Render(state.StatusMessage))
	}
	if state.Popup == "" {
		helpText := "Press ? for help"
		if state.HelpLine != "" {
			helpText = state.HelpLine + "  " + r.styles.Help.Render("• ? help")
		} else {
			helpText = r.styles.Help.Render(helpText)
		}
		lines = append(lines, helpText)
	}
	return lines
}

// windowLines cuts lines to the viewport and adds scroll indicators
func windowLines(styles *Styles, lines []string, offset, height int) []string {
	total := len(lines)
	if height <= 0 || total <= height && offset == 0 {
		return lines
	}
	offset = max(min(offset, total-1), 0)

	var out []string
	if offset > 0 {
		out = append(out, styles.Scroll.Render(fmt.Sprintf("↑ %d more above ↑", offset)))
	}
	end := min(offset+height, total)
	out = append(out, lines[offset:end]...)
	if end < total {
		out = append(out, styles.Scroll.Render(fmt.Sprintf("↓ %d more below ↓", total-end)))
	}
	return out
}
