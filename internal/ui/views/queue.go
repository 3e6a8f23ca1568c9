package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"refdesk/internal/approval"
	"refdesk/internal/journal"
)

// QueueView is the approval queue of one resource
type QueueView struct {
	Items    []approval.Request
	Selected map[string]bool
	Cursor   int
	Offset   int
	Height   int
	InFlight bool
}

// JournalView is the local action history
type JournalView struct {
	Entries []journal.Entry
	Cursor  int
	Offset  int
	Height  int
}

// QueueRenderer handles rendering of approval requests and journal entries
type QueueRenderer struct {
	styles *Styles
}

// NewQueueRenderer creates a new queue renderer
func NewQueueRenderer(styles *Styles) *QueueRenderer {
	return &QueueRenderer{styles: styles}
}

// Render draws the queue list
func (q *QueueRenderer) Render(v QueueView) string {
	header := q.styles.Header.Render(strings.Join([]string{
		"    ", fit("No", 4), fit("상태", 10), fit("구분", 6), fit("대상", 12), fit("요청자", 10), "요청일시",
	}, " "))

	multi := len(v.Selected) > 0
	lines := make([]string, len(v.Items))
	for i, req := range v.Items {
		lines[i] = q.renderRequest(req, i == v.Cursor, multi, v.Selected[req.ID.String()])
	}

	out := []string{header}
	out = append(out, windowLines(q.styles, lines, v.Offset, v.Height)...)
	if v.InFlight {
		out = append(out, q.styles.StatusLoading.Render("processing..."))
	}
	return strings.Join(out, "\n")
}

func (q *QueueRenderer) renderRequest(req approval.Request, isCursor, multi, selected bool) string {
	bg := lipgloss.NewStyle()
	if isCursor {
		bg = q.styles.SelectionBg
	}

	indicator := "    "
	if multi || selected {
		indicator = "[ ] "
		if selected {
			indicator = "[x] "
		}
	}

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(StatusColor(req.Status)))
	if isCursor {
		statusStyle = statusStyle.Background(lipgloss.Color("238"))
	}
	if req.Retracted {
		statusStyle = statusStyle.Strikethrough(true)
	}

	target := req.TargetID.String()
	if target == "" {
		target = "-"
	}

	parts := []string{
		bg.Render(indicator + fit(strconv.Itoa(req.No), 4)),
		statusStyle.Render(fit(req.Status.Label(), 10)),
		bg.Render(fit(string(req.Kind), 6)),
		bg.Render(fit(target, 12)),
		bg.Render(fit(req.RequesterName, 10)),
		bg.Render(req.RequestedAt),
	}
	return strings.Join(parts, bg.Render(" "))
}

// RenderJournal draws journal entries, newest first
func (q *QueueRenderer) RenderJournal(v JournalView) string {
	header := q.styles.Header.Render(strings.Join([]string{
		fit("시각", 19), fit("리소스", 22), fit("동작", 10), fit("구분", 6), fit("대상", 12), "요청",
	}, " "))

	lines := make([]string, len(v.Entries))
	for i, e := range v.Entries {
		line := strings.Join([]string{
			fit(e.Timestamp.Local().Format("2006-01-02 15:04:05"), 19),
			fit(e.Resource, 22),
			fit(e.Action, 10),
			fit(e.Kind, 6),
			fit(e.TargetID, 12),
			strings.Join(e.RequestIDs, ","),
		}, " ")
		if i == v.Cursor {
			line = q.styles.HighlightBg.Render(line)
		}
		lines[i] = line
	}

	out := []string{header}
	out = append(out, windowLines(q.styles, lines, v.Offset, v.Height)...)
	return strings.Join(out, "\n")
}
