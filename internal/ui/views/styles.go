package views

import (
	"github.com/charmbracelet/lipgloss"

	"refdesk/internal/approval"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Tab           lipgloss.Style
	ActiveTab     lipgloss.Style
	Confirm       lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Filter        lipgloss.Style
	EditBadge     lipgloss.Style
	PopupBox      lipgloss.Style
	EditorBox     lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Scroll        lipgloss.Style
	Highlight     lipgloss.Style
	HighlightBg   lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
	SelectionBg   lipgloss.Style
	Header        lipgloss.Style
	Cell          lipgloss.Style
	FocusCell     lipgloss.Style
	EditingCell   lipgloss.Style
	DirtyCell     lipgloss.Style
	ReadOnlyCell  lipgloss.Style
	Section       lipgloss.Style
	Key           lipgloss.Style
	Desc          lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Tab:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		ActiveTab: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true).Underline(true),
		Confirm:   lipgloss.NewStyle().Bold(true),
		Dim:       lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Filter:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		EditBadge: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1),
		PopupBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(1).
			BorderForeground(lipgloss.Color("241")),
		EditorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.Color("99")),
		Help: lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(1, 2),
		Scroll:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		HighlightBg:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		SelectionBg:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Header:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Cell:          lipgloss.NewStyle(),
		FocusCell:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Background(lipgloss.Color("238")).Bold(true),
		EditingCell:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")),
		DirtyCell:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true),
		ReadOnlyCell:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Section:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Key:           lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Desc:          lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

// StatusColor returns the color for an approval status
func StatusColor(s approval.Status) string {
	switch {
	case s == approval.StatusDoneReview:
		return "78" // green
	case s == approval.StatusInReview:
		return "33" // blue
	case s.IsRequested():
		return "214" // yellow
	default:
		return "241"
	}
}
