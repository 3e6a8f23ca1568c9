package ui

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"
)

// PagerOps shows long content in the ov pager
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps(program *tea.Program) *PagerOps {
	return &PagerOps{
		program: program,
	}
}

// Show hands the terminal to ov until the user quits it
func (h *PagerOps) Show(content string) error {
	if h.program == nil {
		return errors.New("program not set")
	}

	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// ov needs a moment to let go of the tty
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	configureVimKeyBindings(&config)
	root.SetConfig(config)

	return root.Run()
}

func configureVimKeyBindings(config *oviewer.Config) {
	if config.Keybind == nil {
		config.Keybind = make(map[string][]string)
	}
	config.Keybind["exit"] = []string{"Escape", "q", "ctrl+c"}
	config.Keybind["down"] = []string{"Enter", "Down", "ctrl+n", "j"}
	config.Keybind["up"] = []string{"Up", "ctrl+p", "k"}
	config.Keybind["top"] = []string{"Home", "g"}
	config.Keybind["bottom"] = []string{"End", "G"}
	config.Keybind["page_down"] = []string{"PageDown", "ctrl+f", " "}
	config.Keybind["page_up"] = []string{"PageUp", "ctrl+b"}
}

// showInPager returns a command that pauses rendering around the pager
func (m *Model) showInPager(title, content string) tea.Cmd {
	if m.noPager || m.program == nil {
		return func() tea.Msg { return pagerMsg{title: title, content: content, err: errors.New("pager disabled")} }
	}
	program := m.program
	return func() tea.Msg {
		program.Send(pauseRenderingMsg{})
		err := NewPagerOps(program).Show(content)
		program.Send(resumeRenderingMsg{})
		return pagerMsg{title: title, content: content, err: err}
	}
}
