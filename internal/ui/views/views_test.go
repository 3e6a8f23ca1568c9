package views

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refdesk/internal/approval"
	"refdesk/internal/domain"
	"refdesk/internal/grid"
	"refdesk/internal/journal"
)

func TestFitPadsAndTruncatesByDisplayWidth(t *testing.T) {
	assert.Equal(t, "ab  ", fit("ab", 4))
	assert.Equal(t, 6, runewidth.StringWidth(fit("질문내용입니다", 6)))
	assert.True(t, strings.HasSuffix(fit("abcdefgh", 5), "…"))
	assert.Equal(t, "a b ", fit("a\nb", 4))
}

func TestLastVisibleColumn(t *testing.T) {
	cols := []grid.Column{{Field: "a", Width: 10}, {Field: "b", Width: 10}, {Field: "c", Width: 10}}
	assert.Equal(t, 2, LastVisibleColumn(cols, 0, 0))
	assert.Equal(t, 1, LastVisibleColumn(cols, 0, 24))
	assert.Equal(t, 2, LastVisibleColumn(cols, 2, 5), "the first column is always shown")
}

func TestWindowLinesAddsIndicators(t *testing.T) {
	s := NewStyles()
	lines := []string{"a", "b", "c", "d", "e"}

	out := windowLines(s, lines, 0, 10)
	assert.Equal(t, lines, out)

	out = windowLines(s, lines, 1, 2)
	require.Len(t, out, 4)
	assert.Contains(t, Plain(out[0]), "1 more above")
	assert.Equal(t, "b", out[1])
	assert.Contains(t, Plain(out[3]), "2 more below")
}

func TestGridRenderMarksDraftAndDirtyRows(t *testing.T) {
	r := NewGridRenderer(NewStyles())
	v := GridView{
		Columns: []grid.Column{{Field: "name", Header: "Name", Width: 8, Editable: true}},
		Rows:    []domain.Row{{"name": "one"}, {"name": "two"}, {"name": "three"}},
		Dirty:   func(ri int, field string) bool { return ri == 1 },
		Draft:   func(ri int) bool { return ri == 2 },
		Height:  10,
	}
	out := strings.Split(Plain(r.Render(v)), "\n")
	require.Len(t, out, 4)
	assert.Contains(t, out[0], "Name")
	assert.True(t, strings.HasPrefix(out[1], "  one"))
	assert.True(t, strings.HasPrefix(out[2], "● two"))
	assert.True(t, strings.HasPrefix(out[3], "+ three"))
}

func TestGridRenderShowsEditorTextInFocusedPlainCell(t *testing.T) {
	r := NewGridRenderer(NewStyles())
	v := GridView{
		Columns:    []grid.Column{{Field: "name", Width: 8, Editable: true}},
		Rows:       []domain.Row{{"name": "old"}},
		Editing:    true,
		EditorText: "new",
	}
	out := Plain(r.Render(v))
	assert.Contains(t, out, "new")
	assert.NotContains(t, out, "old")
}

func TestQueueRenderShowsLabelsAndSelection(t *testing.T) {
	r := NewQueueRenderer(NewStyles())
	v := QueueView{
		Items: []approval.Request{
			{ID: "1", No: 2, Kind: approval.KindUpdate, Status: approval.StatusUpdateRequested, RequesterName: "kim"},
			{ID: "2", No: 1, Kind: approval.KindDelete, Status: approval.StatusInReview},
		},
		Selected: map[string]bool{"1": true},
		InFlight: true,
	}
	out := Plain(r.Render(v))
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "[ ]")
	assert.Contains(t, out, "수정 요청")
	assert.Contains(t, out, "결재 진행")
	assert.Contains(t, out, "kim")
	assert.Contains(t, out, "processing...")
}

func TestJournalRender(t *testing.T) {
	r := NewQueueRenderer(NewStyles())
	out := Plain(r.RenderJournal(JournalView{Entries: []journal.Entry{{
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local),
		Resource:   "app-schemes",
		Action:     "approve",
		RequestIDs: []string{"4", "5"},
	}}}))
	assert.Contains(t, out, "2026-01-02 03:04:05")
	assert.Contains(t, out, "approve")
	assert.Contains(t, out, "4,5")
}

func TestPopupOverlayKeepsBaseAroundPopup(t *testing.T) {
	pr := NewPopupRenderer(NewStyles())
	base := strings.Repeat(strings.Repeat("x", 20)+"\n", 5)
	out := strings.Split(Plain(pr.RenderPopupOverlay(base, "hi", 5, 20, NewStyles().PopupBox.Padding(0))), "\n")
	require.Len(t, out, 5)
	assert.Equal(t, strings.Repeat("x", 20), out[0])
	assert.Contains(t, out[2], "hi")
	assert.True(t, strings.HasPrefix(out[2], "xxxxxxx"))
	assert.True(t, strings.HasSuffix(out[2], "xxxxxxx"))
}

func TestRenderHasTitleTabsAndHelp(t *testing.T) {
	r := NewRenderer()
	out := Plain(r.Render(ViewState{
		Width:         80,
		Height:        20,
		Resource:      "추천질문",
		Tabs:          []string{"Grid", "Queue", "Journal"},
		EditMode:      true,
		FilterQuery:   "ai",
		StatusMessage: "saved",
		Empty:         "No rows",
	}))
	for _, want := range []string{"refdesk", "추천질문", "1 Grid", "2 Queue", "EDIT", "[Filter: ai]", "saved", "No rows", "Press ? for help"} {
		assert.Contains(t, out, want)
	}
}

func TestHelpPopupScrolls(t *testing.T) {
	r := NewRenderer()
	full := Plain(r.HelpContent())
	assert.Contains(t, full, "Final approval of selected")

	cut := Plain(r.HelpPopup(12, 3))
	assert.Contains(t, cut, "more above")
	assert.Contains(t, cut, "more below")
}
