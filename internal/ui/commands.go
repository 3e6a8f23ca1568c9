package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"refdesk/internal/api"
	"refdesk/internal/approval"
	"refdesk/internal/domain"
	"refdesk/internal/resources"
)

const (
	// categoryField is the dynamic select whose options the backend owns
	categoryField = "qst_ctgr"
	journalLimit  = 200
	statusTimeout = 3 * time.Second
)

func (m *Model) loadRows() tea.Cmd {
	if m.def == nil || m.backend == nil {
		return nil
	}
	ctx, backend := m.ctx, m.backend
	res := m.def.Name
	q := api.ListQuery{Page: m.state.Page, Size: m.pageSize()}
	return func() tea.Msg {
		page, err := backend.List(ctx, res, q)
		return rowsLoadedMsg{resource: res, page: page, err: err}
	}
}

// loadCategories refreshes backend-owned select options for every group the
// definition knows about
func (m *Model) loadCategories() tea.Cmd {
	def := m.def
	if def == nil || m.backend == nil {
		return nil
	}
	groups := def.DynamicGroups(categoryField)
	if len(groups) == 0 {
		return nil
	}
	ctx, backend, log := m.ctx, m.backend, m.log
	return func() tea.Msg {
		return categoriesLoadedMsg{resource: def.Name, err: refreshCategories(ctx, backend, def, groups, log)}
	}
}

func refreshCategories(ctx context.Context, backend Backend, def *resources.Definition, groups []string, log *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, group := range groups {
		g.Go(func() error {
			opts, err := backend.QuestionCategories(ctx, group)
			if err != nil {
				return err
			}
			if len(opts) == 0 {
				log.Debug("no categories from backend, keeping built-in options", zap.String("service", group))
				return nil
			}
			return def.SetGroupOptions(categoryField, group, opts)
		})
	}
	return g.Wait()
}

func (m *Model) loadQueue() tea.Cmd {
	if m.def == nil || m.queue == nil {
		return nil
	}
	ctx, queue := m.ctx, m.queue
	res := m.def.Name
	return func() tea.Msg {
		items, err := queue.Load(ctx, res, nil)
		return queueLoadedMsg{resource: res, items: items, err: err}
	}
}

func (m *Model) loadJournal() tea.Cmd {
	if m.history == nil {
		return func() tea.Msg { return journalLoadedMsg{} }
	}
	ctx, history := m.ctx, m.history
	res := ""
	if m.def != nil {
		res = m.def.Name
	}
	return func() tea.Msg {
		entries, err := history.List(ctx, res, journalLimit)
		return journalLoadedMsg{entries: entries, err: err}
	}
}

func (m *Model) decide(action string, ids []string) tea.Cmd {
	ctx, queue := m.ctx, m.queue
	res := m.def.Name
	return func() tea.Msg {
		var err error
		if action == "approve" {
			err = queue.Approve(ctx, res, ids)
		} else {
			err = queue.Retract(ctx, res, ids)
		}
		return decisionDoneMsg{resource: res, action: action, ids: ids, err: err}
	}
}

func (m *Model) submit(kind approval.Kind, rowID, targetID string, before, after domain.Row) tea.Cmd {
	ctx, queue, def := m.ctx, m.queue, m.def
	var beforeAny, afterAny any
	items := []any{}
	if before != nil {
		beforeAny = before
	}
	if after != nil {
		afterAny = after
		items = append(items, after)
	} else if before != nil {
		// deletions carry the row being removed
		items = append(items, before)
	}
	return func() tea.Msg {
		req, err := queue.Submit(ctx, def.Name, def.Label, def.TargetType, targetID, kind, beforeAny, afterAny, items)
		return submittedMsg{resource: def.Name, kind: kind, rowID: rowID, request: req, err: err}
	}
}

func clearStatusAfter(seq int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}
