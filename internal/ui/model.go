package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"refdesk/internal/api"
	"refdesk/internal/approval"
	"refdesk/internal/config"
	"refdesk/internal/domain"
	"refdesk/internal/eventbus"
	"refdesk/internal/grid"
	"refdesk/internal/journal"
	"refdesk/internal/resources"
	"refdesk/internal/session"
	"refdesk/internal/ui/input"
	"refdesk/internal/ui/input/types"
	"refdesk/internal/ui/logic"
	"refdesk/internal/ui/services/selection"
	"refdesk/internal/ui/state"
	"refdesk/internal/ui/viewmodels"
	"refdesk/internal/ui/views"
	"refdesk/internal/validate"
)

const defaultPageSize = 20

// Backend is the part of the API client the console reads rows from
type Backend interface {
	List(ctx context.Context, resource string, q api.ListQuery) (domain.Page[domain.Row], error)
	QuestionCategories(ctx context.Context, serviceCd string) ([]grid.Option, error)
}

// History lists recorded approval actions
type History interface {
	List(ctx context.Context, resource string, limit int) ([]journal.Entry, error)
}

// Deps are the services the console works with
type Deps struct {
	Config   *config.Config
	Catalog  *resources.Catalog
	Backend  Backend
	Queue    *approval.Queue
	History  History
	Session  *session.Store
	User     string
	NoPager  bool
	Logger   *zap.Logger
	Resource string
	// Loading is the request counter behind LoadingChangedEvent. When set,
	// the indicator follows its current count rather than the event payload.
	Loading LoadingSource
}

// LoadingSource reports how many backend requests are outstanding
type LoadingSource interface {
	Pending() int
}

type popupKind int

const (
	popupNone popupKind = iota
	popupHelp
	popupPayload
	popupNotice
)

// Model represents the UI state
type Model struct {
	cfg     *config.Config
	catalog *resources.Catalog
	backend Backend
	queue   *approval.Queue
	history History
	session *session.Store
	user    string
	log     *zap.Logger
	loading LoadingSource
	noPager bool
	ctx     context.Context

	state  *state.AppState
	width  int
	height int
	screen types.Screen

	// current resource and its grid
	def     *resources.Definition
	grid    *grid.Controller
	visible []int // indices into state.Rows that pass the filter

	// open cell editor; nil for plain cells, which use the shared text input
	editor  cellEditor
	editing *grid.CellRef
	pending []tea.Cmd

	pendingConfirm types.Action
	confirmPrompt  string

	popup   popupKind
	payload viewport.Model

	spinner      spinner.Model
	help         help.Model
	renderer     *views.Renderer
	viewModel    *viewmodels.ViewModel
	inputHandler *input.Handler
	selection    *selection.Service
	navigator    *logic.Navigator
	filter       *logic.SearchFilter

	inPagerMode bool
	program     *tea.Program
}

// NewModel creates a new UI model
func NewModel(deps Deps) *Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sess := deps.Session
	if sess == nil {
		sess = session.New()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		cfg:          cfg,
		catalog:      deps.Catalog,
		backend:      deps.Backend,
		queue:        deps.Queue,
		history:      deps.History,
		session:      sess,
		user:         deps.User,
		log:          log,
		noPager:      deps.NoPager,
		loading:      deps.Loading,
		ctx:          context.Background(),
		state:        state.NewAppState(),
		spinner:      sp,
		help:         help.New(),
		renderer:     views.NewRenderer(),
		inputHandler: input.New(),
		selection:    selection.NewService(),
		navigator:    logic.NewNavigator(),
		payload:      viewport.New(0, 0),
	}
	m.viewModel = viewmodels.NewViewModel(m.state, textinput.New())
	m.filter = logic.NewSearchFilter(m.displayLabel)
	m.selection.SetQueryFunction(func(i int) string {
		items := m.visibleQueue()
		if i < 0 || i >= len(items) {
			return ""
		}
		return string(items[i].ID)
	})

	name := deps.Resource
	if m.catalog != nil {
		if _, ok := m.catalog.Get(name); !ok {
			if names := m.catalog.Names(); len(names) > 0 {
				name = names[0]
			}
		}
		if err := m.useResource(name); err != nil {
			log.Warn("no usable resource", zap.String("resource", name), zap.Error(err))
		}
	}
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

// SetResource selects the resource shown at startup
func (m *Model) SetResource(name string) error {
	return m.useResource(name)
}

// useResource switches the grid to another catalog resource and drops
// everything loaded for the previous one
func (m *Model) useResource(name string) error {
	if m.catalog == nil {
		return errors.New("no resource catalog")
	}
	def, ok := m.catalog.Get(name)
	if !ok {
		return fmt.Errorf("unknown resource %q", name)
	}
	editMode := m.grid != nil && m.grid.EditMode()

	m.def = def
	m.grid = grid.NewController(gridHost{m}, grid.Options{
		Specs:     def.Specs(),
		Fields:    def.FieldConfig(),
		RowID:     def.RowID,
		SingleRow: def.SingleRow,
		Settle:    m.cfg.UI.SettleDelay.Std(),
		Logger:    m.log.Named("grid"),
	})
	m.grid.SetEditMode(editMode)

	m.editor, m.editing = nil, nil
	m.state.Resource = name
	m.state.Page = 0
	m.state.SetRows(nil, def.RowID)
	m.state.SetQueue(nil)
	m.state.CursorCol, m.state.ColOffset, m.state.ViewportOffset = 0, 0, 0
	m.state.FilterQuery = ""
	m.selection.DeselectAll()
	m.refreshVisible()
	return nil
}

// Init returns the initial loads
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadRows(), m.loadCategories(), m.loadQueue())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateViewportHeight()
		return m, nil

	case tea.KeyMsg:
		if m.popup != popupNone {
			return m, m.handlePopupKey(msg)
		}
		actions, cmd := m.inputHandler.HandleKey(msg, m)
		cmds := []tea.Cmd{cmd}
		for _, action := range actions {
			cmds = append(cmds, m.processAction(action))
		}
		cmds = append(cmds, m.drain())
		return m, tea.Batch(cmds...)
	}

	cmd := m.inputHandler.Update(msg)
	return m, tea.Batch(cmd, m.handleNonKeyboardMsg(msg), m.drain())
}

func (m *Model) handlePopupKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return tea.Quit
	case "esc", "q", "enter":
		m.closePopup()
		return nil
	}

	switch m.popup {
	case popupHelp:
		switch key {
		case "?":
			m.closePopup()
		case "j", "down":
			m.state.HelpScrollOffset++
		case "k", "up":
			m.state.HelpScrollOffset = max(m.state.HelpScrollOffset-1, 0)
		case "g", "home":
			m.state.HelpScrollOffset = 0
		}
	case popupPayload:
		if key == "v" {
			m.closePopup()
			return nil
		}
		var cmd tea.Cmd
		m.payload, cmd = m.payload.Update(msg)
		return cmd
	case popupNotice:
		m.closePopup()
	}
	return nil
}

func (m *Model) closePopup() {
	m.popup = popupNone
	m.state.ShowHelp = false
	m.state.HelpScrollOffset = 0
	m.state.ClosePopup()
}

func (m *Model) openPopup(kind popupKind, title, content string) {
	m.popup = kind
	m.state.ShowPopup(title, content)
	if kind == popupPayload {
		m.payload.Width = max(min(m.width-10, 100), 20)
		m.payload.Height = max(m.height-10, 5)
		m.payload.SetContent(content)
		m.payload.GotoTop()
	}
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case deferredMsg:
		return m.schedule(msg.run())

	case cellEditStoppedMsg:
		tasks, _ := m.grid.Dispatch(grid.EditStoppedEvent{Cell: msg.cell})
		return m.schedule(tasks)

	case rowsLoadedMsg:
		return m.onRowsLoaded(msg)

	case categoriesLoadedMsg:
		if msg.err != nil {
			if m.def == nil || msg.resource != m.def.Name {
				return nil
			}
			return m.loadFailed("categories", msg.err)
		}
		if m.def != nil && msg.resource == m.def.Name {
			m.grid.SetFields(m.def.FieldConfig())
		}
		return nil

	case queueLoadedMsg:
		if msg.err != nil || m.def == nil || msg.resource != m.def.Name {
			return nil
		}
		m.state.SetQueue(msg.items)
		ids := make([]string, len(msg.items))
		for i, r := range msg.items {
			ids[i] = string(r.ID)
		}
		m.selection.Retain(ids)
		return nil

	case journalLoadedMsg:
		if msg.err != nil {
			return m.status(fmt.Sprintf("Loading journal failed: %v", msg.err), views.StatusErr)
		}
		m.state.SetJournal(msg.entries)
		return nil

	case decisionDoneMsg:
		return m.onDecisionDone(msg)

	case submittedMsg:
		return m.onSubmitted(msg)

	case EventMsg:
		return m.onEvent(msg.Event)

	case spinner.TickMsg:
		if !m.state.Loading {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case clearStatusMsg:
		m.state.ClearStatus(msg.seq)
		return nil

	case pagerMsg:
		if msg.err != nil {
			kind := popupPayload
			if msg.title == helpTitle {
				kind = popupHelp
				m.state.ShowHelp = true
			}
			m.openPopup(kind, msg.title, msg.content)
		}
		return nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return tea.ClearScreen
	}
	return nil
}

func (m *Model) onRowsLoaded(msg rowsLoadedMsg) tea.Cmd {
	if m.def == nil || msg.resource != m.def.Name {
		return nil
	}
	if msg.err != nil {
		return m.loadFailed(m.def.Label, msg.err)
	}
	rows := msg.page.Items
	grid.Number(rows, msg.page.Meta.Page, msg.page.Meta.Size, msg.page.Meta.TotalElements, true)
	m.state.Meta = msg.page.Meta
	m.state.SetRows(rows, m.def.RowID)
	m.editor, m.editing = nil, nil
	m.grid.Abort()
	if mode := m.inputHandler.CurrentMode(); mode == types.ModeCellEdit || mode == types.ModeSelect || mode == types.ModeDate {
		m.queueCmd(m.inputHandler.ChangeMode(types.ModeNormal, "", m))
	}
	m.refreshVisible()
	m.ensureCursorVisible()
	return nil
}

// loadFailed reports a failed backend read as a transient error status
func (m *Model) loadFailed(what string, err error) tea.Cmd {
	m.log.Warn("loading failed", zap.String("what", what), zap.Error(err))
	m.noticeIPChanged(err)
	return m.status(fmt.Sprintf("Loading %s failed: %v", what, err), views.StatusErr)
}

// noticeIPChanged shows the address-change notice once per user
func (m *Model) noticeIPChanged(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Code == "IP_CHANGED" && m.session.Once(m.user, session.NoticeIPChanged) {
		m.openPopup(popupNotice, "Notice", "Your network address changed since the last sign-in.\n\nPress any key to continue.")
	}
}

func (m *Model) onDecisionDone(msg decisionDoneMsg) tea.Cmd {
	if msg.err != nil {
		if errors.Is(msg.err, approval.ErrInFlight) || errors.Is(msg.err, approval.ErrInvalidTransition) {
			return m.status(msg.err.Error(), views.StatusWarn)
		}
		return nil
	}
	m.selection.DeselectAll()
	verb := "Sent to final approval"
	if msg.action == "retract" {
		verb = "Retracted"
	}
	if m.def != nil && msg.resource == m.def.Name {
		m.state.SetQueue(m.queue.Items(msg.resource))
	}
	return tea.Batch(m.status(fmt.Sprintf("%s: %d request(s)", verb, len(msg.ids)), views.StatusOK), m.loadJournal())
}

func (m *Model) onSubmitted(msg submittedMsg) tea.Cmd {
	if msg.err != nil {
		return nil
	}
	if m.def != nil && msg.resource == m.def.Name {
		if row := m.findRow(msg.rowID); row != nil && msg.kind != approval.KindDelete {
			m.state.Originals[msg.rowID] = row.Clone()
		}
		delete(m.state.Drafts, msg.rowID)
	}
	return tea.Batch(
		m.status(fmt.Sprintf("%s request submitted", msg.kind), views.StatusOK),
		m.loadQueue(),
	)
}

func (m *Model) onEvent(e eventbus.DomainEvent) tea.Cmd {
	switch e := e.(type) {
	case eventbus.LoadingChangedEvent:
		wasLoading := m.state.Loading
		m.state.Loading, m.state.Pending = e.Loading, e.Pending
		if m.loading != nil {
			m.state.Pending = m.loading.Pending()
			m.state.Loading = m.state.Pending > 0
		}
		if e.Loading && !wasLoading {
			return m.spinner.Tick
		}
	case eventbus.ErrorEvent:
		m.noticeIPChanged(e.Err)
		return m.status(e.Message, views.StatusErr)
	case eventbus.QueueLoadedEvent:
		if m.def != nil && e.Resource == m.def.Name && m.queue != nil {
			m.state.SetQueue(m.queue.Items(e.Resource))
		}
	case eventbus.ChangeSubmittedEvent, eventbus.RequestsApprovedEvent, eventbus.RequestsRetractedEvent:
		if m.screen == types.ScreenJournal {
			return m.loadJournal()
		}
	}
	return nil
}

// status shows msg and schedules its removal
func (m *Model) status(msg string, kind views.StatusKind) tea.Cmd {
	if msg == "" {
		return nil
	}
	return clearStatusAfter(m.state.SetStatus(msg, kind))
}

// View renders the UI
func (m *Model) View() string {
	if m.inPagerMode {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	resource := ""
	if m.def != nil {
		resource = m.def.Label
	}
	editMode := m.grid != nil && m.grid.EditMode()
	mode := m.inputHandler.CurrentMode()

	label := ""
	if m.editing != nil && m.grid != nil {
		if col, ok := m.grid.Column(m.editing.Field); ok {
			label = col.Header
		}
	}
	m.viewModel.SetDimensions(m.width, m.height)
	m.viewModel.SetInputMode(mode, label)
	if ti := m.inputHandler.TextInput(); ti != nil {
		m.viewModel.UpdateTextInput(*ti)
	}
	m.viewModel.SetScreen(m.screen, resource, editMode)

	confirm := ""
	if mode == types.ModeConfirm {
		confirm = m.confirmPrompt
	}
	keys := keyMap{screen: m.screen, editMode: editMode, editing: m.editing != nil}
	m.viewModel.SetChrome(m.spinner.View(), m.help.View(keys), confirm)

	editorView := ""
	if m.editor != nil {
		editorView = m.editor.View()
	}
	m.viewModel.SetGrid(m.gridView(), editorView)
	inFlight := m.queue != nil && m.def != nil && m.queue.InFlight(m.def.Name)
	m.viewModel.SetQueueSelection(m.selection.Snapshot(), inFlight)

	vs := m.viewModel.BuildViewState()
	if m.screen == types.ScreenQueue && m.state.FilterQuery != "" {
		vs.Queue.Items = m.visibleQueue()
	}
	switch m.popup {
	case popupHelp:
		vs.PopupTitle = helpTitle
		vs.Popup = m.renderer.HelpPopup(m.height, m.state.HelpScrollOffset)
	case popupPayload:
		vs.Popup = m.payload.View()
	}
	return m.renderer.Render(vs)
}

func (m *Model) gridView() *views.GridView {
	if m.grid == nil {
		return nil
	}
	rows := m.visibleRows()
	fields := m.grid.Fields()
	g := &views.GridView{
		Columns: m.grid.Columns(),
		Rows:    rows,
		Display: func(row domain.Row, col grid.Column) string {
			return displayValue(row, col.Field, fields)
		},
		Dirty: func(ri int, field string) bool {
			if ri < 0 || ri >= len(rows) {
				return false
			}
			orig, ok := m.state.Original(m.def.RowID(rows[ri]))
			if !ok {
				return false
			}
			return len(grid.ChangedFields(orig, rows[ri], []string{field})) > 0
		},
		Draft: func(ri int) bool {
			return ri >= 0 && ri < len(rows) && m.state.Drafts[m.def.RowID(rows[ri])]
		},
		CursorRow: m.state.CursorRow,
		CursorCol: m.state.CursorCol,
		Offset:    m.state.ViewportOffset,
		Height:    m.state.ViewportHeight,
		ColOffset: m.state.ColOffset,
		Width:     m.contentWidth(),
		EditMode:  m.grid.EditMode(),
		Editing:   m.editing != nil,
	}
	if m.editing != nil && m.editor == nil {
		g.EditorText = m.inputHandler.Value()
	}
	return g
}

// displayValue renders a cell for reading: select codes become labels and
// stored timestamps become readable dates
func displayValue(row domain.Row, field string, fields grid.FieldConfig) string {
	v := row.String(field)
	if r, ok := fields.DynamicSelect[field]; ok && r != nil {
		return grid.LabelFor(r(row), v)
	}
	if opts, ok := fields.SelectFields[field]; ok {
		return grid.LabelFor(opts, v)
	}
	if slices.Contains(fields.DateFields, field) {
		if t, ok := validate.ParseDate(v); ok {
			return t.Format("2006-01-02 15:04")
		}
	}
	return v
}

// displayLabel is the text the filter matches besides the raw value
func (m *Model) displayLabel(field, value string) string {
	if m.grid == nil {
		return value
	}
	fields := m.grid.Fields()
	if opts, ok := fields.SelectFields[field]; ok {
		return grid.LabelFor(opts, value)
	}
	return value
}

func (m *Model) updateViewportHeight() {
	m.state.ViewportHeight = max(m.height-views.Chrome, 3)
	m.ensureCursorVisible()
}

func (m *Model) contentWidth() int {
	return max(m.width-4, 10)
}

func (m *Model) pageSize() int {
	if m.cfg.UI.PageSize > 0 {
		return m.cfg.UI.PageSize
	}
	return defaultPageSize
}

// refreshVisible recomputes the filtered rows and hands them to the grid
func (m *Model) refreshVisible() {
	m.visible = m.visible[:0]
	if m.def == nil {
		return
	}
	if m.state.FilterQuery == "" || m.screen != types.ScreenGrid {
		for i := range m.state.Rows {
			m.visible = append(m.visible, i)
		}
	} else {
		fields := make([]string, 0, len(m.def.Columns))
		for _, c := range m.def.Columns {
			fields = append(fields, c.Field)
		}
		m.visible = m.filter.FilterRows(m.state.Rows, fields, m.state.FilterQuery)
	}
	m.grid.SetRows(m.visibleRows())
	m.state.CursorRow = max(min(m.state.CursorRow, len(m.visible)-1), 0)
}

func (m *Model) visibleRows() []domain.Row {
	rows := make([]domain.Row, 0, len(m.visible))
	for _, i := range m.visible {
		if i < len(m.state.Rows) {
			rows = append(rows, m.state.Rows[i])
		}
	}
	return rows
}

func (m *Model) findRow(id string) domain.Row {
	if m.def == nil {
		return nil
	}
	for _, r := range m.state.Rows {
		if m.def.RowID(r) == id {
			return r
		}
	}
	return nil
}

// cursorRow returns the row under the grid cursor
func (m *Model) cursorRow() (domain.Row, bool) {
	rows := m.visibleRows()
	if m.state.CursorRow < 0 || m.state.CursorRow >= len(rows) {
		return nil, false
	}
	return rows[m.state.CursorRow], true
}

func (m *Model) cursorCell() (grid.CellRef, bool) {
	row, ok := m.cursorRow()
	cols := m.grid.Columns()
	if !ok || m.state.CursorCol < 0 || m.state.CursorCol >= len(cols) {
		return grid.CellRef{}, false
	}
	return grid.CellRef{RowID: m.def.RowID(row), Field: cols[m.state.CursorCol].Field}, true
}

func (m *Model) visibleQueue() []approval.Request {
	if m.state.FilterQuery == "" || m.screen != types.ScreenQueue {
		return m.state.Queue
	}
	var out []approval.Request
	for _, r := range m.state.Queue {
		if m.filter.MatchesRequest(r, m.state.FilterQuery) {
			out = append(out, r)
		}
	}
	return out
}

func (m *Model) ensureCursorVisible() {
	if m.grid == nil {
		return
	}
	cell, ok := m.cursorCell()
	if !ok {
		return
	}
	if el, err := (gridHost{m}).CellElement(cell.RowID, cell.Field); err == nil {
		el.ScrollIntoView(grid.AlignNearest, grid.AlignNearest)
	}
}

// hasUnsubmitted reports local changes that a reload would throw away
func (m *Model) hasUnsubmitted() bool {
	if len(m.state.Drafts) > 0 {
		return true
	}
	for _, r := range m.state.Rows {
		if orig, ok := m.state.Original(m.def.RowID(r)); ok && grid.HasChanges(orig, r) {
			return true
		}
	}
	return false
}

// Screen implements types.Context
func (m *Model) Screen() types.Screen { return m.screen }

// EditMode implements types.Context
func (m *Model) EditMode() bool { return m.grid != nil && m.grid.EditMode() }

// HasSelection implements types.Context
func (m *Model) HasSelection() bool {
	return m.screen == types.ScreenQueue && m.selection.HasSelection()
}

// SelectedCount implements types.Context
func (m *Model) SelectedCount() int { return m.selection.GetCount() }

// PendingConfirm implements types.Context
func (m *Model) PendingConfirm() types.Action { return m.pendingConfirm }
