// Package dashboard is the live terminal view behind 'meeting-client watch'.
//
// The model never polls on its own. The status and history pollers write to
// the app's Store and every update is forwarded to the program as a StateMsg;
// View renders only from the last snapshot received.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/meeting-client/internal"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeTag
	modeConfirm
)

type confirmKind int

const (
	confirmDelete confirmKind = iota
	confirmClear
)

// StateMsg carries a store snapshot into the program
type StateMsg struct {
	View internal.ViewState
}

// actionMsg reports a finished background action
type actionMsg struct {
	action string
	err    error
}

type summaryKey struct {
	filename string
	text     string
	width    int
}

// Model is the bubbletea model for the dashboard
type Model struct {
	ctx context.Context
	app *internal.App

	view   internal.ViewState
	mode   mode
	cursor int

	search  textinput.Model
	tag     textinput.Model
	spinner spinner.Model

	confirm       confirmKind
	confirmTarget string

	summary     string
	summaryKey  summaryKey
	summaryErr  error
	width       int
	height      int
	lastMessage string
}

var (
	recStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Italic(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	busyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// New creates the dashboard model for app. ctx bounds every request the
// dashboard starts.
func New(ctx context.Context, app *internal.App) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search recordings"
	search.CharLimit = 200

	tag := textinput.New()
	tag.Prompt = "tag: "
	tag.Placeholder = "new tag"
	tag.CharLimit = 64

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(busyStyle))

	return Model{
		ctx:     ctx,
		app:     app,
		view:    app.Store.Snapshot(),
		search:  search,
		tag:     tag,
		spinner: sp,
		width:   100,
		height:  30,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadDevices())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshSummary()
		return m, nil

	case StateMsg:
		m.view = msg.View
		if n := len(m.view.History); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		m.refreshSummary()
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.lastMessage = errStyle.Render(fmt.Sprintf("✗ %s: %v", msg.action, msg.err))
		} else if msg.action != "" {
			m.lastMessage = okStyle.Render("✓ " + msg.action)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.handleSearchKey(msg)
		case modeTag:
			return m.handleTagKey(msg)
		case modeConfirm:
			return m.handleConfirmKey(msg)
		default:
			return m.handleBrowseKey(msg)
		}
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "s":
		return m, m.control(internal.ActionStart)
	case "x":
		return m, m.control(internal.ActionStop)
	case "/":
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view.History)-1 {
			m.cursor++
		}
	case "enter":
		if rec, ok := m.selected(); ok {
			return m, m.open(rec.Filename)
		}
	case "esc":
		if m.view.Open != nil {
			return m, m.closeMeeting()
		}
	case "y":
		if m.view.Open != nil && !m.view.Open.Loading {
			return m, m.copySummary()
		}
	case "a":
		if m.view.Open != nil && !m.view.Open.Loading {
			m.mode = modeTag
			m.tag.SetValue("")
			cmd := m.tag.Focus()
			return m, cmd
		}
	case "d":
		if rec, ok := m.selected(); ok {
			m.mode = modeConfirm
			m.confirm = confirmDelete
			m.confirmTarget = rec.Filename
		}
	case "C":
		m.mode = modeConfirm
		m.confirm = confirmClear
		m.confirmTarget = ""
	case "m":
		return m, m.nextDevice()
	case "r":
		return m, m.refresh()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = modeBrowse
		m.search.Blur()
		if m.search.Value() == "" {
			return m, nil
		}
		m.search.SetValue("")
		return m, m.runSearch("")
	case "ctrl+c":
		return m, tea.Quit
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		return m, tea.Batch(cmd, m.runSearch(after))
	}
	return m, cmd
}

func (m Model) handleTagKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := m.tag.Value()
		m.mode = modeBrowse
		m.tag.Blur()
		m.tag.SetValue("")
		return m, m.addTag(value)
	case "esc":
		m.mode = modeBrowse
		m.tag.Blur()
		m.tag.SetValue("")
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.tag, cmd = m.tag.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeBrowse
		if m.confirm == confirmClear {
			return m, m.clearAll()
		}
		return m, m.delete(m.confirmTarget)
	case "n", "N", "esc":
		m.mode = modeBrowse
		m.confirmTarget = ""
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) selected() (internal.Recording, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.History) {
		return internal.Recording{}, false
	}
	return m.view.History[m.cursor], true
}

// refreshSummary re-renders the open meeting's summary when its text or the
// pane width changed
func (m *Model) refreshSummary() {
	open := m.view.Open
	if open == nil || open.Detail == nil {
		m.summary = ""
		m.summaryKey = summaryKey{}
		m.summaryErr = nil
		return
	}

	key := summaryKey{filename: open.Filename, text: open.Detail.SummaryText, width: m.detailWidth() - 4}
	if key == m.summaryKey {
		return
	}
	m.summaryKey = key
	m.summary, m.summaryErr = internal.RenderSummaryWithStyle(key.text, key.width, "dark")
}

func (m Model) listWidth() int {
	return m.width * 45 / 100
}

func (m Model) detailWidth() int {
	w := m.width - m.listWidth() - 4
	if w < 20 {
		w = 20
	}
	return w
}

// --- commands ---

func (m Model) loadDevices() tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		devices, err := app.Devices.LoadDevices(ctx)
		if err != nil {
			internal.LogWarn("%v", err)
			return actionMsg{}
		}
		return actionMsg{action: fmt.Sprintf("%d input device(s)", len(devices))}
	}
}

func (m Model) nextDevice() tea.Cmd {
	devices := m.view.Devices
	if len(devices) == 0 {
		return nil
	}
	next := devices[0].Index
	for i, d := range devices {
		if d.Index == m.view.SelectedDevice {
			next = devices[(i+1)%len(devices)].Index
			break
		}
	}

	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		if err := app.Devices.SelectDevice(ctx, next); err != nil {
			app.Notifier.Alert("Failed to select device", err)
			return actionMsg{action: "select device", err: err}
		}
		return actionMsg{action: fmt.Sprintf("Selected device %d", next)}
	}
}

func (m Model) control(action string) tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		status, err := app.Devices.Control(ctx, action)
		if err != nil {
			app.Notifier.Alert(fmt.Sprintf("Failed to %s recording", action), err)
			return actionMsg{action: action, err: err}
		}
		return actionMsg{action: status}
	}
}

func (m Model) runSearch(query string) tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		if err := app.History.Search(ctx, query); err != nil {
			return actionMsg{action: "search", err: err}
		}
		return nil
	}
}

func (m Model) open(filename string) tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		if _, err := app.Meetings.Load(ctx, filename); err != nil {
			internal.LogWarn("%v", err)
		}
		return nil
	}
}

// closeMeeting runs off the event loop since closing publishes state
func (m Model) closeMeeting() tea.Cmd {
	app := m.app
	return func() tea.Msg {
		app.Meetings.Close()
		return nil
	}
}

func (m Model) copySummary() tea.Cmd {
	app := m.app
	return func() tea.Msg {
		if err := app.Copier.CopyOpen(); err != nil {
			return actionMsg{action: "copy", err: err}
		}
		return actionMsg{action: internal.CopiedMessage}
	}
}

func (m Model) addTag(tag string) tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		sent, err := app.Tags.Add(ctx, tag)
		if err != nil {
			return actionMsg{action: "add tag", err: err}
		}
		if !sent {
			return nil
		}
		return actionMsg{action: fmt.Sprintf("Tagged %q", strings.TrimSpace(tag))}
	}
}

func (m Model) delete(filename string) tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		if _, err := app.History.Delete(ctx, filename, internal.AlwaysConfirm); err != nil {
			return actionMsg{action: "delete", err: err}
		}
		return actionMsg{action: "Deleted " + filename}
	}
}

func (m Model) clearAll() tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		if _, err := app.History.ClearAll(ctx, internal.AlwaysConfirm); err != nil {
			return actionMsg{action: "clear", err: err}
		}
		return actionMsg{action: "History cleared"}
	}
}

func (m Model) refresh() tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		if err := app.History.Refresh(ctx); err != nil {
			return actionMsg{action: "refresh", err: err}
		}
		return actionMsg{action: "Refreshed"}
	}
}

// Run starts the pollers and the dashboard and blocks until the user quits
func Run(ctx context.Context, app *internal.App, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.UseAlerter(app.Notifier)

	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(New(ctx, app), opts...)

	// Listeners may fire from inside Update, so they only flag a change and
	// the relay goroutine delivers the latest snapshot.
	changed := make(chan struct{}, 1)
	unsubscribe := app.Store.Subscribe(func(internal.ViewState) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		relayState(ctx, app.Store, p, changed)
	}()
	go func() {
		defer wg.Done()
		app.RunPollers(ctx)
	}()

	_, err := p.Run()
	cancel()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("dashboard exited: %w", err)
	}
	return nil
}

// relayState forwards store changes to the program until ctx is done
func relayState(ctx context.Context, store *internal.Store, p *tea.Program, changed <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			p.Send(StateMsg{View: store.Snapshot()})
		}
	}
}
