package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chatcal/pkg/calendar"
	"chatcal/pkg/extract"
	"chatcal/pkg/session"
	"chatcal/pkg/ui/components/agenda"
	"chatcal/pkg/ui/components/chat"
	"chatcal/pkg/ui/components/statusbar"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
)

const flashDuration = 4 * time.Second

// Options carries display settings for the model.
type Options struct {
	Provider   string
	Model      string
	ExportPath string
	Location   *time.Location
}

// Model represents the Bubble Tea application state
type Model struct {
	session    *session.Session
	store      *calendar.Store
	exportPath string

	// UI Components
	layout    *LayoutManager
	chat      *chat.Panel
	agenda    *agenda.Panel
	statusBar *statusbar.StatusBarView

	// UI state
	ready    bool
	flashSeq int
}

// NewModel creates a new Bubble Tea model around sess.
func NewModel(sess *session.Session, opts Options) Model {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	m := Model{
		session:    sess,
		store:      sess.Store(),
		exportPath: opts.ExportPath,
		layout:     NewLayoutManager(),
		chat:       chat.New(loc),
		agenda:     agenda.New(loc),
		statusBar:  statusbar.NewStatusBarView(),
	}
	m.statusBar.SetProvider(opts.Provider, opts.Model)
	m.sync()
	return m
}

// Init initializes the model (Bubble Tea lifecycle method)
func (m Model) Init() tea.Cmd {
	return nil
}

// extractionDoneMsg delivers a finished request to the update loop.
type extractionDoneMsg struct {
	result session.Result
}

type flashExpiredMsg struct {
	seq int
}

// waitForResult blocks off the update loop until req completes.
func waitForResult(req *session.Request) tea.Cmd {
	return func() tea.Msg {
		<-req.Done()
		res, _ := req.Result()
		return extractionDoneMsg{result: res}
	}
}

// Update handles messages and updates model state (Bubble Tea lifecycle method)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.ready = true
		m.layout.SetSize(msg.Width, msg.Height)
		m.chat.SetSize(m.layout.ChatSize())
		m.agenda.SetSize(m.layout.AgendaSize())
		m.statusBar.SetWidth(msg.Width)
		return m, nil

	case tea.KeyPressMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case extractionDoneMsg:
		if !m.session.Apply(msg.result) {
			return m, nil
		}
		m.sync()
		// Keep the text on failure so it can be edited and resent.
		if m.session.State() == session.PreviewPending {
			m.chat.ClearInput()
		}
		return m, nil

	case spinner.TickMsg:
		return m, m.chat.UpdateSpinner(msg)

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.statusBar.SetMessage("")
		}
		return m, nil
	}

	return m, m.chat.UpdateInput(msg)
}

// handleKey applies a key press and returns the follow-up command.
func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.session.Close()
		return tea.Quit

	case "enter":
		return m.submit()

	case "esc":
		switch m.session.State() {
		case session.Sending:
			m.session.Cancel()
			m.sync()
			return m.flash("Request cancelled")
		case session.PreviewPending:
			if err := m.session.Discard(); err == nil {
				m.sync()
				return m.flash("Preview discarded")
			}
		}
		return nil

	case "ctrl+y":
		ev, err := m.session.Confirm()
		if err != nil {
			return m.flash(err.Error())
		}
		m.sync()
		return m.flash(fmt.Sprintf("Added %q", ev.Title))

	case "ctrl+e":
		return m.export()

	case "ctrl+k":
		if m.agenda.Len() == 0 {
			return m.flash("Nothing to copy")
		}
		return tea.Batch(
			m.agenda.CopyToClipboard(),
			m.flash(fmt.Sprintf("Copied %d events", m.agenda.Len())),
		)
	}

	return m.chat.UpdateInput(msg)
}

func (m *Model) submit() tea.Cmd {
	req, err := m.session.Submit(m.chat.Value())
	switch {
	case errors.Is(err, extract.ErrEmptyInput), errors.Is(err, session.ErrBusy):
		return nil
	case err != nil:
		return m.flash(err.Error())
	}

	m.statusBar.SetMessage("")
	m.sync()
	return tea.Batch(waitForResult(req), m.chat.StartSpinner())
}

func (m *Model) export() tea.Cmd {
	if m.exportPath == "" {
		return m.flash("No export path configured")
	}
	n, err := m.store.ExportICS(m.exportPath)
	if err != nil {
		slog.Warn("ui_export_failed", "path", m.exportPath, "error", err)
		return m.flash("Export failed: " + err.Error())
	}
	return m.flash(fmt.Sprintf("Exported %d events to %s", n, m.exportPath))
}

// flash shows text in the status bar until the next flash or the timeout.
func (m *Model) flash(text string) tea.Cmd {
	m.flashSeq++
	seq := m.flashSeq
	m.statusBar.SetMessage(text)
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

func (m *Model) sync() {
	m.chat.Sync(m.session)
	m.agenda.SetEvents(m.store.List())
	m.statusBar.SetState(m.session.State())
	m.statusBar.SetEventCount(m.store.Len())
}

// View renders the UI (Bubble Tea lifecycle method)
func (m Model) View() tea.View {
	if !m.ready {
		return tea.NewView("Initializing...")
	}

	v := tea.NewView(m.layout.RenderLayout(m.chat.View(), m.agenda.View(), m.statusBar.Render()))
	v.AltScreen = true
	return v
}
