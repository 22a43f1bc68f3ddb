package tui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"codearch/internal/session"
	"codearch/internal/store"
)

type mode int

const (
	modeInput mode = iota
	modePicker
	modeMuseum
)

// excavatedMsg is sent when an analysis run started from the UI resolves.
type excavatedMsg struct {
	state session.State
	err   error
}

type Model struct {
	sess    *session.Session
	ctx     context.Context
	state   session.State
	input   textinput.Model
	spinner spinner.Model

	saved  []store.RepositoryDescriptor
	cursor int
	scroll int // museum scroll offset

	// pending is set from submit until the run's excavatedMsg arrives.
	pending bool

	width    int
	height   int
	status   string
	copyText func(string) error
	now      func() time.Time
	quitting bool
}

type Option func(*Model)

func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		if fn != nil {
			m.copyText = fn
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

func NewModel(sess *session.Session, opts ...Option) Model {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	m := Model{
		sess:     sess,
		ctx:      context.Background(),
		state:    sess.Snapshot(),
		input:    ti,
		spinner:  sp,
		width:    100,
		height:   30,
		copyText: clipboard.WriteAll,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.input.SetValue(m.state.Input)
	m.syncPlaceholder()
	return m
}

func (m Model) mode() mode {
	switch {
	case m.state.PickerOpen:
		return modePicker
	case m.state.HasResult():
		return modeMuseum
	default:
		return modeInput
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case excavatedMsg:
		m.pending = false
		m.state = msg.state
		m.scroll = 0
		if m.mode() == modeInput {
			m.input.Focus()
		} else {
			m.input.Blur()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode() {
		case modeInput:
			return m.updateInput(msg)
		case modePicker:
			return m.updatePicker(msg)
		case modeMuseum:
			return m.updateMuseum(msg)
		}
	}

	if m.mode() == modeInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.state = m.sess.SetLocal(!m.state.IsLocal)
		m.syncPlaceholder()
		return m, nil

	case "ctrl+o":
		return m.openPicker()

	case "enter":
		if m.busy() {
			return m, nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.state.Input {
		m.state = m.sess.SetInput(m.input.Value())
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	isLocal := m.state.IsLocal
	m.status = ""
	m.pending = true
	if strings.TrimSpace(text) != "" {
		m.state.Loading = true
		m.state.Error = ""
	}
	sess, ctx := m.sess, m.ctx
	return m, func() tea.Msg {
		st, err := sess.RunAnalysis(ctx, text, isLocal)
		return excavatedMsg{state: st, err: err}
	}
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	m.saved = m.sess.SavedRepositories()
	m.cursor = 0
	m.state = m.sess.OpenPicker()
	m.input.Blur()
	return m, nil
}

// busy reports whether a run started here or in the session is unresolved.
func (m Model) busy() bool {
	return m.pending || m.state.Loading
}

func (m *Model) syncPlaceholder() {
	if m.state.IsLocal {
		m.input.Placeholder = "/path/to/your/repo"
	} else {
		m.input.Placeholder = "https://github.com/user/repo"
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode() {
	case modePicker:
		return m.viewPicker()
	case modeMuseum:
		return m.viewMuseum()
	}
	return m.viewInput()
}

func (m Model) viewInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("🏛️  Code Archaeology Explorer"))
	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("Excavate the fossils buried in your codebase"))
	sb.WriteString("\n\n")

	remote, local := toggleOnStyle, toggleOffStyle
	if m.state.IsLocal {
		remote, local = toggleOffStyle, toggleOnStyle
	}
	sb.WriteString(" " + remote.Render("🌐 GitHub URL") + " " + local.Render("📁 Local Path"))
	sb.WriteString("\n\n ")
	sb.WriteString(inputStyle.Render(m.input.View()))
	sb.WriteString("\n\n")

	switch {
	case m.busy():
		sb.WriteString(" " + m.spinner.View() + loadingStyle.Render(" Excavating... digging through the layers"))
	case m.state.Error != "":
		sb.WriteString(" " + errorStyle.Render("⚠️  "+m.state.Error))
	}
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render(" enter: excavate  tab: url/path  ctrl+o: saved  esc: quit"))
	return sb.String()
}
