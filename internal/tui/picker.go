package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.state = m.sess.ClosePicker()
		if !m.state.HasResult() {
			m.input.Focus()
		}
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.saved)-1 {
			m.cursor++
		}

	case "d", "delete":
		if len(m.saved) == 0 {
			return m, nil
		}
		m.saved = m.sess.RemoveSaved(m.saved[m.cursor])
		if m.cursor >= len(m.saved) {
			m.cursor = max(0, len(m.saved)-1)
		}

	case "enter":
		if len(m.saved) == 0 || m.busy() {
			return m, nil
		}
		d := m.saved[m.cursor]
		m.state = m.sess.ClosePicker()
		m.pending = true
		m.state.Loading = true
		m.state.Error = ""
		m.state.Input = d.Path
		m.state.IsLocal = d.IsLocal
		m.input.SetValue(d.Path)
		m.syncPlaceholder()
		m.input.Focus()
		sess, ctx := m.sess, m.ctx
		return m, func() tea.Msg {
			st, err := sess.LoadSaved(ctx, d)
			return excavatedMsg{state: st, err: err}
		}
	}
	return m, nil
}

func (m Model) viewPicker() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("📚 Saved Excavations"))
	sb.WriteString("\n\n")

	if len(m.saved) == 0 {
		sb.WriteString(dimStyle.Render("  No saved repositories yet. Excavate one to remember it."))
		sb.WriteString("\n\n")
		sb.WriteString(helpStyle.Render(" esc: back"))
		return sb.String()
	}

	for i, d := range m.saved {
		tag := remoteTag.Render("remote")
		if d.IsLocal {
			tag = localTag.Render("local ")
		}
		when := humanize.RelTime(d.AnalyzedAt, m.now(), "ago", "from now")
		line := fmt.Sprintf("%s %-24s %s", tag, truncate(d.Name, 24), dimStyle.Render("analyzed "+when))
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			sb.WriteString(normalStyle.Render("  " + line))
		}
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("      " + truncate(d.Path, max(20, m.width-8))))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(" enter: load  d: remove  j/k: move  esc: back"))
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
