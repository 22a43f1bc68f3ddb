package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codearch/internal/exhibit"
	"codearch/internal/report"
	"codearch/internal/store"
)

func (m Model) updateMuseum(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		m.state, _ = m.sess.PrevExhibit()
		m.scroll = 0

	case "right", "l":
		m.state, _ = m.sess.NextExhibit()
		m.scroll = 0

	case "1", "2", "3", "4", "5", "6", "7", "8":
		i := int(key[0] - '1')
		if i < len(exhibit.Order) {
			m.state, _ = m.sess.SelectExhibit(exhibit.Order[i])
			m.scroll = 0
		}

	case "down", "j":
		if m.scroll < len(m.exhibitLines())-1 {
			m.scroll++
		}

	case "up", "k":
		if m.scroll > 0 {
			m.scroll--
		}

	case "c":
		story := m.state.Result.Story(m.state.ActiveExhibit)
		if story == "" {
			m.status = "No story to copy for this exhibit"
			return m, nil
		}
		if err := m.copyText(story); err != nil {
			m.status = fmt.Sprintf("Could not copy to clipboard: %v", err)
		} else {
			m.status = "Story copied to clipboard!"
		}

	case "n":
		m.state = m.sess.Reset()
		m.input.SetValue("")
		m.input.Focus()
		m.status = ""
		m.scroll = 0

	case "ctrl+o":
		return m.openPicker()
	}
	return m, nil
}

func (m Model) exhibitLines() []string {
	r := m.state.Result
	k := m.state.ActiveExhibit
	p := exhibit.Profiles[k]

	var lines []string
	if story := r.Story(k); story != "" {
		for _, l := range strings.Split(lipgloss.NewStyle().Width(max(20, m.width-6)).Render(story), "\n") {
			lines = append(lines, storyStyle.Render(l))
		}
		lines = append(lines, "")
	}

	if k == exhibit.Summary {
		if md := r.Metadata; md != nil && md.RepoPath != "" {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("  Site: %s  ·  %d artifacts unearthed", md.RepoPath, md.TotalArtifacts)))
			lines = append(lines, "")
		}
		for _, s := range report.Stats(r) {
			lines = append(lines, fmt.Sprintf("  %s %s", statStyle.Render(fmt.Sprintf("%5d", s.Count)), s.Label))
		}
		return lines
	}

	items := r.Items(k)
	if len(items) == 0 {
		return append(lines, dimStyle.Render("  "+p.Empty))
	}
	for _, it := range items {
		lines = append(lines, "  "+truncate(report.ItemLine(k, it), max(20, m.width-4)))
	}
	return lines
}

func (m Model) viewMuseum() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("🏛️  The Museum of " + museumName(m.state.Input, m.state.IsLocal)))
	sb.WriteString("\n\n")

	var tabs []string
	for i, k := range exhibit.Order {
		p := exhibit.Profiles[k]
		label := fmt.Sprintf("%d %s %s", i+1, p.Icon, p.Label)
		if k == m.state.ActiveExhibit {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	sb.WriteString(lipgloss.NewStyle().Width(m.width).Render(strings.Join(tabs, " ")))
	sb.WriteString("\n\n")

	p := exhibit.Profiles[m.state.ActiveExhibit]
	arrow := "▶"
	if m.state.Direction == exhibit.Backward {
		arrow = "◀"
	}
	sb.WriteString(exhibitTitleStyle.Render(fmt.Sprintf("%s %s %s", arrow, p.Icon, p.Title)))
	sb.WriteString("\n\n")

	lines := m.exhibitLines()
	visible := max(3, m.height-12)
	start := min(m.scroll, max(0, len(lines)-1))
	end := min(len(lines), start+visible)
	sb.WriteString(strings.Join(lines[start:end], "\n"))
	sb.WriteString("\n")
	if end < len(lines) {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(lines)-end)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	status := fmt.Sprintf("Exhibit %d/%d", exhibit.Index(m.state.ActiveExhibit)+1, len(exhibit.Order))
	if m.busy() {
		status += "  " + m.spinner.View() + " excavating..."
	}
	if m.status != "" {
		status += "  ·  " + m.status
	}
	sb.WriteString(statusBarStyle.Render(status))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(" ←/→: walk  1-8: jump  j/k: scroll  c: copy story  n: new dig  ctrl+o: saved  q: quit"))
	return sb.String()
}

func museumName(input string, isLocal bool) string {
	if strings.TrimSpace(input) == "" {
		return "Unknown Site"
	}
	return store.DisplayName(input, isLocal)
}
