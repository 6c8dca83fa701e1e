// Package tui is the interactive history browser.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
	"github.com/Lin-Jiong-HDU/gate/internal/history"
	"github.com/Lin-Jiong-HDU/gate/internal/render"
)

// chrome is the number of lines taken by the header and the footer.
const chrome = 6

// maxDetailLines caps the result text shown in the detail view.
const maxDetailLines = 20

// model is the Bubble Tea model of the history browser. Entries are shown
// newest first.
type model struct {
	entries    []history.Entry
	cursor     int
	offset     int
	showDetail bool
	keys       keyMap
	width      int
	height     int
}

// NewHistoryModel creates a browser over entries, given oldest first.
func NewHistoryModel(entries []history.Entry) tea.Model {
	reversed := make([]history.Entry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	return model{
		entries: reversed,
		keys:    defaultKeyMap(),
	}
}

// Run starts the browser on the terminal and blocks until it quits.
func Run(entries []history.Entry, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(NewHistoryModel(entries), opts...).Run()
	return err
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroll()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" || msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if msg.Type == tea.KeyEsc {
		if m.showDetail {
			m.showDetail = false
			return m, nil
		}
		return m, tea.Quit
	}

	if msg.Type == tea.KeyEnter {
		if len(m.entries) > 0 {
			m.showDetail = !m.showDetail
		}
		return m, nil
	}

	switch msg.String() {
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "j", "down":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		if len(m.entries) > 0 {
			m.cursor = len(m.entries) - 1
		}
	}
	m.scroll()

	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *model) scroll() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m model) visibleRows() int {
	if m.height <= chrome {
		return len(m.entries) + 1
	}
	return m.height - chrome
}

// View renders the UI
func (m model) View() string {
	if m.showDetail && len(m.entries) > 0 {
		return m.renderDetail(m.entries[m.cursor])
	}
	return m.renderList()
}

func (m model) renderList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" gate action history ") + "\n\n")

	if len(m.entries) == 0 {
		b.WriteString(subtleStyle.Render("No actions recorded yet.") + "\n")
		b.WriteString(m.renderFooter())
		return b.String()
	}

	end := m.offset + m.visibleRows()
	if end > len(m.entries) {
		end = len(m.entries)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i) + "\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m model) renderRow(i int) string {
	e := m.entries[i]

	cursor := " "
	if i == m.cursor {
		cursor = ">"
	}

	status := successStyle.Render("✓")
	if e.Status == action.StatusError {
		status = errorStyle.Render("✗")
	}

	line := fmt.Sprintf("%s [%s] %s  %-21s %6.2fs  %s",
		cursor, status,
		e.Timestamp.Local().Format("2006-01-02 15:04:05"),
		e.Action, e.ExecutionTime, render.Detail(e))

	if m.width > 0 {
		line = runewidth.Truncate(line, m.width, "…")
	}
	if i == m.cursor {
		return selectedStyle.Render(line)
	}
	return line
}

func (m model) renderDetail(e history.Entry) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" "+string(e.Action)+" ") + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("ID:"), e.ID)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Time:"), e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Status:"), e.Status)
	fmt.Fprintf(&b, "%s %.3fs\n", labelStyle.Render("Duration:"), e.ExecutionTime)
	if e.Reasoning != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Reasoning:"), e.Reasoning)
	}
	if len(e.Parameters) > 0 {
		params, err := json.MarshalIndent(e.Parameters, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "%s\n%s\n", labelStyle.Render("Parameters:"), params)
		}
	}

	res := e.Result
	switch {
	case !res.Success:
		fmt.Fprintf(&b, "%s %s\n", errorStyle.Render("Error:"), res.Error)
	case res.Content != "":
		fmt.Fprintf(&b, "%s\n%s\n", labelStyle.Render("Content:"), clip(res.Content))
	case res.Output != "":
		fmt.Fprintf(&b, "%s\n%s\n", labelStyle.Render("Output:"), clip(res.Output))
	case res.Message != "":
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Message:"), res.Message)
	case res.WorkingDir != "":
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Working directory:"), res.WorkingDir)
	case res.Count > 0:
		fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("Items:"), res.Count)
	}

	b.WriteString("\n" + subtleStyle.Render("[enter/esc back] [q quit]") + "\n")
	return b.String()
}

func (m model) renderFooter() string {
	return "\n" + statusBarStyle.Render(m.keys.Help()) + "\n"
}

// clip keeps the first maxDetailLines lines of s.
func clip(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= maxDetailLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:maxDetailLines], "\n") +
		fmt.Sprintf("\n... (%d more lines)", len(lines)-maxDetailLines)
}

// Styles
var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
)
