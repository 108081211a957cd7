// ABOUTME: Bubbletea model for the JamRadio TUI
// ABOUTME: Renders library panes and status; forwards input to the event multiplexer
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jamradio/jamradio-go/internal/version"
)

// Pane identifies which list has focus
type Pane int

const (
	LocalPane Pane = iota
	ServerPane
)

// StatusMsg replaces the rendered state. The control loop sends one after
// every event it handles.
type StatusMsg struct {
	Server         string
	Focus          Pane
	LocalFiles     []string
	LocalSelected  int
	Library        []string
	ServerSelected int
	Queue          []string
	Listeners      int
	Status         string
	Volume         int
	Muted          bool
}

// Model represents the TUI state. Terminal input is not interpreted here:
// it is forwarded to the multiplexer and comes back as a StatusMsg.
type Model struct {
	status StatusMsg

	input chan<- tea.Msg
	done  <-chan struct{}

	// Dimensions
	width  int
	height int
}

// NewModel creates a model forwarding input to input until done closes
func NewModel(input chan<- tea.Msg, done <-chan struct{}) Model {
	return Model{
		input:  input,
		done:   done,
		status: StatusMsg{Volume: 100},
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusMsg:
		m.status = msg
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg, tea.WindowSizeMsg:
		m.forward(msg)
	}

	return m, nil
}

func (m Model) forward(msg tea.Msg) {
	if m.input == nil {
		return
	}
	select {
	case m.input <- msg:
	case <-m.done:
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	paneWidth := (m.width - 4) / 3
	if paneWidth < 16 {
		paneWidth = 16
	}
	listHeight := m.height - 8
	if listHeight < 3 {
		listHeight = 3
	}

	local := m.renderList("Local songs", m.status.LocalFiles, m.status.LocalSelected,
		m.status.Focus == LocalPane, paneWidth, listHeight)
	library := m.renderList("Server library", m.status.Library, m.status.ServerSelected,
		m.status.Focus == ServerPane, paneWidth, listHeight)
	queue := m.renderList("Queue", m.status.Queue, -1, false, paneWidth, listHeight)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, local, library, queue),
		m.renderFooter(),
	)
}

// renderHeader renders product, server and listener count
func (m Model) renderHeader() string {
	server := m.status.Server
	if server == "" {
		server = "not connected"
	}
	return titleStyle.Render(version.String()) +
		dimStyle.Render(fmt.Sprintf("  %s  listeners: %d", server, m.status.Listeners))
}

// renderList renders one bordered list with the selection highlighted
func (m Model) renderList(title string, items []string, selected int, focused bool, width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(dimStyle.Render("(empty)"))
	}

	// Scroll so the selection stays visible
	start := 0
	if selected >= height {
		start = selected - height + 1
	}
	for i := start; i < len(items) && i < start+height; i++ {
		line := truncate(items[i], width-2)
		if focused && i == selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}

	style := paneStyle
	if focused {
		style = focusedPaneStyle
	}
	return style.Width(width).Height(height + 1).Render(b.String())
}

// renderFooter renders volume, the last status line and key help
func (m Model) renderFooter() string {
	volume := fmt.Sprintf("vol %s %d%%", renderBar(m.status.Volume, 100, 10), m.status.Volume)
	if m.status.Muted {
		volume += " (muted)"
	}
	help := "↑/↓:Select  tab:Pane  enter:Upload/Queue  +/-:Volume  m:Mute  q:Quit"
	return volume + "  " + m.status.Status + "\n" + dimStyle.Render(help)
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if length < 4 || len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
