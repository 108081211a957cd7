// ABOUTME: Tests for TUI model and line-mode frontend
// ABOUTME: Tests status updates, input forwarding, rendering helpers and commands
package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil, nil)

	if model.status.Volume != 100 {
		t.Errorf("expected default volume 100, got %d", model.status.Volume)
	}
	if model.View() != "Loading..." {
		t.Errorf("expected loading view before first resize, got %q", model.View())
	}
}

func TestStatusMsgReplacesState(t *testing.T) {
	model := NewModel(nil, nil)

	updated, _ := model.Update(StatusMsg{Listeners: 4, Queue: []string{"a.mp3"}, Volume: 70})
	updated, _ = updated.Update(StatusMsg{Listeners: 1, Volume: 70})
	m := updated.(Model)

	if m.status.Listeners != 1 {
		t.Errorf("expected listeners 1, got %d", m.status.Listeners)
	}
	if len(m.status.Queue) != 0 {
		t.Errorf("expected queue to be replaced, got %v", m.status.Queue)
	}
}

func TestInputIsForwarded(t *testing.T) {
	input := make(chan tea.Msg, 4)
	model := NewModel(input, nil)

	model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model.Update(tea.FocusMsg{})
	model.Update(StatusMsg{})

	if len(input) != 2 {
		t.Fatalf("expected 2 forwarded messages, got %d", len(input))
	}
	if k, ok := (<-input).(tea.KeyMsg); !ok || k.Type != tea.KeyEnter {
		t.Errorf("expected Enter first, got %v", k)
	}
	if _, ok := (<-input).(tea.WindowSizeMsg); !ok {
		t.Error("expected window size second")
	}
}

func TestForwardStopsAfterDone(t *testing.T) {
	input := make(chan tea.Msg) // nobody reads
	done := make(chan struct{})
	close(done)
	model := NewModel(input, done)

	finished := make(chan struct{})
	go func() {
		model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Update blocked after done was closed")
	}
}

func TestViewRendersPanes(t *testing.T) {
	model := NewModel(nil, nil)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	updated, _ = updated.Update(StatusMsg{
		Server:     "10.0.0.2:8080",
		LocalFiles: []string{"mine.mp3"},
		Library:    []string{"theirs.flac"},
		Queue:      []string{"next.mp3"},
		Listeners:  3,
		Status:     "Uploaded mine.mp3",
		Volume:     80,
	})

	view := updated.View()
	for _, want := range []string{"mine.mp3", "theirs.flac", "next.mp3", "listeners: 3", "10.0.0.2:8080", "Uploaded mine.mp3", "80%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is longer than allowed", 10, "this is..."},
		{"this is longer than allowed", 15, "this is long..."},
		{"", 10, ""},
		{"abc", 3, "abc"},
		{"abcd", 4, "abcd"},
		{"abcde", 4, "a..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, max, width int
		expected          string
	}{
		{0, 100, 4, "░░░░"},
		{50, 100, 4, "██░░"},
		{100, 100, 4, "████"},
		{150, 100, 4, "████"},
		{-5, 100, 4, "░░░░"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, tt.max, tt.width); got != tt.expected {
			t.Errorf("renderBar(%d, %d, %d) = %q, expected %q", tt.value, tt.max, tt.width, got, tt.expected)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"", "enter"},
		{"enter", "enter"},
		{"  UP ", "up"},
		{"down", "down"},
		{"tab", "tab"},
		{"quit", "q"},
		{"q", "q"},
		{"+", "+"},
	}

	for _, tt := range tests {
		if got := ParseCommand(tt.line).String(); got != tt.want {
			t.Errorf("ParseCommand(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestReadCommands(t *testing.T) {
	out := make(chan tea.Msg, 8)
	err := ReadCommands(context.Background(), strings.NewReader("down\n\nquit\n"), out)
	if err != nil {
		t.Fatalf("ReadCommands failed: %v", err)
	}

	var got []string
	for len(out) > 0 {
		got = append(got, (<-out).(tea.KeyMsg).String())
	}
	if strings.Join(got, ",") != "down,enter,q" {
		t.Errorf("got %v", got)
	}
}

func TestLinePrinterPrintsChanges(t *testing.T) {
	var buf bytes.Buffer
	p := NewLinePrinter(&buf)

	base := StatusMsg{LocalFiles: []string{"a.mp3", "b.mp3"}, Listeners: 1}
	p.Send(base)
	p.Send(base)
	first := buf.String()
	if !strings.Contains(first, "listeners: 1") || !strings.Contains(first, "local> a.mp3") {
		t.Errorf("unexpected first output %q", first)
	}

	next := base
	next.LocalSelected = 1
	next.Status = "Uploaded b.mp3"
	p.Send(next)

	rest := strings.TrimPrefix(buf.String(), first)
	if strings.Contains(rest, "listeners") {
		t.Errorf("unchanged listener count was reprinted: %q", rest)
	}
	if !strings.Contains(rest, "local> b.mp3") || !strings.Contains(rest, "Uploaded b.mp3") {
		t.Errorf("unexpected output %q", rest)
	}

	p.Send(tea.KeyMsg{})
	if strings.TrimPrefix(buf.String(), first) != rest {
		t.Error("non-status messages must be ignored")
	}
}
