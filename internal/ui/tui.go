// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and its input channel
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// InputBuffer is the capacity of the terminal input channel
const InputBuffer = 64

// TUI couples the bubbletea program with the channel its input is
// forwarded on
type TUI struct {
	program *tea.Program
	input   chan tea.Msg
}

// New creates the TUI. Input stops being forwarded once done is closed.
func New(done <-chan struct{}) *TUI {
	input := make(chan tea.Msg, InputBuffer)
	p := tea.NewProgram(NewModel(input, done), tea.WithAltScreen(), tea.WithMouseCellMotion())
	return &TUI{program: p, input: input}
}

// Input returns terminal messages for the event multiplexer
func (t *TUI) Input() <-chan tea.Msg {
	return t.input
}

// Send pushes a message, usually a StatusMsg, into the program
func (t *TUI) Send(msg tea.Msg) {
	t.program.Send(msg)
}

// Run blocks until the program exits
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

// Quit asks the program to exit
func (t *TUI) Quit() {
	t.program.Quit()
}
