// ABOUTME: Plain line-mode frontend used when the TUI is disabled
// ABOUTME: Prints status changes and maps typed commands to key messages
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// LinePrinter renders StatusMsg updates as log-style lines, printing only
// what changed
type LinePrinter struct {
	mu   sync.Mutex
	w    io.Writer
	last StatusMsg
	seen bool
}

// NewLinePrinter writes status lines to w
func NewLinePrinter(w io.Writer) *LinePrinter {
	return &LinePrinter{w: w}
}

// Send implements the renderer contract of the control loop
func (p *LinePrinter) Send(msg tea.Msg) {
	s, ok := msg.(StatusMsg)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.seen || s.Listeners != p.last.Listeners || !equal(s.Queue, p.last.Queue) {
		fmt.Fprintf(p.w, "listeners: %d  queue: [%s]\n", s.Listeners, strings.Join(s.Queue, ", "))
	}
	pane, sel := selection(s)
	if !p.seen || s.Focus != p.last.Focus || sel != selectionName(p.last) {
		fmt.Fprintf(p.w, "%s> %s\n", pane, sel)
	}
	if s.Status != "" && s.Status != p.last.Status {
		fmt.Fprintln(p.w, s.Status)
	}

	p.last = s
	p.seen = true
}

func selection(s StatusMsg) (string, string) {
	if s.Focus == ServerPane {
		return "server", selectionName(s)
	}
	return "local", selectionName(s)
}

func selectionName(s StatusMsg) string {
	list, i := s.LocalFiles, s.LocalSelected
	if s.Focus == ServerPane {
		list, i = s.Library, s.ServerSelected
	}
	if i < 0 || i >= len(list) {
		return "(none)"
	}
	return list[i]
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// commands maps typed words to the key they stand for
var commands = map[string]tea.KeyMsg{
	"":      {Type: tea.KeyEnter},
	"enter": {Type: tea.KeyEnter},
	"up":    {Type: tea.KeyUp},
	"down":  {Type: tea.KeyDown},
	"tab":   {Type: tea.KeyTab},
	"quit":  {Type: tea.KeyRunes, Runes: []rune("q")},
}

// ParseCommand translates one input line into a key message. An empty line
// is Enter; unknown words are sent as runes, so single-letter keys work as
// typed.
func ParseCommand(line string) tea.KeyMsg {
	word := strings.ToLower(strings.TrimSpace(line))
	if k, ok := commands[word]; ok {
		return k
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(word)}
}

// ReadCommands forwards parsed lines from r until EOF or ctx is done
func ReadCommands(ctx context.Context, r io.Reader, out chan<- tea.Msg) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case out <- ParseCommand(scanner.Text()):
		case <-ctx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}
