// ABOUTME: Event type produced by the multiplexer
// ABOUTME: Tagged variant covering ticks, input, resize and network updates
package event

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// NetBufferSize is the fixed size of a NetworkUpdate payload
const NetBufferSize = 1024

// Kind identifies the variant carried by an Event
type Kind int

const (
	Tick Kind = iota
	KeyPress
	Mouse
	Resize
	NetworkUpdate
	UploadTriggered
)

func (k Kind) String() string {
	switch k {
	case Tick:
		return "tick"
	case KeyPress:
		return "key"
	case Mouse:
		return "mouse"
	case Resize:
		return "resize"
	case NetworkUpdate:
		return "network"
	case UploadTriggered:
		return "upload"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one unit of work for the control loop. Only the fields matching
// Kind are meaningful.
type Event struct {
	Kind Kind

	// KeyPress
	Key tea.Key

	// Mouse
	Mouse tea.MouseEvent

	// Resize
	Width  int
	Height int

	// NetworkUpdate, zero-padded past the bytes actually read
	Payload [NetBufferSize]byte
}

// fromTerminal translates a bubbletea message into an Event. Focus, blur
// and paste notifications are ignored.
func fromTerminal(msg tea.Msg) (Event, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Paste {
			return Event{}, false
		}
		if msg.Type == tea.KeyEnter {
			return Event{Kind: UploadTriggered}, true
		}
		return Event{Kind: KeyPress, Key: tea.Key(msg)}, true

	case tea.MouseMsg:
		return Event{Kind: Mouse, Mouse: tea.MouseEvent(msg)}, true

	case tea.WindowSizeMsg:
		return Event{Kind: Resize, Width: msg.Width, Height: msg.Height}, true

	case tea.FocusMsg, tea.BlurMsg:
		return Event{}, false
	}
	return Event{}, false
}
