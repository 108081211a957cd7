// ABOUTME: Control loop of the JamRadio client
// ABOUTME: Consumes multiplexed events, owns selection state and sends upload/queue frames
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"path"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jamradio/jamradio-go/internal/ui"
	"github.com/jamradio/jamradio-go/pkg/audio/output"
	"github.com/jamradio/jamradio-go/pkg/event"
	"github.com/jamradio/jamradio-go/pkg/protocol"
)

// volumeStep is the change applied by one +/- key press
const volumeStep = 5

// Direction moves a list selection
type Direction int

const (
	Up Direction = iota
	Down
)

// Conn is the control connection as seen by the loop. *conn.Handle
// satisfies it.
type Conn interface {
	WriteAll(p []byte) error
	Shutdown() error
}

// Library is the local songs directory
type Library interface {
	List(dir string) ([]string, error)
	ReadFile(name string) ([]byte, error)
}

// Renderer receives a ui.StatusMsg after every handled event.
// *ui.TUI and *tea.Program satisfy it.
type Renderer interface {
	Send(msg tea.Msg)
}

// EventSource yields events in emission order. *event.Multiplexer
// satisfies it.
type EventSource interface {
	Next(ctx context.Context) (event.Event, error)
}

// Recorder observes control traffic
type Recorder interface {
	RequestSent(frame string, size int, err error)
	SnapshotApplied(listeners int)
	SnapshotFailed()
}

type nopRecorder struct{}

func (nopRecorder) RequestSent(string, int, error) {}
func (nopRecorder) SnapshotApplied(int)            {}
func (nopRecorder) SnapshotFailed()                {}

// Config holds the loop's collaborators. Conn and Library are required.
type Config struct {
	ServerAddr string
	// Dir is listed relative to the library root
	Dir string

	// UploadDir prefixes the name carried in Song Transfer frames. The
	// server writes the song to that path and lists its songs directory,
	// so this is normally the same songs directory, e.g. "./songs/".
	UploadDir string

	// Outgoing frames are refused beyond these lengths; zero means no limit
	MaxName    uint32
	MaxPayload uint32

	Conn     Conn
	Library  Library
	Renderer Renderer
	Recorder Recorder
	Volume   output.VolumeControl

	// Shutdown broadcasts the quit to the rest of the process
	Shutdown func()
}

// App is the single-threaded owner of all UI-visible state
type App struct {
	config  Config
	session string

	focus     ui.Pane
	local     []string
	localSel  int
	serverSel int
	state     protocol.ServerState
	status    string
	listErr   string
}

// New creates the control loop
func New(config Config) (*App, error) {
	if config.Conn == nil {
		return nil, errors.New("control connection is required")
	}
	if config.Library == nil {
		return nil, errors.New("song library is required")
	}
	if config.Dir == "" {
		config.Dir = "."
	}
	if config.Recorder == nil {
		config.Recorder = nopRecorder{}
	}

	return &App{
		config:  config,
		session: uuid.New().String(),
		focus:   ui.LocalPane,
	}, nil
}

// Run handles events until quit, shutdown of the source, or ctx
func (a *App) Run(ctx context.Context, events EventSource) error {
	log.Printf("Control session %s started", a.session)

	a.refreshLocal()
	a.publish()

	for {
		ev, err := events.Next(ctx)
		if err != nil {
			if errors.Is(err, event.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("next event: %w", err)
		}

		if a.handle(ev) {
			a.quit()
			return nil
		}
		a.publish()
	}
}

// handle applies one event and reports whether the user asked to quit
func (a *App) handle(ev event.Event) bool {
	switch ev.Kind {
	case event.Tick:
		a.refreshLocal()
	case event.KeyPress:
		return a.handleKey(ev.Key)
	case event.Mouse:
		a.handleMouse(ev.Mouse)
	case event.Resize:
		// Renderer tracks its own size
	case event.NetworkUpdate:
		a.applySnapshot(ev.Payload[:])
	case event.UploadTriggered:
		if a.focus == ui.LocalPane {
			a.upload()
		} else {
			a.queue()
		}
	}
	return false
}

func (a *App) handleKey(k tea.Key) bool {
	switch k.String() {
	case "q", "esc", "ctrl+c":
		return true
	case "up", "k":
		a.move(Up)
	case "down", "j":
		a.move(Down)
	case "tab":
		a.switchPane()
	case "+", "=":
		a.adjustVolume(volumeStep)
	case "-":
		a.adjustVolume(-volumeStep)
	case "m":
		if a.config.Volume != nil {
			a.config.Volume.SetMuted(!a.config.Volume.Muted())
		}
	}
	return false
}

func (a *App) handleMouse(m tea.MouseEvent) {
	switch m.Button {
	case tea.MouseButtonWheelUp:
		a.move(Up)
	case tea.MouseButtonWheelDown:
		a.move(Down)
	}
}

// move shifts the focused pane's selection, stopping at either end
func (a *App) move(d Direction) {
	sel, n := &a.localSel, len(a.local)
	if a.focus == ui.ServerPane {
		sel, n = &a.serverSel, len(a.state.SongLibrary)
	}

	switch d {
	case Up:
		if *sel > 0 {
			*sel--
		}
	case Down:
		if *sel < n-1 {
			*sel++
		}
	}
}

// switchPane toggles focus and resets the newly focused selection
func (a *App) switchPane() {
	if a.focus == ui.LocalPane {
		a.focus = ui.ServerPane
		a.serverSel = 0
	} else {
		a.focus = ui.LocalPane
		a.localSel = 0
	}
}

func (a *App) adjustVolume(delta int) {
	if a.config.Volume == nil {
		return
	}
	a.config.Volume.SetVolume(a.config.Volume.Volume() + delta)
}

// refreshLocal re-lists the songs directory. A failing listing keeps the
// previous one and is logged once per distinct error.
func (a *App) refreshLocal() {
	names, err := a.config.Library.List(a.config.Dir)
	if err != nil {
		if msg := err.Error(); msg != a.listErr {
			log.Printf("Failed to list songs: %v", err)
			a.listErr = msg
		}
		return
	}
	a.listErr = ""
	a.local = names
	a.localSel = clamp(a.localSel, len(names))
}

// applySnapshot replaces the server state wholesale. Malformed snapshots
// leave the previous state in place.
func (a *App) applySnapshot(payload []byte) {
	state, err := protocol.ParseServerState(payload)
	if err != nil {
		log.Printf("Failed to parse server state: %v", err)
		a.config.Recorder.SnapshotFailed()
		return
	}

	a.state = state
	a.serverSel = clamp(a.serverSel, len(state.SongLibrary))
	a.config.Recorder.SnapshotApplied(state.ActiveListeners)
}

// upload sends the selected local song as a Song Transfer frame. Failures
// are reported once and never retried.
func (a *App) upload() {
	id := uuid.New().String()

	name, data, err := a.selectedLocal()
	if err != nil {
		a.fail("upload", id, 0, err)
		return
	}

	name = a.uploadName(name)
	if err := a.checkLimits(name, len(data)); err != nil {
		a.fail("upload", id, 0, err)
		return
	}

	frame := protocol.EncodeSongTransfer(name, data)
	if err := a.config.Conn.WriteAll(frame); err != nil {
		a.fail("upload", id, len(frame), fmt.Errorf("send %s: %w", name, err))
		return
	}

	a.config.Recorder.RequestSent("upload", len(frame), nil)
	log.Printf("Upload %s: sent %s (%d bytes)", id, name, len(data))
	a.status = fmt.Sprintf("Uploaded %s", name)
}

// selectedLocal resolves the selection against a fresh listing, since the
// directory may have changed since the last tick
func (a *App) selectedLocal() (string, []byte, error) {
	names, err := a.config.Library.List(a.config.Dir)
	if err != nil {
		return "", nil, err
	}
	if a.localSel >= len(names) {
		return "", nil, errors.New("no local song selected")
	}

	name := names[a.localSel]
	data, err := a.config.Library.ReadFile(path.Join(a.config.Dir, name))
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

// queue asks the server to enqueue the selected library song
func (a *App) queue() {
	id := uuid.New().String()

	if a.serverSel >= len(a.state.SongLibrary) {
		a.fail("queue", id, 0, errors.New("no server song selected"))
		return
	}
	name := a.state.SongLibrary[a.serverSel]

	if err := a.checkLimits(name, 0); err != nil {
		a.fail("queue", id, 0, err)
		return
	}

	frame := protocol.EncodeQueueRequest(name)
	if err := a.config.Conn.WriteAll(frame); err != nil {
		a.fail("queue", id, len(frame), fmt.Errorf("send %s: %w", name, err))
		return
	}

	a.config.Recorder.RequestSent("queue", len(frame), nil)
	log.Printf("Queue %s: requested %s", id, name)
	a.status = fmt.Sprintf("Queued %s", name)
}

// uploadName is the path the server stores an uploaded song under
func (a *App) uploadName(name string) string {
	dir := a.config.UploadDir
	if dir == "" {
		return name
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir + name
}

// checkLimits applies the client-side ceilings to an outgoing frame. The
// u32 length fields bound every frame even when no ceiling is configured.
func (a *App) checkLimits(name string, payload int) error {
	if err := checkLength("name "+name, len(name), a.config.MaxName); err != nil {
		return err
	}
	return checkLength(name, payload, a.config.MaxPayload)
}

func checkLength(what string, n int, ceiling uint32) error {
	limit := uint64(math.MaxUint32)
	if ceiling > 0 {
		limit = uint64(ceiling)
	}
	if uint64(n) > limit {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", protocol.ErrFrameTooLarge, what, n, limit)
	}
	return nil
}

func (a *App) fail(frame, id string, size int, err error) {
	a.config.Recorder.RequestSent(frame, size, err)
	log.Printf("%s %s failed: %v", capitalize(frame), id, err)
	a.status = fmt.Sprintf("%s failed: %v", capitalize(frame), err)
}

func (a *App) quit() {
	log.Printf("Control session %s ending", a.session)
	if a.config.Shutdown != nil {
		a.config.Shutdown()
	}
	if err := a.config.Conn.Shutdown(); err != nil {
		log.Printf("Failed to close control connection: %v", err)
	}
}

// publish pushes the current state to the renderer
func (a *App) publish() {
	if a.config.Renderer == nil {
		return
	}
	a.config.Renderer.Send(a.snapshot())
}

func (a *App) snapshot() ui.StatusMsg {
	msg := ui.StatusMsg{
		Server:         a.config.ServerAddr,
		Focus:          a.focus,
		LocalFiles:     a.local,
		LocalSelected:  a.localSel,
		Library:        a.state.SongLibrary,
		ServerSelected: a.serverSel,
		Queue:          a.state.SongQueue,
		Listeners:      a.state.ActiveListeners,
		Status:         a.status,
		Volume:         100,
	}
	if a.config.Volume != nil {
		msg.Volume = a.config.Volume.Volume()
		msg.Muted = a.config.Volume.Muted()
	}
	return msg
}

// clamp keeps a selection inside a list of length n
func clamp(sel, n int) int {
	if sel >= n {
		sel = n - 1
	}
	if sel < 0 {
		sel = 0
	}
	return sel
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
