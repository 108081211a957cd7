// ABOUTME: Entry point for the JamRadio terminal client
// ABOUTME: Parses CLI flags, connects both channels and runs the client tasks
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamradio/jamradio-go/internal/app"
	"github.com/jamradio/jamradio-go/internal/config"
	"github.com/jamradio/jamradio-go/internal/discovery"
	"github.com/jamradio/jamradio-go/internal/files"
	"github.com/jamradio/jamradio-go/internal/metrics"
	"github.com/jamradio/jamradio-go/internal/ui"
	"github.com/jamradio/jamradio-go/internal/version"
	"github.com/jamradio/jamradio-go/pkg/audio/decode"
	"github.com/jamradio/jamradio-go/pkg/audio/output"
	"github.com/jamradio/jamradio-go/pkg/conn"
	"github.com/jamradio/jamradio-go/pkg/event"
	"github.com/jamradio/jamradio-go/pkg/stream"
	"golang.org/x/sync/errgroup"
)

var (
	configFile     = flag.String("config", "", "YAML config file")
	logFile        = flag.String("log-file", "jamradio.log", "Log file path")
	noTUI          = flag.Bool("no-tui", false, "Disable TUI, read commands from stdin and stream logs")
	codec          = flag.String("codec", "auto", "Audio stream codec: auto, mp3, flac or pcm")
	songsDir       = flag.String("songs", "./songs/", "Directory of local songs to upload")
	metricsAddr    = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	discover       = flag.Bool("discover", false, "Find the server with mDNS")
	adaptiveJitter = flag.Bool("adaptive-jitter", false, "Grow the jitter threshold with arrival jitter")
	noAudio        = flag.Bool("no-audio", false, "Discard the audio stream instead of playing it")
	volume         = flag.Int("volume", 100, "Initial playback volume (0-100)")
	showVersion    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [host control_port audio_port]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	f, err := os.OpenFile(cfg.Logging.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if cfg.UI.NoTUI {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	} else {
		// TUI mode: log only to file
		log.SetOutput(f)
	}

	log.Printf("Starting %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Discover {
		resolveServer(ctx, cfg)
	}

	if err := run(ctx, cfg); err != nil {
		log.Printf("Client error: %v", err)
		_ = f.Close()
		os.Exit(1)
	}

	log.Printf("Client stopped")
}

// loadConfig layers the optional config file, explicit flags and the
// positional server address over the defaults
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "log-file":
			cfg.Logging.File = *logFile
		case "no-tui":
			cfg.UI.NoTUI = *noTUI
		case "codec":
			cfg.Audio.Codec = *codec
		case "songs":
			cfg.UI.SongsDir = *songsDir
		case "metrics-addr":
			cfg.Metrics.Address = *metricsAddr
		case "discover":
			cfg.Server.Discover = *discover
		case "adaptive-jitter":
			cfg.Audio.AdaptiveJitter = *adaptiveJitter
		case "no-audio":
			cfg.Audio.Disabled = *noAudio
		case "volume":
			cfg.Audio.Volume = *volume
		}
	})

	switch args := flag.Args(); len(args) {
	case 0:
	case 3:
		cfg.Server.Host = args[0]
		cfg.Server.Discover = false
		var err error
		if cfg.Server.ControlPort, err = strconv.Atoi(args[1]); err != nil {
			return nil, fmt.Errorf("invalid control port %q: %w", args[1], err)
		}
		if cfg.Server.AudioPort, err = strconv.Atoi(args[2]); err != nil {
			return nil, fmt.Errorf("invalid audio port %q: %w", args[2], err)
		}
	default:
		return nil, fmt.Errorf("expected host, control port and audio port, got %d arguments", len(args))
	}

	return cfg, cfg.Validate()
}

// resolveServer replaces the configured address with a discovered one.
// When nothing answers the configured address is kept.
func resolveServer(ctx context.Context, cfg *config.Config) {
	log.Printf("Starting server discovery...")
	disc := discovery.NewManager(discovery.Config{Timeout: cfg.Server.DiscoveryTimeout})

	server, err := disc.Lookup(ctx)
	if err != nil {
		log.Printf("Discovery failed, using %s: %v", cfg.Server.ControlAddr(), err)
		return
	}

	cfg.Server.Host = server.Host
	cfg.Server.ControlPort = server.ControlPort
	cfg.Server.AudioPort = server.AudioPort
}

// run connects both channels and drives every task until one fails, the
// user quits or a signal arrives
func run(parent context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	m := metrics.New()

	dialCtx, dialCancel := context.WithTimeout(ctx, cfg.Server.DialTimeout)
	defer dialCancel()

	control, err := conn.Dial(dialCtx, cfg.Server.ControlAddr())
	if err != nil {
		return fmt.Errorf("control channel: %w", err)
	}
	defer func() { _ = control.Shutdown() }()

	var d net.Dialer
	audioConn, err := d.DialContext(dialCtx, "tcp", cfg.Server.AudioAddr())
	if err != nil {
		return fmt.Errorf("audio channel: dial %s failed: %w", cfg.Server.AudioAddr(), err)
	}
	log.Printf("Connected to server: control %s, audio %s", control.RemoteAddr(), audioConn.RemoteAddr())

	decoder, err := decode.New(cfg.Audio.Codec)
	if err != nil {
		_ = audioConn.Close()
		return err
	}
	defer func() { _ = decoder.Close() }()

	sink, volumeCtrl := openSink(cfg)

	// Terminal front end
	var (
		input    <-chan tea.Msg
		renderer app.Renderer
		tui      *ui.TUI
	)
	if cfg.UI.NoTUI {
		lines := make(chan tea.Msg, ui.InputBuffer)
		input = lines
		renderer = ui.NewLinePrinter(os.Stdout)
		go func() {
			if err := ui.ReadCommands(ctx, os.Stdin, lines); err != nil {
				log.Printf("Command input stopped: %v", err)
			}
		}()
	} else {
		tui = ui.New(ctx.Done())
		input = tui.Input()
		renderer = tui
	}

	mux := event.NewMultiplexer(event.Config{
		TickRate: cfg.UI.TickRate,
		Capacity: cfg.UI.EventCapacity,
		OnEmit:   m.EventEmitted,
		OnDrop:   m.EventDropped,
	}, control, input)

	library := files.NewBrowser(cfg.UI.SongsDir)
	log.Printf("Sharing songs from %s", library.Root())

	controller, err := app.New(app.Config{
		ServerAddr: cfg.Server.ControlAddr(),
		MaxName:    cfg.Protocol.MaxNameLength,
		MaxPayload: cfg.Protocol.MaxPayloadSize,
		Conn:       control,
		UploadDir:  cfg.UI.SongsDir,
		Library:    library,
		Renderer:   renderer,
		Recorder:   m,
		Volume:     volumeCtrl,
		Shutdown:   cancel,
	})
	if err != nil {
		_ = audioConn.Close()
		return err
	}

	var policy stream.ThresholdPolicy = stream.FixedThreshold(cfg.Audio.JitterMin)
	if cfg.Audio.AdaptiveJitter {
		policy = stream.NewAdaptiveThreshold(cfg.Audio.JitterMin, cfg.Audio.JitterMax)
	}

	chunks := make(chan []byte, cfg.Audio.QueueDepth)
	ingest := &stream.Ingest{
		Conn:      audioConn,
		Out:       chunks,
		ChunkSize: cfg.Audio.ChunkSize,
		Observer:  m,
	}
	playback := &stream.Playback{
		In:       chunks,
		Decoder:  decoder,
		Sink:     sink,
		Buffer:   stream.NewJitterBuffer(policy),
		Observer: m,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return mux.Run(gctx) })
	// The audio half stopping leaves the control channel usable
	g.Go(func() error {
		if err := ingest.Run(gctx); err != nil {
			log.Printf("Audio stream stopped: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := playback.Run(gctx); err != nil {
			log.Printf("Playback stopped: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		// Closing the sink interrupts a write blocked on the device
		<-gctx.Done()
		if err := sink.Close(); err != nil {
			log.Printf("Failed to close audio output: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return controller.Run(gctx, mux)
	})

	if tui != nil {
		g.Go(func() error {
			defer cancel()
			if err := tui.Run(); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			tui.Quit()
			return nil
		})
	}

	if cfg.Metrics.Address != "" {
		serveMetrics(gctx, g, cfg.Metrics.Address, m)
	}

	err = g.Wait()
	log.Printf("Event multiplexer %s, %d ticks dropped", mux.State(), mux.Dropped())
	if null, ok := sink.(*output.Null); ok {
		buffers, played := null.Stats()
		log.Printf("Discarded %d audio buffers (%v)", buffers, played)
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// openSink returns the playback sink and, when it has one, its volume
// control
func openSink(cfg *config.Config) (output.Sink, output.VolumeControl) {
	if cfg.Audio.Disabled {
		log.Printf("Audio output disabled")
		return output.NewNull(), nil
	}

	// Device format follows the first decoded buffer
	o := output.NewOto(0, 0)
	o.SetVolume(cfg.Audio.Volume)
	return o, o
}

// serveMetrics exposes the Prometheus registry until ctx is done
func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	g.Go(func() error {
		log.Printf("Serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})
}
