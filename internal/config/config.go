// ABOUTME: Configuration types, YAML loading and validation
// ABOUTME: Sections cover server address, audio pipeline, protocol limits, UI and logging
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete client configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Audio    AudioConfig    `yaml:"audio"`
	Protocol ProtocolConfig `yaml:"protocol"`
	UI       UIConfig       `yaml:"ui"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig locates the JamRadio server
type ServerConfig struct {
	Host             string        `yaml:"host"`
	ControlPort      int           `yaml:"control_port"`
	AudioPort        int           `yaml:"audio_port"`
	Discover         bool          `yaml:"discover"`
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
}

// AudioConfig tunes the streaming pipeline
type AudioConfig struct {
	Codec          string `yaml:"codec"` // auto, mp3, flac or pcm
	ChunkSize      int    `yaml:"chunk_size"`
	QueueDepth     int    `yaml:"queue_depth"`
	JitterMin      int    `yaml:"jitter_threshold"`
	AdaptiveJitter bool   `yaml:"adaptive_jitter"`
	JitterMax      int    `yaml:"jitter_max"`
	Volume         int    `yaml:"volume"`
	Disabled       bool   `yaml:"disabled"` // discard audio instead of playing it
}

// ProtocolConfig bounds incoming frames
type ProtocolConfig struct {
	MaxNameLength  uint32 `yaml:"max_name_length"`
	MaxPayloadSize uint32 `yaml:"max_payload_size"`
}

// UIConfig controls the terminal front end
type UIConfig struct {
	TickRate      time.Duration `yaml:"tick_rate"`
	EventCapacity int           `yaml:"event_capacity"`
	SongsDir      string        `yaml:"songs_dir"`
	NoTUI         bool          `yaml:"no_tui"`
}

// LoggingConfig selects the log destination
type LoggingConfig struct {
	File string `yaml:"file"`
}

// MetricsConfig enables the Prometheus endpoint when Address is set
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "127.0.0.1",
			ControlPort:      8080,
			AudioPort:        8081,
			DiscoveryTimeout: 3 * time.Second,
			DialTimeout:      5 * time.Second,
		},
		Audio: AudioConfig{
			Codec:      "auto",
			ChunkSize:  10000,
			QueueDepth: 32,
			JitterMin:  2,
			JitterMax:  8,
			Volume:     100,
		},
		Protocol: ProtocolConfig{
			MaxNameLength:  4096,
			MaxPayloadSize: 512 << 20,
		},
		UI: UIConfig{
			TickRate:      250 * time.Millisecond,
			EventCapacity: 64,
			SongsDir:      "./songs/",
		},
		Logging: LoggingConfig{
			File: "jamradio.log",
		},
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if !s.Discover && s.Host == "" {
		return fmt.Errorf("host cannot be empty unless discovery is enabled")
	}

	if err := validPort("control_port", s.ControlPort); err != nil {
		return err
	}

	if err := validPort("audio_port", s.AudioPort); err != nil {
		return err
	}

	if s.Discover && s.DiscoveryTimeout <= 0 {
		return fmt.Errorf("discovery_timeout must be positive, got %v", s.DiscoveryTimeout)
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	switch a.Codec {
	case "auto", "mp3", "flac", "pcm":
	default:
		return fmt.Errorf("codec must be one of auto, mp3, flac, pcm, got %q", a.Codec)
	}

	if a.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be at least 1 byte, got %d", a.ChunkSize)
	}

	if a.QueueDepth < 1 {
		return fmt.Errorf("queue_depth must be at least 1, got %d", a.QueueDepth)
	}

	if a.JitterMin < 1 {
		return fmt.Errorf("jitter_threshold must be at least 1, got %d", a.JitterMin)
	}

	if a.AdaptiveJitter && a.JitterMax < a.JitterMin {
		return fmt.Errorf("jitter_max (%d) must not be below jitter_threshold (%d)", a.JitterMax, a.JitterMin)
	}

	if a.Volume < 0 || a.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", a.Volume)
	}

	return nil
}

// Validate validates UI configuration
func (u *UIConfig) Validate() error {
	if u.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %v", u.TickRate)
	}

	if u.EventCapacity < 1 {
		return fmt.Errorf("event_capacity must be at least 1, got %d", u.EventCapacity)
	}

	if u.SongsDir == "" {
		return fmt.Errorf("songs_dir cannot be empty")
	}

	return nil
}

// ControlAddr returns host:port of the control channel
func (s *ServerConfig) ControlAddr() string {
	return joinHostPort(s.Host, s.ControlPort)
}

// AudioAddr returns host:port of the audio channel
func (s *ServerConfig) AudioAddr() string {
	return joinHostPort(s.Host, s.AudioPort)
}

func validPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", name, port)
	}
	return nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
