// ABOUTME: mDNS service discovery for JamRadio servers
// ABOUTME: Browses the local network when no server address is configured
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD type advertised by JamRadio servers. The
// service port is the control port; the audio port travels in the TXT
// record as audio_port=N.
const ServiceType = "_jamradio._tcp"

// ErrNoServer is returned when browsing finds no usable server
var ErrNoServer = errors.New("no JamRadio server found")

// Config holds discovery configuration
type Config struct {
	Service string
	Domain  string
	Timeout time.Duration
}

// ServerInfo describes a discovered server
type ServerInfo struct {
	Name        string
	Host        string
	ControlPort int
	AudioPort   int
}

// Manager handles mDNS operations
type Manager struct {
	config Config
	query  func(context.Context, *mdns.QueryParam) error
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	if config.Service == "" {
		config.Service = ServiceType
	}
	if config.Domain == "" {
		config.Domain = "local"
	}
	if config.Timeout <= 0 {
		config.Timeout = 3 * time.Second
	}
	return &Manager{config: config, query: mdns.QueryContext}
}

// Lookup browses once and returns the first server that advertises both
// ports
func (m *Manager) Lookup(ctx context.Context) (*ServerInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	entries := make(chan *mdns.ServiceEntry, 10)
	found := make(chan *ServerInfo, 1)

	go func() {
		defer close(found)
		for entry := range entries {
			server, err := serverFromEntry(entry)
			if err != nil {
				log.Printf("Ignoring mDNS entry %s: %v", entry.Name, err)
				continue
			}
			log.Printf("Discovered server: %s at %s (control %d, audio %d)",
				server.Name, server.Host, server.ControlPort, server.AudioPort)
			select {
			case found <- server:
				cancel()
			default:
			}
		}
	}()

	params := &mdns.QueryParam{
		Service:     m.config.Service,
		Domain:      m.config.Domain,
		Timeout:     m.config.Timeout,
		Entries:     entries,
		DisableIPv6: true,
	}

	err := m.query(ctx, params)
	close(entries)

	if server, ok := <-found; ok && server != nil {
		return server, nil
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("mdns query failed: %w", err)
	}
	return nil, ErrNoServer
}

// serverFromEntry extracts the address and ports from a service entry
func serverFromEntry(entry *mdns.ServiceEntry) (*ServerInfo, error) {
	if entry.AddrV4 == nil {
		return nil, fmt.Errorf("no IPv4 address")
	}
	if entry.Port <= 0 {
		return nil, fmt.Errorf("invalid control port %d", entry.Port)
	}

	audioPort := 0
	for _, field := range entry.InfoFields {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key != "audio_port" {
			continue
		}
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid audio_port %q", value)
		}
		audioPort = port
	}
	if audioPort == 0 {
		return nil, fmt.Errorf("missing audio_port TXT field")
	}

	return &ServerInfo{
		Name:        entry.Name,
		Host:        entry.AddrV4.String(),
		ControlPort: entry.Port,
		AudioPort:   audioPort,
	}, nil
}
