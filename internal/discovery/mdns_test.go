// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests entry parsing and lookup with a stubbed query
package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestNewManagerDefaults(t *testing.T) {
	mgr := NewManager(Config{})
	if mgr.config.Service != ServiceType {
		t.Errorf("expected service %s, got %s", ServiceType, mgr.config.Service)
	}
	if mgr.config.Domain != "local" {
		t.Errorf("expected domain local, got %s", mgr.config.Domain)
	}
	if mgr.config.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", mgr.config.Timeout)
	}
}

func TestServerFromEntry(t *testing.T) {
	ip := net.ParseIP("192.168.1.20")

	tests := []struct {
		name    string
		entry   *mdns.ServiceEntry
		wantErr bool
	}{
		{"valid", &mdns.ServiceEntry{Name: "radio", AddrV4: ip, Port: 8080, InfoFields: []string{"audio_port=8081"}}, false},
		{"no address", &mdns.ServiceEntry{Name: "radio", Port: 8080, InfoFields: []string{"audio_port=8081"}}, true},
		{"no port", &mdns.ServiceEntry{Name: "radio", AddrV4: ip, InfoFields: []string{"audio_port=8081"}}, true},
		{"missing audio port", &mdns.ServiceEntry{Name: "radio", AddrV4: ip, Port: 8080, InfoFields: []string{"path=/"}}, true},
		{"bad audio port", &mdns.ServiceEntry{Name: "radio", AddrV4: ip, Port: 8080, InfoFields: []string{"audio_port=abc"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := serverFromEntry(tt.entry)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", server)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if server.Host != "192.168.1.20" || server.ControlPort != 8080 || server.AudioPort != 8081 {
				t.Errorf("unexpected server %+v", server)
			}
		})
	}
}

func TestLookupReturnsFirstUsableServer(t *testing.T) {
	mgr := NewManager(Config{Timeout: time.Second})
	mgr.query = func(ctx context.Context, p *mdns.QueryParam) error {
		if p.Service != ServiceType {
			t.Errorf("queried %s", p.Service)
		}
		p.Entries <- &mdns.ServiceEntry{Name: "broken", AddrV4: net.ParseIP("10.0.0.1"), Port: 1}
		p.Entries <- &mdns.ServiceEntry{Name: "radio", AddrV4: net.ParseIP("10.0.0.2"), Port: 9000, InfoFields: []string{"audio_port=9001"}}
		<-ctx.Done()
		return ctx.Err()
	}

	server, err := mgr.Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if server.Name != "radio" || server.Host != "10.0.0.2" || server.AudioPort != 9001 {
		t.Errorf("unexpected server %+v", server)
	}
}

func TestLookupNothingFound(t *testing.T) {
	mgr := NewManager(Config{Timeout: 20 * time.Millisecond})
	mgr.query = func(ctx context.Context, p *mdns.QueryParam) error {
		<-ctx.Done()
		return nil
	}

	if _, err := mgr.Lookup(context.Background()); !errors.Is(err, ErrNoServer) {
		t.Errorf("expected ErrNoServer, got %v", err)
	}
}

func TestLookupQueryError(t *testing.T) {
	boom := errors.New("no multicast interface")
	mgr := NewManager(Config{})
	mgr.query = func(context.Context, *mdns.QueryParam) error { return boom }

	if _, err := mgr.Lookup(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped query error, got %v", err)
	}
}
