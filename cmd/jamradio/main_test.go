// ABOUTME: Tests for command-line configuration layering
// ABOUTME: Covers flag overrides, the positional server address and task isolation
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jamradio/jamradio-go/internal/config"
)

func parse(t *testing.T, args ...string) {
	t.Helper()
	if err := flag.CommandLine.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
}

func TestLoadConfigPositionalAddress(t *testing.T) {
	parse(t, "-codec", "flac", "-volume", "40", "10.0.0.7", "9000", "9001")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Server.ControlAddr() != "10.0.0.7:9000" || cfg.Server.AudioAddr() != "10.0.0.7:9001" {
		t.Errorf("addresses = %s, %s", cfg.Server.ControlAddr(), cfg.Server.AudioAddr())
	}
	if cfg.Audio.Codec != "flac" {
		t.Errorf("codec = %q, want flac", cfg.Audio.Codec)
	}
	if cfg.Audio.Volume != 40 {
		t.Errorf("volume = %d, want 40", cfg.Audio.Volume)
	}
	// Untouched flags keep the defaults
	if cfg.UI.SongsDir != "./songs/" {
		t.Errorf("songs dir = %q", cfg.UI.SongsDir)
	}
}

func TestLoadConfigRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"wrong count", []string{"localhost", "9000"}, "got 2 arguments"},
		{"bad control port", []string{"localhost", "ctl", "9001"}, "invalid control port"},
		{"bad audio port", []string{"localhost", "9000", "aud"}, "invalid audio port"},
		{"port out of range", []string{"localhost", "70000", "9001"}, "control_port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parse(t, tt.args...)
			_, err := loadConfig()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func listen(t *testing.T) (net.Listener, int) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, l.Addr().(*net.TCPAddr).Port
}

func TestAudioResetLeavesControlRunning(t *testing.T) {
	controlL, controlPort := listen(t)
	audioL, audioPort := listen(t)

	peers := make(chan net.Conn, 1)
	go func() {
		c, err := controlL.Accept()
		if err == nil {
			peers <- c
		}
	}()
	go func() {
		c, err := audioL.Accept()
		if err != nil {
			return
		}
		time.Sleep(100 * time.Millisecond)
		// Zero linger turns Close into a reset
		_ = c.(*net.TCPConn).SetLinger(0)
		c.Close()
	}()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.ControlPort = controlPort
	cfg.Server.AudioPort = audioPort
	cfg.UI.NoTUI = true
	cfg.UI.SongsDir = t.TempDir()
	cfg.Audio.Disabled = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()

	var peer net.Conn
	select {
	case peer = <-peers:
	case <-time.After(2 * time.Second):
		t.Fatal("client never connected the control channel")
	}
	defer peer.Close()

	select {
	case err := <-done:
		t.Fatalf("run returned after the audio reset: %v", err)
	case <-time.After(500 * time.Millisecond):
	}

	// The client still holds the control connection open
	_ = peer.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, err := peer.Read(make([]byte, 1)); !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("expected an idle control connection, got %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run returned %v after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
