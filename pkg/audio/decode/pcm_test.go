// ABOUTME: Tests for PCM decoder
// ABOUTME: Tests 16-bit and 24-bit PCM decoding and partial frame carry-over
package decode

import (
	"testing"

	"github.com/jamradio/jamradio-go/pkg/audio"
)

func TestPCMDecode(t *testing.T) {
	tests := []struct {
		name     string
		format   audio.Format
		input    []byte
		expected []int32
	}{
		{
			name:   "16-bit stereo",
			format: audio.RawPCM,
			// 0x0100 = 256, 0x0302 = 770, scaled into 24-bit range
			input:    []byte{0x00, 0x01, 0x02, 0x03},
			expected: []int32{256 << 8, 770 << 8},
		},
		{
			name:     "16-bit negative",
			format:   audio.RawPCM,
			input:    []byte{0xFF, 0xFF, 0x00, 0x80},
			expected: []int32{-1 << 8, -32768 << 8},
		},
		{
			name:     "24-bit stereo",
			format:   audio.Format{Codec: audio.CodecPCM, SampleRate: 192000, Channels: 2, BitDepth: 24},
			input:    []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05},
			expected: []int32{0x020100, 0x050403},
		},
		{
			name:     "empty",
			format:   audio.RawPCM,
			input:    []byte{},
			expected: []int32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder, err := NewPCM(tt.format)
			if err != nil {
				t.Fatalf("failed to create decoder: %v", err)
			}

			buf, err := decoder.Decode(tt.input)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if len(buf.Samples) != len(tt.expected) {
				t.Fatalf("expected %d samples, got %d", len(tt.expected), len(buf.Samples))
			}
			for i := range tt.expected {
				if buf.Samples[i] != tt.expected[i] {
					t.Errorf("sample %d: expected %d, got %d", i, tt.expected[i], buf.Samples[i])
				}
			}
			if buf.Format != tt.format {
				t.Errorf("expected format %+v, got %+v", tt.format, buf.Format)
			}
		})
	}
}

func TestPCMDecodeCarriesPartialFrame(t *testing.T) {
	decoder, err := NewPCM(audio.RawPCM)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// One stereo frame is 4 bytes; split 6 + 2
	first, err := decoder.Decode([]byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(first.Samples) != 2 {
		t.Fatalf("expected 2 samples from first chunk, got %d", len(first.Samples))
	}

	second, err := decoder.Decode([]byte{0x04, 0x00})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(second.Samples) != 2 {
		t.Fatalf("expected 2 samples from second chunk, got %d", len(second.Samples))
	}
	if second.Samples[0] != 3<<8 || second.Samples[1] != 4<<8 {
		t.Errorf("carried frame decoded as %v", second.Samples)
	}
}

func TestNewPCMErrors(t *testing.T) {
	tests := []struct {
		name     string
		format   audio.Format
		expected string
	}{
		{"invalid codec", audio.Format{Codec: "opus", Channels: 2, BitDepth: 16}, "invalid codec for PCM decoder: opus"},
		{"bit depth", audio.Format{Codec: audio.CodecPCM, Channels: 2, BitDepth: 32}, "unsupported bit depth: 32 (supported: 16, 24)"},
		{"channels", audio.Format{Codec: audio.CodecPCM, Channels: 0, BitDepth: 16}, "invalid channel count: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder, err := NewPCM(tt.format)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if decoder != nil {
				t.Fatal("expected decoder to be nil")
			}
			if err.Error() != tt.expected {
				t.Errorf("expected error %q, got %q", tt.expected, err.Error())
			}
		})
	}
}
