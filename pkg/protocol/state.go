// ABOUTME: Server state snapshot pushed over the control channel
// ABOUTME: Parses zero-padded JSON text into a ServerState value
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ServerState is the server's view of the session. Each snapshot fully
// replaces the previous one.
type ServerState struct {
	ActiveListeners int      `json:"active_listeners"`
	SongLibrary     []string `json:"song_library"`
	SongQueue       []string `json:"song_queue"`
}

// wireState mirrors ServerState with pointers so missing fields are detectable
type wireState struct {
	ActiveListeners *int      `json:"active_listeners"`
	SongLibrary     *[]string `json:"song_library"`
	SongQueue       *[]string `json:"song_queue"`
}

// ParseServerState decodes a snapshot from a network buffer. Everything from
// the first zero byte on is padding. When the buffer holds several
// back-to-back snapshots the last complete one wins.
func ParseServerState(buf []byte) (ServerState, error) {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}

	if !utf8.Valid(buf) {
		return ServerState{}, &StateParseError{Raw: string(buf), Err: errors.New("payload is not valid UTF-8")}
	}

	text := strings.TrimSpace(string(buf))
	dec := json.NewDecoder(strings.NewReader(text))

	var (
		state ServerState
		found bool
	)
	for {
		var w wireState
		err := dec.Decode(&w)
		if err == io.EOF {
			break
		}
		if err != nil {
			if found {
				// Trailing fragment of the next snapshot; keep what we have
				break
			}
			return ServerState{}, &StateParseError{Raw: text, Err: err}
		}

		s, err := w.toState()
		if err != nil {
			return ServerState{}, &StateParseError{Raw: text, Err: err}
		}
		state, found = s, true
	}

	if !found {
		return ServerState{}, &StateParseError{Raw: text, Err: errors.New("empty payload")}
	}
	return state, nil
}

func (w wireState) toState() (ServerState, error) {
	switch {
	case w.ActiveListeners == nil:
		return ServerState{}, fmt.Errorf("missing field active_listeners")
	case w.SongLibrary == nil:
		return ServerState{}, fmt.Errorf("missing field song_library")
	case w.SongQueue == nil:
		return ServerState{}, fmt.Errorf("missing field song_queue")
	}
	return ServerState{
		ActiveListeners: *w.ActiveListeners,
		SongLibrary:     *w.SongLibrary,
		SongQueue:       *w.SongQueue,
	}, nil
}
