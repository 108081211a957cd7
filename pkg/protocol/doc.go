// ABOUTME: JamRadio control-channel wire protocol package
// ABOUTME: Defines upload/queue frames and server state snapshots
// Package protocol implements the JamRadio control-channel protocol.
//
// Frames sent by the client are signature-tagged and length-prefixed:
//
//	'f' | u32 name_length | name | u32 payload_length | payload   (song transfer)
//	'q' | u32 name_length | name                                  (queue request)
//
// All lengths are big-endian. The server pushes state snapshots back as
// JSON text padded with trailing zero bytes.
//
// Example:
//
//	frame := protocol.EncodeSongTransfer("song.mp3", data)
//	err := handle.WriteAll(frame)
package protocol
