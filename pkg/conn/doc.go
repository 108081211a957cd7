// ABOUTME: Shared connection handle package
// ABOUTME: Serialises reads and writes on one socket across goroutines
// Package conn wraps a live socket in a Handle that can be shared between
// goroutines. Every read or write holds the handle's lock for the duration
// of a single operation, so bytes from two writers never interleave.
//
// Example:
//
//	h, err := conn.Dial(ctx, "radio.local:8080")
//	err = h.WriteAll(frame)
//	n, err := h.TryRead(buf) // conn.ErrWouldBlock when idle
package conn
