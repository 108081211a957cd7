// ABOUTME: Event multiplexer package
// ABOUTME: Merges tick, terminal input and control-socket reads into one stream
// Package event merges the client's asynchronous sources into one ordered
// stream of typed events consumed by a single control loop.
//
// Sources are a periodic ticker, terminal input (bubbletea messages) and a
// readiness probe on the control connection. Delivery goes through a
// bounded channel; when it is full, Tick events are dropped while every
// other kind waits for room.
//
// Example:
//
//	mux := event.NewMultiplexer(event.Config{}, handle, input)
//	go mux.Run(ctx)
//	for {
//	    ev, err := mux.Next(ctx)
//	    ...
//	}
package event
