// ABOUTME: Audio streaming pipeline package
// ABOUTME: Ingest task, jitter buffer and playback consumer joined by a bounded channel
// Package stream moves audio from the audio socket to the playback sink.
//
// An Ingest task reads the socket in chunks and sends each chunk on a
// bounded channel, blocking when it is full. A Playback consumer pushes
// received chunks into a JitterBuffer, pops them once the fill threshold is
// met, decodes them and enqueues the PCM on a sink.
//
// Example:
//
//	chunks := make(chan []byte, stream.DefaultQueueDepth)
//	in := &stream.Ingest{Conn: audioConn, Out: chunks}
//	pb := &stream.Playback{In: chunks, Decoder: dec, Sink: sink,
//	    Buffer: stream.NewJitterBuffer(stream.FixedThreshold(2))}
//	go in.Run(ctx)
//	go pb.Run(ctx)
package stream
