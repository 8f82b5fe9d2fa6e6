package stream

import "context"

// EventSink delivers raw event envelopes to an external log stream.
type EventSink interface {
	Put(ctx context.Context, record []byte) error
}

// NopSink discards records. Used when no delivery stream is configured.
type NopSink struct{}

func (NopSink) Put(ctx context.Context, record []byte) error { return nil }
