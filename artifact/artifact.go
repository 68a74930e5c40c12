// Package artifact publishes run outputs (filtered table, selected
// table, best-fitness record) to a sink beyond the local output
// directory, which is always written first and stays canonical.
package artifact

import "context"

// Sink receives finished artifacts. Publishing happens after the file
// is durably written locally, so a failed publish never loses a run.
type Sink interface {
	// Publish uploads the local file at path under the given name.
	Publish(ctx context.Context, name, path string) error
}

// NopSink discards artifacts. It is the default when no remote
// publication is configured.
type NopSink struct{}

// Publish implements Sink.
func (NopSink) Publish(ctx context.Context, name, path string) error { return nil }
