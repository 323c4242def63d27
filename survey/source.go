package survey

import "context"

// Source produces survey records and publishes them through a Dispatcher.
type Source interface {
	Name() string
	// Scan publishes records until the source is exhausted or ctx is done.
	Scan(ctx context.Context, d *Dispatcher) error
}
