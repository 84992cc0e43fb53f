package builder

import "github.com/cwbudde/sediment/internal/raster"

// Update is one message on the Bus: either a Preview of the current
// canvas, a Stats snapshot, or both (the final update carries both).
type Update struct {
	Preview *raster.Canvas
	Stats   *Stats
}

// Bus is a single-producer, any-consumer channel of Updates. It
// generalizes the teacher's per-job SSE broadcaster to a single bounded
// channel: the Builder is always its only producer, so there is no
// per-client fan-out map to maintain here, only backpressure handling on
// publish.
type Bus struct {
	ch chan Update
}

// NewBus constructs a Bus with the given channel capacity.
func NewBus(capacity int) *Bus {
	return &Bus{ch: make(chan Update, capacity)}
}

// Updates returns the receive side of the bus.
func (b *Bus) Updates() <-chan Update {
	return b.ch
}

// Publish delivers u without blocking the Builder. A Preview-only update
// is dropped under backpressure (stale frames are worthless); an update
// carrying Stats always makes room for itself by discarding the oldest
// queued item rather than being dropped. The discarded item may itself
// be an earlier Stats update, so only the most recently published Stats
// (in particular the terminal one) is guaranteed to be delivered.
func (b *Bus) Publish(u Update) {
	if u.Stats == nil {
		select {
		case b.ch <- u:
		default:
		}
		return
	}

	for {
		select {
		case b.ch <- u:
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}

// Close closes the channel. Callers must stop publishing before calling
// Close.
func (b *Bus) Close() {
	close(b.ch)
}
