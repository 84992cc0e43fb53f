// Package ratemeter tracks a running success rate over a fixed window of
// {0,1} samples, the way the Builder decides when to shrink its radius.
package ratemeter

// RateMeter is a bounded ring of the last limit samples, each 0 or 1.
// It mirrors the teacher's small stateful-tracker shape (construct with a
// limit, mutate via Sample, inspect via Rate/IsBelow, clear via Reset).
type RateMeter struct {
	limit   int
	samples []int
}

// New constructs a RateMeter with the given window size.
func New(limit int) *RateMeter {
	return &RateMeter{limit: limit}
}

// Sample appends v (0 or 1), dropping the oldest sample once the window
// exceeds limit.
func (m *RateMeter) Sample(v int) {
	m.samples = append(m.samples, v)
	if len(m.samples) > m.limit {
		m.samples = m.samples[1:]
	}
}

// Rate returns the mean of the current window and true, once the window
// is full; otherwise it returns (0, false) — "no reading".
func (m *RateMeter) Rate() (float64, bool) {
	if len(m.samples) < m.limit {
		return 0, false
	}
	sum := 0
	for _, s := range m.samples {
		sum += s
	}
	return float64(sum) / float64(m.limit), true
}

// IsBelow reports whether a reading exists and is strictly less than
// threshold. A meter whose window is not yet full never reports below,
// so young meters never trigger shrinking.
func (m *RateMeter) IsBelow(threshold float64) bool {
	rate, ok := m.Rate()
	return ok && rate < threshold
}

// Reset empties the window.
func (m *RateMeter) Reset() {
	m.samples = nil
}
