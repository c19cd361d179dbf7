package queue

import "fmt"

// resultCollector is the fixed-length, index-addressed result sequence of a
// run. Each slot is written exactly once. It does no locking of its own: the
// scheduler serializes every write through its settle handler.
type resultCollector[R any] struct {
	outcomes []Outcome[R]
	written  []bool
	filled   int
}

func newResultCollector[R any](total int) *resultCollector[R] {
	return &resultCollector[R]{
		outcomes: make([]Outcome[R], total),
		written:  make([]bool, total),
	}
}

// set stores the outcome for its index. Writing a slot twice or outside the
// collector's range is an invariant violation and leaves the slot untouched.
func (c *resultCollector[R]) set(out Outcome[R]) error {
	idx := out.Index
	if idx < 0 || idx >= len(c.outcomes) {
		return fmt.Errorf("queue: result index %d out of range [0,%d)", idx, len(c.outcomes))
	}
	if c.written[idx] {
		return fmt.Errorf("%w: index %d", errSlotWritten, idx)
	}

	c.outcomes[idx] = out
	c.written[idx] = true
	c.filled++
	return nil
}

// full reports whether every slot has been written.
func (c *resultCollector[R]) full() bool {
	return c.filled == len(c.outcomes)
}

// results returns the dense, order-preserving outcomes.
func (c *resultCollector[R]) results() []Outcome[R] {
	return c.outcomes
}
