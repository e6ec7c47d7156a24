package streamprio

import "sync/atomic"

// sequence is a monotonically increasing, allocation-free counter.
// The scheduler has no run/sleep/terminate lifecycle of its own, but
// it still needs a cheap, contention-free source of ordering numbers:
// one is stamped onto every Node at Open time, so exclusive insertion
// can tell original open order apart from ring (cursor) order when
// reparenting children (see Scheduler.Open).
type sequence struct {
	n atomic.Uint64
}

// next returns the next value in the sequence, starting at 1 so the
// zero value of a Node's seq field can mean "never opened".
func (s *sequence) next() uint64 {
	return s.n.Add(1)
}
