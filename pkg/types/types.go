package types

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// SearchRange is a closed interval [Start, End] of offsets from the base.
type SearchRange struct {
	Start uint64
	End   uint64
}

// Size returns the number of offsets in the range. The full 64-bit range
// holds 2^64 offsets, which does not fit; it reports math.MaxUint64.
func (r SearchRange) Size() uint64 {
	n := r.End - r.Start
	if n == math.MaxUint64 {
		return n
	}
	return n + 1
}

func (r SearchRange) String() string {
	return fmt.Sprintf("[%#x, %#x]", r.Start, r.End)
}

// SearchState is the state every worker and the monitor share for one run.
// The zero value is ready to use.
type SearchState struct {
	checked atomic.Uint64
	found   atomic.Bool
	stopped atomic.Bool
}

// AddChecked adds n to the progress counter.
func (s *SearchState) AddChecked(n uint64) {
	s.checked.Add(n)
}

// Checked returns the progress counter.
func (s *SearchState) Checked() uint64 {
	return s.checked.Load()
}

// MarkFound sets the found flag and reports whether this call set it.
// Only one caller per run ever gets true.
func (s *SearchState) MarkFound() bool {
	return s.found.CompareAndSwap(false, true)
}

// Found reports whether any worker has matched.
func (s *SearchState) Found() bool {
	return s.found.Load()
}

// Stop asks workers to quit without a match.
func (s *SearchState) Stop() {
	s.stopped.Store(true)
}

// Stopped reports whether Stop was called.
func (s *SearchState) Stopped() bool {
	return s.stopped.Load()
}

// Done reports whether workers should leave the Scanning state.
func (s *SearchState) Done() bool {
	return s.found.Load() || s.stopped.Load()
}

// WorkerConfig contains configuration for individual workers
type WorkerConfig struct {
	Target    [20]byte
	BatchSize uint64
}

// Match is a scalar whose digest equals the target.
type Match struct {
	Scalar   string // 64 hex digits
	Offset   uint64
	WorkerID int
}

// Outcome is what a single worker reports once it stops.
type Outcome struct {
	WorkerID int
	Range    SearchRange
	Scanned  uint64 // offsets visited, exact
	Accepted uint64 // offsets that passed the filter
	Skipped  uint64 // accepted offsets the curve library rejected
	Match    *Match
}

// Result represents the outcome of a whole search
type Result struct {
	Match    *Match
	Checked  uint64 // batched telemetry counter, may trail Scanned
	Scanned  uint64
	Workers  []Outcome
	Stopped  bool
	Duration time.Duration
}

// Found reports whether the search produced a match.
func (r *Result) Found() bool {
	return r != nil && r.Match != nil
}
