package keyspace

import (
	"errors"
	"fmt"

	"github.com/screa/keyspace-miner/pkg/types"
)

// Errors
var (
	ErrNoWorkers     = errors.New("worker count must be positive")
	ErrInvalidRange  = errors.New("range start is after range end")
	ErrRangeTooSmall = errors.New("range is too small for the worker count")
)

// Partition splits [start, end] into n contiguous ranges. Every range but
// the last spans (end-start)/n offsets; the last one absorbs the remainder.
// Inputs that would produce empty or degenerate ranges are rejected.
func Partition(start, end uint64, n int) ([]types.SearchRange, error) {
	if n <= 0 {
		return nil, ErrNoWorkers
	}
	if start > end {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidRange, start, end)
	}
	per := (end - start) / uint64(n)
	if per == 0 {
		return nil, fmt.Errorf("%w: %d offsets for %d workers", ErrRangeTooSmall, types.SearchRange{Start: start, End: end}.Size(), n)
	}

	ranges := make([]types.SearchRange, n)
	for i := range ranges {
		lo := start + uint64(i)*per
		hi := lo + per - 1
		if i == n-1 {
			hi = end
		}
		ranges[i] = types.SearchRange{Start: lo, End: hi}
	}
	return ranges, nil
}
