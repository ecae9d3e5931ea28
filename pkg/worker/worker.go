package worker

import (
	"encoding/hex"

	"github.com/screa/keyspace-miner/internal/crypto"
	"github.com/screa/keyspace-miner/pkg/filter"
	"github.com/screa/keyspace-miner/pkg/keyspace"
	"github.com/screa/keyspace-miner/pkg/types"
)

// ReportFunc receives the single match of a run.
type ReportFunc func(types.Match)

// Worker scans one SearchRange. A Worker owns its buffers and Deriver and
// must only be used from one goroutine.
type Worker struct {
	id      int
	config  *types.WorkerConfig
	space   *keyspace.Space
	state   *types.SearchState
	report  ReportFunc
	deriver *crypto.Deriver

	// Pre-allocated buffers for performance
	scalarBuffer [crypto.ScalarLen]byte
	hexBuffer    [crypto.ScalarHexLen]byte
}

// NewWorker creates a new worker instance
func NewWorker(id int, config *types.WorkerConfig, space *keyspace.Space, state *types.SearchState, report ReportFunc) *Worker {
	return &Worker{
		id:      id,
		config:  config,
		space:   space,
		state:   state,
		report:  report,
		deriver: crypto.NewDeriver(),
	}
}

// Scan visits every offset of r in order until the range is exhausted or
// the shared state says to stop. Progress goes to the shared counter in
// whole batches; a trailing partial batch is not published.
func (w *Worker) Scan(r types.SearchRange) types.Outcome {
	out := types.Outcome{WorkerID: w.id, Range: r}
	batch := w.config.BatchSize
	var pending uint64

	for current := r.Start; ; current++ {
		if w.state.Done() {
			break
		}

		out.Scanned++
		if match, stop := w.check(current, &out); stop {
			out.Match = match
			break
		}

		pending++
		if pending == batch {
			w.state.AddChecked(batch)
			pending = 0
		}

		// Compared before the increment so End == MaxUint64 terminates.
		if current == r.End {
			break
		}
	}
	return out
}

// check runs the filter and derivation for one offset. stop is true when
// the digest matched; match is nil if another worker reported first.
func (w *Worker) check(offset uint64, out *types.Outcome) (match *types.Match, stop bool) {
	w.space.Embed(offset, &w.scalarBuffer)
	hex.Encode(w.hexBuffer[:], w.scalarBuffer[:])

	if !filter.Accepts(w.hexBuffer[:]) {
		return nil, false
	}
	out.Accepted++

	digest, err := w.deriver.Derive(&w.scalarBuffer)
	if err != nil {
		out.Skipped++
		return nil, false
	}
	if [20]byte(digest) != w.config.Target {
		return nil, false
	}

	if !w.state.MarkFound() {
		return nil, true
	}
	m := types.Match{
		Scalar:   string(w.hexBuffer[:]),
		Offset:   offset,
		WorkerID: w.id,
	}
	if w.report != nil {
		w.report(m)
	}
	return &m, true
}
