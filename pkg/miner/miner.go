package miner

import (
	"sync"
	"time"

	"github.com/screa/keyspace-miner/internal/config"
	"github.com/screa/keyspace-miner/internal/logger"
	"github.com/screa/keyspace-miner/pkg/keyspace"
	"github.com/screa/keyspace-miner/pkg/types"
	"github.com/screa/keyspace-miner/pkg/worker"
)

// Miner coordinates one search: it partitions the range, runs one worker
// per partition plus the progress monitor, and collects the outcome.
type Miner struct {
	config       *config.Config
	logger       *logger.Logger
	state        *types.SearchState
	space        *keyspace.Space
	workerConfig *types.WorkerConfig
	wg           sync.WaitGroup
	mu           sync.Mutex
	match        *types.Match
}

// NewMiner validates cfg and prepares a miner. Configuration errors are
// returned before anything starts.
func NewMiner(cfg *config.Config, log *logger.Logger) (*Miner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	target, err := cfg.TargetDigest()
	if err != nil {
		return nil, err
	}
	base, err := cfg.BaseValue()
	if err != nil {
		return nil, err
	}

	return &Miner{
		config: cfg,
		logger: log,
		state:  &types.SearchState{},
		space:  keyspace.NewSpace(base),
		workerConfig: &types.WorkerConfig{
			Target:    [20]byte(target),
			BatchSize: cfg.BatchSize,
		},
	}, nil
}

// Mine runs the search to completion and returns its result. A nil error
// with no match means the range was exhausted or Stop was called.
func (m *Miner) Mine() (*types.Result, error) {
	ranges, err := keyspace.Partition(m.config.Start, m.config.End, m.config.Workers)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if m.config.Verbose {
		for i, r := range ranges {
			m.logger.Printf("Worker %d: %s (%d offsets)", i, r, r.Size())
		}
	}

	stopMonitor := make(chan struct{})
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		m.periodicLogger(stopMonitor, len(ranges))
	}()

	outcomes := make([]types.Outcome, len(ranges))
	for i, r := range ranges {
		m.wg.Add(1)
		go m.worker(i, r, &outcomes[i])
	}

	// Wait for completion
	m.wg.Wait()
	close(stopMonitor)
	<-monitorDone

	result := &types.Result{
		Checked:  m.state.Checked(),
		Workers:  outcomes,
		Duration: time.Since(start),
	}
	for _, o := range outcomes {
		result.Scanned += o.Scanned
	}
	m.mu.Lock()
	result.Match = m.match
	m.mu.Unlock()
	result.Stopped = result.Match == nil && m.state.Stopped()
	return result, nil
}

// worker runs the scan for a single partition
func (m *Miner) worker(id int, r types.SearchRange, out *types.Outcome) {
	defer m.wg.Done()

	w := worker.NewWorker(id, m.workerConfig, m.space, m.state, m.reportMatch)
	*out = w.Scan(r)
}

// reportMatch is called once, by the worker that set the found flag.
func (m *Miner) reportMatch(match types.Match) {
	m.mu.Lock()
	m.match = &match
	m.mu.Unlock()

	m.logger.Printf("FOUND KEY: %s (worker %d, offset %#x)", match.Scalar, match.WorkerID, match.Offset)
}

// Stop asks all workers to finish their current step and return.
func (m *Miner) Stop() {
	m.state.Stop()
}

// Checked returns the progress counter.
func (m *Miner) Checked() uint64 {
	return m.state.Checked()
}
