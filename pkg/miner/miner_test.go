package miner

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screa/keyspace-miner/internal/config"
	"github.com/screa/keyspace-miner/internal/crypto"
	"github.com/screa/keyspace-miner/internal/logger"
	"github.com/screa/keyspace-miner/pkg/keyspace"
)

const fixtureBase = "0x4123456789abcdef00"

// unreachable is not the digest of any scalar in the fixture range.
const unreachable = "0000000000000000000000000000000000000000"

func fixtureConfig(t *testing.T, workers int, matchOffset uint64) *config.Config {
	t.Helper()
	base, err := keyspace.ParseBase(fixtureBase)
	require.NoError(t, err)
	digest, err := crypto.Derive(keyspace.NewSpace(base).Format(matchOffset))
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Workers = workers
	cfg.Target = digest.String()
	cfg.Base = fixtureBase
	cfg.Start = 0
	cfg.End = 50
	cfg.BatchSize = 10
	cfg.LogInterval = 5 * time.Millisecond
	return cfg
}

// syncBuffer lets tests read output while the monitor is still writing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestMiner(t *testing.T, cfg *config.Config) (*Miner, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	m, err := NewMiner(cfg, logger.NewWriter(buf))
	require.NoError(t, err)
	return m, buf
}

func TestNewMiner(t *testing.T) {
	cfg := fixtureConfig(t, 2, 4)
	m, _ := newTestMiner(t, cfg)

	if m.config != cfg {
		t.Error("Config not set correctly")
	}
	assert.Equal(t, uint64(10), m.workerConfig.BatchSize)
	assert.Zero(t, m.Checked())
}

func TestNewMinerRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{name: "no workers", modify: func(c *config.Config) { c.Workers = 0 }},
		{name: "range too small", modify: func(c *config.Config) { c.Workers = 64 }},
		{name: "malformed target", modify: func(c *config.Config) { c.Target = "abcd" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fixtureConfig(t, 2, 4)
			tt.modify(cfg)
			m, err := NewMiner(cfg, logger.New())
			assert.Error(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestMineReportsMatchExactlyOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			cfg := fixtureConfig(t, workers, 4)
			m, out := newTestMiner(t, cfg)

			result, err := m.Mine()
			require.NoError(t, err)
			require.True(t, result.Found())

			want := strings.Repeat("0", 46) + "4123456789abcdef04"
			assert.Equal(t, want, result.Match.Scalar)
			assert.Equal(t, uint64(4), result.Match.Offset)
			assert.Equal(t, 0, result.Match.WorkerID)
			assert.False(t, result.Stopped)
			assert.Equal(t, 1, strings.Count(out.String(), want))
			assert.Len(t, result.Workers, workers)

			matches := 0
			for _, o := range result.Workers {
				if o.Match != nil {
					matches++
				}
			}
			assert.Equal(t, 1, matches)
		})
	}
}

func TestMineMatchInLastPartition(t *testing.T) {
	cfg := fixtureConfig(t, 2, 50)
	m, _ := newTestMiner(t, cfg)

	result, err := m.Mine()
	require.NoError(t, err)
	require.True(t, result.Found())
	assert.Equal(t, uint64(50), result.Match.Offset)
	assert.Equal(t, 1, result.Match.WorkerID)
}

func TestMineExhaustsRange(t *testing.T) {
	cfg := fixtureConfig(t, 2, 4)
	cfg.Target = unreachable
	m, _ := newTestMiner(t, cfg)

	result, err := m.Mine()
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.False(t, result.Stopped)

	require.Len(t, result.Workers, 2)
	assert.Equal(t, uint64(0), result.Workers[0].Range.Start)
	assert.Equal(t, uint64(24), result.Workers[0].Range.End)
	assert.Equal(t, uint64(25), result.Workers[0].Scanned)
	assert.Equal(t, uint64(25), result.Workers[1].Range.Start)
	assert.Equal(t, uint64(50), result.Workers[1].Range.End)
	assert.Equal(t, uint64(26), result.Workers[1].Scanned)
	assert.Equal(t, uint64(51), result.Scanned)

	// Each worker drops its partial batch: 20 + 20.
	assert.Equal(t, uint64(40), result.Checked)
}

func TestMineZeroBaseNeverPassesFilter(t *testing.T) {
	// With base 0 every scalar in [0, 50] has '0' at the lead nibble
	// position, so the key for offset 4 is never derived.
	digest, err := crypto.Derive(strings.Repeat("0", 63) + "4")
	require.NoError(t, err)

	cfg := fixtureConfig(t, 2, 4)
	cfg.Base = "0"
	cfg.Target = digest.String()
	m, _ := newTestMiner(t, cfg)

	result, err := m.Mine()
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.False(t, result.Stopped)
	require.Len(t, result.Workers, 2)
	assert.Equal(t, uint64(25), result.Workers[0].Scanned)
	assert.Equal(t, uint64(26), result.Workers[1].Scanned)
	for _, o := range result.Workers {
		assert.Zero(t, o.Accepted)
	}
}

func TestMineBatchedCounterSingleWorker(t *testing.T) {
	cfg := fixtureConfig(t, 1, 4)
	cfg.Target = unreachable
	m, _ := newTestMiner(t, cfg)

	result, err := m.Mine()
	require.NoError(t, err)
	assert.Equal(t, uint64(51), result.Scanned)
	assert.Equal(t, uint64(50), result.Checked)
}

func TestMineAfterStop(t *testing.T) {
	cfg := fixtureConfig(t, 2, 4)
	m, _ := newTestMiner(t, cfg)
	m.Stop()

	result, err := m.Mine()
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.True(t, result.Stopped)
	assert.Zero(t, result.Scanned)
}

func TestMineVerboseListsPartitions(t *testing.T) {
	cfg := fixtureConfig(t, 2, 4)
	cfg.Target = unreachable
	cfg.Verbose = true
	m, out := newTestMiner(t, cfg)

	_, err := m.Mine()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Worker 0: [0x0, 0x18] (25 offsets)")
	assert.Contains(t, out.String(), "Worker 1: [0x19, 0x32] (26 offsets)")
}

func TestPeriodicLoggerWritesStatus(t *testing.T) {
	cfg := fixtureConfig(t, 2, 4)
	m, out := newTestMiner(t, cfg)
	m.state.AddChecked(20000)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.periodicLogger(stop, 2)
	}()

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Threads: 2")
	}, time.Second, time.Millisecond)
	close(stop)
	<-done

	assert.Contains(t, out.String(), "\rChecked: 20000 | Speed: 0 keys/sec | Threads: 2")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestPeriodicLoggerExitsOnFound(t *testing.T) {
	cfg := fixtureConfig(t, 1, 4)
	m, _ := newTestMiner(t, cfg)
	m.state.MarkFound()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.periodicLogger(make(chan struct{}), 1)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not exit after match")
	}
}
