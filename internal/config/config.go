package config

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/holiman/uint256"

	"github.com/screa/keyspace-miner/internal/crypto"
	"github.com/screa/keyspace-miner/pkg/keyspace"
	"github.com/screa/keyspace-miner/pkg/types"
)

// Defaults describe the digest being searched for and the first 2^64 keys
// of the 72-bit window 0x40…00 to 0x7f…ff, i.e. 0x40…00 to 0x40ff…ff. The
// window has 64 such slices; the others are reached by moving Base, for
// example --base 0x410000000000000000.
const (
	DefaultTarget      = "f6f5431d25bbf7b12e8add9af5e3475c44a0a5b8"
	DefaultBase        = "0x400000000000000000"
	DefaultStart       = 0
	DefaultEnd         = math.MaxUint64
	DefaultBatchSize   = 10000
	DefaultLogInterval = time.Second
)

// Errors
var (
	ErrInvalidWorkers   = errors.New("worker count must be positive")
	ErrInvalidBatchSize = errors.New("batch size must be positive")
	ErrInvalidInterval  = errors.New("log interval must be positive")
)

// Config holds the application configuration
type Config struct {
	Workers     int
	Target      string
	Base        string
	Start       uint64
	End         uint64
	BatchSize   uint64
	LogInterval time.Duration
	LogFile     string
	Verbose     bool
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Workers:     runtime.NumCPU(),
		Target:      DefaultTarget,
		Base:        DefaultBase,
		Start:       DefaultStart,
		End:         DefaultEnd,
		BatchSize:   DefaultBatchSize,
		LogInterval: DefaultLogInterval,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}
	if _, err := c.TargetDigest(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	base, err := c.BaseValue()
	if err != nil {
		return fmt.Errorf("base: %w", err)
	}
	if err := keyspace.NewSpace(base).CheckEnd(c.End); err != nil {
		return err
	}
	if c.Start > c.End {
		return fmt.Errorf("%w: %d > %d", keyspace.ErrInvalidRange, c.Start, c.End)
	}
	if (c.End-c.Start)/uint64(c.Workers) == 0 {
		return fmt.Errorf("%w: %d offsets for %d workers",
			keyspace.ErrRangeTooSmall, types.SearchRange{Start: c.Start, End: c.End}.Size(), c.Workers)
	}
	if c.BatchSize == 0 {
		return ErrInvalidBatchSize
	}
	if c.LogInterval <= 0 {
		return ErrInvalidInterval
	}
	return nil
}

// TargetDigest returns the decoded target.
func (c *Config) TargetDigest() (crypto.Digest, error) {
	return crypto.ParseDigest(c.Target)
}

// BaseValue returns the decoded base.
func (c *Config) BaseValue() (*uint256.Int, error) {
	return keyspace.ParseBase(c.Base)
}

// GetTargetDescription returns a human-readable description of the target
func (c *Config) GetTargetDescription() string {
	d, err := c.TargetDigest()
	if err != nil {
		return "invalid: " + c.Target
	}
	return "hash160 " + d.String()
}
