package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/screa/keyspace-miner/internal/config"
	logpkg "github.com/screa/keyspace-miner/internal/logger"
	minerpkg "github.com/screa/keyspace-miner/pkg/miner"
	"github.com/screa/keyspace-miner/pkg/types"
)

var (
	cfg    = config.NewConfig()
	logger *logpkg.Logger
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "keyspace-miner",
		Short: "Sequential secp256k1 key range search",
		Long: `Scans a range of secp256k1 private keys in parallel and reports the key
whose compressed public key hashes (SHA-256 then RIPEMD-160) to the target.
Keys are base + offset; the offset range is split evenly between workers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMiner,
	}

	rootCmd.Flags().IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	rootCmd.Flags().StringVarP(&cfg.Target, "target", "t", config.DefaultTarget, "Target hash160 (40 hex chars)")
	rootCmd.Flags().StringVarP(&cfg.Base, "base", "b", config.DefaultBase, "Fixed 256-bit base the offsets are added to (hex)")
	rootCmd.Flags().Uint64VarP(&cfg.Start, "start", "s", config.DefaultStart, "First offset to scan (0x prefix for hex)")
	rootCmd.Flags().Uint64VarP(&cfg.End, "end", "e", config.DefaultEnd, "Last offset to scan, inclusive")
	rootCmd.Flags().Uint64Var(&cfg.BatchSize, "batch", config.DefaultBatchSize, "Offsets per progress counter update")
	rootCmd.Flags().DurationVarP(&cfg.LogInterval, "log-interval", "i", config.DefaultLogInterval, "Status line refresh interval")
	rootCmd.Flags().StringVarP(&cfg.LogFile, "log-file", "l", "", "Log file for progress tracking (default: stdout)")
	rootCmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print the partition of every worker")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMiner(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	miner, err := minerpkg.NewMiner(cfg, logger)
	if err != nil {
		return err
	}

	logger.Println("=== secp256k1 keyspace miner ===")
	logger.Printf("Target: %s", cfg.GetTargetDescription())
	logger.Printf("Base: %s", cfg.Base)
	logger.Printf("Offsets: %#x - %#x", cfg.Start, cfg.End)
	logger.Printf("Using %d workers", cfg.Workers)

	// Set up signal handling for Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	type mineResult struct {
		result *types.Result
		err    error
	}
	resultChan := make(chan mineResult, 1)
	go func() {
		result, err := miner.Mine()
		resultChan <- mineResult{result, err}
	}()

	var res mineResult
	select {
	case res = <-resultChan:
	case <-sigChan:
		logger.Println("Received interrupt signal (Ctrl+C). Stopping workers...")
		miner.Stop()
		res = <-resultChan
	}
	if res.err != nil {
		return res.err
	}

	printResult(res.result)
	return nil
}

func printResult(result *types.Result) {
	switch {
	case result.Found():
		logger.Printf("Key found: %s", result.Match.Scalar)
	case result.Stopped:
		logger.Println("Search stopped by user.")
	default:
		logger.Println("Search completed. Key not found.")
	}

	logger.Printf("Scanned: %d (reported %d)", result.Scanned, result.Checked)
	logger.Printf("Duration: %v", result.Duration)

	// Calculate rate safely
	rate := 0.0
	if result.Duration.Seconds() > 0 {
		rate = float64(result.Scanned) / result.Duration.Seconds()
	}
	logger.Printf("Rate: %.2f keys/sec", rate)

	if cfg.Verbose {
		for _, o := range result.Workers {
			logger.Printf("Worker %d: scanned %d, accepted %d, skipped %d",
				o.WorkerID, o.Scanned, o.Accepted, o.Skipped)
		}
	}
}

// setupLogging points the logger at cfg.LogFile or stdout. The returned
// func closes the log file, if any.
func setupLogging() (func() error, error) {
	if cfg.LogFile != "" {
		// Log to file
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger = logpkg.NewWriter(file)
		logger.SetFlags(logpkg.LstdFlags | logpkg.Lmicroseconds)
		return file.Close, nil
	}

	// Log to stdout
	logger = logpkg.New()
	logger.SetFlags(logpkg.LstdFlags)
	return func() error { return nil }, nil
}
