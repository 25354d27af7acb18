// Package parallel splits index ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1 << 14,
	}
}

// WithWorkers returns cfg using n workers. n <= 0 keeps cfg; n == 1 disables parallelism.
func (cfg Config) WithWorkers(n int) Config {
	switch {
	case n <= 0:
		return cfg
	case n == 1:
		cfg.Enabled = false
	default:
		cfg.Enabled = true
	}
	cfg.NumWorkers = n
	return cfg
}

// For calls f on consecutive, non-overlapping [start, end) ranges covering [0, n).
// Ranges run concurrently when cfg allows it; For returns after all of them finish.
// Small n is handled by a single call to f.
func For(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*cfg.MinChunkSize {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}
