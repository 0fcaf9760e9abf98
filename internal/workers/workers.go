package workers

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"tutorial-portal/internal/logging"
)

// OverrideEnv names the variable that forces the worker count.
const OverrideEnv = "PORTAL_THUMBNAIL_WORKERS"

// Count returns the number of workers for a task type. The multiplier
// scales GOMAXPROCS: 1.0 for CPU-bound, 2.0 for I/O-bound and 1.5 for mixed
// work. A limit of 0 means no cap.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnv); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed returns worker count for mixed tasks (1.5 per CPU).
func ForMixed(limit int) int {
	return Count(1.5, limit)
}

// Stats summarizes a Run.
type Stats struct {
	Succeeded int64
	Failed    int64
	// Skipped counts jobs never started because ctx was cancelled.
	Skipped int64
}

// Run processes items with n workers and waits for them to finish. Errors
// returned by fn are logged at debug level and counted.
func Run[T any](ctx context.Context, n int, items []T, fn func(context.Context, T) error) Stats {
	if n < 1 {
		n = 1
	}
	if n > len(items) {
		n = len(items)
	}

	var succeeded, failed, skipped atomic.Int64
	jobs := make(chan T)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if err := fn(ctx, item); err != nil {
					failed.Add(1)
					logging.Debug("worker job failed: %v", err)
					continue
				}
				succeeded.Add(1)
			}
		}()
	}

feed:
	for i, item := range items {
		if ctx.Err() != nil {
			skipped.Add(int64(len(items) - i))
			break
		}
		select {
		case <-ctx.Done():
			skipped.Add(int64(len(items) - i))
			break feed
		case jobs <- item:
		}
	}
	close(jobs)
	wg.Wait()

	return Stats{Succeeded: succeeded.Load(), Failed: failed.Load(), Skipped: skipped.Load()}
}
