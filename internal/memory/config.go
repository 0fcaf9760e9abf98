package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"tutorial-portal/internal/logging"
)

// DefaultRatio is the share of the container limit given to the Go heap.
// The rest covers image decoding buffers, SQLite and goroutine stacks.
const DefaultRatio = 0.85

// Result describes what Configure did.
type Result struct {
	Configured bool
	// Source is "GOMEMLIMIT", "memory_limit" or "none".
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// Configure sets GOMEMLIMIT to limit*ratio. An explicit GOMEMLIMIT in the
// environment wins, and a zero limit leaves the runtime default alone.
// Ratios outside (0, 1] fall back to DefaultRatio.
func Configure(limit int64, ratio float64) Result {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		res := Result{Source: "GOMEMLIMIT"}
		if cur := debug.SetMemoryLimit(-1); cur > 0 && cur < math.MaxInt64 {
			res.Configured = true
			res.GoMemLimit = cur
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return res
	}

	if limit <= 0 {
		logging.Debug("memory_limit not set, GOMEMLIMIT left at runtime default")
		return Result{Source: "none"}
	}

	if ratio <= 0 || ratio > 1 {
		logging.Warn("memory_ratio %g out of range (0.0-1.0], using %.2f", ratio, DefaultRatio)
		ratio = DefaultRatio
	}

	goLimit := int64(float64(limit) * ratio)
	debug.SetMemoryLimit(goLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s)",
		formatBytes(goLimit), ratio*100, formatBytes(limit))

	return Result{
		Configured:     true,
		Source:         "memory_limit",
		ContainerLimit: limit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
