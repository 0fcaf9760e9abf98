package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/metrics"
)

// Retry configures how stale file handle errors are retried. Other errors
// are returned immediately.
type Retry struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	sleep func(time.Duration)
}

// DefaultRetry returns the retry policy used for the static and cache
// directories.
func DefaultRetry() Retry {
	return Retry{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// Stat is os.Stat with retries. area labels the metrics ("static",
// "thumbnails").
func (r Retry) Stat(area, path string) (os.FileInfo, error) {
	return do(r, "stat", area, path, func() (os.FileInfo, error) {
		return os.Stat(path)
	})
}

// Open is os.Open with retries.
func (r Retry) Open(area, path string) (*os.File, error) {
	return do(r, "open", area, path, func() (*os.File, error) {
		return os.Open(path)
	})
}

func do[T any](r Retry, op, area, path string, fn func() (T, error)) (T, error) {
	sleep := r.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	backoff := r.InitialBackoff

	for attempt := 0; ; attempt++ {
		v, err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("%s %s succeeded on retry %d", op, path, attempt)
				metrics.FilesystemRetries.WithLabelValues(op, area, "recovered").Inc()
			}
			return v, nil
		}
		if !IsStale(err) {
			return v, err
		}
		if attempt >= r.MaxRetries {
			logging.Warn("%s %s failed after %d retries: %v", op, path, attempt, err)
			metrics.FilesystemRetries.WithLabelValues(op, area, "failed").Inc()
			return v, err
		}

		metrics.FilesystemRetries.WithLabelValues(op, area, "retried").Inc()
		logging.Debug("stale file handle on %s %s, retrying in %v", op, path, backoff)
		sleep(backoff)
		backoff = min(backoff*2, r.MaxBackoff)
	}
}

// IsStale reports whether err is a stale NFS file handle (ESTALE).
func IsStale(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.ESTALE
}
