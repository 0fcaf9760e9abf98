package media

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // MD5 used for cache key generation, not security
	"errors"
	"fmt"
	"image/jpeg"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"tutorial-portal/internal/filesystem"
	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/mediatypes"
	"tutorial-portal/internal/metrics"
	"tutorial-portal/internal/workers"
)

var (
	// ErrDisabled is returned when thumbnail generation is turned off.
	ErrDisabled = errors.New("thumbnails disabled")
	// ErrInvalidPath is returned for paths outside the source directory.
	ErrInvalidPath = errors.New("invalid thumbnail path")
	// ErrNotFound is returned when the source image does not exist.
	ErrNotFound = errors.New("source image not found")
	// ErrUnsupported is returned for files that cannot be resized.
	ErrUnsupported = errors.New("unsupported image type")
)

// Widths are the thumbnail widths that are generated. Requests are rounded
// up to the next entry.
var Widths = []int{160, 320, 480, 640, 960, 1280}

const jpegQuality = 80

// ThumbnailGenerator resizes images under sourceDir into cacheDir.
type ThumbnailGenerator struct {
	sourceDir string
	cacheDir  string
	enabled   bool
	// locks serializes generation per cache key.
	locks sync.Map
}

// NewThumbnailGenerator creates a generator. With enabled false every call
// returns ErrDisabled.
func NewThumbnailGenerator(sourceDir, cacheDir string, enabled bool) *ThumbnailGenerator {
	if enabled {
		logging.Debug("ThumbnailGenerator: enabled, source: %s, cache dir: %s", sourceDir, cacheDir)
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			logging.Warn("ThumbnailGenerator: failed to create cache dir: %v", err)
		}
	} else {
		logging.Debug("ThumbnailGenerator: disabled")
	}
	return &ThumbnailGenerator{
		sourceDir: sourceDir,
		cacheDir:  cacheDir,
		enabled:   enabled,
	}
}

// IsEnabled reports whether thumbnails are generated.
func (t *ThumbnailGenerator) IsEnabled() bool {
	return t.enabled
}

// SnapWidth rounds width up to the nearest generated width.
func SnapWidth(width int) int {
	for _, w := range Widths {
		if width <= w {
			return w
		}
	}
	return Widths[len(Widths)-1]
}

// GetThumbnail returns a JPEG thumbnail of the image at rel, a slash
// separated path relative to the source directory.
func (t *ThumbnailGenerator) GetThumbnail(ctx context.Context, rel string, width int) ([]byte, error) {
	if !t.enabled {
		return nil, ErrDisabled
	}

	src, key, err := t.resolve(rel)
	if err != nil {
		return nil, err
	}
	if !mediatypes.IsResizable(filepath.Ext(src)) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, rel)
	}

	info, err := filesystem.DefaultRetry().Stat("thumbnails", src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return nil, fmt.Errorf("file not accessible: %w", err)
	}

	width = SnapWidth(width)
	cachePath := t.cachePath(key, info.ModTime(), width)

	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		return data, nil
	}
	metrics.ThumbnailCacheMisses.Inc()

	lock, _ := t.locks.LoadOrStore(cachePath, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	// Another request may have generated it while we waited.
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := generate(src, width)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		logging.Warn("Failed to cache thumbnail %s: %v", cachePath, err)
	} else {
		logging.Debug("Thumbnail cached: %s", cachePath)
	}
	return data, nil
}

// Warm generates thumbnails for refs at width using a worker pool. Refs
// that are URLs or have unsupported extensions are skipped.
func (t *ThumbnailGenerator) Warm(ctx context.Context, refs []string, width int) workers.Stats {
	if !t.enabled {
		return workers.Stats{}
	}

	var local []string
	for _, ref := range refs {
		if strings.Contains(ref, "://") || !mediatypes.IsResizable(path.Ext(ref)) {
			continue
		}
		local = append(local, ref)
	}

	start := time.Now()
	stats := workers.Run(ctx, workers.ForCPU(4), local, func(ctx context.Context, ref string) error {
		_, err := t.GetThumbnail(ctx, ref, width)
		return err
	})
	logging.Info("Thumbnail warm-up: %d generated, %d failed, %d skipped in %v",
		stats.Succeeded, stats.Failed, stats.Skipped, time.Since(start).Round(time.Millisecond))
	return stats
}

// resolve maps rel to a file inside sourceDir, rejecting traversal. The
// returned key is the cleaned relative path.
func (t *ThumbnailGenerator) resolve(rel string) (string, string, error) {
	clean := path.Clean("/" + strings.TrimSpace(rel))
	if clean == "/" || strings.Contains(rel, "..") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	key := strings.TrimPrefix(clean, "/")
	return filepath.Join(t.sourceDir, filepath.FromSlash(key)), key, nil
}

func (t *ThumbnailGenerator) cachePath(key string, modTime time.Time, width int) string {
	hash := md5.Sum([]byte(fmt.Sprintf("%s|%d|%d", key, modTime.UnixNano(), width))) //nolint:gosec
	return filepath.Join(t.cacheDir, fmt.Sprintf("%x.jpg", hash))
}

func generate(src string, width int) (data []byte, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.ThumbnailGenerationsTotal.WithLabelValues(status).Inc()
		metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	img, err := LoadImageConstrained(src, MaxImageDimension, MaxImagePixels)
	if err != nil {
		return nil, fmt.Errorf("thumbnail generation failed: %w", err)
	}

	thumb := img
	if img.Bounds().Dx() > width {
		thumb = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
