package pages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tutorial-portal/internal/logging"
)

// ErrUnknownPageType is returned when a page declares a type other than
// selector or deployment.
var ErrUnknownPageType = errors.New("unknown page type")

const fetchTimeout = 15 * time.Second

// Load reads the page configuration from source, which is either a local
// file path or an http(s) URL. YAML is used for .yaml/.yml sources, JSON
// otherwise.
func Load(ctx context.Context, source string, client *http.Client) (Config, error) {
	var (
		data []byte
		err  error
	)
	if isURL(source) {
		data, err = fetch(ctx, source, client)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("reading page config %s: %w", source, err)
	}

	cfg, err := Decode(data, formatOf(source))
	if err != nil {
		return nil, fmt.Errorf("decoding page config %s: %w", source, err)
	}

	logging.Debug("Loaded %d pages from %s", len(cfg), source)
	return cfg, nil
}

// Format selects the decoder used by Decode.
type Format int

const (
	// FormatJSON decodes JSON documents.
	FormatJSON Format = iota
	// FormatYAML decodes YAML documents.
	FormatYAML
)

// Decode parses and validates a page configuration document.
func Decode(data []byte, format Format) (Config, error) {
	var cfg Config
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural rules that would make a page unrenderable.
func (c Config) Validate() error {
	if len(c) == 0 {
		return errors.New("page config is empty")
	}
	for _, name := range c.RouteNames() {
		page := c[name]
		if page == nil {
			return fmt.Errorf("page %q: empty definition", name)
		}
		switch page.Type {
		case TypeSelector, TypeDeployment:
		default:
			return fmt.Errorf("page %q: %w %q", name, ErrUnknownPageType, page.Type)
		}
	}
	return nil
}

// RouteNames returns the configured route names sorted alphabetically.
func (c Config) RouteNames() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func fetch(ctx context.Context, url string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("failed to close page config response: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func formatOf(source string) Format {
	if isURL(source) {
		if i := strings.IndexAny(source, "?#"); i >= 0 {
			source = source[:i]
		}
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
