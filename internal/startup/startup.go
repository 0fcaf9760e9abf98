package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"tutorial-portal/internal/logging"

	"github.com/gorilla/mux"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "PORTAL_"

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	Port           string `yaml:"port" koanf:"port"`
	MetricsPort    string `yaml:"metrics_port" koanf:"metrics_port"`
	MetricsEnabled bool   `yaml:"metrics_enabled" koanf:"metrics_enabled"`

	BasePath    string `yaml:"base_path" koanf:"base_path"`
	PagesSource string `yaml:"pages_source" koanf:"pages_source"`
	MediaRoot   string `yaml:"media_root" koanf:"media_root"`
	StaticDir   string `yaml:"static_dir" koanf:"static_dir"`
	CacheDir    string `yaml:"cache_dir" koanf:"cache_dir"`
	DatabaseDir string `yaml:"database_dir" koanf:"database_dir"`
	Stylesheet  string `yaml:"stylesheet" koanf:"stylesheet"`

	QRServiceURL string `yaml:"qr_service_url" koanf:"qr_service_url"`
	QRSize       int    `yaml:"qr_size" koanf:"qr_size"`

	ThumbnailsEnabled bool `yaml:"thumbnails_enabled" koanf:"thumbnails_enabled"`
	ThumbnailWidth    int  `yaml:"thumbnail_width" koanf:"thumbnail_width"`

	PlayerCheckInterval time.Duration `yaml:"player_check_interval" koanf:"player_check_interval"`
	PlayerIdleTimeout   time.Duration `yaml:"player_idle_timeout" koanf:"player_idle_timeout"`
	PlayerMinWatch      time.Duration `yaml:"player_min_watch" koanf:"player_min_watch"`
	PlayerSessionTTL    time.Duration `yaml:"player_session_ttl" koanf:"player_session_ttl"`
	PlayerMaxSessions   int           `yaml:"player_max_sessions" koanf:"player_max_sessions"`

	AnalyticsEnabled   bool          `yaml:"analytics_enabled" koanf:"analytics_enabled"`
	AnalyticsQueueSize int           `yaml:"analytics_queue_size" koanf:"analytics_queue_size"`
	EventRetention     time.Duration `yaml:"event_retention" koanf:"event_retention"`

	// MemoryLimit is the container memory limit in bytes; 0 leaves
	// GOMEMLIMIT untouched.
	MemoryLimit int64   `yaml:"memory_limit" koanf:"memory_limit"`
	MemoryRatio float64 `yaml:"memory_ratio" koanf:"memory_ratio"`

	LogLevel        string `yaml:"log_level" koanf:"log_level"`
	LogStaticFiles  bool   `yaml:"log_static_files" koanf:"log_static_files"`
	LogHealthChecks bool   `yaml:"log_health_checks" koanf:"log_health_checks"`

	// Derived paths
	DatabasePath string `yaml:"-" koanf:"-"`
	ThumbnailDir string `yaml:"-" koanf:"-"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() *Config {
	return &Config{
		Port:                "8080",
		MetricsPort:         "9090",
		MetricsEnabled:      true,
		PagesSource:         "pages.json",
		MediaRoot:           "deployments",
		StaticDir:           "./static",
		CacheDir:            "./cache",
		DatabaseDir:         "./data",
		QRServiceURL:        "https://api.qrserver.com/v1/create-qr-code/",
		QRSize:              200,
		ThumbnailsEnabled:   true,
		ThumbnailWidth:      480,
		PlayerCheckInterval: 5 * time.Second,
		PlayerIdleTimeout:   60 * time.Second,
		PlayerMinWatch:      2 * time.Second,
		PlayerSessionTTL:    30 * time.Minute,
		PlayerMaxSessions:   10000,
		AnalyticsEnabled:    true,
		AnalyticsQueueSize:  1024,
		EventRetention:      90 * 24 * time.Hour,
		MemoryRatio:         0.85,
		LogLevel:            "info",
		LogHealthChecks:     true,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and PORTAL_* environment variables, in that order. A non-empty path
// that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.MetricsEnabled && c.MetricsPort == "" {
		errs = append(errs, errors.New("metrics_port must not be empty when metrics are enabled"))
	}
	if c.MetricsEnabled && c.MetricsPort == c.Port {
		errs = append(errs, fmt.Errorf("metrics_port %s collides with port", c.MetricsPort))
	}
	if c.PagesSource == "" {
		errs = append(errs, errors.New("pages_source must not be empty"))
	}
	if c.DatabaseDir == "" {
		errs = append(errs, errors.New("database_dir must not be empty"))
	}
	switch first, _, _ := strings.Cut(strings.Trim(c.MediaRoot, "/"), "/"); first {
	case "media", "videos", "images":
		errs = append(errs, fmt.Errorf("media_root %q would redirect media paths to themselves", c.MediaRoot))
	}
	if c.QRSize <= 0 {
		errs = append(errs, fmt.Errorf("qr_size must be positive, got %d", c.QRSize))
	}
	if c.ThumbnailWidth < 0 {
		errs = append(errs, fmt.Errorf("thumbnail_width must not be negative, got %d", c.ThumbnailWidth))
	}
	if c.PlayerCheckInterval <= 0 || c.PlayerIdleTimeout <= 0 {
		errs = append(errs, errors.New("player_check_interval and player_idle_timeout must be positive"))
	}
	if c.PlayerSessionTTL <= 0 {
		errs = append(errs, errors.New("player_session_ttl must be positive"))
	}
	if c.PlayerMaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("player_max_sessions must be positive, got %d", c.PlayerMaxSessions))
	}
	if c.AnalyticsQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("analytics_queue_size must be positive, got %d", c.AnalyticsQueueSize))
	}
	if c.MemoryLimit < 0 {
		errs = append(errs, fmt.Errorf("memory_limit must not be negative, got %d", c.MemoryLimit))
	}
	if c.MemoryRatio <= 0 || c.MemoryRatio > 1 {
		errs = append(errs, fmt.Errorf("memory_ratio must be in (0, 1], got %g", c.MemoryRatio))
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Prepare logs the startup banner and configuration, resolves directories
// and decides which optional features can run. The database directory is
// required; the cache directory only gates thumbnails.
func Prepare(config *Config) error {
	// DEBUG in the environment keeps debug output on regardless of log_level.
	if level, ok := logging.ParseLevel(config.LogLevel); ok && !logging.IsDebugEnabled() {
		logging.SetLevel(level)
	}

	printBanner()
	logSystemInfo()
	logConfig(config)

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	databaseDir, err := filepath.Abs(config.DatabaseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	config.DatabaseDir = databaseDir
	logging.Info("  Database directory (absolute): %s", databaseDir)

	cacheDir, err := filepath.Abs(config.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	config.CacheDir = cacheDir
	logging.Info("  Cache directory (absolute): %s", cacheDir)

	if config.StaticDir != "" {
		staticDir, err := filepath.Abs(config.StaticDir)
		if err != nil {
			return fmt.Errorf("failed to resolve static directory path: %w", err)
		}
		config.StaticDir = staticDir
		logging.Info("  Static directory (absolute): %s", staticDir)
		if err := checkDirectory(staticDir, "static"); err != nil {
			logging.Warn("  Static directory issue: %v", err)
		}
	}

	config.DatabasePath = filepath.Join(databaseDir, "portal.db")
	config.ThumbnailDir = filepath.Join(cacheDir, "thumbnails")

	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	if config.ThumbnailsEnabled {
		if config.StaticDir == "" {
			logging.Warn("  No static directory configured, thumbnails will be disabled")
			config.ThumbnailsEnabled = false
		} else {
			config.ThumbnailsEnabled = setupOptionalDir(config.ThumbnailDir, "thumbnails")
		}
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:    ENABLED (required)")
	logging.Info("    Thumbnails:  %s", enabledString(config.ThumbnailsEnabled))
	logging.Info("    Analytics:   %s", enabledString(config.AnalyticsEnabled))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return nil
}

func logConfig(c *Config) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  port:                   %s", c.Port)
	logging.Info("  metrics_port:           %s", c.MetricsPort)
	logging.Info("  metrics_enabled:        %v", c.MetricsEnabled)
	logging.Info("  base_path:              %q", c.BasePath)
	logging.Info("  pages_source:           %s", c.PagesSource)
	logging.Info("  media_root:             %s", c.MediaRoot)
	logging.Info("  static_dir:             %s", c.StaticDir)
	logging.Info("  cache_dir:              %s", c.CacheDir)
	logging.Info("  database_dir:           %s", c.DatabaseDir)
	logging.Info("  qr_service_url:         %s", c.QRServiceURL)
	logging.Info("  thumbnail_width:        %d", c.ThumbnailWidth)
	logging.Info("  player_check_interval:  %v", c.PlayerCheckInterval)
	logging.Info("  player_idle_timeout:    %v", c.PlayerIdleTimeout)
	logging.Info("  player_session_ttl:     %v", c.PlayerSessionTTL)
	logging.Info("  player_max_sessions:    %d", c.PlayerMaxSessions)
	logging.Info("  analytics_queue_size:   %d", c.AnalyticsQueueSize)
	logging.Info("  event_retention:        %v", c.EventRetention)
	logging.Info("  memory_limit:           %d", c.MemoryLimit)
	logging.Info("  memory_ratio:           %.2f", c.MemoryRatio)
	logging.Info("  log_static_files:       %v", c.LogStaticFiles)
	logging.Info("  log_health_checks:      %v", c.LogHealthChecks)
	logging.Info("  log_level:              %s", logging.GetLevel())
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	if err := testWriteAccess(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogPagesLoaded logs the outcome of loading the page configuration. A
// failed load is not fatal: the server keeps running and reports degraded
// readiness.
func LogPagesLoaded(source string, routes int, duration time.Duration, err error) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PAGE CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Source: %s", source)
	if err != nil {
		logging.Error("  Failed to load page configuration: %v", err)
		logging.Warn("  Every route will render the not-found page")
		return
	}
	logging.Info("  [OK] Loaded %d routes in %v", routes, duration)
}

// LogThumbnailInit logs thumbnail generator initialization
func LogThumbnailInit(enabled bool, refs int) {
	if !enabled {
		logging.Info("  Thumbnails disabled (cache directory not writable)")
		logging.Info("  Original images will be linked instead")
		return
	}
	logging.Info("  Warming %d thumbnails in the background", refs)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			// Catch-all routes registered with PathPrefix("") or a matcher only.
			pathTemplate = "/*"
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set PORTAL_LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set PORTAL_LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	BasePath        string
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Portal:        http://0.0.0.0:%s%s/", config.Port, config.BasePath)
	logging.Info("    Player API:    http://0.0.0.0:%s%s/api/player/sessions", config.Port, config.BasePath)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    Portal:        http://localhost:%s%s/", config.Port, config.BasePath)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
  _____      _             _       _   ___         _        _
 |_   _|   _| |_ ___  _ __(_) __ _| | | _ \___ _ _| |_ __ _| |
   | || | | | __/ _ \| '__| |/ _' | | |  _/ _ \ '_|  _/ _' | |
   | || |_| | || (_) | |  | | (_| | | |_| \___/_|  \__\__,_|_|
   |_| \__,_|\__\___/|_|  |_|\__,_|_|
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

// checkDirectory verifies a directory that is served but never created.
func checkDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	if logging.IsDebugEnabled() {
		if entries, err := os.ReadDir(path); err == nil {
			logging.Debug("    Contents: %d entries (top level)", len(entries))
		}
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}
