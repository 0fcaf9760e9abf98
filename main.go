package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tutorial-portal/internal/analytics"
	"tutorial-portal/internal/app"
	"tutorial-portal/internal/database"
	"tutorial-portal/internal/handlers"
	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/media"
	"tutorial-portal/internal/memory"
	"tutorial-portal/internal/metrics"
	"tutorial-portal/internal/middleware"
	"tutorial-portal/internal/pages"
	"tutorial-portal/internal/player"
	"tutorial-portal/internal/render"
	"tutorial-portal/internal/route"
	"tutorial-portal/internal/startup"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	root := &cobra.Command{
		Use:          "tutorial-portal",
		Short:        "Device tutorial portal with a kiosk video player",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         serveCmd.RunE,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(serveCmd, newValidateCommand(&configPath), newVersionCommand())
	return root
}

// newValidateCommand lints a page configuration without starting the
// server. The source defaults to pages_source from the config.
func newValidateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [pages-source]",
		Short: "Check a page configuration for errors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			} else {
				config, err := startup.Load(*configPath)
				if err != nil {
					return err
				}
				source = config.PagesSource
			}

			cfg, err := pages.Load(cmd.Context(), source, nil)
			if err != nil {
				return err
			}
			return reportIssues(cmd, source, cfg)
		},
	}
}

func reportIssues(cmd *cobra.Command, source string, cfg pages.Config) error {
	out := cmd.OutOrStdout()
	issues := pages.Check(cfg)

	errorCount := 0
	for _, issue := range issues {
		fmt.Fprintln(out, issue.String())
		if issue.Severity == pages.SeverityError {
			errorCount++
		}
	}
	fmt.Fprintf(out, "%s: %d routes, %d issues (%d errors)\n", source, len(cfg), len(issues), errorCount)

	if errorCount > 0 {
		return fmt.Errorf("%d errors in %s", errorCount, source)
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := startup.GetBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "tutorial-portal %s (commit %s, built %s, %s %s/%s)\n",
				info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	startTime := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}

	config, err := startup.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := startup.Prepare(config); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	memory.Configure(config.MemoryLimit, config.MemoryRatio)

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn("Database close error: %v", err)
		}
	}()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Analytics
	var tracker analytics.Tracker = analytics.Nop{}
	var dispatcher *analytics.Dispatcher
	if config.AnalyticsEnabled {
		dispatcher = analytics.NewDispatcher(config.AnalyticsQueueSize,
			analytics.NewDatabaseSink(db),
			analytics.MetricsSink{},
			analytics.LogSink{},
		)
		tracker = dispatcher
	}

	// Page configuration
	var routeOpts []route.Option
	if config.StaticDir != "" {
		mediaDir := filepath.Join(config.StaticDir, filepath.FromSlash(config.MediaRoot))
		routeOpts = append(routeOpts, route.WithLocator(route.NewDirLocator(mediaDir)))
	}
	state := app.New(config.BasePath, config.MediaRoot, routeOpts...)
	loadPages(ctx, config.PagesSource, state, db)

	// Background work stops when the server shuts down.
	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	thumbGen := media.NewThumbnailGenerator(config.StaticDir, config.ThumbnailDir, config.ThumbnailsEnabled)
	thumbWidth := 0
	if thumbGen.IsEnabled() {
		thumbWidth = config.ThumbnailWidth
	}
	refs := state.Config().Thumbnails()
	startup.LogThumbnailInit(thumbGen.IsEnabled(), len(refs))
	if thumbWidth > 0 && len(refs) > 0 {
		go thumbGen.Warm(bgCtx, refs, thumbWidth)
	}

	renderer, err := render.New(render.Options{
		BasePath:       config.BasePath,
		QRService:      config.QRServiceURL,
		QRSize:         config.QRSize,
		ThumbnailWidth: thumbWidth,
		Stylesheet:     config.Stylesheet,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	registry := player.NewRegistry(player.Config{
		CheckInterval: config.PlayerCheckInterval,
		IdleTimeout:   config.PlayerIdleTimeout,
		MinWatch:      config.PlayerMinWatch,
	}, nil, tracker, config.PlayerSessionTTL)
	registry.SetMaxSessions(config.PlayerMaxSessions)
	go registry.Run(bgCtx, sweepInterval(config.PlayerSessionTTL))

	if config.AnalyticsEnabled && config.EventRetention > 0 {
		go pruneEvents(bgCtx, db, config.EventRetention, time.Hour)
	}

	collector := metrics.NewCollector(&statsAdapter{db: db, players: registry}, time.Minute)
	collector.Start()

	h := handlers.New(handlers.Options{
		State:          state,
		Renderer:       renderer,
		Players:        registry,
		Tracker:        tracker,
		Events:         db,
		Thumbs:         thumbGen,
		StaticDir:      config.StaticDir,
		ThumbnailWidth: config.ThumbnailWidth,
	})

	router := mux.NewRouter()
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.RegisterRoutes(router)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(
		middleware.Logger(loggingConfig)(router),
	)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go handleShutdown(done, srv, metricsSrv, func() {
		cancelBg()
		collector.Stop()
		if dispatcher != nil {
			flushAnalytics(dispatcher)
		}
	})

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		BasePath:        state.BasePath(),
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-done
	return nil
}

// loadPages fetches the page configuration once. A failure leaves the state
// unpublished so every route renders not-found and readiness reports
// degraded.
func loadPages(ctx context.Context, source string, state *app.State, db *database.Database) {
	start := time.Now()
	cfg, err := pages.Load(ctx, source, nil)
	startup.LogPagesLoaded(source, len(cfg), time.Since(start), err)
	if err != nil {
		state.Fail(err)
		metrics.PagesConfigLoadErrors.Inc()
		return
	}

	for _, issue := range pages.Check(cfg) {
		logging.Warn("  %s", issue)
	}

	if err := state.Publish(cfg); err != nil {
		logging.Warn("Page configuration not published: %v", err)
		return
	}
	metrics.PagesConfigured.Set(float64(len(cfg)))
	metrics.PagesConfigLoadTimestamp.Set(float64(state.LoadedAt().Unix()))

	if err := db.RecordPagesLoad(ctx, source, state.LoadedAt()); err != nil {
		logging.Warn("Failed to record page configuration load: %v", err)
	}
}

func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	m := mux.NewRouter()
	h.RegisterAdminRoutes(m)
	return &http.Server{
		Addr:              ":" + port,
		Handler:           m,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// sweepInterval checks for idle sessions often enough that none outlives
// its TTL by more than a fraction of it.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/10, time.Second)
}

func pruneEvents(ctx context.Context, db *database.Database, retention, interval time.Duration) {
	prune := func() {
		removed, err := db.PruneEvents(ctx, time.Now().Add(-retention))
		if err != nil {
			if ctx.Err() == nil {
				logging.Warn("Event pruning failed: %v", err)
			}
			return
		}
		if removed > 0 {
			logging.Info("Pruned %d analytics events older than %v", removed, retention)
		}
	}

	prune()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

func flushAnalytics(d *analytics.Dispatcher) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		logging.Warn("Analytics flush incomplete: %v", err)
	}
}

// statsAdapter feeds the metrics collector from the event store and the
// player registry.
type statsAdapter struct {
	db      *database.Database
	players *player.Registry
}

func (a *statsAdapter) GetStats() metrics.Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := a.db.EventCounts(ctx)
	if err != nil {
		logging.Warn("Failed to read event counts: %v", err)
	}
	a.db.UpdateDBMetrics()
	return metrics.Stats{
		EventCounts:    counts,
		ActiveSessions: a.players.Len(),
		DBFileSizes:    a.db.FileSizes(),
	}
}

func handleShutdown(done chan<- struct{}, srv, metricsSrv *http.Server, stopBackground func()) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Stopping background workers")
	stopBackground()
	startup.LogShutdownStepComplete("Background workers stopped")

	startup.LogShutdownComplete()
}
