package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/catchup-feed/sitecrawler/internal/config"
	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/engine"
	pgRepo "github.com/catchup-feed/sitecrawler/internal/infra/adapter/persistence/postgres"
	"github.com/catchup-feed/sitecrawler/internal/infra/db"
	"github.com/catchup-feed/sitecrawler/internal/infra/fetcher"
	"github.com/catchup-feed/sitecrawler/internal/infra/objectstore"
	"github.com/catchup-feed/sitecrawler/internal/infra/renderer"
	workerPkg "github.com/catchup-feed/sitecrawler/internal/infra/worker"
	"github.com/catchup-feed/sitecrawler/internal/observability/metrics"
	"github.com/catchup-feed/sitecrawler/internal/pipeline"
	"github.com/catchup-feed/sitecrawler/internal/scheduler"
	"github.com/catchup-feed/sitecrawler/internal/spider"

	hhttp "github.com/catchup-feed/sitecrawler/internal/handler/http"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/content"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/jobs"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/middleware"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/requestid"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/sites"
	pkgconfig "github.com/catchup-feed/sitecrawler/pkg/config"
	"github.com/catchup-feed/sitecrawler/pkg/ratelimit"
	"github.com/catchup-feed/sitecrawler/pkg/security/csp"
)

// ServerComponents holds everything runServer needs to serve requests and
// shut down cleanly: the composed handler, the scheduler driving crawl
// jobs, and the IP rate limiter's backing store (for periodic cleanup).
type ServerComponents struct {
	Handler   http.Handler
	Scheduler *scheduler.Scheduler
	Engine    *engine.Engine
	Objects   *objectstore.Store
	IPStore   *ratelimit.InMemoryRateLimitStore
	IPWindow  time.Duration
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	siteMap := loadSites(logger)
	components := setupServer(logger, database, siteMap, version)
	defer func() {
		if err := components.Engine.Close(); err != nil {
			logger.Error("failed to close engine", slog.Any("error", err))
		}
	}()

	components.Scheduler.Start()
	metrics.UpdateSitesConfigured(len(siteMap))

	runServer(logger, components, version)
}

func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and applies the crawler's
// schema. MigrateUp is idempotent, so there is no separate migration
// runner to wait for.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// loadSites reads the site-configuration file named by SITE_CONFIG_PATH
// (default "sites.yaml").
func loadSites(logger *slog.Logger) map[string]entity.SiteConfig {
	path := os.Getenv("SITE_CONFIG_PATH")
	if path == "" {
		path = "sites.yaml"
	}
	siteMap, err := config.LoadSites(path)
	if err != nil {
		logger.Error("failed to load site configuration", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	if len(siteMap) == 0 {
		logger.Warn("site configuration loaded zero sites", slog.String("path", path))
	}
	return siteMap
}

// buildEngine wires the shared fetcher, renderer, object store, content
// repository, storage pipeline, and engine — identical to cmd/worker's
// stack. cmd/api runs the same scheduler in-process so the sites/jobs
// management endpoints always report the scheduler's own live state;
// see DESIGN.md for why this process-split carries no cross-process RPC.
func buildEngine(ctx context.Context, logger *slog.Logger, database *sql.DB) (*engine.Engine, *objectstore.Store) {
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load fetcher configuration", slog.Any("error", err))
		os.Exit(1)
	}
	f := fetcher.New(fetchCfg)

	var r renderer.Renderer = renderer.Noop{}
	if os.Getenv("RENDER_ENABLED") == "true" {
		r = renderer.New(renderer.DefaultConfig())
	}

	objects, err := objectstore.New(ctx, loadObjectStoreConfig(logger))
	if err != nil {
		logger.Error("failed to connect to object store", slog.Any("error", err))
		os.Exit(1)
	}

	contentRepo := pgRepo.NewContentRepo(database)
	pipe := pipeline.New(objects, contentRepo)
	return engine.New(f, r, pipe), objects
}

func loadObjectStoreConfig(logger *slog.Logger) objectstore.Config {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "sitecrawler-content"
	}
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		logger.Warn("MINIO_ACCESS_KEY or MINIO_SECRET_KEY is empty")
	}

	return objectstore.Config{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Bucket:    bucket,
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}
}

func newSpider(cfg entity.SiteConfig) spider.Spider {
	return spider.NewRSS(cfg.EffectiveSourceName(), cfg.FeedURL, cfg.MaxItems, cfg.FetchFullContent)
}

func crawlJobFunc(logger *slog.Logger, eng *engine.Engine, siteMap map[string]entity.SiteConfig) scheduler.JobFunc {
	return func(ctx context.Context, site string) (int, error) {
		cfg, ok := siteMap[site]
		if !ok {
			return 0, fmt.Errorf("api: unknown site %q", site)
		}

		start := time.Now()
		sp := newSpider(cfg)
		stored, err := eng.CrawlSpider(ctx, sp, cfg)
		duration := time.Since(start)

		status := "success"
		if err != nil {
			status = "failure"
			logger.Error("crawl failed", slog.String("site", site), slog.Any("error", err))
		} else if stored == 0 {
			status = "partial"
		}
		metrics.RecordSchedulerJobRun(site, string(entity.TriggerCron), status, duration)
		return stored, err
	}
}

func registerSiteJobs(logger *slog.Logger, sched *scheduler.Scheduler, siteMap map[string]entity.SiteConfig) {
	for name, cfg := range siteMap {
		if err := sched.AddJob("crawl_"+name, name, entity.TriggerCron, cfg.Cron); err != nil {
			logger.Error("failed to register site job", slog.String("site", name), slog.Any("error", err))
			os.Exit(1)
		}
	}
}

// setupServer wires the crawl stack, the scheduler, the management HTTP
// routes, and the middleware chain. Unlike the teacher's api process this
// carries no JWT auth, swagger, or user-tier rate limiting: the crawler's
// management surface is an operator-facing control plane behind IP-based
// limiting, not a multi-tenant public API (see SPEC_FULL.md's dependency
// notes).
func setupServer(logger *slog.Logger, database *sql.DB, siteMap map[string]entity.SiteConfig, version string) *ServerComponents {
	ctx := context.Background()
	eng, objects := buildEngine(ctx, logger, database)

	sched := scheduler.New(crawlJobFunc(logger, eng, siteMap), siteMap)
	registerSiteJobs(logger, sched, siteMap)

	rateLimitConfig, err := pkgconfig.LoadRateLimitConfig()
	if err != nil {
		logger.Error("failed to load rate limit configuration", slog.Any("error", err))
		os.Exit(1)
	}

	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var ipExtractor middleware.IPExtractor
	if proxyConfig.Enabled {
		ipExtractor = middleware.NewTrustedProxyExtractor(*proxyConfig)
		logger.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	} else {
		ipExtractor = &middleware.RemoteAddrExtractor{}
		logger.Info("rate limiting: using RemoteAddr (secure mode, proxy headers ignored)")
	}

	var ipRateLimiter *middleware.IPRateLimiter
	var ipStore *ratelimit.InMemoryRateLimitStore

	if rateLimitConfig.Enabled {
		ipStore = ratelimit.NewInMemoryRateLimitStore(ratelimit.InMemoryStoreConfig{
			MaxKeys: rateLimitConfig.MaxActiveKeys,
		})

		algorithm := ratelimit.NewSlidingWindowAlgorithm(&ratelimit.SystemClock{})
		rlMetrics := ratelimit.NewPrometheusMetrics()

		ipCircuitBreaker := ratelimit.NewCircuitBreaker(ratelimit.CircuitBreakerConfig{
			FailureThreshold: rateLimitConfig.CircuitBreakerFailureThreshold,
			RecoveryTimeout:  rateLimitConfig.CircuitBreakerResetTimeout,
		})

		ipRateLimiter = middleware.NewIPRateLimiter(
			middleware.IPRateLimiterConfig{
				Limit:   rateLimitConfig.DefaultIPLimit,
				Window:  rateLimitConfig.DefaultIPWindow,
				Enabled: true,
			},
			ipExtractor,
			ipStore,
			algorithm,
			rlMetrics,
			ipCircuitBreaker,
		)

		logger.Info("rate limiting initialized",
			slog.Bool("enabled", true),
			slog.Int("ip_limit", rateLimitConfig.DefaultIPLimit),
			slog.Duration("ip_window", rateLimitConfig.DefaultIPWindow),
			slog.Int("max_keys", rateLimitConfig.MaxActiveKeys),
		)
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	rootMux := setupRoutes(database, version, siteMap, sched, ipRateLimiter, logger)
	handler := applyMiddleware(logger, rootMux, ipRateLimiter)

	return &ServerComponents{
		Handler:   handler,
		Scheduler: sched,
		Engine:    eng,
		Objects:   objects,
		IPStore:   ipStore,
		IPWindow:  rateLimitConfig.DefaultIPWindow,
	}
}

// setupRoutes registers the health/ready/live/metrics public endpoints and
// the sites/jobs/content management endpoints.
func setupRoutes(
	database *sql.DB,
	version string,
	siteMap map[string]entity.SiteConfig,
	sched *scheduler.Scheduler,
	ipRateLimiter *middleware.IPRateLimiter,
	logger *slog.Logger,
) *http.ServeMux {
	publicMux := http.NewServeMux()
	publicMux.Handle("/health", &hhttp.HealthHandler{
		DB:                 database,
		Version:            version,
		RateLimiterEnabled: ipRateLimiter != nil,
	})
	publicMux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	publicMux.Handle("/live", &hhttp.LiveHandler{})
	publicMux.Handle("/metrics", hhttp.MetricsHandler())

	privateMux := http.NewServeMux()
	sites.Register(privateMux, siteMap, sched)
	jobs.Register(privateMux, sched)
	content.Register(privateMux, pgRepo.NewContentRepo(database), logger)

	rootMux := http.NewServeMux()
	rootMux.Handle("/health", publicMux)
	rootMux.Handle("/ready", publicMux)
	rootMux.Handle("/live", publicMux)
	rootMux.Handle("/metrics", publicMux)
	rootMux.Handle("/", privateMux)

	return rootMux
}

// applyMiddleware wraps the handler with the CORS, request ID, IP rate
// limiting, recovery, logging, body-limit, CSP, and metrics middleware
// chain, matching the teacher's ordering.
func applyMiddleware(logger *slog.Logger, handler http.Handler, ipRateLimiter *middleware.IPRateLimiter) http.Handler {
	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	corsConfig.Logger = &middleware.SlogAdapter{Logger: logger}

	logger.Info("CORS enabled",
		slog.Int("allowed_origins_count", len(corsConfig.Validator.GetAllowedOrigins())),
		slog.Any("allowed_origins", corsConfig.Validator.GetAllowedOrigins()),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Any("allowed_headers", corsConfig.AllowedHeaders),
		slog.Int("max_age", corsConfig.MaxAge))

	cspConfig, err := pkgconfig.LoadCSPConfig()
	if err != nil {
		logger.Error("failed to load CSP configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var cspMiddleware func(http.Handler) http.Handler
	if cspConfig.Enabled {
		cspMW := middleware.NewCSPMiddleware(middleware.CSPMiddlewareConfig{
			Enabled:       true,
			DefaultPolicy: csp.StrictPolicy(),
			ReportOnly:    cspConfig.ReportOnly,
		})
		cspMiddleware = cspMW.Middleware()
		logger.Info("CSP enabled", slog.Bool("report_only", cspConfig.ReportOnly))
	} else {
		cspMiddleware = func(next http.Handler) http.Handler { return next }
		logger.Warn("CSP is disabled")
	}

	middlewareChain := handler
	middlewareChain = hhttp.MetricsMiddleware(middlewareChain)
	middlewareChain = cspMiddleware(middlewareChain)
	middlewareChain = hhttp.LimitRequestBody(1 << 20)(middlewareChain)
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = hhttp.Recover(logger)(middlewareChain)

	if ipRateLimiter != nil {
		middlewareChain = ipRateLimiter.Middleware()(middlewareChain)
	}

	middlewareChain = requestid.Middleware(middlewareChain)
	middlewareChain = middleware.CORS(*corsConfig)(middlewareChain)

	return middlewareChain
}

// runServer starts the HTTP server, the scheduler, and handles graceful
// shutdown of both plus the object store connection.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanupCfg := hhttp.LoadCleanupConfigFromEnv()
	if components.IPStore != nil {
		go hhttp.StartRateLimitCleanup(ctx, components.IPStore, cleanupCfg.Interval, components.IPWindow, "ip")
		logger.Info("IP rate limit cleanup started",
			slog.Duration("interval", cleanupCfg.Interval),
			slog.Duration("window", components.IPWindow))
	}

	procCfg := workerPkg.DefaultProcessConfig()

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", ":8080"), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	schedDone := make(chan struct{})
	go func() {
		components.Scheduler.Shutdown()
		close(schedDone)
	}()
	select {
	case <-schedDone:
	case <-time.After(procCfg.ShutdownTimeout):
		logger.Warn("scheduler shutdown timed out, exiting anyway")
	}

	logger.Info("server stopped")
}
