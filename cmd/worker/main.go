package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
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
)

// crawlStack bundles the per-process dependency graph used to run every
// registered site's spider: one shared fetcher/renderer/object store/
// content repository/pipeline, and the engine that wires them together.
type crawlStack struct {
	engine  *engine.Engine
	objects *objectstore.Store
	db      *sql.DB
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	sites := loadSites(logger)
	procCfg := workerPkg.LoadConfigFromEnv(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stack := buildCrawlStack(ctx, logger, database)
	defer func() {
		if err := stack.engine.Close(); err != nil {
			logger.Error("failed to close engine", slog.Any("error", err))
		}
	}()

	sched := scheduler.New(crawlJobFunc(logger, stack, sites), sites)
	registerSiteJobs(logger, sched, sites)
	sched.Start()

	metrics.UpdateSitesConfigured(len(sites))

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", procCfg.HealthPort), logger)
	healthServer.SetReady(true)

	healthDone := make(chan error, 1)
	go func() { healthDone <- healthServer.Start(ctx) }()

	logger.Info("worker started", slog.Int("sites", len(sites)), slog.Int("health_port", procCfg.HealthPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	cancel()
	<-healthDone

	shutdownDone := make(chan struct{})
	go func() {
		sched.Shutdown()
		close(shutdownDone)
	}()
	select {
	case <-shutdownDone:
	case <-time.After(procCfg.ShutdownTimeout):
		logger.Warn("scheduler shutdown timed out, exiting anyway")
	}

	logger.Info("worker stopped")
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
// schema. MigrateUp is idempotent (CREATE TABLE IF NOT EXISTS), so unlike a
// schema with ordered migrations there is nothing to poll for.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// loadSites reads the site-configuration file named by SITE_CONFIG_PATH
// (default "sites.yaml"), exiting on any error since a worker with no
// valid site configuration has nothing to crawl.
func loadSites(logger *slog.Logger) map[string]entity.SiteConfig {
	path := os.Getenv("SITE_CONFIG_PATH")
	if path == "" {
		path = "sites.yaml"
	}
	sites, err := config.LoadSites(path)
	if err != nil {
		logger.Error("failed to load site configuration", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	if len(sites) == 0 {
		logger.Warn("site configuration loaded zero sites", slog.String("path", path))
	}
	return sites
}

// buildCrawlStack wires the shared fetcher, renderer, object store, content
// repository, storage pipeline, and engine. One stack is shared across
// every registered site's crawl job; the engine builds a fresh anti-bot
// middleware per run from each site's own SiteConfig (see
// engine.Engine.CrawlSpider), so QPS/delay/jitter stay per-site even though
// the fetcher and renderer underneath are shared.
func buildCrawlStack(ctx context.Context, logger *slog.Logger, database *sql.DB) *crawlStack {
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

	content := pgRepo.NewContentRepo(database)
	pipe := pipeline.New(objects, content)
	eng := engine.New(f, r, pipe)

	return &crawlStack{engine: eng, objects: objects, db: database}
}

// loadObjectStoreConfig reads the MinIO connection settings from the
// environment, matching the teacher's pattern of reading deployment-specific
// credentials directly via os.Getenv rather than through a generic loader.
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

// newSpider builds the Spider implementation named by cfg.Spider. Only
// "rss" exists today; entity.SiteConfig.Validate already rejects any other
// value before a config reaches here.
func newSpider(cfg entity.SiteConfig) spider.Spider {
	return spider.NewRSS(cfg.EffectiveSourceName(), cfg.FeedURL, cfg.MaxItems, cfg.FetchFullContent)
}

// crawlJobFunc returns the scheduler.JobFunc shared by every registered
// job: it looks up site's current SiteConfig and runs one crawl through the
// shared engine, recording the outcome to the crawl-domain metrics.
func crawlJobFunc(logger *slog.Logger, stack *crawlStack, sites map[string]entity.SiteConfig) scheduler.JobFunc {
	return func(ctx context.Context, site string) (int, error) {
		cfg, ok := sites[site]
		if !ok {
			return 0, fmt.Errorf("worker: unknown site %q", site)
		}

		start := time.Now()
		sp := newSpider(cfg)
		stored, err := stack.engine.CrawlSpider(ctx, sp, cfg)
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

// registerSiteJobs registers one recurring cron job per site, under the id
// convention "crawl_<site>" the sites/jobs HTTP handlers and
// Scheduler.TriggerManualCrawl both rely on.
func registerSiteJobs(logger *slog.Logger, sched *scheduler.Scheduler, sites map[string]entity.SiteConfig) {
	for name, cfg := range sites {
		if err := sched.AddJob("crawl_"+name, name, entity.TriggerCron, cfg.Cron); err != nil {
			logger.Error("failed to register site job", slog.String("site", name), slog.Any("error", err))
			os.Exit(1)
		}
	}
}
