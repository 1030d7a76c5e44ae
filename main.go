package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"metastore-scraper/browser"
	"metastore-scraper/config"
	"metastore-scraper/models"
	"metastore-scraper/scraper/metastore"
	"metastore-scraper/services"
	"metastore-scraper/storage"
	"metastore-scraper/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(config.Load()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "metastore-scraper",
		Short:         "Meta Quest Store scraper",
		Long:          "Scrapes app records from the Meta Quest store, writes them to a JSON file and syncs them to the catalog store and import API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg, utils.NewLogger())
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.MaxApps, "max-apps", cfg.MaxApps, "Maximum number of apps to scrape")
	f.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Output JSON file")
	f.StringVar(&cfg.ChromeBin, "chromedriver", cfg.ChromeBin, "Path to the Chrome/Chromium executable")
	f.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "API URL for importing data")
	f.BoolVar(&cfg.SkipAPI, "skip-api", cfg.SkipAPI, "Skip API import and just save JSON")
	f.BoolVar(&cfg.ClearBeforeSync, "clear", cfg.ClearBeforeSync, "Clear existing records before syncing")
	f.BoolVar(&cfg.SkipStore, "skip-store", cfg.SkipStore, "Skip the direct document store sync")
	f.BoolVar(&cfg.SyncDemo, "sync-demo", cfg.SyncDemo, "Also sync demo records when nothing could be scraped")
	f.StringVar(&cfg.Engine, "engine", cfg.Engine, "Browser engine: chromedp or rod")
	f.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "Document store: mongo, postgres, elasticsearch or memory")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		return err
	}

	logger.Info("=== Meta Quest Store scraper starting ===")
	logger.Info("Config: max apps %d | engine %s | store %s | output %s",
		cfg.MaxApps, cfg.Engine, cfg.StoreBackend, cfg.OutputPath)

	page, err := openPage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start browser session: %v", err)
		return err
	}
	defer page.Close()

	s := metastore.New(cfg, logger, page)
	if cfg.MemcacheAddr != "" {
		cooldown := services.NewMemcacheCooldown(cfg.MemcacheAddr, cfg.CooldownTTL)
		if err := cooldown.Ping(); err != nil {
			logger.Warn("Memcache at %s unavailable, failure cooldown disabled: %v", cfg.MemcacheAddr, err)
		} else {
			s.WithCooldown(cooldown)
		}
	}

	batch := s.Run(ctx, cfg.MaxApps)
	logger.Info("Scraped %d apps (mode: %s)", len(batch.Records), batch.Mode)

	// The session is no longer needed; release it before slower network work.
	if err := page.Close(); err != nil {
		logger.Warn("Browser close reported: %v", err)
	}

	var writer storage.RecordWriter = storage.NewJSONWriter(cfg.OutputPath)
	if err := writer.Write(batch.Records); err != nil {
		logger.Error("Error saving data to %s: %v", cfg.OutputPath, err)
	} else {
		logger.Info("Data saved to %s", cfg.OutputPath)
	}

	if batch.IsDemo() && !cfg.SyncDemo {
		logger.Warn("Batch holds demo records only; skipping store sync and API import (use --sync-demo to override)")
	} else {
		syncStore(ctx, cfg, logger, batch)
		importBatch(ctx, cfg, logger, batch)
	}

	summary := services.NewSummaryService(logger)
	summary.Print(summary.Generate(batch))

	logger.Info("Scraping process completed")
	return nil
}

func openPage(ctx context.Context, cfg *config.Config, logger *utils.Logger) (browser.Page, error) {
	userAgent := browser.RandomUserAgent()
	opts := browser.Options{
		Engine:          cfg.Engine,
		Bin:             cfg.ChromeBin,
		Headless:        cfg.Headless,
		UserAgent:       userAgent,
		WindowWidth:     cfg.WindowWidth,
		WindowHeight:    cfg.WindowHeight,
		PageLoadTimeout: cfg.PageLoadTimeout,
	}

	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}
	var page browser.Page
	err := retry.Do(ctx, "browser session", func() error {
		var err error
		page, err = browser.Open(ctx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Browser session ready (engine: %s)", cfg.Engine)

	var limiter *rate.Limiter
	if cfg.NavigationRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.NavigationRPS), 1)
	}
	var robots *browser.RobotsChecker
	if cfg.RespectRobots {
		robots = browser.NewRobotsChecker(nil)
	}
	if limiter == nil && robots == nil {
		return page, nil
	}
	return browser.Guard(page, limiter, robots, userAgent), nil
}

func syncStore(ctx context.Context, cfg *config.Config, logger *utils.Logger, batch *models.Batch) {
	if cfg.SkipStore {
		logger.Info("Skipping document store sync")
		return
	}

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Error connecting to %s store: %v", cfg.StoreBackend, err)
		return
	}
	defer store.Close()

	syncer := storage.NewSyncer(store, logger)
	if cfg.RedisAddr != "" {
		pub := storage.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, 10000)
		defer pub.Close()
		if err := pub.Ping(ctx); err != nil {
			logger.Warn("Redis at %s unavailable, record stream disabled: %v", cfg.RedisAddr, err)
		} else {
			syncer.WithPublisher(pub)
		}
	}

	out, err := syncer.Sync(ctx, batch.Records, cfg.ClearBeforeSync)
	switch {
	case errors.Is(err, storage.ErrPartialSync):
		logger.Warn("Store sync finished with failures: %v", err)
	case err != nil:
		logger.Error("Store sync failed: %v", err)
		return
	}
	logger.Info("Synced %d records to %s (cleared: %t, failed: %d)",
		out.Upserted, cfg.StoreBackend, out.Cleared, out.Failed)

	if stored, err := store.FetchAll(ctx); err == nil {
		logger.Info("Store now holds %d records", len(stored))
	}
}

func importBatch(ctx context.Context, cfg *config.Config, logger *utils.Logger, batch *models.Batch) {
	if cfg.SkipAPI {
		logger.Info("Skipping API import")
		return
	}

	logger.Info("Sending data to API: %s (clear=%t)", cfg.APIURL, cfg.ClearBeforeSync)
	res, err := storage.NewImportClient(cfg.APIURL, cfg.ImportTimeout).Import(ctx, batch.Records, cfg.ClearBeforeSync)
	if err != nil {
		logger.Warn("API import failed, data is still saved to %s: %v", cfg.OutputPath, err)
		return
	}
	msg := res.Message
	if msg == "" {
		msg = res.Body
	}
	logger.Info("Data successfully imported to API: %s", msg)
}
