package main

import (
	"context"
	"log"
	"time"

	"go-jobharvest/internal/browser"
	"go-jobharvest/internal/config"
	"go-jobharvest/internal/database"
	"go-jobharvest/internal/ingest"
	"go-jobharvest/internal/notify"
	"go-jobharvest/internal/scheduler"
	"go-jobharvest/internal/scraper"
	"go-jobharvest/internal/server"
)

func main() {
	//load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx := context.Background()

	//connect storage and make sure the schema exists
	repo, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Failed to ensure schema: %v", err)
	}
	log.Println("✅ Database ready")

	//wire the ingestion pipeline
	launcher := browser.NewLauncher(browser.Options{
		BrowserPath:       cfg.BrowserPath,
		Headless:          cfg.Headless,
		NavigationTimeout: time.Duration(cfg.NavigationTimeoutMs) * time.Millisecond,
		ElementTimeout:    time.Duration(cfg.ElementTimeoutMs) * time.Millisecond,
		ScreenshotDir:     cfg.ScreenshotDir,
	})
	engine := scraper.NewEngine(scraper.DefaultCatalog(), cfg.MinDescriptionLen, cfg.MaxDescriptionLen)
	orch := ingest.New(repo, ingest.NewPlaywrightBrowser(launcher), engine)

	//optional telegram notifications for scheduled runs
	var notifier scheduler.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tn, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram notifier disabled: %v", err)
		} else {
			notifier = tn
			log.Println("🤖 Telegram notifier enabled")
		}
	}

	//internal cron scheduling, off when interval is 0
	if cfg.ScrapeIntervalHours > 0 {
		sched := scheduler.New(orch, notifier, cfg.ScrapeIntervalHours)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("❌ Failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	//HTTP surface
	r := server.NewRouter(cfg.ScrapeToken, orch, repo)
	log.Printf("🚀 Server listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
