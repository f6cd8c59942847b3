package main

import (
	"context"
	"log"
	"os"
	"time"

	"go-jobharvest/internal/browser"
	"go-jobharvest/internal/config"
	"go-jobharvest/internal/database"
	"go-jobharvest/internal/ingest"
	"go-jobharvest/internal/scraper"
)

// One-shot batch ingestion run, for manual and debug use outside the server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	//setup context with timeout = 10 mins
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	repo, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Failed to ensure schema: %v", err)
	}

	launcher := browser.NewLauncher(browser.Options{
		BrowserPath:       cfg.BrowserPath,
		Headless:          cfg.Headless,
		NavigationTimeout: time.Duration(cfg.NavigationTimeoutMs) * time.Millisecond,
		ElementTimeout:    time.Duration(cfg.ElementTimeoutMs) * time.Millisecond,
		ScreenshotDir:     cfg.ScreenshotDir,
	})
	engine := scraper.NewEngine(scraper.DefaultCatalog(), cfg.MinDescriptionLen, cfg.MaxDescriptionLen)
	orch := ingest.New(repo, ingest.NewPlaywrightBrowser(launcher), engine)

	log.Println("🚀 Starting ingestion run...")
	result := orch.Run(ctx)
	if !result.Success {
		log.Printf("❌ Run failed: %s", result.Error)
		os.Exit(1)
	}
	log.Printf("🏁 Run finished: %d found, %d newly stored", result.JobsFound, result.JobsSaved)
}
