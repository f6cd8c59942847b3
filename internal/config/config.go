// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	//Server
	Port        string `yaml:"port" env:"PORT"`
	ScrapeToken string `yaml:"scrape_token" env:"SCRAPE_TOKEN"`

	//Storage
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`

	//Browser
	BrowserPath string `yaml:"browser_path" env:"BROWSER_PATH"`
	Headless    bool   `yaml:"headless"`

	//Scraping behavior
	ScrapeIntervalHours int `yaml:"scrape_interval_hours" env:"SCRAPE_INTERVAL_HOURS"`
	NavigationTimeoutMs int `yaml:"navigation_timeout_ms"`
	ElementTimeoutMs    int `yaml:"element_timeout_ms"`
	MinDescriptionLen   int `yaml:"min_description_len"`
	MaxDescriptionLen   int `yaml:"max_description_len"`

	//Optional Telegram notifications
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	//Paths
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// Load reads .env, the optional yaml config, then env-var overrides, and
// validates required fields.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Headless: true}

	//Load yaml config
	if data, err := os.ReadFile("configs/config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config.yaml: %w", err)
		}
	}

	//Override with env vars
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("SCRAPE_TOKEN"); v != "" {
		cfg.ScrapeToken = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("BROWSER_PATH"); v != "" {
		cfg.BrowserPath = v
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HEADLESS %q: %w", v, err)
		}
		cfg.Headless = headless
	}
	if v := os.Getenv("SCRAPE_INTERVAL_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("SCRAPE_INTERVAL_HOURS must be a non-negative integer, got %q", v)
		}
		cfg.ScrapeIntervalHours = n
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	//Set default values if not set
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.NavigationTimeoutMs == 0 {
		cfg.NavigationTimeoutMs = 30000
	}
	if cfg.ElementTimeoutMs == 0 {
		cfg.ElementTimeoutMs = 3000
	}
	if cfg.MinDescriptionLen == 0 {
		cfg.MinDescriptionLen = 120
	}
	if cfg.MaxDescriptionLen == 0 {
		cfg.MaxDescriptionLen = 1500
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "logs/screenshots"
	}

	//Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ScrapeToken == "" {
		return nil, fmt.Errorf("SCRAPE_TOKEN is required")
	}

	return cfg, nil
}
