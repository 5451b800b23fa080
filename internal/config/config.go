package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string        `yaml:"addr"`
		ReadTimeout    time.Duration `yaml:"read_timeout"`
		WriteTimeout   time.Duration `yaml:"write_timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"server"`
	Watchlist struct {
		File string `yaml:"file"`
	} `yaml:"watchlist"`
	Market struct {
		Timeout       time.Duration     `yaml:"timeout"`
		HistoryPeriod string            `yaml:"history_period"`
		SymbolMap     map[string]string `yaml:"symbol_map"`
	} `yaml:"market"`
	Macro struct {
		URL     string        `yaml:"url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
		Limit   int           `yaml:"limit"`
	} `yaml:"macro"`
	Advisor struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"advisor"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level         string `yaml:"level"`
		Format        string `yaml:"format"`
		FileEnabled   bool   `yaml:"file_enabled"`
		FilePath      string `yaml:"file_path"`
		RotationSize  int    `yaml:"rotation_size"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error: defaults and environment apply.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HELPER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("WATCHLIST_FILE"); v != "" {
		cfg.Watchlist.File = v
	}
	if v := os.Getenv("MARKET_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Market.Timeout = d
		}
	}
	if v := os.Getenv("MACRO_URL"); v != "" {
		cfg.Macro.URL = v
	}
	if v := os.Getenv("MACRO_API_KEY"); v != "" {
		cfg.Macro.APIKey = v
	}
	if v := os.Getenv("MACRO_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Macro.Limit = n
		}
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Advisor.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_DIGEST"); v != "" {
		cfg.Schedule.DigestCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:8501"}
	}
	if cfg.Watchlist.File == "" {
		cfg.Watchlist.File = "watchlist.json"
	}
	if cfg.Market.Timeout == 0 {
		cfg.Market.Timeout = 10 * time.Second
	}
	if cfg.Market.HistoryPeriod == "" {
		cfg.Market.HistoryPeriod = "6mo"
	}
	if cfg.Market.SymbolMap == nil {
		cfg.Market.SymbolMap = map[string]string{
			"US 10Y Treasury": "^TNX",
		}
	}
	if cfg.Macro.URL == "" {
		cfg.Macro.URL = "https://api.tradingeconomics.com/indicators"
	}
	if cfg.Macro.Timeout == 0 {
		cfg.Macro.Timeout = 10 * time.Second
	}
	if cfg.Macro.Limit == 0 {
		cfg.Macro.Limit = 5
	}
	if cfg.Advisor.Model == "" {
		cfg.Advisor.Model = "gemini-2.5-flash"
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 30 17 * * 1-5"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "pretty"
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = "logs"
	}
	if cfg.Logging.RotationSize == 0 {
		cfg.Logging.RotationSize = 50
	}
	if cfg.Logging.RetentionDays == 0 {
		cfg.Logging.RetentionDays = 14
	}
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Watchlist.File == "" {
		return fmt.Errorf("watchlist.file is required")
	}
	if c.Market.Timeout <= 0 {
		return fmt.Errorf("market.timeout must be positive")
	}
	if c.Macro.Timeout <= 0 {
		return fmt.Errorf("macro.timeout must be positive")
	}
	if c.Macro.Limit <= 0 {
		return fmt.Errorf("macro.limit must be positive")
	}
	if c.Macro.URL == "" {
		return fmt.Errorf("macro.url is required")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether Telegram credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
