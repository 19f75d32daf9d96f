package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "READLATER_CONFIG"
	databaseDSNEnv     = "DATABASE_DSN"
	databaseDriverEnv  = "DATABASE_DRIVER"
	httpAddrEnv        = "HTTP_ADDR"
	logLevelEnv        = "LOG_LEVEL"
	firecrawlAPIKeyEnv = "FIRECRAWL_API_KEY"
	openRouterKeyEnv   = "OPENROUTER_API_KEY"
	openRouterModelEnv = "OPENROUTER_MODEL"
	jwtSecretEnv       = "AUTH_JWT_SECRET"
	redisURLEnv        = "REDIS_URL"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Logging       LoggingConfig      `yaml:"logging"`
	Extraction    ExtractionConfig   `yaml:"extraction"`
	Firecrawl     FirecrawlConfig    `yaml:"firecrawl"`
	LLM           LLMConfig          `yaml:"llm"`
	Discovery     DiscoveryConfig    `yaml:"discovery"`
	Redis         RedisConfig        `yaml:"redis"`
	Auth          AuthConfig         `yaml:"auth"`
	Notifications NotificationConfig `yaml:"notifications"`
	Reconciler    ReconcilerConfig   `yaml:"reconciler"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// HeartbeatInterval keeps SSE connections alive while a slow item is processed.
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval"`
}

// DatabaseConfig describes the item store connection. Driver is "pgx" or "sqlite".
type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ExtractionConfig picks the extraction provider and throttling.
type ExtractionConfig struct {
	Provider       string        `yaml:"provider"`
	RequestsPerMin int           `yaml:"requestsPerMinute"`
	Timeout        time.Duration `yaml:"timeout"`
	UserAgent      string        `yaml:"userAgent"`
}

// FirecrawlConfig defines how to contact the Firecrawl API.
type FirecrawlConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// LLMConfig defines how to contact an OpenAI-compatible chat API.
type LLMConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"apiKey"`
	SummaryPrompt string        `yaml:"summaryPrompt"`
	Timeout       time.Duration `yaml:"timeout"`
}

// DiscoveryConfig bounds map and search requests.
type DiscoveryConfig struct {
	MapLimit    int           `yaml:"mapLimit"`
	SearchLimit int           `yaml:"searchLimit"`
	SearchTBS   string        `yaml:"searchTbs"`
	CacheTTL    time.Duration `yaml:"cacheTtl"`
}

// RedisConfig enables the discovery cache when URL is set.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig configures bearer token validation.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
	Issuer    string `yaml:"issuer"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// ReconcilerConfig controls the stale item sweeper.
type ReconcilerConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"staleAfter"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := Parse(raw)
			if err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, err
	}
	return fileCfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = strings.ToLower(v)
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(firecrawlAPIKeyEnv); v != "" {
		c.Firecrawl.APIKey = v
	}
	if v := os.Getenv(openRouterKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(openRouterModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(jwtSecretEnv); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv(redisURLEnv); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ShutdownTimeout > 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}
	if override.Server.HeartbeatInterval > 0 {
		base.Server.HeartbeatInterval = override.Server.HeartbeatInterval
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.MaxOpenConns > 0 {
		base.Database.MaxOpenConns = override.Database.MaxOpenConns
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Extraction.Provider != "" {
		base.Extraction.Provider = override.Extraction.Provider
	}
	if override.Extraction.RequestsPerMin > 0 {
		base.Extraction.RequestsPerMin = override.Extraction.RequestsPerMin
	}
	if override.Extraction.Timeout > 0 {
		base.Extraction.Timeout = override.Extraction.Timeout
	}
	if override.Extraction.UserAgent != "" {
		base.Extraction.UserAgent = override.Extraction.UserAgent
	}

	if override.Firecrawl.Endpoint != "" {
		base.Firecrawl.Endpoint = override.Firecrawl.Endpoint
	}
	if override.Firecrawl.APIKey != "" {
		base.Firecrawl.APIKey = override.Firecrawl.APIKey
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.SummaryPrompt != "" {
		base.LLM.SummaryPrompt = override.LLM.SummaryPrompt
	}
	if override.LLM.Timeout > 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}

	if override.Discovery.MapLimit > 0 {
		base.Discovery.MapLimit = override.Discovery.MapLimit
	}
	if override.Discovery.SearchLimit > 0 {
		base.Discovery.SearchLimit = override.Discovery.SearchLimit
	}
	if override.Discovery.SearchTBS != "" {
		base.Discovery.SearchTBS = override.Discovery.SearchTBS
	}
	if override.Discovery.CacheTTL > 0 {
		base.Discovery.CacheTTL = override.Discovery.CacheTTL
	}

	if override.Redis.URL != "" {
		base.Redis.URL = override.Redis.URL
	}

	if override.Auth.JWTSecret != "" {
		base.Auth.JWTSecret = override.Auth.JWTSecret
	}
	if override.Auth.Issuer != "" {
		base.Auth.Issuer = override.Auth.Issuer
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Reconciler.Enabled {
		base.Reconciler.Enabled = true
	}
	if override.Reconciler.Interval > 0 {
		base.Reconciler.Interval = override.Reconciler.Interval
	}
	if override.Reconciler.StaleAfter > 0 {
		base.Reconciler.StaleAfter = override.Reconciler.StaleAfter
	}

	return base
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ShutdownTimeout:   10 * time.Second,
			HeartbeatInterval: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "file:readlater.db?_pragma=busy_timeout(5000)",
			MaxOpenConns: 10,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Extraction: ExtractionConfig{
			Provider:       "firecrawl",
			RequestsPerMin: 60,
			Timeout:        60 * time.Second,
			UserAgent:      "ReadLater/1.0",
		},
		Firecrawl: FirecrawlConfig{Endpoint: "https://api.firecrawl.dev"},
		LLM: LLMConfig{
			Endpoint:      "https://openrouter.ai/api/v1/chat/completions",
			Model:         "arcee-ai/trinity-large-preview:free",
			SummaryPrompt: "You summarize web articles. Write a concise summary of the main points in a few short paragraphs.",
			Timeout:       2 * time.Minute,
		},
		Discovery: DiscoveryConfig{
			MapLimit:    25,
			SearchLimit: 15,
			SearchTBS:   "qdr:y",
			CacheTTL:    15 * time.Minute,
		},
		Reconciler: ReconcilerConfig{
			Enabled:    false,
			Interval:   time.Hour,
			StaleAfter: 6 * time.Hour,
		},
	}
}
