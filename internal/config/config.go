package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "Asia/Seoul"
	configPathEnv      = "NEWSSIGNAL_CONFIG"
	datasetRootEnv     = "NEWSSIGNAL_ROOT"
	logLevelEnv        = "LOG_LEVEL"
	naverClientIDEnv   = "NAVER_CLIENT_ID"
	naverSecretEnv     = "NAVER_CLIENT_SECRET"
	geminiAPIKeyEnv    = "GEMINI_API_KEY"
	geminiModelEnv     = "GEMINI_MODEL"
	databaseDSNEnv     = "DATABASE_DSN"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	pushgatewayURLEnv  = "PUSHGATEWAY_URL"
	defaultDotEnvFile  = ".env"
	defaultGeminiModel = "gemini-2.5-flash"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Dataset       DatasetConfig      `yaml:"dataset"`
	Search        SearchConfig       `yaml:"search"`
	Gemini        GeminiConfig       `yaml:"gemini"`
	Collector     CollectorConfig    `yaml:"collector"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatasetConfig locates partial collections and the canonical outputs.
type DatasetConfig struct {
	Root          string   `yaml:"root"`
	Pattern       string   `yaml:"pattern"`
	CanonicalFile string   `yaml:"canonicalFile"`
	Outputs       []string `yaml:"outputs"`
	Exclude       []string `yaml:"exclude"`
	PartialPrefix string   `yaml:"partialPrefix"`
}

// Path resolves name against Root unless it is absolute.
func (d DatasetConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Root, name)
}

// CanonicalPath is the canonical file presentation reads from.
func (d DatasetConfig) CanonicalPath() string {
	return d.Path(d.CanonicalFile)
}

// SearchConfig is the explicit query configuration of the acquisition step.
type SearchConfig struct {
	Provider        string      `yaml:"provider"`
	Query           string      `yaml:"query"`
	Display         int         `yaml:"display"`
	Sort            string      `yaml:"sort"`
	ExcludeKeywords []string    `yaml:"excludeKeywords"`
	Naver           NaverConfig `yaml:"naver"`
	Feeds           []string    `yaml:"feeds"`
}

// NaverConfig carries Naver Open API credentials.
type NaverConfig struct {
	Endpoint     string `yaml:"endpoint"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"apiKey"`
	PromptTemplate string `yaml:"promptTemplate"`
}

// CollectorConfig bounds one collection run.
type CollectorConfig struct {
	TargetCount  int            `yaml:"targetCount"`
	MaxErrors    int            `yaml:"maxErrors"`
	FetchWorkers int            `yaml:"fetchWorkers"`
	ContentLimit int            `yaml:"contentLimit"`
	Timezone     string         `yaml:"timezone"`
	location     *time.Location `yaml:"-"`
}

// Location resolves the collector timezone string to a time.Location.
func (c CollectorConfig) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SchedulerConfig defines how often `collect --every` repeats when no flag is given.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// DatabaseConfig enables the optional Postgres snapshot target.
type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
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

// MetricsConfig points at a Prometheus Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgatewayUrl"`
	Job            string `yaml:"job"`
}

// Load reads .env (if present), YAML configuration named by path or
// NEWSSIGNAL_CONFIG, and applies environment overrides.
func Load(path string) Config {
	if err := godotenv.Load(defaultDotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", defaultDotEnvFile, err)
	}

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{datasetRootEnv, &c.Dataset.Root},
		{logLevelEnv, &c.Logging.Level},
		{naverClientIDEnv, &c.Search.Naver.ClientID},
		{naverSecretEnv, &c.Search.Naver.ClientSecret},
		{geminiAPIKeyEnv, &c.Gemini.APIKey},
		{geminiModelEnv, &c.Gemini.Model},
		{databaseDSNEnv, &c.Database.DSN},
		{telegramTokenEnv, &c.Notifications.Telegram.BotToken},
		{telegramChatIDEnv, &c.Notifications.Telegram.ChatID},
		{pushgatewayURLEnv, &c.Metrics.PushgatewayURL},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Collector.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Collector.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Dataset.Root != "" {
		base.Dataset.Root = override.Dataset.Root
	}
	if override.Dataset.Pattern != "" {
		base.Dataset.Pattern = override.Dataset.Pattern
	}
	if override.Dataset.CanonicalFile != "" {
		base.Dataset.CanonicalFile = override.Dataset.CanonicalFile
	}
	if len(override.Dataset.Outputs) > 0 {
		base.Dataset.Outputs = override.Dataset.Outputs
	}
	if len(override.Dataset.Exclude) > 0 {
		base.Dataset.Exclude = override.Dataset.Exclude
	}
	if override.Dataset.PartialPrefix != "" {
		base.Dataset.PartialPrefix = override.Dataset.PartialPrefix
	}

	if override.Search.Provider != "" {
		base.Search.Provider = override.Search.Provider
	}
	if override.Search.Query != "" {
		base.Search.Query = override.Search.Query
	}
	if override.Search.Display > 0 {
		base.Search.Display = override.Search.Display
	}
	if override.Search.Sort != "" {
		base.Search.Sort = override.Search.Sort
	}
	if len(override.Search.ExcludeKeywords) > 0 {
		base.Search.ExcludeKeywords = override.Search.ExcludeKeywords
	}
	if override.Search.Naver.Endpoint != "" {
		base.Search.Naver.Endpoint = override.Search.Naver.Endpoint
	}
	if override.Search.Naver.ClientID != "" {
		base.Search.Naver.ClientID = override.Search.Naver.ClientID
	}
	if override.Search.Naver.ClientSecret != "" {
		base.Search.Naver.ClientSecret = override.Search.Naver.ClientSecret
	}
	if len(override.Search.Feeds) > 0 {
		base.Search.Feeds = override.Search.Feeds
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.PromptTemplate != "" {
		base.Gemini.PromptTemplate = override.Gemini.PromptTemplate
	}

	if override.Collector.TargetCount > 0 {
		base.Collector.TargetCount = override.Collector.TargetCount
	}
	if override.Collector.MaxErrors > 0 {
		base.Collector.MaxErrors = override.Collector.MaxErrors
	}
	if override.Collector.FetchWorkers > 0 {
		base.Collector.FetchWorkers = override.Collector.FetchWorkers
	}
	if override.Collector.ContentLimit > 0 {
		base.Collector.ContentLimit = override.Collector.ContentLimit
	}
	if override.Collector.Timezone != "" {
		base.Collector.Timezone = override.Collector.Timezone
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Table != "" {
		base.Database.Table = override.Database.Table
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Metrics.PushgatewayURL != "" {
		base.Metrics.PushgatewayURL = override.Metrics.PushgatewayURL
	}
	if override.Metrics.Job != "" {
		base.Metrics.Job = override.Metrics.Job
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Dataset: DatasetConfig{
			Root:          ".",
			Pattern:       "news_data*.csv",
			CanonicalFile: "news_data_latest.csv",
			Outputs:       []string{"news_data.csv", "news_data_latest.csv"},
			Exclude:       []string{"news_data_latest.csv"},
			PartialPrefix: "news_data_",
		},
		Search: SearchConfig{
			Provider: "naver",
			Query:    "부동산 전망",
			Display:  100,
			Sort:     "date",
			Naver:    NaverConfig{Endpoint: "https://openapi.naver.com/v1/search/news.json"},
		},
		Gemini: GeminiConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    defaultGeminiModel,
		},
		Collector: CollectorConfig{
			TargetCount:  20,
			MaxErrors:    5,
			FetchWorkers: 4,
			ContentLimit: 2500,
			Timezone:     defaultTimezone,
		},
		Scheduler: SchedulerConfig{Interval: 6 * time.Hour},
		Database:  DatabaseConfig{Table: "news_latest"},
		Metrics:   MetricsConfig{Job: "newssignal"},
	}
}
