// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type RuntimeConfig struct {
	Dev         bool
	Environment string
}

type BotConfig struct {
	Token       string  `yaml:"token"`
	TokenProd   string  `yaml:"token_prod"`
	TokenDev    string  `yaml:"token_dev"`
	Name        string  `yaml:"name"` // brand used in group relay signatures
	Username    string  `yaml:"username"`
	Mode        string  `yaml:"mode"`    // polling | noop
	Workers     int     `yaml:"workers"` // polling workers
	AdminIDs    []int64 `yaml:"admin_ids"`
	AdminChatID int64   `yaml:"admin_chat_id"` // operational alerts

	SendRatePerSec float64 `yaml:"send_rate_per_sec"`
	SendBurst      int     `yaml:"send_burst"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port      int           `yaml:"port"`
	APIKey    string        `yaml:"api_key"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	Provider        string        `yaml:"provider"` // openai|metis|gemini|noop; empty picks the first configured key
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	MetisKey        string        `yaml:"metis_key"`
	MetisBaseURL    string        `yaml:"metis_base_url"`
	Model           string        `yaml:"model"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     float64       `yaml:"temperature"`
	Timeout         time.Duration `yaml:"timeout"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
}

type BroadcastConfig struct {
	BatchSize       int           `yaml:"batch_size"`
	MessageDelay    time.Duration `yaml:"message_delay"` // stagger per position inside a batch
	BatchDelay      time.Duration `yaml:"batch_delay"`
	SendTimeout     time.Duration `yaml:"send_timeout"`
	StoreTimeout    time.Duration `yaml:"store_timeout"`
	GenerateTimeout time.Duration `yaml:"generate_timeout"`
	SilentFallback  bool          `yaml:"silent_fallback"` // do not alert admins on static fallback
	RunLockTTL      time.Duration `yaml:"run_lock_ttl"`    // 0 disables the per theme/lang run lock
}

type PromoLanguage struct {
	Code      string  `yaml:"code"`
	UTCOffset float64 `yaml:"utc_offset"` // hours, fractional allowed (5.5)
}

type PromoSlot struct {
	Theme  string `yaml:"theme"`
	Hour   int    `yaml:"hour"`
	Minute int    `yaml:"minute"`
}

type PromoConfig struct {
	Disabled  bool              `yaml:"disabled"` // skip registering the daily jobs
	Languages []PromoLanguage   `yaml:"languages"`
	Slots     []PromoSlot       `yaml:"slots"`
	Banners   map[string]string `yaml:"banners"`
}

type FreeLinksConfig struct {
	Default int `yaml:"default"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Promo     PromoConfig     `yaml:"promo"`
	FreeLinks FreeLinksConfig `yaml:"free_links"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies defaults and validates.
// Process environment is consulted here only, never by business logic.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev, os.Getenv)
}

// Parse builds a Config from raw YAML. getenv supplies environment lookups.
func Parse(b []byte, dev bool, getenv func(string) string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	cfg.applyDefaults()

	cfg.Runtime.Dev = dev
	cfg.Runtime.Environment = DetectEnvironment(getenv)
	if dev {
		cfg.Runtime.Environment = EnvDevelopment
	}
	cfg.Bot.Token = cfg.Bot.ResolveToken(cfg.Runtime.Environment)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Name == "" {
		cfg.Bot.Name = "NomadlyBot"
	}
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.SendRatePerSec <= 0 {
		cfg.Bot.SendRatePerSec = 25
	}
	if cfg.Bot.SendBurst <= 0 {
		cfg.Bot.SendBurst = 5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8080
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 30 * time.Minute
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 500
	}
	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = 0.9
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30 * time.Second
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 4
	}
	if cfg.AI.MetisBaseURL == "" {
		cfg.AI.MetisBaseURL = "https://api.metisai.ir/openai/v1"
	}

	if cfg.Broadcast.BatchSize <= 0 {
		cfg.Broadcast.BatchSize = 25
	}
	if cfg.Broadcast.MessageDelay < 0 {
		cfg.Broadcast.MessageDelay = 0
	}
	if cfg.Broadcast.BatchDelay < 0 {
		cfg.Broadcast.BatchDelay = 0
	}
	if cfg.Broadcast.SendTimeout <= 0 {
		cfg.Broadcast.SendTimeout = 15 * time.Second
	}
	if cfg.Broadcast.StoreTimeout <= 0 {
		cfg.Broadcast.StoreTimeout = 5 * time.Second
	}
	if cfg.Broadcast.GenerateTimeout <= 0 {
		cfg.Broadcast.GenerateTimeout = cfg.AI.Timeout
	}

	if len(cfg.Promo.Languages) == 0 {
		cfg.Promo.Languages = []PromoLanguage{
			{Code: "en", UTCOffset: 0},
			{Code: "fr", UTCOffset: 1},
			{Code: "zh", UTCOffset: 8},
			{Code: "hi", UTCOffset: 5.5},
		}
	}
	if len(cfg.Promo.Slots) == 0 {
		cfg.Promo.Slots = []PromoSlot{
			{Theme: "domains", Hour: 10, Minute: 0},
			{Theme: "shortener", Hour: 16, Minute: 0},
			{Theme: "leads", Hour: 21, Minute: 0},
		}
	}
	if cfg.Promo.Banners == nil {
		cfg.Promo.Banners = map[string]string{}
	}

	if cfg.FreeLinks.Default <= 0 {
		cfg.FreeLinks.Default = 5
	}
}

// Validate performs minimal validation.
func (cfg *Config) Validate() error {
	if cfg.Bot.Token == "" && cfg.Bot.Mode != "noop" {
		return errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}

	seen := map[string]bool{}
	for _, l := range cfg.Promo.Languages {
		code := strings.ToLower(strings.TrimSpace(l.Code))
		if code == "" {
			return errors.New("promo.languages: empty language code")
		}
		if seen[code] {
			return fmt.Errorf("promo.languages: duplicate language %q", code)
		}
		seen[code] = true
		if l.UTCOffset < -12 || l.UTCOffset > 14 {
			return fmt.Errorf("promo.languages: offset %v out of range for %q", l.UTCOffset, code)
		}
	}
	for _, s := range cfg.Promo.Slots {
		switch s.Theme {
		case "domains", "shortener", "leads":
		default:
			return fmt.Errorf("promo.slots: unknown theme %q", s.Theme)
		}
		if s.Hour < 0 || s.Hour > 23 || s.Minute < 0 || s.Minute > 59 {
			return fmt.Errorf("promo.slots: invalid time %02d:%02d for %s", s.Hour, s.Minute, s.Theme)
		}
	}
	return nil
}

// DetectEnvironment resolves development or production from BOT_ENVIRONMENT,
// REPLIT_DEPLOYMENT and NODE_ENV in that order. The default is development.
func DetectEnvironment(getenv func(string) string) string {
	if v := strings.ToLower(strings.TrimSpace(getenv("BOT_ENVIRONMENT"))); v == EnvDevelopment || v == EnvProduction {
		return v
	}
	if v := getenv("REPLIT_DEPLOYMENT"); v == "1" || v == "true" {
		return EnvProduction
	}
	if getenv("NODE_ENV") == EnvProduction {
		return EnvProduction
	}
	return EnvDevelopment
}

// ResolveToken picks the per-environment token and falls back to bot.token.
func (b BotConfig) ResolveToken(environment string) string {
	switch environment {
	case EnvProduction:
		if b.TokenProd != "" {
			return b.TokenProd
		}
	case EnvDevelopment:
		if b.TokenDev != "" {
			return b.TokenDev
		}
	}
	return b.Token
}

// LanguageCodes returns the configured promo languages in order.
func (p PromoConfig) LanguageCodes() []string {
	out := make([]string, 0, len(p.Languages))
	for _, l := range p.Languages {
		out = append(out, strings.ToLower(strings.TrimSpace(l.Code)))
	}
	return out
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
