package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pitchbot/internal/models"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Pitching   PitchingConfig   `yaml:"pitching"`
	Notifier   NotifierConfig   `yaml:"notifier"`
	Bot        BotConfig        `yaml:"bot"`

	// Admins is the parsed admin set, in declaration order.
	Admins []int64 `yaml:"-"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	AdminIDs string `yaml:"admin_ids"`
	AdminID  string `yaml:"admin_id"`
	Debug    bool   `yaml:"debug"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	File   string `yaml:"file"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type PitchingConfig struct {
	PDFDir   string `yaml:"pdf_dir"`
	PageSize int    `yaml:"page_size"`
}

type NotifierConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

type BotConfig struct {
	RateLimitMessages  int `yaml:"rate_limit_messages"`
	RateLimitWindowSec int `yaml:"rate_limit_window_sec"`
}

// RateLimitWindow returns the window as a duration.
func (c BotConfig) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSec) * time.Second
}

// Load reads the YAML config at path, expanding ${VAR} references from the
// environment (a local .env is loaded first when present).
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.Admins = ParseAdminIDs(cfg.Telegram.AdminIDs, cfg.Telegram.AdminID)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// ParseAdminIDs parses a comma-separated admin list, falling back to the
// single legacy id when the list is empty. Malformed entries are skipped.
func ParseAdminIDs(list, legacy string) []int64 {
	raw := list
	if strings.TrimSpace(raw) == "" {
		raw = legacy
	}

	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// IsAdmin reports whether id belongs to the configured admin set.
func (c *Config) IsAdmin(id int64) bool {
	for _, a := range c.Admins {
		if a == id {
			return true
		}
	}
	return false
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "pitchbot"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Pitching.PDFDir == "" {
		c.Pitching.PDFDir = models.DefaultPDFDir
	}
	if c.Pitching.PageSize <= 0 {
		c.Pitching.PageSize = models.DefaultPageSize
	}
	if c.Notifier.IntervalSeconds <= 0 {
		c.Notifier.IntervalSeconds = models.DefaultPollIntervalSec
	}
	if c.Bot.RateLimitMessages <= 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindowSec <= 0 {
		c.Bot.RateLimitWindowSec = int(models.RateLimitWindow / time.Second)
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if len(c.Admins) == 0 {
		return fmt.Errorf("no admin ids configured (set ADMIN_IDS or ADMIN_ID)")
	}
	return nil
}
