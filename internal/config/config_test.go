package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pitchbot/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
telegram:
  bot_token: "test_token"
  admin_ids: "101, 202"
database:
  path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telegram.BotToken != "test_token" {
		t.Errorf("expected bot_token test_token, got %s", cfg.Telegram.BotToken)
	}
	if !reflect.DeepEqual(cfg.Admins, []int64{101, 202}) {
		t.Errorf("expected admins [101 202], got %v", cfg.Admins)
	}
	if !cfg.IsAdmin(202) || cfg.IsAdmin(303) {
		t.Errorf("IsAdmin gave wrong answers for admins %v", cfg.Admins)
	}
}

func TestParseAdminIDs(t *testing.T) {
	tests := []struct {
		name   string
		list   string
		legacy string
		want   []int64
	}{
		{"list wins", "1,2,3", "9", []int64{1, 2, 3}},
		{"fallback to legacy", "", "42", []int64{42}},
		{"whitespace and empties", " 1 , ,2 ", "", []int64{1, 2}},
		{"malformed entries skipped", "1,abc,3", "", []int64{1, 3}},
		{"nothing configured", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAdminIDs(tt.list, tt.legacy)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAdminIDs(%q, %q) = %v, want %v", tt.list, tt.legacy, got, tt.want)
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Admins:   []int64{1},
			},
			wantErr: false,
		},
		{
			name: "missing token",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Admins:   []int64{1},
			},
			wantErr: true,
		},
		{
			name: "no admins",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Pitching.PDFDir != models.DefaultPDFDir {
		t.Errorf("expected default pdf dir %s, got %s", models.DefaultPDFDir, cfg.Pitching.PDFDir)
	}
	if cfg.Pitching.PageSize != models.DefaultPageSize {
		t.Errorf("expected default page size %d, got %d", models.DefaultPageSize, cfg.Pitching.PageSize)
	}
	if cfg.Notifier.IntervalSeconds != models.DefaultPollIntervalSec {
		t.Errorf("expected default interval %d, got %d", models.DefaultPollIntervalSec, cfg.Notifier.IntervalSeconds)
	}
	if cfg.Bot.RateLimitMessages != models.RateLimitMessages {
		t.Errorf("expected default rate limit messages %d, got %d", models.RateLimitMessages, cfg.Bot.RateLimitMessages)
	}
}
