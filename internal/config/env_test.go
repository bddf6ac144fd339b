package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"TALE_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TALE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvServiceConfig(t *testing.T) {
	t.Setenv("TALE_HTTP_ADDR", ":9090")
	t.Setenv("TALE_HTTP_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("TALE_STORIES_PATH", "content/stories.json")

	var cfg ServiceConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, ":9090")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.Content.StoriesPath != "content/stories.json" {
		t.Fatalf("StoriesPath = %q", cfg.Content.StoriesPath)
	}
	if cfg.Content.QuizzesPath != "tests.json" || cfg.Store.Driver != DriverSQLite {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseEnvBotConfigRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	os.Unsetenv("TELEGRAM_BOT_TOKEN")

	var cfg BotConfig
	if err := ParseEnv(&cfg); err == nil {
		t.Fatal("expected error for missing TELEGRAM_BOT_TOKEN")
	}
}

func TestStoreConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StoreConfig
		wantErr bool
	}{
		{name: "sqlite", cfg: StoreConfig{Driver: "sqlite"}},
		{name: "postgres with dsn", cfg: StoreConfig{Driver: "Postgres", PostgresDSN: "postgres://x"}},
		{name: "postgres without dsn", cfg: StoreConfig{Driver: "postgres"}, wantErr: true},
		{name: "unknown", cfg: StoreConfig{Driver: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("TALE_DOTENV_A=from-file\nTALE_DOTENV_B=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("TALE_DOTENV_A", "from-process")
	t.Setenv("TALE_DOTENV_B", "")
	os.Unsetenv("TALE_DOTENV_B")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("TALE_DOTENV_A"); got != "from-process" {
		t.Fatalf("TALE_DOTENV_A = %q, want %q", got, "from-process")
	}
	if got := os.Getenv("TALE_DOTENV_B"); got != "from-file" {
		t.Fatalf("TALE_DOTENV_B = %q, want %q", got, "from-file")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv missing file: %v", err)
	}
}

func TestParseEnvTracingConfig(t *testing.T) {
	var cfg ServiceConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Tracing.Active() || !cfg.Tracing.Enabled || cfg.Tracing.SampleRatio != 1 {
		t.Fatalf("unexpected tracing defaults: %+v", cfg.Tracing)
	}

	t.Setenv("TALE_OTEL_ENDPOINT", "http://collector:4318")
	t.Setenv("TALE_OTEL_SAMPLE_RATIO", "0.1")
	cfg = ServiceConfig{}
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if !cfg.Tracing.Active() || cfg.Tracing.SampleRatio != 0.1 {
		t.Fatalf("unexpected tracing config: %+v", cfg.Tracing)
	}

	t.Setenv("TALE_OTEL_ENABLED", "false")
	cfg = ServiceConfig{}
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Tracing.Active() {
		t.Fatalf("tracing must be off when disabled")
	}
}
