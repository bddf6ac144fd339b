package config

import (
	"fmt"
	"strings"
)

// Store drivers accepted by StoreConfig.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ContentConfig locates the JSON content files and the audio directory.
type ContentConfig struct {
	StoriesPath   string `env:"TALE_STORIES_PATH" envDefault:"fairytales.json"`
	QuizzesPath   string `env:"TALE_QUIZZES_PATH" envDefault:"tests.json"`
	PhoneticsPath string `env:"TALE_PHONETICS_PATH" envDefault:"phonetics.json"`
	AudioDir      string `env:"TALE_AUDIO_DIR" envDefault:"audio"`
}

// StoreConfig selects and configures the progress store.
type StoreConfig struct {
	Driver      string `env:"TALE_STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"TALE_SQLITE_PATH" envDefault:"user_progress.db"`
	PostgresDSN string `env:"TALE_POSTGRES_DSN"`
}

// Validate checks that the selected driver has what it needs.
func (c StoreConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case DriverSQLite:
		return nil
	case DriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("TALE_POSTGRES_DSN is required for driver %q", DriverPostgres)
		}
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}
}

// TracingConfig switches OpenTelemetry export on. Tracing stays off unless
// an endpoint is set.
type TracingConfig struct {
	Endpoint    string  `env:"TALE_OTEL_ENDPOINT"`
	Enabled     bool    `env:"TALE_OTEL_ENABLED" envDefault:"true"`
	SampleRatio float64 `env:"TALE_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Active reports whether spans should be exported.
func (c TracingConfig) Active() bool {
	return c.Enabled && strings.TrimSpace(c.Endpoint) != ""
}

// BotConfig holds everything the Telegram bot process reads from the environment.
type BotConfig struct {
	Token   string `env:"TELEGRAM_BOT_TOKEN,required"`
	Debug   bool   `env:"TALE_BOT_DEBUG" envDefault:"false"`
	Content ContentConfig
	Store   StoreConfig
	Tracing TracingConfig
}

// ServiceConfig holds everything the HTTP API process reads from the environment.
type ServiceConfig struct {
	Addr           string   `env:"TALE_HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins []string `env:"TALE_HTTP_ALLOWED_ORIGINS" envSeparator:","`
	Content        ContentConfig
	Store          StoreConfig
	Tracing        TracingConfig
}

// CLIConfig holds the content locations for the terminal quiz player.
type CLIConfig struct {
	Content ContentConfig
}
