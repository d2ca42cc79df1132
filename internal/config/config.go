package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds process-level configuration loaded from environment variables.
// Provider credentials are not here: they live in the settings table and are
// resolved by the scheduler once per sweep.
type Config struct {
	DBPath          string        `envconfig:"DB_PATH" default:"./data/weathernews.db"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	SweepSpec       string        `envconfig:"SWEEP_SPEC" default:"* * * * *"` // cron spec for the sweep trigger
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"15s"`

	// Override points for tests and self-hosted gateways; empty means the
	// provider's production endpoint.
	WeatherBaseURL   string `envconfig:"WEATHER_BASE_URL" default:""`
	TelegramEndpoint string `envconfig:"TELEGRAM_ENDPOINT" default:""`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
