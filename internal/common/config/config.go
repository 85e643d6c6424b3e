package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

type Config struct {
	Debug     bool   `env:"DEBUG" envDefault:"false"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	Server struct {
		Port        int    `env:"PORT" envDefault:"8080"`
		Origin      string `env:"ORIGIN" envDefault:"http://localhost:3000"`
		PublicURL   string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
		MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"10"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Storage struct {
		// redis or memory
		Backend  string `env:"STORE_BACKEND" envDefault:"redis"`
		MediaDir string `env:"MEDIA_DIR" envDefault:"./data/media"`
	}

	Telegram struct {
		BotToken     string        `env:"BOT_TOKEN,required,notEmpty"`
		InitDataTTL  time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
		APIURL       string        `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
		NotifyOwners bool          `env:"NOTIFY_OWNERS" envDefault:"false"` // message owners on donations
	}

	Cache struct {
		CampaignListTTL time.Duration `env:"CAMPAIGN_LIST_TTL" envDefault:"30s"`
	}

	Events struct {
		Stream   string `env:"EVENTS_STREAM" envDefault:"crowdfund:events"`
		Group    string `env:"EVENTS_GROUP" envDefault:"crowdfund_backend_consumers"`
		Consumer string `env:"EVENTS_CONSUMER" envDefault:""`
	}
}

// Load reads the optional .env file and parses the environment.
func Load() (*Config, error) {
	// .env is optional, production sets variables directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.Storage.Backend {
	case StoreBackendRedis, StoreBackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Storage.Backend)
	}

	switch cfg.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return nil, fmt.Errorf("unknown LOG_FORMAT %q", cfg.LogFormat)
	}

	if cfg.Server.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}

	return cfg, nil
}

// RedisAddr returns host:port of the configured Redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// MaxUploadBytes returns the media upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
