package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr            string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER" env-required:"true"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD" env-required:"true"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME" env-required:"true"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"1m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

type Security struct {
	JWTKey string `yaml:"JWT_KEY" env:"JWT_KEY" env-required:"true"`
}

type CacheConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"5m"`
}

// SyncConfig tunes the cart/wishlist replication to the remote store.
type SyncConfig struct {
	Debounce        time.Duration `yaml:"debounce" env:"SYNC_DEBOUNCE" env-default:"500ms"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SYNC_WRITE_TIMEOUT" env-default:"5s"`
	SessionIdleTTL  time.Duration `yaml:"session_idle_ttl" env:"SYNC_SESSION_IDLE_TTL" env-default:"30m"`
	LocalStoreTTL   time.Duration `yaml:"local_store_ttl" env:"SYNC_LOCAL_STORE_TTL" env-default:"720h"`
	FeedChannel     string        `yaml:"feed_channel" env:"SYNC_FEED_CHANNEL" env-default:"shopease_changes"`
	MinReconnect    time.Duration `yaml:"min_reconnect" env:"SYNC_MIN_RECONNECT" env-default:"10s"`
	MaxReconnect    time.Duration `yaml:"max_reconnect" env:"SYNC_MAX_RECONNECT" env-default:"1m"`
	// BreakerFailures consecutive remote errors open the breaker for BreakerCooldown.
	BreakerFailures uint32        `yaml:"breaker_failures" env:"SYNC_BREAKER_FAILURES" env-default:"5"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" env:"SYNC_BREAKER_COOLDOWN" env-default:"30s"`
}

// RateConfig bounds cart, wishlist and order writes per client.
type RateConfig struct {
	MaxRequests int64         `yaml:"MAX_REQUESTS" env:"RATE_MAX_REQUESTS" env-default:"30"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"RATE_WINDOW_SIZE" env-default:"10s"`
}

type OtelConfig struct {
	Enabled          bool    `yaml:"ENABLED" env:"OTEL_ENABLED" env-default:"false"`
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"shopease"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT" env-default:"localhost:4318"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	Security     Security     `yaml:"security"`
	Cache        CacheConfig  `yaml:"cache"`
	Sync         SyncConfig   `yaml:"sync"`
	RateConfig   RateConfig   `yaml:"rateConfig"`
	Otel         OtelConfig   `yaml:"otel"`
}

// LoadConfigFromPath reads the YAML file at configPath and applies env overrides.
func LoadConfigFromPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can not read config file: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			configPath = "./config/local.yaml"
		}

	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg

}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s", r.Username, r.Password, r.Host, r.Port)
}
