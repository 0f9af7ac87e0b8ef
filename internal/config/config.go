// Package config loads the application settings from the environment and an optional YAML file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the application.
type Config struct {
	Env            string          `yaml:"env"`             // Env is the current environment: local, development, production.
	HTTPPort       int             `yaml:"http_port"`       // HTTPPort serves the booking API.
	MonitoringPort int             `yaml:"monitoring_port"` // MonitoringPort serves /healthz and /metrics.
	GRPCPort       int             `yaml:"grpc_port"`       // GRPCPort serves the gRPC health service.
	Database       PostgresConfig  `yaml:"postgres"`        // Database holds the postgres database configuration
	Redis          RedisConfig     `yaml:"redis"`           // Redis holds the distributed lock backend configuration
	Telegram       TelegramConfig  `yaml:"telegram"`        // Telegram holds the optional bot configuration
	RequestTimeout time.Duration   `yaml:"request_timeout"` // RequestTimeout bounds each API request and bot command.
	RateLimit      RateLimitConfig `yaml:"rate_limit"`      // RateLimit configures the API token bucket
	CORSOrigins    []string        `yaml:"cors_origins"`    // CORSOrigins lists the origins allowed by the API.
	Tracing        TracingConfig   `yaml:"tracing"`         // Tracing selects the OTLP collector
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Name     string `yaml:"db_name"`  // Name is the name of the database.
	Migrate  bool   `yaml:"migrate"`  // Migrate applies the schema on startup.
}

// RedisConfig enables the Redis lock when Addr is set; otherwise locks are in-process.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// TelegramConfig enables the bot when Token is set.
type TelegramConfig struct {
	Token         string        `yaml:"token"`   // Token is an unique telegram bot token
	PollerTimeout time.Duration `yaml:"timeout"` // PollerTimeout is the long polling timeout
}

// TracingConfig enables span export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

var envBindings = map[string]string{
	"env":                  "CHRONOS_ENV",
	"http_port":            "CHRONOS_HTTP_PORT",
	"monitoring_port":      "CHRONOS_MONITORING_PORT",
	"grpc_port":            "CHRONOS_GRPC_PORT",
	"postgres.host":        "DB_HOST",
	"postgres.port":        "DB_PORT",
	"postgres.user":        "DB_USERNAME",
	"postgres.password":    "DB_PASSWORD",
	"postgres.db_name":     "DB_NAME",
	"postgres.migrate":     "CHRONOS_MIGRATE",
	"redis.addr":           "REDIS_ADDR",
	"redis.password":       "REDIS_PASSWORD",
	"redis.lock_ttl":       "CHRONOS_LOCK_TTL",
	"telegram.token":       "CHRONOS_TELEGRAM_TOKEN",
	"telegram.timeout":     "CHRONOS_TELEGRAM_TIMEOUT",
	"request_timeout":      "CHRONOS_REQUEST_TIMEOUT",
	"rate_limit.rps":       "CHRONOS_RATE_LIMIT_RPS",
	"rate_limit.burst":     "CHRONOS_RATE_LIMIT_BURST",
	"cors_origins":         "CHRONOS_CORS_ORIGINS",
	"tracing.endpoint":     "OTEL_EXPORTER_OTLP_ENDPOINT",
	"tracing.sample_ratio": "OTEL_SAMPLING_RATIO",
}

// MustLoad reads .env, then the YAML file named by CONFIG_PATH if set, then the environment.
// Environment variables override the file. It panics on malformed values.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			panic("config file does not exist: " + configPath)
		}

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			panic("config error: " + err.Error())
		}
	}

	return &Config{
		Env:            v.GetString("env"),
		HTTPPort:       mustPort(v, "http_port"),
		MonitoringPort: mustPort(v, "monitoring_port"),
		GRPCPort:       mustPort(v, "grpc_port"),
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
			Migrate:  v.GetBool("postgres.migrate"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			LockTTL:  mustDuration(v, "redis.lock_ttl"),
		},
		Telegram: TelegramConfig{
			Token:         v.GetString("telegram.token"),
			PollerTimeout: mustDuration(v, "telegram.timeout"),
		},
		RequestTimeout: mustDuration(v, "request_timeout"),
		RateLimit: RateLimitConfig{
			RPS:   mustFloat(v, "rate_limit.rps"),
			Burst: v.GetInt("rate_limit.burst"),
		},
		CORSOrigins: splitList(v.GetStringSlice("cors_origins")),
		Tracing: TracingConfig{
			Endpoint:    v.GetString("tracing.endpoint"),
			SampleRatio: mustRatio(v, "tracing.sample_ratio"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("http_port", "8080")
	v.SetDefault("monitoring_port", "9090")
	v.SetDefault("grpc_port", "9091")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.migrate", true)
	v.SetDefault("redis.lock_ttl", "10s")
	v.SetDefault("telegram.timeout", "10s")
	v.SetDefault("request_timeout", "5s")
	v.SetDefault("rate_limit.rps", "50")
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("tracing.sample_ratio", "1")
}

func mustDuration(v *viper.Viper, key string) time.Duration {
	value, err := time.ParseDuration(v.GetString(key))
	if err != nil || value <= 0 {
		panic("failed to parse interval from configuration")
	}

	return value
}

func mustPort(v *viper.Viper, key string) int {
	const maxPort = 65535

	port, err := strconv.Atoi(v.GetString(key))
	if err != nil || port <= 0 || port > maxPort {
		panic("failed to parse port from configuration")
	}

	return port
}

func mustFloat(v *viper.Viper, key string) float64 {
	value, err := strconv.ParseFloat(v.GetString(key), 64)
	if err != nil || value <= 0 {
		panic("failed to parse rate limit from configuration")
	}

	return value
}

func mustRatio(v *viper.Viper, key string) float64 {
	value, err := strconv.ParseFloat(v.GetString(key), 64)
	if err != nil || value < 0 || value > 1 {
		panic("failed to parse sampling ratio from configuration")
	}

	return value
}

// splitList accepts both YAML lists and comma separated strings.
func splitList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
	}

	return result
}
