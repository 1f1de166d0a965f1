package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSQLiteDSN keeps the demo catalog on disk so the seed command and
// the server see the same data.
const DefaultSQLiteDSN = "file:circuitflow.db?_pragma=busy_timeout(5000)"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	SeedDir  string
}

type ServerConfig struct {
	Host            string
	Port            int
	CORSOrigin      string
	Version         string
	APIBaseURL      string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

type LogConfig struct {
	Level  string
	Format string
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads the optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", 3001)
	v.SetDefault("HOST", "")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("API_BASE_URL", "http://localhost:3001")
	v.SetDefault("SHUTDOWN_TIMEOUT", "5s")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("PG_HOST", "localhost")
	v.SetDefault("PG_PORT", 5432)
	v.SetDefault("PG_DB_NAME", "circuitflow")
	v.SetDefault("SEED_DIR", "./seeds")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	port, err := parsePort(v.GetString("PORT"))
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("HOST"),
			Port:            port,
			CORSOrigin:      v.GetString("CORS_ORIGIN"),
			Version:         v.GetString("APP_VERSION"),
			APIBaseURL:      strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
			ShutdownTimeout: timeout,
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			URL:    v.GetString("DATABASE_URL"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		SeedDir: v.GetString("SEED_DIR"),
	}

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.URL == "" {
			cfg.Database.URL = postgresURL(v)
		}
	case "sqlite":
		if cfg.Database.URL == "" {
			cfg.Database.URL = DefaultSQLiteDSN
		}
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want postgres or sqlite", cfg.Database.Driver)
	}

	return cfg, nil
}

func parsePort(s string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(s, "%d", &port); err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid PORT %q", s)
	}
	return port, nil
}

func postgresURL(v *viper.Viper) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(v.GetString("PG_USER"), v.GetString("PG_PASS")),
		Host:     fmt.Sprintf("%s:%d", v.GetString("PG_HOST"), v.GetInt("PG_PORT")),
		Path:     v.GetString("PG_DB_NAME"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// NewLogger builds the process logger and installs it as the slog default.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(strings.TrimSpace(cfg.Level)) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
