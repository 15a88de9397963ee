package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "BUILDTRACK"

type DBConfig struct {
	Driver string
	DSN    string
}

type NotifyConfig struct {
	Delay   time.Duration
	Workers int
}

type Config struct {
	Environment string
	LogLevel    string
	DB          DBConfig
	Notify      NotifyConfig
	AuditPath   string
}

// Load reads configuration from BUILDTRACK_* environment variables and an
// optional buildtrack.yaml in the working directory or ~/.buildtrack.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("buildtrack")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir := dataDir(); dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		Environment: v.GetString("env"),
		LogLevel:    v.GetString("log_level"),
		DB: DBConfig{
			Driver: v.GetString("db_driver"),
			DSN:    v.GetString("db_dsn"),
		},
		Notify: NotifyConfig{
			Delay:   v.GetDuration("notify_delay"),
			Workers: v.GetInt("notify_workers"),
		},
		AuditPath: v.GetString("audit_path"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	dir := dataDir()
	v.SetDefault("env", "production")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", filepath.Join(dir, "buildtrack.db"))
	v.SetDefault("notify_delay", "400ms")
	v.SetDefault("notify_workers", 4)
	v.SetDefault("audit_path", filepath.Join(dir, "audit.log"))
}

func validate(cfg *Config) error {
	switch cfg.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%s_DB_DRIVER must be sqlite or postgres, got %q", envPrefix, cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return fmt.Errorf("%s_DB_DSN is required", envPrefix)
	}
	if cfg.Notify.Delay < 0 {
		return fmt.Errorf("%s_NOTIFY_DELAY must not be negative", envPrefix)
	}
	if cfg.Notify.Workers < 1 {
		return fmt.Errorf("%s_NOTIFY_WORKERS must be >= 1, got %d", envPrefix, cfg.Notify.Workers)
	}
	return nil
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".buildtrack"
	}
	return filepath.Join(home, ".buildtrack")
}
