package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name, so
// database.url is read from SCAFFOLD_DATABASE_URL.
const EnvPrefix = "SCAFFOLD"

// Options controls where Load looks for configuration.
type Options struct {
	// EnvFile is loaded into the process environment when it exists.
	// Variables already set are not overridden.
	EnvFile string
	// ConfigFile is an explicit config file path. When empty, config.yaml is
	// searched for in the working directory.
	ConfigFile string
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadWithOptions(Options{EnvFile: ".env"})
}

// LoadWithOptions is Load with explicit file locations.
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err == nil {
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
			}
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.ConfigFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.URL == "" && cfg.Database.Driver == "postgres" {
		cfg.Database.URL = cfg.Database.assembleURL()
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (d DatabaseConfig) assembleURL() string {
	if d.Server == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   d.Server,
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("project.name", "scaffold-api")
	v.SetDefault("project.server_host", "http://localhost:8080")
	v.SetDefault("project.cors_origins", []string{})

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.server", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_lifetime_minutes", 60*24*8)
	v.SetDefault("auth.reset_token_lifetime_hours", 48)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.open_registration", false)

	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.tls_mode", "auto")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.from_name", "")
	v.SetDefault("email.test_user", "test@example.com")

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.default_ttl", time.Hour)

	v.SetDefault("tasks.broker", "memory")
	v.SetDefault("tasks.kafka_brokers", []string{})
	v.SetDefault("tasks.group_id", "scaffold-worker")
	v.SetDefault("tasks.default_queue", "main-queue")
	v.SetDefault("tasks.worker_count", 2)
	v.SetDefault("tasks.queue_size", 100)

	v.SetDefault("first_superuser.email", "")
	v.SetDefault("first_superuser.password", "")
}
