package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Project        ProjectConfig        `mapstructure:"project"         validate:"required"`
	Server         ServerConfig         `mapstructure:"server"          validate:"required"`
	Database       DatabaseConfig       `mapstructure:"database"        validate:"required"`
	Auth           AuthConfig           `mapstructure:"auth"            validate:"required"`
	Email          EmailConfig          `mapstructure:"email"`
	Cache          CacheConfig          `mapstructure:"cache"           validate:"required"`
	Tasks          TaskConfig           `mapstructure:"tasks"           validate:"required"`
	FirstSuperuser FirstSuperuserConfig `mapstructure:"first_superuser"`
}

// ProjectConfig describes the deployment as seen by clients and email recipients.
type ProjectConfig struct {
	Name        string   `mapstructure:"name"         validate:"required"`
	ServerHost  string   `mapstructure:"server_host"  validate:"required,url"`
	CORSOrigins []string `mapstructure:"cors_origins" validate:"dive,url"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig selects the SQL driver and how to reach it. When URL is
// empty for postgres, it is assembled from Server, User, Password and Name.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"            validate:"required,oneof=postgres sqlite"`
	URL             string        `mapstructure:"url"               validate:"required"`
	Server          string        `mapstructure:"server"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                  string `mapstructure:"jwt_secret"                    validate:"required,min=32"`
	AccessTokenLifetimeMinutes int    `mapstructure:"access_token_lifetime_minutes" validate:"required,gt=0"`
	ResetTokenLifetimeHours    int    `mapstructure:"reset_token_lifetime_hours"    validate:"required,gt=0"`
	BCryptCost                 int    `mapstructure:"bcrypt_cost"                   validate:"gte=4,lte=31"`
	// OpenRegistration allows anonymous sign-up through /users/open.
	OpenRegistration bool `mapstructure:"open_registration"`
}

// EmailConfig holds SMTP settings. Email is disabled unless host, port and
// from address are all set.
type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"     validate:"gte=0,lt=65536"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	TLSMode      string `mapstructure:"tls_mode"      validate:"oneof=auto ssl none"`
	FromEmail    string `mapstructure:"from_email"    validate:"omitempty,email"`
	FromName     string `mapstructure:"from_name"`
	TestUser     string `mapstructure:"test_user"     validate:"omitempty,email"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != "" && e.SMTPPort > 0 && e.FromEmail != ""
}

// CacheConfig selects the cache backing single-use tokens.
type CacheConfig struct {
	Driver        string        `mapstructure:"driver"         validate:"required,oneof=memory redis"`
	RedisAddr     string        `mapstructure:"redis_addr"     validate:"required_if=Driver redis"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"       validate:"gte=0"`
	DefaultTTL    time.Duration `mapstructure:"default_ttl"    validate:"gt=0"`
}

// TaskConfig selects the background task broker.
type TaskConfig struct {
	Broker       string   `mapstructure:"broker"        validate:"required,oneof=memory kafka"`
	KafkaBrokers []string `mapstructure:"kafka_brokers" validate:"required_if=Broker kafka"`
	GroupID      string   `mapstructure:"group_id"      validate:"required"`
	DefaultQueue string   `mapstructure:"default_queue" validate:"required"`
	WorkerCount  int      `mapstructure:"worker_count"  validate:"gt=0"`
	QueueSize    int      `mapstructure:"queue_size"    validate:"gt=0"`
}

// FirstSuperuserConfig is the account created by initdata.
type FirstSuperuserConfig struct {
	Email    string `mapstructure:"email"    validate:"omitempty,email"`
	Password string `mapstructure:"password"`
}
