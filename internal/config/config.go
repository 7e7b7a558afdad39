package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AYUSUTRA_SERVER_PORT.
const EnvPrefix = "AYUSUTRA"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Directory  DirectoryConfig  `mapstructure:"directory"`
	Redis      RedisConfig      `mapstructure:"redis"`
	SOS        SOSConfig        `mapstructure:"sos"`
	Booking    BookingConfig    `mapstructure:"booking"`
	Mail       MailConfig       `mapstructure:"mail"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit" split_words:"true"`
	Security   SecurityConfig   `mapstructure:"security"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" split_words:"true"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" split_words:"true"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" split_words:"true"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type DirectoryConfig struct {
	// SeedFile is a YAML or JSON doctor list. Empty uses the built-in sample.
	SeedFile string `mapstructure:"seed_file" split_words:"true"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries" split_words:"true"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" split_words:"true"`
	PoolSize     int           `mapstructure:"pool_size" split_words:"true"`
	MinIdleConns int           `mapstructure:"min_idle_conns" split_words:"true"`
}

type SOSConfig struct {
	TriggerKey string        `mapstructure:"trigger_key" split_words:"true"`
	Window     time.Duration `mapstructure:"window"`
	SessionTTL time.Duration `mapstructure:"session_ttl" split_words:"true"`
}

type BookingConfig struct {
	// Store is "log" or "broker".
	Store    string `mapstructure:"store"`
	Timezone string `mapstructure:"timezone"`
}

type MailConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Host       string   `mapstructure:"host"`
	Port       int      `mapstructure:"port"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	From       string   `mapstructure:"from"`
	Recipients []string `mapstructure:"recipients"`
	UrgentOnly bool     `mapstructure:"urgent_only" split_words:"true"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" split_words:"true"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" split_words:"true"`
}

type MonitoringConfig struct {
	Namespace string `mapstructure:"namespace"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 64<<10)

	v.SetDefault("log.level", "info")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("sos.trigger_key", "v")
	v.SetDefault("sos.window", 2*time.Second)
	v.SetDefault("sos.session_ttl", 5*time.Minute)

	v.SetDefault("booking.store", "log")
	v.SetDefault("booking.timezone", "Local")

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.urgent_only", true)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("monitoring.namespace", "ayusutra")
}

// LoadConfig reads .env, then config.yml (or the file named by CONFIG_FILE),
// then AYUSUTRA_* environment overrides. A missing config file is not an
// error; defaults apply.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		if len(paths) == 0 {
			paths = []string{".", "./config", "/app", "/app/config"}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at start-up.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.SOS.Window <= 0 {
		problems = append(problems, "sos.window must be positive")
	}
	if len([]rune(c.SOS.TriggerKey)) != 1 {
		problems = append(problems, "sos.trigger_key must be a single character")
	}
	switch c.Booking.Store {
	case "log":
	case "broker":
		if !c.Redis.Enabled {
			problems = append(problems, "booking.store=broker requires redis.enabled")
		}
	default:
		problems = append(problems, fmt.Sprintf("booking.store %q must be log or broker", c.Booking.Store))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("booking.timezone: %v", err))
	}
	if c.Redis.Enabled && c.Redis.URL == "" {
		problems = append(problems, "redis.url is required when redis is enabled")
	}
	if c.Mail.Enabled {
		if c.Mail.Host == "" || c.Mail.From == "" {
			problems = append(problems, "mail.host and mail.from are required when mail is enabled")
		}
		if len(c.Mail.Recipients) == 0 {
			problems = append(problems, "mail.recipients must not be empty when mail is enabled")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves the booking timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Booking.Timezone == "" || c.Booking.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Booking.Timezone)
}
