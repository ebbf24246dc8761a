// Package config loads service settings from an optional YAML file, a .env
// file and SCHEDULER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "SCHEDULER"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	DSN          string `mapstructure:"dsn" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	ClockSkew time.Duration `mapstructure:"clock_skew" validate:"gte=0"`
}

type SweepConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Schedule   string        `mapstructure:"schedule" validate:"required"`
	DueWindow  time.Duration `mapstructure:"due_window" validate:"gt=0"`
	JobTimeout time.Duration `mapstructure:"job_timeout" validate:"gt=0"`
}

type MailConfig struct {
	Driver string         `mapstructure:"driver" validate:"required,oneof=log http amqp"`
	HTTP   HTTPMailConfig `mapstructure:"http"`
	AMQP   AMQPMailConfig `mapstructure:"amqp"`
}

type HTTPMailConfig struct {
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AMQPMailConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "scheduler.db")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "scheduler-api")
	v.SetDefault("auth.audience", "scheduler-clients")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.clock_skew", time.Minute)

	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.schedule", "@every 1m")
	v.SetDefault("sweep.due_window", 48*time.Hour)
	v.SetDefault("sweep.job_timeout", 30*time.Second)

	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.http.url", "")
	v.SetDefault("mail.http.timeout", 10*time.Second)
	v.SetDefault("mail.amqp.url", "")
	v.SetDefault("mail.amqp.exchange", "scheduler.mail")
	v.SetDefault("mail.amqp.routing_key", "mail.outbound")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment are used. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Mail.Driver == "http" && c.Mail.HTTP.URL == "" {
		return fmt.Errorf("invalid config: mail.http.url is required for the http mail driver")
	}
	if c.Mail.Driver == "amqp" && (c.Mail.AMQP.URL == "" || c.Mail.AMQP.Exchange == "") {
		return fmt.Errorf("invalid config: mail.amqp.url and mail.amqp.exchange are required for the amqp mail driver")
	}
	return nil
}
