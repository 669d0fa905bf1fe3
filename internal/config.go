package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"http_server"`
	Gateway  GatewayConfig  `mapstructure:"payments_gateway"`
	Payments PaymentsConfig `mapstructure:"payments"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

// GatewayConfig points at the external payments backend everything in this
// service talks to.
type GatewayConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// PaymentsConfig carries the business limits and the confirmation poll
// budget for payment sessions. Providers maps a payment method name to the
// phone prefixes it accepts; unset methods fall back to built-in defaults.
type PaymentsConfig struct {
	MinTopUpAmount  int64               `mapstructure:"min_topup_amount"`
	MaxAmount       int64               `mapstructure:"max_amount"`
	PollInterval    time.Duration       `mapstructure:"poll_interval"`
	PollMaxAttempts int                 `mapstructure:"poll_max_attempts"`
	Providers       map[string][]string `mapstructure:"providers"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds a Config from environment variables only, for
// container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_SERVER_PORT", 8080),
			BaseURL:           getEnv("HTTP_SERVER_BASE_URL", ""),
			AllowedOrigins:    getEnv("HTTP_SERVER_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Gateway: GatewayConfig{
			BaseURL:        getEnv("PAYMENTS_GATEWAY_BASE_URL", ""),
			APIKey:         getEnv("PAYMENTS_GATEWAY_API_KEY", ""),
			RequestTimeout: getEnvAsDuration("PAYMENTS_GATEWAY_REQUEST_TIMEOUT", 30*time.Second),
		},
		Payments: PaymentsConfig{
			MinTopUpAmount:  int64(getEnvAsInt("PAYMENTS_MIN_TOPUP_AMOUNT", 1000)),
			MaxAmount:       int64(getEnvAsInt("PAYMENTS_MAX_AMOUNT", 5000000)),
			PollInterval:    getEnvAsDuration("PAYMENTS_POLL_INTERVAL", 3*time.Second),
			PollMaxAttempts: getEnvAsInt("PAYMENTS_POLL_MAX_ATTEMPTS", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOGGING_LEVEL", "info"),
			Format: getEnv("LOGGING_FORMAT", "json"),
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Gateway.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("gateway config: %v", err))
	}

	if err := c.Payments.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("payments config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *GatewayConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	return nil
}

func (c *PaymentsConfig) Validate() error {
	if c.MinTopUpAmount < 0 {
		return errors.New("min_topup_amount cannot be negative")
	}
	if c.MaxAmount > 0 && c.MaxAmount < c.MinTopUpAmount {
		return errors.New("max_amount cannot be below min_topup_amount")
	}
	if c.PollInterval < 0 {
		return errors.New("poll_interval cannot be negative")
	}
	if c.PollMaxAttempts < 0 {
		return errors.New("poll_max_attempts cannot be negative")
	}
	for method, prefixes := range c.Providers {
		if len(prefixes) == 0 {
			return fmt.Errorf("provider %s has an empty prefix set", method)
		}
		for _, prefix := range prefixes {
			if _, err := strconv.Atoi(prefix); err != nil {
				return fmt.Errorf("provider %s has non-numeric prefix %q", method, prefix)
			}
		}
	}
	return nil
}
