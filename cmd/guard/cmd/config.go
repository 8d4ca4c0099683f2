package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the CLI configuration, read from guard.yaml and GUARD_* variables.
type Config struct {
	SharedSecret   string        `mapstructure:"shared_secret"`
	IdentitySecret string        `mapstructure:"identity_secret"`
	DeviceID       string        `mapstructure:"device_id"`
	AccountID      uint64        `mapstructure:"account_id"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Session        SessionConfig `mapstructure:"session"`
	Log            LogConfig     `mapstructure:"log"`
}

// SessionConfig carries the cookies of an already authenticated web session.
type SessionConfig struct {
	Cookies map[string]string `mapstructure:"cookies"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	if c.SharedSecret == "" {
		return errors.New("config: shared_secret is required")
	}
	if c.IdentitySecret == "" {
		return errors.New("config: identity_secret is required")
	}
	if c.AccountID == 0 {
		return errors.New("config: account_id is required")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	return nil
}

// LoadConfig reads configuration from path (or the default search paths
// when empty) and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("shared_secret", "")
	v.SetDefault("identity_secret", "")
	v.SetDefault("device_id", "")
	v.SetDefault("account_id", 0)
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("log.level", "warn")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("guard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/guard")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	v.SetEnvPrefix("GUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
