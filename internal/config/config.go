package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	ServerAddr     string   `env:"CHATREG_ADDR" env-default:"localhost:8000"`
	BroadcastAddr  string   `env:"CHATREG_BROADCAST_ADDR" env-default:"localhost:12345"`
	AllowedOrigins []string `env:"CHATREG_ALLOWED_ORIGINS" env-separator:","`
}

// Load reads configuration from the environment. Unset variables fall
// back to their defaults; flag values in main override the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func NewConfig(serverAddr, broadcastAddr string, allowedOrigins []string) (*Config, error) {
	cfg := &Config{
		ServerAddr:     serverAddr,
		BroadcastAddr:  broadcastAddr,
		AllowedOrigins: allowedOrigins,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.BroadcastAddr == "" {
		return fmt.Errorf("broadcast address cannot be empty")
	}
	return nil
}
