package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port" default:"8080"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds" default:"30"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"5432"`
	User     string `mapstructure:"user" default:"postgres"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" default:"injury_reports"`
	SSLMode  string `mapstructure:"sslmode" default:"disable"`
}

// AuthConfig describes the external identity provider. The provider hosts
// login/logout; this service only validates the session tokens it issues.
type AuthConfig struct {
	ProviderBaseURL string `mapstructure:"provider_base_url" split_words:"true"`
	SessionSecret   string `mapstructure:"session_secret" split_words:"true"`
	ReturnURL       string `mapstructure:"return_url" split_words:"true" default:"/"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" default:"50"`
	Burst int     `mapstructure:"burst" default:"100"`
}

// LoadConfig reads config.yaml from the working directory or ./config, with
// environment variables taking precedence. When no file exists at all, the
// environment alone (INJURYAPI_* variables) is used.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return loadFromEnv()
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func loadFromEnv() (*Config, error) {
	var config Config
	if err := envconfig.Process("injuryapi", &config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	return &config, nil
}
