package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/campusworks/searchkit/pkg/observe"
)

type Config struct {
	Server  ServerConfig          `mapstructure:"server"`
	Search  SearchConfig          `mapstructure:"search"`
	History HistoryConfig         `mapstructure:"history"`
	Logging observe.LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SearchConfig struct {
	PageSize     int           `mapstructure:"page_size"`
	MaxPageSize  int           `mapstructure:"max_page_size"`
	Debounce     time.Duration `mapstructure:"debounce"`
	SuggestLimit int           `mapstructure:"suggest_limit"`
}

type HistoryConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from the given file (optional), environment
// variables prefixed SEARCHKIT_, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("searchkit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/searchkit")
	}

	v.SetEnvPrefix("SEARCHKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("search.page_size", 20)
	v.SetDefault("search.max_page_size", 200)
	v.SetDefault("search.debounce", "300ms")
	v.SetDefault("search.suggest_limit", 10)

	v.SetDefault("history.dir", "./data")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Search.PageSize < 1 {
		return fmt.Errorf("search page_size must be at least 1")
	}
	if c.Search.MaxPageSize < c.Search.PageSize {
		return fmt.Errorf("search max_page_size must be at least page_size")
	}
	if c.Search.Debounce <= 0 {
		return fmt.Errorf("search debounce must be positive")
	}
	return nil
}

// Address returns the host:port the server binds to.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
