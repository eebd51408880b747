// Package config loads MervLink settings from defaults, a config.yaml,
// a .env file and MERVLINK_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	appName        = "mervlink"
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "MERVLINK"

	KeyDBPath     = "db_path"
	KeyListenAddr = "listen_addr"
	KeyPublicURL  = "public_url"
	KeyLogLevel   = "log.level"
	KeyLogFormat  = "log.format"
)

// Config holds resolved settings.
type Config struct {
	DBPath     string    `mapstructure:"db_path"`
	ListenAddr string    `mapstructure:"listen_addr"`
	PublicURL  string    `mapstructure:"public_url"`
	Log        LogConfig `mapstructure:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// Dir returns the directory searched for config.yaml.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// DefaultDBPath returns the database location used when none is configured.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, appName, appName+".db")
}

// Load resolves the configuration. An empty configFile searches Dir() and
// tolerates a missing file; an explicit path must exist. envFile names a
// dotenv file to load first; a missing one is ignored.
func Load(configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault(KeyDBPath, DefaultDBPath())
	v.SetDefault(KeyListenAddr, ":8080")
	v.SetDefault(KeyPublicURL, "http://localhost:8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// NewLogger builds a slog logger writing to w per c.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", c.Level, err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log format %q: want text or json", c.Format)
	}
}
