// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/torview/torview/internal/auth"
	"github.com/torview/torview/internal/domain"
)

const envPrefix = "TORVIEW__"

// AppConfig loads and watches the TOML configuration file.
type AppConfig struct {
	Config *domain.Config
	viper  *viper.Viper
}

// New loads the configuration from configPath. A missing file is created
// with defaults first, so a fresh install works without manual setup.
// Subsequent edits to the file are picked up live for the log level.
func New(configPath string) (*AppConfig, error) {
	c := &AppConfig{
		viper:  viper.New(),
		Config: &domain.Config{},
	}

	c.defaults()

	if err := c.load(configPath); err != nil {
		return nil, err
	}

	c.watch()
	return c, nil
}

func (c *AppConfig) defaults() {
	c.viper.SetDefault("host", "localhost")
	c.viper.SetDefault("port", 7476)
	c.viper.SetDefault("baseUrl", "")
	c.viper.SetDefault("logLevel", "INFO")
	c.viper.SetDefault("logPath", "")
	c.viper.SetDefault("dataDir", "")
	c.viper.SetDefault("transmission.endpoint", "http://localhost:9091/transmission/rpc")
	c.viper.SetDefault("httpTimeouts.readTimeout", 15)
	c.viper.SetDefault("httpTimeouts.writeTimeout", 30)
	c.viper.SetDefault("httpTimeouts.idleTimeout", 120)
}

func (c *AppConfig) load(configPath string) error {
	c.viper.SetConfigType("toml")

	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	if filepath.Ext(configPath) != ".toml" {
		configPath = filepath.Join(configPath, "config.toml")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
		log.Info().Str("path", configPath).Msg("Created default config file")
	}

	c.viper.SetConfigFile(configPath)
	if err := c.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	c.applyEnvOverrides()

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if c.Config.DataDir == "" {
		c.Config.DataDir = filepath.Dir(configPath)
	}
	return nil
}

// applyEnvOverrides maps TORVIEW__SOME_KEY environment variables onto
// config keys, e.g. TORVIEW__DATA_DIR or TORVIEW__TRANSMISSION_ENDPOINT.
func (c *AppConfig) applyEnvOverrides() {
	overrides := map[string]string{
		"HOST":                  "host",
		"PORT":                  "port",
		"BASE_URL":              "baseUrl",
		"SESSION_SECRET":        "sessionSecret",
		"LOG_LEVEL":             "logLevel",
		"LOG_PATH":              "logPath",
		"DATA_DIR":              "dataDir",
		"TRANSMISSION_ENDPOINT": "transmission.endpoint",
	}
	for env, key := range overrides {
		if value := os.Getenv(envPrefix + env); value != "" {
			c.viper.Set(key, value)
		}
	}
}

// watch reloads the config file on change. Only the log level is applied
// live; everything else requires a restart.
func (c *AppConfig) watch() {
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		if err := c.viper.Unmarshal(c.Config); err != nil {
			log.Error().Err(err).Msg("Failed to reload config")
			return
		}
		SetLogLevel(c.Config.LogLevel)
		log.Debug().Str("file", e.Name).Msg("Config reloaded")
	})
	c.viper.WatchConfig()
}

// DatabasePath returns the SQLite database location inside the data dir.
func (c *AppConfig) DatabasePath() string {
	return filepath.Join(c.Config.DataDir, "torview.db")
}

// ApplyLogConfig applies the configured log level and destination to the
// global logger. Without a log path, output goes to a console writer on
// stderr.
func (c *AppConfig) ApplyLogConfig() {
	SetLogLevel(c.Config.LogLevel)

	if c.Config.LogPath == "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.Config.LogPath), 0755); err != nil {
		log.Error().Err(err).Str("path", c.Config.LogPath).Msg("Failed to create log directory")
		return
	}
	f, err := os.OpenFile(c.Config.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.Error().Err(err).Str("path", c.Config.LogPath).Msg("Failed to open log file")
		return
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
}

// SetLogLevel applies the configured level to the global logger.
func SetLogLevel(level string) {
	switch strings.ToUpper(level) {
	case "TRACE":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "DEBUG":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "INFO":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "WARN":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "ERROR":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// DefaultConfigPath returns the OS-specific config file location.
func DefaultConfigPath() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "torview", "config.toml")
	}
	return "config.toml"
}

// WriteDefaultConfig writes a commented default config file, generating a
// fresh session secret. An existing file is left untouched.
func WriteDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	secret, err := auth.GenerateSecureToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate session secret: %w", err)
	}

	content := fmt.Sprintf(`# config.toml

# Hostname / IP to listen on
#
host = "localhost"

# Port to listen on
#
port = 7476

# Base URL for serving behind a reverse proxy subfolder, e.g. "/torview/"
#
#baseUrl = "/torview/"

# Session secret, used to sign login cookies
#
sessionSecret = "%s"

# Log level: TRACE, DEBUG, INFO, WARN, ERROR
#
logLevel = "INFO"

# Log file path, logs to stderr when empty
#
#logPath = "log/torview.log"

# Data directory for the database, defaults to the config directory
#
#dataDir = ""

[transmission]
# Transmission RPC endpoint, credentials included when required
#
endpoint = "http://localhost:9091/transmission/rpc"

[httpTimeouts]
readTimeout = 15
writeTimeout = 30
idleTimeout = 120
`, secret)

	return os.WriteFile(configPath, []byte(content), 0644)
}
