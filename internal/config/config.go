// Package config provides YAML/JSON configuration loading for the
// steganography tool.
//
// Configuration is an explicit value: Load builds it once at process start
// and main passes it into each component constructor. Nothing in this module
// reads configuration through package-level state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	// DefaultFormat is the output image format used when a destination path
	// has no recognized extension hint to offer ("png" by default).
	DefaultFormat string `mapstructure:"default_format"`

	// JPEGQuality applies when writing JPEG output (0-100).
	JPEGQuality int `mapstructure:"jpeg_quality"`

	// UseCompression enables the zstd payload compression stage for encode
	// operations that do not specify it explicitly.
	UseCompression bool `mapstructure:"use_compression"`

	// MaxWorkers bounds the batch engine's worker pool.
	MaxWorkers int `mapstructure:"max_workers"`

	// PasswordLength is the default length for generated passwords.
	PasswordLength int `mapstructure:"password_length"`

	// CacheImages enables the decoded-carrier cache in long-running front
	// ends (the HTTP server); one-shot CLI commands ignore it.
	CacheImages bool `mapstructure:"cache_images"`

	// OutputDirectory is where batch results land when an operation has no
	// explicit destination.
	OutputDirectory string `mapstructure:"output_directory"`

	// OverwriteExisting permits writing over existing output files.
	OverwriteExisting bool `mapstructure:"overwrite_existing"`

	// ListenAddr is the HTTP front end's bind address.
	ListenAddr string `mapstructure:"listen_addr"`

	// Log holds logging configuration.
	Log LogConfig `mapstructure:"log"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is "console" or "json".
	Format string `mapstructure:"format"`

	// File, when set, sends output to a rotated log file instead of stderr.
	File string `mapstructure:"file"`

	// MaxSizeMB, MaxBackups, and MaxAgeDays bound file rotation.
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
}

// Default returns the built-in configuration used when no file is found.
func Default() Config {
	return Config{
		DefaultFormat:   "png",
		JPEGQuality:     95,
		UseCompression:  false,
		MaxWorkers:      4,
		PasswordLength:  32,
		CacheImages:     true,
		OutputDirectory: "./output",
		ListenAddr:      ":8080",
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load reads configuration from path, or from the default search locations
// when path is empty (./steganography.{yaml,json}, then
// ~/.steganography/config.{yaml,json}). A missing file is not an error when
// no explicit path was given; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetDefault("default_format", cfg.DefaultFormat)
	v.SetDefault("jpeg_quality", cfg.JPEGQuality)
	v.SetDefault("use_compression", cfg.UseCompression)
	v.SetDefault("max_workers", cfg.MaxWorkers)
	v.SetDefault("password_length", cfg.PasswordLength)
	v.SetDefault("cache_images", cfg.CacheImages)
	v.SetDefault("output_directory", cfg.OutputDirectory)
	v.SetDefault("overwrite_existing", cfg.OverwriteExisting)
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to load configuration %s: %w", path, err)
		}
	} else {
		v.SetConfigName("steganography")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".steganography"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to load configuration: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks configuration ranges.
func (c Config) Validate() error {
	if c.JPEGQuality < 0 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 0 and 100, got %d", c.JPEGQuality)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1, got %d", c.MaxWorkers)
	}
	if c.PasswordLength < 8 {
		return fmt.Errorf("password_length must be at least 8, got %d", c.PasswordLength)
	}
	return nil
}
