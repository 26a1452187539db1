// Package config loads larker's YAML configuration: platform credential
// tokens, archive storage, and collection defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile  = "config.yaml"
	DefaultStoragePath = ".larker/larker.db"
	DefaultSubdir      = "twitter-files"
	DefaultPrefix      = "tweets"
	DefaultLimit       = 100
	DefaultLang        = "en"
	DefaultLogLevel    = "info"
)

type Config struct {
	Twitter  TwitterConfig  `yaml:"twitter"`
	Storage  StorageConfig  `yaml:"storage"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Logger   LoggerConfig   `yaml:"logger"`
}

// TwitterConfig holds the four credential tokens the platform issues.
// Each token may be given literally or via the name of an environment
// variable; the environment wins when both are set.
type TwitterConfig struct {
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	AccessToken    string `yaml:"access_token"`
	AccessSecret   string `yaml:"access_secret"`

	ConsumerKeyEnv    string `yaml:"consumer_key_env"`
	ConsumerSecretEnv string `yaml:"consumer_secret_env"`
	AccessTokenEnv    string `yaml:"access_token_env"`
	AccessSecretEnv   string `yaml:"access_secret_env"`
}

type StorageConfig struct {
	// Path is the SQLite archive location.
	Path string `yaml:"path"`

	// Subdir and Prefix shape the NDJSON output file names.
	Subdir string `yaml:"subdir"`
	Prefix string `yaml:"prefix"`
}

type DefaultsConfig struct {
	Limit int    `yaml:"limit"`
	Lang  string `yaml:"lang"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

// Load reads config.yaml from dir, applies defaults, resolves env vars,
// and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Storage.Subdir == "" {
		cfg.Storage.Subdir = DefaultSubdir
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = DefaultPrefix
	}
	if cfg.Defaults.Limit == 0 {
		cfg.Defaults.Limit = DefaultLimit
	}
	if cfg.Defaults.Lang == "" {
		cfg.Defaults.Lang = DefaultLang
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = DefaultLogLevel
	}
}

func resolveEnv(cfg *Config) {
	resolve := func(envName string, target *string) {
		if envName == "" {
			return
		}
		if value := os.Getenv(envName); value != "" {
			*target = value
		}
	}
	resolve(cfg.Twitter.ConsumerKeyEnv, &cfg.Twitter.ConsumerKey)
	resolve(cfg.Twitter.ConsumerSecretEnv, &cfg.Twitter.ConsumerSecret)
	resolve(cfg.Twitter.AccessTokenEnv, &cfg.Twitter.AccessToken)
	resolve(cfg.Twitter.AccessSecretEnv, &cfg.Twitter.AccessSecret)
}

func validate(cfg *Config) error {
	if cfg.Defaults.Limit < 0 {
		return fmt.Errorf("defaults.limit: must be positive, got %d", cfg.Defaults.Limit)
	}
	return nil
}
