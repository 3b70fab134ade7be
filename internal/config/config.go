// Package config loads cemeteryctl settings from an optional YAML file, an
// optional .env file and CEMETERY_* environment variables.
package config

import (
	"cemeterycore/internal/core"
	"cemeterycore/internal/localstore"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "CEMETERY"

// Config is the resolved application configuration.
type Config struct {
	Storage struct {
		Driver      string `mapstructure:"driver"`
		SQLitePath  string `mapstructure:"sqlite_path"`
		PostgresDSN string `mapstructure:"postgres_dsn"`
	} `mapstructure:"storage"`

	LocalStore struct {
		Driver string `mapstructure:"driver"`
		FSRoot string `mapstructure:"fs_root"`
		S3     struct {
			Region          string `mapstructure:"region"`
			Bucket          string `mapstructure:"bucket"`
			Prefix          string `mapstructure:"prefix"`
			Endpoint        string `mapstructure:"endpoint"`
			AccessKeyID     string `mapstructure:"access_key_id"`
			SecretAccessKey string `mapstructure:"secret_access_key"`
			SessionToken    string `mapstructure:"session_token"`
			PathStyle       bool   `mapstructure:"path_style"`
		} `mapstructure:"s3"`
	} `mapstructure:"localstore"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Seed bool `mapstructure:"seed"`
}

// Options locate the optional files. Empty ConfigFile searches for
// cemetery.yaml in the working directory; empty EnvFile reads .env.
type Options struct {
	ConfigFile string
	EnvFile    string
}

var defaults = map[string]any{
	"storage.driver":                  string(core.StorageSQLite),
	"storage.sqlite_path":             "cemetery.db",
	"storage.postgres_dsn":            "",
	"localstore.driver":               string(localstore.DriverFilesystem),
	"localstore.fs_root":              "./cemeterydata",
	"localstore.s3.region":            "us-east-1",
	"localstore.s3.bucket":            "",
	"localstore.s3.prefix":            "",
	"localstore.s3.endpoint":          "",
	"localstore.s3.access_key_id":     "",
	"localstore.s3.secret_access_key": "",
	"localstore.s3.session_token":     "",
	"localstore.s3.path_style":        false,
	"log.level":                       "warn",
	"seed":                            true,
}

// Load resolves the configuration. Values from the environment win over the
// file, which wins over defaults. A missing .env or default config file is
// not an error; an explicit ConfigFile must exist.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("cemetery")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks driver names and the log level.
func (c *Config) Validate() error {
	switch core.StorageDriver(c.Storage.Driver) {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres:
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	switch localstore.Driver(c.LocalStore.Driver) {
	case localstore.DriverFilesystem, localstore.DriverMemory:
	case localstore.DriverS3:
		if c.LocalStore.S3.Bucket == "" {
			return errors.New("localstore.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("localstore.driver: unknown driver %q", c.LocalStore.Driver)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// StorageConfig maps the storage section onto core.StorageConfig.
func (c *Config) StorageConfig() core.StorageConfig {
	return core.StorageConfig{
		Driver:      core.StorageDriver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// LocalStoreConfig maps the localstore section onto localstore.Config.
func (c *Config) LocalStoreConfig() localstore.Config {
	s3 := c.LocalStore.S3
	return localstore.Config{
		Driver: localstore.Driver(c.LocalStore.Driver),
		FSRoot: c.LocalStore.FSRoot,
		S3: localstore.S3Config{
			Region:          s3.Region,
			Bucket:          s3.Bucket,
			Prefix:          s3.Prefix,
			Endpoint:        s3.Endpoint,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			SessionToken:    s3.SessionToken,
			PathStyle:       s3.PathStyle,
		},
	}
}
