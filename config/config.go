// Package config loads teloquent settings from a config file, the environment and .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/teloquent/teloquent"
	"github.com/teloquent/teloquent/driver/sqlite"
	"github.com/teloquent/teloquent/logger"
	"github.com/teloquent/teloquent/migrator"
)

const (
	// EnvPrefix prefix of the environment variables overriding config keys, e.g. TELOQUENT_DSN
	EnvPrefix = "TELOQUENT"

	configFileName = "teloquent"
	defaultEnvFile = ".env"

	keyDriver          = "driver"
	keyDSN             = "dsn"
	keyEnableLogging   = "enable_logging"
	keyLogLevel        = "log_level"
	keyLogger          = "logger"
	keySlowThreshold   = "slow_threshold"
	keyMigrationsTable = "migrations_table"
	keyForeignKeys     = "foreign_keys"
)

// Supported drivers and loggers
const (
	DriverSQLite = "sqlite"

	LoggerZap     = "zap"
	LoggerZerolog = "zerolog"
	LoggerLogrus  = "logrus"
	LoggerStd     = "std"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported driver")
	ErrUnsupportedLogger = errors.New("unsupported logger")
	ErrMissingDSN        = errors.New("missing dsn")
)

// Config teloquent settings
type Config struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	EnableLogging   bool          `mapstructure:"enable_logging"`
	LogLevel        string        `mapstructure:"log_level"`
	Logger          string        `mapstructure:"logger"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	MigrationsTable string        `mapstructure:"migrations_table"`
	ForeignKeys     bool          `mapstructure:"foreign_keys"`
}

// Options where Load looks for settings
type Options struct {
	// ConfigFile explicit config file, otherwise teloquent.{yaml,json,toml} is searched in ConfigPaths
	ConfigFile  string
	ConfigPaths []string
	// EnvFiles dotenv files loaded into the environment, .env when empty. Missing files are ignored.
	EnvFiles []string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyDriver, DriverSQLite)
	v.SetDefault(keyDSN, ":memory:")
	v.SetDefault(keyEnableLogging, false)
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogger, LoggerZap)
	v.SetDefault(keySlowThreshold, 200*time.Millisecond)
	v.SetDefault(keyMigrationsTable, migrator.DefaultTable)
	v.SetDefault(keyForeignKeys, true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the dotenv files, then the config file, then the TELOQUENT_* environment variables,
// later sources overriding earlier ones. A missing config file is not an error.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if len(envFiles) == 0 {
		envFiles = []string{defaultEnvFile}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	v := newViper()
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configFileName)
		paths := opts.ConfigPaths
		if len(paths) == 0 {
			paths = []string{"."}
		}
		for _, path := range paths {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return config, config.Validate()
}

// Validate checks the driver, logger and dsn
func (c *Config) Validate() error {
	if c.Driver != DriverSQLite {
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
	if c.DSN == "" {
		return ErrMissingDSN
	}

	switch c.Logger {
	case LoggerZap, LoggerZerolog, LoggerLogrus, LoggerStd:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedLogger, c.Logger)
	}
	return nil
}

// Level the log level, Silent unless logging is enabled
func (c *Config) Level() logger.LogLevel {
	if !c.EnableLogging {
		return logger.Silent
	}
	return logger.ParseLevel(strings.ToLower(c.LogLevel))
}

func (c *Config) loggerConfig() logger.Config {
	return logger.Config{
		SlowThreshold: c.SlowThreshold,
		LogLevel:      c.Level(),
	}
}

// NewLogger builds the configured logger adapter
func (c *Config) NewLogger() (logger.Interface, error) {
	switch c.Logger {
	case LoggerZap:
		return logger.NewZapProductionLogger(c.loggerConfig())
	case LoggerZerolog:
		return logger.NewZerologConsoleLogger(os.Stderr, c.loggerConfig()), nil
	case LoggerLogrus:
		l := logrus.New()
		l.SetOutput(os.Stderr)
		return logger.NewLogrusLogger(l, c.loggerConfig()), nil
	case LoggerStd:
		config := c.loggerConfig()
		config.Colorful = true
		return logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), config), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLogger, c.Logger)
	}
}

// Open opens the configured connection and returns a DB over it.
// The connection is db.Conn and implements io.Closer.
func (c *Config) Open() (*teloquent.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	l, err := c.NewLogger()
	if err != nil {
		return nil, err
	}

	conn, err := sqlite.New(sqlite.Config{DSN: c.DSN, ForeignKeys: c.ForeignKeys})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.DSN, err)
	}

	db, err := teloquent.Open(conn, &teloquent.Config{Logger: l})
	if err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// NewMigrator migrator over db using the configured bookkeeping table
func (c *Config) NewMigrator(db *teloquent.DB) *migrator.Migrator {
	return migrator.New(migrator.Config{DB: db, Table: c.MigrationsTable})
}
