package config

import (
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrDatabaseURLRequired = errors.New("database url is required")

type Config struct {
	Debug             bool          `yaml:"debug"`
	Host              string        `yaml:"host"`
	Port              string        `yaml:"port"`
	BaseURL           string        `yaml:"base_url"`
	DatabaseURL       string        `yaml:"database_url"`
	MigrationSource   string        `yaml:"migration_source"`
	AllowOrigins      []string      `yaml:"allow_origins"`
	OtelCollectorUrl  string        `yaml:"otel_collector_url"`
	SessionExpiration time.Duration `yaml:"session_expiration"`
	StorageURL        string        `yaml:"storage_url"`
	StorageKey        string        `yaml:"storage_key"`
	StorageBucket     string        `yaml:"storage_bucket"`
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Debug:             false,
		Host:              "localhost",
		Port:              "8080",
		BaseURL:           "http://localhost:8080",
		MigrationSource:   "file://migrations",
		AllowOrigins:      []string{"http://localhost:5173"},
		SessionExpiration: 24 * time.Hour,
		StorageBucket:     "formbuilder",
	}
}

// Load resolves configuration with flag > env > .env > config file > default
// precedence. Lower-precedence sources only fill fields the higher ones left
// empty.
func Load() (Config, *Log) {
	logs := &Log{}

	config := defaultConfig()
	config = config.loadConfigFile("config.yaml", logs)
	config = config.loadEnv(logs)
	config = config.loadFlags(logs)

	return config, logs
}

func (c Config) loadConfigFile(path string, logs *Log) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logs.Warnf("Failed to read config file %s: %v", path, err)
		}
		return c
	}

	fileConfig := Config{}
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		logs.Warnf("Failed to parse config file %s: %v", path, err)
		return c
	}

	logs.Infof("Loaded config file %s", path)
	return c.merge(fileConfig)
}

func (c Config) loadEnv(logs *Log) Config {
	if err := godotenv.Load(); err == nil {
		logs.Infof("Loaded environment variables from .env")
	}

	envConfig := Config{
		Host:             os.Getenv("HOST"),
		Port:             os.Getenv("PORT"),
		BaseURL:          os.Getenv("BASE_URL"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		MigrationSource:  os.Getenv("MIGRATION_SOURCE"),
		OtelCollectorUrl: os.Getenv("OTEL_COLLECTOR_URL"),
		StorageURL:       os.Getenv("STORAGE_URL"),
		StorageKey:       os.Getenv("STORAGE_KEY"),
		StorageBucket:    os.Getenv("STORAGE_BUCKET"),
	}

	if debug := os.Getenv("DEBUG"); debug == "true" || debug == "1" {
		envConfig.Debug = true
	}

	if origins := os.Getenv("ALLOW_ORIGINS"); origins != "" {
		envConfig.AllowOrigins = strings.Split(origins, ",")
	}

	if expiration := os.Getenv("SESSION_EXPIRATION"); expiration != "" {
		d, err := time.ParseDuration(expiration)
		if err != nil {
			logs.Warnf("Invalid SESSION_EXPIRATION %q: %v", expiration, err)
		} else {
			envConfig.SessionExpiration = d
		}
	}

	return c.merge(envConfig)
}

func (c Config) loadFlags(logs *Log) Config {
	flagConfig := Config{}

	flag.BoolVar(&flagConfig.Debug, "debug", false, "enable debug mode")
	flag.StringVar(&flagConfig.Host, "host", "", "server host")
	flag.StringVar(&flagConfig.Port, "port", "", "server port")
	flag.StringVar(&flagConfig.DatabaseURL, "database-url", "", "database connection url")
	flag.StringVar(&flagConfig.MigrationSource, "migration-source", "", "database migration source")
	flag.Parse()

	return c.merge(flagConfig)
}

// merge overlays non-zero fields of override onto c.
func (c Config) merge(override Config) Config {
	if override.Debug {
		c.Debug = true
	}
	if override.Host != "" {
		c.Host = override.Host
	}
	if override.Port != "" {
		c.Port = override.Port
	}
	if override.BaseURL != "" {
		c.BaseURL = override.BaseURL
	}
	if override.DatabaseURL != "" {
		c.DatabaseURL = override.DatabaseURL
	}
	if override.MigrationSource != "" {
		c.MigrationSource = override.MigrationSource
	}
	if len(override.AllowOrigins) > 0 {
		c.AllowOrigins = override.AllowOrigins
	}
	if override.OtelCollectorUrl != "" {
		c.OtelCollectorUrl = override.OtelCollectorUrl
	}
	if override.SessionExpiration != 0 {
		c.SessionExpiration = override.SessionExpiration
	}
	if override.StorageURL != "" {
		c.StorageURL = override.StorageURL
	}
	if override.StorageKey != "" {
		c.StorageKey = override.StorageKey
	}
	if override.StorageBucket != "" {
		c.StorageBucket = override.StorageBucket
	}
	return c
}
