package config

import (
	"errors"
	"fmt"
	"os"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

const defaultPrimaryLocale = "schinese"
const defaultDataDir = "data"
const defaultPort = "8080"

type Config struct {
	cloudSQLUnixSocketPath string
	dBPassword             string
	dBUsername             string
	sentryDSN              string
	steamAPIKey            string
	dataDir                string
	primaryLocale          string
	port                   string
	env                    environment
}

func (c *Config) CloudSQLUnixSocketPath() string {
	return c.cloudSQLUnixSocketPath
}

func (c *Config) DBPassword() string {
	return c.dBPassword
}

func (c *Config) DBUsername() string {
	return c.dBUsername
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) SteamAPIKey() string {
	return c.steamAPIKey
}

// DataDir is the directory holding the durable unlock-state and
// blacklist documents.
func (c *Config) DataDir() string {
	return c.dataDir
}

// PrimaryLocale is the first language tried when fetching achievement
// data from the Steam API.
func (c *Config) PrimaryLocale() string {
	return c.primaryLocale
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf("Config{env: %s, dataDir: %s, primaryLocale: %s, ...}", string(c.env), c.dataDir, c.primaryLocale)
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("LAUREL_ENVIRONMENT")
	if !ok {
		return missingKey("LAUREL_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return Config{}, fmt.Errorf("%w: LAUREL_ENVIRONMENT (%s)", ErrInvalidValue, rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	cloudSQLUnixSocketPath := os.Getenv("CLOUDSQL_UNIX_SOCKET")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbUsername := os.Getenv("DB_USERNAME")
	sentryDSN := os.Getenv("SENTRY_DSN")
	steamAPIKey := os.Getenv("STEAM_API_KEY")

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir
	}

	primaryLocale := os.Getenv("PRIMARY_LOCALE")
	if primaryLocale == "" {
		primaryLocale = defaultPrimaryLocale
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	if env == production || env == staging {
		if cloudSQLUnixSocketPath == "" {
			return missingKey("CLOUDSQL_UNIX_SOCKET")
		}
		if dbUsername == "" {
			return missingKey("DB_USERNAME")
		}
		if dbPassword == "" {
			return missingKey("DB_PASSWORD")
		}
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
		if steamAPIKey == "" {
			return missingKey("STEAM_API_KEY")
		}
	}

	return Config{
		cloudSQLUnixSocketPath: cloudSQLUnixSocketPath,
		dBPassword:             dbPassword,
		dBUsername:             dbUsername,
		sentryDSN:              sentryDSN,
		steamAPIKey:            steamAPIKey,
		dataDir:                dataDir,
		primaryLocale:          primaryLocale,
		port:                   port,
		env:                    env,
	}, nil
}
