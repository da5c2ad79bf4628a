package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	LogFormatJSON   = "json"
	LogFormatPretty = "pretty"
)

var validEnvs = []any{"local", "alpha", "beta", "prod"}

type Config struct {
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	AppEnv     string `envconfig:"APP_ENV" default:"local"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	// LogFormat is "json" or "pretty" (colorized, for terminals).
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// NotFoundAsInternal keeps the original API's behaviour of answering
	// unknown kata ids with 500 instead of 404.
	NotFoundAsInternal bool `envconfig:"KATA_NOT_FOUND_AS_INTERNAL" default:"false"`

	DB     DBConfig     `envconfig:"DB"`
	SQLite SQLiteConfig `envconfig:"SQLITE"`
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.ServerPort, validation.By(validPort)),
		validation.Field(&c.AppEnv, validation.In(validEnvs...).
			Error(fmt.Sprintf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv))),
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatPretty).
			Error(fmt.Sprintf("invalid LOG_FORMAT %q: must be json or pretty", c.LogFormat))),
		validation.Field(&c.DB),
	)
	if err != nil {
		return err
	}

	if c.DB.Driver == DriverSQLite {
		if c.AppEnv == "prod" {
			return fmt.Errorf("DB_DRIVER=sqlite must not be used in %s environment", c.AppEnv)
		}
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	}
	return nil
}

// StoreDSN returns the data source for the configured driver: a postgres URL
// or the sqlite file path.
func (c Config) StoreDSN() string {
	if c.DB.Driver == DriverSQLite {
		return c.SQLite.Path
	}
	return c.DB.DSN()
}

func validPort(value any) error {
	s, _ := value.(string)
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", s, err)
	}
	return nil
}

// DBConfig field names map to DB_<NAME> variables. They carry no envconfig
// tags so that envconfig never falls back to bare names such as USER.
type DBConfig struct {
	Driver      string `default:"postgres"`
	Host        string `default:"localhost"`
	Port        string `default:"5432"`
	User        string `default:"kata"`
	Password    string `default:"kata"`
	Name        string `default:"kata"`
	SSLMode     string `default:"disable"`
	AutoMigrate bool   `split_words:"true" default:"true"`
}

func (d DBConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Driver, validation.Required.Error("DB_DRIVER is required"), validation.In(DriverPostgres, DriverSQLite).
			Error(fmt.Sprintf("invalid DB_DRIVER %q: must be postgres or sqlite", d.Driver))),
		validation.Field(&d.Host, validation.When(d.Driver == DriverPostgres, validation.Required.Error("DB_HOST is required"))),
		validation.Field(&d.Name, validation.When(d.Driver == DriverPostgres, validation.Required.Error("DB_NAME is required"))),
	)
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type SQLiteConfig struct {
	Path string `default:"./data/katas.db"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files without overriding
// variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
