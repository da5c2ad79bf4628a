package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaekwang-park/kata-api/internal/config"
)

var envKeys = []string{
	"SERVER_PORT", "APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS", "KATA_NOT_FOUND_AS_INTERNAL",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"DB_AUTO_MIGRATE", "SQLITE_PATH",
}

// clearEnv unsets every config variable for the duration of the test.
// A set-but-empty variable would bypass envconfig defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func mustLoad(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := mustLoad(t)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ServerPort", cfg.ServerPort, "8080"},
		{"AppEnv", cfg.AppEnv, "local"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "json"},
		{"DB.Driver", cfg.DB.Driver, "postgres"},
		{"DB.Host", cfg.DB.Host, "localhost"},
		{"DB.Port", cfg.DB.Port, "5432"},
		{"DB.User", cfg.DB.User, "kata"},
		{"DB.Password", cfg.DB.Password, "kata"},
		{"DB.Name", cfg.DB.Name, "kata"},
		{"DB.SSLMode", cfg.DB.SSLMode, "disable"},
		{"SQLite.Path", cfg.SQLite.Path, "./data/katas.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}

	t.Run("NotFoundAsInternal", func(t *testing.T) {
		if cfg.NotFoundAsInternal {
			t.Errorf("got NotFoundAsInternal=true, want false")
		}
	})

	t.Run("AutoMigrate", func(t *testing.T) {
		if !cfg.DB.AutoMigrate {
			t.Errorf("got AutoMigrate=false, want true")
		}
	})

	t.Run("CORSAllowedOrigins", func(t *testing.T) {
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Errorf("got %v, want [*]", cfg.CORSAllowedOrigins)
		}
	})
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_ENV", "alpha")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "pretty")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://katas.example.com")
	t.Setenv("KATA_NOT_FOUND_AS_INTERNAL", "true")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "admin")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "mydb")
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("SQLITE_PATH", "/var/lib/kata/katas.db")

	cfg := mustLoad(t)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ServerPort", cfg.ServerPort, "9090"},
		{"AppEnv", cfg.AppEnv, "alpha"},
		{"LogLevel", cfg.LogLevel, "debug"},
		{"LogFormat", cfg.LogFormat, "pretty"},
		{"DB.Driver", cfg.DB.Driver, "sqlite"},
		{"DB.Host", cfg.DB.Host, "db.example.com"},
		{"DB.Port", cfg.DB.Port, "5433"},
		{"DB.User", cfg.DB.User, "admin"},
		{"DB.Password", cfg.DB.Password, "secret"},
		{"DB.Name", cfg.DB.Name, "mydb"},
		{"DB.SSLMode", cfg.DB.SSLMode, "require"},
		{"SQLite.Path", cfg.SQLite.Path, "/var/lib/kata/katas.db"},
		{"CORSAllowedOrigins", strings.Join(cfg.CORSAllowedOrigins, "|"), "http://localhost:3000|https://katas.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}

	if !cfg.NotFoundAsInternal {
		t.Errorf("got NotFoundAsInternal=false, want true")
	}
	if cfg.DB.AutoMigrate {
		t.Errorf("got AutoMigrate=true, want false")
	}
}

func TestLoad_DBUserIgnoresShellUser(t *testing.T) {
	clearEnv(t)
	t.Setenv("USER", "someone-else")
	t.Setenv("HOST", "some-host")

	cfg := mustLoad(t)

	if cfg.DB.User != "kata" {
		t.Errorf("DB.User=%s, want kata", cfg.DB.User)
	}
	if cfg.DB.Host != "localhost" {
		t.Errorf("DB.Host=%s, want localhost", cfg.DB.Host)
	}
}

func TestLoad_InvalidBool(t *testing.T) {
	clearEnv(t)
	t.Setenv("KATA_NOT_FOUND_AS_INTERNAL", "sometimes")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid bool, got nil")
	}
}

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantSub  string
	}{
		{
			name:     "simple password",
			password: "kata",
			wantSub:  "kata:kata@",
		},
		{
			name:     "password with special chars",
			password: "p@ss/w#rd?",
			wantSub:  "kata:p%40ss%2Fw%23rd%3F@",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DB_PASSWORD", tt.password)

			cfg := mustLoad(t)
			dsn := cfg.DB.DSN()

			if !strings.Contains(dsn, tt.wantSub) {
				t.Errorf("DSN=%s, want to contain %s", dsn, tt.wantSub)
			}
			if !strings.HasPrefix(dsn, "postgres://") {
				t.Errorf("DSN=%s, want postgres:// prefix", dsn)
			}
			if !strings.Contains(dsn, "sslmode=disable") {
				t.Errorf("DSN=%s, want sslmode=disable", dsn)
			}
		})
	}
}

func TestConfig_StoreDSN(t *testing.T) {
	clearEnv(t)
	cfg := mustLoad(t)

	if got := cfg.StoreDSN(); !strings.HasPrefix(got, "postgres://") {
		t.Errorf("postgres StoreDSN=%s, want postgres:// prefix", got)
	}

	cfg.DB.Driver = config.DriverSQLite
	cfg.SQLite.Path = "/tmp/katas.db"
	if got := cfg.StoreDSN(); got != "/tmp/katas.db" {
		t.Errorf("sqlite StoreDSN=%s, want /tmp/katas.db", got)
	}
}

func TestConfig_ParseLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Warn", "Warn", slog.LevelWarn},
		{"empty defaults to info", "", slog.LevelInfo},
		{"invalid defaults to info", "verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{LogLevel: tt.value}
			got := cfg.ParseLogLevel()

			if got != tt.want {
				t.Errorf("LOG_LEVEL=%q: got %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		port       string
		env        string
		driver     string
		dbHost     string
		sqlitePath string
		wantErr    string
	}{
		{"valid local postgres", "8080", "local", "postgres", "localhost", "", ""},
		{"valid alpha", "8080", "alpha", "postgres", "db", "", ""},
		{"valid beta", "9090", "beta", "postgres", "db", "", ""},
		{"valid prod", "80", "prod", "postgres", "db", "", ""},
		{"valid local sqlite", "8080", "local", "sqlite", "", "./katas.db", ""},
		{"invalid port", "abc", "local", "postgres", "localhost", "", "invalid SERVER_PORT"},
		{"invalid env", "8080", "staging", "postgres", "localhost", "", "invalid APP_ENV"},
		{"invalid driver", "8080", "local", "mysql", "localhost", "", "invalid DB_DRIVER"},
		{"missing postgres host", "8080", "local", "postgres", "", "", "DB_HOST is required"},
		{"missing sqlite path", "8080", "local", "sqlite", "", "", "SQLITE_PATH is required"},
		{"sqlite in prod", "8080", "prod", "sqlite", "", "./katas.db", "DB_DRIVER=sqlite must not be used"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{
				ServerPort: tt.port,
				AppEnv:     tt.env,
				DB: config.DBConfig{
					Driver: tt.driver,
					Host:   tt.dbHost,
					Name:   "kata",
				},
				SQLite: config.SQLiteConfig{Path: tt.sqlitePath},
			}
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.wantErr)
				} else if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestConfig_ValidateLogFormat(t *testing.T) {
	base := config.Config{
		ServerPort: "8080",
		AppEnv:     "local",
		DB:         config.DBConfig{Driver: "postgres", Host: "localhost", Name: "kata"},
	}

	for _, format := range []string{"json", "pretty"} {
		cfg := base
		cfg.LogFormat = format
		if err := cfg.Validate(); err != nil {
			t.Errorf("LOG_FORMAT=%s: unexpected error: %v", format, err)
		}
	}

	cfg := base
	cfg.LogFormat = "xml"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "invalid LOG_FORMAT") {
		t.Errorf("expected invalid LOG_FORMAT error, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SERVER_PORT=7070\nDB_DRIVER=sqlite\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DB_DRIVER", "postgres")

	if err := config.LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	cfg := mustLoad(t)
	if cfg.ServerPort != "7070" {
		t.Errorf("ServerPort=%s, want 7070 from .env", cfg.ServerPort)
	}
	if cfg.DB.Driver != "postgres" {
		t.Errorf("DB.Driver=%s, want postgres (existing env wins)", cfg.DB.Driver)
	}
}
