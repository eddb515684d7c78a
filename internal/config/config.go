package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`

	Database Database `toml:"database"`
	Auth     Auth     `toml:"auth"`
	Gemini   Gemini   `toml:"gemini"`
	Inbox    Inbox    `toml:"inbox"`
	Notion   Notion   `toml:"notion"`
}

type Database struct {
	Driver string `toml:"driver"` // postgres or sqlite
	DSN    string `toml:"dsn"`
}

type Auth struct {
	JWTSecret string   `toml:"jwt_secret"`
	Issuer    string   `toml:"issuer"`
	TokenTTL  Duration `toml:"token_ttl"`
}

type Gemini struct {
	APIKey       string   `toml:"api_key"`
	Model        string   `toml:"model"`
	FetchTimeout Duration `toml:"fetch_timeout"`
}

// Inbox configures the Gmail watcher. It stays off unless AccountEmail is set.
type Inbox struct {
	AccountEmail    string   `toml:"account_email"`
	CredentialsPath string   `toml:"credentials"`
	TokenPath       string   `toml:"token"`
	PollInterval    Duration `toml:"poll_interval"`
}

type Notion struct {
	Token      string `toml:"token"`
	DatabaseID string `toml:"database_id"`
}

// Duration decodes "15m"-style strings from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Port:        8080,
		CORSOrigins: []string{"*"},
		Database: Database{
			Driver: DriverPostgres,
			DSN:    "host=localhost user=postgres password=password dbname=jobtracker port=5432 sslmode=disable",
		},
		Auth: Auth{
			Issuer:   "job-application-tracker",
			TokenTTL: Duration{72 * time.Hour},
		},
		Gemini: Gemini{
			Model:        "gemini-2.5-flash",
			FetchTimeout: Duration{10 * time.Second},
		},
		Inbox: Inbox{
			CredentialsPath: "credential.json",
			TokenPath:       "token.json",
			PollInterval:    Duration{15 * time.Minute},
		},
	}
}

// Load builds the configuration from defaults, the optional TOML file at
// path, a .env file and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	// .env is optional outside local development
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = p
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.Issuer, "JWT_ISSUER")
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.Model, "GEMINI_MODEL")
	setString(&c.Inbox.AccountEmail, "INBOX_ACCOUNT_EMAIL")
	setString(&c.Inbox.CredentialsPath, "GMAIL_CREDENTIALS")
	setString(&c.Inbox.TokenPath, "GMAIL_TOKEN")
	setString(&c.Notion.Token, "NOTION_TOKEN")
	setString(&c.Notion.DatabaseID, "NOTION_DB_ID")

	for env, dst := range map[string]*Duration{
		"TOKEN_TTL":           &c.Auth.TokenTTL,
		"SCAN_FETCH_TIMEOUT":  &c.Gemini.FetchTimeout,
		"INBOX_POLL_INTERVAL": &c.Inbox.PollInterval,
	} {
		if v := os.Getenv(env); v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
		}
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingSecret
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c *Config) ExtractionEnabled() bool { return c.Gemini.APIKey != "" }
func (c *Config) InboxEnabled() bool      { return c.Inbox.AccountEmail != "" }
func (c *Config) NotionEnabled() bool     { return c.Notion.Token != "" && c.Notion.DatabaseID != "" }

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
