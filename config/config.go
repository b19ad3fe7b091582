package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	defaultEnv                = "development"
	defaultPort               = "8080"
	defaultAccessTTLSeconds   = 900    // 15 minutes
	defaultRefreshTTLSeconds  = 604800 // 7 days
	defaultAccessCookieName   = "access_token"
	defaultRefreshCookieName  = "refresh_token"
	defaultLoginMaxAttempts   = 5
	defaultLoginWindowSeconds = 900
)

type Config struct {
	Env   string
	Port  string
	DBURL string

	// Single symmetric signing secret for access tokens.
	JWTSecret string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	AccessCookieName  string
	RefreshCookieName string

	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
}

func New() *Config {
	return &Config{
		Env:                defaultEnv,
		Port:               defaultPort,
		AccessTokenTTL:     defaultAccessTTLSeconds * time.Second,
		RefreshTokenTTL:    defaultRefreshTTLSeconds * time.Second,
		AccessCookieName:   defaultAccessCookieName,
		RefreshCookieName:  defaultRefreshCookieName,
		LoginMaxAttempts:   defaultLoginMaxAttempts,
		LoginAttemptWindow: defaultLoginWindowSeconds * time.Second,
	}
}

// Load builds the full configuration: defaults, then .env, then environment,
// then command line flags. Returns an error instead of exiting so main decides.
func Load(args []string) (*Config, error) {
	cfg := New()

	if err := cfg.LoadDotEnv(os.Getwd); err != nil {
		return nil, err
	}
	cfg.LoadEnv(os.Getenv)
	if err := cfg.ParseFlags(args); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// LoadDotEnv reads a '.env' file from the working directory if one exists.
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string { return envMap[key] })
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	setString := func(o *string) func(string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setSeconds := func(o *time.Duration) func(string) {
		return func(value string) {
			if value == "" {
				return
			}
			secs, err := strconv.Atoi(value)
			if err != nil || secs <= 0 {
				log.Printf("invalid duration value %q, keeping %s", value, *o)
				return
			}
			*o = time.Duration(secs) * time.Second
		}
	}
	setInt := func(o *int) func(string) {
		return func(value string) {
			if value == "" {
				return
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				log.Printf("invalid integer value %q, keeping %d", value, *o)
				return
			}
			*o = n
		}
	}

	envMap := map[string]func(string){
		"ENV":                  setString(&c.Env),
		"PORT":                 setString(&c.Port),
		"DB_URL":               setString(&c.DBURL),
		"JWT_SECRET":           setString(&c.JWTSecret),
		"ACCESS_TOKEN_TTL":     setSeconds(&c.AccessTokenTTL),
		"REFRESH_TOKEN_TTL":    setSeconds(&c.RefreshTokenTTL),
		"ACCESS_TOKEN_COOKIE":  setString(&c.AccessCookieName),
		"REFRESH_TOKEN_COOKIE": setString(&c.RefreshCookieName),
		"LOGIN_MAX_ATTEMPTS":   setInt(&c.LoginMaxAttempts),
		"LOGIN_ATTEMPT_WINDOW": setSeconds(&c.LoginAttemptWindow),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("jwt-auth-service", pflag.ContinueOnError)

	fs.StringVarP(&c.Port, "port", "p", c.Port, "Server listen port")
	fs.StringVarP(&c.DBURL, "database", "d", c.DBURL, "Database connection string")
	fs.StringVarP(&c.JWTSecret, "secret", "s", c.JWTSecret, "JWT signing secret")
	fs.StringVarP(&c.Env, "environment", "e", c.Env, "Environment (development, production)")

	return fs.Parse(args)
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if c.DBURL == "" {
		return errors.New("missing required configuration: DB_URL")
	}
	if c.JWTSecret == "" {
		return errors.New("missing required configuration: JWT_SECRET")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	return nil
}
