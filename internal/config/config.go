package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"gantt/internal/util"
)

// Config is the process-wide configuration, read once at startup.
type Config struct {
	Addr           string
	DBPath         string
	StaticDir      string
	JWTSecret      string
	GoogleClientID string
	Environment    string
	VerifyTimeout  time.Duration
	CheckRefs      bool
}

// Production reports whether the service runs in production mode.
func (c Config) Production() bool {
	return c.Environment == "production"
}

// Validate fails on settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.GoogleClientID == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.VerifyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("verify timeout must be positive, got %s", c.VerifyTimeout))
	}
	return errors.Join(errs...)
}

// Load parses flags from args, defaulting each to its environment variable.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("gantt", flag.ContinueOnError)

	var cfg Config
	fs.StringVar(&cfg.Addr, "addr", util.EnvOrDefault("GANTT_ADDR", ":3001"), "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", util.EnvOrDefault("GANTT_DB_PATH", "data/gantt.db"), "Path to sqlite database file")
	fs.StringVar(&cfg.StaticDir, "static", util.EnvOrDefault("GANTT_STATIC_DIR", "web/dist"), "Directory with built frontend")
	fs.StringVar(&cfg.Environment, "env", util.EnvOrDefault("GANTT_ENV", "development"), "Runtime environment (production disables dev login)")
	fs.BoolVar(&cfg.CheckRefs, "check-refs", util.EnvBool("GANTT_CHECK_REFS", false), "Reject parent_id and dependencies that name missing tasks")

	timeout, err := util.EnvDuration("GOOGLE_VERIFY_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	fs.DurationVar(&cfg.VerifyTimeout, "verify-timeout", timeout, "Timeout for Google credential verification")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Secrets come from the environment only so they stay out of process listings.
	cfg.JWTSecret = util.EnvOrDefault("JWT_SECRET", "")
	cfg.GoogleClientID = util.EnvOrDefault("GOOGLE_CLIENT_ID", "")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
