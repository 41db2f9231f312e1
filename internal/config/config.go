package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/soaringjerry/inform/internal/utils"
)

type Config struct {
	APIURL    string
	TokenFile string
	LogLevel  string
	LogFormat string
	Lang      string
	Timezone  *time.Location
	Timeout   time.Duration
	ShareBase string
}

const defaultAPIURL = "http://localhost:3000/api"

// Load parses global flags from args, falling back to the environment and an
// optional .env file. It returns the remaining positional arguments.
func Load(args []string) (Config, []string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	var tz, timeout string

	fs := flag.NewFlagSet("inform", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.APIURL, "api", "", "InForm API base URL")
	fs.StringVar(&cfg.TokenFile, "token-file", "", "where the session token is stored")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "text or json")
	fs.StringVar(&cfg.Lang, "lang", "", "preferred language (en, zh)")
	fs.StringVar(&tz, "tz", "", "time zone used for exported timestamps")
	fs.StringVar(&timeout, "timeout", "", "HTTP timeout, e.g. 15s")
	fs.StringVar(&cfg.ShareBase, "share-base", "", "public origin used for share links")

	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}

	if cfg.APIURL == "" {
		cfg.APIURL = utils.SafeEnv("INFORM_API_URL", defaultAPIURL)
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = utils.SafeEnv("INFORM_TOKEN_FILE", defaultTokenFile())
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = utils.SafeEnv("INFORM_LOG_LEVEL", "info")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = utils.SafeEnv("INFORM_LOG_FORMAT", "text")
	}
	if cfg.Lang == "" {
		cfg.Lang = utils.DetermineLocale(os.Getenv("INFORM_LANG"), os.Getenv("LANG"), utils.SupportedLocales, "en")
	} else {
		cfg.Lang = utils.DetermineLocale(cfg.Lang, "", utils.SupportedLocales, "en")
	}
	if cfg.ShareBase == "" {
		cfg.ShareBase = utils.SafeEnv("INFORM_SHARE_BASE", "http://localhost:5173")
	}

	if tz == "" {
		tz = utils.SafeEnv("INFORM_TIMEZONE", "Local")
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid time zone %q: %w", tz, err)
	}
	cfg.Timezone = loc

	if timeout == "" {
		timeout = utils.SafeEnv("INFORM_TIMEOUT", "15s")
	}
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return Config{}, nil, fmt.Errorf("invalid timeout %q", timeout)
	}
	cfg.Timeout = d

	return cfg, fs.Args(), nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".inform-token"
	}
	return filepath.Join(dir, "inform", "token")
}
