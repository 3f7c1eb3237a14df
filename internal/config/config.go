// Package config provides functionality for managing configuration options
// for the client using command-line flags, a config file and environment
// variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults.
const (
	DefaultBaseURL   = "http://localhost:5000"
	DefaultRole      = "admin"
	DefaultBackend   = "file"
	DefaultStorePath = "storage.json"
	DefaultAuthDelay = time.Second
	DefaultLogLevel  = "warn"
)

// Options holds the configuration values for the client.
type Options struct {
	// BaseURL is the REST API root, without the /api suffix.
	BaseURL string `json:"base_url" toml:"base_url"`

	// Role is sent in the x-user-role header.
	Role string `json:"role" toml:"role"`

	// StoreBackend selects the session store: "file" or "redis".
	StoreBackend string `json:"store_backend" toml:"store_backend"`
	StorePath    string `json:"store_path" toml:"store_path"`
	RedisAddr    string `json:"redis_addr" toml:"redis_addr"`
	RedisPrefix  string `json:"redis_prefix" toml:"redis_prefix"`

	// AuthDelay is the simulated latency of register and login.
	AuthDelay Duration `json:"auth_delay" toml:"auth_delay"`

	// RefreshInterval periodically refetches the collections; zero disables.
	RefreshInterval Duration `json:"refresh_interval" toml:"refresh_interval"`

	LogLevel string `json:"log_level" toml:"log_level"`

	// TLS material for talking to an HTTPS API. Empty means plain HTTP.
	CAFile   string `json:"ca_file" toml:"ca_file"`
	CertFile string `json:"cert_file" toml:"cert_file"`
	KeyFile  string `json:"key_file" toml:"key_file"`

	// Config is the path to the config file.
	Config string `json:"-" toml:"-"`

	// Version asks the binary to print build info and exit.
	Version bool `json:"-" toml:"-"`
}

// Duration decodes from strings such as "1s" or "250ms" in both JSON and
// TOML files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Parse reads os.Args and the environment.
func Parse() (*Options, error) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses flags from args, then overlays the config file and
// environment variables, in that order.
func ParseArgs(args []string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("taskdock", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&options.BaseURL, "url", DefaultBaseURL, "API base URL")
	fs.StringVar(&options.Role, "role", DefaultRole, "value of the x-user-role header")
	fs.StringVar(&options.StoreBackend, "store", DefaultBackend, "session store backend: file | redis")
	fs.StringVar(&options.StorePath, "store-path", DefaultStorePath, "path of the file store")
	fs.StringVar(&options.RedisAddr, "redis", "", "redis address for the redis store")
	fs.StringVar(&options.RedisPrefix, "redis-prefix", "", "key prefix for the redis store")
	fs.DurationVar(&options.AuthDelay.Duration, "auth-delay", DefaultAuthDelay, "simulated register/login latency")
	fs.DurationVar(&options.RefreshInterval.Duration, "refresh", 0, "auto refresh interval, 0 disables")
	fs.StringVar(&options.LogLevel, "log-level", DefaultLogLevel, "log level")
	fs.StringVar(&options.CAFile, "ca", "", "path to CA cert")
	fs.StringVar(&options.CertFile, "cert", "", "path to client cert")
	fs.StringVar(&options.KeyFile, "key", "", "path to client key")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.BoolVar(&options.Version, "version", false, "show build version and date")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			if err := loadFile(options, options.Config); err != nil {
				return nil, err
			}
		}
	}

	if v := os.Getenv("API_BASE_URL"); v != "" {
		options.BaseURL = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		options.StoreBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		options.RedisAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}

	options.BaseURL = strings.TrimRight(options.BaseURL, "/")
	if err := options.validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func loadFile(options *Options, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, options); err != nil {
			return fmt.Errorf("error while parsing config file: %w", err)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, options); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func (o *Options) validate() error {
	if o.BaseURL == "" {
		return errors.New("base url is empty")
	}
	switch o.StoreBackend {
	case "file", "redis":
	default:
		return fmt.Errorf("unknown store backend %q", o.StoreBackend)
	}
	if o.AuthDelay.Duration < 0 {
		return errors.New("auth delay must not be negative")
	}
	if o.RefreshInterval.Duration < 0 {
		return errors.New("refresh interval must not be negative")
	}
	return nil
}
