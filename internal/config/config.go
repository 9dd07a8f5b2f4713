// Package config loads the apicontract configuration. Sources, lowest to
// highest precedence: built-in defaults, the YAML file, a .env file, then
// APICONTRACT_* environment variables. CLI flags are applied by the caller
// on top of the returned Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when no file is
// given.
const DefaultConfigFile = "apicontract.yaml"

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "APICONTRACT_"

// Targets.
const (
	TargetLive = "live"
	TargetTwin = "twin"
)

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig tunes the HTTP client.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoginConfig holds credentials for services that need a session.
type LoginConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// ServiceConfig describes one service under test.
type ServiceConfig struct {
	BaseURL string `yaml:"base_url"`
	// Strategy is "first", "own", or empty for the suite default.
	Strategy string       `yaml:"strategy,omitempty"`
	Login    *LoginConfig `yaml:"login,omitempty"`
}

// FixturesConfig seeds the payload generator. Zero means random.
type FixturesConfig struct {
	Seed uint64 `yaml:"seed"`
}

// Config is the full configuration.
type Config struct {
	Log      LogConfig                `yaml:"log"`
	HTTP     HTTPConfig               `yaml:"http"`
	Target   string                   `yaml:"target"`
	Services map[string]ServiceConfig `yaml:"services"`
	Fixtures FixturesConfig           `yaml:"fixtures"`
}

// Default returns the built-in configuration: both public services, the
// well-known ServeRest administrator, text logs at info.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		HTTP:   HTTPConfig{Timeout: 30 * time.Second},
		Target: TargetLive,
		Services: map[string]ServiceConfig{
			"serverest": {
				BaseURL: "https://serverest.dev",
				Login:   &LoginConfig{Email: "fulano@qa.com", Password: "teste"},
			},
			"jsonplaceholder": {
				BaseURL: "https://jsonplaceholder.typicode.com",
			},
		},
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// File is the YAML file. Empty means DefaultConfigFile if it exists.
	File string
	// EnvFile is the dotenv file. Empty means DefaultEnvFile if it exists.
	EnvFile string
	// LookupEnv reads the environment; nil means os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds the configuration and validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if err := cfg.mergeFile(opts.File); err != nil {
		return nil, err
	}

	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := dotenv[EnvPrefix+key]
		return v, ok
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	c.merge(&file)
	return nil
}

// merge overlays the non-zero fields of o.
func (c *Config) merge(o *Config) {
	if o.Log.Level != "" {
		c.Log.Level = o.Log.Level
	}
	if o.Log.Format != "" {
		c.Log.Format = o.Log.Format
	}
	if o.HTTP.Timeout != 0 {
		c.HTTP.Timeout = o.HTTP.Timeout
	}
	if o.Target != "" {
		c.Target = o.Target
	}
	if o.Fixtures.Seed != 0 {
		c.Fixtures.Seed = o.Fixtures.Seed
	}
	for name, svc := range o.Services {
		cur := c.Services[name]
		if svc.BaseURL != "" {
			cur.BaseURL = svc.BaseURL
		}
		if svc.Strategy != "" {
			cur.Strategy = svc.Strategy
		}
		if svc.Login != nil {
			cur.Login = svc.Login
		}
		c.Services[name] = cur
	}
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return vars, nil
}

// applyEnv reads LOG_LEVEL, LOG_FORMAT, HTTP_TIMEOUT, TARGET, FIXTURES_SEED
// and, per service, <NAME>_BASE_URL, <NAME>_STRATEGY, <NAME>_EMAIL and
// <NAME>_PASSWORD.
func (c *Config) applyEnv(env func(string) (string, bool)) error {
	if v, ok := env("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := env("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := env("TARGET"); ok {
		c.Target = v
	}
	if v, ok := env("HTTP_TIMEOUT"); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%sHTTP_TIMEOUT: %w", EnvPrefix, err)
		}
		c.HTTP.Timeout = d
	}
	if v, ok := env("FIXTURES_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sFIXTURES_SEED: %w", EnvPrefix, err)
		}
		c.Fixtures.Seed = seed
	}

	for name, svc := range c.Services {
		key := strings.ToUpper(name) + "_"
		if v, ok := env(key + "BASE_URL"); ok {
			svc.BaseURL = v
		}
		if v, ok := env(key + "STRATEGY"); ok {
			svc.Strategy = v
		}
		email, hasEmail := env(key + "EMAIL")
		password, hasPassword := env(key + "PASSWORD")
		if hasEmail || hasPassword {
			login := LoginConfig{}
			if svc.Login != nil {
				login = *svc.Login
			}
			if hasEmail {
				login.Email = email
			}
			if hasPassword {
				login.Password = password
			}
			svc.Login = &login
		}
		c.Services[name] = svc
	}
	return nil
}

// parseDuration accepts Go durations ("10s") or plain seconds ("10").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate rejects values the CLI cannot act on.
func (c *Config) Validate() error {
	var errs []error
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	switch c.Target {
	case TargetLive, TargetTwin:
	default:
		errs = append(errs, fmt.Errorf("target: unknown target %q", c.Target))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout: must be positive, got %s", c.HTTP.Timeout))
	}
	for name, svc := range c.Services {
		if svc.BaseURL == "" {
			errs = append(errs, fmt.Errorf("services.%s.base_url: empty", name))
		}
		switch svc.Strategy {
		case "", "first", "own":
		default:
			errs = append(errs, fmt.Errorf("services.%s.strategy: unknown strategy %q", name, svc.Strategy))
		}
	}
	return errors.Join(errs...)
}

// Service returns the named service configuration.
func (c *Config) Service(name string) (ServiceConfig, error) {
	svc, ok := c.Services[name]
	if !ok {
		return ServiceConfig{}, fmt.Errorf("no service %q configured", name)
	}
	return svc, nil
}
