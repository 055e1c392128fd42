package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/olivierh59500/neuralsearch/internal/field"
	"github.com/olivierh59500/neuralsearch/internal/flow"
	"github.com/olivierh59500/neuralsearch/internal/logger"
	"github.com/olivierh59500/neuralsearch/internal/search"
)

// Environment variables that override the config file.
const (
	EnvAPIURL   = "NEURALSEARCH_API_URL"
	EnvLogLevel = "NEURALSEARCH_LOG_LEVEL"
	EnvSeed     = "NEURALSEARCH_SEED"
	EnvMode     = "NEURALSEARCH_ENV"
)

// Defaults
const (
	DefaultPath       = "neuralsearch.yaml"
	DefaultDotEnv     = ".env"
	DefaultAPIURL     = "http://localhost:8000"
	DefaultLogLevel   = "info"
	DefaultWidth      = 1280
	DefaultHeight     = 800
	DefaultPresetPath = "preset.json"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Window is the initial window size.
type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// Config is the in-memory representation of neuralsearch.yaml.
type Config struct {
	APIURL         string        `yaml:"api_url"`
	LogLevel       string        `yaml:"log_level"`
	Environment    string        `yaml:"environment"`
	Seed           int64         `yaml:"seed"` // 0 picks a seed from the clock
	PollInterval   time.Duration `yaml:"poll_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	StepDelay      time.Duration `yaml:"step_delay"` // Pause after each thinking step, 0 shows them all at once
	PresetPath     string        `yaml:"preset_path"`
	Window         Window        `yaml:"window"`
	Field          field.Config  `yaml:"field"`
	Flow           flow.Config   `yaml:"flow"`
}

// Default returns the config used when no file exists.
func Default() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		LogLevel:       DefaultLogLevel,
		Environment:    "development",
		PollInterval:   search.DefaultPollInterval,
		RequestTimeout: search.DefaultTimeout,
		StepDelay:      search.StepDelay,
		PresetPath:     DefaultPresetPath,
		Window:         Window{Width: DefaultWidth, Height: DefaultHeight, Title: "NeuralSearch"},
		Field:          field.DefaultConfig(),
		Flow:           flow.DefaultConfig(),
	}
}

// Load reads path over the defaults, then applies dotenvPath and the process
// environment. A missing file at either path is not an error; an empty
// dotenvPath skips the dotenv step. Process variables win over dotenv ones.
func Load(path, dotenvPath string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
			}
		}
	}

	env := map[string]string{}
	if dotenvPath != "" {
		m, err := godotenv.Read(dotenvPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("cannot read dotenv file %s: %w", dotenvPath, err)
		default:
			env = m
		}
	}
	for _, key := range []string{EnvAPIURL, EnvLogLevel, EnvSeed, EnvMode} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv copies the known keys of env into c
func (c *Config) applyEnv(env map[string]string) error {
	if v := env[EnvAPIURL]; v != "" {
		c.APIURL = v
	}
	if v := env[EnvLogLevel]; v != "" {
		c.LogLevel = v
	}
	if v := env[EnvMode]; v != "" {
		c.Environment = v
	}
	if v := strings.TrimSpace(env[EnvSeed]); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, EnvSeed, v)
		}
		c.Seed = seed
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_url %q must be an http(s) URL", ErrInvalid, c.APIURL)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.PollInterval < 0 || c.RequestTimeout < 0 || c.StepDelay < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalid)
	}
	if err := c.Field.Validate(); err != nil {
		return fmt.Errorf("%w: field: %w", ErrInvalid, err)
	}
	if err := c.Flow.Validate(); err != nil {
		return fmt.Errorf("%w: flow: %w", ErrInvalid, err)
	}
	return nil
}

// Save marshals c and writes it to path.
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
