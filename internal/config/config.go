// Package config loads application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envFile = ".env"

var (
	// ErrMissingCredential is returned when no GitHub access token is configured.
	ErrMissingCredential = errors.New("GH_ACCESS_TOKEN must be set")
	// ErrMissingUsername is returned when the target GitHub user is not configured.
	ErrMissingUsername = errors.New("GH_USERNAME must be set")
)

// Config holds application configuration. It is built once at startup and
// never modified afterwards.
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	Report ReportConfig `mapstructure:"report"`
}

// GitHubConfig holds the GitHub credential and the user whose stats are collected.
type GitHubConfig struct {
	Token          string        `mapstructure:"token"`
	Username       string        `mapstructure:"username"`
	Concurrency    int           `mapstructure:"concurrency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ReportConfig describes where the template is read from and the README is written to.
type ReportConfig struct {
	TemplatePath string `mapstructure:"template"`
	OutputPath   string `mapstructure:"output"`
	AllTime      bool   `mapstructure:"all_time"`
	Verbose      bool   `mapstructure:"verbose"`
}

// flagKeys maps configuration keys to the command line flags overriding them.
var flagKeys = map[string]string{
	"github.concurrency":     "concurrency",
	"github.request_timeout": "request-timeout",
	"report.template":        "template",
	"report.output":          "output",
	"report.all_time":        "all-time",
	"report.verbose":         "verbose",
}

// Load builds the configuration from defaults, a .env file, the environment and flags,
// in increasing order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// A missing .env file is fine; real environment variables are never overridden.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	if err := bindEnvs(v); err != nil {
		return nil, err
	}
	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.concurrency", 8)
	v.SetDefault("github.request_timeout", 30*time.Second)
	v.SetDefault("report.template", "main.mustache")
	v.SetDefault("report.output", "README.md")
	v.SetDefault("report.all_time", false)
	v.SetDefault("report.verbose", false)
}

func bindEnvs(v *viper.Viper) error {
	envs := map[string]string{
		"github.token":           "GH_ACCESS_TOKEN",
		"github.username":        "GH_USERNAME",
		"github.concurrency":     "GH_CONCURRENCY",
		"github.request_timeout": "GH_REQUEST_TIMEOUT",
	}
	for key, env := range envs {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	return nil
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.GitHub.Token == "" {
		return ErrMissingCredential
	}
	if c.GitHub.Username == "" {
		return ErrMissingUsername
	}
	if c.GitHub.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.GitHub.Concurrency)
	}
	if c.GitHub.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.GitHub.RequestTimeout)
	}
	if c.Report.TemplatePath == "" || c.Report.OutputPath == "" {
		return errors.New("template and output paths are required")
	}
	return nil
}
