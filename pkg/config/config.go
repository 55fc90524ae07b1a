// Package config loads reseau settings from TOML or YAML, with environment
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ha1tch/reseau/pkg/physics"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL  = "RESEAU_API_URL"
	EnvProfile = "RESEAU_PROFILE"
	EnvDebug   = "DEBUG"
)

// Config holds reseau configuration.
type Config struct {
	API    APIConfig    `toml:"api" yaml:"api"`
	View   ViewConfig   `toml:"view" yaml:"view"`
	Render RenderConfig `toml:"render" yaml:"render"`
	Serve  ServeConfig  `toml:"serve" yaml:"serve"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// APIConfig points at the media ownership API.
type APIConfig struct {
	BaseURL   string   `toml:"base_url" yaml:"base_url" validate:"required,url"`
	PageLimit int      `toml:"page_limit" yaml:"page_limit" validate:"min=1,max=500"`
	Timeout   Duration `toml:"timeout" yaml:"timeout" validate:"gt=0"`
	Retries   int      `toml:"retries" yaml:"retries" validate:"min=0,max=10"`
}

// ViewConfig controls the interactive views.
type ViewConfig struct {
	Width   int    `toml:"width" yaml:"width" validate:"min=100,max=8192"`
	Height  int    `toml:"height" yaml:"height" validate:"min=100,max=8192"`
	Profile string `toml:"profile" yaml:"profile" validate:"oneof=standard low-power auto"`
	Labels  bool   `toml:"labels" yaml:"labels"`
}

// RenderConfig controls image output.
type RenderConfig struct {
	Scale      int    `toml:"scale" yaml:"scale" validate:"min=1,max=8"` // PNG supersampling
	Background string `toml:"background" yaml:"background" validate:"hexcolor"`
}

// ServeConfig controls the HTTP host.
type ServeConfig struct {
	Addr    string `toml:"addr" yaml:"addr" validate:"required"`
	Metrics bool   `toml:"metrics" yaml:"metrics"`
}

// LogConfig controls logging.
type LogConfig struct {
	Debug bool   `toml:"debug" yaml:"debug"`
	File  string `toml:"file" yaml:"file"` // empty logs to stderr
}

// Duration is a time.Duration written as "10s" in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			PageLimit: 50,
			Timeout:   Duration(10 * time.Second),
			Retries:   2,
		},
		View: ViewConfig{
			Width:   800,
			Height:  600,
			Profile: "standard",
			Labels:  true,
		},
		Render: RenderConfig{
			Scale:      2,
			Background: "#ffffff",
		},
		Serve: ServeConfig{
			Addr:    ":8080",
			Metrics: true,
		},
	}
}

// ConfigDir returns the reseau config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "reseau")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the config file at path over the defaults. An empty path means
// DefaultPath; a missing file yields the defaults. Environment overrides
// are applied and the result validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	case isYAML(path):
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path, as YAML for .yaml/.yml and TOML
// otherwise.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if isYAML(path) {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	} else if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadEnv reads .env style files into the process environment without
// overriding variables already set. With no arguments it reads ./.env.
// Missing files are not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from RESEAU_API_URL, RESEAU_PROFILE and DEBUG.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvProfile); ok && v != "" {
		c.View.Profile = v
	}
	if v, ok := os.LookupEnv(EnvDebug); ok {
		switch strings.ToLower(v) {
		case "1", "true", "yes":
			c.Log.Debug = true
		case "0", "false", "no":
			c.Log.Debug = false
		}
	}
}

// validate is a singleton validator instance
var validate = validator.New()

// Validate checks every section against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s (got %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// PhysicsProfile returns the simulation profile named by view.profile.
// "auto" picks one with DetectProfile.
func (c *Config) PhysicsProfile() physics.Profile {
	name := c.View.Profile
	if name == "auto" {
		name = DetectProfile()
	}
	p, _ := physics.ProfileByName(name)
	return p
}

// DetectProfile guesses the profile name for this machine: low-power on
// two CPUs or fewer and over SSH, where every frame crosses the network.
func DetectProfile() string {
	return detectProfile(runtime.NumCPU(), os.Getenv)
}

func detectProfile(cpus int, getenv func(string) string) string {
	if cpus <= 2 || getenv("SSH_CONNECTION") != "" || getenv("SSH_TTY") != "" {
		return "low-power"
	}
	return "standard"
}
