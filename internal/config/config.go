package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that override file values, e.g.
// UDHAYAM_LISTEN or UDHAYAM_BASIC_AUTH__USERNAME.
const EnvPrefix = "UDHAYAM_"

// FestStartLayout is the wall-clock layout of fest_start.
const FestStartLayout = "2006-01-02T15:04"

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username" koanf:"username"`
	Password string `yaml:"password" json:"password" koanf:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen" koanf:"listen"`

	// Timezone is the IANA timezone the festival runs in.
	Timezone string `yaml:"timezone" json:"timezone" koanf:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level" koanf:"log_level"`

	FestName string `yaml:"fest_name" json:"fest_name" koanf:"fest_name"`

	// FestStart is the opening of day 1 in Timezone, "2006-01-02T15:04".
	FestStart string `yaml:"fest_start" json:"fest_start" koanf:"fest_start"`
	FestDays  int    `yaml:"fest_days" json:"fest_days" koanf:"fest_days"`

	// CatalogPath, if set, replaces the embedded catalog with a local file.
	// CatalogURL is used when CatalogPath is empty.
	CatalogPath     string `yaml:"catalog_path" json:"catalog_path" koanf:"catalog_path"`
	CatalogURL      string `yaml:"catalog_url" json:"catalog_url" koanf:"catalog_url"`
	CatalogCacheDir string `yaml:"catalog_cache_dir" json:"catalog_cache_dir" koanf:"catalog_cache_dir"`

	// CatalogReload is a cron-style schedule string (e.g. "*/5 * * * *").
	CatalogReload string `yaml:"catalog_reload" json:"catalog_reload" koanf:"catalog_reload"`

	// TimePolicy is "lenient" or "strict".
	TimePolicy string `yaml:"time_policy" json:"time_policy" koanf:"time_policy"`

	// Metrics exposes /metrics when true.
	Metrics bool `yaml:"metrics" json:"metrics" koanf:"metrics"`

	// CaptureOutput is where -capture writes the PNG poster.
	CaptureOutput string `yaml:"capture_output" json:"capture_output" koanf:"capture_output"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty" koanf:"basic_auth"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:8080",
		Timezone:        "Asia/Kolkata",
		LogLevel:        "info",
		FestName:        "UDHAYAM 2K26",
		FestStart:       "2026-03-06T09:00",
		FestDays:        2,
		CatalogCacheDir: "./var/catalog-cache",
		CatalogReload:   "*/5 * * * *",
		TimePolicy:      "lenient",
		Metrics:         true,
		CaptureOutput:   "./var/schedule.png",
		BasicAuth:       nil,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.FestName == "" {
		c.FestName = d.FestName
	}
	if c.FestStart == "" {
		c.FestStart = d.FestStart
	}
	if c.FestDays <= 0 {
		c.FestDays = d.FestDays
	}
	if c.CatalogCacheDir == "" {
		c.CatalogCacheDir = d.CatalogCacheDir
	}
	if c.CatalogReload == "" {
		c.CatalogReload = d.CatalogReload
	}
	c.TimePolicy = strings.ToLower(strings.TrimSpace(c.TimePolicy))
	if c.TimePolicy == "" {
		c.TimePolicy = d.TimePolicy
	}
	if c.CaptureOutput == "" {
		c.CaptureOutput = d.CaptureOutput
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// Validate reports values Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	switch c.TimePolicy {
	case "lenient", "strict":
	default:
		errs = append(errs, fmt.Errorf("time_policy: want lenient or strict, got %q", c.TimePolicy))
	}
	if _, err := c.FestStartTime(); err != nil {
		errs = append(errs, err)
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" {
		errs = append(errs, errors.New("basic_auth: username is required"))
	}
	return errors.Join(errs...)
}

// Location loads Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

// FestStartTime returns the opening of day 1 in the festival's timezone.
func (c *Config) FestStartTime() (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(FestStartLayout, c.FestStart, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("fest_start: %w", err)
	}
	return t, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms first.
//   - The file is layered over the defaults, then UDHAYAM_* environment
//     variables over the file. Environment overrides are not saved back.
//   - The result is normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		// First run: create default config file.
		if err := Save(path, DefaultConfig()); err != nil {
			return nil, err
		}
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *DefaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".udhayam-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
