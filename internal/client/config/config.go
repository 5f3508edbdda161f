package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/storygen/internal/common"
)

const AppName = "storygen"

const (
	DefaultServerURL      = "http://localhost:8000"
	DefaultRequestTimeout = 2 * time.Minute
	DefaultExportDir      = "."
)

// S3Config selects the optional S3 export destination. An empty Bucket
// disables it.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Config holds runtime settings for the storygen CLI.
//
// Fields:
//   - ServerURL: base URL of the story extraction service.
//   - RequestTimeout: upper bound for one HTTP call, upload included.
//   - DBPath: SQLite file holding the credential.
//   - ExportDir: where exports land when S3 is not configured.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	DBPath         string
	ExportDir      string
	Verbose        bool
	S3             S3Config
}

// DataDir is the per-user data directory, e.g. ~/.local/share/storygen.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ConfigDir is the per-user config directory, e.g. ~/.config/storygen.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = DefaultServerURL
	c.RequestTimeout = DefaultRequestTimeout
	c.DBPath = filepath.Join(DataDir(), "state.db")
	c.ExportDir = DefaultExportDir
	c.Verbose = false
	c.S3 = S3Config{}
}

// LoadConfig builds a Config from defaults, then the config file, then the
// environment, then the flags in fs. Later sources take precedence. fs must
// have been set up with RegisterFlags and parsed; it may be nil.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := configFilePath(fs)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}

	parseEnv(cfg)

	if fs != nil {
		if err := parseFlags(cfg, fs); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the server URL and the timeout.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.ServerURL, validation.Required, is.URL, validation.By(httpScheme)),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.DBPath, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: config: %w", common.ErrValidation, err)
	}
	return nil
}

func httpScheme(value any) error {
	u, err := url.Parse(value.(string))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_scheme", "must be an http or https URL")
	}
	return nil
}
