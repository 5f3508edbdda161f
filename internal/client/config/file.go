package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/storygen/internal/timex"
)

// FileConfig is the DTO decoded from a config file. JSON and YAML share the
// same keys; durations use timex.Duration so "90s" and nanoseconds both work.
// Only fields present in the file override earlier values.
type FileConfig struct {
	ServerURL      *string         `json:"server_url" yaml:"server_url"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	DBPath         *string         `json:"db_path" yaml:"db_path"`
	ExportDir      *string         `json:"export_dir" yaml:"export_dir"`
	Verbose        *bool           `json:"verbose" yaml:"verbose"`
	S3             *FileS3Config   `json:"s3" yaml:"s3"`
}

type FileS3Config struct {
	Bucket    string `json:"bucket" yaml:"bucket"`
	Region    string `json:"region" yaml:"region"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	Prefix    string `json:"prefix" yaml:"prefix"`
}

// DefaultConfigFile is read when no --config flag is given and it exists.
func DefaultConfigFile() string {
	return defaultConfigFile()
}

var defaultConfigFile = func() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func decodeFile(path string, data []byte, fc *FileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, fc)
	default:
		return json.Unmarshal(data, fc)
	}
}

// parseFile overlays cfg with the values set in the file at path.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	if err := decodeFile(path, data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.ServerURL != nil {
		cfg.ServerURL = *fc.ServerURL
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.DBPath != nil {
		cfg.DBPath = *fc.DBPath
	}
	if fc.ExportDir != nil {
		cfg.ExportDir = *fc.ExportDir
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.S3 != nil {
		cfg.S3 = S3Config(*fc.S3)
	}
	return nil
}

// configFilePath resolves the file to load: the --config flag if set,
// otherwise DefaultConfigFile when it exists, otherwise "".
func configFilePath(flags *pflag.FlagSet) (string, error) {
	if flags != nil {
		if p, err := flags.GetString(FlagConfig); err == nil && p != "" {
			return p, nil
		}
	}

	p := defaultConfigFile()
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat %s: %w", p, err)
	}
	return p, nil
}
