package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storygen/internal/common"
)

// isolate points the XDG lookups at a temp dir so a developer's real config
// file does not leak into tests.
func isolate(t *testing.T) {
	t.Helper()
	orig := defaultConfigFile
	t.Cleanup(func() { defaultConfigFile = orig })
	missing := filepath.Join(t.TempDir(), "none.yaml")
	defaultConfigFile = func() string { return missing }

	for _, k := range []string{EnvServerURL, EnvS3Bucket, EnvS3AccessKey, EnvS3SecretKey} {
		t.Setenv(k, "")
	}
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8000", c.ServerURL)
	assert.Equal(t, 2*time.Minute, c.RequestTimeout)
	assert.Equal(t, filepath.Join(DataDir(), "state.db"), c.DBPath)
	assert.Equal(t, ".", c.ExportDir)
	assert.False(t, c.S3.Enabled())
	require.NoError(t, c.Validate())
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_JSONFile(t *testing.T) {
	isolate(t)
	p := writeFile(t, "cfg.json", `{"server_url":"https://api.example.com","request_timeout":"90s","export_dir":"out"}`)

	cfg, err := LoadConfig(newFlags(t, "--config", p))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.ServerURL)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "out", cfg.ExportDir)
	assert.Equal(t, filepath.Join(DataDir(), "state.db"), cfg.DBPath)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	isolate(t)
	p := writeFile(t, "cfg.yaml", `
server_url: http://10.0.0.5:8000
request_timeout: 30000000000
verbose: true
s3:
  bucket: stories
  region: eu-central-1
  endpoint: http://127.0.0.1:9000
  prefix: exports
`)

	cfg, err := LoadConfig(newFlags(t, "-c", p))
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8000", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, S3Config{Bucket: "stories", Region: "eu-central-1", Endpoint: "http://127.0.0.1:9000", Prefix: "exports"}, cfg.S3)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoadConfig_DefaultFileIsUsedWhenPresent(t *testing.T) {
	isolate(t)
	p := writeFile(t, "config.yaml", "export_dir: from-default\n")
	defaultConfigFile = func() string { return p }

	cfg, err := LoadConfig(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "from-default", cfg.ExportDir)
}

func TestLoadConfig_Precedence(t *testing.T) {
	isolate(t)
	p := writeFile(t, "cfg.json", `{"server_url":"http://file:8000","db_path":"/tmp/file.db"}`)
	t.Setenv(EnvServerURL, "http://env:8000")
	t.Setenv(EnvS3Bucket, "env-bucket")

	cfg, err := LoadConfig(newFlags(t, "-c", p))
	require.NoError(t, err)
	assert.Equal(t, "http://env:8000", cfg.ServerURL)
	assert.Equal(t, "/tmp/file.db", cfg.DBPath)
	assert.Equal(t, "env-bucket", cfg.S3.Bucket)

	cfg, err = LoadConfig(newFlags(t, "-c", p, "-a", "http://flag:8000", "--timeout", "5s", "--db", "/tmp/flag.db", "--out", "exports", "-v", "--s3-bucket", "flag-bucket", "--s3-prefix", "p"))
	require.NoError(t, err)
	assert.Equal(t, "http://flag:8000", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/flag.db", cfg.DBPath)
	assert.Equal(t, "exports", cfg.ExportDir)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "flag-bucket", cfg.S3.Bucket)
	assert.Equal(t, "p", cfg.S3.Prefix)
}

func TestLoadConfig_Errors(t *testing.T) {
	isolate(t)

	_, err := LoadConfig(newFlags(t, "-c", filepath.Join(t.TempDir(), "missing.json")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")

	p := writeFile(t, "bad.json", `{"request_timeout":"soon"}`)
	_, err = LoadConfig(newFlags(t, "-c", p))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	_, err = LoadConfig(newFlags(t, "-a", "ftp://x"))
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = LoadConfig(newFlags(t, "--timeout", "10ms"))
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"https", func(c *Config) { c.ServerURL = "https://stories.example.com/api" }, false},
		{"empty url", func(c *Config) { c.ServerURL = "" }, true},
		{"not a url", func(c *Config) { c.ServerURL = "::::" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"no db", func(c *Config) { c.DBPath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
