package config

import (
	"github.com/spf13/pflag"
)

// Flag names registered by RegisterFlags.
const (
	FlagConfig   = "config"
	FlagServer   = "server"
	FlagTimeout  = "timeout"
	FlagDB       = "db"
	FlagOut      = "out"
	FlagVerbose  = "verbose"
	FlagS3Bucket = "s3-bucket"
	FlagS3Prefix = "s3-prefix"
)

// RegisterFlags adds the configuration flags to fs. Defaults are left empty;
// only flags the user actually set override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagConfig, "c", "", "path to a JSON or YAML config file")
	fs.StringP(FlagServer, "a", "", "base URL of the story extraction service (default "+DefaultServerURL+")")
	fs.Duration(FlagTimeout, 0, "timeout of a single request (default 2m)")
	fs.String(FlagDB, "", "path of the local state database")
	fs.String(FlagOut, "", "directory exports are written to")
	fs.BoolP(FlagVerbose, "v", false, "enable debug logging")
	fs.String(FlagS3Bucket, "", "upload exports to this S3 bucket instead of a directory")
	fs.String(FlagS3Prefix, "", "key prefix for S3 exports")
}

// parseFlags copies the flags the user set into cfg.
func parseFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error

	str := func(name string, dst *string) {
		if err != nil || fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		*dst, err = fs.GetString(name)
	}

	str(FlagServer, &cfg.ServerURL)
	str(FlagDB, &cfg.DBPath)
	str(FlagOut, &cfg.ExportDir)
	str(FlagS3Bucket, &cfg.S3.Bucket)
	str(FlagS3Prefix, &cfg.S3.Prefix)

	if err == nil && fs.Lookup(FlagTimeout) != nil && fs.Changed(FlagTimeout) {
		cfg.RequestTimeout, err = fs.GetDuration(FlagTimeout)
	}
	if err == nil && fs.Lookup(FlagVerbose) != nil && fs.Changed(FlagVerbose) {
		cfg.Verbose, err = fs.GetBool(FlagVerbose)
	}
	return err
}
