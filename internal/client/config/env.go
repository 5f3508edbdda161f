package config

import "os"

// Environment variables read by LoadConfig.
const (
	EnvServerURL   = "STORYGEN_API_BASE"
	EnvS3Bucket    = "STORYGEN_S3_BUCKET"
	EnvS3AccessKey = "STORYGEN_S3_ACCESS_KEY"
	EnvS3SecretKey = "STORYGEN_S3_SECRET_KEY"
)

func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvServerURL); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv(EnvS3Bucket); ok && v != "" {
		cfg.S3.Bucket = v
	}
	if v, ok := os.LookupEnv(EnvS3AccessKey); ok && v != "" {
		cfg.S3.AccessKey = v
	}
	if v, ok := os.LookupEnv(EnvS3SecretKey); ok && v != "" {
		cfg.S3.SecretKey = v
	}
}
