// Package config loads runtime configuration for the storygen CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file: --config/-c, or ~/.config/storygen/config.yaml
//     when present. Files ending in .yaml/.yml are YAML, anything else JSON.
//  3. Environment: STORYGEN_API_BASE and the STORYGEN_S3_* variables.
//  4. Command-line flags (see RegisterFlags), which override everything.
//
// # File schema
//
//	server_url: http://localhost:8000
//	request_timeout: 2m
//	db_path: /home/me/.local/share/storygen/state.db
//	export_dir: ./out
//	verbose: false
//	s3:
//	  bucket: stories
//	  region: eu-central-1
//	  endpoint: http://127.0.0.1:9000
//	  access_key: minio
//	  secret_key: minio123
//	  prefix: exports
//
// Durations accept either strings like "90s" or integer nanoseconds.
package config
