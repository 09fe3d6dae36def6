// Package config provides configuration management for post-sieve.
//
// It uses Viper to merge, from lowest to highest priority, the `default` struct
// tags, an optional config.yaml, a .env file and environment variables. Nested
// keys map to env vars with underscores (oracle.api_key -> ORACLE_API_KEY).
// Command-line flags are applied on top by the cmd package.
//
// # Configuration Structure
//
//   - Log: level and format
//   - Oracle: provider, model, credentials, prompt template
//   - Dispatch: worker count, dedupe, durable writes, progress interval
//   - Storage: S3/MinIO credentials for s3:// inputs
//   - Server: port, API key and upload limits for the serve command
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
