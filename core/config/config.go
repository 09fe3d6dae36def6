package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"post-sieve/core/classify"
	"post-sieve/core/logger"
	"post-sieve/core/oracle"
	"post-sieve/core/server"
	"post-sieve/core/storage"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Oracle selects and configures the classification backend.
	Oracle oracle.Config `mapstructure:"oracle"`
	// Dispatch holds configuration for the classification worker pool.
	Dispatch classify.Config `mapstructure:"dispatch"`
	// Storage holds configuration for s3:// inputs.
	Storage storage.Config `mapstructure:"storage"`
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig loads configuration from the .env file, an optional config.yaml
// in path, and environment variables, in increasing priority.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()

	// 2. Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// 3. Layer config.yaml over the defaults when present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// 4. Map environment variables to nested keys (e.g. DISPATCH_CONCURRENCY -> dispatch.concurrency)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the value constraints declared on the config structs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
