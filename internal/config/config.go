// Package config loads the gateway configuration once at process start.
//
// Sources, lowest precedence first:
//
//	defaults
//	.env in the working directory (optional)
//	YAML file named by GATEWAY_CONFIG (optional)
//	environment variables
//
// The resulting Config is treated as immutable by the rest of the program.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers understood by storage.Open.
const (
	DriverMinio    = "minio"
	DriverS3       = "s3"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all runtime configuration for the gateway.
//
// YAML example:
//
//	apiKey: "change-me"
//	addr: ":8080"
//	adminAddr: ":9090"
//	storage:
//	  driver: minio
//	  endpoint: "http://minio:9000"
//	  accessKey: "minioadmin"
//	  secretKey: "minioadmin"
//	  bucket: "files"
type Config struct {
	APIKey         string        `yaml:"apiKey"`
	Addr           string        `yaml:"addr"`
	AdminAddr      string        `yaml:"adminAddr"` // empty disables the admin listener
	Env            string        `yaml:"env"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes"` // 0 means no limit
	Log            LogConfig     `yaml:"log"`
	Storage        StorageConfig `yaml:"storage"`
	Tracing        TracingConfig `yaml:"tracing"`
}

// LogConfig selects log output format and level.
type LogConfig struct {
	Format string `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`
}

// StorageConfig describes the object-storage binding.
type StorageConfig struct {
	Driver       string `yaml:"driver"`
	Endpoint     string `yaml:"endpoint"` // host:port or URL; minio and custom s3 endpoints
	AccessKey    string `yaml:"accessKey"`
	SecretKey    string `yaml:"secretKey"`
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	CreateBucket bool   `yaml:"createBucket"`
	DatabaseURL  string `yaml:"databaseURL"`
}

// TracingConfig controls OpenTelemetry export. Tracing is off when Endpoint is empty.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	SampleRate  float64 `yaml:"sampleRate"`
	ServiceName string  `yaml:"serviceName"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return t.Endpoint != ""
}

// IsProduction reports whether the gateway runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Addr:      ":8080",
		AdminAddr: ":9090",
		Env:       "development",
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Storage: StorageConfig{
			Driver: DriverMinio,
			Region: "us-east-1",
		},
		Tracing: TracingConfig{
			SampleRate:  1.0,
			ServiceName: "file-gateway",
		},
	}
}

// LoadDotEnv reads .env from the working directory into the process
// environment without overriding variables that are already set.
func LoadDotEnv() error {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load builds and validates the configuration.
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := Default()
	if path := os.Getenv("GATEWAY_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	v := NewValidator()
	cfg.applyEnv(v)
	cfg.validate(v)
	if v.HasErrors() {
		return nil, errors.New(v.ErrorString())
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(v *Validator) {
	setString(&c.APIKey, "GATEWAY_API_KEY")
	setString(&c.Addr, "GATEWAY_ADDR")
	setString(&c.AdminAddr, "GATEWAY_ADMIN_ADDR")
	setString(&c.Env, "GATEWAY_ENV")
	setInt64(v, &c.MaxUploadBytes, "GATEWAY_MAX_UPLOAD_BYTES")

	setString(&c.Log.Format, "GATEWAY_LOG_FORMAT")
	setString(&c.Log.Level, "GATEWAY_LOG_LEVEL")

	setString(&c.Storage.Driver, "GATEWAY_STORAGE_DRIVER")
	setString(&c.Storage.Endpoint, "GATEWAY_S3_ENDPOINT")
	setString(&c.Storage.AccessKey, "GATEWAY_S3_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "GATEWAY_S3_SECRET_KEY")
	setString(&c.Storage.Region, "GATEWAY_S3_REGION")
	setString(&c.Storage.Prefix, "GATEWAY_S3_PREFIX")
	setString(&c.Storage.Bucket, "GATEWAY_BUCKET")
	setBool(v, &c.Storage.CreateBucket, "GATEWAY_BUCKET_CREATE")
	setString(&c.Storage.DatabaseURL, "DATABASE_URL")

	setString(&c.Tracing.Endpoint, "GATEWAY_OTLP_ENDPOINT")
	setFloat(v, &c.Tracing.SampleRate, "GATEWAY_TRACING_SAMPLE_RATE")
	setString(&c.Tracing.ServiceName, "GATEWAY_SERVICE_NAME")

	// Production always logs JSON.
	if c.IsProduction() {
		c.Log.Format = "json"
	}
}

// Validate checks a fully assembled configuration.
func (c *Config) Validate() error {
	v := NewValidator()
	c.validate(v)
	if v.HasErrors() {
		return errors.New(v.ErrorString())
	}
	return nil
}

func (c *Config) validate(v *Validator) {
	v.Required("GATEWAY_API_KEY", c.APIKey)
	v.Required("GATEWAY_ADDR", c.Addr)
	v.Address("GATEWAY_ADDR", c.Addr)
	v.Address("GATEWAY_ADMIN_ADDR", c.AdminAddr)
	v.NonNegative("GATEWAY_MAX_UPLOAD_BYTES", c.MaxUploadBytes)

	v.Enum("GATEWAY_ENV", c.Env, []string{"development", "staging", "production", "test"})
	v.Enum("GATEWAY_LOG_FORMAT", c.Log.Format, []string{"json", "text"})
	v.Enum("GATEWAY_LOG_LEVEL", c.Log.Level, []string{"debug", "info", "warn", "error"})
	v.Ratio("GATEWAY_TRACING_SAMPLE_RATE", c.Tracing.SampleRate)

	switch c.Storage.Driver {
	case DriverMinio:
		v.Required("GATEWAY_S3_ENDPOINT", c.Storage.Endpoint)
		v.Required("GATEWAY_S3_ACCESS_KEY", c.Storage.AccessKey)
		v.Required("GATEWAY_S3_SECRET_KEY", c.Storage.SecretKey)
		v.Required("GATEWAY_BUCKET", c.Storage.Bucket)
		if strings.Contains(c.Storage.Endpoint, "://") {
			v.URL("GATEWAY_S3_ENDPOINT", c.Storage.Endpoint, "http", "https")
		}
	case DriverS3:
		v.Required("GATEWAY_BUCKET", c.Storage.Bucket)
		v.URL("GATEWAY_S3_ENDPOINT", c.Storage.Endpoint, "http", "https")
	case DriverPostgres:
		v.Required("DATABASE_URL", c.Storage.DatabaseURL)
		v.URL("DATABASE_URL", c.Storage.DatabaseURL, "postgres", "postgresql")
	case DriverMemory:
	default:
		v.Enum("GATEWAY_STORAGE_DRIVER", c.Storage.Driver,
			[]string{DriverMinio, DriverS3, DriverPostgres, DriverMemory})
	}
}

// setString overrides dst when key is present in the environment, even if
// empty, so GATEWAY_ADMIN_ADDR= can switch the admin listener off.
func setString(dst *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(val)
	}
}

func setInt64(v *Validator, dst *int64, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		v.AddError(key, "must be a valid integer")
		return
	}
	*dst = n
}

func setFloat(v *Validator, dst *float64, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		v.AddError(key, "must be a valid number")
		return
	}
	*dst = f
}

func setBool(v *Validator, dst *bool, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		v.AddError(key, "must be true or false")
		return
	}
	*dst = b
}
