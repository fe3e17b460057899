package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// DefaultEndpoint is the hosted platform GraphQL endpoint used when no
// override is configured.
const DefaultEndpoint = "https://cloud.labelforge.ai/api/v2/graphql"

type Config struct {
	API    APIConfig
	Upload UploadConfig
	Logger LoggerConfig
}

type APIConfig struct {
	Endpoint  string
	Key       string
	Timeout   time.Duration
	VerifySSL bool
}

type UploadConfig struct {
	Concurrency int
	BatchSize   int
}

type LoggerConfig struct {
	Level  string
	Format string
}

var ErrMissingAPIKey = errors.New("missing API key (set LABELFORGE_API_KEY)")

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("LABELFORGE_API_ENDPOINT", DefaultEndpoint)
	v.SetDefault("LABELFORGE_HTTP_TIMEOUT", "30s")
	v.SetDefault("LABELFORGE_VERIFY_SSL", true)
	v.SetDefault("LABELFORGE_UPLOAD_CONCURRENCY", 4)
	v.SetDefault("LABELFORGE_IMPORT_BATCH_SIZE", 100)
	v.SetDefault("LABELFORGE_LOGGER_LEVEL", "info")
	v.SetDefault("LABELFORGE_LOGGER_FORMAT", "text")

	// Env
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("LABELFORGE_HTTP_TIMEOUT"))
	if err != nil {
		timeout = 30 * time.Second
	}

	cfg := &Config{
		API: APIConfig{
			Endpoint:  v.GetString("LABELFORGE_API_ENDPOINT"),
			Key:       v.GetString("LABELFORGE_API_KEY"),
			Timeout:   timeout,
			VerifySSL: v.GetBool("LABELFORGE_VERIFY_SSL"),
		},
		Upload: UploadConfig{
			Concurrency: v.GetInt("LABELFORGE_UPLOAD_CONCURRENCY"),
			BatchSize:   v.GetInt("LABELFORGE_IMPORT_BATCH_SIZE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LABELFORGE_LOGGER_LEVEL"),
			Format: v.GetString("LABELFORGE_LOGGER_FORMAT"),
		},
	}

	if cfg.Upload.Concurrency < 1 {
		cfg.Upload.Concurrency = 1
	}
	if cfg.Upload.BatchSize < 1 {
		cfg.Upload.BatchSize = 100
	}

	return cfg, nil
}

// Validate checks the fields required to talk to the platform. Load does not
// call it so that commands that never hit the API (e.g. listing the local
// import journal) can run without credentials.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return ErrMissingAPIKey
	}
	return nil
}
