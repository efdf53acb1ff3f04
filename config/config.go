// Package config loads fusion service configuration from an optional file
// and the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonwraymond/fusionapi/cache"
	"github.com/jonwraymond/fusionapi/catalog"
	"github.com/jonwraymond/fusionapi/observe"
	"github.com/jonwraymond/fusionapi/secret"
	"github.com/jonwraymond/fusionapi/weather"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FUSION"

// Config aggregates configuration for the service.
type Config struct {
	Store   StoreConfig    `mapstructure:"store"`
	Cache   CacheConfig    `mapstructure:"cache"`
	SWAPI   SWAPIConfig    `mapstructure:"swapi"`
	Weather WeatherConfig  `mapstructure:"weather"`
	Observe observe.Config `mapstructure:"observe"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	// UseDynamoDB selects DynamoDB; otherwise records live in memory.
	UseDynamoDB bool   `mapstructure:"use_dynamodb"`
	Table       string `mapstructure:"table"`
	Region      string `mapstructure:"region"`
	// Endpoint overrides the DynamoDB endpoint, e.g. DynamoDB Local.
	Endpoint string `mapstructure:"endpoint"`
	// CompressAbove is the payload size in bytes above which DynamoDB
	// payloads are stored compressed.
	CompressAbove int `mapstructure:"compress_above"`
}

// CacheConfig sets cache lifetimes.
type CacheConfig struct {
	TTL              time.Duration `mapstructure:"ttl"`
	ListTTL          time.Duration `mapstructure:"list_ttl"`
	HistoryRetention time.Duration `mapstructure:"history_retention"`
}

// SWAPIConfig configures the character catalog client.
type SWAPIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerOpenFor  time.Duration `mapstructure:"breaker_open_for"`
}

// WeatherConfig configures the weather client.
type WeatherConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// APIKey may be a literal, "${VAR}" or a "secretref:" reference.
	APIKey          string `mapstructure:"api_key"`
	FallbackOnError bool   `mapstructure:"fallback_on_error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	policy := cache.DefaultPolicy()
	return &Config{
		Store: StoreConfig{
			Table:  "fusion-api-dev",
			Region: "us-east-1",
		},
		Cache: CacheConfig{
			TTL:              policy.DefaultTTL,
			ListTTL:          policy.ListTTL,
			HistoryRetention: policy.HistoryRetention,
		},
		SWAPI: SWAPIConfig{
			BaseURL:         catalog.DefaultBaseURL,
			Timeout:         10 * time.Second,
			MaxAttempts:     3,
			BreakerFailures: 5,
			BreakerOpenFor:  30 * time.Second,
		},
		Weather: WeatherConfig{
			BaseURL:         weather.DefaultBaseURL,
			Timeout:         10 * time.Second,
			FallbackOnError: true,
		},
		Observe: observe.Config{
			ServiceName: "fusionapi",
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1.0},
			Metrics:     observe.MetricsConfig{Exporter: "none"},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info", Format: "json"},
		},
	}
}

// legacyEnv maps the environment names of the original deployment onto
// configuration keys. The FUSION_ form takes precedence.
var legacyEnv = map[string]string{
	"store.use_dynamodb": "USE_REAL_DYNAMODB",
	"store.table":        "DYNAMODB_TABLE",
	"store.region":       "AWS_REGION",
	"store.endpoint":     "DYNAMODB_ENDPOINT",
	"weather.api_key":    "OPENWEATHER_API_KEY",
}

// Load reads configuration from path (or ./fusion.yaml when path is empty
// and the file exists) and environment variables. Environment variables
// use the prefix "FUSION" and the dot character in keys is replaced by an
// underscore, so "store.table" becomes "FUSION_STORE_TABLE".
//
// CACHE_TTL, when set and FUSION_CACHE_TTL is not, is read as a number of
// seconds.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fusion")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)
	for key, legacy := range legacyEnv {
		_ = v.BindEnv(key, envName(key), legacy)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if _, set := os.LookupEnv(envName("cache.ttl")); !set {
		if raw, ok := os.LookupEnv("CACHE_TTL"); ok {
			secs, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("config: CACHE_TTL must be whole seconds: %w", err)
			}
			cfg.Cache.TTL = time.Duration(secs) * time.Second
		}
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Store.UseDynamoDB {
		if c.Store.Table == "" {
			return errors.New("config: store.table is required with DynamoDB")
		}
		if c.Store.Region == "" {
			return errors.New("config: store.region is required with DynamoDB")
		}
	}
	if c.Store.CompressAbove < 0 {
		return errors.New("config: store.compress_above must not be negative")
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.SWAPI.BaseURL == "" || c.Weather.BaseURL == "" {
		return errors.New("config: upstream base URLs are required")
	}
	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Policy returns the cache lifetimes as a cache.Policy.
func (c *Config) Policy() cache.Policy {
	return cache.Policy{
		DefaultTTL:       c.Cache.TTL,
		ListTTL:          c.Cache.ListTTL,
		HistoryRetention: c.Cache.HistoryRetention,
	}
}

// ResolveSecrets replaces secret references in the configuration with
// their values.
func (c *Config) ResolveSecrets(ctx context.Context, r *secret.Resolver) error {
	key, err := r.ResolveValue(ctx, c.Weather.APIKey)
	if err != nil {
		return fmt.Errorf("config: weather.api_key: %w", err)
	}
	c.Weather.APIKey = key
	return nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(append([]string(nil), parts...), tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
