/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package shardedcache

import (
	"fmt"
	"time"

	"github.com/acronis/go-cachekit/config"
	"github.com/acronis/go-cachekit/lrucache"
)

const cfgDefaultKeyPrefix = "cache"

const (
	cfgKeyMaxEntries           = "maxEntries"
	cfgKeyShardCount           = "shardCount"
	cfgKeyStatsLoggingInterval = "statsLoggingInterval"
)

// DefaultStatsLoggingInterval is a default interval between logging the aggregated cache statistics.
const DefaultStatsLoggingInterval = time.Minute

// Config represents a set of configuration parameters for ShardedCache.
// Configuration can be loaded in different formats (YAML, JSON) using config.Loader, viper,
// or with json.Unmarshal/yaml.Unmarshal functions directly.
type Config struct {
	// MaxEntries is the total maximum number of entries the cache can hold before it starts evicting.
	MaxEntries int `mapstructure:"maxEntries" yaml:"maxEntries" json:"maxEntries"`

	// ShardCount is the number of shards the cache is split into, rounded up to a power of two.
	// If zero, DefaultShardCount is used.
	ShardCount int `mapstructure:"shardCount" yaml:"shardCount" json:"shardCount"`

	// StatsLoggingInterval is the interval between logging the aggregated cache statistics
	// (see ShardedCache.RunPeriodicStatsLogging). If zero, stats logging is disabled.
	StatsLoggingInterval config.TimeDuration `mapstructure:"statsLoggingInterval" yaml:"statsLoggingInterval" json:"statsLoggingInterval"`

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// ConfigOption is a type for functional options for the Config.
type ConfigOption func(*configOptions)

type configOptions struct {
	keyPrefix string
}

// WithKeyPrefix returns a ConfigOption that sets a key prefix for parsing configuration parameters.
// This prefix will be used by config.Loader.
func WithKeyPrefix(keyPrefix string) ConfigOption {
	return func(o *configOptions) {
		o.keyPrefix = keyPrefix
	}
}

// NewConfig creates a new instance of the Config.
func NewConfig(options ...ConfigOption) *Config {
	opts := configOptions{keyPrefix: cfgDefaultKeyPrefix}
	for _, opt := range options {
		opt(&opts)
	}
	return &Config{keyPrefix: opts.keyPrefix}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig(options ...ConfigOption) *Config {
	opts := configOptions{keyPrefix: cfgDefaultKeyPrefix}
	for _, opt := range options {
		opt(&opts)
	}
	return &Config{
		keyPrefix:            opts.keyPrefix,
		MaxEntries:           lrucache.DefaultMaxEntries,
		ShardCount:           DefaultShardCount,
		StatsLoggingInterval: config.TimeDuration(DefaultStatsLoggingInterval),
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
// Implements config.KeyPrefixProvider interface.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for ShardedCache in config.DataProvider.
// Implements config.Config interface.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyMaxEntries, lrucache.DefaultMaxEntries)
	dp.SetDefault(cfgKeyShardCount, DefaultShardCount)
	dp.SetDefault(cfgKeyStatsLoggingInterval, DefaultStatsLoggingInterval)
}

// Set sets ShardedCache configuration values from config.DataProvider.
// Implements config.Config interface.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if c.MaxEntries, err = dp.GetInt(cfgKeyMaxEntries); err != nil {
		return err
	}
	if c.MaxEntries <= 0 {
		return dp.WrapKeyErr(cfgKeyMaxEntries, fmt.Errorf("must be greater than 0"))
	}

	if c.ShardCount, err = dp.GetInt(cfgKeyShardCount); err != nil {
		return err
	}
	if c.ShardCount < 0 {
		return dp.WrapKeyErr(cfgKeyShardCount, fmt.Errorf("must be greater or equal to 0"))
	}

	var interval time.Duration
	if interval, err = dp.GetDuration(cfgKeyStatsLoggingInterval); err != nil {
		return err
	}
	if interval < 0 {
		return dp.WrapKeyErr(cfgKeyStatsLoggingInterval, fmt.Errorf("must be greater or equal to 0"))
	}
	c.StatsLoggingInterval = config.TimeDuration(interval)

	return nil
}
