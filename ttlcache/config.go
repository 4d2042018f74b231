/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ttlcache

import (
	"github.com/vahairstudio/site-api/config"
)

const cfgDefaultKeyPrefix = "cache"

const cfgKeySingleFlight = "singleFlight"

// Config represents a set of configuration parameters for the catalog caches.
type Config struct {
	// SingleFlight makes concurrent misses for one key share a single fetch. Disabled by default.
	SingleFlight bool

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config with the "cache" key prefix.
func NewConfig() *Config {
	return NewConfigWithKeyPrefix(cfgDefaultKeyPrefix)
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	return &Config{keyPrefix: keyPrefix}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults is part of config interface implementation.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeySingleFlight, false)
}

// Set is part of config interface implementation.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	c.SingleFlight, err = dp.GetBool(cfgKeySingleFlight)
	return err
}

// Options returns cache options that reflect the configuration.
func (c *Config) Options() Options {
	return Options{SingleFlight: c.SingleFlight}
}
