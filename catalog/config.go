/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package catalog

import (
	"errors"
	"time"

	"github.com/vahairstudio/site-api/acuity"
	"github.com/vahairstudio/site-api/config"
)

const cfgDefaultKeyPrefix = "catalog"

const (
	cfgKeyFallbackStylists = "fallbackStylists"
	cfgKeyWarmUpInterval   = "warmUpInterval"
)

// DefaultWarmUpInterval is shorter than the stylists TTL, so a warm-up sees each entry expire.
const DefaultWarmUpInterval = 10 * time.Minute

// Config represents a set of configuration parameters for the catalog.
type Config struct {
	// FallbackStylists are served by /api/stylists when Acuity cannot be reached.
	FallbackStylists []acuity.StylistProfile

	// WarmUpInterval is the period of the background refresh. Zero disables it.
	WarmUpInterval time.Duration

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config with the "catalog" key prefix.
func NewConfig() *Config {
	return &Config{keyPrefix: cfgDefaultKeyPrefix}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults is part of config interface implementation.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyWarmUpInterval, DefaultWarmUpInterval)
}

// Set is part of config interface implementation.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	if c.WarmUpInterval, err = dp.GetDuration(cfgKeyWarmUpInterval); err != nil {
		return err
	}
	if c.WarmUpInterval < 0 {
		return dp.WrapKeyErr(cfgKeyWarmUpInterval, errors.New("must not be negative"))
	}

	c.FallbackStylists = nil
	if err = dp.UnmarshalKey(cfgKeyFallbackStylists, &c.FallbackStylists); err != nil {
		return err
	}
	for _, p := range c.FallbackStylists {
		if p.ID <= 0 || p.Name == "" {
			return dp.WrapKeyErr(cfgKeyFallbackStylists, errors.New("each stylist needs a positive id and a name"))
		}
	}
	return nil
}

// Stylists returns the fallback stylists in their served form.
func (c *Config) Stylists() []acuity.Stylist {
	return acuity.FallbackStylists(c.FallbackStylists)
}
