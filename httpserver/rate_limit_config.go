/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpserver

import (
	"errors"
	"time"

	"github.com/vahairstudio/site-api/config"
	"github.com/vahairstudio/site-api/internal/ratelimit"
)

const cfgRateLimitDefaultKeyPrefix = "rateLimit"

const (
	cfgKeyRateLimitLimit           = "limit"
	cfgKeyRateLimitWindow          = "window"
	cfgKeyRateLimitExcludedClients = "excludedClients"
	cfgKeyRateLimitDryRun          = "dryRun"
)

// Defaults of the per-route rate limit.
const (
	DefaultRateLimitCount  = 120
	DefaultRateLimitWindow = time.Minute
)

// RateLimitConfig represents the limits applied to each public API route and client.
type RateLimitConfig struct {
	Limit           int                 `mapstructure:"limit" yaml:"limit" json:"limit"`
	Window          config.TimeDuration `mapstructure:"window" yaml:"window" json:"window"`
	ExcludedClients []string            `mapstructure:"excludedClients" yaml:"excludedClients" json:"excludedClients"`
	DryRun          bool                `mapstructure:"dryRun" yaml:"dryRun" json:"dryRun"`

	keyPrefix string
}

var _ config.Config = (*RateLimitConfig)(nil)
var _ config.KeyPrefixProvider = (*RateLimitConfig)(nil)

// NewRateLimitConfig creates a new instance of the RateLimitConfig with the "rateLimit" key prefix.
func NewRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{keyPrefix: cfgRateLimitDefaultKeyPrefix}
}

// NewDefaultRateLimitConfig creates a new instance of the RateLimitConfig with default values.
func NewDefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Limit:     DefaultRateLimitCount,
		Window:    config.TimeDuration(DefaultRateLimitWindow),
		keyPrefix: cfgRateLimitDefaultKeyPrefix,
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *RateLimitConfig) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults is part of config interface implementation.
func (c *RateLimitConfig) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyRateLimitLimit, DefaultRateLimitCount)
	dp.SetDefault(cfgKeyRateLimitWindow, DefaultRateLimitWindow)
	dp.SetDefault(cfgKeyRateLimitDryRun, false)
}

// Set is part of config interface implementation.
func (c *RateLimitConfig) Set(dp config.DataProvider) error {
	var err error

	if c.Limit, err = dp.GetInt(cfgKeyRateLimitLimit); err != nil {
		return err
	}
	if c.Limit <= 0 {
		return dp.WrapKeyErr(cfgKeyRateLimitLimit, errors.New("must be positive"))
	}

	var window time.Duration
	if window, err = dp.GetDuration(cfgKeyRateLimitWindow); err != nil {
		return err
	}
	if window < time.Second {
		return dp.WrapKeyErr(cfgKeyRateLimitWindow, errors.New("must be at least 1s"))
	}
	c.Window = config.TimeDuration(window)

	if c.ExcludedClients, err = dp.GetStringSlice(cfgKeyRateLimitExcludedClients); err != nil {
		return err
	}
	if c.DryRun, err = dp.GetBool(cfgKeyRateLimitDryRun); err != nil {
		return err
	}
	return nil
}

// Rate returns the configured rate.
func (c *RateLimitConfig) Rate() ratelimit.Rate {
	return ratelimit.Rate{Count: c.Limit, Duration: time.Duration(c.Window)}
}
