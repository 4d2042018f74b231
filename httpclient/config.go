/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"errors"
	"strings"
	"time"

	"github.com/vahairstudio/site-api/config"
	"github.com/vahairstudio/site-api/retry"
)

// Default values of the client configuration.
const (
	DefaultClientWaitTimeout = 10 * time.Second

	DefaultRetriesMaxAttempts           = DefaultMaxRetryAttempts
	DefaultRetriesExponentialInterval   = DefaultExponentialBackoffInitialInterval
	DefaultRetriesExponentialMultiplier = DefaultExponentialBackoffMultiplier
	DefaultRetriesConstantInterval      = 500 * time.Millisecond

	DefaultRateLimitsLimit       = 10
	DefaultRateLimitsBurst       = 10
	DefaultRateLimitsWaitTimeout = 5 * time.Second

	DefaultLogSlowRequestThreshold = time.Duration(0)
	DefaultLogMode                 = LoggingModeAll
)

// Retry policy strategies.
const (
	RetryPolicyExponential = "exponential"
	RetryPolicyConstant    = "constant"
)

const (
	cfgKeyTimeout                                 = "timeout"
	cfgKeyRetriesEnabled                          = "retries.enabled"
	cfgKeyRetriesMax                              = "retries.maxAttempts"
	cfgKeyRetriesPolicyStrategy                   = "retries.policy.strategy"
	cfgKeyRetriesPolicyExponentialInitialInterval = "retries.policy.exponentialBackoffInitialInterval"
	cfgKeyRetriesPolicyExponentialMultiplier      = "retries.policy.exponentialBackoffMultiplier"
	cfgKeyRetriesPolicyConstantInterval           = "retries.policy.constantBackoffInterval"
	cfgKeyRateLimitsEnabled                       = "rateLimits.enabled"
	cfgKeyRateLimitsLimit                         = "rateLimits.limit"
	cfgKeyRateLimitsBurst                         = "rateLimits.burst"
	cfgKeyRateLimitsWaitTimeout                   = "rateLimits.waitTimeout"
	cfgKeyLogEnabled                              = "log.enabled"
	cfgKeyLogMode                                 = "log.mode"
	cfgKeyLogSlowRequestThreshold                 = "log.slowRequestThreshold"
	cfgKeyMetricsEnabled                          = "metrics.enabled"
)

var availableRetryStrategies = []string{RetryPolicyExponential, RetryPolicyConstant}

var availableLoggingModes = []string{string(LoggingModeNone), string(LoggingModeAll), string(LoggingModeFailed)}

// RetriesConfig represents configuration options for HTTP client retries policy.
type RetriesConfig struct {
	Enabled     bool
	MaxAttempts int
	Policy      PolicyConfig
}

// PolicyConfig represents configuration options for the retry backoff policy.
type PolicyConfig struct {
	Strategy                          string
	ExponentialBackoffInitialInterval time.Duration
	ExponentialBackoffMultiplier      float64
	ConstantBackoffInterval           time.Duration
}

// GetPolicy returns the retry policy described by the configuration.
func (c *RetriesConfig) GetPolicy() retry.Policy {
	if c.Policy.Strategy == RetryPolicyConstant {
		return retry.ConstantBackoffPolicy{Interval: c.Policy.ConstantBackoffInterval}
	}
	return retry.ExponentialBackoffPolicy{
		InitialInterval: c.Policy.ExponentialBackoffInitialInterval,
		Multiplier:      c.Policy.ExponentialBackoffMultiplier,
	}
}

// TransportOpts returns transport options.
func (c *RetriesConfig) TransportOpts() RetryableRoundTripperOpts {
	return RetryableRoundTripperOpts{MaxRetryAttempts: c.MaxAttempts, BackoffPolicy: c.GetPolicy()}
}

// RateLimitConfig represents configuration options for outbound rate limiting.
type RateLimitConfig struct {
	Enabled     bool
	Limit       int
	Burst       int
	WaitTimeout time.Duration
}

// TransportOpts returns transport options.
func (c *RateLimitConfig) TransportOpts() RateLimitingRoundTripperOpts {
	return RateLimitingRoundTripperOpts{Burst: c.Burst, WaitTimeout: c.WaitTimeout}
}

// LogConfig represents configuration options for HTTP client logs.
type LogConfig struct {
	Enabled              bool
	Mode                 LoggingMode
	SlowRequestThreshold time.Duration
}

// TransportOpts returns transport options.
func (c *LogConfig) TransportOpts() LoggingRoundTripperOpts {
	return LoggingRoundTripperOpts{Mode: c.Mode, SlowRequestThreshold: c.SlowRequestThreshold}
}

// MetricsConfig represents configuration options for HTTP client metrics.
type MetricsConfig struct {
	Enabled bool
}

// Config represents options for HTTP client configuration.
type Config struct {
	Timeout    time.Duration
	Retries    RetriesConfig
	RateLimits RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return NewConfigWithKeyPrefix("")
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	return &Config{keyPrefix: keyPrefix}
}

// NewDefaultConfig creates a Config with the same values SetProviderDefaults would produce.
func NewDefaultConfig() *Config {
	return &Config{
		Timeout: DefaultClientWaitTimeout,
		Retries: RetriesConfig{
			Enabled:     true,
			MaxAttempts: DefaultRetriesMaxAttempts,
			Policy: PolicyConfig{
				Strategy:                          RetryPolicyExponential,
				ExponentialBackoffInitialInterval: DefaultRetriesExponentialInterval,
				ExponentialBackoffMultiplier:      DefaultRetriesExponentialMultiplier,
				ConstantBackoffInterval:           DefaultRetriesConstantInterval,
			},
		},
		RateLimits: RateLimitConfig{
			Enabled:     true,
			Limit:       DefaultRateLimitsLimit,
			Burst:       DefaultRateLimitsBurst,
			WaitTimeout: DefaultRateLimitsWaitTimeout,
		},
		Log:     LogConfig{Enabled: true, Mode: DefaultLogMode, SlowRequestThreshold: DefaultLogSlowRequestThreshold},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults is part of config interface implementation.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyTimeout, DefaultClientWaitTimeout)
	dp.SetDefault(cfgKeyRetriesEnabled, true)
	dp.SetDefault(cfgKeyRetriesMax, DefaultRetriesMaxAttempts)
	dp.SetDefault(cfgKeyRetriesPolicyStrategy, RetryPolicyExponential)
	dp.SetDefault(cfgKeyRetriesPolicyExponentialInitialInterval, DefaultRetriesExponentialInterval)
	dp.SetDefault(cfgKeyRetriesPolicyExponentialMultiplier, float64(DefaultRetriesExponentialMultiplier))
	dp.SetDefault(cfgKeyRetriesPolicyConstantInterval, DefaultRetriesConstantInterval)
	dp.SetDefault(cfgKeyRateLimitsEnabled, true)
	dp.SetDefault(cfgKeyRateLimitsLimit, DefaultRateLimitsLimit)
	dp.SetDefault(cfgKeyRateLimitsBurst, DefaultRateLimitsBurst)
	dp.SetDefault(cfgKeyRateLimitsWaitTimeout, DefaultRateLimitsWaitTimeout)
	dp.SetDefault(cfgKeyLogEnabled, true)
	dp.SetDefault(cfgKeyLogMode, string(DefaultLogMode))
	dp.SetDefault(cfgKeyLogSlowRequestThreshold, DefaultLogSlowRequestThreshold)
	dp.SetDefault(cfgKeyMetricsEnabled, true)
}

// Set is part of config interface implementation.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	if c.Timeout, err = dp.GetDuration(cfgKeyTimeout); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return dp.WrapKeyErr(cfgKeyTimeout, errors.New("must be positive"))
	}
	if err = c.setRetries(dp); err != nil {
		return err
	}
	if err = c.setRateLimits(dp); err != nil {
		return err
	}
	if err = c.setLog(dp); err != nil {
		return err
	}
	c.Metrics.Enabled, err = dp.GetBool(cfgKeyMetricsEnabled)
	return err
}

func (c *Config) setRetries(dp config.DataProvider) error {
	var err error
	if c.Retries.Enabled, err = dp.GetBool(cfgKeyRetriesEnabled); err != nil {
		return err
	}
	if c.Retries.MaxAttempts, err = dp.GetInt(cfgKeyRetriesMax); err != nil {
		return err
	}
	if c.Retries.MaxAttempts < 0 {
		return dp.WrapKeyErr(cfgKeyRetriesMax, errors.New("cannot be negative"))
	}

	policy := &c.Retries.Policy
	if policy.Strategy, err = dp.GetStringFromSet(cfgKeyRetriesPolicyStrategy, availableRetryStrategies, false); err != nil {
		return err
	}
	if policy.ExponentialBackoffInitialInterval, err = dp.GetDuration(cfgKeyRetriesPolicyExponentialInitialInterval); err != nil {
		return err
	}
	if policy.ExponentialBackoffInitialInterval <= 0 {
		return dp.WrapKeyErr(cfgKeyRetriesPolicyExponentialInitialInterval, errors.New("must be positive"))
	}
	if policy.ExponentialBackoffMultiplier, err = dp.GetFloat64(cfgKeyRetriesPolicyExponentialMultiplier); err != nil {
		return err
	}
	if policy.ExponentialBackoffMultiplier <= 1 {
		return dp.WrapKeyErr(cfgKeyRetriesPolicyExponentialMultiplier, errors.New("must be greater than 1"))
	}
	if policy.ConstantBackoffInterval, err = dp.GetDuration(cfgKeyRetriesPolicyConstantInterval); err != nil {
		return err
	}
	if policy.ConstantBackoffInterval <= 0 {
		return dp.WrapKeyErr(cfgKeyRetriesPolicyConstantInterval, errors.New("must be positive"))
	}
	return nil
}

func (c *Config) setRateLimits(dp config.DataProvider) error {
	var err error
	if c.RateLimits.Enabled, err = dp.GetBool(cfgKeyRateLimitsEnabled); err != nil {
		return err
	}
	if c.RateLimits.Limit, err = dp.GetInt(cfgKeyRateLimitsLimit); err != nil {
		return err
	}
	if c.RateLimits.Limit <= 0 {
		return dp.WrapKeyErr(cfgKeyRateLimitsLimit, errors.New("must be positive"))
	}
	if c.RateLimits.Burst, err = dp.GetInt(cfgKeyRateLimitsBurst); err != nil {
		return err
	}
	if c.RateLimits.Burst < 0 {
		return dp.WrapKeyErr(cfgKeyRateLimitsBurst, errors.New("cannot be negative"))
	}
	if c.RateLimits.WaitTimeout, err = dp.GetDuration(cfgKeyRateLimitsWaitTimeout); err != nil {
		return err
	}
	if c.RateLimits.WaitTimeout < 0 {
		return dp.WrapKeyErr(cfgKeyRateLimitsWaitTimeout, errors.New("cannot be negative"))
	}
	return nil
}

func (c *Config) setLog(dp config.DataProvider) error {
	var err error
	if c.Log.Enabled, err = dp.GetBool(cfgKeyLogEnabled); err != nil {
		return err
	}
	mode, err := dp.GetStringFromSet(cfgKeyLogMode, availableLoggingModes, true)
	if err != nil {
		return err
	}
	c.Log.Mode = LoggingMode(strings.ToLower(mode))
	if c.Log.SlowRequestThreshold, err = dp.GetDuration(cfgKeyLogSlowRequestThreshold); err != nil {
		return err
	}
	if c.Log.SlowRequestThreshold < 0 {
		return dp.WrapKeyErr(cfgKeyLogSlowRequestThreshold, errors.New("cannot be negative"))
	}
	return nil
}
