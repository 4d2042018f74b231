/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/vahairstudio/site-api/config"
	"github.com/vahairstudio/site-api/httpclient"
)

const cfgDefaultKeyPrefix = "acuity"

// Environment variables that carry the API credentials.
const (
	EnvUserID = "ACUITY_USER_ID"
	EnvAPIKey = "ACUITY_API_KEY"
)

// Default values of the client configuration.
const (
	DefaultBaseURL   = "https://acuityscheduling.com/api/v1"
	DefaultTimeout   = 8 * time.Second
	DefaultUserAgent = "vahair-site-api"
)

const (
	cfgKeyUserID    = "userId"
	cfgKeyAPIKey    = "apiKey"
	cfgKeyBaseURL   = "baseURL"
	cfgKeyUserAgent = "userAgent"
	cfgKeyTimeout   = "timeout"
)

// Config represents a set of configuration parameters for the Acuity API client.
// Transport settings (timeout, retries, rateLimits, log, metrics) share the same key prefix.
type Config struct {
	UserID    string
	APIKey    string
	BaseURL   string
	UserAgent string
	HTTP      *httpclient.Config

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config with the "acuity" key prefix.
func NewConfig() *Config {
	return NewConfigWithKeyPrefix(cfgDefaultKeyPrefix)
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	return &Config{HTTP: httpclient.NewConfig(), keyPrefix: keyPrefix}
}

// NewDefaultConfig creates a Config with default values and the given credentials.
func NewDefaultConfig(userID, apiKey string) *Config {
	httpCfg := httpclient.NewDefaultConfig()
	httpCfg.Timeout = DefaultTimeout
	return &Config{
		UserID:    userID,
		APIKey:    apiKey,
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		HTTP:      httpCfg,
		keyPrefix: cfgDefaultKeyPrefix,
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults is part of config interface implementation.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	c.httpConfig().SetProviderDefaults(dp)
	dp.SetDefault(cfgKeyTimeout, DefaultTimeout)
	dp.SetDefault(cfgKeyUserID, "")
	dp.SetDefault(cfgKeyAPIKey, "")
	dp.SetDefault(cfgKeyBaseURL, DefaultBaseURL)
	dp.SetDefault(cfgKeyUserAgent, DefaultUserAgent)
}

// Set is part of config interface implementation.
// Credentials fall back to ACUITY_USER_ID and ACUITY_API_KEY. Missing credentials are not an error here,
// they are reported by Configured and NewClient.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	if err = dp.BindEnv(cfgKeyUserID, EnvUserID); err != nil {
		return err
	}
	if err = dp.BindEnv(cfgKeyAPIKey, EnvAPIKey); err != nil {
		return err
	}
	if c.UserID, err = dp.GetString(cfgKeyUserID); err != nil {
		return err
	}
	c.UserID = strings.TrimSpace(c.UserID)
	if c.APIKey, err = dp.GetString(cfgKeyAPIKey); err != nil {
		return err
	}
	c.APIKey = strings.TrimSpace(c.APIKey)

	if c.BaseURL, err = dp.GetString(cfgKeyBaseURL); err != nil {
		return err
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	u, parseErr := url.Parse(c.BaseURL)
	if parseErr != nil {
		return dp.WrapKeyErr(cfgKeyBaseURL, parseErr)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return dp.WrapKeyErr(cfgKeyBaseURL, errors.New("must be an absolute http(s) URL"))
	}

	if c.UserAgent, err = dp.GetString(cfgKeyUserAgent); err != nil {
		return err
	}

	return c.httpConfig().Set(dp)
}

// Configured reports whether both credentials are present.
func (c *Config) Configured() bool {
	return len(c.MissingCredentials()) == 0
}

// MissingCredentials returns the names of the environment variables whose values are absent.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.UserID == "" {
		missing = append(missing, EnvUserID)
	}
	if c.APIKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	return missing
}

func (c *Config) httpConfig() *httpclient.Config {
	if c.HTTP == nil {
		c.HTTP = httpclient.NewConfig()
	}
	return c.HTTP
}
