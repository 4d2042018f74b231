/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package app

import (
	"github.com/vahairstudio/site-api/acuity"
	"github.com/vahairstudio/site-api/catalog"
	"github.com/vahairstudio/site-api/config"
	"github.com/vahairstudio/site-api/httpserver"
	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/profserver"
	"github.com/vahairstudio/site-api/ttlcache"
)

// DefaultEnvPrefix is the prefix of environment variables overriding the configuration file,
// e.g. SITE_API_SERVER_ADDRESS overrides server.address.
const DefaultEnvPrefix = "SITE_API"

// Config aggregates all configuration sections of the site API server.
type Config struct {
	Log        *log.Config
	Server     *httpserver.Config
	RateLimit  *httpserver.RateLimitConfig
	Acuity     *acuity.Config
	Cache      *ttlcache.Config
	Catalog    *catalog.Config
	ProfServer *profserver.Config
}

// NewConfig creates a new Config with the default key prefixes of all sections.
func NewConfig() *Config {
	return &Config{
		Log:        log.NewConfig(),
		Server:     httpserver.NewConfig(),
		RateLimit:  httpserver.NewRateLimitConfig(),
		Acuity:     acuity.NewConfig(),
		Cache:      ttlcache.NewConfig(),
		Catalog:    catalog.NewConfig(),
		ProfServer: profserver.NewConfig(),
	}
}

func (c *Config) sections() []config.Config {
	return []config.Config{c.Log, c.Server, c.RateLimit, c.Acuity, c.Cache, c.Catalog, c.ProfServer}
}

// LoadConfig loads the YAML file at path (may be empty) and the environment variables with envPrefix.
// ACUITY_USER_ID and ACUITY_API_KEY are read without the prefix.
func LoadConfig(path, envPrefix string) (*Config, error) {
	cfg := NewConfig()
	sections := cfg.sections()
	if err := config.NewDefaultLoader(envPrefix).LoadFromFile(path, config.DataTypeYAML, sections[0], sections[1:]...); err != nil {
		return nil, err
	}
	return cfg, nil
}
