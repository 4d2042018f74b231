/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package config loads the service configuration from a YAML/JSON file and environment variables.
package config

import "reflect"

// Config is implemented by every configuration section that the Loader can fill.
type Config interface {
	SetProviderDefaults(dp DataProvider)
	Set(dp DataProvider) error
}

// KeyPrefixProvider is implemented by sections whose keys live under a common prefix (e.g. "server").
type KeyPrefixProvider interface {
	KeyPrefix() string
}

// CallSetProviderDefaultsForFields calls SetProviderDefaults for every non-nil exported field of obj
// that implements Config. It lets an aggregate application config delegate to its sections.
func CallSetProviderDefaultsForFields(obj interface{}, dp DataProvider) {
	_ = forEachSection(obj, dp, func(c Config, sectionDP DataProvider) error {
		c.SetProviderDefaults(sectionDP)
		return nil
	})
}

// CallSetForFields calls Set for every non-nil exported field of obj that implements Config.
// The first error stops the iteration.
func CallSetForFields(obj interface{}, dp DataProvider) error {
	return forEachSection(obj, dp, func(c Config, sectionDP DataProvider) error {
		return c.Set(sectionDP)
	})
}

func forEachSection(obj interface{}, dp DataProvider, fn func(c Config, sectionDP DataProvider) error) error {
	el := reflect.ValueOf(obj).Elem()
	for i := 0; i < el.NumField(); i++ {
		if !el.Type().Field(i).IsExported() {
			continue
		}
		field := el.Field(i)
		if field.Kind() == reflect.Ptr && field.IsNil() {
			continue
		}
		c, ok := field.Interface().(Config)
		if !ok {
			continue
		}
		if err := fn(c, dataProviderFor(c, dp)); err != nil {
			return err
		}
	}
	return nil
}

func dataProviderFor(c Config, dp DataProvider) DataProvider {
	if kp, ok := c.(KeyPrefixProvider); ok && kp.KeyPrefix() != "" {
		return NewKeyPrefixedDataProvider(dp, kp.KeyPrefix())
	}
	return dp
}
