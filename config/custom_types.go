/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v3"
)

// ByteSize is a size in bytes, e.g. server.limits.maxBodySize. Configs may use a plain number
// or a human-readable string: "64K", "1M" and Kubernetes-style "1Mi" are all accepted.
type ByteSize uint64

// UnmarshalText implements encoding.TextUnmarshaler (used by mapstructure hooks).
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := parseNumberOr(text, func(s string) (uint64, error) {
		// bytefmt already treats "M" as a power of two, so "Mi" only loses its "i".
		if len(s) > 2 && s[len(s)-1] == 'i' && strings.ContainsRune("KMGT", rune(s[len(s)-2])) {
			s = s[:len(s)-1]
		}
		n, err := bytefmt.ToBytes(s)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size format (%s): %w", s, err)
		}
		return n, nil
	})
	if err != nil {
		return err
	}
	*b = ByteSize(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	return b.UnmarshalText([]byte(value.Value))
}

// String returns a human-readable size.
func (b ByteSize) String() string {
	return bytefmt.ByteSize(uint64(b))
}

// MarshalJSON encodes the size as a human-readable string.
func (b ByteSize) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// TimeDuration is a non-negative duration such as a cache TTL or a server timeout.
// Configs may use nanoseconds or a Go duration string ("1m30s").
type TimeDuration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler (used by mapstructure hooks).
func (d *TimeDuration) UnmarshalText(text []byte) error {
	v, err := parseNumberOr(text, func(s string) (uint64, error) {
		dur, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid time duration format (%s): %w", s, err)
		}
		if dur < 0 {
			return 0, fmt.Errorf("negative value is not allowed: %s", s)
		}
		return uint64(dur), nil
	})
	if err != nil {
		return err
	}
	*d = TimeDuration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// String returns the duration in Go notation.
func (d TimeDuration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON encodes the duration as a string in Go notation.
func (d TimeDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// parseNumberOr accepts a plain non-negative integer and hands anything else to parse.
func parseNumberOr(text []byte, parse func(string) (uint64, error)) (uint64, error) {
	s := strings.TrimSpace(strings.Trim(string(text), `"`))
	if num, err := strconv.ParseInt(s, 10, 64); err == nil {
		if num < 0 {
			return 0, fmt.Errorf("negative value is not allowed: %d", num)
		}
		return uint64(num), nil
	}
	return parse(s)
}
