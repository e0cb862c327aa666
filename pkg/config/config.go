// Package config loads rtlgraph settings from a TOML file, layered over
// built-in defaults so a partial file only overrides what it names.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rtlgraph/rtlgraph/pkg/errors"
)

// Config holds the tool-wide settings shared by the CLI and the server.
type Config struct {
	// StrictSeparators makes the frontend require exactly one comma
	// between elements and one colon after keys.
	StrictSeparators bool `toml:"strict_separators"`

	// RejectDuplicateKeys makes repeated object keys a parse error
	// instead of last-value-wins.
	RejectDuplicateKeys bool `toml:"reject_duplicate_keys"`

	Server Server `toml:"server"`
}

// Server configures the HTTP design store.
type Server struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`

	// RedisAddr selects a Redis-backed design store when non-empty.
	// Empty means the in-memory store.
	RedisAddr string `toml:"redis_addr"`

	// TTL bounds how long stored designs live. Zero means no expiry.
	TTL Duration `toml:"ttl"`
}

// Duration is a time.Duration that unmarshals from TOML strings like "30m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration: tolerant parsing, in-memory
// store on :8080 with a 24h design TTL.
func Default() Config {
	return Config{
		Server: Server{
			Addr: ":8080",
			TTL:  Duration(24 * time.Hour),
		},
	}
}

// Load reads a TOML config file layered over Default. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}
