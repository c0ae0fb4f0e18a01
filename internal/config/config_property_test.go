//go:build property
// +build property

package config

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestConfigurationProperties tests configuration validation properties
func TestConfigurationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	base := func() *Config {
		return &Config{
			Validation: ValidationConfig{Format: "text", Workers: 1},
			Watch:      WatchConfig{Debounce: time.Second},
			Logging:    LoggingConfig{Level: "info", Format: "text"},
		}
	}

	properties.Property("worker count decides validity", prop.ForAll(
		func(workers int) bool {
			c := base()
			c.Validation.Workers = workers
			return (validateConfig(c) == nil) == (workers >= 1)
		},
		gen.IntRange(-100, 64),
	))

	properties.Property("only text and json formats are valid", prop.ForAll(
		func(format string) bool {
			c := base()
			c.Validation.Format = format
			valid := format == "text" || format == "json"
			return (validateConfig(c) == nil) == valid
		},
		gen.OneGenOf(gen.OneConstOf("text", "json"), gen.AlphaString()),
	))

	properties.Property("positive debounce is valid", prop.ForAll(
		func(ms int64) bool {
			c := base()
			c.Watch.Debounce = time.Duration(ms) * time.Millisecond
			return (validateConfig(c) == nil) == (ms > 0)
		},
		gen.Int64Range(-1000, 10000),
	))

	properties.Property("plain file name patterns are valid globs", prop.ForAll(
		func(name string) bool {
			c := base()
			c.Validation.Exclude = []string{name + ".md", "*" + name}
			return validateConfig(c) == nil
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
