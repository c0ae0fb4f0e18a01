// Package config loads validate-docs settings using Viper from a YAML file,
// VALIDATE_DOCS_ prefixed environment variables and command-line flags.
//
// The configuration covers the validation run (strictness, output format,
// worker count, file selection), extra entries for the exceptions allow-list,
// the watch mode debounce and logging.
package config

import (
	"runtime"
	"time"

	"github.com/spf13/viper"

	docerrors "github.com/conneroisu/validate-docs/internal/errors"
	"github.com/conneroisu/validate-docs/internal/rules"
)

type Config struct {
	Validation ValidationConfig  `yaml:"validation" mapstructure:"validation"`
	Exceptions []rules.Exception `yaml:"exceptions" mapstructure:"exceptions"`
	Watch      WatchConfig       `yaml:"watch" mapstructure:"watch"`
	Logging    LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

type ValidationConfig struct {
	Strict  bool     `yaml:"strict" mapstructure:"strict"`
	Format  string   `yaml:"format" mapstructure:"format"`
	Workers int      `yaml:"workers" mapstructure:"workers"`
	Include []string `yaml:"include" mapstructure:"include"`
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
	// ExtraTypes are accepted in Type columns on top of the built-in types.
	ExtraTypes     []string `yaml:"extra_types" mapstructure:"extra_types"`
	ExceptionsFile string   `yaml:"exceptions_file" mapstructure:"exceptions_file"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Defaults.
const (
	DefaultFormat   = "text"
	DefaultDebounce = 300 * time.Millisecond
	DefaultLogLevel = "warn"
)

var (
	DefaultInclude = []string{"*.md"}
	DefaultExclude = []string{"_index.md"}
)

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, docerrors.Wrap(err, docerrors.ErrorTypeConfig, docerrors.ErrCodeConfigInvalid,
			"decoding configuration")
	}

	// Slices bound to pflags arrive as strings when unset in the file
	if viper.IsSet("validation.exclude") && len(config.Validation.Exclude) == 0 {
		config.Validation.Exclude = viper.GetStringSlice("validation.exclude")
	}
	if viper.IsSet("validation.include") && len(config.Validation.Include) == 0 {
		config.Validation.Include = viper.GetStringSlice("validation.include")
	}

	if config.Validation.Format == "" {
		config.Validation.Format = DefaultFormat
	}
	if config.Validation.Workers == 0 {
		config.Validation.Workers = runtime.NumCPU()
	}
	if len(config.Validation.Include) == 0 {
		config.Validation.Include = append([]string(nil), DefaultInclude...)
	}
	if !viper.IsSet("validation.exclude") {
		config.Validation.Exclude = append([]string(nil), DefaultExclude...)
	}
	if !viper.IsSet("watch.debounce") {
		config.Watch.Debounce = DefaultDebounce
	}
	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}

	if path := config.Validation.ExceptionsFile; path != "" {
		extra, err := rules.LoadExceptionsFile(path)
		if err != nil {
			return nil, docerrors.Wrap(err, docerrors.ErrorTypeConfig, docerrors.ErrCodeConfigInvalid,
				"loading exceptions file")
		}
		config.Exceptions = append(config.Exceptions, extra...)
	}

	if err := validateConfig(&config); err != nil {
		return nil, docerrors.Wrap(err, docerrors.ErrorTypeConfig, docerrors.ErrCodeConfigInvalid,
			"invalid configuration")
	}

	return &config, nil
}

// AllowList builds the exceptions allow-list: the built-in entries plus the
// configured ones.
func (c *Config) AllowList() *rules.Exceptions {
	return rules.NewExceptions(c.Exceptions...)
}

// validateConfig rejects configurations the run cannot work with.
func validateConfig(config *Config) error {
	result := ValidateConfigWithDetails(config)
	if result.HasErrors() {
		first := result.Errors[0]
		return &first
	}
	return nil
}
