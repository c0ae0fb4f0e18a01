package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/conneroisu/validate-docs/internal/rules"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, issues []ValidationError) {
		if len(issues) == 0 {
			return
		}
		builder.WriteString(title + ":\n")
		for _, issue := range issues {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", issue.Field, issue.Message))
			for _, suggestion := range issue.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	write("Configuration errors", vr.Errors)
	write("Configuration warnings", vr.Warnings)

	return builder.String()
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateValidationConfigDetails(&config.Validation, result)
	validateExceptionsDetails(config.Exceptions, result)
	validateWatchConfigDetails(&config.Watch, result)
	validateLoggingConfigDetails(&config.Logging, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateValidationConfigDetails(config *ValidationConfig, result *ValidationResult) {
	if config.Format != "text" && config.Format != "json" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "validation.format",
			Value:   config.Format,
			Message: fmt.Sprintf("unknown output format %q", config.Format),
			Suggestions: []string{
				"Use 'text' for a human-readable report",
				"Use 'json' for machine-readable output",
			},
		})
	}

	if config.Workers < 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "validation.workers",
			Value:   config.Workers,
			Message: fmt.Sprintf("workers must be at least 1, got %d", config.Workers),
			Suggestions: []string{
				"Leave workers unset to use one worker per CPU",
			},
		})
	} else if config.Workers > runtime.NumCPU()*8 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "validation.workers",
			Value:   config.Workers,
			Message: "worker count far exceeds the number of CPUs",
		})
	}

	globs := []struct {
		field    string
		patterns []string
	}{
		{"validation.include", config.Include},
		{"validation.exclude", config.Exclude},
	}
	for _, g := range globs {
		for i, pattern := range g.patterns {
			if _, err := filepath.Match(pattern, ""); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Field:   fmt.Sprintf("%s[%d]", g.field, i),
					Value:   pattern,
					Message: fmt.Sprintf("invalid glob pattern %q", pattern),
					Suggestions: []string{
						"Patterns are matched against file names, e.g. '_index.md' or '*.draft.md'",
					},
				})
			}
		}
	}

	for i, typ := range config.ExtraTypes {
		if strings.TrimSpace(typ) == "" || strings.ContainsAny(typ, "`| ") {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("validation.extra_types[%d]", i),
				Value:   typ,
				Message: fmt.Sprintf("invalid type name %q", typ),
			})
		}
	}
}

func validateExceptionsDetails(exceptions []rules.Exception, result *ValidationResult) {
	for i, e := range exceptions {
		if e.Component == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("exceptions[%d].component", i),
				Message: "exception has no component",
			})
		}
		for _, rule := range e.UnknownRules() {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("exceptions[%d].skip_rules", i),
				Value:   rule,
				Message: fmt.Sprintf("unknown rule %q", rule),
				Suggestions: []string{
					"Run 'validate-docs rules' to list rule identifiers",
				},
			})
		}
		if len(e.AllowSections) == 0 && len(e.SkipRules) == 0 {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   fmt.Sprintf("exceptions[%d]", i),
				Value:   e.Component,
				Message: "exception neither allows sections nor skips rules",
			})
		}
		if e.Reason == "" {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   fmt.Sprintf("exceptions[%d].reason", i),
				Value:   e.Component,
				Message: "exceptions should document why the component deviates",
			})
		}
	}
}

func validateWatchConfigDetails(config *WatchConfig, result *ValidationResult) {
	if config.Debounce <= 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "watch.debounce",
			Value:   config.Debounce,
			Message: "debounce must be positive",
			Suggestions: []string{
				"Use a duration such as '300ms'",
			},
		})
	}
}

func validateLoggingConfigDetails(config *LoggingConfig, result *ValidationResult) {
	levels := []string{"debug", "info", "warn", "error"}
	if !contains(levels, strings.ToLower(config.Level)) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.level",
			Value:   config.Level,
			Message: fmt.Sprintf("unknown log level %q", config.Level),
			Suggestions: []string{
				"Available levels: " + strings.Join(levels, ", "),
			},
		})
	}
	if config.Format != "text" && config.Format != "json" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.format",
			Value:   config.Format,
			Message: fmt.Sprintf("unknown log format %q", config.Format),
		})
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
