package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/validate-docs/internal/report"
)

// Exception is a named, documented deviation from the page structure for
// one component.
type Exception struct {
	Component     string   `yaml:"component" mapstructure:"component"`
	AllowSections []string `yaml:"allow_sections" mapstructure:"allow_sections"`
	SkipRules     []string `yaml:"skip_rules" mapstructure:"skip_rules"`
	Reason        string   `yaml:"reason" mapstructure:"reason"`
}

// AllowsSection reports whether the exception permits an extra h2 section.
func (e Exception) AllowsSection(name string) bool {
	for _, s := range e.AllowSections {
		if s == name {
			return true
		}
	}
	return false
}

// Skips reports whether violations of rule are suppressed.
func (e Exception) Skips(rule report.RuleID) bool {
	for _, r := range e.SkipRules {
		if report.RuleID(r) == rule {
			return true
		}
	}
	return false
}

// DefaultExceptions are the exceptions listed in the style guide.
func DefaultExceptions() []Exception {
	return []Exception{
		{
			Component:     "loki.source.podlogs",
			AllowSections: []string{"PodLogs custom resource"},
			Reason:        "documents the PodLogs CRD it consumes",
		},
	}
}

// Exceptions is the allow-list consulted by the checkers.
type Exceptions struct {
	byComponent map[string]Exception
}

// NewExceptions builds an allow-list from the defaults plus extra entries.
// Entries for the same component are merged.
func NewExceptions(extra ...Exception) *Exceptions {
	e := &Exceptions{byComponent: make(map[string]Exception)}
	for _, x := range DefaultExceptions() {
		e.add(x)
	}
	for _, x := range extra {
		e.add(x)
	}
	return e
}

func (e *Exceptions) add(x Exception) {
	if x.Component == "" {
		return
	}
	current := e.byComponent[x.Component]
	current.Component = x.Component
	current.AllowSections = append(current.AllowSections, x.AllowSections...)
	current.SkipRules = append(current.SkipRules, x.SkipRules...)
	if x.Reason != "" {
		current.Reason = x.Reason
	}
	e.byComponent[x.Component] = current
}

// For returns the exception for a component; the zero Exception allows nothing.
func (e *Exceptions) For(component string) Exception {
	if e == nil {
		return Exception{}
	}
	return e.byComponent[component]
}

// UnknownRules returns the skipped rule identifiers that are not in the
// rule catalog.
func (e Exception) UnknownRules() []string {
	var unknown []string
	for _, r := range e.SkipRules {
		if _, ok := report.Lookup(report.RuleID(r)); !ok {
			unknown = append(unknown, r)
		}
	}
	return unknown
}

type exceptionsFile struct {
	Exceptions []Exception `yaml:"exceptions"`
}

// LoadExceptionsFile reads additional exceptions from a YAML file of the form
//
//	exceptions:
//	  - component: prometheus.exporter.foo
//	    allow_sections: ["Collectors list"]
func LoadExceptionsFile(path string) ([]Exception, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading exceptions file: %w", err)
	}
	var f exceptionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding exceptions file %s: %w", path, err)
	}
	return f.Exceptions, nil
}
