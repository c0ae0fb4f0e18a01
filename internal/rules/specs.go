// Package rules checks a parsed component reference page against the page
// structure of the documentation style guide.
//
// The checks are table-driven: the section order, the table schema of each
// table-bearing section and the fallback sentences are constant registries
// in this file. Component-specific deviations are never special-cased in a
// checker; they go through the Exceptions allow-list instead.
package rules

import (
	"strings"
)

// Section names.
const (
	SectionUsage            = "Usage"
	SectionArguments        = "Arguments"
	SectionBlocks           = "Blocks"
	SectionExportedFields   = "Exported fields"
	SectionComponentHealth  = "Component health"
	SectionDebugInformation = "Debug information"
	SectionDebugMetrics     = "Debug metrics"
	SectionExample          = "Example"
	SectionExamples         = "Examples"
)

// canonicalSections is the mandated h2 order. The last slot is filled by
// either Example or Examples.
var canonicalSections = []string{
	SectionUsage,
	SectionArguments,
	SectionBlocks,
	SectionExportedFields,
	SectionComponentHealth,
	SectionDebugInformation,
	SectionDebugMetrics,
	SectionExamples,
}

// slotOf returns the canonical position of a section name.
func slotOf(name string) (int, bool) {
	if name == SectionExample {
		name = SectionExamples
	}
	for i, s := range canonicalSections {
		if s == name {
			return i, true
		}
	}
	return 0, false
}

func isExampleSection(name string) bool {
	return name == SectionExample || name == SectionExamples
}

// CellRule is the formatting rule applied to one table column.
type CellRule int

const (
	CellFree CellRule = iota
	CellName
	CellBlockPath
	CellType
	CellMetricType
	CellRequired
	CellDefault
)

// Column is one expected table column.
type Column struct {
	Name string
	Rule CellRule
}

// TableSpec is the schema of the table a section carries.
type TableSpec struct {
	Section string
	Columns []Column
	// OrderRows enables the required-first, alphabetical row ordering hint.
	OrderRows bool
}

var tableSpecs = map[string]TableSpec{
	SectionArguments: {
		Section: SectionArguments,
		Columns: []Column{
			{"Name", CellName},
			{"Type", CellType},
			{"Description", CellFree},
			{"Default", CellDefault},
			{"Required", CellRequired},
		},
		OrderRows: true,
	},
	SectionBlocks: {
		Section: SectionBlocks,
		Columns: []Column{
			{"Block", CellBlockPath},
			{"Description", CellFree},
			{"Required", CellRequired},
		},
	},
	SectionExportedFields: {
		Section: SectionExportedFields,
		Columns: []Column{
			{"Name", CellName},
			{"Type", CellType},
			{"Description", CellFree},
		},
		OrderRows: true,
	},
	SectionDebugMetrics: {
		Section: SectionDebugMetrics,
		Columns: []Column{
			{"Metric", CellName},
			{"Type", CellMetricType},
			{"Description", CellFree},
		},
		OrderRows: true,
	},
}

// TableSpecFor returns the table schema of a section.
func TableSpecFor(section string) (TableSpec, bool) {
	spec, ok := tableSpecs[section]
	return spec, ok
}

// columnIndex returns the position of the first column with the given rule.
func (s TableSpec) columnIndex(rule CellRule) int {
	for i, c := range s.Columns {
		if c.Rule == rule {
			return i
		}
	}
	return -1
}

func (s TableSpec) columnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

const componentNameSlot = "<COMPONENT_NAME>"

var fallbackTemplates = map[string]string{
	SectionArguments:        "`<COMPONENT_NAME>` doesn't support any arguments.",
	SectionBlocks:           "`<COMPONENT_NAME>` doesn't support any blocks.",
	SectionExportedFields:   "`<COMPONENT_NAME>` doesn't export any fields.",
	SectionDebugMetrics:     "`<COMPONENT_NAME>` doesn't expose any component-specific debug metrics.",
	SectionDebugInformation: "`<COMPONENT_NAME>` doesn't expose any component-specific debug information.",
	SectionComponentHealth:  "`<COMPONENT_NAME>` is only reported as unhealthy if given an invalid configuration.",
}

// FallbackSentence returns the mandated sentence for a section with nothing
// to document, with the component name substituted.
func FallbackSentence(section, component string) (string, bool) {
	tmpl, ok := fallbackTemplates[section]
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(tmpl, componentNameSlot, component), true
}

var syntaxTypes = map[string]bool{
	"string":     true,
	"number":     true,
	"bool":       true,
	"any":        true,
	"object":     true,
	"function":   true,
	"null":       true,
	"duration":   true,
	"secret":     true,
	"attributes": true,

	// Capsule values documented by name.
	"LogsReceiver": true,
}

var metricTypes = map[string]bool{
	"counter":   true,
	"gauge":     true,
	"histogram": true,
	"summary":   true,
}

var stageLabels = []string{"experimental", "public-preview", "general-availability"}
