// Package report defines rule identifiers, violations and per-document
// reports, and renders them as text or JSON.
package report

import "sort"

// RuleID identifies a validation rule.
type RuleID string

// Severity is how much a violation matters.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityHint    Severity = "hint"
)

// Category groups rules by the kind of failure they report.
type Category string

const (
	CategoryParse      Category = "parse"
	CategoryStructural Category = "structural"
	CategoryContent    Category = "content"
	CategoryHint       Category = "hint"
)

// Rule identifiers.
const (
	MalformedFrontMatter RuleID = "MalformedFrontMatter"
	MalformedTable       RuleID = "MalformedTable"
	UnreadableInput      RuleID = "UnreadableInput"

	MissingFrontMatterKey RuleID = "MissingFrontMatterKey"
	InvalidStageLabel     RuleID = "InvalidStageLabel"
	InvalidCanonicalURL   RuleID = "InvalidCanonicalURL"
	TitleMismatch         RuleID = "TitleMismatch"

	MissingTitle                      RuleID = "MissingTitle"
	DuplicateTitle                    RuleID = "DuplicateTitle"
	MissingSection                    RuleID = "MissingSection"
	OutOfOrderSection                 RuleID = "OutOfOrderSection"
	DuplicateSection                  RuleID = "DuplicateSection"
	UnexpectedSection                 RuleID = "UnexpectedSection"
	ExampleHeadingCardinalityMismatch RuleID = "ExampleHeadingCardinalityMismatch"

	ColumnMismatch              RuleID = "ColumnMismatch"
	UnbackedName                RuleID = "UnbackedName"
	UnknownType                 RuleID = "UnknownType"
	InvalidRequiredValue        RuleID = "InvalidRequiredValue"
	DefaultOnRequiredField      RuleID = "DefaultOnRequiredField"
	RowOrderingHint             RuleID = "RowOrderingHint"
	MissingTableOrFallback      RuleID = "MissingTableOrFallback"
	ConflictingTableAndFallback RuleID = "ConflictingTableAndFallback"

	FallbackSentenceMismatch   RuleID = "FallbackSentenceMismatch"
	UndocumentedPlaceholder    RuleID = "UndocumentedPlaceholder"
	MalformedPlaceholderMarkup RuleID = "MalformedPlaceholderMarkup"
)

// RuleInfo describes one rule of the catalog.
type RuleInfo struct {
	ID          RuleID   `json:"id"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

var catalog = map[RuleID]RuleInfo{
	MalformedFrontMatter: {MalformedFrontMatter, CategoryParse, SeverityError, "Front matter is unterminated or not a YAML mapping"},
	MalformedTable:       {MalformedTable, CategoryParse, SeverityError, "Table row cell count differs from the header, or the delimiter row is invalid"},
	UnreadableInput:      {UnreadableInput, CategoryParse, SeverityError, "The page could not be read"},

	MissingFrontMatterKey: {MissingFrontMatterKey, CategoryStructural, SeverityError, "canonical, description and title must be present and non-empty"},
	InvalidStageLabel:     {InvalidStageLabel, CategoryStructural, SeverityError, "labels.stage must be a known stage and labels.products must be set"},
	InvalidCanonicalURL:   {InvalidCanonicalURL, CategoryStructural, SeverityWarning, "canonical must look like https://.../reference/components/<path>/"},
	TitleMismatch:         {TitleMismatch, CategoryStructural, SeverityWarning, "The h1 heading must match the front matter title"},

	MissingTitle:                      {MissingTitle, CategoryStructural, SeverityError, "The page must start with an h1 naming the component"},
	DuplicateTitle:                    {DuplicateTitle, CategoryStructural, SeverityError, "The page must have exactly one h1"},
	MissingSection:                    {MissingSection, CategoryStructural, SeverityError, "A mandated h2 section is absent"},
	OutOfOrderSection:                 {OutOfOrderSection, CategoryStructural, SeverityError, "Mandated sections appear in the wrong order"},
	DuplicateSection:                  {DuplicateSection, CategoryStructural, SeverityError, "A mandated section appears more than once"},
	UnexpectedSection:                 {UnexpectedSection, CategoryStructural, SeverityError, "An h2 section is not part of the page structure"},
	ExampleHeadingCardinalityMismatch: {ExampleHeadingCardinalityMismatch, CategoryStructural, SeverityError, "Use Example for one example and Examples for several"},

	ColumnMismatch:              {ColumnMismatch, CategoryStructural, SeverityError, "Table columns differ from the section's schema"},
	UnbackedName:                {UnbackedName, CategoryContent, SeverityError, "Names must be wrapped in a single backtick pair"},
	UnknownType:                 {UnknownType, CategoryContent, SeverityError, "Types must be a backticked known type"},
	InvalidRequiredValue:        {InvalidRequiredValue, CategoryContent, SeverityError, "Required must be yes or no"},
	DefaultOnRequiredField:      {DefaultOnRequiredField, CategoryContent, SeverityError, "Required rows must not have a default"},
	RowOrderingHint:             {RowOrderingHint, CategoryHint, SeverityHint, "Order required rows first, then alphabetically by name"},
	MissingTableOrFallback:      {MissingTableOrFallback, CategoryStructural, SeverityError, "The section needs a table or its fallback sentence"},
	ConflictingTableAndFallback: {ConflictingTableAndFallback, CategoryStructural, SeverityError, "The section has both a table and its fallback sentence"},

	FallbackSentenceMismatch:   {FallbackSentenceMismatch, CategoryContent, SeverityError, "The fallback sentence must match the template exactly"},
	UndocumentedPlaceholder:    {UndocumentedPlaceholder, CategoryContent, SeverityError, "Example placeholders must be explained in a Replace sentence"},
	MalformedPlaceholderMarkup: {MalformedPlaceholderMarkup, CategoryContent, SeverityError, "Prose placeholders must be written as _`<NAME>`_"},
}

// Lookup returns the catalog entry for id.
func Lookup(id RuleID) (RuleInfo, bool) {
	info, ok := catalog[id]
	return info, ok
}

// Catalog returns every rule sorted by category then id.
func Catalog() []RuleInfo {
	out := make([]RuleInfo, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, info)
	}
	order := map[Category]int{CategoryParse: 0, CategoryStructural: 1, CategoryContent: 2, CategoryHint: 3}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return order[out[i].Category] < order[out[j].Category]
		}
		return out[i].ID < out[j].ID
	})
	return out
}
