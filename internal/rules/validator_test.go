package rules

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/validate-docs/internal/page"
	"github.com/conneroisu/validate-docs/internal/report"
)

const fixturePath = "testdata/loki.source.file.md"

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)
	return string(data)
}

func validate(t *testing.T, text string) *report.Report {
	t.Helper()
	return NewValidator(Options{}).ValidateText(fixturePath, text)
}

func rulesOf(r *report.Report) []report.RuleID {
	ids := make([]report.RuleID, 0, len(r.Violations))
	for _, v := range r.Violations {
		ids = append(ids, v.Rule)
	}
	return ids
}

func mustReplace(t *testing.T, text, old, replacement string) string {
	t.Helper()
	require.Contains(t, text, old)
	return strings.Replace(text, old, replacement, 1)
}

// swapSections moves the section starting at second in front of the one
// starting at first; end marks where second's section stops.
func swapSections(t *testing.T, text, first, second, end string) string {
	t.Helper()
	i, j, k := strings.Index(text, first), strings.Index(text, second), strings.Index(text, end)
	require.True(t, i >= 0 && i < j && j < k)
	return text[:i] + text[j:k] + text[i:j] + text[k:]
}

// dropColumn removes column col from the table whose header line is header.
func dropColumn(t *testing.T, text, header string, col int) string {
	t.Helper()
	lines := strings.Split(text, "\n")
	start := -1
	for i, l := range lines {
		if l == header {
			start = i
			break
		}
	}
	require.GreaterOrEqual(t, start, 0)

	for i := start; i < len(lines) && strings.HasPrefix(lines[i], "|"); i++ {
		cells := strings.Split(strings.Trim(lines[i], "|"), "|")
		cells = append(cells[:col:col], cells[col+1:]...)
		lines[i] = "|" + strings.Join(cells, "|") + "|"
	}
	return strings.Join(lines, "\n")
}

const (
	argumentsHeader      = "| Name | Type | Description | Default | Required |"
	exportedFieldsHeader = "| Name | Type | Description |"
)

// withExportedFields swaps the fixture's Exported fields fallback sentence
// for a table.
func withExportedFields(t *testing.T, text string) string {
	t.Helper()
	return mustReplace(t, text, "`loki.source.file` doesn't export any fields.\n",
		"The following fields are exported and can be referenced by other components:\n\n"+
			exportedFieldsHeader+"\n"+
			"| ---- | ---- | ----------- |\n"+
			"| `receiver` | `LogsReceiver` | A value that other components can forward log entries to. |\n"+
			"| `targets` | `list(map(string))` | The targets being read. |\n")
}

func TestConformingPageHasNoViolations(t *testing.T) {
	r := validate(t, loadFixture(t))

	assert.Nil(t, r.ParseError)
	assert.Empty(t, r.Violations)
	assert.Equal(t, "loki.source.file", r.Component)
}

func TestValidationIsIdempotent(t *testing.T) {
	text := mustReplace(t, loadFixture(t), "## Debug metrics", "## Debug metric")
	v := NewValidator(Options{})

	first := v.ValidateText(fixturePath, text)
	second := v.ValidateText(fixturePath, text)

	assert.NotEmpty(t, first.Violations)
	assert.Equal(t, first, second)
}

func TestOutOfOrderSections(t *testing.T) {
	text := swapSections(t, loadFixture(t), "## Arguments", "## Blocks", "## Exported fields")
	r := validate(t, text)

	require.Equal(t, []report.RuleID{report.OutOfOrderSection}, rulesOf(r))
	assert.Equal(t, "Blocks", r.Violations[0].Section)
	assert.Contains(t, r.Violations[0].Message, `"Blocks" appears before "Arguments"`)
}

func TestDebugInformationFallbackSentence(t *testing.T) {
	r := validate(t, loadFixture(t))

	for _, v := range r.Violations {
		assert.NotEqual(t, SectionDebugInformation, v.Section)
	}

	text := mustReplace(t, loadFixture(t),
		"`loki.source.file` doesn't expose any component-specific debug information.",
		"`loki.source.file` doesn't expose any debug information.")
	r = validate(t, text)
	require.Equal(t, []report.RuleID{report.FallbackSentenceMismatch}, rulesOf(r))
	assert.Equal(t, SectionDebugInformation, r.Violations[0].Section)
}

func TestMissingRequiredColumn(t *testing.T) {
	text := dropColumn(t, loadFixture(t), argumentsHeader, 4)
	r := validate(t, text)

	require.Equal(t, []report.RuleID{report.ColumnMismatch}, rulesOf(r))
	assert.Contains(t, r.Violations[0].Message, `missing "Required"`)
	assert.Equal(t, SectionArguments, r.Violations[0].Section)
}

func TestRemovingAnyColumnYieldsOneMismatch(t *testing.T) {
	headers := map[string]string{
		SectionArguments:      argumentsHeader,
		SectionBlocks:         "| Block | Description | Required |",
		SectionExportedFields: exportedFieldsHeader,
		SectionDebugMetrics:   "| Metric | Type | Description |",
	}
	withTable := withExportedFields(t, loadFixture(t))
	require.Empty(t, validate(t, withTable).Violations)

	for section, header := range headers {
		spec, ok := TableSpecFor(section)
		require.True(t, ok)
		for col := range spec.Columns {
			text := dropColumn(t, withTable, header, col)
			r := validate(t, text)
			assert.Equal(t, []report.RuleID{report.ColumnMismatch}, rulesOf(r), "%s column %d", section, col)
		}
	}
}

func TestExportedFieldsTable(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		expected []report.RuleID
	}{
		{
			name:     "unbacked name",
			old:      "| `receiver` |",
			new:      "| receiver |",
			expected: []report.RuleID{report.UnbackedName},
		},
		{
			name:     "unknown type",
			old:      "| `LogsReceiver` |",
			new:      "| `Receiver` |",
			expected: []report.RuleID{report.UnknownType},
		},
		{
			name:     "rows out of order",
			old:      "| `targets` |",
			new:      "| `a_targets` |",
			expected: []report.RuleID{report.RowOrderingHint},
		},
		{
			name:     "table and fallback",
			old:      "The following fields are exported",
			new:      "`loki.source.file` doesn't export any fields.\n\nThe following fields are exported",
			expected: []report.RuleID{report.ConflictingTableAndFallback},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := mustReplace(t, withExportedFields(t, loadFixture(t)), tt.old, tt.new)
			r := validate(t, text)
			assert.Equal(t, tt.expected, rulesOf(r))
			for _, v := range r.Violations {
				assert.Equal(t, SectionExportedFields, v.Section)
			}
		})
	}
}

func TestHeaderComparisonIgnoresCase(t *testing.T) {
	text := mustReplace(t, loadFixture(t), argumentsHeader, "| name | TYPE | description | Default | required |")
	assert.Empty(t, validate(t, text).Violations)
}

func TestExampleCardinality(t *testing.T) {
	twoExamples := "## Example\n\n### Read files\n\nFirst.\n\n### Read more files\n\nSecond.\n"
	text := loadFixture(t)
	text = text[:strings.Index(text, "## Example")] + twoExamples

	r := validate(t, text)
	require.Equal(t, []report.RuleID{report.ExampleHeadingCardinalityMismatch}, rulesOf(r))
	assert.Contains(t, r.Violations[0].Message, `"Examples"`)

	text = mustReplace(t, text, "## Example\n", "## Examples\n")
	assert.Empty(t, validate(t, text).Violations)

	oneExample := mustReplace(t, loadFixture(t), "## Example\n", "## Examples\n")
	assert.Equal(t, []report.RuleID{report.ExampleHeadingCardinalityMismatch}, rulesOf(validate(t, oneExample)))
}

func TestDefaultOnRequiredField(t *testing.T) {
	text := mustReplace(t, loadFixture(t),
		"| `targets` | `list(map(string))` | List of files to read from. | | yes |",
		"| `targets` | `list(map(string))` | List of files to read from. | `[]` | yes |")
	r := validate(t, text)

	require.Equal(t, []report.RuleID{report.DefaultOnRequiredField}, rulesOf(r))
	assert.Contains(t, r.Violations[0].Message, "`targets`")
}

func TestMissingTitleKeyIsIsolated(t *testing.T) {
	text := mustReplace(t, loadFixture(t), "title: loki.source.file\n", "")
	r := validate(t, text)

	require.Equal(t, []report.RuleID{report.MissingFrontMatterKey}, rulesOf(r))
	assert.Contains(t, r.Violations[0].Message, `"title"`)
}

func TestFrontMatterRules(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		expected []report.RuleID
	}{
		{
			name:     "unknown stage",
			old:      "stage: general-availability",
			new:      "stage: beta",
			expected: []report.RuleID{report.InvalidStageLabel},
		},
		{
			name:     "stage not in the enumeration",
			old:      "stage: general-availability",
			new:      "stage: bogus",
			expected: []report.RuleID{report.InvalidStageLabel},
		},
		{
			name:     "stage without products",
			old:      "  products:\n    - oss\n",
			new:      "",
			expected: []report.RuleID{report.InvalidStageLabel},
		},
		{
			name:     "canonical shape",
			old:      "canonical: https://grafana.com/docs/alloy/latest/reference/components/loki/loki.source.file/",
			new:      "canonical: https://grafana.com/docs/alloy/latest/loki.source.file",
			expected: []report.RuleID{report.InvalidCanonicalURL},
		},
		{
			name:     "empty description",
			old:      "description: Learn about loki.source.file",
			new:      "description: \"\"",
			expected: []report.RuleID{report.MissingFrontMatterKey},
		},
		{
			name:     "title differs from h1",
			old:      "title: loki.source.file",
			new:      "title: loki.source.files",
			expected: []report.RuleID{report.TitleMismatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validate(t, mustReplace(t, loadFixture(t), tt.old, tt.new))
			assert.Equal(t, tt.expected, rulesOf(r))
		})
	}
}

func TestCanonicalURLIsWarning(t *testing.T) {
	text := mustReplace(t, loadFixture(t), "/reference/components/loki/", "/components/loki/")
	r := validate(t, text)

	require.Len(t, r.Violations, 1)
	assert.Equal(t, report.SeverityWarning, r.Violations[0].Severity)
	assert.False(t, r.Failed(false))
	assert.True(t, r.Failed(true))
}

func TestSectionStructure(t *testing.T) {
	t.Run("missing section", func(t *testing.T) {
		text := loadFixture(t)
		i, j := strings.Index(text, "## Component health"), strings.Index(text, "## Debug information")
		r := validate(t, text[:i]+text[j:])
		require.Equal(t, []report.RuleID{report.MissingSection}, rulesOf(r))
		assert.Contains(t, r.Violations[0].Message, `"Component health"`)
	})

	t.Run("duplicate section", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), "## Debug information\n",
			"## Debug information\n\n`loki.source.file` doesn't expose any component-specific debug information.\n\n## Debug information\n")
		assert.Equal(t, []report.RuleID{report.DuplicateSection}, rulesOf(validate(t, text)))
	})

	t.Run("example and examples", func(t *testing.T) {
		text := loadFixture(t) + "\n## Examples\n\nMore.\n"
		assert.Equal(t, []report.RuleID{report.DuplicateSection}, rulesOf(validate(t, text)))
	})

	t.Run("unexpected section", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), "## Blocks\n", "## Notes\n\nSome notes.\n\n## Blocks\n")
		r := validate(t, text)
		require.Equal(t, []report.RuleID{report.UnexpectedSection}, rulesOf(r))
		assert.Equal(t, "Notes", r.Violations[0].Section)
	})

	t.Run("missing title", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), "# `loki.source.file`\n", "")
		assert.Contains(t, rulesOf(validate(t, text)), report.MissingTitle)
	})

	t.Run("second h1", func(t *testing.T) {
		text := loadFixture(t) + "\n# Another title\n"
		assert.Equal(t, []report.RuleID{report.DuplicateTitle}, rulesOf(validate(t, text)))
	})
}

func TestTableOrFallback(t *testing.T) {
	t.Run("conflicting", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), "## Arguments\n",
			"## Arguments\n\n`loki.source.file` doesn't support any arguments.\n")
		assert.Equal(t, []report.RuleID{report.ConflictingTableAndFallback}, rulesOf(validate(t, text)))
	})

	t.Run("neither", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), "`loki.source.file` doesn't export any fields.\n", "")
		r := validate(t, text)
		require.Equal(t, []report.RuleID{report.MissingTableOrFallback}, rulesOf(r))
		assert.Equal(t, SectionExportedFields, r.Violations[0].Section)
	})

	t.Run("wrong sentence", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), "`loki.source.file` doesn't export any fields.",
			"`loki.source.file` does not export any fields.")
		r := validate(t, text)
		require.Equal(t, []report.RuleID{report.FallbackSentenceMismatch}, rulesOf(r))
		assert.Contains(t, r.Violations[0].Message, "`loki.source.file` doesn't export any fields.")
	})

	t.Run("sentence wrapped over lines", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), "`loki.source.file` doesn't export any fields.",
			"`loki.source.file` doesn't\nexport any fields.")
		assert.Empty(t, validate(t, text).Violations)
	})
}

func TestCellRules(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		expected report.RuleID
	}{
		{
			name:     "unbacked name",
			old:      "| `encoding` | `string` |",
			new:      "| encoding | `string` |",
			expected: report.UnbackedName,
		},
		{
			name:     "unknown type",
			old:      "| `encoding` | `string` |",
			new:      "| `encoding` | `strng` |",
			expected: report.UnknownType,
		},
		{
			name:     "unbacked type",
			old:      "| `encoding` | `string` |",
			new:      "| `encoding` | string |",
			expected: report.UnknownType,
		},
		{
			name:     "required value",
			old:      "| `false` | no |",
			new:      "| `false` | false |",
			expected: report.InvalidRequiredValue,
		},
		{
			name:     "block path",
			old:      "| [`file_watch`][file_watch] |",
			new:      "| file_watch |",
			expected: report.UnbackedName,
		},
		{
			name:     "metric type",
			old:      "| `loki_source_file_read_lines_total` | `counter` |",
			new:      "| `loki_source_file_read_lines_total` | `int` |",
			expected: report.UnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validate(t, mustReplace(t, loadFixture(t), tt.old, tt.new))
			assert.Equal(t, []report.RuleID{tt.expected}, rulesOf(r))
		})
	}
}

func TestRowOrderingHint(t *testing.T) {
	text := mustReplace(t, loadFixture(t),
		"| `encoding` | `string` | The encoding to convert from when reading files. | `\"\"` | no |\n| `tail_from_end` | `bool` | Whether to start reading from the end of new files. | `false` | no |",
		"| `tail_from_end` | `bool` | Whether to start reading from the end of new files. | `false` | no |\n| `encoding` | `string` | The encoding to convert from when reading files. | `\"\"` | no |")
	r := validate(t, text)

	require.Equal(t, []report.RuleID{report.RowOrderingHint}, rulesOf(r))
	assert.Equal(t, report.SeverityHint, r.Violations[0].Severity)
	assert.False(t, r.Failed(false))
}

func TestRequiredRowsFirst(t *testing.T) {
	text := mustReplace(t, loadFixture(t),
		"| `tail_from_end` | `bool` | Whether to start reading from the end of new files. | `false` | no |",
		"| `tail_from_end` | `bool` | Whether to start reading from the end of new files. | `false` | no |\n| `zzz` | `bool` | Required after optional. | | yes |")
	assert.Equal(t, []report.RuleID{report.RowOrderingHint}, rulesOf(validate(t, text)))
}

func TestPlaceholders(t *testing.T) {
	t.Run("undocumented placeholder", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), `url = "<LOKI_URL>"`, "url = \"<LOKI_URL>\"\n    tenant_id = \"<TENANT_ID>\"")
		r := validate(t, text)
		require.Equal(t, []report.RuleID{report.UndocumentedPlaceholder}, rulesOf(r))
		assert.Contains(t, r.Violations[0].Message, "<TENANT_ID>")
		assert.Equal(t, SectionExample, r.Violations[0].Section)
	})

	t.Run("documented only once", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), "- _`<LOKI_URL>`_: The URL of the Loki server to send log entries to.", "")
		text = mustReplace(t, text, `url = "<LOKI_URL>"`, "url = \"<LOKI_URL>\"\n    proxy_url = \"<LOKI_URL>\"")
		assert.Equal(t, []report.RuleID{report.UndocumentedPlaceholder}, rulesOf(validate(t, text)))
	})

	t.Run("replace sentence inside a paragraph", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t),
			"Replace the following:\n\n- _`<LOKI_URL>`_: The URL of the Loki server to send log entries to.",
			"The example writes to a local Loki. Replace _`<LOKI_URL>`_ with the URL of the Loki server.")
		assert.Empty(t, validate(t, text).Violations)
	})

	t.Run("placeholder mentioned without a replace sentence", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t),
			"Replace the following:\n\n- _`<LOKI_URL>`_: The URL of the Loki server to send log entries to.",
			"The example writes to _`<LOKI_URL>`_. Set it to the URL of the Loki server.")
		assert.Equal(t, []report.RuleID{report.UndocumentedPlaceholder}, rulesOf(validate(t, text)))
	})

	markup := []struct {
		name      string
		paragraph string
		malformed bool
	}{
		{"bare", "Set <TOKEN> to your token.", true},
		{"code span only", "Set `<TOKEN>` to your token.", true},
		{"emphasis without code", "Set _<TOKEN>_ to your token.", true},
		{"underscore emphasis", "Set _`<TOKEN>`_ to your token.", false},
		{"star emphasis", "Set *`<TOKEN>`* to your token.", false},
		{"inside longer code", "Send requests to `http://<HOST>:8080/api`.", false},
		{"lowercase tag", "Use a <br> tag.", false},
	}
	for _, tt := range markup {
		t.Run(tt.name, func(t *testing.T) {
			text := mustReplace(t, loadFixture(t), "## Usage\n", "## Usage\n\n"+tt.paragraph+"\n")
			r := validate(t, text)
			if tt.malformed {
				require.Equal(t, []report.RuleID{report.MalformedPlaceholderMarkup}, rulesOf(r))
				assert.Equal(t, SectionUsage, r.Violations[0].Section)
			} else {
				assert.Empty(t, r.Violations)
			}
		})
	}
}

func TestExceptions(t *testing.T) {
	podlogs := strings.ReplaceAll(loadFixture(t), "loki.source.file", "loki.source.podlogs")
	podlogs = mustReplace(t, podlogs, "## Blocks\n", "## PodLogs custom resource\n\nThe PodLogs resource.\n\n## Blocks\n")

	t.Run("built-in allow-list", func(t *testing.T) {
		assert.Empty(t, validate(t, podlogs).Violations)
	})

	t.Run("same section on another component", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), "## Blocks\n", "## PodLogs custom resource\n\nThe PodLogs resource.\n\n## Blocks\n")
		assert.Equal(t, []report.RuleID{report.UnexpectedSection}, rulesOf(validate(t, text)))
	})

	t.Run("configured skip rule", func(t *testing.T) {
		text := mustReplace(t, loadFixture(t), "| `encoding` | `string` |", "| `encoding` | `text` |")
		v := NewValidator(Options{Exceptions: NewExceptions(Exception{
			Component: "loki.source.file",
			SkipRules: []string{string(report.UnknownType)},
		})})
		assert.Empty(t, v.ValidateText(fixturePath, text).Violations)
	})

	t.Run("unknown skip rule", func(t *testing.T) {
		x := Exception{Component: "x", SkipRules: []string{"NoSuchRule", string(report.RowOrderingHint)}}
		assert.Equal(t, []string{"NoSuchRule"}, x.UnknownRules())
		assert.Empty(t, NewExceptions().For("loki.source.podlogs").UnknownRules())
	})
}

func TestParseErrorReport(t *testing.T) {
	text := mustReplace(t, loadFixture(t), "| `targets` | `list(map(string))` |", "| `targets` | `list(map(string))` | extra |")
	r := validate(t, text)

	require.NotNil(t, r.ParseError)
	assert.Equal(t, report.MalformedTable, r.ParseError.Rule)
	assert.Empty(t, r.Violations)
}

func TestReplaceClause(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"Replace the following:", "Replace the following:"},
		{"The example writes logs. Replace `<A>` with a URL.", "Replace `<A>` with a URL."},
		{"Note: Replace `<A>` first.", "Replace `<A>` first."},
		{"Replacement values are optional.", ""},
		{"Nothing to do here.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, replaceClause(tt.text))
		})
	}
}

func TestKnownTypes(t *testing.T) {
	ctx := &pageContext{types: NewValidator(Options{ExtraTypes: []string{"Targets"}}).types}

	valid := []string{
		"string", "number", "bool", "duration", "secret", "any", "object",
		"list(string)", "map(string)", "list(map(string))", "map(list(secret))",
		"capsule(otelcol.Consumer)", "list(otelcol.Consumer)", "capsule([]string)",
		"LogsReceiver", "Targets",
	}
	for _, typ := range valid {
		assert.True(t, ctx.isKnownType(typ), typ)
	}

	invalid := []string{"", "strng", "list()", "list(strng)", "capsule()", "map(string", "int"}
	for _, typ := range invalid {
		assert.False(t, ctx.isKnownType(typ), typ)
	}
}

func TestBlockPath(t *testing.T) {
	valid := []string{
		"`client`",
		"[`client`][client]",
		"[`client`](#client)",
		"`client` > `basic_auth`",
		"[`client`][client] > [`basic_auth`][basic_auth]",
	}
	for _, cell := range valid {
		assert.True(t, isBlockPath(cell), cell)
	}

	invalid := []string{"", "client", "`client` > basic_auth", "[client][client]", "``"}
	for _, cell := range invalid {
		assert.False(t, isBlockPath(cell), cell)
	}
}

func TestValidateParsedDocument(t *testing.T) {
	doc, err := page.Parse(fixturePath, loadFixture(t))
	require.NoError(t, err)

	r := NewValidator(Options{}).Validate(doc)
	assert.Empty(t, r.Violations)
	assert.Equal(t, fixturePath, r.File)
}
