package page

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	docerrors "github.com/conneroisu/validate-docs/internal/errors"
)

const frontMatterDelimiter = "---"

// FrontMatter is the decoded YAML header of a page. Nested mappings are
// addressed with dotted paths such as "labels.stage".
type FrontMatter map[string]interface{}

// Lookup resolves a dotted path.
func (fm FrontMatter) Lookup(path string) (interface{}, bool) {
	var current interface{} = map[string]interface{}(fm)
	for _, key := range strings.Split(path, ".") {
		var m map[string]interface{}
		switch v := current.(type) {
		case map[string]interface{}:
			m = v
		case FrontMatter:
			m = v
		default:
			return nil, false
		}
		var ok bool
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Has reports whether the path is present, whatever its value.
func (fm FrontMatter) Has(path string) bool {
	_, ok := fm.Lookup(path)
	return ok
}

// String returns the value at path rendered as a trimmed string. Missing and
// null values yield "".
func (fm FrontMatter) String(path string) string {
	v, ok := fm.Lookup(path)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []interface{}, map[string]interface{}, FrontMatter:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// Strings returns the value at path as a list of non-empty strings. A scalar
// string is returned as a one-element list.
func (fm FrontMatter) Strings(path string) []string {
	v, ok := fm.Lookup(path)
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return nil
}

// parseFrontMatter decodes the front matter at the top of lines and returns
// the index of the first body line.
func parseFrontMatter(lines []string) (FrontMatter, int, error) {
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != frontMatterDelimiter {
		return FrontMatter{}, 0, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == frontMatterDelimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, 0, docerrors.NewParseError(docerrors.ErrCodeMalformedFrontMatter,
			"front matter is not terminated by a --- line", 1)
	}

	content := strings.Join(lines[1:end], "\n")
	// Decoding into the named type would make yaml.v3 reuse it for nested
	// mappings as well.
	var fm map[string]interface{}
	if strings.TrimSpace(content) != "" {
		if err := yaml.Unmarshal([]byte(content), &fm); err != nil {
			perr := docerrors.NewParseError(docerrors.ErrCodeMalformedFrontMatter,
				"front matter is not a YAML key/value mapping", 2)
			perr.Cause = err
			return nil, 0, perr
		}
	}

	if fm == nil {
		fm = map[string]interface{}{}
	}
	return FrontMatter(fm), end + 1, nil
}
