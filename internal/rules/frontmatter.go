package rules

import (
	"regexp"
	"strings"

	"github.com/conneroisu/validate-docs/internal/report"
)

var (
	requiredFrontMatterKeys = []string{"canonical", "description", "title"}

	canonicalURL = regexp.MustCompile(`^https://[^/\s]+/(?:\S*/)?reference/components/\S+/$`)
)

// frontMatterLine is where front matter findings point: the opening ---.
const frontMatterLine = 1

func checkFrontMatter(ctx *pageContext) []report.Violation {
	fm := ctx.doc.FrontMatter
	var out []report.Violation

	for _, key := range requiredFrontMatterKeys {
		if fm.String(key) == "" {
			out = append(out, report.New(report.MissingFrontMatterKey, "", frontMatterLine,
				"front matter key %q is missing or empty", key))
		}
	}

	if fm.Has("labels.stage") {
		stage := fm.String("labels.stage")
		if !contains(stageLabels, stage) {
			out = append(out, report.New(report.InvalidStageLabel, "", frontMatterLine,
				"labels.stage %q must be one of %s", stage, strings.Join(stageLabels, ", ")))
		}
		if len(fm.Strings("labels.products")) == 0 {
			out = append(out, report.New(report.InvalidStageLabel, "", frontMatterLine,
				"labels.products must be set when labels.stage is set"))
		}
	}

	if canonical := fm.String("canonical"); canonical != "" && !canonicalURL.MatchString(canonical) {
		out = append(out, report.New(report.InvalidCanonicalURL, "", frontMatterLine,
			"canonical %q does not match https://.../reference/components/<path>/", canonical))
	}

	if title := fm.String("title"); title != "" {
		if h := ctx.doc.Title(); h != nil {
			if heading := strings.Trim(strings.TrimSpace(h.Text), "`"); heading != title {
				out = append(out, report.New(report.TitleMismatch, "", h.Line,
					"h1 %q does not match front matter title %q", heading, title))
			}
		}
	}

	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
