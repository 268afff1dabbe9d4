// Package artifact extracts structured code artifacts from agent response
// text and materializes them to disk. Agents emit generated code inside
// tagged blocks; this package is the only component that touches the
// output tree.
package artifact

import (
	"regexp"
	"strings"

	"github.com/forgeworks/forge/internal/domain"
)

// Artifact tag parsing. Both the <codeartifact> and shorter <artifact>
// spellings are accepted. The content group is non-greedy so multiple
// blocks in one response don't swallow each other; (?s) lets content span
// lines.
var (
	codeArtifactRegex = regexp.MustCompile(`(?is)<(?:code)?artifact\s+([^>]+)>(.*?)</(?:code)?artifact>`)
	attrRegex         = regexp.MustCompile(`(\w+)="([^"]+)"`)
)

// Metadata defaults applied when a tag omits an attribute.
const (
	defaultType       = "text"
	defaultFilename   = "unknown"
	defaultPurpose    = "unknown"
	defaultComplexity = "simple"
)

// Extract parses all code artifact blocks from an agent response. Blocks
// look like:
//
//	<codeartifact type="python" filename="app/main.py" purpose="entry point">
//	...code...
//	</codeartifact>
//
// Attribute order is arbitrary; unrecognized attributes are ignored and
// missing ones get defaults. A response with no blocks yields an empty
// slice, not an error: prose-only responses are legitimate.
func Extract(response string) []domain.CodeArtifact {
	matches := codeArtifactRegex.FindAllStringSubmatch(response, -1)

	artifacts := make([]domain.CodeArtifact, 0, len(matches))
	for _, m := range matches {
		attrs := parseAttrs(m[1])

		artifacts = append(artifacts, domain.CodeArtifact{
			Type:         attrOr(attrs, "type", defaultType),
			Filename:     attrOr(attrs, "filename", defaultFilename),
			Purpose:      attrOr(attrs, "purpose", defaultPurpose),
			Dependencies: attrs["dependencies"],
			Complexity:   attrOr(attrs, "complexity", defaultComplexity),
			Framework:    attrs["framework"],
			Content:      strings.TrimSpace(m[2]),
		})
	}

	return artifacts
}

// parseAttrs extracts key="value" pairs from a tag's attribute string.
func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRegex.FindAllStringSubmatch(raw, -1) {
		attrs[strings.ToLower(m[1])] = m[2]
	}
	return attrs
}

// attrOr returns the attribute value or a default when absent or empty.
func attrOr(attrs map[string]string, key, def string) string {
	if v := attrs[key]; v != "" {
		return v
	}
	return def
}

// complexityForLines classifies content by line count: under 50 lines is
// simple, under 200 moderate, anything larger complex.
func complexityForLines(content string) string {
	lines := strings.Count(content, "\n") + 1
	switch {
	case lines < 50:
		return "simple"
	case lines < 200:
		return "moderate"
	default:
		return "complex"
	}
}
