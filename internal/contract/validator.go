// Package contract implements the JSON contract gates that guard every
// shared-state write: strict JSON parsing, a markdown/commentary scan, and
// structural schema validation. All functions are pure; validation failures
// are reported as values, never raised, so callers decide whether to reject
// or warn.
package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Result is the outcome of a strict JSON parse.
type Result struct {
	// Valid is true when the text parsed as a single JSON document.
	Valid bool

	// Data is the parsed document (maps/slices/strings/numbers/bools),
	// nil when Valid is false.
	Data any

	// Err is the specific parse error, empty when Valid is true.
	Err string
}

// ValidateJSON attempts a strict parse of text as exactly one JSON document.
// Trailing non-whitespace content after the document is rejected, matching
// the behavior contract producers are held to: the payload is JSON and
// nothing else.
func ValidateJSON(text string) Result {
	dec := json.NewDecoder(strings.NewReader(text))

	var data any
	if err := dec.Decode(&data); err != nil {
		return Result{Valid: false, Err: fmt.Sprintf("invalid JSON: %v", err)}
	}

	// A second token means the payload carried more than one document.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Result{Valid: false, Err: "invalid JSON: trailing content after document"}
	}

	return Result{Valid: true, Data: data}
}

// HasMarkdownOrCommentary reports whether text carries markdown or comment
// artifacts that disqualify it as a pure-JSON contract payload: fenced code
// blocks, heading or blockquote lines, bold emphasis, HTML or line comments,
// or a leading character that is not '{' or '['.
//
// This is a heuristic pre-condition gate, deliberately strict: any positive
// match means the payload must be rejected before contract-critical writes
// are even attempted.
func HasMarkdownOrCommentary(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return true
	}
	if strings.Contains(text, "```") || strings.Contains(text, "<!--") || strings.Contains(text, "**") {
		return true
	}
	for _, line := range strings.Split(text, "\n") {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "#") || strings.HasPrefix(l, "//") || strings.HasPrefix(l, ">") {
			return true
		}
	}
	return false
}

// SchemaResult is the outcome of a structural schema validation.
type SchemaResult struct {
	// Valid is true when no violations were found.
	Valid bool

	// Errors lists every violation found, not just the first. This lets the
	// producing agent correct all issues in one retry.
	Errors []string
}

// ValidateAgainstSchema validates a parsed JSON document against a JSON
// schema (given as schema source text). It returns every violation found.
// A schema that fails to compile is itself reported as a violation rather
// than an error, keeping the function total.
func ValidateAgainstSchema(data any, schema string) SchemaResult {
	compiled, err := jsonschema.CompileString("contract.schema.json", schema)
	if err != nil {
		return SchemaResult{Valid: false, Errors: []string{fmt.Sprintf("schema error: %v", err)}}
	}

	if err := compiled.Validate(data); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return SchemaResult{Valid: false, Errors: flattenViolations(ve)}
		}
		return SchemaResult{Valid: false, Errors: []string{err.Error()}}
	}

	return SchemaResult{Valid: true, Errors: []string{}}
}

// flattenViolations walks the validation error tree and collects the leaf
// causes, which carry the specific violations. Interior nodes only repeat
// "doesn't validate with" framing and are skipped when they have children.
func flattenViolations(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Message)}
	}

	var out []string
	for _, cause := range ve.Causes {
		out = append(out, flattenViolations(cause)...)
	}
	return out
}
