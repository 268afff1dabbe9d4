package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateJSON_ValidDocuments(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"object", `{"a":1}`},
		{"array", `[1,2,3]`},
		{"nested", `{"plan":{"entities":[{"name":"User"}]}}`},
		{"surrounding whitespace", "  \n {\"a\": true} \n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateJSON(tt.text)
			assert.True(t, res.Valid)
			assert.NotNil(t, res.Data)
			assert.Empty(t, res.Err)
		})
	}
}

func TestValidateJSON_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "not json"},
		{"empty", ""},
		{"truncated", `{"a":`},
		{"trailing content", `{"a":1} {"b":2}`},
		{"trailing garbage", `[1,2] oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateJSON(tt.text)
			assert.False(t, res.Valid)
			assert.Nil(t, res.Data)
			assert.NotEmpty(t, res.Err)
		})
	}
}

func TestHasMarkdownOrCommentary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"pure object", `{"a":1}`, false},
		{"pure array", `[{"a":1}]`, false},
		{"snake_case keys are fine", `{"project_name":"x","tech_stack":{}}`, false},
		{"fenced block", "```json\n{\"a\":1}\n```", true},
		{"leading prose", "Here is the plan: {\"a\":1}", true},
		{"heading line", "{\"a\":1,\n# heading\n\"b\":2}", true},
		{"line comment", "{\n// comment\n\"a\":1}", true},
		{"html comment", `{"a":1}<!-- note -->`, true},
		{"bold emphasis", `{"a":"**important**"}`, true},
		{"empty", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasMarkdownOrCommentary(tt.text))
		})
	}
}

func TestValidateAgainstSchema_ReportsAllViolations(t *testing.T) {
	schema := `{
		"type": "object",
		"required": ["name", "status"],
		"properties": {
			"status": {"enum": ["active", "done"]}
		}
	}`

	res := ValidateJSON(`{"status": "bogus"}`)
	require.True(t, res.Valid)

	sr := ValidateAgainstSchema(res.Data, schema)
	assert.False(t, sr.Valid)
	// Both the missing required field and the enum violation are reported.
	require.Len(t, sr.Errors, 2)
}

func TestValidateAgainstSchema_Valid(t *testing.T) {
	res := ValidateJSON(`{"name":"x","status":"active"}`)
	require.True(t, res.Valid)

	sr := ValidateAgainstSchema(res.Data, `{"type":"object","required":["name"]}`)
	assert.True(t, sr.Valid)
	assert.Empty(t, sr.Errors)
}

func TestValidateAgainstSchema_BadSchema(t *testing.T) {
	sr := ValidateAgainstSchema(map[string]any{}, `{"type": 42}`)
	assert.False(t, sr.Valid)
	require.Len(t, sr.Errors, 1)
	assert.Contains(t, sr.Errors[0], "schema error")
}

func TestProjectPlanSchema_RequiredFields(t *testing.T) {
	res := ValidateJSON(`{"project_name":"todo"}`)
	require.True(t, res.Valid)

	sr := ValidateAgainstSchema(res.Data, ProjectPlanSchema)
	assert.False(t, sr.Valid)
	assert.NotEmpty(t, sr.Errors)
}

func TestProjectPlanSchema_ValidPlan(t *testing.T) {
	plan := `{
		"project_name": "todo",
		"entities": [{"name": "Task", "fields": [{"name": "title", "type": "string"}]}],
		"tech_stack": {"frontend": "react", "backend": "fastapi", "database": "mongodb"},
		"auth_policy": "jwt"
	}`
	res := ValidateJSON(plan)
	require.True(t, res.Valid)

	sr := ValidateAgainstSchema(res.Data, ProjectPlanSchema)
	assert.True(t, sr.Valid, "violations: %v", sr.Errors)
}
