package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forgeworks/forge/internal/constants"
)

// Prompt builders for each role. Contract-critical roles are told twice to
// emit pure JSON; experience says once is not enough.

// PlannerPrompt asks the planner for a project plan document.
func PlannerPrompt(request string) string {
	var b strings.Builder
	b.WriteString("You are the planning agent for a full-stack code generation team.\n")
	b.WriteString("Produce a project plan for the following product request.\n\n")
	fmt.Fprintf(&b, "Request:\n%s\n\n", request)
	b.WriteString("Respond with a single JSON object containing: project_name, description, ")
	b.WriteString("business_goals, features, entities, tech_stack, auth_policy, ")
	b.WriteString("environment_vars, deliverables_milestones.\n")
	b.WriteString("Respond with pure JSON only. No markdown fences, no commentary.\n")
	return b.String()
}

// SpecPrompt asks the spec generator to derive an API contract from the plan.
func SpecPrompt(plan map[string]any) string {
	var b strings.Builder
	b.WriteString("You are the API specification agent.\n")
	b.WriteString("Derive an OpenAPI contract from this project plan:\n\n")
	writeDoc(&b, plan)
	b.WriteString("\nRespond with a single JSON object with an openapi_spec field ")
	b.WriteString("holding the full OpenAPI 3.1 document with openapi set to \"3.1.0\".\n")
	b.WriteString("Respond with pure JSON only. No markdown fences, no commentary.\n")
	return b.String()
}

// CodePrompt asks a code generation agent (backend or frontend) to emit
// tagged artifacts implementing the API contract.
func CodePrompt(role constants.AgentRole, spec map[string]any) string {
	side := "backend"
	if role == constants.RoleFrontend {
		side = "frontend"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s generation agent.\n", side)
	b.WriteString("Implement this API contract:\n\n")
	writeDoc(&b, spec)
	b.WriteString("\nEmit every generated file inside a tagged block:\n")
	b.WriteString(`<codeartifact type="..." filename="relative/path" purpose="..." dependencies="..." complexity="..." framework="...">` + "\n")
	b.WriteString("file content\n")
	b.WriteString("</codeartifact>\n")
	return b.String()
}

// ValidationPrompt asks for a compliance review of the generated outputs.
func ValidationPrompt(spec, backendReport, frontendReport map[string]any) string {
	var b strings.Builder
	b.WriteString("You are the validation agent. Review the implementation reports ")
	b.WriteString("against the API contract.\n\nContract:\n")
	writeDoc(&b, spec)
	b.WriteString("\nBackend report:\n")
	writeDoc(&b, backendReport)
	b.WriteString("\nFrontend report:\n")
	writeDoc(&b, frontendReport)
	b.WriteString("\nRespond with a single JSON object: {\"valid\": bool, \"issues\": [string]}.\n")
	b.WriteString("Respond with pure JSON only. No markdown fences, no commentary.\n")
	return b.String()
}

// writeDoc embeds a document as indented JSON.
func writeDoc(b *strings.Builder, doc map[string]any) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		b.WriteString("{}")
		return
	}
	b.Write(data)
	b.WriteString("\n")
}
