package contract

// Declared schemas for the shared-state documents. These encode the
// required-field and enum checks the integrity validator runs during the
// validation phase. The nested OpenAPI document inside the spec stays
// opaque apart from its version marker; only the envelope is constrained.

// ProjectPlanSchema constrains the business-level contract.
const ProjectPlanSchema = `{
  "type": "object",
  "required": ["project_name", "entities", "tech_stack", "auth_policy"],
  "properties": {
    "project_name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "business_goals": {"type": "array", "items": {"type": "string"}},
    "features": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string"},
          "priority": {"enum": ["high", "medium", "low"]},
          "complexity": {"enum": ["simple", "moderate", "complex"]},
          "dependencies": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string"},
          "fields": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "type"]
            }
          }
        }
      }
    },
    "tech_stack": {
      "type": "object",
      "required": ["frontend", "backend", "database"]
    },
    "auth_policy": {"type": "string"},
    "environment_vars": {"type": "array", "items": {"type": "string"}}
  }
}`

// APISpecSchema constrains the technical contract envelope. The spec
// generator always targets OpenAPI 3.1, so the version marker is pinned.
const APISpecSchema = `{
  "type": "object",
  "required": ["openapi_spec", "revision"],
  "properties": {
    "openapi_spec": {
      "type": "object",
      "required": ["openapi"],
      "properties": {
        "openapi": {"type": "string", "pattern": "^3\\.1"}
      }
    },
    "revision": {"type": "string", "pattern": "^[0-9]+\\.[0-9]+\\.[0-9]+$"},
    "validation_report": {"type": "object"},
    "generated_by": {"type": "string"}
  }
}`

// BackendReportSchema constrains the backend status document.
const BackendReportSchema = `{
  "type": "object",
  "required": ["implemented_endpoints", "compliance_status"],
  "properties": {
    "implemented_endpoints": {"type": "array", "items": {"type": "string"}},
    "compliance_status": {"type": "string"}
  }
}`

// FrontendReportSchema constrains the frontend status document.
const FrontendReportSchema = `{
  "type": "object",
  "required": ["implemented_components", "compliance_status"],
  "properties": {
    "implemented_components": {"type": "array", "items": {"type": "string"}},
    "compliance_status": {"type": "string"}
  }
}`
