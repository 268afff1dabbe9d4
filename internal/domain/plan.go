// Package domain provides shared domain types for the FORGE orchestration core.
// These types are used across all internal packages to ensure consistent data
// structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case. Every document type here is a plain
// JSON-compatible structure (maps/lists/strings/numbers/bools only) so it can
// be serialized wholesale to any persistent store without a custom encoder.
package domain

// ProjectPlan is the business-level contract produced by the planning phase.
// Once stored it is immutable except via a full rewrite through the shared
// state store; no partial field mutation happens outside that gate.
//
// Example JSON representation:
//
//	{
//	    "project_name": "todo-app",
//	    "description": "Todo list with user accounts",
//	    "business_goals": ["track tasks", "multi-user"],
//	    "features": [...],
//	    "entities": [...],
//	    "tech_stack": {"frontend": "react", "backend": "fastapi", "database": "mongodb"},
//	    "auth_policy": "jwt",
//	    "environment_vars": ["DATABASE_URL"],
//	    "deliverables_milestones": [...]
//	}
type ProjectPlan struct {
	// ProjectName is the short machine-friendly project identifier.
	ProjectName string `json:"project_name"`

	// Description is a human-readable summary of the product request.
	Description string `json:"description"`

	// BusinessGoals is the ordered list of goals driving the plan.
	BusinessGoals []string `json:"business_goals,omitempty"`

	// Features lists the planned product features.
	Features []Feature `json:"features,omitempty"`

	// Entities lists the business entities the application manages.
	Entities []Entity `json:"entities,omitempty"`

	// TechStack records the frontend/backend/database choices.
	TechStack TechStack `json:"tech_stack"`

	// AuthPolicy is the authentication policy (e.g. "jwt", "session", "none").
	AuthPolicy string `json:"auth_policy"`

	// EnvironmentVars lists environment variable names the application needs.
	EnvironmentVars []string `json:"environment_vars,omitempty"`

	// DeliverablesMilestones lists the delivery milestones.
	DeliverablesMilestones []Milestone `json:"deliverables_milestones,omitempty"`
}

// Feature is one planned product feature.
type Feature struct {
	// Name identifies the feature.
	Name string `json:"name"`

	// Description explains what the feature does.
	Description string `json:"description,omitempty"`

	// Priority is one of high, medium, low.
	Priority string `json:"priority,omitempty"`

	// Complexity is one of simple, moderate, complex.
	Complexity string `json:"complexity,omitempty"`

	// Dependencies references other features by name. Cycles are not
	// disallowed here; that is left to the caller.
	Dependencies []string `json:"dependencies,omitempty"`
}

// Entity is one business entity in the plan.
type Entity struct {
	// Name identifies the entity.
	Name string `json:"name"`

	// Description explains the entity's role.
	Description string `json:"description,omitempty"`

	// Fields lists the entity's fields.
	Fields []Field `json:"fields,omitempty"`

	// Relationships is a free-text list of entity relationships.
	Relationships []string `json:"relationships,omitempty"`

	// BusinessRules is a free-text list of rules governing the entity.
	BusinessRules []string `json:"business_rules,omitempty"`
}

// Field is one field of an Entity.
type Field struct {
	// Name identifies the field.
	Name string `json:"name"`

	// Type is a semantic type tag (e.g. "string", "email", "datetime").
	Type string `json:"type"`

	// Required indicates whether the field must be present.
	Required bool `json:"required,omitempty"`

	// Constraints is free-text constraint description.
	Constraints string `json:"constraints,omitempty"`
}

// TechStack is the enum-constrained technology selection record.
type TechStack struct {
	Frontend string `json:"frontend"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
}

// Milestone is one delivery milestone.
type Milestone struct {
	// Name identifies the milestone.
	Name string `json:"name"`

	// Deliverables lists what the milestone delivers.
	Deliverables []string `json:"deliverables,omitempty"`
}
