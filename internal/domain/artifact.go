package domain

// CodeArtifact is one extracted file destined to be materialized on disk.
// Artifacts are transient: created by the extractor from one response text
// and consumed immediately by the materializer. They are not persisted as
// standalone entities beyond the resulting file.
type CodeArtifact struct {
	// Type is the artifact type tag (e.g. "python", "react", "json", "text").
	Type string `json:"type"`

	// Filename is the relative path under the materializer's base directory.
	Filename string `json:"filename"`

	// Purpose is a free-text description of what the file is for.
	Purpose string `json:"purpose"`

	// Dependencies is optional free-text dependency information.
	Dependencies string `json:"dependencies,omitempty"`

	// Complexity is one of simple, moderate, complex.
	Complexity string `json:"complexity,omitempty"`

	// Framework is the frontend framework hint (frontend artifacts only).
	Framework string `json:"framework,omitempty"`

	// Content is the raw file content. An empty content body is legal and
	// materializes as an empty file.
	Content string `json:"content"`
}
