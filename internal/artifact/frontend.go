package artifact

import (
	"path"
	"regexp"
	"strings"

	"github.com/forgeworks/forge/internal/domain"
)

// Frontend responses are more often emitted as ad hoc code blocks than as
// proper artifact tags, so the frontend variant carries two fallbacks: a
// simpler <file path=""> tag, and fenced code blocks led by a filename
// comment.
var (
	fileTagRegex = regexp.MustCompile(`(?is)<file\s+path="([^"]+)"\s*>(.*?)</file>`)

	// Fenced block whose first line is a filename comment, e.g.
	//   ```tsx
	//   // src/App.tsx
	//   ...
	//   ```
	fencedFileRegex = regexp.MustCompile("(?m)```[a-zA-Z0-9]*\\n((?://|/\\*|<!--|#)\\s*([\\w./-]+\\.\\w+).*)\\n((?s:.*?))```")

	// A single fence wrapper around tag content, optional language hint.
	fenceWrapRegex = regexp.MustCompile("(?s)\\A```[a-zA-Z0-9]*\\n(.*?)\\n?```\\z")
)

// ExtractFrontend parses frontend code artifacts from an agent response.
// Tagged blocks are preferred; when none are found it falls back to
// <file path=""> blocks, then to fenced code blocks annotated with a
// leading filename comment. Content double-wrapped in both a tag and a
// markdown fence has the single fence layer stripped.
func ExtractFrontend(response string) []domain.CodeArtifact {
	artifacts := Extract(response)
	if len(artifacts) > 0 {
		for i := range artifacts {
			artifacts[i].Content = stripFenceWrapper(artifacts[i].Content)
			if artifacts[i].Type == defaultType {
				artifacts[i].Type = "react"
			}
			if artifacts[i].Framework == "" {
				artifacts[i].Framework = "react"
			}
		}
		return artifacts
	}

	if artifacts := extractFileTags(response); len(artifacts) > 0 {
		return artifacts
	}

	return extractAnnotatedFences(response)
}

// extractFileTags parses the secondary <file path="...">...</file> format.
func extractFileTags(response string) []domain.CodeArtifact {
	matches := fileTagRegex.FindAllStringSubmatch(response, -1)

	artifacts := make([]domain.CodeArtifact, 0, len(matches))
	for _, m := range matches {
		content := stripFenceWrapper(strings.TrimSpace(m[2]))
		artifacts = append(artifacts, domain.CodeArtifact{
			Type:       typeForExtension(m[1]),
			Filename:   m[1],
			Purpose:    "frontend component",
			Complexity: complexityForLines(content),
			Framework:  "react",
			Content:    content,
		})
	}
	return artifacts
}

// extractAnnotatedFences scans for fenced code blocks whose first line is a
// filename comment and builds artifacts from them.
func extractAnnotatedFences(response string) []domain.CodeArtifact {
	matches := fencedFileRegex.FindAllStringSubmatch(response, -1)

	artifacts := make([]domain.CodeArtifact, 0, len(matches))
	for _, m := range matches {
		filename := m[2]
		content := strings.TrimSpace(m[3])
		artifacts = append(artifacts, domain.CodeArtifact{
			Type:       typeForExtension(filename),
			Filename:   filename,
			Purpose:    "frontend component",
			Complexity: complexityForLines(content),
			Framework:  "react",
			Content:    content,
		})
	}
	return artifacts
}

// stripFenceWrapper removes a single leading/trailing markdown fence pair
// wrapping the whole content, keeping the inner source intact. Content
// without a full wrapper is returned unchanged.
func stripFenceWrapper(content string) string {
	if m := fenceWrapRegex.FindStringSubmatch(strings.TrimSpace(content)); m != nil {
		return strings.TrimSpace(m[1])
	}
	return content
}

// typeForExtension infers an artifact type from the filename extension.
func typeForExtension(filename string) string {
	switch path.Ext(filename) {
	case ".tsx", ".jsx":
		return "react"
	case ".ts":
		return "typescript"
	case ".js":
		return "javascript"
	case ".css":
		return "css"
	case ".json":
		return "json"
	case ".html":
		return "html"
	default:
		return "text"
	}
}
