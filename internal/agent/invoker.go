// Package agent defines how the orchestrator talks to external LLM-backed
// agents. An agent call is one opaque synchronous invocation that returns
// text; everything after that (validating it, extracting artifacts from it,
// rejecting it) belongs to the caller.
package agent

import (
	"context"

	"github.com/forgeworks/forge/internal/constants"
)

// Invoker produces one agent response for a role and prompt.
type Invoker interface {
	// Invoke asks the agent playing role to respond to prompt. The returned
	// text is raw and untrusted; callers validate or extract before use.
	Invoke(ctx context.Context, role constants.AgentRole, prompt string) (string, error)
}
