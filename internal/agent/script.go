package agent

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/forgeworks/forge/internal/constants"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
)

// ScriptInvoker replays canned responses from a YAML script instead of
// calling a live agent. Useful for dry runs and deterministic pipelines.
//
// Script format, one list of responses per role, consumed in order:
//
//	planner:
//	  - '{"project_name": "todo", ...}'
//	api_spec_generator:
//	  - '{"openapi_spec": {...}}'
//	backend:
//	  - '<codeartifact type="python" filename="app/main.py" ...>...</codeartifact>'
//
// A role that repeats past its list reuses the last response, so retry
// loops in the caller don't exhaust a single-entry script.
type ScriptInvoker struct {
	mu        sync.Mutex
	responses map[string][]string
	consumed  map[string]int
}

// LoadScript reads a response script from a YAML file.
func LoadScript(path string) (*ScriptInvoker, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to read agent script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript builds a ScriptInvoker from raw YAML.
func ParseScript(data []byte) (*ScriptInvoker, error) {
	var responses map[string][]string
	if err := yaml.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("failed to parse agent script: %w", err)
	}
	return &ScriptInvoker{
		responses: responses,
		consumed:  make(map[string]int),
	}, nil
}

// Invoke returns the next scripted response for role.
func (s *ScriptInvoker) Invoke(_ context.Context, role constants.AgentRole, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.responses[role.String()]
	if len(list) == 0 {
		return "", fmt.Errorf("no scripted response for role %q: %w",
			role, forgeerrors.ErrAgentInvocation)
	}

	i := s.consumed[role.String()]
	if i >= len(list) {
		i = len(list) - 1
	}
	s.consumed[role.String()] = i + 1

	return list[i], nil
}

// Compile-time check that ScriptInvoker implements Invoker.
var _ Invoker = (*ScriptInvoker)(nil)
