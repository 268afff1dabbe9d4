package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/forgeworks/forge/internal/constants"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
)

// CommandInvoker shells out to an external CLI for every agent call. The
// prompt goes to the command's stdin and the response is read from stdout;
// the role is appended to the configured args so one binary can serve all
// roles.
type CommandInvoker struct {
	command string
	args    []string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewCommandInvoker creates a CommandInvoker. A zero timeout falls back to
// the default agent timeout.
func NewCommandInvoker(command string, args []string, timeout time.Duration, logger zerolog.Logger) *CommandInvoker {
	if timeout <= 0 {
		timeout = constants.DefaultAgentTimeout
	}
	return &CommandInvoker{
		command: command,
		args:    args,
		timeout: timeout,
		logger:  logger,
	}
}

// Invoke runs the configured command with the role appended to its args,
// writing the prompt to stdin and returning trimmed stdout.
func (c *CommandInvoker) Invoke(ctx context.Context, role constants.AgentRole, prompt string) (string, error) {
	if c.command == "" {
		return "", fmt.Errorf("agent command %w", forgeerrors.ErrEmptyValue)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := make([]string, 0, len(c.args)+2)
	args = append(args, c.args...)
	args = append(args, "--role", role.String())

	cmd := exec.CommandContext(ctx, c.command, args...) //#nosec G204 -- command comes from operator config, not agent output
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	c.logger.Debug().
		Str("role", role.String()).
		Str("command", c.command).
		Dur("elapsed", elapsed).
		Err(err).
		Msg("agent command finished")

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("agent %q timed out after %s: %w",
				role, c.timeout, forgeerrors.ErrAgentInvocation)
		}
		return "", fmt.Errorf("agent %q command failed: %v: %s: %w",
			role, err, strings.TrimSpace(stderr.String()), forgeerrors.ErrAgentInvocation)
	}

	response := strings.TrimSpace(stdout.String())
	if response == "" {
		return "", fmt.Errorf("agent %q returned an empty response: %w",
			role, forgeerrors.ErrAgentInvocation)
	}

	return response, nil
}

// Compile-time check that CommandInvoker implements Invoker.
var _ Invoker = (*CommandInvoker)(nil)
