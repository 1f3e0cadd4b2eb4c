package toolregistry

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultBashTimeout = 120 * time.Second
	maxBashTimeout      = 600 * time.Second
	maxBashOutput       = 30000
)

// BashTool runs a shell command to completion. Approval for the command is
// decided upstream by the approval engine; by the time Execute runs, the
// caller has already been cleared to run it.
type BashTool struct{}

func (t *BashTool) Name() string        { return "bash" }
func (t *BashTool) Description() string { return "Execute a shell command and return its output." }

func (t *BashTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The shell command to execute.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Brief description of what this command does.",
			},
			"timeout": map[string]any{
				"type":        "integer",
				"description": "Timeout in milliseconds (default 120000, max 600000).",
			},
		},
		"required": []string{"command"},
	}
}

func (t *BashTool) Execute(ctx context.Context, params map[string]any, cwd string) Result {
	command, ok := params["command"].(string)
	if !ok || command == "" {
		return ErrorResult("command is required")
	}

	timeout := defaultBashTimeout
	if v, ok := params["timeout"].(float64); ok && v > 0 {
		timeout = min(time.Duration(v)*time.Millisecond, maxBashTimeout)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	cmd.Dir = cwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		if output != "" {
			output += "\n"
		}
		output += stderr.String()
	}
	if len(output) > maxBashOutput {
		output = output[:maxBashOutput] + "\n... (output truncated)"
	}

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return Result{Content: output + fmt.Sprintf("\ncommand timed out after %s", timeout), IsError: true}
		}
		msg := err.Error()
		if exitErr, ok := err.(*exec.ExitError); ok {
			msg = fmt.Sprintf("exit code %d", exitErr.ExitCode())
		}
		if output != "" {
			msg = output + "\n" + msg
		}
		return Result{Content: msg, IsError: true}
	}

	if strings.TrimSpace(output) == "" {
		output = "(no output)"
	}
	return Result{Content: output}
}
