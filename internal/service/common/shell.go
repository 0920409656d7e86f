//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/oshokin/app-deployer/internal/logger"
)

// ErrSubprocess is matched by every SubprocessError.
var ErrSubprocess = errors.New("subprocess failed")

// Command is a shell line and the directory it runs in.
type Command struct {
	// Line is passed verbatim to the platform shell.
	Line string
	// Dir is the working directory; empty means the current one.
	Dir string
}

// CommandResult is the captured output of a finished command.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// SubprocessError reports a command that could not start or exited non-zero.
type SubprocessError struct {
	// Command is the shell line that failed.
	Command string
	// ExitCode is -1 when the process never ran to completion.
	ExitCode int
	// Stderr is the captured error stream.
	Stderr string
	// Err is the original failure.
	Err error
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("command %q exited with code %d: %v", e.Command, e.ExitCode, e.Err)
}

// Unwrap exposes both ErrSubprocess and the original failure.
func (e *SubprocessError) Unwrap() []error {
	return []error{ErrSubprocess, e.Err}
}

// CommandRunner runs shell commands to completion.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (*CommandResult, error)
}

// ShellRunner runs commands through /bin/sh, or cmd.exe on Windows.
type ShellRunner struct{}

// NewShellRunner returns the default CommandRunner.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{}
}

// Run executes cmd, capturing stdout and stderr. On failure it logs the
// command with its stderr and returns a *SubprocessError.
func (r *ShellRunner) Run(ctx context.Context, cmd Command) (*CommandResult, error) {
	name, args := shellInvocation(cmd.Line)

	//nolint:gosec // G204: Running configured commands is the whole point.
	process := exec.CommandContext(ctx, name, args...)
	process.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer

	process.Stdout = &stdout
	process.Stderr = &stderr

	logger.DebugKV(ctx, "Running command", "command", cmd.Line, "dir", cmd.Dir)

	err := process.Run()

	result := &CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return result, nil
	}

	result.ExitCode = -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}

	logger.ErrorKV(ctx, "Error running command", "command", cmd.Line, "exit_code", result.ExitCode)

	if stderrText := strings.TrimSpace(result.Stderr); stderrText != "" {
		logger.Error(ctx, stderrText)
	}

	return result, &SubprocessError{
		Command:  cmd.Line,
		ExitCode: result.ExitCode,
		Stderr:   result.Stderr,
		Err:      err,
	}
}

// Quote makes arg safe to append to a shell line.
func Quote(arg string) string {
	if isWindows() {
		return `"` + strings.ReplaceAll(arg, `"`, `""`) + `"`
	}

	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

func shellInvocation(line string) (string, []string) {
	if isWindows() {
		return "cmd.exe", []string{"/C", line}
	}

	return "/bin/sh", []string{"-c", line}
}

func isWindows() bool {
	return strings.Contains(strings.ToLower(runtime.GOOS), "windows")
}
