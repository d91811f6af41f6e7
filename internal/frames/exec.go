package frames

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// runCommand executes a media tool and returns its stdout. On failure the
// returned error carries the tool's stderr output.
func runCommand(ctx context.Context, bin string, args []string) ([]byte, error) {
	// #nosec G204 - bin is set by the application, not user input
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s cancelled: %w", bin, ctx.Err())
		}
		return nil, &CommandError{
			Bin:    bin,
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return stdout.Bytes(), nil
}

// CommandError represents a failed media tool invocation, including the
// stderr output.
type CommandError struct {
	Bin    string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s error: %v\nargs: %v\nstderr: %s", e.Bin, e.Err, e.Args, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
