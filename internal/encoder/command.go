package encoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// CommandEncoder implements Encoder by running a cwebp-compatible binary:
// <binary> <options...> <input> -o <output>
type CommandEncoder struct {
	binary string
}

// NewCommandEncoder resolves the encoder binary on PATH.
func NewCommandEncoder(cfg Config) (*CommandEncoder, error) {
	if cfg.Binary == "" {
		return nil, fmt.Errorf("encoder binary cannot be empty")
	}

	path, err := exec.LookPath(cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("encoder %q not found: %w", cfg.Binary, err)
	}

	return &CommandEncoder{binary: path}, nil
}

// Binary returns the resolved encoder path.
func (e *CommandEncoder) Binary() string {
	return e.binary
}

// Encode runs the encoder for a single file. A partial output left behind by a
// failed run is removed.
func (e *CommandEncoder) Encode(ctx context.Context, input, output string, options []string) error {
	args := make([]string, 0, len(options)+3)
	args = append(args, options...)
	args = append(args, input, "-o", output)

	cmd := exec.CommandContext(ctx, e.binary, args...)

	var stderrBuf bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		_ = os.Remove(output)
		return &EncodeError{
			Input:  input,
			Stderr: tail(stderrBuf.String(), 3),
			Err:    err,
		}
	}

	if _, err := os.Stat(output); err != nil {
		return &EncodeError{
			Input:  input,
			Stderr: tail(stderrBuf.String(), 3),
			Err:    fmt.Errorf("encoder produced no output: %w", err),
		}
	}

	return nil
}
