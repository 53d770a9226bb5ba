package encoder

import (
	"context"
	"fmt"
	"strings"
)

// Encoder turns one input image into one encoded output file.
type Encoder interface {
	Encode(ctx context.Context, input, output string, options []string) error
}

// Func adapts a plain function to the Encoder interface.
type Func func(ctx context.Context, input, output string, options []string) error

// Encode calls f.
func (f Func) Encode(ctx context.Context, input, output string, options []string) error {
	return f(ctx, input, output, options)
}

// Config contains encoder configuration
type Config struct {
	Binary string
}

// EncodeError is returned when the encoder process exits unsuccessfully.
type EncodeError struct {
	Input  string
	Stderr string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("encode %s: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("encode %s: %v: %s", e.Input, e.Err, e.Stderr)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// tail keeps the last n non-empty lines of encoder stderr for error messages.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	out := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(out) < n; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			out = append(out, l)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return strings.Join(out, " | ")
}
