// Package oracle runs lowered programs on the external dataflow engine.
//
// The optimizer uses an Oracle to evaluate constant subexpressions, so every
// failure here is a toolchain failure: it aborts the compilation instead of
// leaving the node unfolded.
package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"dlc/internal/igr"
	"dlc/internal/trace"
)

// Oracle evaluates a program text on a list of inputs.
type Oracle interface {
	Run(ctx context.Context, program string, inputs []igr.Value) (igr.Value, error)
}

// DefaultTimeout bounds a single engine run.
const DefaultTimeout = 10 * time.Second

// Kind classifies a toolchain failure.
type Kind uint8

const (
	KindNotFound  Kind = iota + 1 // engine binary missing
	KindExit                      // non-zero exit status
	KindTimeout                   // run exceeded its deadline
	KindBadOutput                 // stdout is not a value
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindExit:
		return "exit"
	case KindTimeout:
		return "timeout"
	case KindBadOutput:
		return "bad output"
	default:
		return "unknown"
	}
}

// ToolchainError reports a failure of the external engine.
type ToolchainError struct {
	Kind     Kind
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolchainError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", e.Tool, e.Kind)
	if e.Kind == KindExit {
		fmt.Fprintf(&sb, " status %d", e.ExitCode)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		sb.WriteString(": ")
		sb.WriteString(msg)
	}
	return sb.String()
}

func (e *ToolchainError) Unwrap() error { return e.Err }

// IsToolchain reports whether err carries a ToolchainError.
func IsToolchain(err error) bool {
	var te *ToolchainError
	return errors.As(err, &te)
}

// Process runs the engine binary as "<Path> - -i v1 -i v2 ..." with the
// program on stdin and reads the result value from stdout.
type Process struct {
	Path    string
	Timeout time.Duration
}

// NewProcess returns a process oracle for path with the default timeout.
func NewProcess(path string) *Process {
	return &Process{Path: path, Timeout: DefaultTimeout}
}

func (p *Process) Run(ctx context.Context, program string, inputs []igr.Value) (igr.Value, error) {
	span, ctx := trace.BeginCtx(ctx, trace.ScopeNode, "oracle")
	span.WithExtra("inputs", fmt.Sprint(len(inputs)))

	v, err := p.run(ctx, program, inputs)
	if err != nil {
		span.End("error")
		return igr.Value{}, err
	}
	span.End(v.String())
	return v, nil
}

func (p *Process) run(parent context.Context, program string, inputs []igr.Value) (igr.Value, error) {
	path, err := exec.LookPath(p.Path)
	if err != nil {
		return igr.Value{}, &ToolchainError{Kind: KindNotFound, Tool: p.Path, Err: err}
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	args := make([]string, 0, 1+2*len(inputs))
	args = append(args, "-")
	for _, v := range inputs {
		args = append(args, "-i", v.String())
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = strings.NewReader(program)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// the caller gave up; the engine did not fail
		if perr := parent.Err(); perr != nil {
			return igr.Value{}, perr
		}
		if ctx.Err() == context.DeadlineExceeded {
			return igr.Value{}, &ToolchainError{Kind: KindTimeout, Tool: p.Path, Stderr: stderr.String(), Err: ctx.Err()}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return igr.Value{}, &ToolchainError{Kind: KindExit, Tool: p.Path, ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return igr.Value{}, &ToolchainError{Kind: KindNotFound, Tool: p.Path, Err: err}
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return igr.Value{}, &ToolchainError{Kind: KindBadOutput, Tool: p.Path, Stderr: stderr.String(), Err: errors.New("empty output")}
	}
	// the engine may print trace output first; the value is the last line
	if i := strings.LastIndexByte(out, '\n'); i >= 0 {
		out = strings.TrimSpace(out[i+1:])
	}
	v, err := igr.ParseValue(out)
	if err != nil {
		return igr.Value{}, &ToolchainError{Kind: KindBadOutput, Tool: p.Path, Err: err}
	}
	return v, nil
}

// Func adapts a function to Oracle.
type Func func(ctx context.Context, program string, inputs []igr.Value) (igr.Value, error)

func (f Func) Run(ctx context.Context, program string, inputs []igr.Value) (igr.Value, error) {
	return f(ctx, program, inputs)
}
