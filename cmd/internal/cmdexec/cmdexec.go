// Package cmdexec runs the external CLIs (cdk, aws) the developer CLI wraps.
package cmdexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Error describes a command that exited unsuccessfully.
type Error struct {
	Cmd      string
	Args     []string
	Dir      string
	ExitCode int
	Stderr   string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("(in %s) %s %s", e.Dir, e.Cmd, strings.Join(e.Args, " "))
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit %d\n%s", msg, e.ExitCode, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("%s: exit %d", msg, e.ExitCode)
}

// Runner executes commands in a directory. Commands take a Runner so tests can
// record invocations instead of spawning processes.
type Runner interface {
	// Run streams the command's output to the terminal.
	Run(ctx context.Context, dir, name string, args ...string) error
	// Output captures stdout.
	Output(ctx context.Context, dir, name string, args ...string) (string, error)
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	// Stdout and Stderr default to the process' own.
	Stdout io.Writer
	Stderr io.Writer
}

var _ Runner = Exec{}

func (e Exec) Output(ctx context.Context, dir, name string, args ...string) (string, error) {
	if !filepath.IsAbs(dir) {
		return "", errors.Newf("cmdexec: dir must be absolute, got %q", dir)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", wrapErr(dir, name, args, err, stderr.String())
	}
	return string(out), nil
}

func (e Exec) Run(ctx context.Context, dir, name string, args ...string) error {
	if !filepath.IsAbs(dir) {
		return errors.Newf("cmdexec: dir must be absolute, got %q", dir)
	}

	stdout, stderr := e.Stdout, e.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	var stderrBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	if err := cmd.Run(); err != nil {
		return wrapErr(dir, name, args, err, stderrBuf.String())
	}
	return nil
}

// ExitCode returns the exit code of a failed command, or -1 if err is not an *Error.
func ExitCode(err error) int {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.ExitCode
	}
	return -1
}

func wrapErr(dir, name string, args []string, err error, stderr string) error {
	exitCode := 1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
		if stderr == "" {
			stderr = string(exitErr.Stderr)
		}
	}
	return &Error{
		Cmd:      name,
		Args:     args,
		Dir:      dir,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}
