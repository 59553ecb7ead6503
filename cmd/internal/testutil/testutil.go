// Package testutil holds helpers shared by the CLI tests.
package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// Setup writes files (relative path to content) below a fresh temporary directory
// and returns its path.
func Setup(tb testing.TB, files map[string]string) string {
	tb.Helper()

	root := tb.TempDir()

	for relPath, content := range files {
		fullPath := filepath.Join(root, relPath)

		dir := filepath.Dir(fullPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			tb.Fatalf("creating directory %s: %v", dir, err)
		}

		if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
			tb.Fatalf("writing file %s: %v", fullPath, err)
		}
	}

	return root
}

// RequireBinary skips the test when name is not in PATH.
func RequireBinary(tb testing.TB, name string) {
	tb.Helper()

	if _, err := exec.LookPath(name); err != nil {
		tb.Skipf("skipping: %s not in PATH", name)
	}
}

// Call is one recorded command invocation.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// Line returns the command line, e.g. "cdk deploy clsApn1Dev*".
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner records invocations instead of running them. Outputs and Errors are keyed
// by a prefix of the command line; the longest matching prefix wins.
type Runner struct {
	Outputs map[string]string
	Errors  map[string]error

	mu    sync.Mutex
	calls []Call
}

func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) error {
	_, err := r.Output(ctx, dir, name, args...)
	return err
}

func (r *Runner) Output(_ context.Context, dir, name string, args ...string) (string, error) {
	call := Call{Dir: dir, Name: name, Args: args}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	line := call.Line()
	if key, ok := longestPrefix(r.Errors, line); ok {
		return "", r.Errors[key]
	}
	if key, ok := longestPrefix(r.Outputs, line); ok {
		return r.Outputs[key], nil
	}
	return "", nil
}

// Calls returns the recorded invocations in order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Lines returns the command lines of the recorded invocations.
func (r *Runner) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

func longestPrefix[V any](m map[string]V, line string) (string, bool) {
	best, found := "", false
	for key := range m {
		if strings.HasPrefix(line, key) && len(key) >= len(best) {
			best, found = key, true
		}
	}
	return best, found
}
