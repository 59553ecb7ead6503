package cmdexec_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/cmdexec"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec_Output(t *testing.T) {
	t.Parallel()
	testutil.RequireBinary(t, "sh")

	out, err := cmdexec.Exec{}.Output(context.Background(), t.TempDir(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestExec_RunStreamsOutput(t *testing.T) {
	t.Parallel()
	testutil.RequireBinary(t, "sh")

	var stdout, stderr bytes.Buffer
	r := cmdexec.Exec{Stdout: &stdout, Stderr: &stderr}

	require.NoError(t, r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo out; echo err >&2"))
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestExec_FailureCarriesExitCodeAndStderr(t *testing.T) {
	t.Parallel()
	testutil.RequireBinary(t, "sh")

	dir := t.TempDir()
	_, err := cmdexec.Exec{}.Output(context.Background(), dir, "sh", "-c", "echo broken >&2; exit 3")
	require.Error(t, err)

	var cerr *cmdexec.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 3, cerr.ExitCode)
	assert.Equal(t, dir, cerr.Dir)
	assert.Contains(t, cerr.Error(), "exit 3")
	assert.Contains(t, cerr.Error(), "broken")
	assert.Equal(t, 3, cmdexec.ExitCode(err))
}

func TestExec_RejectsRelativeDir(t *testing.T) {
	t.Parallel()

	_, err := cmdexec.Exec{}.Output(context.Background(), "relative", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be absolute")

	err = cmdexec.Exec{}.Run(context.Background(), "relative", "true")
	require.Error(t, err)
	assert.Equal(t, -1, cmdexec.ExitCode(err))
}
