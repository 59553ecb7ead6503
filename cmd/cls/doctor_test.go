package main

import (
	"bytes"
	"os/exec"
	"testing"

	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/bincheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorCmd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		missing string
		wantErr bool
		want    []string
	}{
		{"all present", "", false, []string{"✓ cdk (/bin/cdk)", "✓ aws (/bin/aws)", "qualifier cls", "All checks passed."}},
		{"aws missing", "aws", true, []string{"✗ aws not found: reads stack outputs"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := setupProject(t, "[cdk]\ndir = \"infra/cdk\"\n")
			checker := &bincheck.Checker{LookPath: func(file string) (string, error) {
				if file == tt.missing {
					return "", exec.ErrNotFound
				}
				return "/bin/" + file, nil
			}}

			var out bytes.Buffer
			err := (&DoctorCmd{}).Run(cfg, checker, &out)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}
