package projcfg_test

import (
	"path/filepath"
	"testing"

	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/projcfg"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_FindsRootFromSubdirectory(t *testing.T) {
	t.Parallel()

	root := testutil.Setup(t, map[string]string{
		"cls.toml": "[cdk]\ndir = \"infra/cdk\"\n\n[aws]\nprofile = \"samples\"\n",
		"backend/internal/items/.keep": "",
	})

	cfg, err := projcfg.LoadFrom(filepath.Join(root, "backend", "internal", "items"))
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, filepath.Join(root, "infra", "cdk"), cfg.CdkDir())
	assert.Equal(t, projcfg.DefaultContextPrefix, cfg.Cdk.ContextPrefix)
	assert.Equal(t, []string{"--profile", "samples"}, cfg.ProfileArgs())
}

func TestLoadFrom_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing dir", "[cdk]\n", "cdk.dir is required"},
		{"absolute dir", "[cdk]\ndir = \"/infra/cdk\"\n", "must be relative"},
		{"bad prefix", "[cdk]\ndir = \"infra/cdk\"\ncontext_prefix = \"cls\"\n", "must end with '-'"},
		{"not toml", "[cdk\n", "parsing cls.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := testutil.Setup(t, map[string]string{"cls.toml": tt.content})

			_, err := projcfg.LoadFrom(root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFrom_NotFound(t *testing.T) {
	t.Parallel()

	_, err := projcfg.LoadFrom(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find cls.toml")
}

func TestConfig_NoProfile(t *testing.T) {
	t.Parallel()

	cfg := &projcfg.Config{}
	assert.Nil(t, cfg.ProfileArgs())
}
