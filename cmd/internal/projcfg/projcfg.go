// Package projcfg loads cls.toml, which marks the repository root for the CLI.
package projcfg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// FileName is the project configuration file searched for upwards from the
// working directory.
const FileName = "cls.toml"

// DefaultContextPrefix is used when cdk.context_prefix is not set.
const DefaultContextPrefix = "cls-"

// Config is the parsed project configuration.
type Config struct {
	Root string    `toml:"-"`
	Cdk  CdkConfig `toml:"cdk"`
	Aws  AwsConfig `toml:"aws"`
}

// CdkConfig locates the CDK app.
type CdkConfig struct {
	// Dir holding cdk.json, relative to the root.
	Dir string `toml:"dir"`
	// ContextPrefix of the app's context keys in cdk.json.
	ContextPrefix string `toml:"context_prefix"`
}

// AwsConfig is passed on to the cdk and aws CLIs.
type AwsConfig struct {
	Profile string `toml:"profile"`
}

// CdkDir returns the absolute path of the CDK app.
func (c *Config) CdkDir() string {
	return filepath.Join(c.Root, c.Cdk.Dir)
}

// ProfileArgs returns the --profile flag for the cdk and aws CLIs, if configured.
func (c *Config) ProfileArgs() []string {
	if c.Aws.Profile == "" {
		return nil
	}
	return []string{"--profile", c.Aws.Profile}
}

// Load finds cls.toml in the working directory or one of its parents.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "getting working directory")
	}
	return LoadFrom(wd)
}

// LoadFrom finds cls.toml in dir or one of its parents.
func LoadFrom(dir string) (*Config, error) {
	root, err := findRoot(dir)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(filepath.Join(root, FileName), &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", FileName)
	}

	cfg.Root = root
	if cfg.Cdk.ContextPrefix == "" {
		cfg.Cdk.ContextPrefix = DefaultContextPrefix
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", FileName)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Cdk.Dir == "" {
		return errors.New("cdk.dir is required")
	}
	if filepath.IsAbs(c.Cdk.Dir) {
		return errors.Newf("cdk.dir must be relative, got %q", c.Cdk.Dir)
	}
	if !strings.HasSuffix(c.Cdk.ContextPrefix, "-") {
		return errors.Newf("cdk.context_prefix must end with '-', got %q", c.Cdk.ContextPrefix)
	}
	return nil
}

func findRoot(dir string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Newf("could not find %s in any parent directory", FileName)
		}
		dir = parent
	}
}
