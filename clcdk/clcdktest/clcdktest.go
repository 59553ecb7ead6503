// Package clcdktest holds helpers for synthesizing stacks in tests.
package clcdktest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// ModuleRoot returns the directory holding the repository's go.mod.
func ModuleRoot(tb testing.TB) string {
	tb.Helper()

	dir, err := os.Getwd()
	if err != nil {
		tb.Fatalf("getting working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			tb.Fatal("go.mod not found above working directory")
		}
		dir = parent
	}
}

// Config returns a valid Config whose source root is the repository root.
func Config(tb testing.TB) *clcdkutil.Config {
	tb.Helper()

	return &clcdkutil.Config{
		Prefix:           "cls-",
		Qualifier:        "cls",
		Region:           "ap-northeast-1",
		Environments:     []string{"dev", "stg", "prod"},
		SourceRoot:       ModuleRoot(tb),
		GitHubBranch:     clcdkutil.DefaultGitHubBranch,
		AllowedFileTypes: clcdkutil.DefaultAllowedFileTypes,
	}
}

// NewApp creates an app that skips asset bundling and carries cfg.
func NewApp(cfg *clcdkutil.Config) awscdk.App {
	app := awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]any{
			"aws:cdk:bundling-stacks": []any{},
		},
	})
	clcdkutil.StoreConfig(app, cfg)
	return app
}

// NewStack creates a plain stack in the configured region tagged with env.
func NewStack(app awscdk.App, env clcdkutil.Environment) awscdk.Stack {
	cfg := clcdkutil.ConfigFromScope(app)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: jsii.String("123456789012"),
			Region:  jsii.String(cfg.Region),
		},
	})
	clcdkutil.StoreEnvironment(stack, env)
	return stack
}
