//nolint:paralleltest // jsii runtime doesn't support parallel tests
package clcdkutil_test

import (
	"testing"

	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdktest"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

func TestNewGlobalStack(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))

	shared := clcdkutil.NewSharedStack(app)
	pipeline := clcdkutil.NewGlobalStack(app, "Pipeline")

	if got := *shared.StackName(); got != "clsApn1Shared" {
		t.Errorf("shared stack name = %q", got)
	}
	if got := *pipeline.StackName(); got != "clsApn1Pipeline" {
		t.Errorf("pipeline stack name = %q", got)
	}
	if env := clcdkutil.EnvironmentOf(pipeline); env != "" {
		t.Errorf("global stack environment = %q, want empty", env)
	}
}

func TestNewStack_EdgeRegion(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))
	stack := clcdkutil.NewStack(app, clcdkutil.EnvironmentStg, "Waf", clcdkutil.InRegion(clcdkutil.EdgeRegion))

	if got := *stack.StackName(); got != "clsUse1StgWaf" {
		t.Errorf("stack name = %q", got)
	}
	if got := *stack.Region(); got != "us-east-1" {
		t.Errorf("region = %q", got)
	}
}

func TestDomainName(t *testing.T) {
	tests := []struct {
		env  clcdkutil.Environment
		want string
	}{
		{clcdkutil.EnvironmentDev, "dev-www.example.com"},
		{clcdkutil.EnvironmentStg, "stg-www.example.com"},
		{clcdkutil.EnvironmentProd, "www.example.com"},
	}
	for _, tt := range tests {
		if got := clcdkutil.DomainName(tt.env, "www", "example.com"); got != tt.want {
			t.Errorf("DomainName(%s) = %q, want %q", tt.env, got, tt.want)
		}
	}
}
