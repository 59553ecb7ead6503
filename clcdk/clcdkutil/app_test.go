//nolint:paralleltest // jsii runtime doesn't support parallel tests
package clcdkutil_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

type testShared struct {
	StackName string
}

func TestSetupApp(t *testing.T) {
	defer jsii.Close()

	ctx := map[string]any{
		"cls-qualifier":    "cls",
		"cls-region":       "ap-northeast-1",
		"cls-environments": []any{"dev", "prod"},
	}
	app := awscdk.NewApp(&awscdk.AppProps{Context: &ctx})

	var sharedCalls int
	var envStacks []awscdk.Stack

	cfg := clcdkutil.SetupApp(app, clcdkutil.AppConfig{Prefix: "cls-"},
		func(stack awscdk.Stack) *testShared {
			sharedCalls++
			return &testShared{StackName: *stack.StackName()}
		},
		func(scope constructs.Construct, shared *testShared, env clcdkutil.Environment) {
			if shared.StackName != "clsApn1Shared" {
				t.Errorf("shared stack name = %q, want %q", shared.StackName, "clsApn1Shared")
			}
			envStacks = append(envStacks, clcdkutil.NewStack(scope, env, "Network"))
		},
	)

	if cfg.Qualifier != "cls" {
		t.Errorf("returned config qualifier = %q", cfg.Qualifier)
	}
	if sharedCalls != 1 {
		t.Fatalf("expected 1 shared call, got %d", sharedCalls)
	}
	if len(envStacks) != 2 {
		t.Fatalf("expected 2 environment stacks, got %d", len(envStacks))
	}

	wantNames := []string{"clsApn1DevNetwork", "clsApn1ProdNetwork"}
	for i, want := range wantNames {
		if got := *envStacks[i].StackName(); got != want {
			t.Errorf("stack %d name = %q, want %q", i, got, want)
		}
		if got := *envStacks[i].Region(); got != "ap-northeast-1" {
			t.Errorf("stack %d region = %q, want ap-northeast-1", i, got)
		}
	}
	if got := clcdkutil.EnvironmentOf(envStacks[1]); got != clcdkutil.EnvironmentProd {
		t.Errorf("EnvironmentOf(prod stack) = %q", got)
	}
}

func TestSetupApp_PanicsOnInvalidContext(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing context")
		}
	}()

	clcdkutil.SetupApp(app, clcdkutil.AppConfig{Prefix: "cls-"},
		func(awscdk.Stack) struct{} { return struct{}{} },
		func(constructs.Construct, struct{}, clcdkutil.Environment) {},
	)
}

func TestNewStack_InRegion(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	clcdkutil.StoreConfig(app, testConfig())

	stack := clcdkutil.NewStack(app, clcdkutil.EnvironmentDev, "Website",
		clcdkutil.InRegion(clcdkutil.EdgeRegion))

	if got := *stack.StackName(); got != "clsUse1DevWebsite" {
		t.Errorf("StackName = %q, want %q", got, "clsUse1DevWebsite")
	}
	if got := *stack.Region(); got != clcdkutil.EdgeRegion {
		t.Errorf("Region = %q, want %q", got, clcdkutil.EdgeRegion)
	}
}

func TestNewStack_PanicsWithoutEnvironment(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	clcdkutil.StoreConfig(app, testConfig())

	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty environment")
		}
	}()

	clcdkutil.NewStack(app, "", "Network")
}
