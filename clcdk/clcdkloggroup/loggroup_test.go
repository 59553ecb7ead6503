//nolint:paralleltest // jsii runtime doesn't support parallel tests
package clcdkloggroup_test

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkloggroup"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

func newStack(env clcdkutil.Environment) (awscdk.App, awscdk.Stack) {
	app := awscdk.NewApp(nil)
	clcdkutil.StoreConfig(app, &clcdkutil.Config{Qualifier: "cls", Region: "ap-northeast-1"})
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)
	clcdkutil.StoreEnvironment(stack, env)
	return app, stack
}

func TestNew_RetentionFollowsEnvironment(t *testing.T) {
	defer jsii.Close()

	tests := []struct {
		env       clcdkutil.Environment
		retention float64
		deletion  string
	}{
		{clcdkutil.EnvironmentDev, 7, "Delete"},
		{clcdkutil.EnvironmentProd, 90, "Retain"},
	}

	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			_, stack := newStack(tt.env)
			clcdkloggroup.New(stack, "Api", clcdkloggroup.Props{Purpose: jsii.String("api logs")})

			template := assertions.Template_FromStack(stack, nil)
			template.HasResourceProperties(jsii.String("AWS::Logs::LogGroup"), map[string]any{
				"RetentionInDays": tt.retention,
			})
			template.HasResource(jsii.String("AWS::Logs::LogGroup"), map[string]any{
				"DeletionPolicy": tt.deletion,
			})
		})
	}
}

func TestNew_RetentionOverride(t *testing.T) {
	defer jsii.Close()

	_, stack := newStack(clcdkutil.EnvironmentDev)
	clcdkloggroup.New(stack, "Flow", clcdkloggroup.Props{
		Purpose:   jsii.String("flow logs"),
		Retention: awslogs.RetentionDays_ONE_DAY,
	})

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::Logs::LogGroup"), map[string]any{
		"RetentionInDays": 1,
	})
}

func TestNew_CreatesOutput(t *testing.T) {
	defer jsii.Close()

	app, stack := newStack(clcdkutil.EnvironmentDev)
	lg := clcdkloggroup.New(stack, "MyLogs", clcdkloggroup.Props{
		Purpose: jsii.String("Lambda function logs"),
	})
	if lg.LogGroup() == nil {
		t.Fatal("LogGroup() should not be nil")
	}

	template := app.Synth(nil).GetStackByName(jsii.String("TestStack")).Template()

	templateJSON, err := json.Marshal(template)
	if err != nil {
		t.Fatalf("failed to marshal template: %v", err)
	}

	var tmpl struct {
		Outputs map[string]struct {
			Description string
		}
	}
	if err := json.Unmarshal(templateJSON, &tmpl); err != nil {
		t.Fatalf("failed to unmarshal template: %v", err)
	}

	found := false
	for _, out := range tmpl.Outputs {
		if out.Description == "CloudWatch Log Group for Lambda function logs" {
			found = true
		}
	}
	if !found {
		t.Errorf("template should have a log group output, got %v", tmpl.Outputs)
	}
}
