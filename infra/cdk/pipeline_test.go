//nolint:paralleltest // jsii runtime doesn't support parallel tests
package cdk_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdktest"
	"github.com/hijiri0404/cdk-learning-samples/infra/cdk"
)

const connectionARN = "arn:aws:codeconnections:ap-northeast-1:123456789012:connection/abc"

func TestPipelineStack_StagesPerEnvironment(t *testing.T) {
	defer jsii.Close()

	cfg := clcdktest.Config(t)
	cfg.GitHubOwner = "octo"
	cfg.GitHubRepo = "samples"
	cfg.GitHubConnectionARN = connectionARN
	cfg.AlertEmail = "ops@example.com"

	s := cdk.NewPipelineStack(clcdktest.NewApp(cfg), cdk.PipelineStackProps{})

	if got := *s.StackName(); got != "clsApn1Pipeline" {
		t.Errorf("stack name = %q", got)
	}

	template := templateOf(s.Stack)
	template.HasResourceProperties(jsii.String("AWS::CodePipeline::Pipeline"), map[string]any{
		"Name":         "cls-pipeline",
		"PipelineType": "V2",
		"Stages": []any{
			assertions.Match_ObjectLike(&map[string]any{
				"Name": "Source",
				"Actions": []any{
					assertions.Match_ObjectLike(&map[string]any{
						"Configuration": assertions.Match_ObjectLike(&map[string]any{
							"FullRepositoryId": "octo/samples",
							"BranchName":       "main",
							"ConnectionArn":    connectionARN,
						}),
					}),
				},
			}),
			assertions.Match_ObjectLike(&map[string]any{"Name": "Build"}),
			assertions.Match_ObjectLike(&map[string]any{"Name": "DeployDev"}),
			assertions.Match_ObjectLike(&map[string]any{"Name": "DeployStg"}),
			assertions.Match_ObjectLike(&map[string]any{
				"Name": "DeployProd",
				"Actions": []any{
					assertions.Match_ObjectLike(&map[string]any{
						"Name":         "Approve",
						"ActionTypeId": assertions.Match_ObjectLike(&map[string]any{"Category": "Approval"}),
					}),
					assertions.Match_ObjectLike(&map[string]any{"Name": "Deploy"}),
				},
			}),
		},
	})
	// synth plus one deploy project per environment
	template.ResourceCountIs(jsii.String("AWS::CodeBuild::Project"), jsii.Number(4))
	template.ResourceCountIs(jsii.String("AWS::CodeStarNotifications::NotificationRule"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::SNS::Subscription"), map[string]any{
		"Endpoint": "ops@example.com",
	})
	template.HasOutput(jsii.String("PipelineName"), map[string]any{})
}

func TestPipelineStack_PanicsWithoutSource(t *testing.T) {
	defer jsii.Close()

	defer func() {
		if recover() == nil {
			t.Error("NewPipelineStack() should panic without a GitHub source")
		}
	}()
	cdk.NewPipelineStack(newApp(t), cdk.PipelineStackProps{})
}
