package cdk

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodebuild"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodepipeline"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodepipelineactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssnssubscriptions"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkbucket"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// PipelineStackProps configures the delivery pipeline.
type PipelineStackProps struct {
	// Environments are deployed in order. Defaults to the configured environments.
	Environments []clcdkutil.Environment
	// GoVersion of the CodeBuild runtime. Defaults to "1.24".
	GoVersion *string
}

// PipelineStack deploys the samples from GitHub.
type PipelineStack struct {
	awscdk.Stack

	Pipeline      awscodepipeline.Pipeline
	Notifications awssns.Topic
}

// NewPipelineStack creates a V2 pipeline: GitHub source, test and synth, then a
// deploy stage per environment. Environments whose settings require approval get a
// manual approval first. It panics when no GitHub source is configured.
func NewPipelineStack(scope constructs.Construct, props PipelineStackProps) *PipelineStack {
	cfg := clcdkutil.ConfigFromScope(scope)
	if !cfg.HasGitHubSource() {
		panic("pipeline stack requires github-owner, github-repo and github-connection-arn")
	}

	stack := clcdkutil.NewGlobalStack(scope, "Pipeline")
	s := &PipelineStack{Stack: stack}

	envs := props.Environments
	if len(envs) == 0 {
		envs = cfg.ParsedEnvironments()
	}
	goVersion := clcdkutil.OrPtr(props.GoVersion, "1.24")

	s.Notifications = awssns.NewTopic(stack, jsii.String("PipelineNotifications"), &awssns.TopicProps{
		TopicName:   jsii.String(clcdkutil.ResourceName(stack, "pipeline-notifications", clcdkutil.CasingKebab)),
		DisplayName: jsii.String("Pipeline notifications"),
	})
	if cfg.AlertEmail != "" {
		s.Notifications.AddSubscription(awssnssubscriptions.NewEmailSubscription(jsii.String(cfg.AlertEmail), nil))
	}

	artifacts := clcdkbucket.New(stack, "PipelineArtifacts", clcdkbucket.Props{
		Description: jsii.String("Pipeline artifact bucket"),
	})

	source := awscodepipeline.NewArtifact(jsii.String("Source"), nil)
	synthesized := awscodepipeline.NewArtifact(jsii.String("Synth"), nil)

	synth := newBuildProject(stack, "Synth", goVersion, []string{
		"go vet ./...",
		"go test ./...",
		"cd infra/cdk && cdk synth --quiet",
	}, map[string]any{
		"base-directory": "infra/cdk/cdk.out",
		"files":          []string{"**/*"},
	})

	stages := []*awscodepipeline.StageProps{
		{
			StageName: jsii.String("Source"),
			Actions: &[]awscodepipeline.IAction{
				awscodepipelineactions.NewCodeStarConnectionsSourceAction(
					&awscodepipelineactions.CodeStarConnectionsSourceActionProps{
						ActionName:    jsii.String("GitHub"),
						Owner:         jsii.String(cfg.GitHubOwner),
						Repo:          jsii.String(cfg.GitHubRepo),
						Branch:        jsii.String(cfg.GitHubBranch),
						ConnectionArn: jsii.String(cfg.GitHubConnectionARN),
						Output:        source,
					}),
			},
		},
		{
			StageName: jsii.String("Build"),
			Actions: &[]awscodepipeline.IAction{
				awscodepipelineactions.NewCodeBuildAction(&awscodepipelineactions.CodeBuildActionProps{
					ActionName: jsii.String("TestAndSynth"),
					Project:    synth,
					Input:      source,
					Outputs:    &[]awscodepipeline.Artifact{synthesized},
				}),
			},
		},
	}

	for _, env := range envs {
		deploy := newBuildProject(stack, "Deploy"+env.Ident(), goVersion, []string{
			fmt.Sprintf("cd infra/cdk && cdk deploy --require-approval never '%s*%s*'", cfg.Qualifier, env.Ident()),
		}, nil)
		deploy.AddToRolePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Actions:   jsii.Strings("sts:AssumeRole"),
			Resources: jsii.Strings(fmt.Sprintf("arn:aws:iam::*:role/cdk-%s-*", cfg.Qualifier)),
		}))

		var actions []awscodepipeline.IAction
		if env.Settings().RequireApproval {
			actions = append(actions, awscodepipelineactions.NewManualApprovalAction(
				&awscodepipelineactions.ManualApprovalActionProps{
					ActionName:            jsii.String("Approve"),
					NotificationTopic:     s.Notifications,
					AdditionalInformation: jsii.String(fmt.Sprintf("Deploy to %s?", env)),
					RunOrder:              jsii.Number(1),
				}))
		}
		actions = append(actions, awscodepipelineactions.NewCodeBuildAction(&awscodepipelineactions.CodeBuildActionProps{
			ActionName: jsii.String("Deploy"),
			Project:    deploy,
			Input:      source,
			RunOrder:   jsii.Number(float64(len(actions) + 1)),
		}))

		stages = append(stages, &awscodepipeline.StageProps{
			StageName: jsii.String("Deploy" + env.Ident()),
			Actions:   &actions,
		})
	}

	s.Pipeline = awscodepipeline.NewPipeline(stack, jsii.String("Pipeline"), &awscodepipeline.PipelineProps{
		PipelineName:             jsii.String(clcdkutil.ResourceName(stack, "pipeline", clcdkutil.CasingKebab)),
		PipelineType:             awscodepipeline.PipelineType_V2,
		ArtifactBucket:           artifacts,
		RestartExecutionOnUpdate: jsii.Bool(true),
		Stages:                   &stages,
	})

	s.Pipeline.NotifyOn(jsii.String("NotifyOnFailure"), s.Notifications, &awscodepipeline.PipelineNotifyOnOptions{
		NotificationRuleName: jsii.String(clcdkutil.ResourceName(stack, "pipeline-failed", clcdkutil.CasingKebab)),
		Events: &[]awscodepipeline.PipelineNotificationEvents{
			awscodepipeline.PipelineNotificationEvents_PIPELINE_EXECUTION_FAILED,
			awscodepipeline.PipelineNotificationEvents_ACTION_EXECUTION_FAILED,
		},
	})

	clcdkutil.Output(stack, "PipelineName", "CodePipeline name", s.Pipeline.PipelineName())

	return s
}

func newBuildProject(
	scope constructs.Construct, id, goVersion string, commands []string, artifacts map[string]any,
) awscodebuild.PipelineProject {
	buildSpec := map[string]any{
		"version": "0.2",
		"phases": map[string]any{
			"install": map[string]any{
				"runtime-versions": map[string]any{"golang": goVersion, "nodejs": "20"},
				"commands":         []string{"npm install -g aws-cdk"},
			},
			"build": map[string]any{"commands": commands},
		},
	}
	if artifacts != nil {
		buildSpec["artifacts"] = artifacts
	}

	return awscodebuild.NewPipelineProject(scope, jsii.String(id+"Project"), &awscodebuild.PipelineProjectProps{
		ProjectName: jsii.String(clcdkutil.ResourceName(scope, "pipeline-"+id, clcdkutil.CasingKebab)),
		Environment: &awscodebuild.BuildEnvironment{
			BuildImage:  awscodebuild.LinuxBuildImage_STANDARD_7_0(),
			ComputeType: awscodebuild.ComputeType_SMALL,
		},
		BuildSpec: awscodebuild.BuildSpec_FromObject(&buildSpec),
	})
}
