//nolint:paralleltest // jsii runtime doesn't support parallel tests
package cdk_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
	"github.com/hijiri0404/cdk-learning-samples/infra/cdk"
)

func TestSimpleApiStack_DevIsOpen(t *testing.T) {
	defer jsii.Close()

	s := cdk.NewSimpleApiStack(newApp(t), &cdk.Shared{}, clcdkutil.EnvironmentDev, cdk.SimpleApiStackProps{})

	if s.Gateway.DomainName() != "" {
		t.Errorf("DomainName() = %q without a base domain", s.Gateway.DomainName())
	}

	template := templateOf(s.Stack)
	template.ResourceCountIs(jsii.String("AWS::DynamoDB::GlobalTable"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]any{
		"GlobalSecondaryIndexes": []any{
			assertions.Match_ObjectLike(&map[string]any{"IndexName": cdk.ItemsCategoryIndex}),
		},
	})
	template.HasResourceProperties(jsii.String("AWS::ApiGateway::RestApi"), map[string]any{
		"Name": "cls-dev-items-api",
	})
	template.ResourceCountIs(jsii.String("AWS::ApiGateway::Authorizer"), jsii.Number(0))
	template.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]any{
		"Environment": map[string]any{
			"Variables": assertions.Match_ObjectLike(&map[string]any{
				"TABLE_NAME": assertions.Match_AnyValue(),
			}),
		},
	})
}

func TestSimpleApiStack_UserPoolProtectsMutations(t *testing.T) {
	defer jsii.Close()

	app := newApp(t)
	auth := cdk.NewAuthStack(app, clcdkutil.EnvironmentStg, cdk.AuthStackProps{})
	s := cdk.NewSimpleApiStack(app, &cdk.Shared{}, clcdkutil.EnvironmentStg, cdk.SimpleApiStackProps{
		UserPool: auth.UserPool,
	})

	template := templateOf(s.Stack)
	template.ResourceCountIs(jsii.String("AWS::ApiGateway::Authorizer"), jsii.Number(1))

	cognito := template.FindResources(jsii.String("AWS::ApiGateway::Method"), map[string]any{
		"Properties": map[string]any{"AuthorizationType": "COGNITO_USER_POOLS"},
	})
	if got := len(*cognito); got != 3 {
		t.Errorf("got %d Cognito-protected methods, want 3", got)
	}
}
