//nolint:paralleltest // jsii runtime doesn't support parallel tests
package cdk_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdktest"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
	"github.com/hijiri0404/cdk-learning-samples/infra/cdk"
)

func TestMonitoringStack_AlarmsPerFunctionAndApi(t *testing.T) {
	defer jsii.Close()

	cfg := clcdktest.Config(t)
	cfg.AlertEmail = "ops@example.com"
	app := clcdktest.NewApp(cfg)

	api := cdk.NewSimpleApiStack(app, &cdk.Shared{}, clcdkutil.EnvironmentStg, cdk.SimpleApiStackProps{})
	s := cdk.NewMonitoringStack(app, clcdkutil.EnvironmentStg, cdk.MonitoringStackProps{
		Functions: []cdk.MonitoredFunction{{Name: "Items", Function: api.Gateway.Lambda().Function()}},
		Apis:      []cdk.MonitoredApi{{Name: "Items", Api: api.Gateway.RestApi()}},
	})

	if got := len(s.Alarms); got != 3 {
		t.Fatalf("got %d alarms, want 3", got)
	}

	template := templateOf(s.Stack)
	template.ResourceCountIs(jsii.String("AWS::CloudWatch::Alarm"), jsii.Number(3))
	template.AllResourcesProperties(jsii.String("AWS::CloudWatch::Alarm"), map[string]any{
		"Threshold":          5,
		"ComparisonOperator": "GreaterThanOrEqualToThreshold",
		"TreatMissingData":   "notBreaching",
		"AlarmActions":       []any{assertions.Match_AnyValue()},
	})
	template.HasResourceProperties(jsii.String("AWS::CloudWatch::Alarm"), map[string]any{
		"AlarmName":  "cls-stg-items-errors",
		"MetricName": "Errors",
		"Namespace":  "AWS/Lambda",
	})
	template.HasResourceProperties(jsii.String("AWS::CloudWatch::Alarm"), map[string]any{
		"MetricName": "Throttles",
	})
	template.HasResourceProperties(jsii.String("AWS::CloudWatch::Alarm"), map[string]any{
		"AlarmName":  "cls-stg-items-server-errors",
		"MetricName": "5XXError",
		"Namespace":  "AWS/ApiGateway",
	})
	template.HasResourceProperties(jsii.String("AWS::SNS::Topic"), map[string]any{
		"TopicName": "cls-stg-alarms",
	})
	template.HasResourceProperties(jsii.String("AWS::SNS::Subscription"), map[string]any{
		"Protocol": "email",
		"Endpoint": "ops@example.com",
	})
	template.HasResourceProperties(jsii.String("AWS::CloudWatch::Dashboard"), map[string]any{
		"DashboardName": "cls-stg-overview",
	})
}

func TestMonitoringStack_ProdThresholdWithoutEmail(t *testing.T) {
	defer jsii.Close()

	app := newApp(t)
	files := cdk.NewFileUploadStack(app, &cdk.Shared{}, clcdkutil.EnvironmentProd, cdk.FileUploadStackProps{})
	s := cdk.NewMonitoringStack(app, clcdkutil.EnvironmentProd, cdk.MonitoringStackProps{
		Functions: []cdk.MonitoredFunction{{Name: "Processor", Function: files.Processor.Function()}},
	})

	template := templateOf(s.Stack)
	template.ResourceCountIs(jsii.String("AWS::CloudWatch::Alarm"), jsii.Number(2))
	template.AllResourcesProperties(jsii.String("AWS::CloudWatch::Alarm"), map[string]any{
		"Threshold": 1,
	})
	template.ResourceCountIs(jsii.String("AWS::SNS::Subscription"), jsii.Number(0))
}
