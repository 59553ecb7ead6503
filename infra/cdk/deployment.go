package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// Environment holds the sample stacks of one environment.
type Environment struct {
	Buckets    *BucketsStack
	Network    *NetworkStack
	Database   *DatabaseStack
	Auth       *AuthStack
	SimpleApi  *SimpleApiStack
	FileUpload *FileUploadStack
	Waf        *WafStack
	Website    *WebsiteStack
	Monitoring *MonitoringStack
}

// NewEnvironment creates every sample stack for env. The items API is protected by
// the user pool outside of dev.
func NewEnvironment(scope constructs.Construct, shared *Shared, env clcdkutil.Environment) *Environment {
	e := &Environment{}

	e.Buckets = NewBucketsStack(scope, env, BucketsStackProps{})

	e.Network = NewNetworkStack(scope, env, NetworkStackProps{})
	e.Database = NewDatabaseStack(scope, env, DatabaseStackProps{
		Vpc:              e.Network.Vpc,
		AppSecurityGroup: e.Network.AppSecurityGroup,
	})

	e.Auth = NewAuthStack(scope, env, AuthStackProps{})
	apiProps := SimpleApiStackProps{}
	if env != clcdkutil.EnvironmentDev {
		apiProps.UserPool = e.Auth.UserPool
	}
	e.SimpleApi = NewSimpleApiStack(scope, shared, env, apiProps)

	e.FileUpload = NewFileUploadStack(scope, shared, env, FileUploadStackProps{})

	e.Waf = NewWafStack(scope, env, WafStackProps{})
	e.Website = NewWebsiteStack(scope, shared, env, WebsiteStackProps{WebACL: e.Waf.WebACL})

	e.Monitoring = NewMonitoringStack(scope, env, MonitoringStackProps{
		Functions: []MonitoredFunction{
			{Name: "Items", Function: e.SimpleApi.Gateway.Lambda().Function()},
			{Name: "Files", Function: e.FileUpload.Gateway.Lambda().Function()},
			{Name: "Processor", Function: e.FileUpload.Processor.Function()},
		},
		Apis: []MonitoredApi{
			{Name: "Items", Api: e.SimpleApi.Gateway.RestApi()},
			{Name: "Files", Api: e.FileUpload.Gateway.RestApi()},
		},
	})

	return e
}

// ContextPrefix prefixes every context key of the app in cdk.json.
const ContextPrefix = "cls-"

// Setup validates the context of app and declares the shared stack, every
// environment and, when a GitHub source is configured, the pipeline stack.
func Setup(app awscdk.App) *clcdkutil.Config {
	cfg := clcdkutil.SetupApp(app, clcdkutil.AppConfig{Prefix: ContextPrefix}, NewShared,
		func(scope constructs.Construct, shared *Shared, env clcdkutil.Environment) {
			NewEnvironment(scope, shared, env)
		})

	if cfg.HasGitHubSource() {
		NewPipelineStack(app, PipelineStackProps{})
	}

	return cfg
}
