// Package clcdkutil provides the plumbing shared by all sample stacks: validated
// CDK context, environment settings, stack and resource naming and Go bundling.
//
// # Quick Start
//
//	func main() {
//	    defer jsii.Close()
//	    app := awscdk.NewApp(nil)
//
//	    clcdkutil.SetupApp(app, clcdkutil.AppConfig{Prefix: "cls-"},
//	        func(stack awscdk.Stack) *Shared { return NewShared(stack) },
//	        func(scope constructs.Construct, shared *Shared, env clcdkutil.Environment) {
//	            NewNetworkStack(clcdkutil.NewStack(scope, env, "Network"), NetworkStackProps{})
//	        },
//	    )
//
//	    app.Synth(nil)
//	}
//
// # CDK Context Configuration
//
// With prefix "cls-" the following keys are read from cdk.json:
//
//	{
//	  "cls-qualifier": "cls",
//	  "cls-region": "ap-northeast-1",
//	  "cls-environments": ["dev", "stg", "prod"],
//	  "cls-base-domain-name": "example.com",
//	  "cls-alert-email": "ops@example.com",
//	  "cls-github-owner": "hijiri0404",
//	  "cls-github-repo": "cdk-learning-samples",
//	  "cls-github-branch": "main",
//	  "cls-github-connection-arn": "arn:aws:codeconnections:...",
//	  "cls-allowed-file-types": [".jpg", ".png", ".pdf"]
//	}
//
// Only qualifier, region and environments are required.
//
// # Environments
//
// Every environment dependent decision (removal policy, NAT gateway count,
// database size, log retention, ...) is read from [Environment.Settings] so the
// stacks themselves contain no environment switches.
package clcdkutil
