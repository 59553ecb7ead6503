package clcdkutil

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// Output exports a value as a stack output under a stable key so the CLI can find it
// with describe-stacks.
func Output(scope constructs.Construct, key, description string, value *string) awscdk.CfnOutput {
	return awscdk.NewCfnOutput(scope, jsii.String(key+"Output"), &awscdk.CfnOutputProps{
		Key:         jsii.String(key),
		Description: jsii.String(description),
		Value:       value,
	})
}
