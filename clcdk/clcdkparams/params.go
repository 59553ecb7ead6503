// Package clcdkparams stores and retrieves construct values in SSM Parameter Store
// so stacks can share identifiers without CloudFormation exports.
//
// Same-region readers use LookupLocal. Stacks placed in another region (the
// CloudFront edge stacks) use Lookup, which reads the parameter from the configured
// region through a custom resource.
package clcdkparams

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsssm"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// ParameterName returns the hierarchical parameter path for scope:
// /{qualifier}/{environment}/{namespace}/{name}, or /{qualifier}/{namespace}/{name}
// outside environment stacks.
func ParameterName(scope constructs.Construct, namespace string, name string) *string {
	qual := clcdkutil.Qualifier(scope)
	if env := clcdkutil.EnvironmentOf(scope); env != "" {
		return jsii.Sprintf("/%s/%s/%s/%s", qual, env, namespace, name)
	}
	return jsii.Sprintf("/%s/%s/%s", qual, namespace, name)
}

// SharedParameterName returns the path of a parameter written by the shared stack:
// /{qualifier}/{namespace}/{name}.
func SharedParameterName(scope constructs.Construct, namespace string, name string) *string {
	return jsii.Sprintf("/%s/%s/%s", clcdkutil.Qualifier(scope), namespace, name)
}

// Store creates a String parameter holding value.
func Store(scope constructs.Construct, id string, namespace string, name string, value *string) awsssm.StringParameter {
	return awsssm.NewStringParameter(scope, jsii.String(id),
		&awsssm.StringParameterProps{
			ParameterName: ParameterName(scope, namespace, name),
			StringValue:   value,
		})
}

// LookupLocal reads a parameter in the stack's own region at deploy time.
func LookupLocal(scope constructs.Construct, namespace string, name string) *string {
	return awsssm.StringParameter_ValueForStringParameter(scope,
		ParameterName(scope, namespace, name), nil)
}

// LookupLocalShared reads a parameter written by the shared stack.
func LookupLocalShared(scope constructs.Construct, namespace string, name string) *string {
	return awsssm.StringParameter_ValueForStringParameter(scope,
		SharedParameterName(scope, namespace, name), nil)
}

// Lookup reads a parameter stored in the configured region from a stack that lives
// in another region. The physicalID must be stable (e.g. "hosted-zone-id-lookup").
func Lookup(scope constructs.Construct, id string, namespace string, name string, physicalID string) *string {
	return lookupRemote(scope, id, ParameterName(scope, namespace, name), physicalID)
}

// LookupShared is Lookup for parameters written by the shared stack.
func LookupShared(scope constructs.Construct, id string, namespace string, name string, physicalID string) *string {
	return lookupRemote(scope, id, SharedParameterName(scope, namespace, name), physicalID)
}

func lookupRemote(scope constructs.Construct, id string, paramName *string, physicalID string) *string {
	sdkCall := &customresources.AwsSdkCall{
		Service: jsii.String("SSM"),
		Action:  jsii.String("getParameter"),
		Parameters: map[string]any{
			"Name": paramName,
		},
		Region:             jsii.String(clcdkutil.Region(scope)),
		PhysicalResourceId: customresources.PhysicalResourceId_Of(jsii.String(physicalID)),
	}
	// OnUpdate repeats the call so a changed parameter path is picked up.
	lookup := customresources.NewAwsCustomResource(scope, jsii.String(id),
		&customresources.AwsCustomResourceProps{
			OnCreate: sdkCall,
			OnUpdate: sdkCall,
			Policy: customresources.AwsCustomResourcePolicy_FromSdkCalls(&customresources.SdkCallsPolicyOptions{
				Resources: customresources.AwsCustomResourcePolicy_ANY_RESOURCE(),
			}),
		})
	return lookup.GetResponseField(jsii.String("Parameter.Value"))
}
