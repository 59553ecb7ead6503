//nolint:paralleltest // jsii runtime doesn't support parallel tests
package clcdkbucket_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkbucket"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdktest"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

func TestNew_Defaults(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))
	stack := clcdktest.NewStack(app, clcdkutil.EnvironmentDev)

	clcdkbucket.New(stack, "Data", clcdkbucket.Props{})

	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("AWS::S3::Bucket"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::S3::Bucket"), map[string]any{
		"BucketEncryption": map[string]any{
			"ServerSideEncryptionConfiguration": []any{
				map[string]any{
					"ServerSideEncryptionByDefault": map[string]any{"SSEAlgorithm": "AES256"},
				},
			},
		},
		"PublicAccessBlockConfiguration": map[string]any{
			"BlockPublicAcls":       true,
			"BlockPublicPolicy":     true,
			"IgnorePublicAcls":      true,
			"RestrictPublicBuckets": true,
		},
	})
	// dev buckets are emptied and deleted with the stack
	template.ResourceCountIs(jsii.String("Custom::S3AutoDeleteObjects"), jsii.Number(1))
}

func TestNew_ProdKMSVersioned(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))
	stack := clcdktest.NewStack(app, clcdkutil.EnvironmentProd)

	clcdkbucket.New(stack, "Data", clcdkbucket.Props{
		Encryption: clcdkbucket.EncryptionKMSManaged,
		Versioned:  true,
	})

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::S3::Bucket"), map[string]any{
		"VersioningConfiguration": map[string]any{"Status": "Enabled"},
		"BucketEncryption": map[string]any{
			"ServerSideEncryptionConfiguration": []any{
				map[string]any{
					"ServerSideEncryptionByDefault": map[string]any{"SSEAlgorithm": "aws:kms"},
				},
			},
		},
	})
	template.HasResource(jsii.String("AWS::S3::Bucket"), map[string]any{
		"DeletionPolicy": "Retain",
	})
	template.ResourceCountIs(jsii.String("Custom::S3AutoDeleteObjects"), jsii.Number(0))
}
