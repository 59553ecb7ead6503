package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkbucket"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// BucketsStackProps configures the S3 basics sample. Zero values use the defaults.
type BucketsStackProps struct {
	// InfrequentAccessAfterDays defaults to 30.
	InfrequentAccessAfterDays float64
	// GlacierAfterDays defaults to 90.
	GlacierAfterDays float64
	// ExpireAfterDays defaults to 365.
	ExpireAfterDays float64
	// NoncurrentVersionExpirationDays defaults to 30.
	NoncurrentVersionExpirationDays float64
}

// BucketsStack shows the common bucket configurations side by side.
type BucketsStack struct {
	awscdk.Stack

	Basic      awss3.Bucket
	Versioned  awss3.Bucket
	Encrypted  awss3.Bucket
	Lifecycle  awss3.Bucket
	AccessLogs awss3.Bucket
}

// NewBucketsStack creates exactly five buckets: basic, versioned, encrypted,
// lifecycle and the access log target the others log to.
func NewBucketsStack(scope constructs.Construct, env clcdkutil.Environment, props BucketsStackProps) *BucketsStack {
	stack := clcdkutil.NewStack(scope, env, "Buckets")
	s := &BucketsStack{Stack: stack}

	iaDays := clcdkutil.Or(props.InfrequentAccessAfterDays, 30)
	glacierDays := clcdkutil.Or(props.GlacierAfterDays, 90)
	expireDays := clcdkutil.Or(props.ExpireAfterDays, 365)
	noncurrentDays := clcdkutil.Or(props.NoncurrentVersionExpirationDays, 30)

	s.AccessLogs = clcdkbucket.New(stack, "AccessLogs", clcdkbucket.Props{
		ObjectOwnership: awss3.ObjectOwnership_BUCKET_OWNER_PREFERRED,
		LifecycleRules: &[]*awss3.LifecycleRule{{
			Id:         jsii.String("expire-access-logs"),
			Expiration: awscdk.Duration_Days(jsii.Number(90)),
		}},
		Description: jsii.String("Server access log target"),
	})

	s.Basic = clcdkbucket.New(stack, "Basic", clcdkbucket.Props{
		ServerAccessLogsBucket: s.AccessLogs,
		ServerAccessLogsPrefix: jsii.String("basic/"),
		Description:            jsii.String("Basic bucket"),
	})

	s.Versioned = clcdkbucket.New(stack, "Versioned", clcdkbucket.Props{
		Versioned: true,
		LifecycleRules: &[]*awss3.LifecycleRule{{
			Id:                          jsii.String("expire-noncurrent-versions"),
			NoncurrentVersionExpiration: awscdk.Duration_Days(jsii.Number(noncurrentDays)),
		}},
		ServerAccessLogsBucket: s.AccessLogs,
		ServerAccessLogsPrefix: jsii.String("versioned/"),
		Description:            jsii.String("Versioned bucket"),
	})

	s.Encrypted = clcdkbucket.New(stack, "Encrypted", clcdkbucket.Props{
		Encryption:             clcdkbucket.EncryptionS3Managed,
		ServerAccessLogsBucket: s.AccessLogs,
		ServerAccessLogsPrefix: jsii.String("encrypted/"),
		Description:            jsii.String("SSE-S3 (AES256) encrypted bucket"),
	})

	s.Lifecycle = clcdkbucket.New(stack, "Lifecycle", clcdkbucket.Props{
		LifecycleRules: &[]*awss3.LifecycleRule{{
			Id: jsii.String("archive-then-expire"),
			Transitions: &[]*awss3.Transition{
				{
					StorageClass:    awss3.StorageClass_INFREQUENT_ACCESS(),
					TransitionAfter: awscdk.Duration_Days(jsii.Number(iaDays)),
				},
				{
					StorageClass:    awss3.StorageClass_GLACIER(),
					TransitionAfter: awscdk.Duration_Days(jsii.Number(glacierDays)),
				},
			},
			Expiration:                          awscdk.Duration_Days(jsii.Number(expireDays)),
			AbortIncompleteMultipartUploadAfter: awscdk.Duration_Days(jsii.Number(7)),
		}},
		ServerAccessLogsBucket: s.AccessLogs,
		ServerAccessLogsPrefix: jsii.String("lifecycle/"),
		Description:            jsii.String("Bucket with lifecycle transitions"),
	})

	return s
}
