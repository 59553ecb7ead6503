// Package clcdkbucket provides an S3 bucket construct with the defaults every sample
// bucket shares: public access blocked, TLS enforced and server side encryption.
// Removal behaviour follows the environment settings.
package clcdkbucket

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// Encryption selects the server side encryption of a bucket.
type Encryption int

const (
	// EncryptionS3Managed uses SSE-S3 (AES256).
	EncryptionS3Managed Encryption = iota
	// EncryptionKMSManaged uses the AWS managed aws/s3 KMS key.
	EncryptionKMSManaged
)

// Props configures the bucket. Zero values give an unversioned SSE-S3 bucket.
type Props struct {
	Encryption Encryption
	Versioned  bool
	// Cors rules, e.g. for browser uploads through presigned URLs.
	Cors *[]*awss3.CorsRule
	// LifecycleRules are passed to the bucket as-is.
	LifecycleRules *[]*awss3.LifecycleRule
	// ServerAccessLogsBucket receives access logs under ServerAccessLogsPrefix.
	ServerAccessLogsBucket awss3.IBucket
	ServerAccessLogsPrefix *string
	// ObjectOwnership defaults to BUCKET_OWNER_ENFORCED.
	ObjectOwnership awss3.ObjectOwnership
	// Description is used for the bucket name output.
	Description *string
}

// New creates a bucket and exports its name as "{id}BucketName".
func New(scope constructs.Construct, id string, props Props) awss3.Bucket {
	settings := clcdkutil.SettingsOf(scope)

	encryption := awss3.BucketEncryption_S3_MANAGED
	if props.Encryption == EncryptionKMSManaged {
		encryption = awss3.BucketEncryption_KMS_MANAGED
	}

	bucket := awss3.NewBucket(scope, jsii.String(id), &awss3.BucketProps{
		Encryption:             encryption,
		BlockPublicAccess:      awss3.BlockPublicAccess_BLOCK_ALL(),
		EnforceSSL:             jsii.Bool(true),
		Versioned:              jsii.Bool(props.Versioned),
		Cors:                   props.Cors,
		LifecycleRules:         props.LifecycleRules,
		ServerAccessLogsBucket: props.ServerAccessLogsBucket,
		ServerAccessLogsPrefix: props.ServerAccessLogsPrefix,
		ObjectOwnership:        clcdkutil.Or(props.ObjectOwnership, awss3.ObjectOwnership_BUCKET_OWNER_ENFORCED),
		RemovalPolicy:          settings.RemovalPolicy,
		AutoDeleteObjects:      jsii.Bool(settings.AutoDeleteObjects),
	})

	description := clcdkutil.OrPtr(props.Description, "S3 bucket "+id)
	clcdkutil.Output(scope, id+"BucketName", description, bucket.BucketName())

	return bucket
}

