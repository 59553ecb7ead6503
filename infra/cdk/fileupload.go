package cdk

import (
	"strconv"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3notifications"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssqs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkbucket"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkcerts"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkdns"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdklwalambda"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkrestgateway"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// Object key prefixes and the processor route shared with backend/internal/files
// and backend/internal/processor.
const (
	UploadPrefix       = "uploads/"
	QuarantinePrefix   = "quarantine/"
	ProcessorEventPath = "/l/process-upload"
)

// FileRoutes are the routes of the file API.
var FileRoutes = []clcdkrestgateway.Route{
	{Method: "POST", Path: "/upload"},
	{Method: "GET", Path: "/files"},
	{Method: "GET", Path: "/files/{fileId}"},
	{Method: "DELETE", Path: "/files/{fileId}"},
	{Method: "GET", Path: "/download/{fileId}"},
	{Method: "GET", Path: "/status/{fileId}"},
}

// FileUploadStackProps configures the file upload sample. Zero values use the defaults.
type FileUploadStackProps struct {
	// MaxFileSizeMB defaults to 10.
	MaxFileSizeMB int
	// AllowedFileTypes defaults to the configured allowed file types.
	AllowedFileTypes []string
	// EnableImageResize defaults to true.
	EnableImageResize *bool
	// EnableVirusScan defaults to false.
	EnableVirusScan *bool
	// CorsAllowedOrigins defaults to all origins.
	CorsAllowedOrigins []string
	// Subdomain of the custom domain. Defaults to "files".
	Subdomain *string
}

// FileUploadStack holds the buckets, the file API, the processor and its event queue.
type FileUploadStack struct {
	awscdk.Stack

	Uploads         awss3.Bucket
	Processed       awss3.Bucket
	Queue           awssqs.Queue
	DeadLetterQueue awssqs.Queue
	Gateway         clcdkrestgateway.RestGateway
	Processor       clcdklwalambda.Lambda
}

// NewFileUploadStack creates the upload pipeline: browsers PUT to presigned URLs,
// S3 notifies the processor which moves files to the processed bucket.
func NewFileUploadStack(
	scope constructs.Construct, shared *Shared, env clcdkutil.Environment, props FileUploadStackProps,
) *FileUploadStack {
	stack := clcdkutil.NewStack(scope, env, "FileUpload")
	s := &FileUploadStack{Stack: stack}
	settings := clcdkutil.SettingsOf(stack)

	maxSize := clcdkutil.Or(props.MaxFileSizeMB, 10)
	allowed := props.AllowedFileTypes
	if len(allowed) == 0 {
		allowed = clcdkutil.ConfigFromScope(stack).AllowedFileTypes
	}
	origins := props.CorsAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.Uploads = clcdkbucket.New(stack, "Uploads", clcdkbucket.Props{
		Cors: &[]*awss3.CorsRule{{
			AllowedMethods: &[]awss3.HttpMethods{awss3.HttpMethods_PUT, awss3.HttpMethods_POST, awss3.HttpMethods_GET},
			AllowedOrigins: jsii.Strings(origins...),
			AllowedHeaders: jsii.Strings("*"),
			ExposedHeaders: jsii.Strings("ETag"),
			MaxAge:         jsii.Number(3000),
		}},
		LifecycleRules: &[]*awss3.LifecycleRule{
			{
				Id:                                  jsii.String("abort-incomplete-uploads"),
				AbortIncompleteMultipartUploadAfter: awscdk.Duration_Days(jsii.Number(1)),
			},
			{
				Id:         jsii.String("expire-quarantine"),
				Prefix:     jsii.String(QuarantinePrefix),
				Expiration: awscdk.Duration_Days(jsii.Number(30)),
			},
		},
		Description: jsii.String("Upload bucket"),
	})

	s.Processed = clcdkbucket.New(stack, "Processed", clcdkbucket.Props{
		Versioned: settings.PointInTimeRecovery,
		LifecycleRules: &[]*awss3.LifecycleRule{{
			Id: jsii.String("infrequent-access"),
			Transitions: &[]*awss3.Transition{{
				StorageClass:    awss3.StorageClass_INFREQUENT_ACCESS(),
				TransitionAfter: awscdk.Duration_Days(jsii.Number(30)),
			}},
		}},
		Description: jsii.String("Processed file bucket"),
	})

	s.DeadLetterQueue = awssqs.NewQueue(stack, jsii.String("ProcessingEventsDlq"), &awssqs.QueueProps{
		QueueName:       jsii.String(clcdkutil.ResourceName(stack, "processing-events-dlq", clcdkutil.CasingKebab)),
		Encryption:      awssqs.QueueEncryption_SQS_MANAGED,
		RetentionPeriod: awscdk.Duration_Days(jsii.Number(14)),
		EnforceSSL:      jsii.Bool(true),
		RemovalPolicy:   settings.RemovalPolicy,
	})
	s.Queue = awssqs.NewQueue(stack, jsii.String("ProcessingEvents"), &awssqs.QueueProps{
		QueueName:         jsii.String(clcdkutil.ResourceName(stack, "processing-events", clcdkutil.CasingKebab)),
		Encryption:        awssqs.QueueEncryption_SQS_MANAGED,
		VisibilityTimeout: awscdk.Duration_Seconds(jsii.Number(300)),
		EnforceSSL:        jsii.Bool(true),
		RemovalPolicy:     settings.RemovalPolicy,
		DeadLetterQueue: &awssqs.DeadLetterQueue{
			Queue:           s.DeadLetterQueue,
			MaxReceiveCount: jsii.Number(3),
		},
	})

	fileEnv := map[string]*string{
		"UPLOAD_BUCKET":      s.Uploads.BucketName(),
		"PROCESSED_BUCKET":   s.Processed.BucketName(),
		"MAX_FILE_SIZE_MB":   jsii.String(strconv.Itoa(maxSize)),
		"ALLOWED_FILE_TYPES": jsii.String(strings.Join(allowed, ",")),
	}

	gatewayProps := clcdkrestgateway.Props{
		Name:        jsii.String("files"),
		Entry:       jsii.String("backend/cmd/fileapi"),
		Routes:      FileRoutes,
		Description: jsii.String("File upload API"),
		Environment: &fileEnv,
	}
	if shared.HasDomain() {
		gatewayProps.Domain = &clcdkrestgateway.DomainProps{
			HostedZone:  clcdkdns.Lookup(stack),
			Certificate: clcdkcerts.LookupCertificate(stack),
			Subdomain:   jsii.String(clcdkutil.OrPtr(props.Subdomain, "files")),
		}
	}
	s.Gateway = clcdkrestgateway.New(stack, gatewayProps)

	apiFn := s.Gateway.Lambda().Function()
	s.Uploads.GrantReadWrite(apiFn, nil)
	s.Uploads.GrantDelete(apiFn, nil)
	s.Processed.GrantRead(apiFn, nil)
	s.Processed.GrantDelete(apiFn, nil)

	processorEnv := map[string]*string{
		"PROCESSING_QUEUE_URL": s.Queue.QueueUrl(),
		"ENABLE_IMAGE_RESIZE":  jsii.String(strconv.FormatBool(clcdkutil.OrPtr(props.EnableImageResize, true))),
		"ENABLE_VIRUS_SCAN":    jsii.String(strconv.FormatBool(clcdkutil.OrPtr(props.EnableVirusScan, false))),
	}
	for k, v := range fileEnv {
		processorEnv[k] = v
	}

	s.Processor = clcdklwalambda.New(stack, clcdklwalambda.Props{
		Entry:           jsii.String("backend/cmd/fileprocessor"),
		PassThroughPath: jsii.String(ProcessorEventPath),
		Environment:     &processorEnv,
		MemorySize:      jsii.Number(512),
		Timeout:         awscdk.Duration_Minutes(jsii.Number(5)),
		Description:     jsii.String("Validates uploads and moves them to the processed bucket"),
	})

	fn := s.Processor.Function()
	s.Uploads.GrantReadWrite(fn, nil)
	s.Uploads.GrantDelete(fn, nil)
	s.Processed.GrantWrite(fn, nil, nil)
	s.Queue.GrantSendMessages(fn)

	s.Uploads.AddEventNotification(awss3.EventType_OBJECT_CREATED,
		awss3notifications.NewLambdaDestination(fn),
		&awss3.NotificationKeyFilter{Prefix: jsii.String(UploadPrefix)})

	clcdkutil.Output(stack, "ProcessingQueueUrl", "Queue receiving file processing events", s.Queue.QueueUrl())

	return s
}
