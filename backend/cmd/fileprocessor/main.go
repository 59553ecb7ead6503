// Package main runs the upload processor. The Lambda Web Adapter passes S3
// notifications through to the processor's event route.
package main

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/hijiri0404/cdk-learning-samples/backend/internal/processor"
	"github.com/hijiri0404/cdk-learning-samples/cllwa"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Env struct {
	cllwa.BaseEnvironment
	processor.Config
}

func main() {
	cllwa.NewApp[Env](processor.Register,
		cllwa.WithAWSClient(func(cfg aws.Config) *s3.Client {
			return s3.NewFromConfig(cfg)
		}),
		cllwa.WithAWSClient(func(cfg aws.Config) *sqs.Client {
			return sqs.NewFromConfig(cfg)
		}),
		cllwa.WithFx(fx.Provide(
			func(client *sqs.Client, env Env) *processor.Publisher {
				return processor.NewPublisher(client, env.ProcessingQueueURL)
			},
			func(client *s3.Client, pub *processor.Publisher, env Env, logger *zap.Logger) *processor.Processor {
				return processor.New(env.Config, client, pub, logger)
			},
		)),
	).Run()
}
