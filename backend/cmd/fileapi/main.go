// Package main runs the file upload API behind the Lambda Web Adapter.
package main

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hijiri0404/cdk-learning-samples/backend/internal/files"
	"github.com/hijiri0404/cdk-learning-samples/cllwa"
	"go.uber.org/fx"
)

type Env struct {
	cllwa.BaseEnvironment
	files.Config
}

func main() {
	cllwa.NewApp[Env](files.Register,
		cllwa.WithAWSClient(func(cfg aws.Config) *s3.Client {
			return s3.NewFromConfig(cfg)
		}),
		cllwa.WithFx(fx.Provide(
			func(client *s3.Client, env Env) *files.Handlers {
				return files.NewHandlers(env.Config, client, s3.NewPresignClient(client))
			},
		)),
	).Run()
}
