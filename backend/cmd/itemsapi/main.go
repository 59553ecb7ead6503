// Package main runs the items API behind the Lambda Web Adapter.
package main

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/hijiri0404/cdk-learning-samples/backend/internal/items"
	"github.com/hijiri0404/cdk-learning-samples/cllwa"
	"go.uber.org/fx"
)

type Env struct {
	cllwa.BaseEnvironment
	TableName string `env:"TABLE_NAME,required"`
}

func main() {
	cllwa.NewApp[Env](items.Register,
		cllwa.WithAWSClient(func(cfg aws.Config) *dynamodb.Client {
			return dynamodb.NewFromConfig(cfg)
		}),
		cllwa.WithFx(fx.Provide(
			func(client *dynamodb.Client, env Env) items.Store {
				return items.NewRepository(client, env.TableName)
			},
			func(store items.Store, env Env) *items.Handlers {
				return items.NewHandlers(store, cllwa.DeploymentOf(env))
			},
		)),
		cllwa.WithHealthHandlerFrom(func(h *items.Handlers) cllwa.HandlerFunc {
			return h.Health
		}),
	).Run()
}
