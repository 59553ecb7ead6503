package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/infra/cdk"
	"github.com/joho/godotenv"
)

func main() {
	defer jsii.Close()

	// CDK_DEFAULT_ACCOUNT and friends may come from a local .env file.
	_ = godotenv.Load()

	app := awscdk.NewApp(nil)
	cdk.Setup(app)
	app.Synth(nil)
}
