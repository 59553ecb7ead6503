//nolint:paralleltest // jsii runtime doesn't support parallel tests
package clcdkdynamo_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkdynamo"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdktest"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

func TestNew_DevTable(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))
	stack := clcdktest.NewStack(app, clcdkutil.EnvironmentDev)

	d := clcdkdynamo.New(stack, clcdkdynamo.Props{
		Identifier: jsii.String("items"),
		Indexes:    []clcdkdynamo.Index{{Name: "category-index", PartitionKey: "category", SortKey: "created_at"}},
	})
	if d.Table() == nil {
		t.Fatal("Table() should not be nil")
	}

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]any{
		"TableName":   "cls-dev-items-table",
		"BillingMode": "PAY_PER_REQUEST",
		"KeySchema": []any{
			map[string]any{"AttributeName": "id", "KeyType": "HASH"},
		},
		"GlobalSecondaryIndexes": []any{
			assertions.Match_ObjectLike(&map[string]any{"IndexName": "category-index"}),
		},
	})
	template.HasResource(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]any{
		"DeletionPolicy": "Delete",
	})
	template.HasResourceProperties(jsii.String("AWS::SSM::Parameter"), map[string]any{
		"Name":  "/cls/dev/dynamo/items/table-name",
		"Value": "cls-dev-items-table",
	})
}

func TestNew_ProdRetainsTable(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))
	stack := clcdktest.NewStack(app, clcdkutil.EnvironmentProd)

	clcdkdynamo.New(stack, clcdkdynamo.Props{})

	template := assertions.Template_FromStack(stack, nil)
	template.HasResource(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]any{
		"DeletionPolicy": "Retain",
	})
	template.HasResourceProperties(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]any{
		"TableName": "cls-prod-main-table",
	})
}

func TestNew_GrantReadWriteData(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))
	stack := clcdktest.NewStack(app, clcdkutil.EnvironmentDev)

	d := clcdkdynamo.New(stack, clcdkdynamo.Props{Identifier: jsii.String("items")})
	role := awsiam.NewRole(stack, jsii.String("Role"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("lambda.amazonaws.com"), nil),
	})

	d.GrantReadWriteData(role)

	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("AWS::IAM::Policy"), jsii.Number(1))
}
