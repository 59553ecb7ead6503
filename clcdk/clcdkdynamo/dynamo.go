// Package clcdkdynamo provides a DynamoDB table construct keyed by a string "id"
// with on-demand billing. Point-in-time recovery and removal policy follow the
// environment settings.
package clcdkdynamo

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkparams"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
	"github.com/iancoleman/strcase"
)

const paramsNamespace = "dynamo"

// Dynamo provides access to a DynamoDB table.
type Dynamo interface {
	Table() awsdynamodb.ITableV2
	// GrantReadData grants read-only permissions to the table and its indexes.
	GrantReadData(grantee awsiam.IGrantable)
	// GrantReadWriteData grants read/write permissions to the table and its indexes.
	GrantReadWriteData(grantee awsiam.IGrantable)
}

// Index describes a global secondary index with string keys.
type Index struct {
	Name         string
	PartitionKey string
	SortKey      string
}

// Props configures the Dynamo construct.
type Props struct {
	// Identifier distinguishes this table from others in the same environment.
	// Example: "items" produces table name "{qualifier}-{environment}-items-table".
	// Defaults to "main".
	Identifier *string
	// PartitionKey defaults to "id".
	PartitionKey *string
	Indexes      []Index
}

type dynamo struct {
	table awsdynamodb.ITableV2
}

// New creates the table and stores its name in SSM under
// "dynamo/{identifier}/table-name".
func New(scope constructs.Construct, props Props) Dynamo {
	identifier := clcdkutil.OrPtr(props.Identifier, "main")
	partitionKey := clcdkutil.OrPtr(props.PartitionKey, "id")

	scope = constructs.NewConstruct(scope, jsii.String("Dynamo"+strcase.ToCamel(identifier)))
	con := &dynamo{}
	settings := clcdkutil.SettingsOf(scope)

	tableName := clcdkutil.ResourceName(scope, identifier+"-table", clcdkutil.CasingKebab)

	indexes := make([]*awsdynamodb.GlobalSecondaryIndexPropsV2, 0, len(props.Indexes))
	for _, idx := range props.Indexes {
		gsi := &awsdynamodb.GlobalSecondaryIndexPropsV2{
			IndexName:    jsii.String(idx.Name),
			PartitionKey: &awsdynamodb.Attribute{Name: jsii.String(idx.PartitionKey), Type: awsdynamodb.AttributeType_STRING},
		}
		if idx.SortKey != "" {
			gsi.SortKey = &awsdynamodb.Attribute{Name: jsii.String(idx.SortKey), Type: awsdynamodb.AttributeType_STRING}
		}
		indexes = append(indexes, gsi)
	}

	con.table = awsdynamodb.NewTableV2(scope, jsii.String("Table"), &awsdynamodb.TablePropsV2{
		TableName:     jsii.String(tableName),
		PartitionKey:  &awsdynamodb.Attribute{Name: jsii.String(partitionKey), Type: awsdynamodb.AttributeType_STRING},
		Billing:       awsdynamodb.Billing_OnDemand(nil),
		RemovalPolicy: settings.RemovalPolicy,
		PointInTimeRecoverySpecification: &awsdynamodb.PointInTimeRecoverySpecification{
			PointInTimeRecoveryEnabled: jsii.Bool(settings.PointInTimeRecovery),
		},
		DeletionProtection:     jsii.Bool(settings.DeletionProtection),
		GlobalSecondaryIndexes: &indexes,
	})

	clcdkparams.Store(scope, "TableNameParam", paramsNamespace, identifier+"/table-name", jsii.String(tableName))

	return con
}

// Lookup references a table created by New in another stack of the same
// environment and region, through its SSM parameter.
func Lookup(scope constructs.Construct, identifier string) awsdynamodb.ITableV2 {
	tableName := clcdkparams.LookupLocal(scope, paramsNamespace, identifier+"/table-name")
	return awsdynamodb.TableV2_FromTableName(scope, jsii.String("LookupDynamo"+strcase.ToCamel(identifier)), tableName)
}

func (d *dynamo) Table() awsdynamodb.ITableV2 {
	return d.table
}

func (d *dynamo) GrantReadData(grantee awsiam.IGrantable) {
	d.table.GrantReadData(grantee)
	d.grantIndexRead(grantee)
}

func (d *dynamo) GrantReadWriteData(grantee awsiam.IGrantable) {
	d.table.GrantReadWriteData(grantee)
	d.grantIndexRead(grantee)
}

func (d *dynamo) grantIndexRead(grantee awsiam.IGrantable) {
	indexArn := jsii.Sprintf("%s/index/*", *d.table.TableArn())
	awsiam.Grant_AddToPrincipal(&awsiam.GrantOnPrincipalOptions{
		Grantee:      grantee,
		ResourceArns: &[]*string{indexArn},
		Actions: jsii.Strings(
			"dynamodb:Query",
			"dynamodb:Scan",
		),
	})
}
