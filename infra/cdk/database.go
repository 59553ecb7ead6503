package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// DatabaseStackProps configures the PostgreSQL sample.
type DatabaseStackProps struct {
	// Vpc from the network stack. Required.
	Vpc awsec2.IVpc
	// AppSecurityGroup is allowed to connect. Required.
	AppSecurityGroup awsec2.ISecurityGroup
	// DatabaseName defaults to "app".
	DatabaseName *string
	// Username defaults to "postgres".
	Username *string
	// AllocatedStorageGiB defaults to 20.
	AllocatedStorageGiB float64
}

// PostgresPort is the port the database listens on.
const PostgresPort = 5432

// DatabaseStack holds the PostgreSQL instance.
type DatabaseStack struct {
	awscdk.Stack

	Instance      awsrds.DatabaseInstance
	SecurityGroup awsec2.SecurityGroup
}

// NewDatabaseStack creates a PostgreSQL instance in the isolated subnets with
// generated credentials in Secrets Manager.
func NewDatabaseStack(scope constructs.Construct, env clcdkutil.Environment, props DatabaseStackProps) *DatabaseStack {
	if props.Vpc == nil || props.AppSecurityGroup == nil {
		panic("database stack requires Vpc and AppSecurityGroup from the network stack")
	}

	stack := clcdkutil.NewStack(scope, env, "Database")
	s := &DatabaseStack{Stack: stack}
	settings := clcdkutil.SettingsOf(stack)

	s.SecurityGroup = awsec2.NewSecurityGroup(stack, jsii.String("DatabaseSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:               props.Vpc,
		SecurityGroupName: jsii.String(clcdkutil.ResourceName(stack, "db-sg", clcdkutil.CasingKebab)),
		Description:       jsii.String("PostgreSQL"),
		AllowAllOutbound:  jsii.Bool(false),
	})
	s.SecurityGroup.AddIngressRule(props.AppSecurityGroup, awsec2.Port_Tcp(jsii.Number(PostgresPort)),
		jsii.String("PostgreSQL from application workloads"), nil)

	engine := awsrds.DatabaseInstanceEngine_Postgres(&awsrds.PostgresInstanceEngineProps{
		Version: awsrds.PostgresEngineVersion_VER_16_4(),
	})

	s.Instance = awsrds.NewDatabaseInstance(stack, jsii.String("Database"), &awsrds.DatabaseInstanceProps{
		InstanceIdentifier: jsii.String(clcdkutil.ResourceName(stack, "db", clcdkutil.CasingKebab)),
		Engine:             engine,
		InstanceType:       awsec2.InstanceType_Of(awsec2.InstanceClass_BURSTABLE3, settings.DatabaseInstanceSize),
		Vpc:                props.Vpc,
		VpcSubnets:         &awsec2.SubnetSelection{SubnetType: awsec2.SubnetType_PRIVATE_ISOLATED},
		SecurityGroups:     &[]awsec2.ISecurityGroup{s.SecurityGroup},
		Port:               jsii.Number(PostgresPort),
		DatabaseName:       jsii.String(clcdkutil.OrPtr(props.DatabaseName, "app")),
		Credentials: awsrds.Credentials_FromGeneratedSecret(jsii.String(clcdkutil.OrPtr(props.Username, "postgres")),
			&awsrds.CredentialsBaseOptions{
				SecretName: jsii.String(clcdkutil.ResourceName(stack, "db-credentials", clcdkutil.CasingKebab)),
			}),
		AllocatedStorage:        jsii.Number(clcdkutil.Or(props.AllocatedStorageGiB, 20)),
		MaxAllocatedStorage:     jsii.Number(100),
		StorageType:             awsrds.StorageType_GP3,
		StorageEncrypted:        jsii.Bool(true),
		MultiAz:                 jsii.Bool(settings.MultiAz),
		BackupRetention:         awscdk.Duration_Days(jsii.Number(float64(settings.BackupRetentionDays))),
		DeleteAutomatedBackups:  jsii.Bool(!settings.DeletionProtection),
		DeletionProtection:      jsii.Bool(settings.DeletionProtection),
		RemovalPolicy:           settings.RemovalPolicy,
		AutoMinorVersionUpgrade: jsii.Bool(true),
		CloudwatchLogsExports:   jsii.Strings("postgresql"),
	})

	clcdkutil.Output(stack, "DatabaseEndpoint", "PostgreSQL endpoint", s.Instance.DbInstanceEndpointAddress())
	if secret := s.Instance.Secret(); secret != nil {
		clcdkutil.Output(stack, "DatabaseSecretArn", "Secret holding the database credentials", secret.SecretArn())
	}

	return s
}
