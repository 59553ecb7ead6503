package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscognito"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkcerts"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkdns"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkdynamo"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkrestgateway"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// ItemsCategoryIndex is the GSI the items API queries by category.
const ItemsCategoryIndex = "category-index"

// ItemRoutes are the routes of the items API.
var ItemRoutes = []clcdkrestgateway.Route{
	{Method: "GET", Path: "/health"},
	{Method: "GET", Path: "/items"},
	{Method: "POST", Path: "/items"},
	{Method: "GET", Path: "/items/{id}"},
	{Method: "PUT", Path: "/items/{id}"},
	{Method: "DELETE", Path: "/items/{id}"},
}

// SimpleApiStackProps configures the items API sample.
type SimpleApiStackProps struct {
	// UserPool protects the mutating routes with a Cognito authorizer. Optional.
	UserPool awscognito.IUserPool
	// Subdomain of the custom domain. Defaults to "items".
	Subdomain *string
}

// SimpleApiStack is a REST API over a DynamoDB table.
type SimpleApiStack struct {
	awscdk.Stack

	Table   clcdkdynamo.Dynamo
	Gateway clcdkrestgateway.RestGateway
}

// NewSimpleApiStack creates the items table and the API in front of it.
func NewSimpleApiStack(
	scope constructs.Construct, shared *Shared, env clcdkutil.Environment, props SimpleApiStackProps,
) *SimpleApiStack {
	stack := clcdkutil.NewStack(scope, env, "SimpleApi")
	s := &SimpleApiStack{Stack: stack}

	s.Table = clcdkdynamo.New(stack, clcdkdynamo.Props{
		Identifier: jsii.String("items"),
		Indexes: []clcdkdynamo.Index{{
			Name:         ItemsCategoryIndex,
			PartitionKey: "category",
			SortKey:      "created_at",
		}},
	})

	gatewayProps := clcdkrestgateway.Props{
		Name:        jsii.String("items"),
		Entry:       jsii.String("backend/cmd/itemsapi"),
		Routes:      ItemRoutes,
		Description: jsii.String("Items CRUD API"),
		Environment: &map[string]*string{
			"TABLE_NAME": s.Table.Table().TableName(),
		},
		UserPool: props.UserPool,
	}
	if shared.HasDomain() {
		gatewayProps.Domain = &clcdkrestgateway.DomainProps{
			HostedZone:  clcdkdns.Lookup(stack),
			Certificate: clcdkcerts.LookupCertificate(stack),
			Subdomain:   jsii.String(clcdkutil.OrPtr(props.Subdomain, "items")),
		}
	}

	s.Gateway = clcdkrestgateway.New(stack, gatewayProps)
	s.Table.GrantReadWriteData(s.Gateway.Lambda().Function())

	return s
}
