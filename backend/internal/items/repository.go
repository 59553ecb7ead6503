// Package items implements the items CRUD API backed by a DynamoDB table.
package items

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// CategoryIndex is the GSI keyed by category and sorted by created_at.
const CategoryIndex = "category-index"

// Item is a stored item. Items carry free-form attributes next to the fixed ones.
type Item = map[string]any

// DynamoAPI is the subset of the DynamoDB client the repository uses.
type DynamoAPI interface {
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store persists items. Repository is the DynamoDB implementation.
type Store interface {
	List(ctx context.Context, limit int32) ([]Item, error)
	ListByCategory(ctx context.Context, category string, limit int32) ([]Item, error)
	Get(ctx context.Context, id string) (Item, bool, error)
	Put(ctx context.Context, item Item) error
	Update(ctx context.Context, id string, fields map[string]any) (Item, error)
	Delete(ctx context.Context, id string) error
}

// Repository reads and writes items in one table.
type Repository struct {
	client DynamoAPI
	table  string
}

// NewRepository creates a Repository for table.
func NewRepository(client DynamoAPI, table string) *Repository {
	return &Repository{client: client, table: table}
}

var _ Store = (*Repository)(nil)

// List scans the table. A limit of zero scans without a limit.
func (r *Repository) List(ctx context.Context, limit int32) ([]Item, error) {
	in := &dynamodb.ScanInput{TableName: aws.String(r.table)}
	if limit > 0 {
		in.Limit = aws.Int32(limit)
	}
	out, err := r.client.Scan(ctx, in)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", r.table)
	}
	return unmarshalItems(out.Items)
}

// ListByCategory queries the category index, newest first.
func (r *Repository) ListByCategory(ctx context.Context, category string, limit int32) ([]Item, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("category").Equal(expression.Value(category))).
		Build()
	if err != nil {
		return nil, errors.Wrap(err, "build key condition")
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(CategoryIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(limit)
	}
	out, err := r.client.Query(ctx, in)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s on %s", CategoryIndex, r.table)
	}
	return unmarshalItems(out.Items)
}

// Get returns the item with id. The bool reports whether it exists.
func (r *Repository) Get(ctx context.Context, id string) (Item, bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "get item %s", id)
	}
	if out.Item == nil {
		return nil, false, nil
	}

	var item Item
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, errors.Wrap(err, "unmarshal item")
	}
	return item, true, nil
}

// Put writes item, replacing any item with the same id.
func (r *Repository) Put(ctx context.Context, item Item) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return errors.Wrap(err, "marshal item")
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	}); err != nil {
		return errors.Wrapf(err, "put item into %s", r.table)
	}
	return nil
}

// Update sets fields on the item with id and returns all attributes after the update.
func (r *Repository) Update(ctx context.Context, id string, fields map[string]any) (Item, error) {
	if len(fields) == 0 {
		return nil, errors.New("no fields to update")
	}

	// Names go through placeholders so reserved words like "name" and "status" work.
	var update expression.UpdateBuilder
	for name, value := range fields {
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, errors.Wrap(err, "build update expression")
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       idKey(id),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "update item %s", id)
	}

	var item Item
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, errors.Wrap(err, "unmarshal item")
	}
	return item, nil
}

// Delete removes the item with id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       idKey(id),
	}); err != nil {
		return errors.Wrapf(err, "delete item %s", id)
	}
	return nil
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func unmarshalItems(avs []map[string]types.AttributeValue) ([]Item, error) {
	items := make([]Item, 0, len(avs))
	if err := attributevalue.UnmarshalListOfMaps(avs, &items); err != nil {
		return nil, errors.Wrap(err, "unmarshal items")
	}
	return items, nil
}
