package items_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hijiri0404/cdk-learning-samples/backend/internal/items"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	mock.Mock
}

func (m *mockDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.ScanOutput)
	return out, args.Error(1)
}

func (m *mockDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

func (m *mockDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func (m *mockDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.UpdateItemOutput)
	return out, args.Error(1)
}

func (m *mockDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func TestRepository_List(t *testing.T) {
	client := &mockDynamo{}
	client.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return *in.TableName == "cls-dev-items-table" && in.Limit != nil && *in.Limit == 10
	})).Return(&dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{
		{"id": s("a"), "name": s("pen"), "price": &types.AttributeValueMemberN{Value: "3"}},
	}}, nil)

	repo := items.NewRepository(client, "cls-dev-items-table")
	got, err := repo.List(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "pen", got[0]["name"])
	assert.InDelta(t, 3.0, got[0]["price"], 0)
	client.AssertExpectations(t)
}

func TestRepository_ListWithoutLimit(t *testing.T) {
	client := &mockDynamo{}
	client.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.Limit == nil
	})).Return(&dynamodb.ScanOutput{}, nil)

	got, err := items.NewRepository(client, "t").List(context.Background(), 0)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepository_ListByCategory(t *testing.T) {
	client := &mockDynamo{}
	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return *in.IndexName == items.CategoryIndex &&
			!*in.ScanIndexForward &&
			len(in.ExpressionAttributeValues) == 1
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		{"id": s("a"), "category": s("books")},
	}}, nil)

	got, err := items.NewRepository(client, "t").ListByCategory(context.Background(), "books", 0)

	require.NoError(t, err)
	assert.Equal(t, "books", got[0]["category"])
}

func TestRepository_Get(t *testing.T) {
	client := &mockDynamo{}
	client.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return in.Key["id"].(*types.AttributeValueMemberS).Value == "a"
	})).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{"id": s("a")}}, nil)
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	repo := items.NewRepository(client, "t")

	item, found, err := repo.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a", item["id"])

	_, found, err = repo.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepository_Put(t *testing.T) {
	client := &mockDynamo{}
	client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		name, ok := in.Item["name"].(*types.AttributeValueMemberS)
		return ok && name.Value == "pen" && *in.TableName == "t"
	})).Return(&dynamodb.PutItemOutput{}, nil)

	err := items.NewRepository(client, "t").Put(context.Background(), items.Item{"id": "a", "name": "pen"})

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestRepository_UpdateUsesPlaceholders(t *testing.T) {
	client := &mockDynamo{}
	client.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		names := make(map[string]bool)
		for _, n := range in.ExpressionAttributeNames {
			names[n] = true
		}
		return in.ReturnValues == types.ReturnValueAllNew &&
			names["name"] && names["status"] &&
			len(in.ExpressionAttributeValues) == 2
	})).Return(&dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
		"id": s("a"), "name": s("pencil"), "status": s("archived"),
	}}, nil)

	got, err := items.NewRepository(client, "t").Update(context.Background(), "a",
		map[string]any{"name": "pencil", "status": "archived"})

	require.NoError(t, err)
	assert.Equal(t, "pencil", got["name"])
}

func TestRepository_UpdateWithoutFields(t *testing.T) {
	_, err := items.NewRepository(&mockDynamo{}, "t").Update(context.Background(), "a", nil)
	assert.Error(t, err)
}

func TestRepository_DeleteWrapsErrors(t *testing.T) {
	client := &mockDynamo{}
	client.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))

	err := items.NewRepository(client, "t").Delete(context.Background(), "a")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete item a")
	assert.Contains(t, err.Error(), "denied")
}
