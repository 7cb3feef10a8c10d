package dal

import (
	"context"
	"errors"
	"io"
	"kodikas-backend/models"
	"kodikas-backend/utils/logger"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockDynamoDBAPI implements DynamoDBAPI for testing
type MockDynamoDBAPI struct {
	mock.Mock
}

func (m *MockDynamoDBAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *MockDynamoDBAPI) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

func (m *MockDynamoDBAPI) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ScanOutput), args.Error(1)
}

func (m *MockDynamoDBAPI) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.TransactWriteItemsOutput), args.Error(1)
}

func (m *MockDynamoDBAPI) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.CreateTableOutput), args.Error(1)
}

func (m *MockDynamoDBAPI) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DescribeTableOutput), args.Error(1)
}

type record struct {
	ID   string `dynamodbav:"id"`
	Name string `dynamodbav:"name"`
}

type DALTestSuite struct {
	suite.Suite
	api    *MockDynamoDBAPI
	client *DynamoDBClient
	ctx    context.Context
}

func (suite *DALTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.api = &MockDynamoDBAPI{}
	suite.client = NewDynamoDBClientWithAPI(suite.api, logger.NewLoggerWithOutput("error", "json", io.Discard))
}

func TestDALTestSuite(t *testing.T) {
	suite.Run(t, new(DALTestSuite))
}

func item(id, name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":   &types.AttributeValueMemberS{Value: id},
		"name": &types.AttributeValueMemberS{Value: name},
	}
}

func (suite *DALTestSuite) TestGetItemFound() {
	suite.api.On("GetItem", suite.ctx, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		key, ok := in.Key["id"].(*types.AttributeValueMemberS)
		return aws.ToString(in.TableName) == "dev_members" && ok && key.Value == "m-1" && aws.ToBool(in.ConsistentRead)
	})).Return(&dynamodb.GetItemOutput{Item: item("m-1", "Ana")}, nil)

	var out record
	found, err := suite.client.GetItem(suite.ctx, models.QueryConfig{
		TableName: "dev_members", KeyName: "id", KeyValue: "m-1", ConsistentRead: true,
	}, &out)

	require.NoError(suite.T(), err)
	assert.True(suite.T(), found)
	assert.Equal(suite.T(), "Ana", out.Name)
}

func (suite *DALTestSuite) TestGetItemMissing() {
	suite.api.On("GetItem", suite.ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	var out record
	found, err := suite.client.GetItem(suite.ctx, models.QueryConfig{TableName: "t", KeyName: "id", KeyValue: "x"}, &out)

	require.NoError(suite.T(), err)
	assert.False(suite.T(), found)
	assert.Empty(suite.T(), out.ID)
}

func (suite *DALTestSuite) TestGetItemError() {
	suite.api.On("GetItem", suite.ctx, mock.Anything).Return(nil, errors.New("throttled"))

	var out record
	_, err := suite.client.GetItem(suite.ctx, models.QueryConfig{TableName: "t", KeyName: "id", KeyValue: "x"}, &out)
	assert.EqualError(suite.T(), err, "throttled")
}

func (suite *DALTestSuite) TestQueryByIndexFollowsPages() {
	suite.api.On("Query", suite.ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{item("1", "a")},
		LastEvaluatedKey: item("1", "a"),
	}, nil).Once()
	suite.api.On("Query", suite.ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil && aws.ToString(in.IndexName) == "organizationId-index"
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{item("2", "b")},
	}, nil).Once()

	var out []record
	err := suite.client.QueryByIndex(suite.ctx, "dev_members", "organizationId-index", "organizationId", "org-1", &out)

	require.NoError(suite.T(), err)
	assert.Len(suite.T(), out, 2)
	assert.Equal(suite.T(), "b", out[1].Name)
	suite.api.AssertExpectations(suite.T())
}

func (suite *DALTestSuite) TestScan() {
	suite.api.On("Scan", suite.ctx, mock.Anything).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{item("1", "a"), item("2", "b")},
	}, nil)

	var out []record
	require.NoError(suite.T(), suite.client.Scan(suite.ctx, "dev_projects", &out))
	assert.Len(suite.T(), out, 2)
}

func (suite *DALTestSuite) TestTransactWriteItems() {
	suite.api.On("TransactWriteItems", suite.ctx, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
		return len(in.TransactItems) == 2
	})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

	err := suite.client.TransactWriteItems(suite.ctx, make([]types.TransactWriteItem, 2))
	assert.NoError(suite.T(), err)
}

func (suite *DALTestSuite) TestTransactWriteItemsEmptyIsNoop() {
	assert.NoError(suite.T(), suite.client.TransactWriteItems(suite.ctx, nil))
	suite.api.AssertNotCalled(suite.T(), "TransactWriteItems", mock.Anything, mock.Anything)
}

func (suite *DALTestSuite) TestTransactWriteItemsOverLimit() {
	err := suite.client.TransactWriteItems(suite.ctx, make([]types.TransactWriteItem, MaxTransactItems+1))
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "limit is 100")
}

func (suite *DALTestSuite) TestBuildUpdate() {
	update, err := BuildUpdate(UpdateSpec{
		TableName: "dev_organizations",
		KeyName:   "id",
		KeyValue:  "org-1",
		Set:       map[string]interface{}{"name": "Acme", "isActive": false},
		Add:       map[string]int{"memberCount": -1},
		Condition: "#isActive = :true",
		ConditionValues: map[string]interface{}{
			":true": true,
		},
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "SET #isActive = :isActive, #name = :name ADD #memberCount :memberCountDelta", aws.ToString(update.UpdateExpression))
	assert.Equal(suite.T(), "#isActive = :true", aws.ToString(update.ConditionExpression))
	assert.Equal(suite.T(), "memberCount", update.ExpressionAttributeNames["#memberCount"])
	assert.Equal(suite.T(), &types.AttributeValueMemberN{Value: "-1"}, update.ExpressionAttributeValues[":memberCountDelta"])
	assert.Equal(suite.T(), &types.AttributeValueMemberBOOL{Value: true}, update.ExpressionAttributeValues[":true"])
}

func (suite *DALTestSuite) TestBuildUpdateEmpty() {
	_, err := BuildUpdate(UpdateSpec{TableName: "t", KeyName: "id", KeyValue: "1"})
	assert.Error(suite.T(), err)
}

func (suite *DALTestSuite) TestBuildPut() {
	put, err := BuildPut("dev_members", record{ID: "1", Name: "a"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "dev_members", aws.ToString(put.TableName))
	assert.Equal(suite.T(), &types.AttributeValueMemberS{Value: "1"}, put.Item["id"])
}

func (suite *DALTestSuite) TestErrorClassification() {
	canceled := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
	assert.True(suite.T(), IsConditionalCheckFailed(canceled))
	assert.False(suite.T(), IsTransactionConflict(canceled))

	conflict := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("TransactionConflict")}},
	}
	assert.False(suite.T(), IsConditionalCheckFailed(conflict))
	assert.True(suite.T(), IsTransactionConflict(conflict))

	assert.True(suite.T(), IsConditionalCheckFailed(&types.ConditionalCheckFailedException{}))
	assert.False(suite.T(), IsConditionalCheckFailed(errors.New("other")))

	assert.True(suite.T(), IsResourceNotFound(&smithy.GenericAPIError{Code: "ResourceNotFoundException"}))
	assert.True(suite.T(), IsResourceNotFound(&types.ResourceNotFoundException{}))
	assert.False(suite.T(), IsResourceNotFound(&smithy.GenericAPIError{Code: "ValidationException"}))
}
