package dal

import (
	"context"
	"errors"
	"fmt"
	"kodikas-backend/models"
	"kodikas-backend/utils/logger"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// MaxTransactItems is the DynamoDB limit for one TransactWriteItems call
const MaxTransactItems = 100

type DynamoDBClient struct {
	client DynamoDBAPI
	logger logger.Logger
}

// NewDynamoDBClient creates a DynamoDB client from the application config
func NewDynamoDBClient(ctx context.Context, cfg *models.Config, log logger.Logger) (*DynamoDBClient, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		// Local DynamoDB
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})

	log.Infof("DynamoDB client initialized (region=%s)", cfg.AWSRegion)
	return NewDynamoDBClientWithAPI(client, log), nil
}

// NewDynamoDBClientWithAPI wraps an existing SDK client
func NewDynamoDBClientWithAPI(api DynamoDBAPI, log logger.Logger) *DynamoDBClient {
	return &DynamoDBClient{client: api, logger: log}
}

// GetItem retrieves an item by primary key
func (db *DynamoDBClient) GetItem(ctx context.Context, cfg models.QueryConfig, result interface{}) (bool, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(cfg.TableName),
		Key:            map[string]types.AttributeValue{cfg.KeyName: keyAttribute(cfg.KeyType, cfg.KeyValue)},
		ConsistentRead: aws.Bool(cfg.ConsistentRead),
	}

	output, err := db.client.GetItem(ctx, input)
	if err != nil {
		db.logger.Errorf("Failed to get item from %s: %v", cfg.TableName, err)
		return false, err
	}
	if output.Item == nil {
		return false, nil
	}

	if err := attributevalue.UnmarshalMap(output.Item, result); err != nil {
		return false, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return true, nil
}

// QueryByIndex returns every item of a global secondary index partition
func (db *DynamoDBClient) QueryByIndex(ctx context.Context, tableName, indexName, keyName, keyValue string, results interface{}) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#kn0 = :kv0"),
		ExpressionAttributeNames: map[string]string{
			"#kn0": keyName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kv0": &types.AttributeValueMemberS{Value: keyValue},
		},
	}

	var items []map[string]types.AttributeValue
	for {
		output, err := db.client.Query(ctx, input)
		if err != nil {
			return err
		}
		items = append(items, output.Items...)
		if len(output.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}

	return attributevalue.UnmarshalListOfMaps(items, results)
}

// Scan reads the entire table
func (db *DynamoDBClient) Scan(ctx context.Context, tableName string, results interface{}) error {
	input := &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	}

	var items []map[string]types.AttributeValue
	for {
		output, err := db.client.Scan(ctx, input)
		if err != nil {
			return err
		}
		items = append(items, output.Items...)
		if len(output.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}

	return attributevalue.UnmarshalListOfMaps(items, results)
}

// TransactWriteItems commits the items in a single all-or-nothing call
func (db *DynamoDBClient) TransactWriteItems(ctx context.Context, items []types.TransactWriteItem) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) > MaxTransactItems {
		return fmt.Errorf("transaction has %d items, limit is %d", len(items), MaxTransactItems)
	}

	_, err := db.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return err
}

// CreateTable creates a table
func (db *DynamoDBClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	_, err := db.client.CreateTable(ctx, input)
	return err
}

// DescribeTable describes a table
func (db *DynamoDBClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	return db.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
}

// UpdateSpec describes a single-item update inside a transaction
type UpdateSpec struct {
	TableName string
	KeyName   string
	KeyValue  string
	Set       map[string]interface{}
	Add       map[string]int
	Condition string
	// ConditionValues are merged into the expression values; names are
	// referenced in Condition as "#name" and values as ":name".
	ConditionNames  map[string]string
	ConditionValues map[string]interface{}
}

// BuildUpdate renders an UpdateSpec as a transactional update. Attribute
// names are emitted in sorted order so the expression is deterministic.
func BuildUpdate(spec UpdateSpec) (*types.Update, error) {
	names := make(map[string]string)
	values := make(map[string]types.AttributeValue)

	setFields := sortedKeys(spec.Set)
	var setParts []string
	for _, field := range setFields {
		av, err := attributevalue.Marshal(spec.Set[field])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", field, err)
		}
		names["#"+field] = field
		values[":"+field] = av
		setParts = append(setParts, "#"+field+" = :"+field)
	}

	addFields := sortedKeys(spec.Add)
	var addParts []string
	for _, field := range addFields {
		names["#"+field] = field
		values[":"+field+"Delta"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", spec.Add[field])}
		addParts = append(addParts, "#"+field+" :"+field+"Delta")
	}

	if len(setParts) == 0 && len(addParts) == 0 {
		return nil, errors.New("update has no attributes")
	}

	expression := ""
	if len(setParts) > 0 {
		expression = "SET " + strings.Join(setParts, ", ")
	}
	if len(addParts) > 0 {
		if expression != "" {
			expression += " "
		}
		expression += "ADD " + strings.Join(addParts, ", ")
	}

	update := &types.Update{
		TableName: aws.String(spec.TableName),
		Key: map[string]types.AttributeValue{
			spec.KeyName: &types.AttributeValueMemberS{Value: spec.KeyValue},
		},
		UpdateExpression:          aws.String(expression),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}

	if spec.Condition != "" {
		for k, v := range spec.ConditionNames {
			names[k] = v
		}
		for k, v := range spec.ConditionValues {
			av, err := attributevalue.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal condition value %s: %w", k, err)
			}
			values[k] = av
		}
		update.ConditionExpression = aws.String(spec.Condition)
	}

	return update, nil
}

// BuildPut renders an item as a transactional put
func BuildPut(tableName string, item interface{}) (*types.Put, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	return &types.Put{
		TableName: aws.String(tableName),
		Item:      av,
	}, nil
}

// IsConditionalCheckFailed reports whether err was caused by a failed condition expression
func IsConditionalCheckFailed(err error) bool {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
		return false
	}
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// IsTransactionConflict reports whether a transaction was canceled because
// another transaction touched the same items
func IsTransactionConflict(err error) bool {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if aws.ToString(reason.Code) == "TransactionConflict" {
				return true
			}
		}
	}
	return false
}

// IsResourceNotFound reports whether err is a ResourceNotFoundException
func IsResourceNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceNotFoundException"
	}
	return false
}

func keyAttribute(kind models.AttributeType, value string) types.AttributeValue {
	if kind == models.NumberType {
		return &types.AttributeValueMemberN{Value: value}
	}
	return &types.AttributeValueMemberS{Value: value}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
