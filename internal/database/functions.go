package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

var (
	ErrItemNotFound    = errors.New("database: item not found")
	ErrConditionFailed = errors.New("database: condition check failed")
)

// Condition guards a write with a DynamoDB condition expression.
type Condition struct {
	Expression string
	Values     map[string]types.AttributeValue
	Names      map[string]string
}

func AttrString(value string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: value}
}

func AttrBool(value bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: value}
}

func (c *DynamoDBClient) PutItem(
	ctx context.Context,
	tableName string,
	item interface{},
	cond *Condition,
) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	}
	if cond != nil {
		input.ConditionExpression = aws.String(cond.Expression)
		input.ExpressionAttributeValues = cond.Values
		input.ExpressionAttributeNames = cond.Names
	}

	if _, err = c.svc.PutItem(ctx, input); err != nil {
		if isConditionFailed(err) {
			return ErrConditionFailed
		}
		return fmt.Errorf("put item %s: %w", tableName, err)
	}
	return nil
}

func (c *DynamoDBClient) GetItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	out interface{},
) error {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(tableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	}

	res, err := c.svc.GetItem(ctx, input)
	if err != nil {
		return fmt.Errorf("get item %s: %w", tableName, err)
	}
	if res.Item == nil {
		return ErrItemNotFound
	}

	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

// UpdateItem applies updateExpr and unmarshals the new image into out. The
// merged names/values of cond are sent alongside the update's own.
func (c *DynamoDBClient) UpdateItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	cond *Condition,
	out interface{},
) error {
	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: exprAttrValues,
		ExpressionAttributeNames:  exprAttrNames,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if cond != nil {
		input.ConditionExpression = aws.String(cond.Expression)
		if input.ExpressionAttributeValues == nil {
			input.ExpressionAttributeValues = map[string]types.AttributeValue{}
		}
		for k, v := range cond.Values {
			input.ExpressionAttributeValues[k] = v
		}
		if input.ExpressionAttributeNames == nil {
			input.ExpressionAttributeNames = map[string]string{}
		}
		for k, v := range cond.Names {
			input.ExpressionAttributeNames[k] = v
		}
	}

	res, err := c.svc.UpdateItem(ctx, input)
	if err != nil {
		if isConditionFailed(err) {
			return ErrConditionFailed
		}
		return fmt.Errorf("update item %s: %w", tableName, err)
	}

	if out != nil {
		if err := attributevalue.UnmarshalMap(res.Attributes, out); err != nil {
			return fmt.Errorf("unmarshal updated item: %w", err)
		}
	}
	return nil
}

// QueryAll performs a complete query, handling pagination internally.
func (c *DynamoDBClient) QueryAll(
	ctx context.Context,
	tableName string,
	indexName *string,
	keyCondExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	scanIndexForward bool,
) ([]map[string]types.AttributeValue, error) {
	var allItems []map[string]types.AttributeValue
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(tableName),
			IndexName:                 indexName,
			KeyConditionExpression:    aws.String(keyCondExpr),
			ExpressionAttributeValues: exprAttrValues,
			ScanIndexForward:          aws.Bool(scanIndexForward),
		}
		if exprAttrNames != nil {
			input.ExpressionAttributeNames = exprAttrNames
		}
		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}

		result, err := c.svc.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query all %s[%s]: %w", tableName, aws.ToString(indexName), err)
		}

		allItems = append(allItems, result.Items...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}

	return allItems, nil
}

// ScanAllWithFilter scans the whole table. An empty filterExpr scans
// without a filter.
func (c *DynamoDBClient) ScanAllWithFilter(
	ctx context.Context,
	tableName string,
	filterExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
) ([]map[string]types.AttributeValue, error) {
	var allItems []map[string]types.AttributeValue
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName: aws.String(tableName),
		}
		if filterExpr != "" {
			input.FilterExpression = aws.String(filterExpr)
			input.ExpressionAttributeValues = exprAttrValues
			input.ExpressionAttributeNames = exprAttrNames
		}
		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}

		result, err := c.svc.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan all with filter %s: %w", tableName, err)
		}

		allItems = append(allItems, result.Items...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}
	return allItems, nil
}

// UnmarshalAll decodes raw items into a slice of T.
func UnmarshalAll[T any](items []map[string]types.AttributeValue) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := attributevalue.UnmarshalMap(item, &v); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

// IsIndexMissing reports whether a query failed because the GSI is not
// provisioned, in which case callers fall back to a scan.
func IsIndexMissing(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationException"
}
