package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// NextSequence atomically increments the named counter and returns the
// new value. A counter that does not exist yet is created by the same
// ADD update, so the first call for a name returns 1 even under
// concurrent first use. No two calls ever observe the same value for
// the same name.
func (s *Store) NextSequence(ctx context.Context, name string) (int, error) {
	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.config.CounterTable),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: name},
		},
		UpdateExpression: aws.String("ADD #current :one"),
		ExpressionAttributeNames: map[string]string{
			"#current": "current",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("next sequence %q: %w", name, err)
	}

	return parseSequenceValue(name, result.Attributes)
}

// parseSequenceValue extracts the incremented counter value from the
// UpdateItem response attributes.
func parseSequenceValue(name string, attrs map[string]types.AttributeValue) (int, error) {
	current, ok := attrs["current"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("next sequence %q: response missing current value", name)
	}
	value, err := strconv.Atoi(current.Value)
	if err != nil {
		return 0, fmt.Errorf("next sequence %q: parse current value: %w", name, err)
	}
	return value, nil
}
