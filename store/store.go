package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// Store provides DynamoDB operations over the issue tables.
type Store struct {
	client *dynamodb.Client
	config Config
}

// New creates a new Store instance.
func New(client *dynamodb.Client, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// Config returns the resolved table configuration.
func (s *Store) Config() Config {
	return s.config
}

// IDKey builds the primary key for an issue record.
func IDKey(id int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.Itoa(id)},
	}
}

// Get retrieves a record by id from the given table, returning
// ErrNotFound if it does not exist.
func (s *Store) Get(ctx context.Context, table string, id int) (map[string]types.AttributeValue, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       IDKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s id=%d: %w", table, id, err)
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}
	return result.Item, nil
}

// Put inserts a new record, failing with ErrAlreadyExists if a record
// with the same id is already present.
func (s *Store) Put(ctx context.Context, table string, item map[string]types.AttributeValue) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("put %s: %w", table, err)
	}
	return nil
}

// Update applies a SET of the given attributes to an existing record.
// Returns ErrNotFound if no record with that id exists; the condition
// also prevents an update from resurrecting a record that was moved
// away concurrently.
func (s *Store) Update(ctx context.Context, table string, id int, attrs map[string]types.AttributeValue) error {
	if len(attrs) == 0 {
		return nil
	}

	var setClauses []string
	exprNames := map[string]string{}
	exprValues := map[string]types.AttributeValue{}

	i := 0
	for k, v := range attrs {
		// id is the key, never writable
		if k == "id" {
			continue
		}
		nameKey := fmt.Sprintf("#attr%d", i)
		valueKey := fmt.Sprintf(":val%d", i)
		exprNames[nameKey] = k
		exprValues[valueKey] = v
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
		i++
	}
	if len(setClauses) == 0 {
		return nil
	}

	updateExpr := "SET " + joinStrings(setClauses, ", ")

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       IDKey(id),
		UpdateExpression:          aws.String(updateExpr),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		return fmt.Errorf("update %s id=%d: %w", table, id, err)
	}
	return nil
}

// ScanInput defines parameters for scanning a table.
type ScanInput struct {
	// TableName is the DynamoDB table to scan.
	TableName string

	// FilterExpression is an optional filter applied server-side.
	FilterExpression string

	// ExpressionAttributeNames maps expression attribute name placeholders.
	ExpressionAttributeNames map[string]string

	// ExpressionAttributeValues maps expression attribute value placeholders.
	ExpressionAttributeValues map[string]types.AttributeValue
}

// Scan returns every record in the table matching the filter, draining
// the scan paginator.
func (s *Store) Scan(ctx context.Context, input ScanInput) ([]map[string]types.AttributeValue, error) {
	scanInput := &dynamodb.ScanInput{
		TableName: aws.String(input.TableName),
	}
	if input.FilterExpression != "" {
		scanInput.FilterExpression = aws.String(input.FilterExpression)
		scanInput.ExpressionAttributeNames = input.ExpressionAttributeNames
		scanInput.ExpressionAttributeValues = input.ExpressionAttributeValues
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(s.client, scanInput)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", input.TableName, err)
		}
		items = append(items, page.Items...)
	}

	return items, nil
}

// Move transfers a record between tables in a single transaction: the
// item is put into toTable only if no record with that id is already
// there, and the source record is deleted only if it is still present.
// Either condition failing cancels the whole transaction, so a record
// is never in both tables or neither. The loser of a concurrent move on
// the same id gets ErrConflict.
func (s *Store) Move(ctx context.Context, fromTable, toTable string, id int, item map[string]types.AttributeValue) error {
	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		ClientRequestToken: aws.String(uuid.New().String()),
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(toTable),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				Delete: &types.Delete{
					TableName:           aws.String(fromTable),
					Key:                 IDKey(id),
					ConditionExpression: aws.String("attribute_exists(id)"),
				},
			},
		},
	})
	if err := mapMoveError(err); err != nil {
		if errors.Is(err, ErrConflict) {
			return err
		}
		return fmt.Errorf("move %s -> %s id=%d: %w", fromTable, toTable, id, err)
	}
	return nil
}

// SetArchiveTTL stamps a DynamoDB TTL on an archived record so retention
// can expire it. Idempotent: a record that already carries a TTL is left
// untouched.
func (s *Store) SetArchiveTTL(ctx context.Context, id int, expiresAt int64) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.config.ArchiveTable),
		Key:                 IDKey(id),
		UpdateExpression:    aws.String("SET #ttl = :expires"),
		ConditionExpression: aws.String("attribute_exists(id) AND attribute_not_exists(#ttl)"),
		ExpressionAttributeNames: map[string]string{
			"#ttl": "ttl",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expires": &types.AttributeValueMemberN{
				Value: strconv.FormatInt(expiresAt, 10),
			},
		},
	})

	// Ignore condition failure - TTL already stamped or record restored
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("set archive ttl id=%d: %w", id, err)
	}
	return nil
}

// mapMoveError maps transaction cancellation caused by a failed
// condition to ErrConflict. Other errors pass through unchanged.
func mapMoveError(err error) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for _, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return ErrConflict
			}
		}
	}

	return err
}

// joinStrings joins strings with a separator (avoiding strings package import).
func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for _, s := range strs[1:] {
		result += sep + s
	}
	return result
}
