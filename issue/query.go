package issue

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/docket/internal/page"
	"github.com/jacentio/docket/store"
)

// PageSize is the fixed number of issues per list page.
const PageSize = 10

// Filter selects issues for List and Counts. Every field is optional;
// supplied fields combine with logical AND.
type Filter struct {
	// Status matches exactly.
	Status Status

	// EffortMin and EffortMax are inclusive bounds on the effort
	// estimate. Either may be supplied alone. Records without an effort
	// value never match a bounded filter.
	EffortMin *int
	EffortMax *int

	// Search matches records whose indexed text (title, owner) contains
	// every term, token-for-token. Ignored by Counts.
	Search string
}

// ListResult is one page of matching issues plus the total page count.
type ListResult struct {
	Issues []Issue `json:"issues"`
	Pages  int     `json:"pages"`
}

// List returns the requested page of active issues matching the filter,
// sorted by id ascending so pagination is stable across calls. pageNum
// is 1-based; values below 1 are clamped to 1, and pages past the end
// yield an empty slice alongside the true page count.
func (e *Engine) List(ctx context.Context, filter Filter, pageNum int) (*ListResult, error) {
	issues, err := e.scanIssues(ctx, filter, true)
	if err != nil {
		return nil, err
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].ID < issues[j].ID })

	start, end := page.Bounds(pageNum, PageSize, len(issues))
	return &ListResult{
		Issues: issues[start:end],
		Pages:  page.Count(len(issues), PageSize),
	}, nil
}

// scanIssues scans the active table with the filter's expression and
// unmarshals every match.
func (e *Engine) scanIssues(ctx context.Context, filter Filter, includeSearch bool) ([]Issue, error) {
	expr, names, values := filter.expression(includeSearch)

	items, err := e.store.Scan(ctx, store.ScanInput{
		TableName:                 e.store.Config().ActiveTable,
		FilterExpression:          expr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		e.logger.Error("scan failed", "error", err)
		return nil, err
	}

	issues := make([]Issue, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &issues); err != nil {
		return nil, fmt.Errorf("unmarshal issues: %w", err)
	}
	return issues, nil
}

// expression translates the filter into a DynamoDB filter expression.
// Returns an empty expression when no filter field is set.
func (f Filter) expression(includeSearch bool) (string, map[string]string, map[string]types.AttributeValue) {
	var clauses []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	if f.Status != "" {
		clauses = append(clauses, "#status = :status")
		names["#status"] = "status"
		values[":status"] = &types.AttributeValueMemberS{Value: string(f.Status)}
	}

	if f.EffortMin != nil {
		clauses = append(clauses, "#effort >= :effort_min")
		names["#effort"] = "effort"
		values[":effort_min"] = &types.AttributeValueMemberN{Value: strconv.Itoa(*f.EffortMin)}
	}
	if f.EffortMax != nil {
		clauses = append(clauses, "#effort <= :effort_max")
		names["#effort"] = "effort"
		values[":effort_max"] = &types.AttributeValueMemberN{Value: strconv.Itoa(*f.EffortMax)}
	}

	if includeSearch && f.Search != "" {
		for i, term := range searchTerms(f.Search) {
			placeholder := fmt.Sprintf(":term%d", i)
			clauses = append(clauses, fmt.Sprintf("contains(#search_tokens, %s)", placeholder))
			names["#search_tokens"] = "search_tokens"
			values[placeholder] = &types.AttributeValueMemberS{Value: term}
		}
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return strings.Join(clauses, " AND "), names, values
}

// searchTerms splits a search string into the lowercased terms matched
// against the stored token list. Order is preserved, duplicates kept -
// a duplicate term is a harmless repeated clause.
func searchTerms(search string) []string {
	return strings.FieldsFunc(strings.ToLower(search), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
