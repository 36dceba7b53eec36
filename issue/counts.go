package issue

import (
	"context"
	"sort"
)

// CountGroup is the per-owner pivot of grouped (owner, status) counts.
// Statuses with no matching records are absent from ByStatus; callers
// treat missing as zero.
type CountGroup struct {
	Owner    string         `json:"owner"`
	ByStatus map[Status]int `json:"counts"`
}

// Counts groups active issues matching the filter by (owner, status)
// and pivots to one row per owner. The filter's Search field does not
// apply here. Rows come back sorted by owner.
func (e *Engine) Counts(ctx context.Context, filter Filter) ([]CountGroup, error) {
	issues, err := e.scanIssues(ctx, filter, false)
	if err != nil {
		return nil, err
	}
	return pivotCounts(issues), nil
}

// pivotCounts turns a flat record list into per-owner status counts.
func pivotCounts(issues []Issue) []CountGroup {
	byOwner := map[string]map[Status]int{}
	for _, is := range issues {
		if byOwner[is.Owner] == nil {
			byOwner[is.Owner] = map[Status]int{}
		}
		byOwner[is.Owner][is.Status]++
	}

	groups := make([]CountGroup, 0, len(byOwner))
	for owner, counts := range byOwner {
		groups = append(groups, CountGroup{Owner: owner, ByStatus: counts})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Owner < groups[j].Owner })
	return groups
}
