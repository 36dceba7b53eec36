package issue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/docket/store"
)

// SequenceName is the counter that issues draw their ids from. A single
// sequence covers both the active and archive tables, so ids stay
// unique across the whole record family and are never reset by a
// restore.
const SequenceName = "issues"

// Engine is the issue record engine: it allocates ids, validates state
// transitions, and moves records between the active and archive tables.
// Every operation is independently invokable under concurrency; all
// cross-call consistency is delegated to the store's conditional writes.
type Engine struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates an Engine on top of the given store.
func New(s *store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  s,
		logger: logger,
	}
}

// Add validates the candidate, allocates the next id, stamps the
// creation time, and persists the record to the active table. The
// stored form is re-read and returned so callers see any store-side
// normalization. A validation failure aborts before any write; a
// persistence failure after allocation leaves a gap in the id sequence,
// which is acceptable - reuse is not.
func (e *Engine) Add(ctx context.Context, is Issue) (*Issue, error) {
	if violations := Validate(is); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	if is.Status == "" {
		is.Status = StatusNew
	}

	id, err := e.store.NextSequence(ctx, SequenceName)
	if err != nil {
		e.logger.Error("id allocation failed", "error", err)
		return nil, err
	}

	is.ID = id
	is.Created = time.Now().UTC()
	is.Deleted = nil

	item, err := marshalIssue(is)
	if err != nil {
		return nil, err
	}

	if err := e.store.Put(ctx, e.store.Config().ActiveTable, item); err != nil {
		e.logger.Error("add failed", "id", id, "error", err)
		return nil, err
	}

	return e.Get(ctx, id)
}

// Get returns the active record with the given id, or nil if there is
// none. Absence is a normal outcome, not an error; archived records are
// not visible here.
func (e *Engine) Get(ctx context.Context, id int) (*Issue, error) {
	item, err := e.store.Get(ctx, e.store.Config().ActiveTable, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		e.logger.Error("get failed", "id", id, "error", err)
		return nil, err
	}

	is, err := unmarshalIssue(item)
	if err != nil {
		return nil, err
	}
	return is, nil
}

// Update applies a partial change to an active record and returns the
// re-read result, or nil if no record with that id exists. If the patch
// touches an invariant-relevant field (title, status, owner), the
// change is merged onto the current record in memory and the merged
// result re-validated before anything is written; an invalid merge
// leaves the stored record untouched.
func (e *Engine) Update(ctx context.Context, id int, patch Patch) (*Issue, error) {
	var merged *Issue
	if patch.touchesInvariants() {
		current, err := e.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, nil
		}
		m := patch.apply(*current)
		if violations := Validate(m); len(violations) > 0 {
			return nil, &ValidationError{Violations: violations}
		}
		merged = &m
	}

	attrs, err := patchAttributes(patch, merged)
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return e.Get(ctx, id)
	}

	err = e.store.Update(ctx, e.store.Config().ActiveTable, id, attrs)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		e.logger.Error("update failed", "id", id, "error", err)
		return nil, err
	}

	return e.Get(ctx, id)
}

// Remove archives an active record: the copy is stamped with a deletion
// time and moved to the archive table in one conditional transaction.
// Returns false without error when the record is absent or when a
// concurrent Remove won the race - at most one archival occurs per
// record.
func (e *Engine) Remove(ctx context.Context, id int) (bool, error) {
	item, err := e.store.Get(ctx, e.store.Config().ActiveTable, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		e.logger.Error("remove lookup failed", "id", id, "error", err)
		return false, err
	}

	is, err := unmarshalIssue(item)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	is.Deleted = &now

	archived, err := marshalIssue(*is)
	if err != nil {
		return false, err
	}

	err = e.store.Move(ctx, e.store.Config().ActiveTable, e.store.Config().ArchiveTable, id, archived)
	if errors.Is(err, store.ErrConflict) {
		e.logger.Warn("remove lost race", "id", id)
		return false, nil
	}
	if err != nil {
		e.logger.Error("remove failed", "id", id, "error", err)
		return false, err
	}
	return true, nil
}

// Restore moves an archived record back to the active table, stripping
// the deletion stamp from the restored copy. Symmetric to Remove,
// including the single-winner guarantee under concurrent calls.
func (e *Engine) Restore(ctx context.Context, id int) (bool, error) {
	item, err := e.store.Get(ctx, e.store.Config().ArchiveTable, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		e.logger.Error("restore lookup failed", "id", id, "error", err)
		return false, err
	}

	is, err := unmarshalIssue(item)
	if err != nil {
		return false, err
	}
	is.Deleted = nil

	restored, err := marshalIssue(*is)
	if err != nil {
		return false, err
	}

	err = e.store.Move(ctx, e.store.Config().ArchiveTable, e.store.Config().ActiveTable, id, restored)
	if errors.Is(err, store.ErrConflict) {
		e.logger.Warn("restore lost race", "id", id)
		return false, nil
	}
	if err != nil {
		e.logger.Error("restore failed", "id", id, "error", err)
		return false, err
	}
	return true, nil
}

// marshalIssue converts an issue to its stored item form, including the
// engine-managed search_tokens attribute.
func marshalIssue(is Issue) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(is)
	if err != nil {
		return nil, fmt.Errorf("marshal issue %d: %w", is.ID, err)
	}
	if tokens := searchTokens(is.Title, is.Owner); len(tokens) > 0 {
		tokenAttrs, err := attributevalue.MarshalList(tokens)
		if err != nil {
			return nil, fmt.Errorf("marshal search tokens: %w", err)
		}
		item["search_tokens"] = &types.AttributeValueMemberL{Value: tokenAttrs}
	}
	return item, nil
}

// unmarshalIssue converts a stored item back to an Issue. Engine-managed
// attributes (search_tokens, retention ttl) have no struct field and
// are dropped.
func unmarshalIssue(item map[string]types.AttributeValue) (*Issue, error) {
	var is Issue
	if err := attributevalue.UnmarshalMap(item, &is); err != nil {
		return nil, fmt.Errorf("unmarshal issue: %w", err)
	}
	return &is, nil
}

// patchAttributes builds the SET attributes for a partial update. When
// the patch touches the title or owner, the refreshed search tokens are
// written alongside, derived from the merged record.
func patchAttributes(patch Patch, merged *Issue) (map[string]types.AttributeValue, error) {
	attrs := map[string]types.AttributeValue{}

	if patch.Title != nil {
		v, err := attributevalue.Marshal(*patch.Title)
		if err != nil {
			return nil, fmt.Errorf("marshal title: %w", err)
		}
		attrs["title"] = v
	}
	if patch.Status != nil {
		v, err := attributevalue.Marshal(*patch.Status)
		if err != nil {
			return nil, fmt.Errorf("marshal status: %w", err)
		}
		attrs["status"] = v
	}
	if patch.Owner != nil {
		v, err := attributevalue.Marshal(*patch.Owner)
		if err != nil {
			return nil, fmt.Errorf("marshal owner: %w", err)
		}
		attrs["owner"] = v
	}
	if patch.Effort != nil {
		v, err := attributevalue.Marshal(*patch.Effort)
		if err != nil {
			return nil, fmt.Errorf("marshal effort: %w", err)
		}
		attrs["effort"] = v
	}

	if (patch.Title != nil || patch.Owner != nil) && merged != nil {
		tokens := searchTokens(merged.Title, merged.Owner)
		tokenAttrs, err := attributevalue.MarshalList(tokens)
		if err != nil {
			return nil, fmt.Errorf("marshal search tokens: %w", err)
		}
		attrs["search_tokens"] = &types.AttributeValueMemberL{Value: tokenAttrs}
	}

	return attrs, nil
}
