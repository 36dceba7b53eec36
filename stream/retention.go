// Package stream provides the DynamoDB Streams handler that applies the
// archive retention policy.
//
// The engine itself never physically purges records; expiry is this
// separate collaborator's job. The handler watches the archive table's
// stream and stamps each newly archived issue with a DynamoDB TTL of
// deleted-time plus the configured retention, after which DynamoDB
// removes the record on its own.
package stream

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/docket/store"
)

// DefaultRetention is how long archived issues stay restorable when no
// retention period is configured.
const DefaultRetention = 90 * 24 * time.Hour

// Handler processes archive-table stream events.
type Handler struct {
	store     *store.Store
	retention time.Duration
	logger    *slog.Logger
}

// NewHandler creates a new stream handler. A non-positive retention
// falls back to DefaultRetention.
func NewHandler(s *store.Store, retention time.Duration, logger *slog.Logger) *Handler {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     s,
		retention: retention,
		logger:    logger,
	}
}

// HandleArchiveEvents stamps a retention TTL on every issue newly
// inserted into the archive table. Designed to be used as an AWS Lambda
// handler; a returned error makes the batch retry and eventually DLQ.
func (h *Handler) HandleArchiveEvents(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err
		}
	}
	return nil
}

// processRecord handles a single stream record. Everything except an
// INSERT of a deletion-stamped issue is skipped; re-stamping is
// prevented store-side, so replays are harmless.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "INSERT" {
		return nil
	}

	id := getNumberAttr(record.Change.NewImage, "id")
	if id == 0 {
		return nil
	}

	deleted, ok := getTimeAttr(record.Change.NewImage, "deleted")
	if !ok {
		h.logger.Warn("archived record has no usable deleted stamp", "id", id)
		return nil
	}

	expiresAt := deleted.Add(h.retention).Unix()

	h.logger.Info("scheduling archived issue expiry",
		"id", id,
		"deleted", deleted,
		"expiresAt", expiresAt,
	)

	return h.store.SetArchiveTTL(ctx, int(id), expiresAt)
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}

// getTimeAttr extracts an RFC 3339 string attribute from a DynamoDB
// stream image as a time.
func getTimeAttr(image map[string]events.DynamoDBAttributeValue, key string) (time.Time, bool) {
	v, ok := image[key]
	if !ok || v.DataType() != events.DataTypeString {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339Nano, v.String())
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
