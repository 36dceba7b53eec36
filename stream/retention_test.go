package stream

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// --- getNumberAttr Tests ---

func TestGetNumberAttr_ValidNumber(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"id": events.NewNumberAttribute("42"),
	}

	result := getNumberAttr(image, "id")
	if result != 42 {
		t.Errorf("expected 42, got %d", result)
	}
}

func TestGetNumberAttr_MissingKey(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{}

	result := getNumberAttr(image, "id")
	if result != 0 {
		t.Errorf("expected 0 for missing key, got %d", result)
	}
}

func TestGetNumberAttr_WrongType(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"id": events.NewStringAttribute("42"),
	}

	result := getNumberAttr(image, "id")
	if result != 0 {
		t.Errorf("expected 0 for wrong type, got %d", result)
	}
}

func TestGetNumberAttr_NilImage(t *testing.T) {
	var image map[string]events.DynamoDBAttributeValue

	result := getNumberAttr(image, "id")
	if result != 0 {
		t.Errorf("expected 0 for nil image, got %d", result)
	}
}

// --- getTimeAttr Tests ---

func TestGetTimeAttr_ValidTimestamp(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"deleted": events.NewStringAttribute("2024-06-01T12:30:00Z"),
	}

	result, ok := getTimeAttr(image, "deleted")
	if !ok {
		t.Fatal("expected ok")
	}
	expected := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	if !result.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, result)
	}
}

func TestGetTimeAttr_NanosecondPrecision(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"deleted": events.NewStringAttribute("2024-06-01T12:30:00.123456789Z"),
	}

	if _, ok := getTimeAttr(image, "deleted"); !ok {
		t.Error("expected nanosecond timestamps to parse")
	}
}

func TestGetTimeAttr_MissingKey(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{}

	if _, ok := getTimeAttr(image, "deleted"); ok {
		t.Error("expected not ok for missing key")
	}
}

func TestGetTimeAttr_Unparseable(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"deleted": events.NewStringAttribute("yesterday"),
	}

	if _, ok := getTimeAttr(image, "deleted"); ok {
		t.Error("expected not ok for unparseable value")
	}
}

func TestGetTimeAttr_WrongType(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"deleted": events.NewNumberAttribute("1700000000"),
	}

	if _, ok := getTimeAttr(image, "deleted"); ok {
		t.Error("expected not ok for number attribute")
	}
}

// --- processRecord skip-path Tests ---
//
// The skip paths never reach the store, so a nil store is safe here.

func TestProcessRecord_SkipsNonInsert(t *testing.T) {
	h := NewHandler(nil, 0, nil)

	for _, eventName := range []string{"MODIFY", "REMOVE"} {
		record := events.DynamoDBEventRecord{
			EventName: eventName,
			Change: events.DynamoDBStreamRecord{
				NewImage: map[string]events.DynamoDBAttributeValue{
					"id":      events.NewNumberAttribute("1"),
					"deleted": events.NewStringAttribute("2024-06-01T12:30:00Z"),
				},
			},
		}

		if err := h.processRecord(context.Background(), record); err != nil {
			t.Errorf("%s: expected skip, got error %v", eventName, err)
		}
	}
}

func TestProcessRecord_SkipsMissingID(t *testing.T) {
	h := NewHandler(nil, 0, nil)
	record := events.DynamoDBEventRecord{
		EventName: "INSERT",
		Change: events.DynamoDBStreamRecord{
			NewImage: map[string]events.DynamoDBAttributeValue{
				"deleted": events.NewStringAttribute("2024-06-01T12:30:00Z"),
			},
		},
	}

	if err := h.processRecord(context.Background(), record); err != nil {
		t.Errorf("expected skip, got error %v", err)
	}
}

func TestProcessRecord_SkipsMissingDeletedStamp(t *testing.T) {
	h := NewHandler(nil, 0, nil)
	record := events.DynamoDBEventRecord{
		EventName: "INSERT",
		Change: events.DynamoDBStreamRecord{
			NewImage: map[string]events.DynamoDBAttributeValue{
				"id": events.NewNumberAttribute("1"),
			},
		},
	}

	if err := h.processRecord(context.Background(), record); err != nil {
		t.Errorf("expected skip, got error %v", err)
	}
}

// --- NewHandler Tests ---

func TestNewHandler_DefaultRetention(t *testing.T) {
	h := NewHandler(nil, 0, nil)
	if h.retention != DefaultRetention {
		t.Errorf("expected DefaultRetention, got %v", h.retention)
	}

	h = NewHandler(nil, -time.Hour, nil)
	if h.retention != DefaultRetention {
		t.Errorf("expected DefaultRetention for negative value, got %v", h.retention)
	}
}

func TestNewHandler_CustomRetention(t *testing.T) {
	h := NewHandler(nil, 30*24*time.Hour, nil)
	if h.retention != 30*24*time.Hour {
		t.Errorf("expected 30 days, got %v", h.retention)
	}
}

func TestNewHandler_DefaultLogger(t *testing.T) {
	h := NewHandler(nil, 0, nil)
	if h.logger == nil {
		t.Error("expected a default logger")
	}
}
