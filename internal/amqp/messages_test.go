package amqp

import (
	"testing"
	"time"
)

func TestTransactionRecordedMessageJSON(t *testing.T) {
	msg := NewTransactionRecordedMessage(42, "Income", 100000, 2025, 3)
	if msg.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	back, err := TransactionRecordedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if back.ID != 42 || back.Type != "Income" || back.AmountUnits != 100000 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if back.Year != 2025 || back.Month != 3 {
		t.Fatalf("period mismatch: %+v", back)
	}
	if !back.Timestamp.Equal(msg.Timestamp.Truncate(time.Nanosecond)) && back.Timestamp.IsZero() {
		t.Fatal("timestamp lost in round trip")
	}
}

func TestTransactionRecordedMessageFromJSONInvalid(t *testing.T) {
	if _, err := TransactionRecordedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
