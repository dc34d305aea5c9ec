package ledger

import (
	"strings"
	"testing"
	"time"
)

// TestNewTransactionIDFormat verifies the TX_<stamp>_<hash> shape with a
// second-resolution stamp and a 10-character truncated digest.
func TestNewTransactionIDFormat(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 30, 0, 12345, time.UTC)
	id := NewTransactionID("APP_1", "farm-7", "dist-2", at)

	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != "TX" {
		t.Fatalf("unexpected id shape: %q", id)
	}
	if parts[1] != "20250301103000" {
		t.Fatalf("expected stamp 20250301103000, got %q", parts[1])
	}
	if len(parts[2]) != 10 {
		t.Fatalf("expected 10-character digest, got %q", parts[2])
	}
}

// TestNewTransactionIDDeterministic verifies the derivation is a pure
// function of its inputs, and that a different instant yields a different id.
func TestNewTransactionIDDeterministic(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 30, 0, 12345, time.UTC)

	if NewTransactionID("APP_1", "farm-7", "dist-2", at) != NewTransactionID("APP_1", "farm-7", "dist-2", at) {
		t.Fatal("same inputs should produce the same id")
	}
	if NewTransactionID("APP_1", "farm-7", "dist-2", at) == NewTransactionID("APP_1", "farm-7", "dist-2", at.Add(time.Nanosecond)) {
		t.Fatal("different instants should produce different ids")
	}
}

// TestNewTransactionRecordDefaults verifies the constructor fills the id,
// the quality flag and a parseable timestamp, and leaves optionals unset.
func TestNewTransactionRecordDefaults(t *testing.T) {
	record := NewTransactionRecord("APP_1", "farm-7", "dist-2", KindCreate, 120.5)

	if !strings.HasPrefix(record.TransactionID, "TX_") {
		t.Fatalf("expected TX_ prefixed id, got %q", record.TransactionID)
	}
	if !record.QualityCheckPassed {
		t.Fatal("quality check should default to passed")
	}
	if record.TransactionType != KindCreate {
		t.Fatalf("expected kind create, got %q", record.TransactionType)
	}
	if _, err := time.Parse(time.RFC3339Nano, record.Timestamp); err != nil {
		t.Fatalf("timestamp should be RFC3339Nano, got %q: %v", record.Timestamp, err)
	}
	if record.Location != nil || record.Signature != nil || record.VehicleID != nil {
		t.Fatal("optional fields should start unset")
	}
}
