package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// TransactionKind classifies a custody event.
type TransactionKind string

const (
	KindCreate   TransactionKind = "create"
	KindTransfer TransactionKind = "transfer"
	KindReceive  TransactionKind = "receive"
)

// TransactionRecord is a flattened snapshot of a single custody event. It is
// immutable once constructed: the ledger copies records on block creation so
// later edits to products or accounts in the relational store never alter
// sealed history.
//
// Optional fields are pointers and omitted from the JSON encoding when unset.
// Signature is an opaque pass-through attribute: the ledger never populates
// or verifies it.
type TransactionRecord struct {
	TransactionID      string          `json:"transaction_id"`
	ProductID          string          `json:"product_id"`
	FromUserID         string          `json:"from_user_id"`
	ToUserID           string          `json:"to_user_id"`
	TransactionType    TransactionKind `json:"transaction_type"`
	Quantity           float64         `json:"quantity"`
	Location           *string         `json:"location,omitempty"`
	Latitude           *float64        `json:"latitude,omitempty"`
	Longitude          *float64        `json:"longitude,omitempty"`
	Temperature        *float64        `json:"temperature,omitempty"`
	Humidity           *float64        `json:"humidity,omitempty"`
	Pressure           *float64        `json:"pressure,omitempty"`
	VehicleID          *string         `json:"vehicle_id,omitempty"`
	TransportMethod    *string         `json:"transport_method,omitempty"`
	ExpectedDelivery   *string         `json:"expected_delivery,omitempty"`
	QualityCheckPassed bool            `json:"quality_check_passed"`
	Signature          *string         `json:"signature,omitempty"`
	Timestamp          string          `json:"timestamp"`
}

// NewTransactionRecord creates a custody event snapshot with a generated
// transaction id and the quality check defaulting to passed. Optional fields
// are set directly on the returned value before submission.
func NewTransactionRecord(productID, fromUserID, toUserID string, kind TransactionKind, quantity float64) TransactionRecord {
	now := time.Now().UTC()
	return TransactionRecord{
		TransactionID:      NewTransactionID(productID, fromUserID, toUserID, now),
		ProductID:          productID,
		FromUserID:         fromUserID,
		ToUserID:           toUserID,
		TransactionType:    kind,
		Quantity:           quantity,
		QualityCheckPassed: true,
		Timestamp:          now.Format(time.RFC3339Nano),
	}
}

// NewTransactionID derives a transaction id from the product, the two parties
// and a nanosecond timestamp, hashed and truncated under a fixed TX_ tag.
// Collisions are possible when the same parties submit the same product
// within the same nanosecond; callers must treat uniqueness as best effort.
func NewTransactionID(productID, fromUserID, toUserID string, at time.Time) string {
	input := fmt.Sprintf("%s%s%s%d", productID, fromUserID, toUserID, at.UTC().UnixNano())
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("TX_%s_%s", at.UTC().Format("20060102150405"), hex.EncodeToString(sum[:])[:10])
}

// clone returns an independent copy of the record, including the targets of
// its optional pointer fields.
func (r TransactionRecord) clone() TransactionRecord {
	c := r
	c.Location = clonePtr(r.Location)
	c.Latitude = clonePtr(r.Latitude)
	c.Longitude = clonePtr(r.Longitude)
	c.Temperature = clonePtr(r.Temperature)
	c.Humidity = clonePtr(r.Humidity)
	c.Pressure = clonePtr(r.Pressure)
	c.VehicleID = clonePtr(r.VehicleID)
	c.TransportMethod = clonePtr(r.TransportMethod)
	c.ExpectedDelivery = clonePtr(r.ExpectedDelivery)
	c.Signature = clonePtr(r.Signature)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneRecords(records []TransactionRecord) []TransactionRecord {
	if records == nil {
		return nil
	}
	out := make([]TransactionRecord, len(records))
	for i, r := range records {
		out[i] = r.clone()
	}
	return out
}
