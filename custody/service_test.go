package custody

import (
	"context"
	"errors"
	"testing"

	"github.com/codedbydumi/Blockchain-Food-Supply/ledger"
	"github.com/codedbydumi/Blockchain-Food-Supply/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("failed to close store: %v", err)
		}
	})
	l, err := ledger.New(1)
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}
	return NewService(st, l, nil)
}

// TestRecordThenSeal runs the full workflow: two recorded events land in the
// store without a block reference, sealing mines them into block 1, and the
// rows learn their containing block afterwards.
func TestRecordThenSeal(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	first := ledger.NewTransactionRecord("APP_1", "farm-7", "dist-2", ledger.KindCreate, 120)
	second := ledger.NewTransactionRecord("APP_1", "dist-2", "shop-9", ledger.KindTransfer, 120)
	for _, record := range []ledger.TransactionRecord{first, second} {
		if err := s.RecordEvent(ctx, record); err != nil {
			t.Fatalf("unexpected error recording: %v", err)
		}
	}

	waiting, err := s.Unconfirmed(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(waiting) != 2 {
		t.Fatalf("expected 2 unconfirmed rows before sealing, got %d", len(waiting))
	}

	block, err := s.SealPending(ctx)
	if err != nil {
		t.Fatalf("unexpected error sealing: %v", err)
	}
	if block.Index != 1 || len(block.Transactions) != 2 {
		t.Fatalf("expected block 1 with 2 transactions, got block %d with %d",
			block.Index, len(block.Transactions))
	}

	waiting, err = s.Unconfirmed(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(waiting) != 0 {
		t.Fatalf("expected no unconfirmed rows after sealing, got %d", len(waiting))
	}

	entry, err := s.store.TransactionByID(ctx, first.TransactionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.BlockIndex == nil || *entry.BlockIndex != 1 {
		t.Fatal("row should reference block 1 after sealing")
	}
}

// TestSealNothingPending verifies the empty-pool no-op passes through as
// ledger.ErrNothingToMine.
func TestSealNothingPending(t *testing.T) {
	s := newTestService(t)

	if _, err := s.SealPending(context.Background()); !errors.Is(err, ledger.ErrNothingToMine) {
		t.Fatalf("expected ErrNothingToMine, got %v", err)
	}
}

// TestRecordEventStoreFailure verifies the event is not submitted to the
// ledger when the durable write fails: the store row comes first.
func TestRecordEventStoreFailure(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	record := ledger.NewTransactionRecord("APP_1", "farm-7", "dist-2", ledger.KindCreate, 120)
	if err := s.RecordEvent(ctx, record); err != nil {
		t.Fatalf("unexpected error recording: %v", err)
	}
	// A duplicate id violates the store's unique constraint.
	if err := s.RecordEvent(ctx, record); err == nil {
		t.Fatal("expected error recording a duplicate event, got nil")
	}

	if got := s.ledger.PendingCount(); got != 1 {
		t.Fatalf("failed insert must not reach the pool, got %d pending", got)
	}
}
