package ledger

import (
	"context"
	"errors"
	"testing"
)

// TestNewBlockSnapshotsTransactions verifies that a block takes a deep copy
// of the records it is constructed with: mutating the caller's slice or a
// pointer field afterwards must not reach into the block.
func TestNewBlockSnapshotsTransactions(t *testing.T) {
	location := "Cold store 4"
	record := newTestRecord("APP_1", "farm-7", "dist-2")
	record.Location = &location
	records := []TransactionRecord{record}

	block := NewBlock(1, records, "prev")

	records[0].Quantity = 9999
	*records[0].Location = "elsewhere"

	if block.Transactions[0].Quantity == 9999 {
		t.Fatal("block aliases the caller's transaction slice")
	}
	if *block.Transactions[0].Location != "Cold store 4" {
		t.Fatal("block aliases the caller's pointer fields")
	}
}

// TestNewBlockProvisionalHash verifies that a freshly constructed block
// starts at nonce 0 with a hash matching its fields.
func TestNewBlockProvisionalHash(t *testing.T) {
	block := NewBlock(0, nil, GenesisPreviousHash)

	if block.Nonce != 0 {
		t.Fatalf("new block nonce should be 0, got %d", block.Nonce)
	}
	if !block.VerifySelf() {
		t.Fatal("provisional hash should match the block's fields")
	}
}

// TestBlockVerifySelfDetectsMutation verifies that VerifySelf fails once any
// sealed field changes without resealing.
func TestBlockVerifySelfDetectsMutation(t *testing.T) {
	block := NewBlock(1, []TransactionRecord{newTestRecord("APP_1", "farm-7", "dist-2")}, "prev")
	if err := block.Mine(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error mining: %v", err)
	}
	if !block.VerifySelf() {
		t.Fatal("sealed block should verify")
	}

	block.Transactions[0].ToUserID = "attacker"

	if block.VerifySelf() {
		t.Fatal("mutated block should not verify")
	}
}

// TestBlockMineMeetsDifficulty verifies the proof-of-work predicate holds on
// the sealed hash and that mining leaves the timestamp untouched.
func TestBlockMineMeetsDifficulty(t *testing.T) {
	block := NewBlock(1, []TransactionRecord{newTestRecord("APP_1", "farm-7", "dist-2")}, "prev")
	before := block.Timestamp

	if err := block.Mine(context.Background(), 2); err != nil {
		t.Fatalf("unexpected error mining: %v", err)
	}

	if !block.MeetsDifficulty(2) {
		t.Fatalf("sealed hash %q should carry 2 leading zeros", block.Hash)
	}
	if block.Timestamp != before {
		t.Fatal("mining must not alter the construction timestamp")
	}
	if !block.VerifySelf() {
		t.Fatal("sealed block should verify")
	}
}

// TestBlockMineFindsSmallestNonce verifies the linear search: every nonce
// below the found one must fail the difficulty predicate.
func TestBlockMineFindsSmallestNonce(t *testing.T) {
	block := NewBlock(1, []TransactionRecord{newTestRecord("APP_1", "farm-7", "dist-2")}, "prev")
	if err := block.Mine(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error mining: %v", err)
	}

	for nonce := uint64(0); nonce < block.Nonce; nonce++ {
		candidate := block
		candidate.Nonce = nonce
		candidate.Hash = Seal(candidate.Index, candidate.Timestamp, candidate.Transactions, candidate.PreviousHash, nonce)
		if candidate.MeetsDifficulty(1) {
			t.Fatalf("nonce %d already satisfies the predicate, found nonce %d is not minimal", nonce, block.Nonce)
		}
	}
}

// TestBlockMineDifficultyZero verifies that difficulty 0 makes mining a
// no-op: any hash qualifies and the nonce stays at 0.
func TestBlockMineDifficultyZero(t *testing.T) {
	block := NewBlock(1, nil, "prev")
	hashBefore := block.Hash

	if err := block.Mine(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error mining: %v", err)
	}
	if block.Nonce != 0 || block.Hash != hashBefore {
		t.Fatal("difficulty 0 mining should leave the block untouched")
	}
}

// TestBlockMineCancelled verifies the search aborts with the context's error
// when cancelled, so a misconfigured difficulty cannot hang the process.
func TestBlockMineCancelled(t *testing.T) {
	block := NewBlock(1, []TransactionRecord{newTestRecord("APP_1", "farm-7", "dist-2")}, "prev")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := block.Mine(ctx, 6)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
