package ledger

import (
	"context"
	"strings"
	"time"
)

// Block is a proof-of-work sealed batch of custody events. Index, Timestamp,
// Transactions and PreviousHash are frozen at construction; Nonce and Hash
// mutate only during mining. After mining the whole block is immutable: any
// later change without resealing breaks chain validation.
type Block struct {
	Index        int                 `json:"index"`
	Timestamp    string              `json:"timestamp"`
	Transactions []TransactionRecord `json:"transactions"`
	PreviousHash string              `json:"previous_hash"`
	Nonce        uint64              `json:"nonce"`
	Hash         string              `json:"hash"`
}

// NewBlock constructs an unsealed block with a deep copy of the given
// transactions, the current UTC time and a provisional hash at nonce 0.
// Linkage of PreviousHash to the chain is the Ledger's responsibility.
//
// The timestamp is kept as an RFC3339Nano string rather than a time.Time so
// that a persisted block reproduces its hash byte for byte after reload.
func NewBlock(index int, transactions []TransactionRecord, previousHash string) Block {
	b := Block{
		Index:        index,
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		Transactions: cloneRecords(transactions),
		PreviousHash: previousHash,
	}
	b.Hash = Seal(b.Index, b.Timestamp, b.Transactions, b.PreviousHash, b.Nonce)
	return b
}

// Mine performs the proof-of-work search: the nonce is incremented and the
// hash recomputed until it carries at least difficulty leading hex zeros. The
// found nonce is the smallest satisfying value since the search is linear
// from zero. The timestamp reflects construction, not completion, of mining.
//
// Expected work grows as 16^difficulty, so the search is cancellable: when
// ctx is done the block is left unsealed and ctx.Err() is returned. For
// difficulty 0 any hash qualifies and Mine returns immediately.
func (b *Block) Mine(ctx context.Context, difficulty int) error {
	target := strings.Repeat("0", difficulty)
	for !strings.HasPrefix(b.Hash, target) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b.Nonce++
		b.Hash = Seal(b.Index, b.Timestamp, b.Transactions, b.PreviousHash, b.Nonce)
	}
	return nil
}

// VerifySelf reports whether the stored hash matches a recomputation over the
// block's sealed fields. Pure query, no mutation.
func (b Block) VerifySelf() bool {
	return b.Hash == Seal(b.Index, b.Timestamp, b.Transactions, b.PreviousHash, b.Nonce)
}

// MeetsDifficulty reports whether the block's hash carries at least
// difficulty leading hex zero characters.
func (b Block) MeetsDifficulty(difficulty int) bool {
	return strings.HasPrefix(b.Hash, strings.Repeat("0", difficulty))
}

// clone returns an independent copy of the block, decoupled from the
// ledger's internal slice.
func (b Block) clone() Block {
	c := b
	c.Transactions = cloneRecords(b.Transactions)
	return c
}
