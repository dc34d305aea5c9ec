package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// GenesisPreviousHash is the previous-hash sentinel carried by the genesis
// block.
const GenesisPreviousHash = "0"

// ErrNothingToMine signals that Mine was called with an empty pending pool.
// It is a no-op condition, not a failure: the chain is unchanged.
var ErrNothingToMine = errors.New("ledger: no pending transactions to mine")

// Ledger owns the ordered sequence of sealed blocks and the pool of custody
// events awaiting inclusion. It is safe for concurrent use: submissions and
// reads of sealed blocks proceed while a mine is searching for a nonce, and
// only the drain-seal-append sequence itself is serialized.
type Ledger struct {
	mu     sync.RWMutex // guards blocks
	mineMu sync.Mutex   // serializes drain-seal-append, shared with Save

	blocks     []Block
	difficulty int
	pool       *PendingPool
}

// HistoryEntry is one custody event located in the chain, returned by
// ProductHistory.
type HistoryEntry struct {
	BlockIndex  int               `json:"block_index"`
	BlockHash   string            `json:"block_hash"`
	Timestamp   string            `json:"timestamp"`
	Transaction TransactionRecord `json:"transaction"`
}

// ChainInfo summarizes the ledger state.
type ChainInfo struct {
	BlockCount       int    `json:"total_blocks"`
	TransactionCount int    `json:"total_transactions"`
	PendingCount     int    `json:"pending_transactions"`
	Difficulty       int    `json:"difficulty"`
	LatestHash       string `json:"latest_block_hash"`
	IsValid          bool   `json:"is_valid"`
}

// New creates a ledger with a mined genesis block. Difficulty is the number
// of leading hex zeros required of every sealed block's hash; a negative
// value is a configuration error.
func New(difficulty int) (*Ledger, error) {
	if difficulty < 0 {
		return nil, fmt.Errorf("ledger: negative difficulty %d", difficulty)
	}
	l := &Ledger{
		difficulty: difficulty,
		pool:       NewPendingPool(),
	}
	genesis := NewBlock(0, nil, GenesisPreviousHash)
	if err := genesis.Mine(context.Background(), difficulty); err != nil {
		return nil, fmt.Errorf("ledger: mine genesis block: %w", err)
	}
	l.blocks = append(l.blocks, genesis)
	return l, nil
}

// Submit appends a custody event to the pending pool. It always succeeds;
// business validation happens in the workflow before submission.
func (l *Ledger) Submit(record TransactionRecord) {
	l.pool.Add(record)
}

// Mine drains the pending pool into a new block, runs the proof-of-work
// search and appends the sealed block to the chain. An empty pool returns
// ErrNothingToMine and leaves the chain unchanged.
//
// Concurrent Mine calls are serialized over the whole drain-seal-append
// sequence so indices are never duplicated or skipped. The chain lock is held
// only for the append itself, so reads of sealed blocks never wait on the
// nonce search. If ctx is cancelled mid-search the drained records are
// requeued ahead of newer submissions and ctx's error is returned.
func (l *Ledger) Mine(ctx context.Context) (Block, error) {
	l.mineMu.Lock()
	defer l.mineMu.Unlock()

	records := l.pool.Drain()
	if len(records) == 0 {
		return Block{}, ErrNothingToMine
	}

	l.mu.RLock()
	index := len(l.blocks)
	previousHash := l.blocks[index-1].Hash
	l.mu.RUnlock()

	block := NewBlock(index, records, previousHash)
	if err := block.Mine(ctx, l.difficulty); err != nil {
		l.pool.Requeue(records)
		return Block{}, fmt.Errorf("ledger: mine block %d: %w", index, err)
	}

	l.mu.Lock()
	l.blocks = append(l.blocks, block)
	l.mu.Unlock()

	return block.clone(), nil
}

// ValidateChain reports whether every block past the genesis reproduces its
// stored hash and links to its predecessor. It short-circuits on the first
// failure without reporting which block failed; callers needing diagnostics
// use FindFirstInvalidIndex.
func (l *Ledger) ValidateChain() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := 1; i < len(l.blocks); i++ {
		if !l.blocks[i].VerifySelf() {
			return false
		}
		if l.blocks[i].PreviousHash != l.blocks[i-1].Hash {
			return false
		}
	}
	return true
}

// FindFirstInvalidIndex is the diagnostic companion to ValidateChain: it
// returns the index of the first block that fails validation and true, or 0
// and false when the whole chain is intact. Unlike ValidateChain it also
// checks the genesis sentinel and the genesis block's own hash.
func (l *Ledger) FindFirstInvalidIndex() (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.blocks[0].PreviousHash != GenesisPreviousHash || !l.blocks[0].VerifySelf() {
		return 0, true
	}
	for i := 1; i < len(l.blocks); i++ {
		if !l.blocks[i].VerifySelf() || l.blocks[i].PreviousHash != l.blocks[i-1].Hash {
			return i, true
		}
	}
	return 0, false
}

// ProductHistory returns every sealed custody event for the given product in
// ascending block-index order. The scan is linear over all transactions,
// acceptable at audit scale.
func (l *Ledger) ProductHistory(productID string) []HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var history []HistoryEntry
	for _, block := range l.blocks {
		for _, tx := range block.Transactions {
			if tx.ProductID == productID {
				history = append(history, HistoryEntry{
					BlockIndex:  block.Index,
					BlockHash:   block.Hash,
					Timestamp:   block.Timestamp,
					Transaction: tx.clone(),
				})
			}
		}
	}
	return history
}

// Info returns chain statistics. IsValid is computed by a full ValidateChain
// walk, so Info is O(chain length), not O(1).
func (l *Ledger) Info() ChainInfo {
	valid := l.ValidateChain()

	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, block := range l.blocks {
		total += len(block.Transactions)
	}
	return ChainInfo{
		BlockCount:       len(l.blocks),
		TransactionCount: total,
		PendingCount:     l.pool.Len(),
		Difficulty:       l.difficulty,
		LatestHash:       l.blocks[len(l.blocks)-1].Hash,
		IsValid:          valid,
	}
}

// LatestBlock returns a copy of the most recently sealed block.
func (l *Ledger) LatestBlock() Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.blocks[len(l.blocks)-1].clone()
}

// BlockByIndex returns a copy of the block at the given index. Returns an
// error if the index is out of range.
func (l *Ledger) BlockByIndex(index int) (Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.blocks) {
		return Block{}, fmt.Errorf("ledger: block index %d out of range [0,%d)", index, len(l.blocks))
	}
	return l.blocks[index].clone(), nil
}

// TransactionByID scans all sealed blocks for the custody event with the
// given transaction id and returns it with its containing block index.
func (l *Ledger) TransactionByID(transactionID string) (TransactionRecord, int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, block := range l.blocks {
		for _, tx := range block.Transactions {
			if tx.TransactionID == transactionID {
				return tx.clone(), block.Index, nil
			}
		}
	}
	return TransactionRecord{}, 0, fmt.Errorf("ledger: transaction %q not found", transactionID)
}

// PartyActivity returns the net custody count for a party across all sealed
// blocks: +1 for every event received, -1 for every event sent. This is an
// analytics figure, not an asset balance.
func (l *Ledger) PartyActivity(partyID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	activity := 0
	for _, block := range l.blocks {
		for _, tx := range block.Transactions {
			if tx.FromUserID == partyID {
				activity--
			}
			if tx.ToUserID == partyID {
				activity++
			}
		}
	}
	return activity
}

// Length returns the number of sealed blocks, genesis included.
func (l *Ledger) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

// Difficulty returns the configured proof-of-work difficulty.
func (l *Ledger) Difficulty() int {
	return l.difficulty
}

// PendingCount returns the number of custody events awaiting inclusion.
func (l *Ledger) PendingCount() int {
	return l.pool.Len()
}

// Pending returns a copy of the custody events awaiting inclusion, in
// arrival order.
func (l *Ledger) Pending() []TransactionRecord {
	return l.pool.Snapshot()
}
