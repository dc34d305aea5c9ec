package ledger

import "sync"

// PendingPool is an ordered, unbounded buffer of custody events awaiting
// inclusion in the next block. Records keep FIFO arrival order; there is no
// de-duplication. Callers bound memory by draining the pool through mining.
type PendingPool struct {
	mu      sync.Mutex
	records []TransactionRecord
}

// NewPendingPool creates an empty pool.
func NewPendingPool() *PendingPool {
	return &PendingPool{}
}

// Add appends a copy of the record to the tail of the pool.
func (p *PendingPool) Add(record TransactionRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, record.clone())
}

// Drain atomically returns the full pending contents and empties the pool.
// Submissions racing with Drain land either in the returned slice or in the
// pool afterwards, never in both and never in neither.
func (p *PendingPool) Drain() []TransactionRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	drained := p.records
	p.records = nil
	return drained
}

// Requeue puts previously drained records back at the head of the pool,
// preserving their original order ahead of anything submitted since the
// drain. Used when mining is cancelled after the drain.
func (p *PendingPool) Requeue(records []TransactionRecord) {
	if len(records) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(append([]TransactionRecord{}, records...), p.records...)
}

// Len returns the number of pending records.
func (p *PendingPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

// Snapshot returns a copy of the pending records in arrival order.
func (p *PendingPool) Snapshot() []TransactionRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneRecords(p.records)
}
