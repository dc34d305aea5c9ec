package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrCorruptLedger marks a ledger file that exists but cannot be decoded into
// a valid chain. Loading never silently discards such a file: fabricating a
// fresh genesis over unreadable history would destroy the audit trail.
var ErrCorruptLedger = errors.New("ledger: corrupt ledger file")

// ledgerDocument is the persisted representation of the full ledger state.
type ledgerDocument struct {
	Chain      []Block             `json:"chain"`
	Difficulty int                 `json:"difficulty"`
	Pending    []TransactionRecord `json:"pending_transactions"`
}

// Save writes the whole ledger state to path as a single JSON document,
// overwriting any previous file. The write is atomic (temp file plus rename)
// and any I/O failure is returned to the caller rather than logged and
// dropped. Save shares the mining mutex so the snapshot never interleaves
// with a drain or an append.
func (l *Ledger) Save(path string) error {
	l.mineMu.Lock()
	defer l.mineMu.Unlock()

	l.mu.RLock()
	doc := ledgerDocument{
		Chain:      l.blocks,
		Difficulty: l.difficulty,
		Pending:    l.pool.Snapshot(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	l.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("ledger: encode ledger: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ledger: create ledger directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("ledger: write ledger file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("ledger: replace ledger file: %w", err)
	}
	return nil
}

// Load reconstructs a ledger from the file at path.
//
// An absent file is the expected first-run condition and yields a fresh
// ledger with a mined genesis block at the given difficulty. A present but
// undecodable file yields an error wrapping ErrCorruptLedger. A well-formed
// file is trusted verbatim: stored hashes, timestamps and nonces are not
// re-verified, so callers wanting tamper detection on load must call
// ValidateChain afterwards.
func Load(path string, difficulty int) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(difficulty)
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: read ledger file: %w", err)
	}

	var doc ledgerDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLedger, path, err)
	}
	if len(doc.Chain) == 0 {
		return nil, fmt.Errorf("%w: %s: document has no chain", ErrCorruptLedger, path)
	}
	if doc.Difficulty < 0 {
		return nil, fmt.Errorf("%w: %s: negative difficulty %d", ErrCorruptLedger, path, doc.Difficulty)
	}

	l := &Ledger{
		blocks:     doc.Chain,
		difficulty: doc.Difficulty,
		pool:       NewPendingPool(),
	}
	for _, record := range doc.Pending {
		l.pool.Add(record)
	}
	return l, nil
}
