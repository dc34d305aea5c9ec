// Package custody glues the relational store and the blockchain ledger
// together into the chain-of-custody workflow: an event is durably recorded
// as a row first, then submitted to the ledger's pending pool; sealing drains
// the pool into a mined block and back-fills each row's block index.
package custody

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codedbydumi/Blockchain-Food-Supply/ledger"
	"github.com/codedbydumi/Blockchain-Food-Supply/store"
)

// Service coordinates the store-then-submit and mine-then-back-fill flows.
type Service struct {
	store  *store.Store
	ledger *ledger.Ledger
	log    *slog.Logger
}

// NewService wires a custody service. A nil logger falls back to
// slog.Default.
func NewService(st *store.Store, l *ledger.Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, ledger: l, log: logger}
}

// RecordEvent durably writes the custody event row and then submits the
// snapshot to the ledger's pending pool. The row carries no block reference
// until SealPending runs; between the two calls the event is visible in the
// store but not yet attested by the chain.
func (s *Service) RecordEvent(ctx context.Context, record ledger.TransactionRecord) error {
	if err := s.store.InsertTransaction(ctx, record); err != nil {
		return fmt.Errorf("custody: record event: %w", err)
	}
	s.ledger.Submit(record)
	s.log.Info("custody event recorded",
		"transaction_id", record.TransactionID,
		"product_id", record.ProductID,
		"type", string(record.TransactionType))
	return nil
}

// SealPending mines the pending events into a new block and back-fills the
// containing block index on every included row. ledger.ErrNothingToMine
// passes through unchanged so callers can treat it as the no-op it is.
func (s *Service) SealPending(ctx context.Context) (ledger.Block, error) {
	block, err := s.ledger.Mine(ctx)
	if errors.Is(err, ledger.ErrNothingToMine) {
		return ledger.Block{}, err
	}
	if err != nil {
		return ledger.Block{}, fmt.Errorf("custody: seal pending events: %w", err)
	}

	for _, tx := range block.Transactions {
		if err := s.store.SetBlockIndex(ctx, tx.TransactionID, block.Index); err != nil {
			return block, fmt.Errorf("custody: back-fill block %d: %w", block.Index, err)
		}
	}
	s.log.Info("block sealed",
		"index", block.Index,
		"hash", block.Hash,
		"transactions", len(block.Transactions),
		"nonce", block.Nonce)
	return block, nil
}

// Unconfirmed returns the stored rows awaiting inclusion in a block.
func (s *Service) Unconfirmed(ctx context.Context) ([]store.Entry, error) {
	entries, err := s.store.Unconfirmed(ctx)
	if err != nil {
		return nil, fmt.Errorf("custody: list unconfirmed events: %w", err)
	}
	return entries, nil
}
