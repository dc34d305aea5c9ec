// Package ledger implements an append-only, hash-linked blockchain ledger for
// recording custody events of goods moving through a food supply chain.
//
// # Core Components
//
// Ledger: An append-only log of sealed blocks plus a pool of pending custody
// events awaiting inclusion in the next block.
//
// Block: A proof-of-work sealed batch of custody events with a cryptographic
// link to the previous block.
//
// TransactionRecord: A flattened, point-in-time snapshot of a single custody
// event, decoupled from the relational store's mutable rows.
//
// # Security Properties
//
// The ledger provides:
//   - Immutability: Once sealed, blocks cannot be modified without detection
//   - Verifiability: Anyone can verify the integrity of the entire chain
//   - Auditability: Complete history of every custody transfer of a product
//   - Tamper detection: Any modification breaks the hash chain
//
// # Usage
//
// Create a ledger with a mining difficulty, submit custody events, then call
// Mine to seal pending events into a new block. ValidateChain can be called
// at any time to ensure the chain remains intact, and Save/Load persist the
// whole ledger state to a single JSON document.
package ledger
