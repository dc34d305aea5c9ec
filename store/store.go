// Package store persists custody transaction rows in a relational SQLite
// database. It is the queryable side of the system: every custody event is
// durably written here before it is submitted to the ledger, and after mining
// each row learns which block contains it via the block_index column. Until
// then block_index is NULL, the expected state of a not-yet-sealed event.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codedbydumi/Blockchain-Food-Supply/ledger"
)

const createTransactionsTable = `
CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    transaction_id TEXT UNIQUE NOT NULL,
    block_index INTEGER,
    product_id TEXT NOT NULL,
    from_user_id TEXT NOT NULL,
    to_user_id TEXT NOT NULL,
    transaction_type TEXT NOT NULL,
    quantity REAL NOT NULL,
    location TEXT,
    latitude REAL,
    longitude REAL,
    temperature REAL,
    humidity REAL,
    pressure REAL,
    vehicle_id TEXT,
    transport_method TEXT,
    expected_delivery TEXT,
    quality_check_passed INTEGER NOT NULL DEFAULT 1,
    signature TEXT,
    timestamp TEXT NOT NULL
);
`

// Store wraps the SQLite database holding custody transaction rows.
type Store struct {
	db *sql.DB
}

// Entry is one stored custody row. BlockIndex is nil until the event has
// been sealed into a block.
type Entry struct {
	BlockIndex *int
	Record     ledger.TransactionRecord
}

// Open opens (or creates) the database at path and ensures the schema
// exists. Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if _, err := db.Exec(createTransactionsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// InsertTransaction durably writes a custody event row. The row starts with
// no block reference; SetBlockIndex fills it in after mining.
func (s *Store) InsertTransaction(ctx context.Context, record ledger.TransactionRecord) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO transactions (
            transaction_id, product_id, from_user_id, to_user_id,
            transaction_type, quantity, location, latitude, longitude,
            temperature, humidity, pressure, vehicle_id, transport_method,
            expected_delivery, quality_check_passed, signature, timestamp
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.TransactionID, record.ProductID, record.FromUserID, record.ToUserID,
		string(record.TransactionType), record.Quantity, record.Location, record.Latitude,
		record.Longitude, record.Temperature, record.Humidity, record.Pressure,
		record.VehicleID, record.TransportMethod, record.ExpectedDelivery,
		record.QualityCheckPassed, record.Signature, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("store: insert transaction %s: %w", record.TransactionID, err)
	}
	return nil
}

// SetBlockIndex back-fills the containing block on the row matching the
// transaction id. Returns an error if no such row exists, since that means
// the ledger sealed an event the store never recorded.
func (s *Store) SetBlockIndex(ctx context.Context, transactionID string, blockIndex int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET block_index = ? WHERE transaction_id = ?",
		blockIndex, transactionID)
	if err != nil {
		return fmt.Errorf("store: set block index for %s: %w", transactionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: set block index for %s: %w", transactionID, err)
	}
	if affected == 0 {
		return fmt.Errorf("store: transaction %s has no stored row", transactionID)
	}
	return nil
}

// TransactionByID returns the stored row for the given transaction id.
func (s *Store) TransactionByID(ctx context.Context, transactionID string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE transaction_id = ?", transactionID)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, fmt.Errorf("store: transaction %q not found", transactionID)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("store: query transaction %s: %w", transactionID, err)
	}
	return entry, nil
}

// TransactionsForProduct returns every stored row for a product in insertion
// order.
func (s *Store) TransactionsForProduct(ctx context.Context, productID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE product_id = ? ORDER BY id", productID)
	if err != nil {
		return nil, fmt.Errorf("store: query product %s: %w", productID, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Unconfirmed returns the rows not yet referenced by any block, the
// eventual-consistency seam between submission and successful mining.
func (s *Store) Unconfirmed(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE block_index IS NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("store: query unconfirmed transactions: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `
    SELECT block_index, transaction_id, product_id, from_user_id, to_user_id,
           transaction_type, quantity, location, latitude, longitude,
           temperature, humidity, pressure, vehicle_id, transport_method,
           expected_delivery, quality_check_passed, signature, timestamp
    FROM transactions`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry      Entry
		blockIndex sql.NullInt64
		kind       string
	)
	record := &entry.Record
	err := row.Scan(
		&blockIndex, &record.TransactionID, &record.ProductID, &record.FromUserID,
		&record.ToUserID, &kind, &record.Quantity, &record.Location,
		&record.Latitude, &record.Longitude, &record.Temperature, &record.Humidity,
		&record.Pressure, &record.VehicleID, &record.TransportMethod,
		&record.ExpectedDelivery, &record.QualityCheckPassed, &record.Signature,
		&record.Timestamp,
	)
	if err != nil {
		return Entry{}, err
	}
	record.TransactionType = ledger.TransactionKind(kind)
	if blockIndex.Valid {
		index := int(blockIndex.Int64)
		entry.BlockIndex = &index
	}
	return entry, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan transaction row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate transaction rows: %w", err)
	}
	return entries, nil
}
